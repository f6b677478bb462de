// Package catalog models reference catalogs ("DAT" files) and builds the
// immutable digest index the matcher queries.
//
// A catalog entry describes one released game for one console as an ordered
// set of required member files, each identified by size and one or more
// content digests. Entries arrive pre-parsed (see the datfile subpackage for
// the logiqx XML collaborator); this package owns validation and indexing.
//
// The index is built once per run and is read-only afterwards, so it can be
// shared across digest workers without locking.
package catalog

import (
	"strings"

	"romrenamer/internal/digest"
)

// Member is one required file within a game as described by a catalog. The
// name is a hint for humans; matching never relies on it.
type Member struct {
	// Name is the canonical file name the catalog assigns this member.
	Name string
	// Size in bytes. Must match alongside the digest for a file to count.
	Size int64
	// Index preserves catalog ordering (disc/track number).
	Index int
	// Digests holds lowercase hex values keyed by algorithm. At least one
	// catalog algorithm must be present.
	Digests map[digest.Algorithm]string
}

// Digest returns the member's value for algo, if the catalog carries one.
func (m Member) Digest(algo digest.Algorithm) (string, bool) {
	v, ok := m.Digests[algo]
	return v, ok
}

// Entry is one released game variant for one console.
type Entry struct {
	Console string
	Name    string
	Members []Member
}

// Key identifies an entry unambiguously across merged catalogs.
func (e *Entry) Key() string {
	return e.Console + "/" + e.Name
}

// Ref points at one member of one entry.
type Ref struct {
	Entry  *Entry
	Member int
}

// Less orders refs by (console, entry name, member index); the matcher's
// deterministic tie-break depends on this ordering.
func (r Ref) Less(other Ref) bool {
	if c := strings.Compare(r.Entry.Console, other.Entry.Console); c != 0 {
		return c < 0
	}
	if c := strings.Compare(r.Entry.Name, other.Entry.Name); c != 0 {
		return c < 0
	}
	return r.Member < other.Member
}
