package catalog

import (
	"fmt"
	"sort"

	"romrenamer/internal/digest"
	"romrenamer/internal/report"
)

// Index maps digests to the catalog members claiming them. Built once,
// immutable afterwards.
type Index struct {
	entries  []*Entry
	byDigest map[string][]Ref
}

func digestKey(algo digest.Algorithm, value string) string {
	return string(algo) + ":" + value
}

// Build validates entries and constructs the lookup index. Internally
// inconsistent entries and cross-console digest collisions are excluded and
// recorded on rep rather than failing the whole load. The result is
// independent of input order.
func Build(entries []Entry, rep *report.Report) *Index {
	usable := make([]*Entry, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		if err := validate(entry); err != nil {
			rep.Record(report.ProblemCatalogCorrupt, entry.Key(), err.Error())
			continue
		}
		usable = append(usable, entry)
	}

	// Sort so lookup slices come out identical regardless of load order.
	sort.Slice(usable, func(i, j int) bool { return usable[i].Key() < usable[j].Key() })

	byDigest := collect(usable)

	// A digest claimed by unrelated games on two different consoles means at
	// least one catalog is wrong; drop every entry involved. Entries sharing
	// the same name across consoles are treated as the same game released on
	// both platforms and left for the match-time tie-break.
	conflicted := map[*Entry]string{}
	for key, refs := range byDigest {
		first := refs[0].Entry
		for _, ref := range refs[1:] {
			if ref.Entry.Console != first.Console && ref.Entry.Name != first.Name {
				for _, r := range refs {
					conflicted[r.Entry] = key
				}
				break
			}
		}
	}
	if len(conflicted) > 0 {
		kept := usable[:0]
		for _, entry := range usable {
			if key, ok := conflicted[entry]; ok {
				rep.Record(report.ProblemCatalogConflict, entry.Key(),
					fmt.Sprintf("digest %s also claimed by another console", key))
				continue
			}
			kept = append(kept, entry)
		}
		usable = kept
		byDigest = collect(usable)
	}

	return &Index{entries: usable, byDigest: byDigest}
}

func collect(entries []*Entry) map[string][]Ref {
	byDigest := make(map[string][]Ref)
	for _, entry := range entries {
		for m, member := range entry.Members {
			for algo, value := range member.Digests {
				key := digestKey(algo, value)
				byDigest[key] = append(byDigest[key], Ref{Entry: entry, Member: m})
			}
		}
	}
	for _, refs := range byDigest {
		sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	}
	return byDigest
}

func validate(entry *Entry) error {
	if entry.Console == "" {
		return fmt.Errorf("entry %q has no console", entry.Name)
	}
	if entry.Name == "" {
		return fmt.Errorf("entry on console %q has no name", entry.Console)
	}
	if len(entry.Members) == 0 {
		return fmt.Errorf("entry has no members")
	}

	seen := map[string]int{}
	for m, member := range entry.Members {
		if member.Size < 0 {
			return fmt.Errorf("member %q has negative size", member.Name)
		}
		hasCatalogDigest := false
		for _, algo := range digest.CatalogAlgorithms {
			value, ok := member.Digests[algo]
			if !ok {
				continue
			}
			hasCatalogDigest = true
			key := digestKey(algo, value)
			if prev, dup := seen[key]; dup {
				return fmt.Errorf("members %q and %q share digest %s",
					entry.Members[prev].Name, member.Name, key)
			}
			seen[key] = m
		}
		if !hasCatalogDigest {
			return fmt.Errorf("member %q carries no digest", member.Name)
		}
	}
	return nil
}

// Find returns the members claiming the given digest, ordered by
// (console, entry name, member index). The returned slice must not be
// mutated.
func (idx *Index) Find(algo digest.Algorithm, value string) []Ref {
	return idx.byDigest[digestKey(algo, value)]
}

// Entries returns the usable entries sorted by key.
func (idx *Index) Entries() []*Entry {
	return idx.entries
}

// Len reports the number of usable entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// ConsoleStat summarizes one console's share of the index.
type ConsoleStat struct {
	Console string
	Games   int
	Members int
}

// ConsoleStats returns per-console entry and member counts, sorted by
// console name. Used by the catalogs command.
func (idx *Index) ConsoleStats() []ConsoleStat {
	byConsole := map[string]*ConsoleStat{}
	for _, entry := range idx.entries {
		stat, ok := byConsole[entry.Console]
		if !ok {
			stat = &ConsoleStat{Console: entry.Console}
			byConsole[entry.Console] = stat
		}
		stat.Games++
		stat.Members += len(entry.Members)
	}
	stats := make([]ConsoleStat, 0, len(byConsole))
	for _, stat := range byConsole {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Console < stats[j].Console })
	return stats
}
