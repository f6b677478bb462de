// Package match classifies scanned files against the catalog index.
//
// Catalogs describe games, not files: an optical-disc release is a set of
// cooperating member files (cue sheet plus binary tracks) that must all be
// present and content-correct before the game counts as complete. The
// matcher assigns files to catalog members purely by digest and size, groups
// assignments by game, and emits one tagged result per file or game group.
// File names are never consulted; a correct .bin with a mismatched name
// still groups correctly.
package match

import (
	"log/slog"
	"path/filepath"
	"sort"

	"romrenamer/internal/catalog"
	"romrenamer/internal/digest"
	"romrenamer/internal/logging"
	"romrenamer/internal/report"
	"romrenamer/internal/scan"
)

// Kind discriminates classification outcomes.
type Kind int

const (
	// Unrecognized: the file's digests match no catalog member.
	Unrecognized Kind = iota
	// CompleteGame: every required member of the entry is present, each
	// digest- and size-verified against a distinct scanned file.
	CompleteGame
	// IncompleteGame: a strict non-empty subset of the entry's members is
	// present.
	IncompleteGame
)

func (k Kind) String() string {
	switch k {
	case CompleteGame:
		return "complete"
	case IncompleteGame:
		return "incomplete"
	default:
		return "unrecognized"
	}
}

// Result is the classification of one scanned file (Unrecognized) or one
// game group (CompleteGame, IncompleteGame).
type Result struct {
	Kind Kind

	// File is set for Unrecognized results.
	File *scan.File

	// Entry and Files are set for game results; Files maps member index to
	// the scanned file fulfilling it.
	Entry *catalog.Entry
	Files map[int]*scan.File

	// Missing lists unfulfilled member indices, sorted. Only set for
	// IncompleteGame.
	Missing []int
}

// Classify matches every scanned file against the index and returns one
// result per file or game group. Game results come first, ordered by
// (console, name); Unrecognized results follow, ordered by path. Every
// scanned file appears in exactly one result.
func Classify(files []*scan.File, idx *catalog.Index, rep *report.Report, logger *slog.Logger) []Result {
	logger = logging.NewComponentLogger(logger, "matcher")

	sorted := make([]*scan.File, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var unrecognized []*scan.File
	assigned := make(map[*scan.File]catalog.Ref)
	var ambiguous []fileCandidates

	// Consoles established per directory by unambiguous assignments; used
	// to resolve ambiguous files in the second pass.
	dirConsoles := map[string]map[string]bool{}

	for _, file := range sorted {
		set, err := file.Digests()
		if err != nil {
			rep.Record(report.ProblemIOError, file.Path, err.Error())
			logger.Warn("file unreadable, treating as unrecognized",
				logging.String("path", file.Path), logging.Error(err))
			unrecognized = append(unrecognized, file)
			continue
		}

		candidates := findCandidates(idx, file, set)
		switch {
		case len(candidates) == 0:
			unrecognized = append(unrecognized, file)
		case len(candidates) == 1:
			assigned[file] = candidates[0]
			markConsole(dirConsoles, file, candidates[0].Entry.Console)
		default:
			ambiguous = append(ambiguous, fileCandidates{file: file, refs: candidates})
		}
	}

	for _, fc := range ambiguous {
		chosen := resolveAmbiguity(fc, dirConsoles)
		assigned[fc.file] = chosen
		markConsole(dirConsoles, fc.file, chosen.Entry.Console)
		rep.Record(report.ProblemAmbiguousMatch, fc.file.Path,
			"content matches "+describeRefs(fc.refs)+"; resolved to "+chosen.Entry.Key())
	}

	// Group assignments by entry. The first file (path order) claims a
	// member; surplus duplicate copies fall through to unrecognized.
	grouped := map[*catalog.Entry]map[int]*scan.File{}
	for _, file := range sorted {
		ref, ok := assigned[file]
		if !ok {
			continue
		}
		members := grouped[ref.Entry]
		if members == nil {
			members = map[int]*scan.File{}
			grouped[ref.Entry] = members
		}
		if prev, taken := members[ref.Member]; taken {
			rep.Record(report.ProblemDuplicateFile, file.Path,
				"duplicate of "+prev.Path+" for "+ref.Entry.Key())
			unrecognized = append(unrecognized, file)
			continue
		}
		members[ref.Member] = file
	}

	entries := make([]*catalog.Entry, 0, len(grouped))
	for entry := range grouped {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key() < entries[j].Key() })

	results := make([]Result, 0, len(entries)+len(unrecognized))
	for _, entry := range entries {
		members := grouped[entry]
		if len(members) == len(entry.Members) {
			results = append(results, Result{Kind: CompleteGame, Entry: entry, Files: members})
			rep.Counts.Complete++
			continue
		}
		var missing []int
		for m := range entry.Members {
			if _, ok := members[m]; !ok {
				missing = append(missing, m)
			}
		}
		sort.Ints(missing)
		results = append(results, Result{Kind: IncompleteGame, Entry: entry, Files: members, Missing: missing})
		rep.Counts.Incomplete++
	}

	sort.Slice(unrecognized, func(i, j int) bool { return unrecognized[i].Path < unrecognized[j].Path })
	for _, file := range unrecognized {
		results = append(results, Result{Kind: Unrecognized, File: file})
	}
	rep.Counts.Unrecognized = len(unrecognized)
	rep.Counts.Scanned = len(files)

	logger.Info("classification finished",
		logging.Int("files", len(files)),
		logging.Int("complete", rep.Counts.Complete),
		logging.Int("incomplete", rep.Counts.Incomplete),
		logging.Int("unrecognized", rep.Counts.Unrecognized))
	return results
}

type fileCandidates struct {
	file *scan.File
	refs []catalog.Ref
}

// findCandidates returns the catalog members the file can fulfil: every
// digest algorithm the member specifies must agree with the file's computed
// value, and the sizes must match. Size is checked even on a digest hit
// because weak digests can collide on truncated files.
func findCandidates(idx *catalog.Index, file *scan.File, set digest.Set) []catalog.Ref {
	seen := map[catalog.Ref]bool{}
	var out []catalog.Ref
	for _, algo := range digest.CatalogAlgorithms {
		value, ok := set.Get(algo)
		if !ok {
			continue
		}
		for _, ref := range idx.Find(algo, value) {
			if seen[ref] {
				continue
			}
			seen[ref] = true
			member := ref.Entry.Members[ref.Member]
			if member.Size != file.Size {
				continue
			}
			if !digestsAgree(member, set) {
				continue
			}
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func digestsAgree(member catalog.Member, set digest.Set) bool {
	for _, algo := range digest.CatalogAlgorithms {
		want, ok := member.Digest(algo)
		if !ok {
			continue
		}
		got, ok := set.Get(algo)
		if !ok {
			continue
		}
		if want != got {
			return false
		}
	}
	return true
}

// resolveAmbiguity applies the deterministic tie-break: prefer a candidate
// whose console is already established in the file's directory, then the
// lexicographically smallest (console, name, member index).
func resolveAmbiguity(fc fileCandidates, dirConsoles map[string]map[string]bool) catalog.Ref {
	dir := filepath.Dir(fc.file.Path)
	if consoles := dirConsoles[dir]; len(consoles) > 0 {
		for _, ref := range fc.refs {
			if consoles[ref.Entry.Console] {
				return ref
			}
		}
	}
	return fc.refs[0]
}

func markConsole(dirConsoles map[string]map[string]bool, file *scan.File, console string) {
	dir := filepath.Dir(file.Path)
	consoles := dirConsoles[dir]
	if consoles == nil {
		consoles = map[string]bool{}
		dirConsoles[dir] = consoles
	}
	consoles[console] = true
}

func describeRefs(refs []catalog.Ref) string {
	out := ""
	for i, ref := range refs {
		if i > 0 {
			out += ", "
		}
		out += ref.Entry.Key()
	}
	return out
}
