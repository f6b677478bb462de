// Package layout turns classification results into a deterministic move
// plan.
//
// The planner is pure: it never touches the filesystem. It computes, for
// every file or game group, the destination the classification implies —
// recognized games under a console folder with canonical member names,
// unrecognized files under a quarantine folder with their original names,
// incomplete games under a per-game folder with a marker naming what is
// missing. The plan is handed to the mover, so dry-run and review are
// possible before anything is touched.
package layout

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"romrenamer/internal/match"
	"romrenamer/internal/report"
)

// Options configures destination folder names under the scan root.
type Options struct {
	UnrecognizedDir string
	IncompleteDir   string
}

// DefaultOptions mirrors the folder names the original tool used.
func DefaultOptions() Options {
	return Options{
		UnrecognizedDir: "Unrecognised files",
		IncompleteDir:   "Incomplete games",
	}
}

// Action moves one file from Source to Dest (full destination path,
// including the target file name).
type Action struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
	Kind   string `json:"kind"`
	Game   string `json:"game,omitempty"`
}

// Marker is a small file the plan wants written, e.g. the missing-member
// listing placed next to an incomplete game.
type Marker struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Plan is the ordered set of filesystem mutations a run implies.
type Plan struct {
	Root    string   `json:"root"`
	Actions []Action `json:"actions"`
	Markers []Marker `json:"markers,omitempty"`
}

// TotalFiles reports how many files the plan touches.
func (p Plan) TotalFiles() int {
	return len(p.Actions)
}

// Build computes the move plan for the given results under root. Actions
// whose source already equals the destination are dropped, as are files
// already inside the unrecognized folder. Destination collisions are
// recorded on rep and the colliding action dropped.
func Build(results []match.Result, root string, opts Options, rep *report.Report) Plan {
	if opts.UnrecognizedDir == "" {
		opts.UnrecognizedDir = DefaultOptions().UnrecognizedDir
	}
	if opts.IncompleteDir == "" {
		opts.IncompleteDir = DefaultOptions().IncompleteDir
	}

	plan := Plan{Root: root}
	claimed := map[string]string{} // dest -> source

	appendAction := func(action Action) {
		if action.Source == action.Dest {
			return
		}
		if prev, ok := claimed[action.Dest]; ok {
			rep.Record(report.ProblemPlanCollision, action.Dest,
				fmt.Sprintf("wanted by both %s and %s", prev, action.Source))
			return
		}
		claimed[action.Dest] = action.Source
		plan.Actions = append(plan.Actions, action)
	}

	for _, result := range results {
		switch result.Kind {
		case match.CompleteGame:
			dir := filepath.Join(root, sanitizeName(result.Entry.Console))
			if len(result.Entry.Members) > 1 {
				dir = filepath.Join(dir, sanitizeName(result.Entry.Name))
			}
			for m, file := range result.Files {
				appendAction(Action{
					Source: file.Path,
					Dest:   filepath.Join(dir, sanitizeName(result.Entry.Members[m].Name)),
					Kind:   result.Kind.String(),
					Game:   result.Entry.Key(),
				})
			}

		case match.IncompleteGame:
			dir := filepath.Join(root, opts.IncompleteDir, sanitizeName(result.Entry.Name))
			for _, file := range result.Files {
				appendAction(Action{
					Source: file.Path,
					Dest:   filepath.Join(dir, filepath.Base(file.Path)),
					Kind:   result.Kind.String(),
					Game:   result.Entry.Key(),
				})
			}
			plan.Markers = append(plan.Markers, Marker{
				Path:    filepath.Join(dir, "MISSING.txt"),
				Content: missingListing(result),
			})

		case match.Unrecognized:
			rel := result.File.RelPath
			if insideDir(rel, opts.UnrecognizedDir) {
				continue
			}
			appendAction(Action{
				Source: result.File.Path,
				Dest:   filepath.Join(root, opts.UnrecognizedDir, rel),
				Kind:   result.Kind.String(),
			})
		}
	}

	sort.Slice(plan.Actions, func(i, j int) bool {
		if plan.Actions[i].Dest != plan.Actions[j].Dest {
			return plan.Actions[i].Dest < plan.Actions[j].Dest
		}
		return plan.Actions[i].Source < plan.Actions[j].Source
	})
	sort.Slice(plan.Markers, func(i, j int) bool { return plan.Markers[i].Path < plan.Markers[j].Path })
	return plan
}

func missingListing(result match.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Incomplete game: %s (%s)\n", result.Entry.Name, result.Entry.Console)
	b.WriteString("Missing members:\n")
	for _, m := range result.Missing {
		member := result.Entry.Members[m]
		fmt.Fprintf(&b, "  %s (%d bytes)\n", member.Name, member.Size)
	}
	return b.String()
}

func insideDir(rel, dir string) bool {
	rel = filepath.ToSlash(rel)
	return rel == dir || strings.HasPrefix(rel, dir+"/")
}
