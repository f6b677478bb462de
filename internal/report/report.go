package report

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ProblemKind labels a non-fatal condition recorded during a run.
type ProblemKind string

const (
	ProblemIOError         ProblemKind = "io_error"
	ProblemCatalogCorrupt  ProblemKind = "catalog_corrupt"
	ProblemCatalogConflict ProblemKind = "catalog_conflict"
	ProblemAmbiguousMatch  ProblemKind = "ambiguous_match"
	ProblemDuplicateFile   ProblemKind = "duplicate_file"
	ProblemPlanCollision   ProblemKind = "plan_collision"
	ProblemMoveFailed      ProblemKind = "move_failed"
)

// Problem is one recorded non-fatal condition. Subject is the path or
// catalog entry it concerns.
type Problem struct {
	Kind    ProblemKind `json:"kind"`
	Subject string      `json:"subject"`
	Detail  string      `json:"detail"`
}

func (p Problem) String() string {
	if p.Detail == "" {
		return fmt.Sprintf("%s: %s", p.Kind, p.Subject)
	}
	return fmt.Sprintf("%s: %s: %s", p.Kind, p.Subject, p.Detail)
}

// Counts summarizes classification outcomes for a run.
type Counts struct {
	Scanned      int `json:"scanned"`
	Complete     int `json:"complete_games"`
	Incomplete   int `json:"incomplete_games"`
	Unrecognized int `json:"unrecognized_files"`
}

// Report accumulates problems and counters across a run. Safe for
// concurrent use by digest workers.
type Report struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Counts    Counts    `json:"counts"`

	mu       sync.Mutex
	problems []Problem
}

// New creates a report tagged with a fresh run ID.
func New() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// Record appends a problem to the report.
func (r *Report) Record(kind ProblemKind, subject, detail string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.problems = append(r.problems, Problem{Kind: kind, Subject: subject, Detail: detail})
}

// Problems returns the recorded problems sorted by kind then subject so
// output is stable across runs.
func (r *Report) Problems() []Problem {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Problem, len(r.problems))
	copy(out, r.problems)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return out[i].Detail < out[j].Detail
	})
	return out
}

// HasProblems reports whether any problem has been recorded.
func (r *Report) HasProblems() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.problems) > 0
}

// Summary renders a one-line human summary of the counts.
func (c Counts) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d files scanned: %d complete, %d incomplete, %d unrecognized",
		c.Scanned, c.Complete, c.Incomplete, c.Unrecognized)
	return b.String()
}
