// Package mover executes a layout plan on the filesystem.
//
// It is the mutation collaborator: the matcher and planner are pure, and
// everything destructive happens here, guarded by a lock file under the
// scan root so two runs cannot reorganize the same tree concurrently.
// Failures are per-action; one unmovable file never aborts the rest of the
// plan.
package mover

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"romrenamer/internal/fileutil"
	"romrenamer/internal/layout"
	"romrenamer/internal/logging"
	"romrenamer/internal/report"
)

const lockFileName = ".romrenamer.lock"

// Options controls how the plan is executed.
type Options struct {
	// Copy leaves sources in place instead of moving them.
	Copy bool
}

// ActionResult reports the outcome of one plan action.
type ActionResult struct {
	Action layout.Action
	Err    error
}

// Mover executes layout plans.
type Mover struct {
	logger *slog.Logger
}

// New constructs a mover.
func New(logger *slog.Logger) *Mover {
	return &Mover{logger: logging.NewComponentLogger(logger, "mover")}
}

// Execute performs every action in the plan, then writes its markers.
// Per-action failures are recorded on rep and in the returned results;
// Execute itself only fails when the run lock cannot be acquired, the
// preflight check fails, or the context is cancelled.
func (m *Mover) Execute(ctx context.Context, plan layout.Plan, opts Options, rep *report.Report) ([]ActionResult, error) {
	if len(plan.Actions) == 0 && len(plan.Markers) == 0 {
		return nil, nil
	}

	lock := flock.New(filepath.Join(plan.Root, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another romrenamer run is already reorganizing %s", plan.Root)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	if opts.Copy {
		if err := m.preflightSpace(plan); err != nil {
			return nil, err
		}
	}

	results := make([]ActionResult, 0, len(plan.Actions))
	for _, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		err := m.apply(action, opts)
		if err != nil {
			rep.Record(report.ProblemMoveFailed, action.Source, err.Error())
			m.logger.Warn("action failed",
				logging.String("source", action.Source),
				logging.String("dest", action.Dest),
				logging.Error(err))
		} else {
			m.logger.Debug("moved",
				logging.String("source", action.Source),
				logging.String("dest", action.Dest))
		}
		results = append(results, ActionResult{Action: action, Err: err})
	}

	for _, marker := range plan.Markers {
		if err := writeMarker(marker); err != nil {
			rep.Record(report.ProblemMoveFailed, marker.Path, err.Error())
			m.logger.Warn("marker write failed", logging.String("path", marker.Path), logging.Error(err))
		}
	}

	return results, nil
}

func (m *Mover) apply(action layout.Action, opts Options) error {
	if opts.Copy {
		if err := os.MkdirAll(filepath.Dir(action.Dest), 0o755); err != nil {
			return fmt.Errorf("create destination directory: %w", err)
		}
		return fileutil.CopyFileVerified(action.Source, action.Dest)
	}
	return fileutil.MoveFile(action.Source, action.Dest)
}

// preflightSpace refuses a copy run that would fill the destination
// filesystem. Moves within one filesystem need no extra space, so this only
// runs in copy mode.
func (m *Mover) preflightSpace(plan layout.Plan) error {
	var needed int64
	for _, action := range plan.Actions {
		info, err := os.Stat(action.Source)
		if err != nil {
			continue
		}
		needed += info.Size()
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(plan.Root, &stat); err != nil {
		m.logger.Warn("free space check unavailable", logging.Error(err))
		return nil
	}
	free := int64(stat.Bavail) * int64(stat.Bsize)
	if needed > free {
		return fmt.Errorf("not enough free space under %s: need %d bytes, have %d", plan.Root, needed, free)
	}
	return nil
}

func writeMarker(marker layout.Marker) error {
	if err := os.MkdirAll(filepath.Dir(marker.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(marker.Path, []byte(marker.Content), 0o644)
}
