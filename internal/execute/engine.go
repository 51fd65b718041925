// Package execute applies an approved action plan to the filesystem. The
// plan is applied exactly as given: no re-evaluation of rules, no dynamic
// adjustment, and re-planning mid-execution is forbidden by construction
// (the engine only ever reads the plan).
package execute

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"kondo/internal/errors"
	"kondo/internal/log"
	"kondo/internal/trash"
	"kondo/pkg/types"
)

// Engine applies plans sequentially, one action at a time. Sequential
// application keeps the never-overwrite and undo-idempotence guarantees
// trivially correct; filesystem ops are not the bottleneck here.
type Engine struct {
	trash  *trash.Store
	dryRun bool
}

// New creates an engine whose deletes route through the given trash store.
func New(trashStore *trash.Store) *Engine {
	return &Engine{trash: trashStore}
}

// SetDryRun toggles simulation mode: actions are logged but nothing on the
// filesystem changes.
func (e *Engine) SetDryRun(dryRun bool) { e.dryRun = dryRun }

// Apply attempts every action in plan order and returns the execution log.
// Each action is attempted independently; a failure never aborts the batch,
// and every outcome carries a reason.
func (e *Engine) Apply(p types.ActionPlan) types.ExecutionLog {
	execLog := types.ExecutionLog{PlanID: p.ID}
	for _, a := range p.Actions {
		rec := e.apply(a)
		switch rec.Outcome {
		case types.ExecutionFailed:
			log.LogWithFields(log.F("path", a.File.Path), log.F("reason", rec.Reason)).Warn("action failed")
		default:
			log.Debug("%s %s: %s", rec.Outcome, a.File.Path, rec.Reason)
		}
		execLog.Append(rec)
	}
	return execLog
}

// apply performs one action and produces its terminal record:
// Planned -> Succeeded | Skipped | Failed, single transition.
func (e *Engine) apply(a types.PlannedAction) types.ExecutionRecord {
	rec := types.ExecutionRecord{Action: a, At: time.Now()}

	if a.Kind == types.ActionSkip {
		rec.Outcome = types.ExecutionSkipped
		rec.Reason = a.Reason
		return rec
	}

	// A stale snapshot is a skip, not a failure: the file is simply gone.
	if _, err := os.Lstat(a.File.Path); err != nil {
		if os.IsNotExist(err) {
			rec.Outcome = types.ExecutionSkipped
			rec.Reason = errors.ReasonFor(errors.SourceMissing, a.File.Path)
			return rec
		}
		rec.Outcome = types.ExecutionFailed
		rec.Reason = errors.ReasonFor(failureKind(err), a.File.Path)
		return rec
	}

	if e.dryRun {
		rec.Outcome = types.ExecutionSkipped
		rec.Reason = "dry run: no changes made"
		return rec
	}

	switch a.Kind {
	case types.ActionMove:
		e.transfer(&rec, a.File.Path, a.Destination, os.Rename)
	case types.ActionCopy:
		e.transfer(&rec, a.File.Path, a.Destination, copyFile)
	case types.ActionRename:
		dest := filepath.Join(filepath.Dir(a.File.Path), a.NewName)
		e.transfer(&rec, a.File.Path, dest, os.Rename)
	case types.ActionDelete:
		e.delete(&rec, a.File.Path)
	default:
		rec.Outcome = types.ExecutionFailed
		rec.Reason = errors.ReasonFor(errors.Unknown, string(a.Kind))
	}
	return rec
}

// transfer implements move, copy and rename: never overwrite an existing
// destination, create missing parent directories, one best-effort attempt.
func (e *Engine) transfer(rec *types.ExecutionRecord, src, dest string, op func(string, string) error) {
	if _, err := os.Lstat(dest); err == nil {
		rec.Outcome = types.ExecutionFailed
		rec.Reason = errors.ReasonFor(errors.DestinationExists, dest)
		return
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		rec.Outcome = types.ExecutionFailed
		rec.Reason = errors.ReasonFor(errors.ParentDirCreateFailed, filepath.Dir(dest))
		return
	}

	if err := op(src, dest); err != nil {
		rec.Outcome = types.ExecutionFailed
		rec.Reason = errors.ReasonFor(failureKind(err), src)
		return
	}

	rec.Outcome = types.ExecutionSucceeded
	rec.Reason = rec.Action.Reason
	rec.ResultPath = dest
}

func (e *Engine) delete(rec *types.ExecutionRecord, path string) {
	entryID, err := e.trash.Put(path)
	if err != nil {
		rec.Outcome = types.ExecutionFailed
		rec.Reason = errors.ReasonFor(errors.TrashOperationFailed, path)
		return
	}
	rec.Outcome = types.ExecutionSucceeded
	rec.Reason = rec.Action.Reason
	rec.TrashEntry = entryID
}

// failureKind maps a low-level operation error onto the enumerated taxonomy
// so the recorded reason stays platform-independent.
func failureKind(err error) errors.Kind {
	switch {
	case os.IsPermission(err):
		return errors.PermissionDenied
	case os.IsNotExist(err):
		return errors.SourceMissing
	default:
		return errors.Unknown
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
