// Package undo reverses an execution log. The engine operates on the log
// alone, never on plan state or rules, and always re-checks live filesystem
// state before acting: the log remembers what should have happened, the
// filesystem decides what still can. That re-check is what makes a second
// undo pass over the same log a sequence of skips rather than a second set
// of moves.
package undo

import (
	"os"
	"path/filepath"
	"time"

	"kondo/internal/errors"
	"kondo/internal/log"
	"kondo/internal/trash"
	"kondo/pkg/types"
)

// Engine reverses succeeded execution records one at a time, in log order.
//
// Undoing a copy removes the created copy, since the original was never
// touched; the copy goes into the trash rather than being unlinked, keeping
// the no-irreversible-delete guarantee intact even during undo.
type Engine struct {
	trash *trash.Store
}

// New creates an undo engine backed by the same trash store the execution
// engine deleted into.
func New(trashStore *trash.Store) *Engine {
	return &Engine{trash: trashStore}
}

// Revert attempts to reverse every eligible record and returns the undo log.
// Records that were skipped or failed during execution are not eligible and
// pass through as skips. No failure aborts the batch.
func (e *Engine) Revert(execLog types.ExecutionLog) types.UndoLog {
	undoLog := types.UndoLog{PlanID: execLog.PlanID}
	for _, rec := range execLog.Records {
		out := e.revert(rec)
		if out.Outcome == types.UndoFailed {
			log.LogWithFields(log.F("path", out.Path), log.F("reason", out.Reason)).Warn("undo failed")
		}
		undoLog.Append(out)
	}
	return undoLog
}

func (e *Engine) revert(rec types.ExecutionRecord) types.UndoRecord {
	out := types.UndoRecord{
		Path: rec.Action.File.Path,
		Kind: rec.Action.Kind,
		At:   time.Now(),
	}

	if rec.Outcome != types.ExecutionSucceeded {
		out.Outcome = types.UndoSkipped
		out.Reason = "not applicable: action was not applied"
		return out
	}

	switch rec.Action.Kind {
	case types.ActionMove, types.ActionRename:
		e.moveBack(&out, rec.ResultPath, rec.Action.File.Path)
	case types.ActionCopy:
		e.removeCopy(&out, rec.ResultPath)
	case types.ActionDelete:
		e.restoreFromTrash(&out, rec)
	default:
		out.Outcome = types.UndoSkipped
		out.Reason = "not applicable: nothing to reverse"
	}
	return out
}

// moveBack returns a moved or renamed file to its original path. The live
// state decides: an occupied original or missing result is a skip, never a
// forced overwrite.
func (e *Engine) moveBack(out *types.UndoRecord, resultPath, originalPath string) {
	if resultPath == "" {
		out.Outcome = types.UndoFailed
		out.Reason = errors.ReasonFor(errors.OriginalLocationUnknown, "")
		return
	}

	_, resultErr := os.Lstat(resultPath)
	_, originalErr := os.Lstat(originalPath)

	if os.IsNotExist(resultErr) {
		if originalErr == nil {
			out.Outcome = types.UndoSkipped
			out.Reason = "already restored"
		} else {
			out.Outcome = types.UndoFailed
			out.Reason = errors.ReasonFor(errors.SourceMissing, resultPath)
		}
		return
	}

	if originalErr == nil {
		out.Outcome = types.UndoSkipped
		out.Reason = errors.ReasonFor(errors.DestinationOccupied, originalPath)
		return
	}

	if err := os.MkdirAll(filepath.Dir(originalPath), 0o755); err != nil {
		out.Outcome = types.UndoFailed
		out.Reason = errors.ReasonFor(errors.ParentDirCreateFailed, filepath.Dir(originalPath))
		return
	}
	if err := os.Rename(resultPath, originalPath); err != nil {
		out.Outcome = types.UndoFailed
		out.Reason = errors.ReasonFor(errors.Unknown, resultPath)
		return
	}

	out.Outcome = types.UndoRestored
	out.Reason = "moved back to original path"
}

func (e *Engine) removeCopy(out *types.UndoRecord, copyPath string) {
	if copyPath == "" {
		out.Outcome = types.UndoFailed
		out.Reason = errors.ReasonFor(errors.OriginalLocationUnknown, "")
		return
	}
	if _, err := os.Lstat(copyPath); os.IsNotExist(err) {
		out.Outcome = types.UndoSkipped
		out.Reason = "already restored"
		return
	}
	if _, err := e.trash.Put(copyPath); err != nil {
		out.Outcome = types.UndoFailed
		out.Reason = errors.ReasonFor(errors.TrashOperationFailed, copyPath)
		return
	}
	out.Outcome = types.UndoRestored
	out.Reason = "copy removed"
}

func (e *Engine) restoreFromTrash(out *types.UndoRecord, rec types.ExecutionRecord) {
	if rec.TrashEntry == "" {
		out.Outcome = types.UndoFailed
		out.Reason = errors.ReasonFor(errors.OriginalLocationUnknown, rec.Action.File.Path)
		return
	}

	err := e.trash.Restore(rec.TrashEntry)
	if err == nil {
		out.Outcome = types.UndoRestored
		out.Reason = "restored from trash"
		return
	}

	switch errors.KindOf(err) {
	case errors.OriginalLocationUnknown:
		// The manifest entry is gone: a prior pass already restored it, or
		// the trash was emptied out from under us.
		if _, statErr := os.Lstat(rec.Action.File.Path); statErr == nil {
			out.Outcome = types.UndoSkipped
			out.Reason = "already restored"
		} else {
			out.Outcome = types.UndoFailed
			out.Reason = errors.ReasonFor(errors.SourceMissing, rec.Action.File.Path)
		}
	case errors.DestinationOccupied:
		out.Outcome = types.UndoSkipped
		out.Reason = errors.ReasonFor(errors.DestinationOccupied, rec.Action.File.Path)
	default:
		out.Outcome = types.UndoFailed
		out.Reason = errors.ReasonFor(errors.KindOf(err), rec.Action.File.Path)
	}
}
