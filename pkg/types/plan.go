package types

import "time"

// ActionKind is the concrete operation planned for a file.
type ActionKind string

const (
	ActionMove   ActionKind = "move"
	ActionCopy   ActionKind = "copy"
	ActionDelete ActionKind = "delete"
	ActionRename ActionKind = "rename"
	ActionSkip   ActionKind = "skip"
)

// PlannedAction pairs a file snapshot with exactly one concrete action and a
// mandatory human-readable reason. Skip is itself an action, never an
// omission, so every evaluated file appears in the plan.
type PlannedAction struct {
	File        FileSnapshot `json:"file"`
	Kind        ActionKind   `json:"kind"`
	Destination string       `json:"destination,omitempty"` // full target path for move / copy
	NewName     string       `json:"new_name,omitempty"`    // for rename
	Reason      string       `json:"reason"`
}

// ActionPlan is an ordered sequence of planned actions, one per evaluated
// file. It is immutable once constructed: the execution engine consumes it
// read-only after approval and never re-plans mid-execution.
//
// ID and CreatedAt are bookkeeping attached by the caller after planning;
// the planner itself stamps nothing, so planning stays deterministic over
// Actions alone.
type ActionPlan struct {
	ID        string          `json:"id,omitempty"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
	Actions   []PlannedAction `json:"actions"`
}

// Counts returns how many actions of each kind the plan holds.
func (p ActionPlan) Counts() map[ActionKind]int {
	counts := make(map[ActionKind]int)
	for _, a := range p.Actions {
		counts[a.Kind]++
	}
	return counts
}
