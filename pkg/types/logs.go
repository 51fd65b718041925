package types

import "time"

// ExecutionOutcome is the terminal state of one attempted action.
type ExecutionOutcome string

const (
	ExecutionSucceeded ExecutionOutcome = "succeeded"
	ExecutionSkipped   ExecutionOutcome = "skipped"
	ExecutionFailed    ExecutionOutcome = "failed"
)

// ExecutionRecord is the audit record for one planned action. Each record
// serializes standalone so the log can be persisted as plain JSON lines and
// read back without replaying any code.
type ExecutionRecord struct {
	Action     PlannedAction    `json:"action"`
	Outcome    ExecutionOutcome `json:"outcome"`
	Reason     string           `json:"reason"`
	ResultPath string           `json:"result_path,omitempty"` // where the file ended up, for succeeded move/copy/rename
	TrashEntry string           `json:"trash_entry,omitempty"` // trash entry ID, for succeeded delete
	At         time.Time        `json:"at"`
}

// ExecutionLog is the append-only ordered record of one plan application.
type ExecutionLog struct {
	PlanID  string            `json:"plan_id,omitempty"`
	Records []ExecutionRecord `json:"records"`
}

// Append adds a record to the log. Records are never modified or removed.
func (l *ExecutionLog) Append(rec ExecutionRecord) {
	l.Records = append(l.Records, rec)
}

// Succeeded returns the number of records with a succeeded outcome.
func (l ExecutionLog) Succeeded() int {
	n := 0
	for _, rec := range l.Records {
		if rec.Outcome == ExecutionSucceeded {
			n++
		}
	}
	return n
}

// UndoOutcome is the terminal state of one reversal attempt.
type UndoOutcome string

const (
	UndoRestored UndoOutcome = "restored"
	UndoSkipped  UndoOutcome = "skipped"
	UndoFailed   UndoOutcome = "failed"
)

// UndoRecord is the audit record for one reversal attempt, one per
// execution record.
type UndoRecord struct {
	Path    string      `json:"path"` // the file's original path
	Kind    ActionKind  `json:"kind"`
	Outcome UndoOutcome `json:"outcome"`
	Reason  string      `json:"reason"`
	At      time.Time   `json:"at"`
}

// UndoLog is the append-only ordered record of one reversal pass.
type UndoLog struct {
	PlanID  string       `json:"plan_id,omitempty"`
	Records []UndoRecord `json:"records"`
}

// Append adds a record to the log.
func (l *UndoLog) Append(rec UndoRecord) {
	l.Records = append(l.Records, rec)
}
