// Package errors defines the enumerated failure kinds the pipeline reports.
// Audit-trail reasons are generated from the kind, never from wrapped OS
// error text, so logs stay stable and readable across platforms.
package errors

import (
	"errors"
	"fmt"
)

// Re-exported for convenience so callers need only one errors import.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// Kind identifies the enumerated cause of a failure or advisory condition.
type Kind int

const (
	Unknown Kind = iota

	// Execution failure kinds
	DestinationExists
	PermissionDenied
	SourceMissing
	ParentDirCreateFailed
	TrashOperationFailed

	// Undo failure kinds
	DestinationOccupied
	OriginalLocationUnknown

	// Observer advisory kinds
	RootPermissionLost
	StreamCreationFailed
	StreamStopped
	EventsPossiblyDropped
)

// reasons maps each kind to its stable human-readable phrasing.
var reasons = map[Kind]string{
	Unknown:                 "operation failed for an unknown reason",
	DestinationExists:       "destination already exists",
	PermissionDenied:        "permission denied",
	SourceMissing:           "source file no longer exists",
	ParentDirCreateFailed:   "could not create parent directory",
	TrashOperationFailed:    "trash operation failed",
	DestinationOccupied:     "original location is occupied",
	OriginalLocationUnknown: "original location is unknown",
	RootPermissionLost:      "permission lost on watched root",
	StreamCreationFailed:    "could not create notification stream",
	StreamStopped:           "notification stream stopped",
	EventsPossiblyDropped:   "events may have been dropped",
}

// ReasonFor produces the audit-trail reason for a kind, with optional
// context appended ("destination already exists: /x/y").
func ReasonFor(kind Kind, detail string) string {
	reason, ok := reasons[kind]
	if !ok {
		reason = reasons[Unknown]
	}
	if detail == "" {
		return reason
	}
	return fmt.Sprintf("%s: %s", reason, detail)
}

// OperationError carries a kind, the path it concerns, and the underlying
// error, if any.
type OperationError struct {
	kind Kind
	path string
	err  error
}

// New creates an OperationError.
func New(kind Kind, path string, err error) *OperationError {
	return &OperationError{kind: kind, path: path, err: err}
}

func (e *OperationError) Error() string {
	msg := ReasonFor(e.kind, e.path)
	if e.err != nil {
		return fmt.Sprintf("%s: %v", msg, e.err)
	}
	return msg
}

// Kind returns the enumerated cause.
func (e *OperationError) Kind() Kind { return e.kind }

// Path returns the path the error concerns, if any.
func (e *OperationError) Path() string { return e.path }

// Unwrap returns the wrapped error.
func (e *OperationError) Unwrap() error { return e.err }

// Reason returns the stable audit reason for the error, without the wrapped
// low-level message.
func (e *OperationError) Reason() string { return ReasonFor(e.kind, e.path) }

// KindOf extracts the Kind from err, or Unknown if err is not an
// OperationError.
func KindOf(err error) Kind {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind()
	}
	return Unknown
}
