package types

import "time"

// EventKind classifies a normalized filesystem change notification.
type EventKind string

const (
	EventCreated  EventKind = "created"
	EventRemoved  EventKind = "removed"
	EventModified EventKind = "modified"
	EventRenamed  EventKind = "renamed"
)

// NormalizedEvent is a change hint from the observer. It is never ground
// truth: events may arrive late, duplicated, coalesced, or reference a path
// that no longer exists in that state. Consumers must tolerate all of that.
type NormalizedEvent struct {
	Path   string    `json:"path"`
	Kind   EventKind `json:"kind"`
	At     time.Time `json:"at"`
	Source string    `json:"source"`
}
