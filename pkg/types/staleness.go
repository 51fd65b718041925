package types

import "time"

// StalenessLevel is a heuristic confidence that prior scan results still
// reflect the filesystem.
type StalenessLevel string

const (
	Fresh         StalenessLevel = "fresh"
	PossiblyStale StalenessLevel = "possibly_stale"
	Stale         StalenessLevel = "stale"
)

// StalenessState tracks one watched root. It is created on registration,
// mutated only by the staleness bridge, and reset when a scan completes.
type StalenessState struct {
	Root          string         `json:"root"`
	LastScanAt    *time.Time     `json:"last_scan_at,omitempty"`
	PendingEvents int            `json:"pending_events"`
	LastEventAt   *time.Time     `json:"last_event_at,omitempty"`
	Level         StalenessLevel `json:"level"`
}

// Urgency ranks how soon a suggested rescan should happen.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ScanSuggestion is advisory output only: it recommends a rescan of a root
// but must never itself trigger one.
type ScanSuggestion struct {
	Root    string    `json:"root"`
	Reason  string    `json:"reason"`
	Urgency Urgency   `json:"urgency"`
	At      time.Time `json:"at"`
}
