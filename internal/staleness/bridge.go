// Package staleness consumes normalized change events and maintains a
// per-root confidence level about prior scan results. Its only output is an
// advisory ScanSuggestion; it never triggers a rescan and never feeds back
// into planning or execution.
package staleness

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"kondo/internal/log"
	"kondo/pkg/types"
)

// Thresholds for the staleness transition function and suggestion policy.
const (
	StaleAfter         = 300 * time.Second // a scan older than this is stale outright
	EventThreshold     = 10                // pending events at which a root goes stale
	RemovalEscalation  = 3                 // pending count at which removed/renamed escalates to stale
	SuggestionCooldown = 60 * time.Second  // per-root minimum gap between suggestions
)

// Clock abstracts time retrieval so the transition arithmetic is
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SuggestionHandler receives advisory rescan suggestions. The receiver
// decides whether to act; the bridge never calls back into the pipeline.
type SuggestionHandler func(types.ScanSuggestion)

// Bridge owns one StalenessState per registered root. All state lives behind
// a single mutex so the event-delivery path and query paths never observe a
// half-applied transition.
type Bridge struct {
	mu            sync.Mutex
	clock         Clock
	handler       SuggestionHandler
	states        map[string]*types.StalenessState
	lastSuggested map[string]time.Time
}

// NewBridge creates a bridge delivering suggestions to handler. A nil
// handler is allowed; levels are still tracked and queryable.
func NewBridge(handler SuggestionHandler) *Bridge {
	return NewBridgeWithClock(handler, realClock{})
}

// NewBridgeWithClock is NewBridge with an explicit clock, for tests.
func NewBridgeWithClock(handler SuggestionHandler, clock Clock) *Bridge {
	return &Bridge{
		clock:         clock,
		handler:       handler,
		states:        make(map[string]*types.StalenessState),
		lastSuggested: make(map[string]time.Time),
	}
}

// RegisterRoot starts tracking a root. Paths are canonicalized so later
// attribution is insensitive to trailing separators. Registering a root
// twice keeps the existing state.
func (b *Bridge) RegisterRoot(root string) {
	canonical := canonicalize(root)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.states[canonical]; ok {
		return
	}
	// No scan recorded yet, so knowledge of this root starts out stale.
	b.states[canonical] = &types.StalenessState{Root: canonical, Level: types.Stale}
}

// HandleEvent attributes the event to a registered root and applies the
// staleness transition. Events under no registered root are ignored.
func (b *Bridge) HandleEvent(ev types.NormalizedEvent) {
	b.mu.Lock()
	st := b.attribute(ev.Path)
	if st == nil {
		b.mu.Unlock()
		return
	}

	now := b.clock.Now()
	at := ev.At
	if at.IsZero() {
		at = now
	}
	st.PendingEvents++
	st.LastEventAt = &at
	st.Level = b.levelFor(st, ev.Kind, now)

	var suggestion *types.ScanSuggestion
	if st.Level == types.Stale {
		suggestion = b.maybeSuggest(st, ev.Kind, now)
	}
	b.mu.Unlock()

	// Deliver outside the lock so handlers may query the bridge.
	if suggestion != nil && b.handler != nil {
		log.LogWithFields(log.F("root", suggestion.Root), log.F("urgency", suggestion.Urgency)).Debug("rescan suggested")
		b.handler(*suggestion)
	}
}

// MarkScanCompleted resets the root unconditionally: pending count to zero,
// last-event time cleared, level fresh.
func (b *Bridge) MarkScanCompleted(root string, at time.Time) {
	canonical := canonicalize(root)

	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[canonical]
	if !ok {
		return
	}
	st.LastScanAt = &at
	st.PendingEvents = 0
	st.LastEventAt = nil
	st.Level = types.Fresh
}

// StalenessOf returns a copy of the root's state.
func (b *Bridge) StalenessOf(root string) (types.StalenessState, bool) {
	canonical := canonicalize(root)

	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[canonical]
	if !ok {
		return types.StalenessState{}, false
	}
	return *st, true
}

// attribute finds the registered root owning path. When several roots are
// prefixes of the path the longest one wins, and prefix checks respect path
// separator boundaries so /a/bc never attributes to /a/b. Callers hold the
// lock.
func (b *Bridge) attribute(path string) *types.StalenessState {
	canonical := canonicalize(path)
	var best *types.StalenessState
	bestLen := -1
	for root, st := range b.states {
		if !underRoot(root, canonical) {
			continue
		}
		if len(root) > bestLen {
			best, bestLen = st, len(root)
		}
	}
	return best
}

// levelFor is the staleness transition function, evaluated on every event
// for the owning root.
func (b *Bridge) levelFor(st *types.StalenessState, kind types.EventKind, now time.Time) types.StalenessLevel {
	destructive := kind == types.EventRemoved || kind == types.EventRenamed
	switch {
	case st.LastScanAt == nil:
		return types.Stale
	case now.Sub(*st.LastScanAt) > StaleAfter:
		return types.Stale
	case st.PendingEvents >= EventThreshold:
		return types.Stale
	case destructive && st.PendingEvents >= RemovalEscalation:
		return types.Stale
	case destructive:
		return types.PossiblyStale
	case st.PendingEvents > 0:
		return types.PossiblyStale
	default:
		return types.Fresh
	}
}

// maybeSuggest applies the per-root cooldown and builds the suggestion.
// Callers hold the lock.
func (b *Bridge) maybeSuggest(st *types.StalenessState, kind types.EventKind, now time.Time) *types.ScanSuggestion {
	if last, ok := b.lastSuggested[st.Root]; ok && now.Sub(last) < SuggestionCooldown {
		return nil
	}
	b.lastSuggested[st.Root] = now

	return &types.ScanSuggestion{
		Root:    st.Root,
		Reason:  suggestionReason(st, kind, now),
		Urgency: urgencyFor(st.PendingEvents),
		At:      now,
	}
}

func urgencyFor(pending int) types.Urgency {
	switch {
	case pending >= 2*EventThreshold:
		return types.UrgencyHigh
	case pending >= EventThreshold:
		return types.UrgencyMedium
	default:
		return types.UrgencyLow
	}
}

// suggestionReason generates deterministic reason text from state: event
// count dominates, then elapsed time since the last scan, then the
// triggering event's kind.
func suggestionReason(st *types.StalenessState, kind types.EventKind, now time.Time) string {
	switch {
	case st.PendingEvents >= EventThreshold:
		return fmt.Sprintf("%d changes recorded since the last scan", st.PendingEvents)
	case st.LastScanAt == nil:
		return "this root has never been scanned"
	case now.Sub(*st.LastScanAt) > StaleAfter:
		return fmt.Sprintf("last scan was %s ago", now.Sub(*st.LastScanAt).Round(time.Second))
	default:
		return fmt.Sprintf("a %s event affected this root", kind)
	}
}

func canonicalize(path string) string {
	cleaned := filepath.Clean(path)
	if abs, err := filepath.Abs(cleaned); err == nil {
		cleaned = abs
	}
	sep := string(filepath.Separator)
	trimmed := strings.TrimSuffix(cleaned, sep)
	if trimmed == "" {
		return sep
	}
	return trimmed
}

func underRoot(root, path string) bool {
	if path == root {
		return true
	}
	sep := string(filepath.Separator)
	if root == sep {
		return strings.HasPrefix(path, sep)
	}
	return strings.HasPrefix(path, root+sep)
}
