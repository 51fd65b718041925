// Package watch is the bridge between an OS change-notification primitive
// and the rest of the pipeline. The observer normalizes raw signals into
// events and forwards them, plus advisory errors, to one subscriber. Events
// are hints: late, duplicated and coalesced delivery are all expected, and
// nothing downstream may treat them as ground truth.
package watch

import (
	"strings"
	"sync"
	"time"

	"kondo/internal/errors"
	"kondo/internal/log"
	"kondo/pkg/types"

	"github.com/fsnotify/fsnotify"
)

// Subscriber receives normalized events and advisory errors. Delivery
// happens on a single goroutine; handlers must not block, or they will
// starve delivery of subsequent coalesced events.
type Subscriber interface {
	HandleEvent(ev types.NormalizedEvent)
	HandleAdvisory(err error)
}

// Observer wraps a Source and runs the normalization loop. Start and Stop
// are idempotent guards, and Stop is safe to call concurrently with
// in-flight delivery.
type Observer struct {
	source     Source
	subscriber Subscriber

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	done     chan struct{}
	roots    []string
}

// NewObserver creates an observer delivering to the given subscriber.
func NewObserver(source Source, subscriber Subscriber) *Observer {
	return &Observer{source: source, subscriber: subscriber}
}

// Start begins observing the given paths. A second Start while already
// observing is a no-op.
func (o *Observer) Start(paths []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return nil
	}

	events, errs, err := o.source.Begin(paths)
	if err != nil {
		return err
	}

	o.roots = make([]string, len(paths))
	for i, p := range paths {
		o.roots[i] = strings.TrimSuffix(p, "/")
	}
	o.stopChan = make(chan struct{})
	o.done = make(chan struct{})
	o.running = true

	go o.loop(events, errs, o.stopChan, o.done)

	log.LogWithFields(log.F("paths", len(paths)), log.F("source", o.source.Name())).Info("observation started")
	return nil
}

// Stop halts observation and releases the underlying notification resource.
// Stop when not observing is a no-op.
func (o *Observer) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	close(o.stopChan)
	done := o.done
	o.mu.Unlock()

	if err := o.source.End(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("error releasing notification source")
	}
	<-done
	log.Info("observation stopped")
}

// IsObserving reports whether the observer is currently running.
func (o *Observer) IsObserving() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

func (o *Observer) loop(events <-chan RawEvent, errs <-chan error, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				o.deliverStopped(stop)
				return
			}
			o.handleRaw(ev)
		case err, ok := <-errs:
			if !ok {
				o.deliverStopped(stop)
				return
			}
			o.subscriber.HandleAdvisory(classifyStreamError(err))
		case <-stop:
			return
		}
	}
}

// deliverStopped reports an unexpected stream end. A close caused by our own
// Stop is not surfaced.
func (o *Observer) deliverStopped(stop <-chan struct{}) {
	select {
	case <-stop:
	default:
		o.subscriber.HandleAdvisory(errors.New(errors.StreamStopped, "", nil))
	}
}

func (o *Observer) handleRaw(ev RawEvent) {
	// A watched root disappearing is a permission-style advisory, never an
	// ordinary event.
	if (ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)) && o.isRoot(ev.Path) {
		o.subscriber.HandleAdvisory(errors.New(errors.RootPermissionLost, ev.Path, nil))
		return
	}

	kind, ok := normalizeOp(ev.Op)
	if !ok {
		// Unrecognized flag combinations are dropped, not guessed.
		return
	}

	o.subscriber.HandleEvent(types.NormalizedEvent{
		Path:   ev.Path,
		Kind:   kind,
		At:     time.Now(),
		Source: o.source.Name(),
	})
}

func (o *Observer) isRoot(path string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	trimmed := strings.TrimSuffix(path, "/")
	for _, r := range o.roots {
		if r == trimmed {
			return true
		}
	}
	return false
}

// normalizeOp maps a raw flag combination onto exactly one event kind.
// Create wins over Write for newly appeared files; a bare Chmod carries no
// content signal and is dropped.
func normalizeOp(op fsnotify.Op) (types.EventKind, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return types.EventCreated, true
	case op.Has(fsnotify.Remove):
		return types.EventRemoved, true
	case op.Has(fsnotify.Rename):
		return types.EventRenamed, true
	case op.Has(fsnotify.Write):
		return types.EventModified, true
	default:
		return "", false
	}
}

// classifyStreamError maps stream errors onto the advisory taxonomy.
func classifyStreamError(err error) error {
	switch {
	case errors.Is(err, fsnotify.ErrEventOverflow):
		// Events were coalesced away; recommend a rescan but never trigger one.
		return errors.New(errors.EventsPossiblyDropped, "", err)
	case strings.Contains(strings.ToLower(err.Error()), "permission"):
		return errors.New(errors.RootPermissionLost, "", err)
	default:
		return errors.New(errors.Unknown, "", err)
	}
}
