package watch

import (
	"sync"

	"kondo/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// RawEvent is a change signal as delivered by the underlying notification
// primitive, before normalization.
type RawEvent struct {
	Path string
	Op   fsnotify.Op
}

// Source is the capability the observer needs from an OS notification
// primitive: begin watching a set of paths, deliver raw signals and stream
// errors until End releases the resource. Keeping this narrow lets the
// normalization logic run against a synthetic source in tests.
type Source interface {
	Name() string
	Begin(paths []string) (<-chan RawEvent, <-chan error, error)
	End() error
}

// FSNotifySource adapts fsnotify to the Source capability.
type FSNotifySource struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// NewFSNotifySource creates an unstarted fsnotify source.
func NewFSNotifySource() *FSNotifySource {
	return &FSNotifySource{}
}

func (s *FSNotifySource) Name() string { return "fsnotify" }

// Begin creates the watcher, registers every path and starts forwarding.
func (s *FSNotifySource) Begin(paths []string) (<-chan RawEvent, <-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, errors.New(errors.StreamCreationFailed, "", err)
	}
	for _, p := range paths {
		if err := watcher.Add(p); err != nil {
			watcher.Close()
			return nil, nil, errors.New(errors.StreamCreationFailed, p, err)
		}
	}
	s.watcher = watcher

	events := make(chan RawEvent, 64)
	errs := make(chan error, 8)
	go func() {
		defer close(events)
		defer close(errs)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Non-blocking: with no consumer a full buffer drops the
				// signal, which the no-completeness contract permits.
				select {
				case events <- RawEvent{Path: ev.Name, Op: ev.Op}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				default:
				}
			}
		}
	}()
	return events, errs, nil
}

// End closes the underlying watcher, which in turn closes both channels.
func (s *FSNotifySource) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

// SyntheticSource is a Source fed by hand, for tests and for replaying
// recorded signal streams.
type SyntheticSource struct {
	mu     sync.Mutex
	events chan RawEvent
	errs   chan error
}

// NewSyntheticSource creates a synthetic source with buffered delivery.
func NewSyntheticSource() *SyntheticSource {
	return &SyntheticSource{}
}

func (s *SyntheticSource) Name() string { return "synthetic" }

func (s *SyntheticSource) Begin(paths []string) (<-chan RawEvent, <-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make(chan RawEvent, 64)
	s.errs = make(chan error, 8)
	return s.events, s.errs, nil
}

// Emit delivers one raw signal to the observer. Delivery is non-blocking;
// a full buffer drops the signal, which is within the no-completeness
// contract of a notification source.
func (s *SyntheticSource) Emit(ev RawEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

// EmitError delivers one stream error to the observer.
func (s *SyntheticSource) EmitError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errs == nil {
		return
	}
	select {
	case s.errs <- err:
	default:
	}
}

func (s *SyntheticSource) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.events != nil {
		close(s.events)
		close(s.errs)
		s.events = nil
		s.errs = nil
	}
	return nil
}
