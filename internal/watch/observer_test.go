package watch

import (
	"sync"
	"testing"
	"time"

	"kondo/internal/errors"
	"kondo/pkg/types"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSubscriber captures deliveries for inspection.
type recordingSubscriber struct {
	mu         sync.Mutex
	events     []types.NormalizedEvent
	advisories []error
}

func (r *recordingSubscriber) HandleEvent(ev types.NormalizedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSubscriber) HandleAdvisory(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advisories = append(r.advisories, err)
}

func (r *recordingSubscriber) eventCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recordingSubscriber) advisoryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.advisories)
}

func (r *recordingSubscriber) snapshotEvents() []types.NormalizedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.NormalizedEvent(nil), r.events...)
}

func (r *recordingSubscriber) snapshotAdvisories() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.advisories...)
}

func startObserver(t *testing.T) (*Observer, *SyntheticSource, *recordingSubscriber) {
	t.Helper()
	source := NewSyntheticSource()
	sub := &recordingSubscriber{}
	obs := NewObserver(source, sub)
	require.NoError(t, obs.Start([]string{"/watched/root"}))
	t.Cleanup(obs.Stop)
	return obs, source, sub
}

func TestNormalization(t *testing.T) {
	_, source, sub := startObserver(t)

	source.Emit(RawEvent{Path: "/watched/root/a.txt", Op: fsnotify.Create})
	source.Emit(RawEvent{Path: "/watched/root/b.txt", Op: fsnotify.Write})
	source.Emit(RawEvent{Path: "/watched/root/c.txt", Op: fsnotify.Remove})
	source.Emit(RawEvent{Path: "/watched/root/d.txt", Op: fsnotify.Rename})

	require.Eventually(t, func() bool { return sub.eventCount() == 4 }, time.Second, 5*time.Millisecond)

	events := sub.snapshotEvents()
	assert.Equal(t, types.EventCreated, events[0].Kind)
	assert.Equal(t, types.EventModified, events[1].Kind)
	assert.Equal(t, types.EventRemoved, events[2].Kind)
	assert.Equal(t, types.EventRenamed, events[3].Kind)
	assert.Equal(t, "synthetic", events[0].Source)
}

func TestCreateWinsOverWrite(t *testing.T) {
	_, source, sub := startObserver(t)

	source.Emit(RawEvent{Path: "/watched/root/new.txt", Op: fsnotify.Create | fsnotify.Write})
	require.Eventually(t, func() bool { return sub.eventCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, types.EventCreated, sub.snapshotEvents()[0].Kind)
}

func TestUnrecognizedOpsDropped(t *testing.T) {
	_, source, sub := startObserver(t)

	source.Emit(RawEvent{Path: "/watched/root/x.txt", Op: fsnotify.Chmod})
	source.Emit(RawEvent{Path: "/watched/root/y.txt", Op: fsnotify.Create})

	require.Eventually(t, func() bool { return sub.eventCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "/watched/root/y.txt", sub.snapshotEvents()[0].Path,
		"chmod-only signals are dropped silently, not guessed")
}

func TestRootRemovalIsAdvisory(t *testing.T) {
	_, source, sub := startObserver(t)

	source.Emit(RawEvent{Path: "/watched/root", Op: fsnotify.Remove})

	require.Eventually(t, func() bool { return sub.advisoryCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, sub.eventCount(), "root removal must not surface as an ordinary event")
	assert.Equal(t, errors.RootPermissionLost, errors.KindOf(sub.snapshotAdvisories()[0]))
}

func TestOverflowIsAdvisory(t *testing.T) {
	_, source, sub := startObserver(t)

	source.EmitError(fsnotify.ErrEventOverflow)

	require.Eventually(t, func() bool { return sub.advisoryCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, errors.EventsPossiblyDropped, errors.KindOf(sub.snapshotAdvisories()[0]))
}

func TestLifecycleIdempotence(t *testing.T) {
	source := NewSyntheticSource()
	sub := &recordingSubscriber{}
	obs := NewObserver(source, sub)

	require.NoError(t, obs.Start([]string{"/r"}))
	assert.True(t, obs.IsObserving())
	assert.NoError(t, obs.Start([]string{"/r"}), "second start is a no-op")

	obs.Stop()
	assert.False(t, obs.IsObserving())
	obs.Stop() // stop when not observing is a no-op

	t.Run("restart after stop", func(t *testing.T) {
		require.NoError(t, obs.Start([]string{"/r"}))
		source.Emit(RawEvent{Path: "/r/file", Op: fsnotify.Create})
		require.Eventually(t, func() bool { return sub.eventCount() == 1 }, time.Second, 5*time.Millisecond)
		obs.Stop()
	})
}

func TestStopDuringDelivery(t *testing.T) {
	source := NewSyntheticSource()
	sub := &recordingSubscriber{}
	obs := NewObserver(source, sub)
	require.NoError(t, obs.Start([]string{"/r"}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			source.Emit(RawEvent{Path: "/r/file", Op: fsnotify.Write})
		}
	}()
	obs.Stop()
	<-done
	// No panic and no deadlock is the property under test.
}
