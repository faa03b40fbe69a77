package observer

import (
	"sync"
	"time"

	"github.com/glimmer-dev/glimmer/pkg/reactive"
)

// leakTracker is the process-wide registry of slots whose render passes
// have not been confirmed mounted. A single timer sweeps entries whose
// grace period elapsed and force-disposes their reactions.
//
// Without the sweep, every render the host starts and then abandons before
// commit would leak its reaction, and everything the reaction retains, for
// the lifetime of the process. The registry holds back-references only:
// disposal authority outside the sweep stays with the slot's owner.
type leakTracker struct {
	mu      sync.Mutex
	entries map[*Slot]struct{}

	// timer is the single outstanding sweep timer, nil when idle.
	timer *time.Timer

	// grace is both the per-record cleanup deadline offset and the sweep
	// interval. Too short risks disposing reactions of components that are
	// still on their way to commit; too long delays leak recovery.
	grace time.Duration

	// onSweep, if set, observes each sweep pass with the number of
	// reactions disposed. Used by telemetry.
	onSweep func(disposed int)
}

// sharedTracker is the singleton registry. Initialized empty and idle;
// the timer is armed lazily on the first tracked slot.
var sharedTracker = &leakTracker{
	entries: make(map[*Slot]struct{}),
	grace:   DefaultCleanupGrace,
}

// track adds a back-reference to the registry and arms the sweep timer if
// it is not already running. Idempotent.
func (t *leakTracker) track(slot *Slot) {
	if slot == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[slot] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.grace, t.sweep)
	}
}

// untrack removes a back-reference. No-op if absent. When the registry
// drains, the timer is stopped so an idle process keeps no timer pending.
func (t *leakTracker) untrack(slot *Slot) {
	if slot == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, slot)
	if len(t.entries) == 0 && t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// sweep is timer-invoked. It force-disposes the reaction of every tracked
// record whose deadline elapsed, clearing the record's reaction reference
// so a later unmount is a guarded no-op. A missing or already-disposed
// record is benign: the back-reference is simply dropped. After the pass
// the timer re-arms iff the registry is still non-empty.
func (t *leakTracker) sweep() {
	t.mu.Lock()

	now := time.Now()
	disposed := 0
	var stale []*reactive.Reaction

	for slot := range t.entries {
		slot.mu.Lock()
		rec := slot.rec
		if rec == nil || rec.reaction == nil || rec.mounted {
			slot.mu.Unlock()
			delete(t.entries, slot)
			continue
		}
		if !now.Before(rec.cleanupAt) {
			stale = append(stale, rec.reaction)
			rec.reaction = nil
			slot.mu.Unlock()
			delete(t.entries, slot)
			disposed++
			continue
		}
		slot.mu.Unlock()
	}

	t.timer = nil
	if len(t.entries) > 0 {
		t.timer = time.AfterFunc(t.grace, t.sweep)
	}
	cb := t.onSweep
	t.mu.Unlock()

	// Dispose outside the registry lock; Dispose is idempotent, so a
	// concurrent unmount racing the sweep cannot double-free.
	for _, rx := range stale {
		rx.Dispose()
	}

	if cb != nil {
		cb(disposed)
	}
}

// reset stops the timer and clears all entries without disposing anything.
func (t *leakTracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.entries = make(map[*Slot]struct{})
}

// len reports the number of tracked back-references.
func (t *leakTracker) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// TrackedCount returns the number of render passes currently awaiting
// commit confirmation. Exposed for tests and telemetry gauges.
func TrackedCount() int {
	return sharedTracker.len()
}

// SetSweepHook installs fn to observe every sweep pass with the number of
// reactions it disposed. Pass nil to remove. Intended for telemetry.
func SetSweepHook(fn func(disposed int)) {
	sharedTracker.mu.Lock()
	defer sharedTracker.mu.Unlock()
	sharedTracker.onSweep = fn
}

// ResetTrackerForTesting clears the leak registry and stops its timer.
// Tests that exercise abandonment use this to isolate themselves from
// slots tracked by other tests.
func ResetTrackerForTesting() {
	sharedTracker.reset()
}
