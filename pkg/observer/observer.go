package observer

import (
	"sync"
	"time"

	"github.com/glimmer-dev/glimmer/pkg/reactive"
	"github.com/glimmer-dev/glimmer/pkg/vdom"
)

// RenderFunc renders one component instance into a VNode tree.
// Wrap preserves this signature exactly.
type RenderFunc func(in Instance) *vdom.VNode

// Instance is the surface the binding needs from the host rendering
// framework for one component instance. The host implements it; the
// wrapped render function consumes it.
type Instance interface {
	// ObserverSlot returns this instance's persistent storage cell.
	// The same *Slot must be returned for every render of the instance;
	// a remount is a new instance and therefore a new slot.
	ObserverSlot() *Slot

	// RequestRender schedules a re-render of this instance through the
	// host's own update mechanism. Must be safe to call from signal
	// notification callbacks.
	RequestRender()

	// OnCommit registers a mount hook. The host runs setup once, after the
	// instance's first successful commit; the returned teardown runs once
	// on unmount. Registrations after the instance has committed are
	// ignored; before commit, the latest registration wins.
	OnCommit(setup func() (teardown func()))
}

// Awaitable is the contract a raised value must satisfy to be treated as an
// asynchronous-pending signal instead of a render error. Such values pass
// through Wrap unchanged so an outer suspension boundary can catch them and
// retry once the awaited work settles. context.Context satisfies it.
type Awaitable interface {
	Done() <-chan struct{}
}

// Slot is the per-instance storage cell holding the reaction record.
// The host owns the slot; the leak tracker keeps only a back-reference to
// it and treats a cleared record as a benign no-op.
type Slot struct {
	mu  sync.Mutex
	rec *reactionRecord
}

// reactionRecord tracks one mounted-or-pending component instance.
type reactionRecord struct {
	// reaction is the owned, disposable tracking handle. Replaced (old one
	// disposed first) on every render attempt; nil once force-disposed.
	reaction *reactive.Reaction

	// cleanupAt is the deadline after which, if still unmounted, the
	// record is eligible for forced disposal by the leak sweep.
	cleanupAt time.Time

	// mounted becomes true when the host confirms the instance survived
	// to its post-commit phase. The transition is irreversible; a remount
	// creates a new record.
	mounted bool

	// updateOwed is set when a dependency changes between a render attempt
	// and the commit hook firing. Consumed by the commit hook, which then
	// requests the single re-render that would otherwise be lost.
	updateOwed bool
}

// outcome is the transient per-render-attempt result: exactly one of node
// (possibly nil), pending, or raised is meaningful. Consumed synchronously
// by the wrapper before returning.
type outcome struct {
	node    *vdom.VNode
	pending Awaitable
	raised  any
	failed  bool
}

// Wrap returns a render function with the same signature as render that
// tracks signal reads and keeps the instance's reaction alive across the
// host's render/commit/unmount lifecycle.
//
// In pass-through mode Wrap is the identity function: the mode is checked
// at wrap time, so toggling it affects subsequent Wrap calls only.
func Wrap(render RenderFunc, opts ...Option) RenderFunc {
	if IsPassThroughMode() {
		return render
	}

	cfg := newConfig(opts)

	return func(in Instance) *vdom.VNode {
		slot := in.ObserverSlot()

		slot.mu.Lock()
		rec := slot.rec
		// A record with no reaction and no mount was force-disposed by the
		// leak sweep; this render revives it and must re-enter the registry
		// with a fresh deadline.
		revived := rec != nil && rec.reaction == nil && !rec.mounted
		if rec != nil && rec.reaction != nil {
			// Superseded render attempt: the previous pass's dependency
			// set is stale. Dispose it now so only the newest tracked
			// execution can ever fire. The record itself survives, so
			// mount state and the cleanup deadline carry across renders.
			rec.reaction.Dispose()
			rec.reaction = nil
		}
		first := rec == nil
		if first || revived {
			if first {
				rec = &reactionRecord{}
				slot.rec = rec
			}
			rec.cleanupAt = time.Now().Add(cleanupGrace())
		}

		rx := reactive.NewReaction(func() {
			slot.mu.Lock()
			mounted := rec.mounted
			if !mounted {
				// The instance is not confirmed live; requesting a render
				// now could resurrect an abandoned pass. Flag it and let
				// the commit hook issue the one render that is owed.
				rec.updateOwed = true
			}
			slot.mu.Unlock()

			if mounted {
				in.RequestRender()
			}
		})
		rec.reaction = rx
		slot.mu.Unlock()

		if first || revived {
			sharedTracker.track(slot)
		}

		out := capture(rx, render, in)

		in.OnCommit(func() func() {
			sharedTracker.untrack(slot)

			slot.mu.Lock()
			rec.mounted = true
			owed := rec.updateOwed
			rec.updateOwed = false
			slot.mu.Unlock()

			if owed {
				in.RequestRender()
			}
			return func() { ReleaseSlot(slot) }
		})

		switch {
		case out.pending != nil:
			// Re-raise unchanged for the suspension boundary. Dependencies
			// tracked before the raise stay live, so a later change makes
			// the instance render-eligible again.
			panic(out.pending)
		case out.failed:
			if cfg.onError != nil {
				cfg.onError(out.raised)
			} else {
				cfg.logger.Error("recovered render error", "value", out.raised)
			}
			// The instance stays subscribed; this pass renders nothing.
			return nil
		default:
			return out.node
		}
	}
}

// capture runs the tracked render and converts its result into an outcome
// instead of letting a raised value escape.
func capture(rx *reactive.Reaction, render RenderFunc, in Instance) (out outcome) {
	defer func() {
		if v := recover(); v != nil {
			if aw, ok := v.(Awaitable); ok {
				out.pending = aw
				return
			}
			out.failed = true
			out.raised = v
		}
	}()

	rx.Track(func() {
		out.node = render(in)
	})
	return out
}

// ReleaseSlot force-disposes whatever record the slot currently holds:
// the reaction is disposed, the record detached, any owed update discarded,
// and the slot removed from the leak tracker. Safe for instances that never
// mounted; idempotent.
func ReleaseSlot(slot *Slot) {
	if slot == nil {
		return
	}
	sharedTracker.untrack(slot)

	slot.mu.Lock()
	rec := slot.rec
	slot.rec = nil
	var rx *reactive.Reaction
	if rec != nil {
		rx = rec.reaction
		rec.reaction = nil
		rec.updateOwed = false
	}
	slot.mu.Unlock()

	if rx != nil {
		rx.Dispose()
	}
}
