package reactive

import (
	"sync"
	"sync/atomic"
)

// Reaction is the subscription primitive behind observed renders.
// A Reaction records every signal read during Track as a dependency and
// invokes its callback whenever any of those dependencies later changes.
//
// A Reaction does not re-run anything by itself: the callback decides what
// to do (typically schedule a re-render). Each render pass creates a fresh
// Reaction generation; the previous one must be disposed first so only the
// latest pass's dependency set is live.
type Reaction struct {
	id uint64

	// onChange fires when any tracked dependency changes.
	onChange func()

	// sources are the signals/memos read during the last Track.
	sources   []*signalBase
	sourcesMu sync.Mutex

	// disposed indicates the reaction has been disposed.
	disposed atomic.Bool
}

// NewReaction creates a reaction with the given change callback.
// The reaction tracks nothing until Track is called.
func NewReaction(onChange func()) *Reaction {
	return &Reaction{
		id:       nextID(),
		onChange: onChange,
	}
}

// Track runs fn with this reaction installed as the current listener.
// Every signal read inside fn becomes a dependency. Dependencies from a
// previous Track call are severed first, so the dependency set always
// reflects exactly the most recent execution.
//
// A panic inside fn propagates unchanged to the caller. Dependencies read
// before the panic stay subscribed, so a later change to one of them still
// fires the callback. The previous listener is restored either way.
//
// Calling Track on a disposed reaction runs fn untracked.
func (r *Reaction) Track(fn func()) {
	if r.disposed.Load() {
		fn()
		return
	}

	// Unsubscribe from the previous generation's sources
	r.sourcesMu.Lock()
	for _, source := range r.sources {
		source.unsubscribe(r)
	}
	r.sources = r.sources[:0]
	r.sourcesMu.Unlock()

	old := setCurrentListener(r)
	defer setCurrentListener(old)

	fn()
}

// MarkDirty fires the change callback unless the reaction is disposed.
// Implements the Listener interface. Disposal is checked at delivery time,
// so a dispose that races an in-flight notification wins.
func (r *Reaction) MarkDirty() {
	if r.disposed.Load() {
		return
	}
	if r.onChange != nil {
		r.onChange()
	}
}

// ID returns the unique identifier for this reaction.
// Implements the Listener interface.
func (r *Reaction) ID() uint64 {
	return r.id
}

// IsDisposed reports whether Dispose has been called.
func (r *Reaction) IsDisposed() bool {
	return r.disposed.Load()
}

// Dispose severs all subscriptions and permanently silences the callback.
// Idempotent: only the first call does any work.
func (r *Reaction) Dispose() {
	if r.disposed.Swap(true) {
		return
	}

	r.sourcesMu.Lock()
	for _, source := range r.sources {
		source.unsubscribe(r)
	}
	r.sources = nil
	r.sourcesMu.Unlock()
}

// addSource records a source dependency for later unsubscription.
// Called by signals when they are read during Track.
func (r *Reaction) addSource(source *signalBase) {
	r.sourcesMu.Lock()
	defer r.sourcesMu.Unlock()

	for _, s := range r.sources {
		if s == source {
			return
		}
	}
	r.sources = append(r.sources, source)
}

var _ Listener = (*Reaction)(nil)
var _ sourceTracker = (*Reaction)(nil)
