package host

import (
	"log/slog"
	"sync"

	"github.com/glimmer-dev/glimmer/pkg/observer"
	"github.com/glimmer-dev/glimmer/pkg/vdom"
)

// Host owns a set of component instances and the dirty queue that drives
// their re-renders.
type Host struct {
	mu    sync.Mutex
	queue []*Instance

	// renderCh wakes event loops when the queue becomes non-empty.
	renderCh chan struct{}

	logger *slog.Logger

	// onRender receives every tree produced by Flush.
	onRender func(in *Instance, tree *vdom.VNode)
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host's structured logger.
// If unset, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// WithRenderSink installs fn to receive every tree Flush produces.
// Servers use this to push updated output to clients.
func WithRenderSink(fn func(in *Instance, tree *vdom.VNode)) Option {
	return func(h *Host) {
		h.onRender = fn
	}
}

// New creates an empty Host.
func New(opts ...Option) *Host {
	h := &Host{
		renderCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// NewInstance creates an instance for the given render function without
// rendering it. Callers drive RenderAttempt and Commit themselves.
func (h *Host) NewInstance(render observer.RenderFunc) *Instance {
	return &Instance{
		id:     generateInstanceID(),
		host:   h,
		render: render,
	}
}

// Mount is the common path: create an instance, render it once, and commit.
func (h *Host) Mount(render observer.RenderFunc) *Instance {
	in := h.NewInstance(render)
	in.RenderAttempt()
	in.Commit()
	return in
}

// Flush re-renders every queued dirty instance and returns the number of
// render passes performed. Instances marked dirty during the flush are
// processed before it returns.
func (h *Host) Flush() int {
	rendered := 0
	for {
		h.mu.Lock()
		if len(h.queue) == 0 {
			h.mu.Unlock()
			return rendered
		}
		queue := h.queue
		h.queue = nil
		h.mu.Unlock()

		for _, in := range queue {
			if !in.dirty.CompareAndSwap(true, false) {
				continue
			}
			if in.unmounted.Load() {
				continue
			}
			tree := in.RenderAttempt()
			rendered++
			if h.onRender != nil {
				h.onRender(in, tree)
			}
		}
	}
}

// RenderSignal returns a channel that receives a value when the dirty
// queue transitions to non-empty. Coalesced: at most one value is pending.
func (h *Host) RenderSignal() <-chan struct{} {
	return h.renderCh
}

// enqueue is called by instances when they go dirty.
func (h *Host) enqueue(in *Instance) {
	h.mu.Lock()
	h.queue = append(h.queue, in)
	h.mu.Unlock()

	select {
	case h.renderCh <- struct{}{}:
	default:
		// A wakeup is already pending
	}
}
