package host

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/glimmer-dev/glimmer/pkg/observer"
	"github.com/glimmer-dev/glimmer/pkg/vdom"
)

// Instance is one component instance. It implements observer.Instance.
type Instance struct {
	id     string
	host   *Host
	render observer.RenderFunc

	// slot is the persistent storage cell handed to the observer binding.
	// It lives exactly as long as the instance.
	slot observer.Slot

	// dirty indicates the instance needs re-rendering.
	dirty atomic.Bool

	// unmounted is set once by Unmount.
	unmounted atomic.Bool

	mu            sync.Mutex
	committed     bool
	pendingCommit func() func()
	teardowns     []func()
	lastTree      *vdom.VNode
	suspended     bool
}

var _ observer.Instance = (*Instance)(nil)

// instanceIDCounter is used to generate unique instance IDs.
var instanceIDCounter atomic.Uint64

func generateInstanceID() string {
	return fmt.Sprintf("c%d", instanceIDCounter.Add(1))
}

// ID returns the unique instance identifier.
func (in *Instance) ID() string {
	return in.id
}

// RenderAttempt performs one render pass. It may be called any number of
// times before Commit; each pass supersedes the previous one. A render
// that raises an Awaitable suspends: the pass produces no output, but the
// instance stays subscribed and a later dependency change retries it.
// Any other panic propagates.
func (in *Instance) RenderAttempt() *vdom.VNode {
	if in.unmounted.Load() {
		return nil
	}

	tree, pending := in.renderOnce()

	in.mu.Lock()
	in.lastTree = tree
	in.suspended = pending != nil
	in.mu.Unlock()

	return tree
}

// renderOnce runs the render function behind a suspension boundary.
func (in *Instance) renderOnce() (tree *vdom.VNode, pending observer.Awaitable) {
	defer func() {
		if v := recover(); v != nil {
			aw, ok := v.(observer.Awaitable)
			if !ok {
				panic(v)
			}
			pending = aw
		}
	}()

	tree = in.render(in)
	return tree, nil
}

// Commit confirms that the most recent render attempt survived into the
// visible tree. The first call runs the registered mount hook; later calls
// are no-ops. An instance that is never committed is an abandoned pass.
func (in *Instance) Commit() {
	in.mu.Lock()
	if in.committed || in.unmounted.Load() {
		in.mu.Unlock()
		return
	}
	in.committed = true
	setup := in.pendingCommit
	in.pendingCommit = nil
	in.mu.Unlock()

	if setup == nil {
		return
	}
	// Run outside the lock: the hook may call RequestRender.
	if teardown := setup(); teardown != nil {
		in.mu.Lock()
		in.teardowns = append(in.teardowns, teardown)
		in.mu.Unlock()
	}
}

// Unmount tears the instance down: teardowns run in reverse order, and the
// observer slot is released regardless of whether the instance ever
// committed. Idempotent.
func (in *Instance) Unmount() {
	if in.unmounted.Swap(true) {
		return
	}

	in.mu.Lock()
	teardowns := in.teardowns
	in.teardowns = nil
	in.pendingCommit = nil
	in.lastTree = nil
	in.mu.Unlock()

	for i := len(teardowns) - 1; i >= 0; i-- {
		teardowns[i]()
	}

	// Covers the never-committed case, where no teardown was registered.
	// Release is idempotent, so running after a teardown is harmless.
	observer.ReleaseSlot(&in.slot)
}

// IsCommitted reports whether the instance has committed.
func (in *Instance) IsCommitted() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.committed
}

// IsSuspended reports whether the most recent render attempt raised an
// Awaitable instead of producing output.
func (in *Instance) IsSuspended() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.suspended
}

// LastTree returns the output of the most recent render attempt.
func (in *Instance) LastTree() *vdom.VNode {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.lastTree
}

// ObserverSlot implements observer.Instance.
func (in *Instance) ObserverSlot() *observer.Slot {
	return &in.slot
}

// RequestRender implements observer.Instance: CAS on the dirty flag so
// concurrent notifications coalesce into a single queued render.
func (in *Instance) RequestRender() {
	if in.unmounted.Load() {
		return
	}
	if in.dirty.CompareAndSwap(false, true) {
		in.host.enqueue(in)
	}
}

// OnCommit implements observer.Instance. Before commit, the latest
// registration wins (each render attempt re-registers); after commit,
// registrations are ignored.
func (in *Instance) OnCommit(setup func() func()) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.committed {
		return
	}
	in.pendingCommit = setup
}
