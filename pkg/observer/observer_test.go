package observer_test

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/glimmer-dev/glimmer/pkg/observer"
	"github.com/glimmer-dev/glimmer/pkg/reactive"
	"github.com/glimmer-dev/glimmer/pkg/vdom"
)

// fakeInstance implements observer.Instance with the same commit semantics
// as a real host, while exposing every lifecycle step to the test.
type fakeInstance struct {
	slot observer.Slot

	renderRequests int
	pendingCommit  func() func()
	committed      bool
	teardowns      []func()
}

func (f *fakeInstance) ObserverSlot() *observer.Slot { return &f.slot }

func (f *fakeInstance) RequestRender() { f.renderRequests++ }

func (f *fakeInstance) OnCommit(setup func() func()) {
	if f.committed {
		return
	}
	f.pendingCommit = setup
}

// commit runs the registered mount hook once.
func (f *fakeInstance) commit() {
	if f.committed || f.pendingCommit == nil {
		return
	}
	f.committed = true
	setup := f.pendingCommit
	f.pendingCommit = nil
	if teardown := setup(); teardown != nil {
		f.teardowns = append(f.teardowns, teardown)
	}
}

// unmount runs teardowns in reverse order and releases the slot, covering
// instances that never committed.
func (f *fakeInstance) unmount() {
	for i := len(f.teardowns) - 1; i >= 0; i-- {
		f.teardowns[i]()
	}
	f.teardowns = nil
	observer.ReleaseSlot(&f.slot)
}

func textOf(t *testing.T, node *vdom.VNode) string {
	t.Helper()
	if node == nil {
		t.Fatal("expected a rendered node, got nil")
	}
	if node.Kind != vdom.KindText {
		t.Fatalf("expected text node, got %s", node.Kind)
	}
	return node.Text
}

func TestWrapRerendersOnDependencyChange(t *testing.T) {
	s := reactive.NewSignal("foo")
	in := &fakeInstance{}

	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		return vdom.Text(s.Get())
	})

	if got := textOf(t, wrapped(in)); got != "foo" {
		t.Fatalf("expected %q, got %q", "foo", got)
	}
	in.commit()

	s.Set("bar")
	if in.renderRequests != 1 {
		t.Fatalf("expected 1 render request, got %d", in.renderRequests)
	}

	if got := textOf(t, wrapped(in)); got != "bar" {
		t.Errorf("expected %q after update, got %q", "bar", got)
	}

	// A value the component never read must not re-render it.
	other := reactive.NewSignal(0)
	other.Set(1)
	if in.renderRequests != 1 {
		t.Errorf("unrelated signal caused a render request: %d", in.renderRequests)
	}
	in.unmount()
}

func TestSiblingRenderIsolation(t *testing.T) {
	a := reactive.NewSignal("a")
	b := reactive.NewSignal("b")
	left := &fakeInstance{}
	right := &fakeInstance{}

	wrapLeft := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		return vdom.Text(a.Get())
	})
	wrapRight := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		return vdom.Text(b.Get())
	})

	wrapLeft(left)
	left.commit()
	wrapRight(right)
	right.commit()

	a.Set("a2")
	if left.renderRequests != 1 {
		t.Errorf("left expected 1 render request, got %d", left.renderRequests)
	}
	if right.renderRequests != 0 {
		t.Errorf("right should be untouched, got %d render requests", right.renderRequests)
	}

	left.unmount()
	right.unmount()
}

func TestChangeBeforeCommitReplayedExactlyOnce(t *testing.T) {
	s := reactive.NewSignal(0)
	in := &fakeInstance{}

	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		return vdom.Textf("%d", s.Get())
	})

	wrapped(in)

	// Dependency changes before the commit hook fires: the update must not
	// be delivered yet, and must not be lost.
	s.Set(1)
	if in.renderRequests != 0 {
		t.Fatalf("uncommitted instance received a render request: %d", in.renderRequests)
	}

	in.commit()
	if in.renderRequests != 1 {
		t.Fatalf("owed update not replayed on commit: got %d requests", in.renderRequests)
	}

	// Only once: committing again (a no-op) or rendering must not duplicate.
	in.commit()
	wrapped(in)
	if in.renderRequests != 1 {
		t.Errorf("owed update duplicated: got %d requests", in.renderRequests)
	}
	in.unmount()
}

func TestCommitWithoutPriorChangeRequestsNothing(t *testing.T) {
	s := reactive.NewSignal(0)
	in := &fakeInstance{}

	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		return vdom.Textf("%d", s.Get())
	})

	wrapped(in)
	in.commit()
	if in.renderRequests != 0 {
		t.Errorf("commit with no pending change requested %d renders", in.renderRequests)
	}
	in.unmount()
}

func TestSpeculativeRendersKeepOneLiveSubscription(t *testing.T) {
	observer.ResetTrackerForTesting()

	s := reactive.NewSignal(0)
	in := &fakeInstance{}

	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		return vdom.Textf("%d", s.Get())
	})

	// The host may render many times before ever committing.
	for i := 0; i < 5; i++ {
		wrapped(in)
	}

	if got := observer.TrackedCount(); got != 1 {
		t.Errorf("expected 1 tracked entry for the instance, got %d", got)
	}

	in.commit()
	s.Set(1)
	// If superseded reactions were still subscribed, each would add a
	// request here.
	if in.renderRequests != 1 {
		t.Errorf("expected exactly 1 render request, got %d", in.renderRequests)
	}
	in.unmount()
}

func TestAbandonedRenderIsSwept(t *testing.T) {
	observer.ResetTrackerForTesting()
	observer.SetCleanupGrace(20 * time.Millisecond)
	defer observer.SetCleanupGrace(observer.DefaultCleanupGrace)

	s := reactive.NewSignal(0)
	in := &fakeInstance{}

	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		return vdom.Textf("%d", s.Get())
	})

	wrapped(in)
	if got := observer.TrackedCount(); got != 1 {
		t.Fatalf("expected 1 tracked entry, got %d", got)
	}

	// Never committed: the sweep must dispose the reaction and drop the
	// registry entry once the grace period elapses.
	deadline := time.Now().Add(2 * time.Second)
	for observer.TrackedCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("abandoned render was never swept")
		}
		time.Sleep(5 * time.Millisecond)
	}

	s.Set(1)
	if in.renderRequests != 0 {
		t.Errorf("swept reaction still delivered %d render requests", in.renderRequests)
	}
}

func TestMountedBeforeGraceIsNeverSwept(t *testing.T) {
	observer.ResetTrackerForTesting()
	observer.SetCleanupGrace(20 * time.Millisecond)
	defer observer.SetCleanupGrace(observer.DefaultCleanupGrace)

	s := reactive.NewSignal(0)
	in := &fakeInstance{}

	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		return vdom.Textf("%d", s.Get())
	})

	wrapped(in)
	in.commit()

	if got := observer.TrackedCount(); got != 0 {
		t.Fatalf("committed instance still tracked: %d", got)
	}

	// Well past several sweep intervals the subscription must survive.
	time.Sleep(150 * time.Millisecond)
	s.Set(1)
	if in.renderRequests != 1 {
		t.Errorf("mounted instance lost its subscription: %d requests", in.renderRequests)
	}
	in.unmount()
}

func TestSweepHookObservesDisposals(t *testing.T) {
	observer.ResetTrackerForTesting()
	observer.SetCleanupGrace(20 * time.Millisecond)
	defer observer.SetCleanupGrace(observer.DefaultCleanupGrace)

	swept := make(chan int, 8)
	observer.SetSweepHook(func(disposed int) {
		if disposed > 0 {
			swept <- disposed
		}
	})
	defer observer.SetSweepHook(nil)

	s := reactive.NewSignal(0)
	in := &fakeInstance{}
	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		return vdom.Textf("%d", s.Get())
	})
	wrapped(in)

	select {
	case n := <-swept:
		if n != 1 {
			t.Errorf("expected 1 disposed reaction, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sweep hook never reported a disposal")
	}
}

func TestUnmountDisposesIdempotently(t *testing.T) {
	s := reactive.NewSignal(0)
	in := &fakeInstance{}

	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		return vdom.Textf("%d", s.Get())
	})

	wrapped(in)
	in.commit()
	in.unmount()
	in.unmount() // tolerated

	s.Set(1)
	if in.renderRequests != 0 {
		t.Errorf("unmounted instance received %d render requests", in.renderRequests)
	}
}

func TestUnmountWithoutMountReleasesSubscription(t *testing.T) {
	observer.ResetTrackerForTesting()

	s := reactive.NewSignal(0)
	in := &fakeInstance{}

	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		return vdom.Textf("%d", s.Get())
	})

	wrapped(in)
	in.unmount() // never committed

	if got := observer.TrackedCount(); got != 0 {
		t.Errorf("released slot still tracked: %d", got)
	}

	s.Set(1)
	if in.renderRequests != 0 {
		t.Errorf("released instance received %d render requests", in.renderRequests)
	}
}

func TestPendingUpdateDiscardedOnUnmount(t *testing.T) {
	s := reactive.NewSignal(0)
	in := &fakeInstance{}

	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		return vdom.Textf("%d", s.Get())
	})

	wrapped(in)
	s.Set(1) // owed update, not yet delivered
	in.unmount()

	// The owed update dies with the instance.
	in.commit()
	if in.renderRequests != 0 {
		t.Errorf("dead instance received %d render requests", in.renderRequests)
	}
}

func TestRenderErrorRoutedToOnError(t *testing.T) {
	failing := reactive.NewSignal(true)
	in := &fakeInstance{}

	var captured []any
	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		if failing.Get() {
			// Deliberately a falsy non-error value.
			panic(false)
		}
		return vdom.Text("recovered")
	}, observer.OnError(func(v any) {
		captured = append(captured, v)
	}))

	if out := wrapped(in); out != nil {
		t.Errorf("failed pass should render nothing, got %v", out)
	}
	if len(captured) != 1 {
		t.Fatalf("expected 1 captured value, got %d", len(captured))
	}
	if v, ok := captured[0].(bool); !ok || v != false {
		t.Errorf("expected the raised value false, got %#v", captured[0])
	}

	in.commit()

	// The instance stayed subscribed: clearing the failure path re-renders.
	failing.Set(false)
	if in.renderRequests != 1 {
		t.Fatalf("expected 1 render request after recovery, got %d", in.renderRequests)
	}
	if got := textOf(t, wrapped(in)); got != "recovered" {
		t.Errorf("expected %q, got %q", "recovered", got)
	}
	in.unmount()
}

func TestRenderErrorDefaultChannelLogs(t *testing.T) {
	in := &fakeInstance{}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		panic("kaboom")
	}, observer.WithLogger(logger))

	if out := wrapped(in); out != nil {
		t.Errorf("failed pass should render nothing, got %v", out)
	}
	if !strings.Contains(buf.String(), "recovered render error") {
		t.Errorf("default diagnostic channel missing entry, log: %s", buf.String())
	}
	in.unmount()
}

// fakePending satisfies observer.Awaitable.
type fakePending struct {
	ch chan struct{}
}

func (p *fakePending) Done() <-chan struct{} { return p.ch }

func TestAwaitablePassesThroughUnchanged(t *testing.T) {
	s := reactive.NewSignal("wait")
	pending := &fakePending{ch: make(chan struct{})}
	in := &fakeInstance{}

	var handlerCalls int
	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		if s.Get() == "wait" {
			panic(pending)
		}
		return vdom.Text(s.Get())
	}, observer.OnError(func(v any) {
		handlerCalls++
	}))

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		wrapped(in)
	}()

	if recovered != pending {
		t.Fatalf("expected the awaitable to pass through identically, got %#v", recovered)
	}
	if handlerCalls != 0 {
		t.Errorf("awaitable must not reach onError, got %d calls", handlerCalls)
	}

	// Dependencies tracked before the raise stay live: when the backing
	// signal changes, the committed instance becomes render-eligible.
	in.commit()
	s.Set("done")
	if in.renderRequests != 1 {
		t.Fatalf("expected 1 render request after signal change, got %d", in.renderRequests)
	}
	if got := textOf(t, wrapped(in)); got != "done" {
		t.Errorf("expected %q, got %q", "done", got)
	}
	in.unmount()
}

func TestPassThroughModeIdentity(t *testing.T) {
	defer observer.SetPassThroughMode(false)

	render := func(_ observer.Instance) *vdom.VNode {
		return vdom.Text("static")
	}

	observer.SetPassThroughMode(true)
	if !observer.IsPassThroughMode() {
		t.Fatal("pass-through mode not reported enabled")
	}
	wrapped := observer.Wrap(render)
	if reflect.ValueOf(wrapped).Pointer() != reflect.ValueOf(render).Pointer() {
		t.Error("Wrap should be the identity function in pass-through mode")
	}

	observer.SetPassThroughMode(false)
	wrapped = observer.Wrap(render)
	if reflect.ValueOf(wrapped).Pointer() == reflect.ValueOf(render).Pointer() {
		t.Error("Wrap should differ from its input outside pass-through mode")
	}
}

func TestRenderAfterSweepReentersRegistry(t *testing.T) {
	observer.ResetTrackerForTesting()
	observer.SetCleanupGrace(20 * time.Millisecond)
	defer observer.SetCleanupGrace(observer.DefaultCleanupGrace)

	s := reactive.NewSignal(0)
	in := &fakeInstance{}
	wrapped := observer.Wrap(func(_ observer.Instance) *vdom.VNode {
		return vdom.Textf("%d", s.Get())
	})

	wrapped(in)

	deadline := time.Now().Add(2 * time.Second)
	for observer.TrackedCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("abandoned render was never swept")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A later render of the same still-unmounted instance revives the
	// record and re-enters the leak registry.
	wrapped(in)
	if got := observer.TrackedCount(); got != 1 {
		t.Fatalf("revived render not re-tracked: %d entries", got)
	}

	in.commit()
	s.Set(1)
	if in.renderRequests != 1 {
		t.Errorf("revived subscription not live: %d requests", in.renderRequests)
	}
	in.unmount()
}
