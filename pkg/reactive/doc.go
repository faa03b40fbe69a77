// Package reactive provides the fine-grained reactive primitives that the
// glimmer binding is built on.
//
// Reading a Signal during a tracked execution automatically subscribes the
// current listener to that signal's changes. Dependencies are discovered at
// runtime; there are no dependency arrays.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := reactive.NewSignal(0)
//	value := count.Get()  // Read (subscribes current listener)
//	count.Set(5)          // Write (notifies subscribers)
//	count.Update(func(n int) int { return n + 1 })
//
// Memo[T] is a cached derived computation:
//
//	doubled := reactive.NewMemo(func() int { return count.Get() * 2 })
//
// Reaction is the subscription primitive consumed by the observer binding.
// It records every signal read during Track and invokes its callback when
// any of them later changes:
//
//	rx := reactive.NewReaction(func() { rerender() })
//	rx.Track(func() { view = renderBody() })
//	...
//	rx.Dispose()  // idempotent; synchronously stops callback delivery
//
// # Batching
//
// Multiple signal updates can be batched into a single notification:
//
//	reactive.Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})
//
// # Thread Safety
//
// All primitives are safe for concurrent use. The tracking context is
// per-goroutine, so tracked executions on different goroutines do not
// interfere with each other.
package reactive
