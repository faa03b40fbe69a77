// Package host is an in-process component host implementing the Instance
// contract the observer binding consumes: per-instance persistent storage,
// a state-update mechanism, and a post-commit lifecycle hook.
//
// The render lifecycle is explicit so every shape the binding must survive
// can be driven directly: RenderAttempt may be called any number of times
// before Commit (speculative or duplicated renders), Commit may never come
// at all (abandoned passes, recovered by the observer leak sweep), and
// Unmount tears the instance down whether or not it ever committed.
//
// Signal changes reach the host through Instance.RequestRender, which marks
// the instance dirty and queues it; Flush drains the queue, re-rendering
// each dirty instance once. Event loops can block on RenderSignal to learn
// when a flush is worthwhile.
package host
