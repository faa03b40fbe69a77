// Package observer binds the reactive signal model to a component rendering
// host. Wrap takes a component render function and returns one with the same
// signature that, on every invocation, runs the render inside a tracked
// reaction: every signal read subscribes the component, and a later change
// to any of those signals schedules exactly one re-render.
//
// The hard part is not re-running the render; it is the lifecycle of the
// per-instance Reaction across a host that may render speculatively, render
// the same instance several times before committing, abandon a render pass
// without ever mounting it, or unmount the instance. The package guarantees:
//
//   - at most one live reaction per instance (each render attempt disposes
//     the previous pass's reaction before tracking a fresh one);
//   - no update is delivered to an instance that has not committed (changes
//     that arrive between render and commit are flagged and replayed once,
//     right after the commit hook fires);
//   - a reaction whose render pass never commits is force-disposed by the
//     leak tracker once the cleanup grace period elapses;
//   - unmounting disposes the reaction exactly once, tolerant of the
//     instance never having mounted.
//
// A value raised during render that satisfies Awaitable is re-raised
// unchanged so an outer suspension boundary can catch it; any other raised
// value is recovered, reported through the OnError option (or the configured
// logger), and the pass renders nothing while the instance stays subscribed.
//
// SetPassThroughMode disables the binding globally for single-pass rendering
// contexts where commit hooks never fire and leak tracking is meaningless.
package observer
