// Package glimmer provides the public API for the glimmer binding.
//
// This is the recommended import for most applications:
//
//	import "github.com/glimmer-dev/glimmer"
//
// Usage:
//
//	count := glimmer.NewSignal(0)
//
//	counter := glimmer.Wrap(func(in glimmer.Instance) *glimmer.VNode {
//	    return glimmer.El("span", nil, glimmer.Textf("count: %d", count.Get()))
//	})
//
// Reading count during the wrapped render subscribes the component; a later
// count.Set schedules exactly one re-render through the host.
package glimmer

import (
	"github.com/glimmer-dev/glimmer/pkg/observer"
	"github.com/glimmer-dev/glimmer/pkg/reactive"
	"github.com/glimmer-dev/glimmer/pkg/vdom"
)

// =============================================================================
// Reactive primitives
// =============================================================================

// Signal is a reactive value container. See pkg/reactive.
type Signal[T any] = reactive.Signal[T]

// Memo is a cached derived computation. See pkg/reactive.
type Memo[T any] = reactive.Memo[T]

// NewSignal creates a new reactive signal with the given initial value.
//
// Example:
//
//	count := glimmer.NewSignal(0)
func NewSignal[T any](initial T) *Signal[T] {
	return reactive.NewSignal(initial)
}

// NewMemo creates a cached derived computation.
//
// Example:
//
//	doubled := glimmer.NewMemo(func() int { return count.Get() * 2 })
func NewMemo[T any](compute func() T) *Memo[T] {
	return reactive.NewMemo(compute)
}

// Batch groups multiple signal updates into a single notification phase.
func Batch(fn func()) {
	reactive.Batch(fn)
}

// Untracked runs fn without tracking signal reads as dependencies.
func Untracked(fn func()) {
	reactive.Untracked(fn)
}

// =============================================================================
// Observer binding
// =============================================================================

// RenderFunc renders one component instance into a VNode tree.
type RenderFunc = observer.RenderFunc

// Instance is the per-component surface provided by the host.
type Instance = observer.Instance

// Option configures a single Wrap call.
type Option = observer.Option

// Awaitable marks a raised value as an asynchronous-pending signal.
type Awaitable = observer.Awaitable

// Wrap returns a render function that tracks signal reads and re-renders
// the component when any of them changes. See pkg/observer.
func Wrap(render RenderFunc, opts ...Option) RenderFunc {
	return observer.Wrap(render, opts...)
}

// OnError routes recovered render-time errors to fn instead of the logger.
func OnError(fn func(v any)) Option {
	return observer.OnError(fn)
}

// SetPassThroughMode toggles the global pass-through mode, under which
// Wrap is the identity function. Used for non-interactive single-pass
// rendering where commit hooks never fire.
func SetPassThroughMode(enabled bool) {
	observer.SetPassThroughMode(enabled)
}

// IsPassThroughMode reports whether pass-through mode is enabled.
func IsPassThroughMode() bool {
	return observer.IsPassThroughMode()
}

// =============================================================================
// View helpers
// =============================================================================

// VNode is one node of a rendered view tree.
type VNode = vdom.VNode

// Props holds element attributes.
type Props = vdom.Props

// El creates an element node.
func El(tag string, props Props, children ...any) *VNode {
	return vdom.El(tag, props, children...)
}

// Text creates a text node.
func Text(content string) *VNode {
	return vdom.Text(content)
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return vdom.Textf(format, args...)
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	return vdom.Fragment(children...)
}
