// Package vdom defines the view tree produced by component render
// functions: a VNode is an element, text, fragment, or raw-HTML node.
//
// The package is deliberately inert: no diffing, no reconciliation. The
// observer binding only needs a concrete render result type; what the host
// does with consecutive trees is its own business.
package vdom
