// Package live serves observed components over WebSocket. Each connection
// gets its own host and component instance; when a signal the component
// read changes, the instance re-renders and the new HTML is pushed to the
// client as a frame.
//
// The wire format is deliberately simple: one JSON frame per render pass
// carrying a sequence number and the full rendered HTML. There is no
// patch-level diffing here; the point of the package is to exercise the
// binding's lifecycle against a real transport.
package live
