// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the observer binding and the live server.
//
// Metrics cover render passes, signal-driven re-renders, and leak-sweep
// activity; a gauge exposes the number of render passes currently awaiting
// commit confirmation. Tracing wraps individual render passes in spans.
package telemetry
