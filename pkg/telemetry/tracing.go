package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for glimmer applications.
const defaultTracerName = "glimmer"

// Tracer wraps render passes in OpenTelemetry spans.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer from the global tracer provider.
// An empty name uses the default.
func NewTracer(name string) *Tracer {
	if name == "" {
		name = defaultTracerName
	}
	return &Tracer{
		tracer: otel.Tracer(name),
	}
}

// RenderPass runs fn inside a span describing one render pass of the
// given instance. The rerender attribute distinguishes signal-driven
// re-renders from initial mounts.
func (t *Tracer) RenderPass(ctx context.Context, instanceID string, rerender bool, fn func()) {
	_, span := t.tracer.Start(ctx, "glimmer.render",
		trace.WithAttributes(
			attribute.String("glimmer.instance_id", instanceID),
			attribute.Bool("glimmer.rerender", rerender),
		),
	)
	defer span.End()

	fn()
}
