package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/glimmer-dev/glimmer/pkg/observer"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "glimmer").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics holds the binding's Prometheus collectors.
type Metrics struct {
	// RenderPasses counts every render pass performed.
	RenderPasses prometheus.Counter

	// Rerenders counts render passes triggered by a dependency change
	// (as opposed to initial mounts).
	Rerenders prometheus.Counter

	// SweptReactions counts reactions force-disposed by the leak sweep.
	SweptReactions prometheus.Counter

	// SweepPasses counts leak-sweep timer firings.
	SweepPasses prometheus.Counter
}

// NewMetrics creates and registers the collectors. The pending-commit
// gauge is registered alongside them, reading the observer leak registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: "glimmer",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	m := &Metrics{
		RenderPasses: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "render_passes_total",
			Help:        "Total component render passes.",
			ConstLabels: cfg.ConstLabels,
		}),
		Rerenders: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "rerenders_total",
			Help:        "Render passes triggered by a dependency change.",
			ConstLabels: cfg.ConstLabels,
		}),
		SweptReactions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "swept_reactions_total",
			Help:        "Reactions force-disposed by the leak sweep.",
			ConstLabels: cfg.ConstLabels,
		}),
		SweepPasses: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "leak_sweep_passes_total",
			Help:        "Leak-sweep timer firings.",
			ConstLabels: cfg.ConstLabels,
		}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   cfg.Namespace,
		Name:        "pending_commit_reactions",
		Help:        "Render passes currently awaiting commit confirmation.",
		ConstLabels: cfg.ConstLabels,
	}, func() float64 {
		return float64(observer.TrackedCount())
	})

	return m
}

// ObserveSweeps wires the observer leak tracker's sweep hook to these
// collectors. Only one hook can be installed process-wide.
func (m *Metrics) ObserveSweeps() {
	observer.SetSweepHook(func(disposed int) {
		m.SweepPasses.Inc()
		if disposed > 0 {
			m.SweptReactions.Add(float64(disposed))
		}
	})
}
