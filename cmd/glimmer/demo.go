package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/glimmer-dev/glimmer"
	"github.com/glimmer-dev/glimmer/pkg/live"
	"github.com/glimmer-dev/glimmer/pkg/telemetry"
)

func demoCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Serve a live demo page",
		Long: `Serve a small live-updating page over WebSocket.

The page shows a wall clock and an uptime counter, each backed by a
signal that a server-side ticker mutates. Connected clients receive a
new frame only when a signal their page read actually changed.

Prometheus metrics are exposed on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")

	return cmd
}

func runDemo(addr string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	metrics := telemetry.NewMetrics()
	metrics.ObserveSweeps()
	tracer := telemetry.NewTracer("")

	clock := glimmer.NewSignal(time.Now().Format(time.TimeOnly))
	uptime := glimmer.NewSignal(0)

	go func() {
		start := time.Now()
		for range time.Tick(time.Second) {
			glimmer.Batch(func() {
				clock.Set(time.Now().Format(time.TimeOnly))
				uptime.Set(int(time.Since(start).Seconds()))
			})
		}
	}()

	page := func() glimmer.RenderFunc {
		return glimmer.Wrap(func(in glimmer.Instance) *glimmer.VNode {
			return glimmer.El("div", nil,
				glimmer.El("h1", nil, "glimmer demo"),
				glimmer.El("p", nil, glimmer.Textf("server time: %s", clock.Get())),
				glimmer.El("p", nil, glimmer.Textf("up for %d seconds", uptime.Get())),
			)
		})
	}

	server := live.NewServer(page, live.Config{
		Title:   "glimmer demo",
		Logger:  logger,
		Metrics: metrics,
		Tracer:  tracer,
	})

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", server.Handler())

	logger.Info("demo server listening", "addr", addr)
	return http.ListenAndServe(addr, r)
}
