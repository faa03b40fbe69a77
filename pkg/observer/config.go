package observer

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultCleanupGrace is how long an uncommitted render pass may hold a
// live reaction before the leak sweep force-disposes it. The value is a
// tuned heuristic: it must exceed the worst-case render-to-commit latency
// of the host scheduler, or live components get swept; raising it only
// delays recovery of genuinely abandoned passes.
const DefaultCleanupGrace = 10 * time.Second

// SetCleanupGrace overrides the cleanup grace period and sweep interval.
// Affects deadlines of records created after the call. Intended for hosts
// with unusual render-to-commit latency and for tests.
func SetCleanupGrace(d time.Duration) {
	sharedTracker.mu.Lock()
	defer sharedTracker.mu.Unlock()
	sharedTracker.grace = d
}

// CleanupGrace returns the current cleanup grace period.
func CleanupGrace() time.Duration {
	return cleanupGrace()
}

func cleanupGrace() time.Duration {
	sharedTracker.mu.Lock()
	defer sharedTracker.mu.Unlock()
	return sharedTracker.grace
}

// passThrough, when set, makes Wrap an identity function. Used for
// non-interactive single-pass rendering where commit hooks never fire and
// leak tracking would only accumulate garbage.
var passThrough atomic.Bool

// SetPassThroughMode toggles pass-through mode globally. While enabled,
// Wrap returns its argument unchanged; render functions wrapped earlier
// keep their observed behavior.
func SetPassThroughMode(enabled bool) {
	passThrough.Store(enabled)
}

// IsPassThroughMode reports whether pass-through mode is enabled.
func IsPassThroughMode() bool {
	return passThrough.Load()
}

// config holds per-Wrap settings.
type config struct {
	onError func(v any)
	logger  *slog.Logger
}

// Option configures a single Wrap call.
type Option func(*config)

// OnError routes recovered render-time errors to fn instead of the logger.
// fn receives exactly the raised value, whatever its type.
// Async-pending values are never routed here; they propagate unchanged.
func OnError(fn func(v any)) Option {
	return func(c *config) {
		c.onError = fn
	}
}

// WithLogger sets the logger used for the default diagnostic channel.
// If unset, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}
