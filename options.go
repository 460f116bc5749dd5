package kleegraph

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/kleegraph/config"
	"github.com/zero-day-ai/kleegraph/graph"
	"github.com/zero-day-ai/kleegraph/report"
)

// Option configures an Analyzer.
type Option func(*analyzerConfig)

type analyzerConfig struct {
	cfg    *config.Config
	logger *slog.Logger
	tracer trace.Tracer
	meter  metric.Meter
	store  graph.Store
	sinks  []report.Sink
	now    func() time.Time
}

// WithConfig sets the configuration. Without it the zero Config is used,
// which selects the in-memory store and default parser and linker settings.
func WithConfig(cfg *config.Config) Option {
	return func(c *analyzerConfig) {
		c.cfg = cfg
	}
}

// WithLogger sets the logger passed to every stage.
func WithLogger(logger *slog.Logger) Option {
	return func(c *analyzerConfig) {
		c.logger = logger
	}
}

// WithTracer sets the tracer used for stage spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *analyzerConfig) {
		c.tracer = tracer
	}
}

// WithMeter sets the meter used for run counters.
func WithMeter(meter metric.Meter) Option {
	return func(c *analyzerConfig) {
		c.meter = meter
	}
}

// WithStore uses store instead of selecting one from the configuration.
// The caller keeps ownership and closes it.
func WithStore(store graph.Store) Option {
	return func(c *analyzerConfig) {
		c.store = store
	}
}

// WithSinks sets where reports are written. Sink failures are logged and do
// not fail the run.
func WithSinks(sinks ...report.Sink) Option {
	return func(c *analyzerConfig) {
		c.sinks = append(c.sinks, sinks...)
	}
}

// WithClock sets the time source for parse and report timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *analyzerConfig) {
		c.now = now
	}
}
