package kleegraph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/kleegraph/analysis"
	"github.com/zero-day-ai/kleegraph/artifact"
	"github.com/zero-day-ai/kleegraph/config"
	"github.com/zero-day-ai/kleegraph/graph"
	"github.com/zero-day-ai/kleegraph/graph/backend"
	"github.com/zero-day-ai/kleegraph/linker"
	"github.com/zero-day-ai/kleegraph/report"
)

const instrumentationName = "github.com/zero-day-ai/kleegraph"

// Analyzer runs the parse, link, build, analyze and report stages over a
// run directory. It is safe to call Run sequentially; a shared WithStore
// store must not be used by concurrent runs.
type Analyzer struct {
	cfg    *config.Config
	logger *slog.Logger
	tracer trace.Tracer
	store  graph.Store
	sinks  []report.Sink
	now    func() time.Time

	skipped   metric.Int64Counter
	failed    metric.Int64Counter
	fallbacks metric.Int64Counter
}

// New creates an Analyzer. The configuration is validated; an invalid one
// returns a *kgerr.Error of KindInvalidConfig.
func New(opts ...Option) (*Analyzer, error) {
	c := &analyzerConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg == nil {
		c.cfg = &config.Config{}
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(instrumentationName)
	}
	if c.meter == nil {
		c.meter = otel.Meter(instrumentationName)
	}
	if c.now == nil {
		c.now = time.Now
	}

	a := &Analyzer{
		cfg:    c.cfg,
		logger: c.logger,
		tracer: c.tracer,
		store:  c.store,
		sinks:  c.sinks,
		now:    c.now,
	}

	var err error
	a.skipped, err = c.meter.Int64Counter(
		"kleegraph.artifacts.skipped",
		metric.WithDescription("Artifacts excluded from a run because they could not be parsed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create skipped counter: %w", err)
	}
	a.failed, err = c.meter.Int64Counter(
		"kleegraph.analyses.failed",
		metric.WithDescription("Analyses that returned no result because their query failed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create failed counter: %w", err)
	}
	a.fallbacks, err = c.meter.Int64Counter(
		"kleegraph.store.fallbacks",
		metric.WithDescription("Runs that fell back to the in-memory graph store"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create fallback counter: %w", err)
	}

	return a, nil
}

// Run analyzes the run directory dir and writes the report to every sink.
//
// The error is non-nil only when dir is not a directory (KindDirectoryNotFound)
// or ctx is done.
func (a *Analyzer) Run(ctx context.Context, dir string) (*report.Report, error) {
	ctx, span := a.tracer.Start(ctx, "kleegraph.run",
		trace.WithAttributes(attribute.String("kleegraph.dir", dir)))
	defer span.End()

	run, err := a.parse(ctx, dir)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	linked := a.link(ctx, run)

	store, release, err := a.build(ctx, linked)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	defer release()

	result, err := a.analyze(ctx, store)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	rep := a.report(ctx, report.NewRun(run, linked, store.Name()), result)
	a.logger.Info("analysis complete",
		"dir", dir,
		"backend", store.Name(),
		"test_cases", rep.Summary.TotalTests,
		"memory_errors", rep.Summary.TotalErrors,
		"report_id", rep.ID,
	)
	return rep, nil
}

func (a *Analyzer) parse(ctx context.Context, dir string) (*artifact.Run, error) {
	ctx, span := a.tracer.Start(ctx, "kleegraph.parse")
	defer span.End()

	run, err := artifact.Parse(ctx, dir,
		artifact.WithWorkers(a.cfg.Parser.GetWorkers()),
		artifact.WithLogger(a.logger),
		artifact.WithClock(a.now),
	)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	if n := len(run.Skipped); n > 0 {
		a.skipped.Add(ctx, int64(n))
	}
	span.SetAttributes(
		attribute.Int("kleegraph.test_cases", run.TotalTests()),
		attribute.Int("kleegraph.failures", run.TotalErrors()),
		attribute.Int("kleegraph.skipped", len(run.Skipped)),
	)
	return run, nil
}

func (a *Analyzer) link(ctx context.Context, run *artifact.Run) *linker.Result {
	_, span := a.tracer.Start(ctx, "kleegraph.link")
	defer span.End()

	linked := linker.Link(run,
		linker.WithRules(linker.RulesFromConfig(a.cfg.Linker)),
		linker.WithLogger(a.logger),
	)
	span.SetAttributes(
		attribute.Int("kleegraph.functions", len(linked.Functions)),
		attribute.Int("kleegraph.dangling", len(linked.Dangling)),
	)
	return linked
}

// build selects the store and loads the linked run into it. The returned
// func closes the store when the Analyzer owns it.
func (a *Analyzer) build(ctx context.Context, linked *linker.Result) (graph.Store, func(), error) {
	ctx, span := a.tracer.Start(ctx, "kleegraph.build")
	defer span.End()

	store, owned := a.store, a.store == nil
	if owned {
		var err error
		store, err = backend.Build(ctx, a.cfg.Store, backend.WithLogger(a.logger))
		if err != nil {
			a.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("kleegraph.stage", "connect")))
			span.RecordError(err)
		}
	}

	loaded, err := backend.Load(ctx, store, graph.NewDataset(linked), backend.WithLogger(a.logger))
	if loaded != store {
		a.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("kleegraph.stage", "load")))
		owned = true
	}

	release := func() {
		if !owned {
			return
		}
		if err := loaded.Close(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("failed to close graph store", "backend", loaded.Name(), "error", err)
		}
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			release()
			fail(span, ctxErr)
			return nil, nil, ctxErr
		}
		a.logger.Error("failed to load graph", "backend", loaded.Name(), "error", err)
		span.RecordError(err)
	}

	span.SetAttributes(attribute.String("kleegraph.backend", loaded.Name()))
	return loaded, release, nil
}

func (a *Analyzer) analyze(ctx context.Context, store graph.Store) (*analysis.Analysis, error) {
	ctx, span := a.tracer.Start(ctx, "kleegraph.analyze")
	defer span.End()

	result := analysis.NewEngine(store, analysis.WithLogger(a.logger)).Run(ctx)
	if err := ctx.Err(); err != nil {
		fail(span, err)
		return nil, err
	}

	for _, f := range result.Failures {
		a.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("kleegraph.analysis", string(f.Analysis))))
	}
	span.SetAttributes(attribute.Int("kleegraph.analyses_failed", len(result.Failures)))
	return result, nil
}

func (a *Analyzer) report(ctx context.Context, run report.Run, result *analysis.Analysis) *report.Report {
	ctx, span := a.tracer.Start(ctx, "kleegraph.report")
	defer span.End()

	rep := report.Assemble(result, run, a.now())
	span.SetAttributes(attribute.String("kleegraph.report_id", rep.ID))

	for _, sink := range a.sinks {
		if err := sink.Write(ctx, rep); err != nil {
			a.logger.Warn("failed to write report", "sink", sinkName(sink), "error", err)
			span.RecordError(err)
			continue
		}
		a.logger.Debug("report written", "sink", sinkName(sink), "report_id", rep.ID)
	}
	return rep
}

func sinkName(s report.Sink) string {
	if str, ok := s.(fmt.Stringer); ok {
		return str.String()
	}
	return fmt.Sprintf("%T", s)
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
