package analysis

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/zero-day-ai/kleegraph/graph"
	"github.com/zero-day-ai/kleegraph/kgerr"
)

// Engine runs the analyses against one store.
type Engine struct {
	store  graph.Store
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine over store.
func NewEngine(store graph.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run computes every analysis. It never fails: an analysis that errors is
// left empty and reported in Failures.
func (e *Engine) Run(ctx context.Context) *Analysis {
	a := Empty()

	record := func(id graph.AnalysisID, err error) bool {
		if err == nil {
			return true
		}
		e.logger.Warn("analysis failed", "analysis", id.String(), "backend", e.store.Name(), "error", err)
		a.Failures = append(a.Failures, Failure{Analysis: id, Error: err.Error()})
		return false
	}

	if rows, err := e.ErrorTypes(ctx); record(graph.AnalysisErrorTypes, err) {
		a.ErrorTypes = rows
	}
	if rows, err := e.VulnerableFunctions(ctx); record(graph.AnalysisVulnerableFunctions, err) {
		a.VulnerableFunctions = rows
	}
	if rows, err := e.ProblematicTests(ctx); record(graph.AnalysisProblematicTests, err) {
		a.ProblematicTests = rows
	}
	if rows, err := e.MemoryErrorPatterns(ctx); record(graph.AnalysisMemoryErrorPatterns, err) {
		a.MemoryErrorPatterns = rows
	}
	if rows, err := e.ErrorPaths(ctx); record(graph.AnalysisErrorPaths, err) {
		a.ErrorPaths = rows
	}
	return a
}

// query runs id and converts every row with conv. Errors are *kgerr.Error
// of KindQueryFailed.
func query[T any](ctx context.Context, e *Engine, id graph.AnalysisID, conv func(*rowReader) T) ([]T, error) {
	rows, err := e.store.Query(ctx, id)
	if err != nil {
		return nil, queryFailed(id, err)
	}

	out := make([]T, 0, len(rows))
	for i, row := range rows {
		r := rowReader{row: row}
		v := conv(&r)
		if r.err != nil {
			return nil, queryFailed(id, fmt.Errorf("row %d: %w", i, r.err))
		}
		out = append(out, v)
	}
	return out, nil
}

func queryFailed(id graph.AnalysisID, err error) error {
	var kerr *kgerr.Error
	if errors.As(err, &kerr) && kerr.Kind == kgerr.KindQueryFailed {
		return err
	}
	return kgerr.New("analysis."+id.String(), kgerr.KindQueryFailed, err)
}

// ErrorTypes groups failure records by subkind.
func (e *Engine) ErrorTypes(ctx context.Context) ([]ErrorTypeCount, error) {
	out, err := query(ctx, e, graph.AnalysisErrorTypes, func(r *rowReader) ErrorTypeCount {
		return ErrorTypeCount{ErrorType: r.text(graph.ColErrorType), Count: r.count(graph.ColCount)}
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b ErrorTypeCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.ErrorType, b.ErrorType))
	})
	return out, nil
}

// VulnerableFunctions counts distinct failure records per function.
func (e *Engine) VulnerableFunctions(ctx context.Context) ([]FunctionCount, error) {
	out, err := query(ctx, e, graph.AnalysisVulnerableFunctions, func(r *rowReader) FunctionCount {
		return FunctionCount{
			Function:   r.text(graph.ColFunction),
			Role:       r.text(graph.ColRole),
			ErrorCount: r.count(graph.ColErrorCount),
		}
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b FunctionCount) int {
		return cmp.Or(cmp.Compare(b.ErrorCount, a.ErrorCount), cmp.Compare(a.Function, b.Function))
	})
	return out, nil
}

// ProblematicTests counts distinct failure records per test case.
func (e *Engine) ProblematicTests(ctx context.Context) ([]TestCount, error) {
	out, err := query(ctx, e, graph.AnalysisProblematicTests, func(r *rowReader) TestCount {
		return TestCount{
			TestCase:   r.text(graph.ColTestCase),
			Status:     r.text(graph.ColStatus),
			ErrorCount: r.count(graph.ColErrorCount),
		}
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b TestCount) int {
		return cmp.Or(cmp.Compare(b.ErrorCount, a.ErrorCount), cmp.Compare(a.TestCase, b.TestCase))
	})
	return out, nil
}

// MemoryErrorPatterns counts memory error records per function and subkind.
func (e *Engine) MemoryErrorPatterns(ctx context.Context) ([]Pattern, error) {
	out, err := query(ctx, e, graph.AnalysisMemoryErrorPatterns, func(r *rowReader) Pattern {
		fn, subkind := r.text(graph.ColFunction), r.text(graph.ColErrorSubtype)
		return Pattern{
			Function:     fn,
			ErrorSubkind: subkind,
			Pattern:      PatternString(fn, subkind),
			Count:        r.count(graph.ColCount),
		}
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b Pattern) int {
		return cmp.Or(
			cmp.Compare(b.Count, a.Count),
			cmp.Compare(a.Function, b.Function),
			cmp.Compare(a.ErrorSubkind, b.ErrorSubkind),
		)
	})
	return out, nil
}

// ErrorPaths lists distinct memory error paths ordered by test case.
func (e *Engine) ErrorPaths(ctx context.Context) ([]ErrorPath, error) {
	out, err := query(ctx, e, graph.AnalysisErrorPaths, func(r *rowReader) ErrorPath {
		return ErrorPath{
			TestCase:  r.text(graph.ColTestCase),
			Function:  r.text(graph.ColFunction),
			ErrorType: r.text(graph.ColErrorType),
		}
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b ErrorPath) int {
		return cmp.Or(
			cmp.Compare(a.TestCase, b.TestCase),
			cmp.Compare(a.Function, b.Function),
			cmp.Compare(a.ErrorType, b.ErrorType),
		)
	})
	return slices.Compact(out), nil
}
