package graph

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/kleegraph/kgerr"
)

// AnalysisID names one of the fixed analyses.
type AnalysisID string

const (
	AnalysisErrorTypes          AnalysisID = "error_types"
	AnalysisVulnerableFunctions AnalysisID = "vulnerable_functions"
	AnalysisProblematicTests    AnalysisID = "problematic_tests"
	AnalysisMemoryErrorPatterns AnalysisID = "memory_error_patterns"
	AnalysisErrorPaths          AnalysisID = "error_paths"
)

// Analyses lists every AnalysisID in report order.
var Analyses = []AnalysisID{
	AnalysisErrorTypes,
	AnalysisVulnerableFunctions,
	AnalysisProblematicTests,
	AnalysisMemoryErrorPatterns,
	AnalysisErrorPaths,
}

// String returns the string representation of the id.
func (a AnalysisID) String() string {
	return string(a)
}

// Result columns. Every backend returns these keys for the analyses that use them.
const (
	ColErrorType    = "error_type"
	ColErrorSubtype = "error_subtype"
	ColCount        = "count"
	ColErrorCount   = "error_count"
	ColFunction     = "function"
	ColRole         = "role"
	ColTestCase     = "test_case"
	ColStatus       = "status"
)

// MemoryErrorKind is the failure kind the pattern and path analyses keep.
const MemoryErrorKind = "memory_error"

// Row is one result record keyed by column name. Count columns may come back
// as any integer or float type depending on the backend.
type Row map[string]any

// Store is a graph backend.
//
// Callers serialize Load; a Store is not required to support concurrent writers.
type Store interface {
	// Name identifies the backend in logs and reports.
	Name() string

	// Reset removes every node and edge. It is idempotent.
	Reset(ctx context.Context) error

	// EnsureSchema creates constraints and indexes. Conflicts with existing
	// schema objects are not errors.
	EnsureSchema(ctx context.Context) error

	// Load inserts the dataset.
	Load(ctx context.Context, ds *Dataset) error

	// Query runs one fixed analysis, returning rows in ranked order.
	Query(ctx context.Context, id AnalysisID) ([]Row, error)

	// Stats returns the number of nodes and edges held.
	Stats(ctx context.Context) (nodes, edges int, err error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Load resets store, ensures its schema and loads ds. Any failure is a
// *kgerr.Error of KindStoreUnavailable.
func Load(ctx context.Context, store Store, ds *Dataset) error {
	if err := ds.Validate(); err != nil {
		return kgerr.New("graph.Load", kgerr.KindStoreUnavailable, fmt.Errorf("invalid dataset: %w", err))
	}
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"reset", store.Reset},
		{"ensure schema", store.EnsureSchema},
		{"load", func(ctx context.Context) error { return store.Load(ctx, ds) }},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return kgerr.New("graph.Load", kgerr.KindStoreUnavailable, fmt.Errorf("%s: %w", step.name, err)).
				WithContext(map[string]any{"backend": store.Name()})
		}
	}
	return nil
}

// UnknownAnalysis returns the error stores report for an unrecognized id.
func UnknownAnalysis(op string, id AnalysisID) error {
	return kgerr.New(op, kgerr.KindQueryFailed, fmt.Errorf("unknown analysis %q", id))
}
