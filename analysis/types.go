package analysis

import (
	"fmt"

	"github.com/zero-day-ai/kleegraph/graph"
)

// ErrorTypeCount is one row of the error-type frequency analysis.
type ErrorTypeCount struct {
	ErrorType string `json:"error_type"`
	Count     int64  `json:"count"`
}

// FunctionCount is one row of the most-implicated functions analysis.
type FunctionCount struct {
	Function   string `json:"function"`
	Role       string `json:"role"`
	ErrorCount int64  `json:"error_count"`
}

// TestCount is one row of the most-problematic test cases analysis.
type TestCount struct {
	TestCase   string `json:"test_case"`
	Status     string `json:"status"`
	ErrorCount int64  `json:"error_count"`
}

// Pattern is one memory error co-occurrence of a function and a subkind.
type Pattern struct {
	Function     string `json:"function"`
	ErrorSubkind string `json:"error_subtype"`

	// Pattern renders the pair as "function -> subkind".
	Pattern string `json:"pattern"`
	Count   int64  `json:"count"`
}

// PatternString formats a function and subkind pair.
func PatternString(function, subkind string) string {
	return fmt.Sprintf("%s -> %s", function, subkind)
}

// ErrorPath is a memory error reachable from a test case through a function.
type ErrorPath struct {
	TestCase  string `json:"test_case"`
	Function  string `json:"function"`
	ErrorType string `json:"error_type"`
}

// Failure records an analysis that could not be computed.
type Failure struct {
	Analysis graph.AnalysisID `json:"analysis"`
	Error    string           `json:"error"`
}

// Analysis holds the result of every analysis. Lists are never nil.
type Analysis struct {
	ErrorTypes          []ErrorTypeCount `json:"error_types"`
	VulnerableFunctions []FunctionCount  `json:"vulnerable_functions"`
	ProblematicTests    []TestCount      `json:"problematic_tests"`
	MemoryErrorPatterns []Pattern        `json:"memory_error_patterns"`
	ErrorPaths          []ErrorPath      `json:"error_paths"`

	Failures []Failure `json:"failures,omitempty"`
}

// Empty returns an Analysis with empty lists.
func Empty() *Analysis {
	return &Analysis{
		ErrorTypes:          []ErrorTypeCount{},
		VulnerableFunctions: []FunctionCount{},
		ProblematicTests:    []TestCount{},
		MemoryErrorPatterns: []Pattern{},
		ErrorPaths:          []ErrorPath{},
	}
}

// Clone returns a deep copy of a.
func (a *Analysis) Clone() *Analysis {
	return &Analysis{
		ErrorTypes:          clone(a.ErrorTypes),
		VulnerableFunctions: clone(a.VulnerableFunctions),
		ProblematicTests:    clone(a.ProblematicTests),
		MemoryErrorPatterns: clone(a.MemoryErrorPatterns),
		ErrorPaths:          clone(a.ErrorPaths),
		Failures:            append([]Failure(nil), a.Failures...),
	}
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// Failed reports whether the analysis id could not be computed.
func (a *Analysis) Failed(id graph.AnalysisID) bool {
	for _, f := range a.Failures {
		if f.Analysis == id {
			return true
		}
	}
	return false
}
