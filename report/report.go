package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/zero-day-ai/kleegraph/analysis"
	"github.com/zero-day-ai/kleegraph/artifact"
	"github.com/zero-day-ai/kleegraph/linker"
)

// Summary holds the report totals.
type Summary struct {
	TotalErrorTypes          int `json:"total_error_types"`
	TotalVulnerableFunctions int `json:"total_vulnerable_functions"`
	TotalProblematicTests    int `json:"total_problematic_tests"`
	TotalPatterns            int `json:"total_memory_error_patterns"`
	TotalErrorPaths          int `json:"total_error_paths"`
	TotalTests               int `json:"total_tests"`
	TotalErrors              int `json:"total_errors"`
}

// Run describes the analyzed run directory.
type Run struct {
	Dir      string                `json:"dir"`
	Backend  string                `json:"backend"`
	Info     artifact.RunInfo      `json:"info,omitempty"`
	Messages []artifact.LogMessage `json:"messages,omitempty"`
	Skipped  []artifact.Skipped    `json:"skipped,omitempty"`

	// Dangling lists failure records whose test case was not found.
	Dangling []string `json:"dangling,omitempty"`

	TotalTests  int `json:"total_tests"`
	TotalErrors int `json:"total_errors"`
}

// NewRun collects the report metadata of a parsed and linked run.
func NewRun(run *artifact.Run, linked *linker.Result, backend string) Run {
	r := Run{
		Dir:         run.Dir,
		Backend:     backend,
		Info:        run.Info,
		Messages:    run.Messages,
		Skipped:     run.Skipped,
		TotalTests:  run.TotalTests(),
		TotalErrors: run.TotalErrors(),
	}
	if linked != nil {
		r.Dangling = linked.Dangling
	}
	return r
}

// Report is the persisted result of one analysis run.
type Report struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Analysis  *analysis.Analysis `json:"analysis"`
	Summary   Summary            `json:"summary"`
	Run       Run                `json:"run"`
}

// Assemble builds a report stamped with now. a is copied, never retained.
func Assemble(a *analysis.Analysis, run Run, now time.Time) *Report {
	if a == nil {
		a = analysis.Empty()
	}
	a = a.Clone()

	return &Report{
		ID:        uuid.NewString(),
		Timestamp: now,
		Analysis:  a,
		Summary: Summary{
			TotalErrorTypes:          len(a.ErrorTypes),
			TotalVulnerableFunctions: len(a.VulnerableFunctions),
			TotalProblematicTests:    len(a.ProblematicTests),
			TotalPatterns:            len(a.MemoryErrorPatterns),
			TotalErrorPaths:          len(a.ErrorPaths),
			TotalTests:               run.TotalTests,
			TotalErrors:              run.TotalErrors,
		},
		Run: run,
	}
}
