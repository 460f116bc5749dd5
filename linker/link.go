package linker

import (
	"io"
	"log/slog"
	"sort"

	"github.com/zero-day-ai/kleegraph/artifact"
)

// Function is a name seen in at least one failure stack trace.
type Function struct {
	Name string `json:"name"`
	Role Role   `json:"role"`

	// Frames counts the frames naming the function across all records.
	Frames int `json:"frames"`
}

// Finding links a test case to the failure record it produced.
type Finding struct {
	TestCaseID string `json:"test_case"`
	FailureID  string `json:"failure"`
}

// Trigger links a function to a failure record whose trace names it.
// Ordinal is the lowest frame ordinal naming the function in that trace.
type Trigger struct {
	Function  string `json:"function"`
	FailureID string `json:"failure"`
	Ordinal   int    `json:"ordinal"`
}

// Execution links a test case to a function on its failing path.
type Execution struct {
	TestCaseID string `json:"test_case"`
	Function   string `json:"function"`
}

// Result is a linked run. Slices are owned by the Result.
type Result struct {
	TestCases []artifact.TestCase      `json:"test_cases"`
	Failures  []artifact.FailureRecord `json:"failures"`
	Functions []Function               `json:"functions"`

	Finds    []Finding   `json:"finds"`
	Triggers []Trigger   `json:"triggers"`
	Executes []Execution `json:"executes"`

	// Dangling lists failure ids whose TestCaseID names no parsed test case.
	Dangling []string `json:"dangling,omitempty"`
}

// Option configures Link.
type Option func(*linkOptions)

type linkOptions struct {
	rules  Rules
	logger *slog.Logger
}

// WithRules overrides the role inference rules.
func WithRules(rules Rules) Option {
	return func(o *linkOptions) {
		o.rules = rules
	}
}

// WithLogger sets the logger used for dangling-reference notes.
func WithLogger(logger *slog.Logger) Option {
	return func(o *linkOptions) {
		o.logger = logger
	}
}

// Link classifies every failure record of run and derives functions and edges.
func Link(run *artifact.Run, opts ...Option) *Result {
	o := linkOptions{
		rules:  DefaultRules(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	res := &Result{
		TestCases: make([]artifact.TestCase, 0, len(run.TestCases)),
		Failures:  make([]artifact.FailureRecord, 0, len(run.Failures)),
		Functions: []Function{},
		Finds:     []Finding{},
		Triggers:  []Trigger{},
		Executes:  []Execution{},
	}

	for _, tc := range run.TestCases {
		res.TestCases = append(res.TestCases, copyTestCase(tc))
	}
	sort.SliceStable(res.TestCases, func(i, j int) bool {
		return res.TestCases[i].ID < res.TestCases[j].ID
	})

	for _, rec := range run.Failures {
		rec.StackTrace = append([]string(nil), rec.StackTrace...)
		rec.ErrorKind, rec.ErrorSubkind = Classify(rec.Body)
		res.Failures = append(res.Failures, rec)
	}
	sort.SliceStable(res.Failures, func(i, j int) bool {
		return res.Failures[i].SourceLocation < res.Failures[j].SourceLocation
	})

	known := make(map[string]bool, len(res.TestCases))
	for _, tc := range res.TestCases {
		known[tc.ID] = true
	}

	frameCounts := make(map[string]int)
	traceFunctions := make([][]string, len(res.Failures))
	byTest := make(map[string][]int)

	for i, rec := range res.Failures {
		ordinals := make(map[string]int)
		var order []string
		for _, f := range ParseFrames(rec.StackTrace) {
			frameCounts[f.Function]++
			prev, seen := ordinals[f.Function]
			if !seen {
				order = append(order, f.Function)
				ordinals[f.Function] = f.Ordinal
			} else if f.Ordinal < prev {
				ordinals[f.Function] = f.Ordinal
			}
		}
		traceFunctions[i] = order
		for _, name := range order {
			res.Triggers = append(res.Triggers, Trigger{
				Function:  name,
				FailureID: rec.SourceLocation,
				Ordinal:   ordinals[name],
			})
		}

		if !known[rec.TestCaseID] {
			res.Dangling = append(res.Dangling, rec.SourceLocation)
			o.logger.Warn("failure record references unknown test case",
				"failure", rec.SourceLocation,
				"test_case", rec.TestCaseID,
			)
			continue
		}
		byTest[rec.TestCaseID] = append(byTest[rec.TestCaseID], i)
	}

	for t := range res.TestCases {
		tc := &res.TestCases[t]
		candidates := byTest[tc.ID]
		if len(candidates) == 0 {
			continue
		}
		chosen := selectFinding(candidates, res.Failures)
		rec := res.Failures[chosen]

		tc.ErrorSubkind = rec.ErrorSubkind
		res.Finds = append(res.Finds, Finding{TestCaseID: tc.ID, FailureID: rec.SourceLocation})
		for _, name := range traceFunctions[chosen] {
			res.Executes = append(res.Executes, Execution{TestCaseID: tc.ID, Function: name})
		}
	}

	for name, frames := range frameCounts {
		res.Functions = append(res.Functions, Function{
			Name:   name,
			Role:   InferRole(name, o.rules),
			Frames: frames,
		})
	}
	sort.Slice(res.Functions, func(i, j int) bool {
		return res.Functions[i].Name < res.Functions[j].Name
	})

	o.logger.Debug("linked run",
		"test_cases", len(res.TestCases),
		"failures", len(res.Failures),
		"functions", len(res.Functions),
		"dangling", len(res.Dangling),
	)
	return res
}

// selectFinding picks the record with the highest-priority suffix.
// candidates are indexes into failures, already in location order.
func selectFinding(candidates []int, failures []artifact.FailureRecord) int {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if suffixRank(failures[c].Suffix) < suffixRank(failures[best].Suffix) {
			best = c
		}
	}
	return best
}

func suffixRank(suffix string) int {
	for i, s := range artifact.FailureSuffixes {
		if s == suffix {
			return i
		}
	}
	return len(artifact.FailureSuffixes)
}

func copyTestCase(tc artifact.TestCase) artifact.TestCase {
	tc.StackTrace = append([]string(nil), tc.StackTrace...)
	vars := make(map[string]artifact.SymbolicVar, len(tc.SymbolicVars))
	for k, v := range tc.SymbolicVars {
		vars[k] = v
	}
	tc.SymbolicVars = vars
	return tc
}

// FunctionRoles returns the role of every function keyed by name.
func (r *Result) FunctionRoles() map[string]Role {
	roles := make(map[string]Role, len(r.Functions))
	for _, fn := range r.Functions {
		roles[fn.Name] = fn.Role
	}
	return roles
}
