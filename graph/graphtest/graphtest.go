// Package graphtest provides a shared linked run for backend and engine tests.
package graphtest

import (
	"github.com/zero-day-ai/kleegraph/artifact"
	"github.com/zero-day-ai/kleegraph/graph"
	"github.com/zero-day-ai/kleegraph/linker"
)

const (
	outOfBound = "Error: memory error: out of bound pointer\n"
	readOnly   = "Error: memory error: object read only\n"
	abort      = "Error: abort failure\n"
)

// Run returns five test cases: two out-of-bound writes in vulnerable_set,
// one read-only write in vulnerable_write, one abort and one clean path.
func Run() *artifact.Run {
	return &artifact.Run{
		Dir: "klee-out-0",
		TestCases: []artifact.TestCase{
			{ID: "test000001", Status: artifact.StatusError, ErrorKind: "out_of_bound"},
			{ID: "test000002", Status: artifact.StatusError, ErrorKind: "read_only"},
			{ID: "test000003", Status: artifact.StatusError, ErrorKind: "abort"},
			{ID: "test000004", Status: artifact.StatusError, ErrorKind: "out_of_bound"},
			{ID: "test000005", Status: artifact.StatusSuccess},
		},
		Failures: []artifact.FailureRecord{
			record("test000001", "out_of_bound", outOfBound, "#0 in vulnerable_set(buf=1, i=9)", "#1 in main()"),
			record("test000002", "read_only", readOnly, "#0 in vulnerable_write(p=3)", "#1 in helper()", "#2 in main()"),
			record("test000003", "abort", abort, "#0 in helper()", "#1 in main()"),
			record("test000004", "out_of_bound", outOfBound, "#0 in vulnerable_set(buf=1, i=12)", "#1 in main()"),
		},
	}
}

func record(testID, suffix, body string, trace ...string) artifact.FailureRecord {
	return artifact.FailureRecord{
		SourceLocation: testID + "." + suffix + ".err",
		TestCaseID:     testID,
		Suffix:         suffix,
		StackTrace:     trace,
		Body:           body,
	}
}

// Linked returns Run linked with the default rules.
func Linked() *linker.Result {
	return linker.Link(Run())
}

// Dataset returns the graph of Linked.
func Dataset() *graph.Dataset {
	return graph.NewDataset(Linked())
}

// Node and edge counts of Dataset.
const (
	Nodes = 5 + 4 + 4
	Edges = 4 + 9 + 9
)
