// Package analysis runs the fixed vulnerability analyses over a graph.Store
// and returns typed, ranked results.
//
// The five analyses are:
//
//   - ErrorTypes: failure records grouped by subkind
//   - VulnerableFunctions: distinct records reached from each function over TRIGGERS
//   - ProblematicTests: distinct records reached from each test case over FINDS
//   - MemoryErrorPatterns: (function, subkind) pairs over TRIGGERS, memory errors only
//   - ErrorPaths: distinct (test case, function, subkind) triples over
//     EXECUTES then TRIGGERS, memory errors only
//
// Ranked lists are ordered by count descending with ties broken by ascending
// identifier. ErrorPaths is ordered by test case, function and subkind.
// The engine normalizes backend values (int64 from Neo4j, int from the
// in-memory store, nil strings) and re-applies the ordering, so every
// backend yields identical results for identical graphs.
//
// A failing analysis yields an empty list and an entry in Analysis.Failures;
// the remaining analyses still run.
//
// Example:
//
//	result := analysis.NewEngine(store).Run(ctx)
//	for _, et := range result.ErrorTypes {
//	    fmt.Printf("%s: %d occurrences\n", et.ErrorType, et.Count)
//	}
package analysis
