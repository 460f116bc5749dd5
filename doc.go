// Package kleegraph turns the output directory of a KLEE symbolic execution
// run into a vulnerability report.
//
// A run is analyzed in five stages:
//
//   - parse: every *.ktest, *.err, *.kquery, info and messages.txt artifact
//     is read into an artifact.Run (package artifact)
//   - link: failure records are classified and tied to the test cases and
//     stack-trace functions they involve (package linker)
//   - build: the linked entities are loaded into a graph store, Neo4j when
//     one is configured and reachable, in memory otherwise (package graph)
//   - analyze: five fixed analyses run against the store (package analysis)
//   - report: the results are assembled and written to sinks (package report)
//
// # Getting Started
//
//	analyzer, err := kleegraph.New(
//	    kleegraph.WithLogger(logger),
//	    kleegraph.WithSinks(report.FileSink{Path: "vulnerability_report.json"}),
//	)
//	if err != nil {
//	    return err
//	}
//
//	rep, err := analyzer.Run(ctx, "klee-out-0")
//	if kgerr.IsKind(err, kgerr.KindDirectoryNotFound) {
//	    // nothing to analyze
//	}
//	for _, line := range rep.Lines(report.DefaultTop) {
//	    fmt.Println(line)
//	}
//
// # Degradation
//
// Only a missing run directory and context cancellation fail Run. Skipped
// artifacts, an unreachable graph store, failing analyses and failing sinks
// are logged and recorded in the report; the run still completes.
//
// # Observability
//
// Each stage opens a span (kleegraph.parse, kleegraph.link, kleegraph.build,
// kleegraph.analyze, kleegraph.report) on the configured tracer. Skipped
// artifacts, failed analyses and store fallbacks are counted on the
// configured meter.
package kleegraph
