// Package report assembles analysis results into the vulnerability report
// and writes it to one or more sinks.
//
// # Report document
//
//	{
//	  "id": "6f1c...",
//	  "timestamp": "2025-03-01T12:00:00Z",
//	  "analysis": {"error_types": [...], "vulnerable_functions": [...], ...},
//	  "summary": {"total_error_types": 3, ...},
//	  "run": {"dir": "klee-out-3", "backend": "memory", ...}
//	}
//
// Assemble is pure: it copies the analysis it is given.
//
// # Sinks
//
// FileSink writes indented JSON to a path. RedisSink stores the JSON under
// "<prefix>:<id>", points "<prefix>:latest" at it and publishes the id on a
// channel so other processes can pick the report up.
package report
