// Package linker derives the Function entities and the FINDS, TRIGGERS and
// EXECUTES relations of a parsed run.
//
// Linking is pure: Link copies the records it classifies and never mutates
// the artifact.Run it is given. Identical input always yields the same
// classifications, roles and edge order.
//
// Classification
//
// Failure bodies are matched against an ordered substring table:
//
//	memory error: object read only     -> memory_error / object_read_only
//	memory error: out of bound pointer -> memory_error / out_of_bound_pointer
//	external call                      -> external_call / external_function
//	abort                              -> abort / program_abort
//	assert                             -> assertion / assertion_failure
//
// The first matching entry wins. Bodies matching nothing are unknown/unknown.
//
// Frames
//
// Stack frames follow the grammar
//
//	#<ordinal> in <function>(<args>)[ at <location>]
//
// Lines that do not match contribute no Function and no edge.
//
// Example:
//
//	res := linker.Link(run, linker.WithRules(linker.Rules{Marker: "vuln", Entry: "main"}))
//	for _, fn := range res.Functions {
//	    fmt.Println(fn.Name, fn.Role)
//	}
package linker
