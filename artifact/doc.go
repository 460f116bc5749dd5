// Package artifact parses the output directory of one KLEE run into typed records.
//
// # Directory Layout
//
// A run directory (klee-out-N) is read with a fixed naming convention:
//
//	info                       run summary, one "key: value" per line
//	messages.txt               "KLEE: ERROR:" and "KLEE: NOTE:" lines
//	test000001.ktest           one explored path (a TestCase)
//	test000001.kquery          symbolic array declarations for that path
//	test000001.ptr.err         one failure artifact (a FailureRecord)
//
// Only files whose names start with "test" are treated as per-path artifacts.
//
// # Failure Suffixes
//
// A TestCase flips to StatusError when one of the FailureSuffixes files exists
// next to it. The suffixes are checked in order and the first existing file
// wins; its suffix becomes TestCase.ErrorKind and its stack trace is attached.
// Every *.err file, whatever its suffix, also becomes a FailureRecord.
//
// # Error Handling
//
// A missing run directory is the only fatal error (kgerr.KindDirectoryNotFound).
// An artifact that cannot be read is recorded in Run.Skipped with
// kgerr.KindArtifactParseSkipped, logged, and left out of the results.
//
// # Concurrency
//
// Artifacts are parsed on a bounded pool (WithWorkers). Results are sorted by
// artifact identifier before Parse returns, so output never depends on
// completion order.
package artifact
