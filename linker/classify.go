package linker

import (
	"strings"

	"github.com/zero-day-ai/kleegraph/artifact"
)

// Subkinds produced by Classify.
const (
	SubkindObjectReadOnly    = "object_read_only"
	SubkindOutOfBoundPointer = "out_of_bound_pointer"
	SubkindExternalFunction  = "external_function"
	SubkindProgramAbort      = "program_abort"
	SubkindAssertionFailure  = "assertion_failure"
	SubkindUnknown           = "unknown"
)

type classification struct {
	needle  string
	kind    artifact.ErrorKind
	subkind string
}

// classifications is checked in order; the first needle found in the body wins.
var classifications = []classification{
	{needle: "memory error: object read only", kind: artifact.KindMemoryError, subkind: SubkindObjectReadOnly},
	{needle: "memory error: out of bound pointer", kind: artifact.KindMemoryError, subkind: SubkindOutOfBoundPointer},
	{needle: "external call", kind: artifact.KindExternalCall, subkind: SubkindExternalFunction},
	{needle: "abort", kind: artifact.KindAbort, subkind: SubkindProgramAbort},
	{needle: "assert", kind: artifact.KindAssertion, subkind: SubkindAssertionFailure},
}

// Classify maps a failure artifact body to its kind and subkind.
func Classify(body string) (artifact.ErrorKind, string) {
	for _, c := range classifications {
		if strings.Contains(body, c.needle) {
			return c.kind, c.subkind
		}
	}
	return artifact.KindUnknown, SubkindUnknown
}
