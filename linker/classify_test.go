package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zero-day-ai/kleegraph/artifact"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantKind    artifact.ErrorKind
		wantSubkind string
	}{
		{
			name:        "read only object",
			body:        "Error: memory error: object read only\nFile: prog.c\n",
			wantKind:    artifact.KindMemoryError,
			wantSubkind: SubkindObjectReadOnly,
		},
		{
			name:        "out of bound pointer",
			body:        "Error: memory error: out of bound pointer\n",
			wantKind:    artifact.KindMemoryError,
			wantSubkind: SubkindOutOfBoundPointer,
		},
		{
			name:        "external call",
			body:        "Error: external call with symbolic argument: printf\n",
			wantKind:    artifact.KindExternalCall,
			wantSubkind: SubkindExternalFunction,
		},
		{
			name:        "abort",
			body:        "Error: abort failure\n",
			wantKind:    artifact.KindAbort,
			wantSubkind: SubkindProgramAbort,
		},
		{
			name:        "assertion",
			body:        "Error: ASSERTION FAIL: x > 0\nassert.c:10: assert\n",
			wantKind:    artifact.KindAssertion,
			wantSubkind: SubkindAssertionFailure,
		},
		{
			name:        "first table entry wins",
			body:        "memory error: object read only\nthen abort and assert\n",
			wantKind:    artifact.KindMemoryError,
			wantSubkind: SubkindObjectReadOnly,
		},
		{
			name:        "substring match is case sensitive",
			body:        "Error: ABORT\n",
			wantKind:    artifact.KindUnknown,
			wantSubkind: SubkindUnknown,
		},
		{
			name:        "unrecognized body",
			body:        "Error: division by zero\n",
			wantKind:    artifact.KindUnknown,
			wantSubkind: SubkindUnknown,
		},
		{
			name:        "empty body",
			body:        "",
			wantKind:    artifact.KindUnknown,
			wantSubkind: SubkindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, subkind := Classify(tt.body)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantSubkind, subkind)
		})
	}
}
