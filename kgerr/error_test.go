package kgerr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "no cause",
			err:  New("artifact.Parse", KindDirectoryNotFound, nil),
			want: "kleegraph: artifact.Parse: directory_not_found",
		},
		{
			name: "with cause",
			err:  New("graph.Build", KindStoreUnavailable, errors.New("connection refused")),
			want: "kleegraph: graph.Build (store_unavailable): connection refused",
		},
		{
			name: "with context",
			err: New("artifact.parseTestCase", KindArtifactParseSkipped, errors.New("boom")).
				WithContext(map[string]any{"artifact": "test1.ktest"}),
			want: "kleegraph: artifact.parseTestCase (artifact_parse_skipped): boom [context: map[artifact:test1.ktest]]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Is(t *testing.T) {
	base := New("artifact.Parse", KindDirectoryNotFound, fs.ErrNotExist)

	assert.True(t, errors.Is(base, &Error{Kind: KindDirectoryNotFound}))
	assert.True(t, errors.Is(base, &Error{Op: "artifact.Parse", Kind: KindDirectoryNotFound}))
	assert.False(t, errors.Is(base, &Error{Op: "other", Kind: KindDirectoryNotFound}))
	assert.False(t, errors.Is(base, &Error{Kind: KindQueryFailed}))
	assert.True(t, errors.Is(base, fs.ErrNotExist), "should delegate to the cause")
	assert.False(t, base.Is(nil))
}

func TestIsKind(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", New("neo4jstore.Query", KindQueryFailed, errors.New("timeout")))

	assert.True(t, IsKind(wrapped, KindQueryFailed))
	assert.False(t, IsKind(wrapped, KindStoreUnavailable))
	assert.False(t, IsKind(nil, KindQueryFailed))
	assert.False(t, IsKind(errors.New("plain"), KindQueryFailed))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindSchemaSetupConflict, KindOf(fmt.Errorf("x: %w", New("op", KindSchemaSetupConflict, nil))))
	assert.Equal(t, "", KindOf(errors.New("plain")))
}

func TestWithContext_DoesNotMutateOriginal(t *testing.T) {
	orig := New("op", KindInvalidConfig, nil).WithContext(map[string]any{"a": 1})
	derived := orig.WithContext(map[string]any{"b": 2})

	require.Len(t, orig.Context, 1)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, derived.Context)
}
