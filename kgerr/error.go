// Package kgerr defines the error taxonomy shared by the kleegraph packages.
//
// Every error that crosses a package boundary is an *Error carrying the
// operation that failed, a Kind from the constants below and the wrapped
// cause. Kinds let callers decide how to degrade without string matching:
//
//	run, err := artifact.Parse(ctx, dir)
//	if kgerr.IsKind(err, kgerr.KindDirectoryNotFound) {
//	    os.Exit(1)
//	}
//
// Only KindDirectoryNotFound is fatal. The remaining kinds describe
// conditions that are logged and degraded around.
package kgerr

import (
	"errors"
	"fmt"
)

// Error kinds.
const (
	// KindDirectoryNotFound means the run directory does not exist or is not
	// a directory. Nothing can be analyzed.
	KindDirectoryNotFound = "directory_not_found"

	// KindArtifactParseSkipped means one artifact could not be read or parsed
	// and was excluded from the results.
	KindArtifactParseSkipped = "artifact_parse_skipped"

	// KindStoreUnavailable means the external graph store could not be
	// reached or rejected a write. Callers fall back to the in-memory store.
	KindStoreUnavailable = "store_unavailable"

	// KindQueryFailed means a single analysis query failed. That analysis
	// yields an empty result; the others still run.
	KindQueryFailed = "query_failed"

	// KindSchemaSetupConflict means an idempotent constraint or index
	// statement collided with existing schema. Expected and ignored.
	KindSchemaSetupConflict = "schema_setup_conflict"

	// KindInvalidConfig means configuration failed validation.
	KindInvalidConfig = "invalid_config"
)

// Error is the structured error type used across kleegraph.
type Error struct {
	// Op is the operation that failed (e.g., "artifact.Parse", "neo4jstore.Load").
	Op string

	// Kind is one of the Kind constants.
	Kind string

	// Err is the underlying cause. May be nil.
	Err error

	// Context holds optional debugging details such as a file name.
	Context map[string]any
}

// New returns an *Error for the given operation and kind wrapping err.
func New(op, kind string, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("kleegraph: %s: %s", e.Op, e.Kind)
	}
	if len(e.Context) > 0 {
		return fmt.Sprintf("kleegraph: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}
	return fmt.Sprintf("kleegraph: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Kind (and the same Op
// when target sets one). Otherwise it defers to the wrapped cause.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		if t.Kind != "" && t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op) {
			return true
		}
	}
	return errors.Is(e.Err, target)
}

// WithContext returns a copy of e with the given details merged into Context.
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	newErr.Context = make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		newErr.Context[k] = v
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind string) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, &Error{Kind: kind})
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
