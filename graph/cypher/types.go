// Package cypher builds the parameterized Cypher statements used by the Neo4j
// backend.
package cypher

import "fmt"

// Op is a predicate operator.
type Op int

const (
	Eq Op = iota // =
	Neq          // <>
	Contains     // CONTAINS
	In           // IN
	IsNull       // IS NULL, takes no value
	IsNotNull    // IS NOT NULL, takes no value
)

// String returns the Cypher operator.
func (o Op) String() string {
	switch o {
	case Eq:
		return "="
	case Neq:
		return "<>"
	case Contains:
		return "CONTAINS"
	case In:
		return "IN"
	case IsNull:
		return "IS NULL"
	case IsNotNull:
		return "IS NOT NULL"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Predicate is a filter condition on one property of an alias.
type Predicate struct {
	Alias string
	Field string
	Op    Op
	Value any
}

// Direction of a traversal step.
type Direction string

const (
	DirOut  Direction = "out"
	DirIn   Direction = "in"
	DirBoth Direction = "both"
)

// Step is one hop of a path pattern.
type Step struct {
	// Relationship is the relationship type to traverse
	Relationship string
	// TargetLabel is the label of the node reached
	TargetLabel string
	// Alias names the node reached
	Alias string
	// Direction defaults to DirOut
	Direction Direction
}

// Projection is one RETURN item.
type Projection struct {
	Expr string
	As   string
}

// OrderKey is one ORDER BY item.
type OrderKey struct {
	Expr string
	Desc bool
}
