package cypher

import (
	"fmt"
	"strings"
)

// BuildNode renders a node pattern.
//
//	BuildNode("t", "TestCase") // "(t:TestCase)"
func BuildNode(alias, label string) string {
	if label == "" {
		return fmt.Sprintf("(%s)", alias)
	}
	return fmt.Sprintf("(%s:%s)", alias, label)
}

// BuildMatch generates a MATCH clause for a node with the given label and alias.
//
//	BuildMatch("Failure", "e") // "MATCH (e:Failure)"
func BuildMatch(label, alias string) string {
	return "MATCH " + BuildNode(alias, label)
}

// BuildTraversal renders one hop from an already bound alias.
//
//	BuildTraversal(Step{Relationship: "TRIGGERS", TargetLabel: "Failure", Alias: "e"}, "f")
//	// "(f)-[:TRIGGERS]->(e:Failure)"
func BuildTraversal(s Step, fromAlias string) string {
	return BuildNode(fromAlias, "") + hop(s)
}

// BuildPath generates a MATCH clause for a chain of hops.
//
//	BuildPath("t", "TestCase",
//	    Step{Relationship: "EXECUTES", TargetLabel: "Function", Alias: "f"},
//	    Step{Relationship: "TRIGGERS", TargetLabel: "Failure", Alias: "e"})
//	// "MATCH (t:TestCase)-[:EXECUTES]->(f:Function)-[:TRIGGERS]->(e:Failure)"
func BuildPath(alias, label string, steps ...Step) string {
	var b strings.Builder
	b.WriteString("MATCH ")
	b.WriteString(BuildNode(alias, label))
	for _, s := range steps {
		b.WriteString(hop(s))
	}
	return b.String()
}

func hop(s Step) string {
	rel := fmt.Sprintf("[:%s]", s.Relationship)
	target := BuildNode(s.Alias, s.TargetLabel)

	switch s.Direction {
	case DirIn:
		return fmt.Sprintf("<-%s-%s", rel, target)
	case DirBoth:
		return fmt.Sprintf("-%s-%s", rel, target)
	default:
		return fmt.Sprintf("-%s->%s", rel, target)
	}
}

// BuildWhere generates a WHERE clause from predicates with parameterized values.
// Parameters are named $p0, $p1, etc.
//
// Returns empty string and nil params if predicates is empty.
//
//	where, params := BuildWhere([]Predicate{{Alias: "e", Field: "kind", Op: Eq, Value: "memory_error"}})
//	// where: "WHERE e.kind = $p0", params: {"p0": "memory_error"}
func BuildWhere(predicates []Predicate) (string, map[string]any) {
	if len(predicates) == 0 {
		return "", nil
	}

	params := make(map[string]any)
	conditions := make([]string, 0, len(predicates))
	for i, pred := range predicates {
		paramName := fmt.Sprintf("p%d", i)
		conditions = append(conditions, buildCondition(pred, paramName))
		if requiresValue(pred.Op) {
			params[paramName] = pred.Value
		}
	}
	return "WHERE " + strings.Join(conditions, " AND "), params
}

func buildCondition(pred Predicate, paramName string) string {
	fieldRef := fmt.Sprintf("%s.%s", pred.Alias, pred.Field)

	switch pred.Op {
	case Neq:
		return fmt.Sprintf("%s <> $%s", fieldRef, paramName)
	case Contains:
		return fmt.Sprintf("%s CONTAINS $%s", fieldRef, paramName)
	case In:
		return fmt.Sprintf("%s IN $%s", fieldRef, paramName)
	case IsNull:
		return fmt.Sprintf("%s IS NULL", fieldRef)
	case IsNotNull:
		return fmt.Sprintf("%s IS NOT NULL", fieldRef)
	default:
		return fmt.Sprintf("%s = $%s", fieldRef, paramName)
	}
}

func requiresValue(op Op) bool {
	return op != IsNull && op != IsNotNull
}

// BuildReturn generates a RETURN clause.
//
//	BuildReturn(false, Projection{Expr: "e.subkind", As: "error_type"}, Projection{Expr: "count(e)", As: "count"})
//	// "RETURN e.subkind AS error_type, count(e) AS count"
func BuildReturn(distinct bool, items ...Projection) string {
	parts := make([]string, 0, len(items))
	for _, p := range items {
		if p.As == "" {
			parts = append(parts, p.Expr)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s AS %s", p.Expr, p.As))
	}
	prefix := "RETURN "
	if distinct {
		prefix = "RETURN DISTINCT "
	}
	return prefix + strings.Join(parts, ", ")
}

// BuildOrderBy generates an ORDER BY clause, or "" when keys is empty.
//
//	BuildOrderBy(OrderKey{Expr: "count", Desc: true}, OrderKey{Expr: "error_type"})
//	// "ORDER BY count DESC, error_type ASC"
func BuildOrderBy(keys ...OrderKey) string {
	if len(keys) == 0 {
		return ""
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		parts = append(parts, k.Expr+" "+dir)
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

// Join concatenates non-empty clauses with single spaces.
func Join(clauses ...string) string {
	nonEmpty := clauses[:0:0]
	for _, c := range clauses {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	return strings.Join(nonEmpty, " ")
}
