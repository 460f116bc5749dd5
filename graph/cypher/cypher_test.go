package cypher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMatch(t *testing.T) {
	tests := []struct {
		name  string
		label string
		alias string
		want  string
	}{
		{name: "failure", label: "Failure", alias: "e", want: "MATCH (e:Failure)"},
		{name: "test case", label: "TestCase", alias: "t", want: "MATCH (t:TestCase)"},
		{name: "unlabeled", label: "", alias: "n", want: "MATCH (n)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildMatch(tt.label, tt.alias))
		})
	}
}

func TestBuildTraversal(t *testing.T) {
	tests := []struct {
		name string
		step Step
		want string
	}{
		{
			name: "outbound default",
			step: Step{Relationship: "TRIGGERS", TargetLabel: "Failure", Alias: "e"},
			want: "(f)-[:TRIGGERS]->(e:Failure)",
		},
		{
			name: "inbound",
			step: Step{Relationship: "FINDS", TargetLabel: "TestCase", Alias: "t", Direction: DirIn},
			want: "(f)<-[:FINDS]-(t:TestCase)",
		},
		{
			name: "both",
			step: Step{Relationship: "EXECUTES", TargetLabel: "TestCase", Alias: "t", Direction: DirBoth},
			want: "(f)-[:EXECUTES]-(t:TestCase)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildTraversal(tt.step, "f"))
		})
	}
}

func TestBuildPath(t *testing.T) {
	got := BuildPath("t", "TestCase",
		Step{Relationship: "EXECUTES", TargetLabel: "Function", Alias: "f"},
		Step{Relationship: "TRIGGERS", TargetLabel: "Failure", Alias: "e"},
	)
	assert.Equal(t, "MATCH (t:TestCase)-[:EXECUTES]->(f:Function)-[:TRIGGERS]->(e:Failure)", got)

	assert.Equal(t, "MATCH (e:Failure)", BuildPath("e", "Failure"))
}

func TestBuildWhere(t *testing.T) {
	tests := []struct {
		name       string
		predicates []Predicate
		wantWhere  string
		wantParams map[string]any
	}{
		{
			name:       "empty predicates",
			predicates: nil,
			wantWhere:  "",
			wantParams: nil,
		},
		{
			name:       "single equality",
			predicates: []Predicate{{Alias: "e", Field: "kind", Op: Eq, Value: "memory_error"}},
			wantWhere:  "WHERE e.kind = $p0",
			wantParams: map[string]any{"p0": "memory_error"},
		},
		{
			name: "mixed aliases and operators",
			predicates: []Predicate{
				{Alias: "t", Field: "status", Op: Neq, Value: "success"},
				{Alias: "f", Field: "name", Op: Contains, Value: "vuln"},
				{Alias: "e", Field: "subkind", Op: In, Value: []string{"a", "b"}},
			},
			wantWhere:  "WHERE t.status <> $p0 AND f.name CONTAINS $p1 AND e.subkind IN $p2",
			wantParams: map[string]any{"p0": "success", "p1": "vuln", "p2": []string{"a", "b"}},
		},
		{
			name: "null checks take no parameter",
			predicates: []Predicate{
				{Alias: "e", Field: "message", Op: IsNull},
				{Alias: "e", Field: "subkind", Op: IsNotNull},
			},
			wantWhere:  "WHERE e.message IS NULL AND e.subkind IS NOT NULL",
			wantParams: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, params := BuildWhere(tt.predicates)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestBuildReturn(t *testing.T) {
	assert.Equal(t,
		"RETURN e.subkind AS error_type, count(e) AS count",
		BuildReturn(false, Projection{Expr: "e.subkind", As: "error_type"}, Projection{Expr: "count(e)", As: "count"}),
	)
	assert.Equal(t,
		"RETURN DISTINCT t.id AS test_case, f",
		BuildReturn(true, Projection{Expr: "t.id", As: "test_case"}, Projection{Expr: "f"}),
	)
}

func TestBuildOrderBy(t *testing.T) {
	assert.Equal(t, "", BuildOrderBy())
	assert.Equal(t,
		"ORDER BY count DESC, error_type ASC",
		BuildOrderBy(OrderKey{Expr: "count", Desc: true}, OrderKey{Expr: "error_type"}),
	)
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "MATCH (e:Failure) RETURN e", Join("MATCH (e:Failure)", "", "RETURN e", ""))
	assert.Equal(t, "", Join())
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "=", Eq.String())
	assert.Equal(t, "IS NOT NULL", IsNotNull.String())
	assert.Equal(t, "Op(42)", Op(42).String())
}
