package neo4jstore

import (
	"fmt"
	"strings"

	"github.com/zero-day-ai/kleegraph/graph"
	"github.com/zero-day-ai/kleegraph/graph/cypher"
)

// schemaStatements create the constraints and indexes used by the analyses.
var schemaStatements = []string{
	"CREATE CONSTRAINT test_case_id IF NOT EXISTS FOR (t:TestCase) REQUIRE t.id IS UNIQUE",
	"CREATE CONSTRAINT function_name IF NOT EXISTS FOR (f:Function) REQUIRE f.name IS UNIQUE",
	"CREATE INDEX test_case_status IF NOT EXISTS FOR (t:TestCase) ON (t.status)",
	"CREATE INDEX failure_subkind IF NOT EXISTS FOR (e:Failure) ON (e.subkind)",
	"CREATE INDEX function_role IF NOT EXISTS FOR (f:Function) ON (f.role)",
}

// labelFilter matches nodes carrying any of the graph labels.
func labelFilter(alias string) string {
	parts := make([]string, 0, len(graph.Labels))
	for _, l := range graph.Labels {
		parts = append(parts, alias+":"+l)
	}
	return strings.Join(parts, " OR ")
}

var (
	resetStatement = fmt.Sprintf("MATCH (n) WHERE %s DETACH DELETE n", labelFilter("n"))

	countNodesStatement = fmt.Sprintf("MATCH (n) WHERE %s RETURN count(n) AS count", labelFilter("n"))
	countEdgesStatement = "MATCH ()-[r]->() WHERE type(r) IN $types RETURN count(r) AS count"
)

// mergeNodes upserts one batch of nodes with label, keyed by its key property.
func mergeNodes(label string) string {
	key := graph.KeyProperty(label)
	return fmt.Sprintf("UNWIND $rows AS row MERGE (n:%s {%s: row.%s}) SET n += row", label, key, key)
}

// mergeEdges upserts one batch of edges of edgeType between existing nodes.
func mergeEdges(edgeType string) string {
	ep, _ := graph.EndpointsOf(edgeType)
	return fmt.Sprintf(
		"UNWIND $rows AS row MATCH (a:%s {%s: row.from}) MATCH (b:%s {%s: row.to}) MERGE (a)-[r:%s]->(b) SET r += row.props",
		ep.From, graph.KeyProperty(ep.From), ep.To, graph.KeyProperty(ep.To), edgeType,
	)
}

var (
	failure = cypher.Step{Relationship: graph.EdgeTriggers, TargetLabel: graph.LabelFailure, Alias: "e"}
	memory  = []cypher.Predicate{{Alias: "e", Field: graph.PropKind, Op: cypher.Eq, Value: graph.MemoryErrorKind}}
)

// Statement returns the Cypher and parameters of one analysis.
func Statement(id graph.AnalysisID) (string, map[string]any, bool) {
	switch id {
	case graph.AnalysisErrorTypes:
		return cypher.Join(
			cypher.BuildMatch(graph.LabelFailure, "e"),
			cypher.BuildReturn(false,
				cypher.Projection{Expr: "e." + graph.PropSubkind, As: graph.ColErrorType},
				cypher.Projection{Expr: "count(e)", As: graph.ColCount},
			),
			cypher.BuildOrderBy(
				cypher.OrderKey{Expr: graph.ColCount, Desc: true},
				cypher.OrderKey{Expr: graph.ColErrorType},
			),
		), nil, true

	case graph.AnalysisVulnerableFunctions:
		return cypher.Join(
			cypher.BuildPath("f", graph.LabelFunction, failure),
			cypher.BuildReturn(false,
				cypher.Projection{Expr: "f." + graph.PropName, As: graph.ColFunction},
				cypher.Projection{Expr: "f." + graph.PropRole, As: graph.ColRole},
				cypher.Projection{Expr: "count(DISTINCT e)", As: graph.ColErrorCount},
			),
			cypher.BuildOrderBy(
				cypher.OrderKey{Expr: graph.ColErrorCount, Desc: true},
				cypher.OrderKey{Expr: graph.ColFunction},
			),
		), nil, true

	case graph.AnalysisProblematicTests:
		return cypher.Join(
			cypher.BuildPath("t", graph.LabelTestCase,
				cypher.Step{Relationship: graph.EdgeFinds, TargetLabel: graph.LabelFailure, Alias: "e"}),
			cypher.BuildReturn(false,
				cypher.Projection{Expr: "t." + graph.PropID, As: graph.ColTestCase},
				cypher.Projection{Expr: "t." + graph.PropStatus, As: graph.ColStatus},
				cypher.Projection{Expr: "count(DISTINCT e)", As: graph.ColErrorCount},
			),
			cypher.BuildOrderBy(
				cypher.OrderKey{Expr: graph.ColErrorCount, Desc: true},
				cypher.OrderKey{Expr: graph.ColTestCase},
			),
		), nil, true

	case graph.AnalysisMemoryErrorPatterns:
		where, params := cypher.BuildWhere(memory)
		return cypher.Join(
			cypher.BuildPath("f", graph.LabelFunction, failure),
			where,
			cypher.BuildReturn(false,
				cypher.Projection{Expr: "f." + graph.PropName, As: graph.ColFunction},
				cypher.Projection{Expr: "e." + graph.PropSubkind, As: graph.ColErrorSubtype},
				cypher.Projection{Expr: "count(DISTINCT e)", As: graph.ColCount},
			),
			cypher.BuildOrderBy(
				cypher.OrderKey{Expr: graph.ColCount, Desc: true},
				cypher.OrderKey{Expr: graph.ColFunction},
				cypher.OrderKey{Expr: graph.ColErrorSubtype},
			),
		), params, true

	case graph.AnalysisErrorPaths:
		where, params := cypher.BuildWhere(memory)
		return cypher.Join(
			cypher.BuildPath("t", graph.LabelTestCase,
				cypher.Step{Relationship: graph.EdgeExecutes, TargetLabel: graph.LabelFunction, Alias: "f"},
				failure,
			),
			where,
			cypher.BuildReturn(true,
				cypher.Projection{Expr: "t." + graph.PropID, As: graph.ColTestCase},
				cypher.Projection{Expr: "f." + graph.PropName, As: graph.ColFunction},
				cypher.Projection{Expr: "e." + graph.PropSubkind, As: graph.ColErrorType},
			),
			cypher.BuildOrderBy(
				cypher.OrderKey{Expr: graph.ColTestCase},
				cypher.OrderKey{Expr: graph.ColFunction},
				cypher.OrderKey{Expr: graph.ColErrorType},
			),
		), params, true

	default:
		return "", nil, false
	}
}
