package neo4jstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/kleegraph/graph"
	"github.com/zero-day-ai/kleegraph/graph/graphtest"
	"github.com/zero-day-ai/kleegraph/kgerr"
)

func TestStore_EnsureSchema(t *testing.T) {
	runner := newFakeRunner()
	require.NoError(t, New(runner).EnsureSchema(context.Background()))

	assert.Equal(t, schemaStatements, runner.statements)
	for _, stmt := range runner.statements {
		assert.Contains(t, stmt, "IF NOT EXISTS")
	}
}

func TestStore_EnsureSchemaConflictsIgnored(t *testing.T) {
	runner := newFakeRunner()
	runner.failOn = "CREATE"

	require.NoError(t, New(runner).EnsureSchema(context.Background()))
	assert.Len(t, runner.statements, len(schemaStatements), "every statement is attempted")
}

func TestStore_EnsureSchemaCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, New(newFakeRunner()).EnsureSchema(ctx), context.Canceled)
}

func TestStore_ResetLoadIdempotent(t *testing.T) {
	ctx := context.Background()
	runner := newFakeRunner()
	s := New(runner)
	ds := graphtest.Dataset()

	require.NoError(t, graph.Load(ctx, s, ds))
	nodes1, edges1, err := s.Stats(ctx)
	require.NoError(t, err)

	require.NoError(t, graph.Load(ctx, s, ds))
	nodes2, edges2, err := s.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, graphtest.Nodes, nodes1)
	assert.Equal(t, graphtest.Edges, edges1)
	assert.Equal(t, nodes1, nodes2)
	assert.Equal(t, edges1, edges2)
	assert.Equal(t, 2, runner.count(resetStatement))
}

func TestStore_LoadBatches(t *testing.T) {
	runner := newFakeRunner()
	s := New(runner, WithBatchSize(2))

	require.NoError(t, s.Load(context.Background(), graphtest.Dataset()))

	assert.Equal(t, 3, runner.count(mergeNodes(graph.LabelTestCase)))
	assert.Equal(t, 2, runner.count(mergeNodes(graph.LabelFailure)))
	assert.Equal(t, 2, runner.count(mergeNodes(graph.LabelFunction)))
	assert.Equal(t, 2, runner.count(mergeEdges(graph.EdgeFinds)))
	assert.Equal(t, 5, runner.count(mergeEdges(graph.EdgeTriggers)))
	assert.Equal(t, 5, runner.count(mergeEdges(graph.EdgeExecutes)))
	assert.Len(t, runner.statements, 19)

	first := runner.params[0]["rows"].([]any)
	require.Len(t, first, 2)
	assert.Equal(t, "test000001", first[0].(map[string]any)[graph.PropID])
	assert.Equal(t, "error", first[0].(map[string]any)[graph.PropStatus])
}

func TestStore_LoadEmptyDatasetIssuesNothing(t *testing.T) {
	runner := newFakeRunner()
	require.NoError(t, New(runner).Load(context.Background(), &graph.Dataset{}))
	assert.Empty(t, runner.statements)
}

func TestStore_LoadFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.failOn = "[r:TRIGGERS]"

	err := New(runner).Load(context.Background(), graphtest.Dataset())
	assert.ErrorContains(t, err, "load TRIGGERS edges")
}

func TestMergeStatements(t *testing.T) {
	assert.Equal(t,
		"UNWIND $rows AS row MERGE (n:Function {name: row.name}) SET n += row",
		mergeNodes(graph.LabelFunction))
	assert.Equal(t,
		"UNWIND $rows AS row MATCH (a:TestCase {id: row.from}) MATCH (b:Function {name: row.to}) MERGE (a)-[r:EXECUTES]->(b) SET r += row.props",
		mergeEdges(graph.EdgeExecutes))
	assert.Equal(t,
		"MATCH (n) WHERE n:TestCase OR n:Failure OR n:Function DETACH DELETE n",
		resetStatement)
}

func TestStatement(t *testing.T) {
	memoryParams := map[string]any{"p0": "memory_error"}

	tests := []struct {
		id         graph.AnalysisID
		wantCypher string
		wantParams map[string]any
	}{
		{
			id:         graph.AnalysisErrorTypes,
			wantCypher: "MATCH (e:Failure) RETURN e.subkind AS error_type, count(e) AS count ORDER BY count DESC, error_type ASC",
		},
		{
			id:         graph.AnalysisVulnerableFunctions,
			wantCypher: "MATCH (f:Function)-[:TRIGGERS]->(e:Failure) RETURN f.name AS function, f.role AS role, count(DISTINCT e) AS error_count ORDER BY error_count DESC, function ASC",
		},
		{
			id:         graph.AnalysisProblematicTests,
			wantCypher: "MATCH (t:TestCase)-[:FINDS]->(e:Failure) RETURN t.id AS test_case, t.status AS status, count(DISTINCT e) AS error_count ORDER BY error_count DESC, test_case ASC",
		},
		{
			id:         graph.AnalysisMemoryErrorPatterns,
			wantCypher: "MATCH (f:Function)-[:TRIGGERS]->(e:Failure) WHERE e.kind = $p0 RETURN f.name AS function, e.subkind AS error_subtype, count(DISTINCT e) AS count ORDER BY count DESC, function ASC, error_subtype ASC",
			wantParams: memoryParams,
		},
		{
			id:         graph.AnalysisErrorPaths,
			wantCypher: "MATCH (t:TestCase)-[:EXECUTES]->(f:Function)-[:TRIGGERS]->(e:Failure) WHERE e.kind = $p0 RETURN DISTINCT t.id AS test_case, f.name AS function, e.subkind AS error_type ORDER BY test_case ASC, function ASC, error_type ASC",
			wantParams: memoryParams,
		},
	}

	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			stmt, params, ok := Statement(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.wantCypher, stmt)
			assert.Equal(t, tt.wantParams, params)
		})
	}

	_, _, ok := Statement("call_graph")
	assert.False(t, ok)
}

func TestStore_Query(t *testing.T) {
	runner := newFakeRunner()
	runner.respond = func(stmt string, params map[string]any) []map[string]any {
		return []map[string]any{
			{graph.ColErrorType: "out_of_bound_pointer", graph.ColCount: int64(2)},
			{graph.ColErrorType: "program_abort", graph.ColCount: int64(1)},
		}
	}

	rows, err := New(runner).Query(context.Background(), graph.AnalysisErrorTypes)
	require.NoError(t, err)
	assert.Equal(t, []graph.Row{
		{graph.ColErrorType: "out_of_bound_pointer", graph.ColCount: int64(2)},
		{graph.ColErrorType: "program_abort", graph.ColCount: int64(1)},
	}, rows)
}

func TestStore_QueryFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.failOn = "MATCH"

	_, err := New(runner).Query(context.Background(), graph.AnalysisErrorPaths)
	require.Error(t, err)
	assert.True(t, kgerr.IsKind(err, kgerr.KindQueryFailed))

	_, err = New(runner).Query(context.Background(), "call_graph")
	assert.True(t, kgerr.IsKind(err, kgerr.KindQueryFailed))
}

func TestStore_StatsErrors(t *testing.T) {
	runner := newFakeRunner()
	runner.failOn = "count(n)"
	_, _, err := New(runner).Stats(context.Background())
	assert.ErrorContains(t, err, "stats")
}

func TestStore_NameAndClose(t *testing.T) {
	runner := newFakeRunner()
	s := New(runner)

	assert.Equal(t, "neo4j", s.Name())
	require.NoError(t, s.Close(context.Background()))
	assert.True(t, runner.closed)
}
