// Package neo4jstore implements graph.Store on Neo4j.
//
// Statements go through a Runner, which has the shape of a plain Cypher
// client: Query(ctx, cypher, params) returning rows as maps. DriverRunner
// adapts a neo4j.DriverWithContext; tests supply their own Runner.
//
// # Schema
//
// EnsureSchema creates, with IF NOT EXISTS:
//
//	CONSTRAINT test_case_id   FOR (t:TestCase) REQUIRE t.id IS UNIQUE
//	CONSTRAINT function_name  FOR (f:Function) REQUIRE f.name IS UNIQUE
//	INDEX test_case_status    FOR (t:TestCase) ON (t.status)
//	INDEX failure_subkind     FOR (e:Failure) ON (e.subkind)
//	INDEX function_role       FOR (f:Function) ON (f.role)
//
// Failed schema statements are reported as SchemaSetupConflict at debug
// level and otherwise ignored.
//
// # Loading
//
// Nodes and edges are written with UNWIND ... MERGE in batches, one label or
// edge type per statement. A single Store must not be loaded concurrently.
//
// Example:
//
//	runner, err := neo4jstore.Dial(ctx, cfg.Store, logger)
//	if err != nil {
//	    return err
//	}
//	store := neo4jstore.New(runner, neo4jstore.WithLogger(logger))
//	defer store.Close(ctx)
package neo4jstore
