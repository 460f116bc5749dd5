// Package graph defines the node/edge model of a linked KLEE run and the
// Store contract both backends implement.
//
// A Dataset holds three node labels and three edge types:
//
//	(:TestCase)-[:FINDS]->(:Failure)
//	(:Function)-[:TRIGGERS]->(:Failure)
//	(:TestCase)-[:EXECUTES]->(:Function)
//
// Backends are interchangeable: for the same Dataset every Store must return
// the same rows for each AnalysisID. Stores are always Reset before a Load;
// there is no incremental update.
//
// Example:
//
//	ds := graph.NewDataset(linker.Link(run))
//	if err := graph.Load(ctx, store, ds); err != nil {
//	    // store is unavailable, fall back
//	}
//	rows, err := store.Query(ctx, graph.AnalysisErrorTypes)
package graph
