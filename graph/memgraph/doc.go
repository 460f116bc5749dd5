// Package memgraph provides a process-local, in-memory implementation of
// graph.Store.
//
// # Layout
//
// Nodes are kept per label in a map keyed by id. Edges are kept as outbound
// adjacency sets per edge type, so every analysis is an indexed join over
// adjacency lists instead of a scan of the edge list.
//
// # Concurrency
//
// A sync.RWMutex guards all state. Queries take the read lock and may run
// concurrently; Reset and Load take the write lock.
//
// # Results
//
// Query returns the same columns and ranking as the Neo4j backend. Count
// columns are Go ints.
package memgraph
