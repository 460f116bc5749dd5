package neo4jstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/zero-day-ai/kleegraph/graph"
	"github.com/zero-day-ai/kleegraph/kgerr"
)

// Name is the backend name reported by Store.Name.
const Name = "neo4j"

// DefaultBatchSize is the number of rows sent per UNWIND statement.
const DefaultBatchSize = 500

// Store is a graph.Store backed by Neo4j.
type Store struct {
	runner    Runner
	logger    *slog.Logger
	batchSize int
}

var _ graph.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithBatchSize sets the rows per load statement. Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New creates a Store running statements on runner.
func New(runner Runner, opts ...Option) *Store {
	s := &Store{
		runner:    runner,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "neo4j".
func (s *Store) Name() string {
	return Name
}

// Reset detaches and deletes every TestCase, Failure and Function node.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.runner.Query(ctx, resetStatement, nil); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// EnsureSchema creates constraints and indexes. Statement failures are
// logged and ignored; only context cancellation is returned.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.runner.Query(ctx, stmt, nil); err != nil {
			conflict := kgerr.New("neo4jstore.EnsureSchema", kgerr.KindSchemaSetupConflict, err)
			s.logger.Debug("schema statement ignored", "statement", stmt, "error", conflict)
		}
	}
	return nil
}

// Load writes ds in batches: nodes per label, then edges per type.
func (s *Store) Load(ctx context.Context, ds *graph.Dataset) error {
	for _, label := range graph.Labels {
		nodes := ds.NodesByLabel(label)
		rows := make([]map[string]any, 0, len(nodes))
		for _, n := range nodes {
			row := make(map[string]any, len(n.Properties)+1)
			for k, v := range n.Properties {
				row[k] = v
			}
			row[graph.KeyProperty(label)] = n.ID
			rows = append(rows, row)
		}
		if err := s.batch(ctx, mergeNodes(label), rows); err != nil {
			return fmt.Errorf("load %s nodes: %w", label, err)
		}
	}

	for _, edgeType := range graph.EdgeTypes {
		edges := ds.EdgesByType(edgeType)
		rows := make([]map[string]any, 0, len(edges))
		for _, e := range edges {
			props := e.Properties
			if props == nil {
				props = map[string]any{}
			}
			rows = append(rows, map[string]any{"from": e.FromID, "to": e.ToID, "props": props})
		}
		if err := s.batch(ctx, mergeEdges(edgeType), rows); err != nil {
			return fmt.Errorf("load %s edges: %w", edgeType, err)
		}
	}

	s.logger.Debug("loaded dataset", "nodes", len(ds.Nodes), "edges", len(ds.Edges))
	return nil
}

func (s *Store) batch(ctx context.Context, stmt string, rows []map[string]any) error {
	for start := 0; start < len(rows); start += s.batchSize {
		end := min(start+s.batchSize, len(rows))
		chunk := make([]any, 0, end-start)
		for _, r := range rows[start:end] {
			chunk = append(chunk, r)
		}
		if _, err := s.runner.Query(ctx, stmt, map[string]any{"rows": chunk}); err != nil {
			return err
		}
	}
	return nil
}

// Query runs one analysis. Errors are *kgerr.Error of KindQueryFailed.
func (s *Store) Query(ctx context.Context, id graph.AnalysisID) ([]graph.Row, error) {
	stmt, params, ok := Statement(id)
	if !ok {
		return nil, graph.UnknownAnalysis("neo4jstore.Query", id)
	}

	records, err := s.runner.Query(ctx, stmt, params)
	if err != nil {
		return nil, kgerr.New("neo4jstore.Query", kgerr.KindQueryFailed, err).
			WithContext(map[string]any{"analysis": id.String()})
	}

	rows := make([]graph.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, graph.Row(r))
	}
	return rows, nil
}

// Stats counts graph nodes and edges.
func (s *Store) Stats(ctx context.Context) (int, int, error) {
	nodes, err := s.count(ctx, countNodesStatement, nil)
	if err != nil {
		return 0, 0, err
	}
	edges, err := s.count(ctx, countEdgesStatement, map[string]any{"types": graph.EdgeTypes})
	if err != nil {
		return 0, 0, err
	}
	return nodes, edges, nil
}

func (s *Store) count(ctx context.Context, stmt string, params map[string]any) (int, error) {
	records, err := s.runner.Query(ctx, stmt, params)
	if err != nil {
		return 0, fmt.Errorf("stats: %w", err)
	}
	if len(records) != 1 {
		return 0, fmt.Errorf("stats: expected one row, got %d", len(records))
	}
	n, ok := records[0]["count"].(int64)
	if !ok {
		return 0, fmt.Errorf("stats: count is %T", records[0]["count"])
	}
	return int(n), nil
}

// Close closes the runner.
func (s *Store) Close(ctx context.Context) error {
	return s.runner.Close(ctx)
}
