package memgraph

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zero-day-ai/kleegraph/graph"
	"github.com/zero-day-ai/kleegraph/kgerr"
)

// Name is the backend name reported by Store.Name.
const Name = "memory"

// Store is an in-memory graph.Store.
type Store struct {
	mu sync.RWMutex

	// nodes: label -> id -> node
	nodes map[string]map[string]graph.Node
	// out: edge type -> source id -> set of target ids
	out   map[string]map[string]map[string]struct{}
	edges int
}

// New creates an empty store.
func New() *Store {
	s := &Store{}
	s.clear()
	return s
}

var _ graph.Store = (*Store)(nil)

func (s *Store) clear() {
	s.nodes = make(map[string]map[string]graph.Node, len(graph.Labels))
	for _, l := range graph.Labels {
		s.nodes[l] = make(map[string]graph.Node)
	}
	s.out = make(map[string]map[string]map[string]struct{}, len(graph.EdgeTypes))
	for _, t := range graph.EdgeTypes {
		s.out[t] = make(map[string]map[string]struct{})
	}
	s.edges = 0
}

// Name returns "memory".
func (s *Store) Name() string {
	return Name
}

// Reset drops all nodes and edges.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	return nil
}

// EnsureSchema is a no-op; identity is enforced by the node maps.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return nil
}

// Load inserts ds. Nodes with an existing label and id replace the previous
// node; repeated edges are stored once.
func (s *Store) Load(ctx context.Context, ds *graph.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range ds.Nodes {
		if err := n.Validate(); err != nil {
			return err
		}
		s.nodes[n.Label][n.ID] = n
	}
	for _, e := range ds.Edges {
		if err := e.Validate(); err != nil {
			return err
		}
		ep, _ := graph.EndpointsOf(e.Type)
		if _, ok := s.nodes[ep.From][e.FromID]; !ok {
			return fmt.Errorf("%s edge: %s %q not found", e.Type, ep.From, e.FromID)
		}
		if _, ok := s.nodes[ep.To][e.ToID]; !ok {
			return fmt.Errorf("%s edge: %s %q not found", e.Type, ep.To, e.ToID)
		}
		if link(s.out[e.Type], e.FromID, e.ToID) {
			s.edges++
		}
	}
	return nil
}

// link adds to to the set of from, reporting whether it was new.
func link(adj map[string]map[string]struct{}, from, to string) bool {
	set, ok := adj[from]
	if !ok {
		set = make(map[string]struct{})
		adj[from] = set
	}
	if _, dup := set[to]; dup {
		return false
	}
	set[to] = struct{}{}
	return true
}

// Stats returns the node and edge counts.
func (s *Store) Stats(ctx context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := 0
	for _, byID := range s.nodes {
		nodes += len(byID)
	}
	return nodes, s.edges, nil
}

// Close is a no-op.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// Query runs one analysis.
func (s *Store) Query(ctx context.Context, id graph.AnalysisID) ([]graph.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, kgerr.New("memgraph.Query", kgerr.KindQueryFailed, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	switch id {
	case graph.AnalysisErrorTypes:
		return s.errorTypes(), nil
	case graph.AnalysisVulnerableFunctions:
		return s.vulnerableFunctions(), nil
	case graph.AnalysisProblematicTests:
		return s.problematicTests(), nil
	case graph.AnalysisMemoryErrorPatterns:
		return s.memoryErrorPatterns(), nil
	case graph.AnalysisErrorPaths:
		return s.errorPaths(), nil
	default:
		return nil, graph.UnknownAnalysis("memgraph.Query", id)
	}
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
