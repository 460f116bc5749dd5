package neo4jstore

import (
	"context"
	"errors"
	"strings"

	"github.com/zero-day-ai/kleegraph/graph"
)

// fakeRunner interprets the statements this package issues against a tiny
// in-memory model, so load and count behavior can be checked without Neo4j.
type fakeRunner struct {
	statements []string
	params     []map[string]any

	nodes map[string]map[string]bool
	edges map[string]bool

	// failOn makes any statement containing it fail.
	failOn string
	// respond answers analysis statements.
	respond func(stmt string, params map[string]any) []map[string]any

	closed bool
}

func newFakeRunner() *fakeRunner {
	f := &fakeRunner{}
	f.reset()
	return f
}

func (f *fakeRunner) reset() {
	f.nodes = make(map[string]map[string]bool)
	for _, l := range graph.Labels {
		f.nodes[l] = make(map[string]bool)
	}
	f.edges = make(map[string]bool)
}

func (f *fakeRunner) Query(ctx context.Context, stmt string, params map[string]any) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.statements = append(f.statements, stmt)
	f.params = append(f.params, params)
	if f.failOn != "" && strings.Contains(stmt, f.failOn) {
		return nil, errors.New("Neo.ClientError.General.Unknown")
	}

	switch {
	case stmt == resetStatement:
		f.reset()
	case strings.HasPrefix(stmt, "UNWIND $rows AS row MERGE (n:"):
		label := between(stmt, "(n:", " {")
		key := graph.KeyProperty(label)
		for _, row := range params["rows"].([]any) {
			f.nodes[label][row.(map[string]any)[key].(string)] = true
		}
	case strings.HasPrefix(stmt, "UNWIND $rows AS row MATCH"):
		edgeType := between(stmt, "[r:", "]->")
		for _, row := range params["rows"].([]any) {
			r := row.(map[string]any)
			f.edges[edgeType+"|"+r["from"].(string)+"|"+r["to"].(string)] = true
		}
	case stmt == countNodesStatement:
		total := 0
		for _, ids := range f.nodes {
			total += len(ids)
		}
		return []map[string]any{{"count": int64(total)}}, nil
	case stmt == countEdgesStatement:
		return []map[string]any{{"count": int64(len(f.edges))}}, nil
	case f.respond != nil:
		return f.respond(stmt, params), nil
	}
	return nil, nil
}

func (f *fakeRunner) Close(context.Context) error {
	f.closed = true
	return nil
}

func (f *fakeRunner) count(prefix string) int {
	n := 0
	for _, s := range f.statements {
		if strings.HasPrefix(s, prefix) {
			n++
		}
	}
	return n
}

func between(s, start, end string) string {
	_, rest, _ := strings.Cut(s, start)
	out, _, _ := strings.Cut(rest, end)
	return out
}
