package backend

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/kleegraph/config"
	"github.com/zero-day-ai/kleegraph/graph"
	"github.com/zero-day-ai/kleegraph/graph/graphtest"
	"github.com/zero-day-ai/kleegraph/graph/memgraph"
	"github.com/zero-day-ai/kleegraph/graph/neo4jstore"
	"github.com/zero-day-ai/kleegraph/kgerr"
)

// stubRunner answers every statement with no rows, or err when set.
type stubRunner struct {
	err    error
	closed bool
}

func (r *stubRunner) Query(context.Context, string, map[string]any) ([]map[string]any, error) {
	return nil, r.err
}

func (r *stubRunner) Close(context.Context) error {
	r.closed = true
	return nil
}

func withDial(runner neo4jstore.Runner, err error, called *bool) Option {
	return func(o *options) {
		o.dial = func(context.Context, config.StoreConfig, *slog.Logger) (neo4jstore.Runner, error) {
			*called = true
			return runner, err
		}
	}
}

func listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	return "bolt://" + ln.Addr().String()
}

func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return "bolt://" + addr
}

func TestBuild_NoURI(t *testing.T) {
	var called bool
	store, err := Build(context.Background(), config.StoreConfig{}, withDial(nil, nil, &called))

	require.NoError(t, err)
	assert.Equal(t, memgraph.Name, store.Name())
	assert.False(t, called)
}

func TestBuild_Fallback(t *testing.T) {
	tests := []struct {
		name     string
		uri      func(t *testing.T) string
		dialErr  error
		wantDial bool
	}{
		{name: "invalid uri", uri: func(*testing.T) string { return "bolt://host:port" }},
		{name: "closed port", uri: closedAddr},
		{
			name:     "driver rejects",
			uri:      listen,
			dialErr:  kgerr.New("neo4jstore.Dial", kgerr.KindStoreUnavailable, errors.New("handshake")),
			wantDial: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			cfg := config.StoreConfig{URI: tt.uri(t), ProbeTimeout: "500ms"}

			store, err := Build(context.Background(), cfg, withDial(nil, tt.dialErr, &called))

			require.NotNil(t, store)
			assert.Equal(t, memgraph.Name, store.Name())
			assert.True(t, kgerr.IsKind(err, kgerr.KindStoreUnavailable), "got %v", err)
			assert.Equal(t, tt.wantDial, called)
		})
	}
}

func TestBuild_Neo4j(t *testing.T) {
	var called bool
	runner := &stubRunner{}
	store, err := Build(context.Background(), config.StoreConfig{URI: listen(t)}, withDial(runner, nil, &called))

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, neo4jstore.Name, store.Name())
}

func TestLoad_Memory(t *testing.T) {
	store := memgraph.New()
	got, err := Load(context.Background(), store, graphtest.Dataset())

	require.NoError(t, err)
	assert.Same(t, store, got)

	nodes, edges, err := got.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, graphtest.Nodes, nodes)
	assert.Equal(t, graphtest.Edges, edges)
}

func TestLoad_FallsBackToMemory(t *testing.T) {
	runner := &stubRunner{err: errors.New("connection reset")}
	store := neo4jstore.New(runner)

	got, err := Load(context.Background(), store, graphtest.Dataset())

	require.NoError(t, err)
	assert.Equal(t, memgraph.Name, got.Name())
	assert.True(t, runner.closed)

	nodes, edges, err := got.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, graphtest.Nodes, nodes)
	assert.Equal(t, graphtest.Edges, edges)
}

func TestLoad_InvalidDataset(t *testing.T) {
	runner := &stubRunner{}
	store := neo4jstore.New(runner)
	ds := &graph.Dataset{Edges: []graph.Edge{*graph.NewEdge("a", "b", graph.EdgeFinds)}}

	got, err := Load(context.Background(), store, ds)

	assert.True(t, kgerr.IsKind(err, kgerr.KindStoreUnavailable))
	assert.Same(t, store, got)
	assert.False(t, runner.closed)
}

func TestLoad_Cancelled(t *testing.T) {
	runner := &stubRunner{}
	store := neo4jstore.New(runner)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := Load(ctx, store, graphtest.Dataset())

	assert.Error(t, err)
	assert.Same(t, store, got)
	assert.False(t, runner.closed)
}
