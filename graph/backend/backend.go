// Package backend selects and loads the graph store for a run.
//
// Neo4j is used when a store URI is configured and answers within the probe
// timeout. Every other outcome degrades to the in-memory store; selection
// never fails a run.
package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/zero-day-ai/kleegraph/config"
	"github.com/zero-day-ai/kleegraph/graph"
	"github.com/zero-day-ai/kleegraph/graph/memgraph"
	"github.com/zero-day-ai/kleegraph/graph/neo4jstore"
	"github.com/zero-day-ai/kleegraph/health"
	"github.com/zero-day-ai/kleegraph/kgerr"
)

// Option configures Build and Load.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	batchSize int
	dial      func(context.Context, config.StoreConfig, *slog.Logger) (neo4jstore.Runner, error)
}

func defaults(opts []Option) *options {
	o := &options{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		batchSize: neo4jstore.DefaultBatchSize,
		dial: func(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (neo4jstore.Runner, error) {
			return neo4jstore.Dial(ctx, cfg, logger)
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBatchSize sets the UNWIND batch size of the Neo4j store.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// Build returns the store for cfg. The returned store is never nil: when
// the external store is not configured or cannot be reached, the in-memory
// store is returned together with the *kgerr.Error of KindStoreUnavailable
// that caused the fallback (nil when no URI is configured).
func Build(ctx context.Context, cfg config.StoreConfig, opts ...Option) (graph.Store, error) {
	o := defaults(opts)
	if !cfg.Enabled() {
		o.logger.Debug("no graph store configured", "backend", memgraph.Name)
		return memgraph.New(), nil
	}

	runner, err := connect(ctx, cfg, o)
	if err != nil {
		o.logger.Warn("graph store unavailable, using in-memory store",
			"uri", cfg.URI,
			"backend", memgraph.Name,
			"error", err,
		)
		return memgraph.New(), err
	}

	o.logger.Info("connected to graph store", "uri", cfg.URI, "backend", neo4jstore.Name)
	return neo4jstore.New(runner,
		neo4jstore.WithLogger(o.logger),
		neo4jstore.WithBatchSize(o.batchSize),
	), nil
}

func connect(ctx context.Context, cfg config.StoreConfig, o *options) (neo4jstore.Runner, error) {
	host, port, err := cfg.HostPort()
	if err != nil {
		return nil, kgerr.New("backend.Build", kgerr.KindStoreUnavailable, err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, cfg.GetProbeTimeout())
	status := health.NetworkCheck(probeCtx, host, port)
	cancel()
	if !status.IsHealthy() {
		return nil, kgerr.New("backend.Build", kgerr.KindStoreUnavailable, errors.New(status.Message)).
			WithContext(status.Details)
	}

	return o.dial(ctx, cfg, o.logger)
}

// Load loads ds into store. When that fails on an external store, the store
// is closed and ds is loaded into a fresh in-memory store instead. The
// returned store is the one holding ds.
func Load(ctx context.Context, store graph.Store, ds *graph.Dataset, opts ...Option) (graph.Store, error) {
	o := defaults(opts)
	if err := ds.Validate(); err != nil {
		return store, kgerr.New("backend.Load", kgerr.KindStoreUnavailable, err)
	}

	err := graph.Load(ctx, store, ds)
	if err == nil || store.Name() == memgraph.Name || ctx.Err() != nil {
		return store, err
	}

	o.logger.Warn("graph store load failed, using in-memory store",
		"backend", store.Name(),
		"error", err,
	)
	if closeErr := store.Close(ctx); closeErr != nil {
		o.logger.Debug("failed to close graph store", "backend", store.Name(), "error", closeErr)
	}

	mem := memgraph.New()
	if err := graph.Load(ctx, mem, ds); err != nil {
		return mem, err
	}
	return mem, nil
}
