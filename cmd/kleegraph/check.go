package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/zero-day-ai/kleegraph/config"
	"github.com/zero-day-ai/kleegraph/health"
)

func newCheckCmd(stdout io.Writer, lookup lookupFunc, f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir]",
		Short: "Check the run directory, graph store and report broker",
		Long: `Probes every dependency of an analysis run and prints the combined status
as JSON. The graph store and the report broker are optional: when they are
unreachable the status is degraded, not unhealthy.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f, lookup)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			status := runChecks(ctx, cfg, args)

			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(status); err != nil {
				return fmt.Errorf("failed to encode status: %w", err)
			}
			if status.IsUnhealthy() {
				return errors.New(status.Message)
			}
			return nil
		},
	}
}

func runChecks(ctx context.Context, cfg *config.Config, args []string) health.Status {
	var checks []health.Status
	if len(args) > 0 {
		checks = append(checks, health.DirCheck(args[0]))
	}

	if cfg.Store.Enabled() {
		checks = append(checks, health.Optional(storeCheck(ctx, cfg.Store)))
	}
	if cfg.Report.RedisURL != "" {
		checks = append(checks, health.Optional(redisCheck(ctx, cfg.Report.RedisURL, cfg.Store.GetProbeTimeout())))
	}

	return health.Combine(checks...)
}

func storeCheck(ctx context.Context, cfg config.StoreConfig) health.Status {
	host, port, err := cfg.HostPort()
	if err != nil {
		return health.Unhealthy(err.Error(), map[string]any{"uri": cfg.URI})
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.GetProbeTimeout())
	defer cancel()
	return health.NetworkCheck(ctx, host, port)
}

func redisCheck(ctx context.Context, rawURL string, timeout time.Duration) health.Status {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return health.Unhealthy("invalid redis url", map[string]any{"error": err.Error()})
	}
	host, portStr, err := net.SplitHostPort(opts.Addr)
	if err != nil {
		return health.Unhealthy("invalid redis address", map[string]any{"addr": opts.Addr})
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return health.Unhealthy("invalid redis port", map[string]any{"addr": opts.Addr})
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return health.NetworkCheck(ctx, host, port)
}
