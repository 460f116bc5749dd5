package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/kleegraph"
	"github.com/zero-day-ai/kleegraph/config"
	"github.com/zero-day-ai/kleegraph/report"
)

// flags holds the values shared by every command.
type flags struct {
	configPath string
	output     string
	workers    int
	neo4jURI   string
	redisURL   string
	logLevel   string
	logFormat  string
	top        int
}

type lookupFunc func(string) (string, bool)

func newRootCmd(stdout, stderr io.Writer, lookup lookupFunc) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "kleegraph [dir]",
		Short: "Build a vulnerability report from KLEE output",
		Long: `kleegraph parses the artifacts of a KLEE run directory, links failures to
test cases and stack-trace functions, loads them into a graph store and
reports the most common errors, the most implicated functions and the
error paths.

Neo4j is used when --neo4j-uri or NEO4J_URI is set and reachable; the
in-memory store is used otherwise.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runAnalyze(cmd.Context(), stdout, stderr, lookup, f, args[0])
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "path to kleegraph.yaml (default: ./kleegraph.yaml when present)")
	pf.StringVarP(&f.output, "output", "o", "", "report file (default: "+config.DefaultReportPath+")")
	pf.IntVar(&f.workers, "workers", 0, "artifacts parsed concurrently")
	pf.StringVar(&f.neo4jURI, "neo4j-uri", "", "Neo4j bolt URI")
	pf.StringVar(&f.redisURL, "redis-url", "", "publish the report to this Redis")
	pf.StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&f.logFormat, "log-format", "text", "log format (text, json)")
	pf.IntVar(&f.top, "top", report.DefaultTop, "entries printed per section")

	root.AddCommand(
		&cobra.Command{
			Use:   "analyze <dir>",
			Short: "Analyze a KLEE output directory",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAnalyze(cmd.Context(), stdout, stderr, lookup, f, args[0])
			},
		},
		newCheckCmd(stdout, lookup, f),
	)
	return root
}

func runAnalyze(ctx context.Context, stdout, stderr io.Writer, lookup lookupFunc, f *flags, dir string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := newLogger(stderr, f.logLevel, f.logFormat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(f, lookup)
	if err != nil {
		return err
	}

	sinks, closeSinks := openSinks(ctx, cfg, logger)
	defer closeSinks()

	analyzer, err := kleegraph.New(
		kleegraph.WithConfig(cfg),
		kleegraph.WithLogger(logger),
		kleegraph.WithSinks(sinks...),
	)
	if err != nil {
		return err
	}

	rep, err := analyzer.Run(ctx, dir)
	if err != nil {
		return err
	}

	for _, line := range rep.Lines(f.top) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintf(stdout, "\nReport written to %s\n", cfg.Report.GetPath())
	return nil
}

// loadConfig merges the config file, the environment and the flags, in
// that order of increasing precedence.
func loadConfig(f *flags, lookup lookupFunc) (*config.Config, error) {
	cfg := &config.Config{}

	path := f.configPath
	if path == "" {
		for _, name := range config.FileNames {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	if f.output != "" {
		cfg.Report.Path = f.output
	}
	if f.workers > 0 {
		cfg.Parser.Workers = f.workers
	}
	if f.neo4jURI != "" {
		cfg.Store.URI = f.neo4jURI
	}
	if f.redisURL != "" {
		cfg.Report.RedisURL = f.redisURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSinks returns the file sink and, when configured and reachable, the
// Redis sink. An unreachable Redis is logged and skipped.
func openSinks(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]report.Sink, func()) {
	sinks := []report.Sink{report.FileSink{Path: filepath.Clean(cfg.Report.GetPath())}}
	if cfg.Report.RedisURL == "" {
		return sinks, func() {}
	}

	redisSink, err := report.NewRedisSink(ctx, report.RedisOptions{
		URL:       cfg.Report.RedisURL,
		KeyPrefix: cfg.Report.GetRedisKeyPrefix(),
		Channel:   cfg.Report.GetRedisChannel(),
	})
	if err != nil {
		logger.Warn("report broker unavailable, writing file only", "error", err)
		return sinks, func() {}
	}
	return append(sinks, redisSink), func() {
		if err := redisSink.Close(); err != nil {
			logger.Debug("failed to close redis sink", "error", err)
		}
	}
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q", format)
	}
}
