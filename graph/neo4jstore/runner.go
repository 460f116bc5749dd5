package neo4jstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/zero-day-ai/kleegraph/config"
	"github.com/zero-day-ai/kleegraph/kgerr"
)

// Runner executes Cypher statements.
type Runner interface {
	// Query executes a Cypher statement with parameters. Each result row is
	// returned as a map of column names to values.
	Query(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)

	// Close releases the connection.
	Close(ctx context.Context) error
}

// DriverRunner runs statements on one database through the official driver.
type DriverRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ Runner = (*DriverRunner)(nil)

// NewDriverRunner wraps driver. Statements run against database.
func NewDriverRunner(driver neo4j.DriverWithContext, database string) *DriverRunner {
	return &DriverRunner{driver: driver, database: database}
}

// Database returns the database statements run against.
func (r *DriverRunner) Database() string {
	return r.database
}

// Query executes cypher and collects every record eagerly.
func (r *DriverRunner) Query(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	result, err := neo4j.ExecuteQuery(ctx, r.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(r.database),
	)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0, len(result.Records))
	for _, record := range result.Records {
		rows = append(rows, record.AsMap())
	}
	return rows, nil
}

// Close closes the driver.
func (r *DriverRunner) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// Dial connects to the store described by cfg and picks the database.
//
// Connectivity is verified within cfg.GetProbeTimeout(). When the configured
// database cannot be queried and is not the default "neo4j", the default
// database is tried once. Failures are *kgerr.Error of KindStoreUnavailable.
func Dial(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*DriverRunner, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, kgerr.New("neo4jstore.Dial", kgerr.KindStoreUnavailable, err).
			WithContext(map[string]any{"uri": cfg.URI})
	}

	probeCtx, cancel := context.WithTimeout(ctx, cfg.GetProbeTimeout())
	defer cancel()

	if err := driver.VerifyConnectivity(probeCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, kgerr.New("neo4jstore.Dial", kgerr.KindStoreUnavailable, err).
			WithContext(map[string]any{"uri": cfg.URI})
	}

	database, err := selectDatabase(probeCtx, cfg.GetDatabase(), logger, func(ctx context.Context, db string) error {
		_, err := NewDriverRunner(driver, db).Query(ctx, "RETURN 1 AS ok", nil)
		return err
	})
	if err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}
	return NewDriverRunner(driver, database), nil
}

// selectDatabase returns want when ping succeeds on it, otherwise the
// default database when that one answers.
func selectDatabase(ctx context.Context, want string, logger *slog.Logger, ping func(context.Context, string) error) (string, error) {
	err := ping(ctx, want)
	if err == nil {
		return want, nil
	}
	if want == config.DefaultDatabase {
		return "", kgerr.New("neo4jstore.Dial", kgerr.KindStoreUnavailable, err).
			WithContext(map[string]any{"database": want})
	}

	logger.Warn("database unavailable, using default database",
		"database", want,
		"fallback", config.DefaultDatabase,
		"error", err,
	)
	if fallbackErr := ping(ctx, config.DefaultDatabase); fallbackErr != nil {
		return "", kgerr.New("neo4jstore.Dial", kgerr.KindStoreUnavailable,
			fmt.Errorf("database %q: %v; default database: %w", want, err, fallbackErr))
	}
	return config.DefaultDatabase, nil
}
