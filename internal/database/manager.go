package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"badgehub/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Manager owns the database connection pool and the instrumentation
// (query metrics, health checks) layered on top of it.
type Manager struct {
	db      *sql.DB
	logger  *zap.Logger
	metrics *Metrics
	health  *HealthChecker
	config  *config.DatabaseConfig
}

// NewManager opens the connection pool and wires metrics and health checking.
func NewManager(cfg *config.DatabaseConfig, logger *zap.Logger) (*Manager, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	configureConnectionPool(db, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	manager := &Manager{
		db:     db,
		logger: logger,
		config: cfg,
	}

	if cfg.EnableMetrics {
		manager.metrics = NewMetrics(db, logger)
	}
	manager.health = NewHealthChecker(manager, logger)

	logger.Info("database manager initialized",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
	)

	return manager, nil
}

func configureConnectionPool(db *sql.DB, cfg *config.DatabaseConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

// DB exposes the raw pool for callers that need it directly.
func (m *Manager) DB() *sql.DB {
	return m.db
}

// Migrate runs pending schema migrations. A separate connection is used
// so the migration advisory lock never competes with the main pool.
func (m *Manager) Migrate(migrationsPath string) error {
	migrationDB, err := sql.Open("postgres", m.config.URL)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer migrationDB.Close()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres", driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	version, dirty, _ := migrator.Version()
	if dirty {
		m.logger.Warn("database is in dirty migration state, forcing version",
			zap.Uint("version", version))
		if err := migrator.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force migration version %d: %w", version, err)
		}
	}

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, _ := migrator.Version()
	m.logger.Info("migrations complete", zap.Uint("version", newVersion))
	return nil
}

// ExecContext executes a statement with metrics and slow-query logging.
func (m *Manager) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := m.db.ExecContext(ctx, query, args...)
	duration := time.Since(start)

	if m.metrics != nil {
		m.metrics.RecordQuery("exec", duration, err)
	}
	if duration > m.config.SlowQueryThreshold {
		m.logger.Warn("slow query detected",
			zap.String("query", truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}
	return result, err
}

// QueryContext runs a query with metrics and slow-query logging.
func (m *Manager) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := m.db.QueryContext(ctx, query, args...)
	duration := time.Since(start)

	if m.metrics != nil {
		m.metrics.RecordQuery("query", duration, err)
	}
	if duration > m.config.SlowQueryThreshold {
		m.logger.Warn("slow query detected",
			zap.String("query", truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}
	return rows, err
}

// QueryRowContext runs a single-row query with metrics.
func (m *Manager) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := m.db.QueryRowContext(ctx, query, args...)
	duration := time.Since(start)

	if m.metrics != nil {
		m.metrics.RecordQuery("query_row", duration, nil)
	}
	if duration > m.config.SlowQueryThreshold {
		m.logger.Warn("slow query detected",
			zap.String("query", truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}
	return row
}

// BeginTx starts a transaction on the managed pool.
func (m *Manager) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := m.db.BeginTx(ctx, opts)
	if m.metrics != nil {
		m.metrics.RecordQuery("begin_tx", time.Since(start), err)
	}
	return tx, err
}

// Health runs the full health check suite.
func (m *Manager) Health(ctx context.Context) *HealthStatus {
	return m.health.Check(ctx)
}

// Metrics returns a point-in-time snapshot of query metrics, or nil
// when metrics collection is disabled.
func (m *Manager) Metrics() *MetricsSnapshot {
	if m.metrics == nil {
		return nil
	}
	return m.metrics.Snapshot()
}

// Stats returns the raw sql.DB pool statistics.
func (m *Manager) Stats() sql.DBStats {
	return m.db.Stats()
}

// Close stops background collectors and closes the pool.
func (m *Manager) Close() error {
	m.health.Stop()
	if m.metrics != nil {
		m.metrics.Stop()
	}
	if err := m.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	m.logger.Info("database connections closed")
	return nil
}

func truncateQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	if len(query) > 200 {
		return query[:200] + "..."
	}
	return query
}
