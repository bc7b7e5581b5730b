package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"badgehub/internal/config"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// DB is the global database manager instance.
var DB *Manager

var initMutex sync.Mutex

// InitDB initializes the global database manager, runs migrations and
// waits for the database to become healthy before returning.
func InitDB(cfg *config.Config, logger *zap.Logger) error {
	initMutex.Lock()
	defer initMutex.Unlock()

	if DB != nil {
		logger.Info("database manager already initialized")
		return nil
	}

	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	manager, err := NewManager(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	migrationsPath := determineMigrationsPath(cfg.Database.MigrationsPath)
	logger.Info("using migrations path", zap.String("path", migrationsPath))

	if err := manager.Migrate(migrationsPath); err != nil {
		manager.Close()
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout(cfg.Server.Environment))
	defer cancel()
	if err := waitForHealth(ctx, manager, &cfg.Database, logger); err != nil {
		manager.Close()
		return fmt.Errorf("database failed to become healthy: %w", err)
	}

	manager.health.StartMonitoring()
	DB = manager

	logger.Info("database initialized",
		zap.String("environment", cfg.Server.Environment),
		zap.Int("open_connections", manager.Stats().OpenConnections),
	)
	return nil
}

// waitForHealth polls the health checker with exponential backoff until
// the database reports healthy or the context expires.
func waitForHealth(ctx context.Context, manager *Manager, cfg *config.DatabaseConfig, logger *zap.Logger) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.RetryBackoff
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = 0 // context carries the deadline

	var attempts int
	operation := func() error {
		attempts++
		status := manager.Health(ctx)
		if status.Status == StatusHealthy {
			return nil
		}
		logger.Warn("waiting for database health",
			zap.Int("attempt", attempts),
			zap.String("status", status.Status),
			zap.Strings("errors", status.Errors),
		)
		return fmt.Errorf("database status: %s", status.Status)
	}

	wrapped := backoff.WithContext(policy, ctx)
	if cfg.MaxRetryAttempts > 0 {
		return backoff.Retry(operation, backoff.WithMaxRetries(wrapped, uint64(cfg.MaxRetryAttempts)))
	}
	return backoff.Retry(operation, wrapped)
}

// determineMigrationsPath resolves the migrations directory, falling
// back to well-known locations when the configured one is absent.
func determineMigrationsPath(configPath string) string {
	candidates := []string{configPath, "migrations", "./migrations"}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, "migrations"))
	}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}
	return configPath
}

func healthTimeout(environment string) time.Duration {
	if environment == "production" {
		return 2 * time.Minute
	}
	return 30 * time.Second
}

// GetDB returns the global manager.
func GetDB() *Manager {
	return DB
}

// Close shuts down the global manager.
func Close() error {
	initMutex.Lock()
	defer initMutex.Unlock()
	if DB == nil {
		return nil
	}
	err := DB.Close()
	DB = nil
	return err
}

// Health runs a health check against the global manager.
func Health(ctx context.Context) *HealthStatus {
	if DB == nil {
		return &HealthStatus{
			Status:    StatusUnhealthy,
			Timestamp: time.Now(),
			Errors:    []string{"database not initialized"},
			Details:   make(map[string]interface{}),
		}
	}
	return DB.Health(ctx)
}

// GetMetrics returns the global manager's metrics snapshot.
func GetMetrics() *MetricsSnapshot {
	if DB == nil {
		return nil
	}
	return DB.Metrics()
}

// ExecuteTransaction runs fn inside a transaction, rolling back on
// error or panic.
func ExecuteTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsConnected reports whether the global pool answers a ping.
func IsConnected(ctx context.Context) bool {
	if DB == nil {
		return false
	}
	return DB.DB().PingContext(ctx) == nil
}
