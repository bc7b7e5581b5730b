package database

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// HealthStatus reports the outcome of one health check pass.
type HealthStatus struct {
	Status          string                 `json:"status"`
	Timestamp       time.Time              `json:"timestamp"`
	ResponseTime    time.Duration          `json:"response_time"`
	ConnectionCount int                    `json:"connection_count"`
	Errors          []string               `json:"errors,omitempty"`
	Details         map[string]interface{} `json:"details"`
}

// Health check statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusShutdown  = "shutdown"
)

// HealthChecker probes connectivity, pool saturation and access to the
// critical tables. It is safe to call after shutdown; checks become no-ops.
type HealthChecker struct {
	manager *Manager
	logger  *zap.Logger

	mu        sync.RWMutex
	isActive  int32
	lastCheck time.Time
	status    *HealthStatus

	stopCh  chan struct{}
	stopped chan struct{}

	checkInterval   time.Duration
	timeoutDuration time.Duration
	criticalTables  []string
}

// NewHealthChecker builds a checker. Call StartMonitoring to begin
// periodic background checks.
func NewHealthChecker(manager *Manager, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		manager:         manager,
		logger:          logger,
		isActive:        1,
		checkInterval:   30 * time.Second,
		timeoutDuration: 10 * time.Second,
		criticalTables:  []string{"badges", "awards", "badge_progress", "projects"},
		stopCh:          make(chan struct{}),
		stopped:         make(chan struct{}),
	}
}

// Check runs all health probes and caches the result.
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	if atomic.LoadInt32(&hc.isActive) == 0 {
		return &HealthStatus{
			Status:    StatusShutdown,
			Timestamp: time.Now(),
			Errors:    []string{"health checker is shut down"},
			Details:   make(map[string]interface{}),
		}
	}

	start := time.Now()
	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: start,
		Details:   make(map[string]interface{}),
	}

	checkCtx, cancel := context.WithTimeout(ctx, hc.timeoutDuration)
	defer cancel()

	if err := hc.checkConnectivity(checkCtx, status); err != nil {
		status.Errors = append(status.Errors, fmt.Sprintf("connectivity: %v", err))
	}
	hc.checkConnectionPool(status)
	if err := hc.checkTableAccess(checkCtx, status); err != nil {
		status.Errors = append(status.Errors, fmt.Sprintf("table access: %v", err))
	}

	status.ResponseTime = time.Since(start)
	status.Status = hc.determineOverallStatus(status)

	hc.mu.Lock()
	hc.lastCheck = time.Now()
	hc.status = status
	hc.mu.Unlock()

	if status.Status != StatusHealthy {
		hc.logger.Warn("database health degraded",
			zap.String("status", status.Status),
			zap.Strings("errors", status.Errors),
			zap.Duration("response_time", status.ResponseTime),
		)
	}

	return status
}

func (hc *HealthChecker) checkConnectivity(ctx context.Context, status *HealthStatus) error {
	start := time.Now()
	if err := hc.manager.db.PingContext(ctx); err != nil {
		status.Details["ping"] = "failed"
		return err
	}
	status.Details["ping"] = "ok"
	status.Details["ping_duration"] = time.Since(start).String()
	return nil
}

func (hc *HealthChecker) checkConnectionPool(status *HealthStatus) {
	stats := hc.manager.db.Stats()
	status.ConnectionCount = stats.OpenConnections
	status.Details["open_connections"] = stats.OpenConnections
	status.Details["in_use"] = stats.InUse
	status.Details["idle"] = stats.Idle
	status.Details["wait_count"] = stats.WaitCount

	if stats.MaxOpenConnections > 0 {
		utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections)
		status.Details["pool_utilization"] = fmt.Sprintf("%.0f%%", utilization*100)
		if utilization > 0.9 {
			status.Errors = append(status.Errors, "connection pool nearly exhausted")
		}
	}
}

func (hc *HealthChecker) checkTableAccess(ctx context.Context, status *HealthStatus) error {
	for _, table := range hc.criticalTables {
		var exists bool
		query := `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`
		if err := hc.manager.db.QueryRowContext(ctx, query, table).Scan(&exists); err != nil {
			return fmt.Errorf("checking table %q: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("critical table %q missing", table)
		}
	}
	status.Details["critical_tables"] = "ok"
	return nil
}

func (hc *HealthChecker) determineOverallStatus(status *HealthStatus) string {
	switch {
	case len(status.Errors) == 0:
		return StatusHealthy
	case status.Details["ping"] == "ok":
		return StatusDegraded
	default:
		return StatusUnhealthy
	}
}

// StartMonitoring launches the periodic background check loop.
func (hc *HealthChecker) StartMonitoring() {
	go func() {
		defer close(hc.stopped)
		ticker := time.NewTicker(hc.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if atomic.LoadInt32(&hc.isActive) == 1 {
					hc.Check(context.Background())
				}
			case <-hc.stopCh:
				return
			}
		}
	}()
}

// Stop shuts the checker down. Safe to call more than once.
func (hc *HealthChecker) Stop() {
	if !atomic.CompareAndSwapInt32(&hc.isActive, 1, 0) {
		return
	}
	close(hc.stopCh)
}

// GetLastStatus returns the most recent cached check result, if any.
func (hc *HealthChecker) GetLastStatus() *HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.status
}

// IsHealthy reports whether the last check passed.
func (hc *HealthChecker) IsHealthy() bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.status != nil && hc.status.Status == StatusHealthy
}
