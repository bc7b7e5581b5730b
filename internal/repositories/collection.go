// file: internal/repositories/collection.go
package repositories

import (
	"context"
	"fmt"

	"badgehub/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection.
type Collection struct {
	Badge      BadgeRepository
	Submission SubmissionRepository
	Assessment AssessmentRepository
	Progress   ProgressRepository
	Award      AwardRepository
	Project    ProjectRepository
	User       UserRepository

	db     *database.Manager
	logger *zap.Logger
}

// NewCollection creates a repository collection with all dependencies.
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	return &Collection{
		Badge:      NewBadgeRepository(db, logger),
		Submission: NewSubmissionRepository(db, logger),
		Assessment: NewAssessmentRepository(db, logger),
		Progress:   NewProgressRepository(db, logger),
		Award:      NewAwardRepository(db, logger),
		Project:    NewProjectRepository(db, logger),
		User:       NewUserRepository(db, logger),
		db:         db,
		logger:     logger,
	}, nil
}

// Health verifies the underlying database is reachable.
func (c *Collection) Health(ctx context.Context) error {
	status := c.db.Health(ctx)
	if status.Status != database.StatusHealthy {
		return fmt.Errorf("database unhealthy: %s", status.Status)
	}
	return nil
}

// DB exposes the database manager for transaction-spanning operations.
func (c *Collection) DB() *database.Manager {
	return c.db
}
