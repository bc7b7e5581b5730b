// file: internal/repositories/progress_repository.go
package repositories

import (
	"context"
	"fmt"

	"badgehub/internal/database"
	"badgehub/internal/models"

	"go.uber.org/zap"
)

// progressRepository implements ProgressRepository.
type progressRepository struct {
	*BaseRepository
}

// NewProgressRepository creates a new progress repository.
func NewProgressRepository(db *database.Manager, logger *zap.Logger) ProgressRepository {
	return &progressRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Increment creates-or-increments the (badge, user) counter in a single
// upsert, so two concurrent qualifying assessments never lose an
// increment.
func (r *progressRepository) Increment(ctx context.Context, badgeID, userID int64) (*models.Progress, error) {
	query := `
		INSERT INTO badge_progress (badge_id, user_id, current_qualified_ratings)
		VALUES ($1, $2, 1)
		ON CONFLICT (badge_id, user_id) DO UPDATE
		SET current_qualified_ratings = badge_progress.current_qualified_ratings + 1,
		    updated_at = NOW()
		RETURNING id, badge_id, user_id, current_qualified_ratings, created_at, updated_at`

	var progress models.Progress
	err := r.QueryRowContext(ctx, query, badgeID, userID).Scan(
		&progress.ID, &progress.BadgeID, &progress.UserID,
		&progress.CurrentQualifiedRatings,
		&progress.CreatedAt, &progress.UpdatedAt,
	)
	if err != nil {
		r.GetLogger().Error("failed to increment progress",
			zap.Error(err),
			zap.Int64("badge_id", badgeID),
			zap.Int64("user_id", userID),
		)
		return nil, fmt.Errorf("failed to increment progress: %w", err)
	}

	r.GetLogger().Debug("progress incremented",
		zap.Int64("badge_id", badgeID),
		zap.Int64("user_id", userID),
		zap.Int("current_qualified_ratings", progress.CurrentQualifiedRatings),
	)
	return &progress, nil
}

// Get returns the counter, or nil when the user has no progress yet.
func (r *progressRepository) Get(ctx context.Context, badgeID, userID int64) (*models.Progress, error) {
	query := `
		SELECT id, badge_id, user_id, current_qualified_ratings, created_at, updated_at
		FROM badge_progress
		WHERE badge_id = $1 AND user_id = $2`

	var progress models.Progress
	err := r.QueryRowContext(ctx, query, badgeID, userID).Scan(
		&progress.ID, &progress.BadgeID, &progress.UserID,
		&progress.CurrentQualifiedRatings,
		&progress.CreatedAt, &progress.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &progress, nil
}
