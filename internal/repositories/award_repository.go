// file: internal/repositories/award_repository.go
package repositories

import (
	"context"
	"fmt"
	"strings"

	"badgehub/internal/database"
	"badgehub/internal/models"

	"go.uber.org/zap"
)

// awardRepository implements AwardRepository.
type awardRepository struct {
	*BaseRepository
}

// NewAwardRepository creates a new award repository.
func NewAwardRepository(db *database.Manager, logger *zap.Logger) AwardRepository {
	return &awardRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create persists an award unconditionally. Used for non-unique badges,
// which may be awarded to the same user more than once.
func (r *awardRepository) Create(ctx context.Context, award *models.Award) error {
	query := `
		INSERT INTO awards (badge_id, user_id)
		VALUES ($1, $2)
		RETURNING id, awarded_on`

	err := r.QueryRowContext(ctx, query, award.BadgeID, award.UserID).
		Scan(&award.ID, &award.AwardedOn)
	if err != nil {
		r.GetLogger().Error("failed to create award",
			zap.Error(err),
			zap.Int64("badge_id", award.BadgeID),
			zap.Int64("user_id", award.UserID),
		)
		return fmt.Errorf("failed to create award: %w", err)
	}
	return nil
}

// CreateIfAbsent inserts the award unless the user already holds the
// badge. The partial unique index on (badge_id, user_id) makes this safe
// under concurrent award attempts; exactly one of them inserts.
func (r *awardRepository) CreateIfAbsent(ctx context.Context, award *models.Award) (bool, error) {
	query := `
		INSERT INTO awards (badge_id, user_id, unique_hold)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (badge_id, user_id) WHERE unique_hold DO NOTHING
		RETURNING id, awarded_on`

	err := r.QueryRowContext(ctx, query, award.BadgeID, award.UserID).
		Scan(&award.ID, &award.AwardedOn)
	if err != nil {
		if r.IsNotFound(err) {
			// conflict: award already present
			return false, nil
		}
		return false, fmt.Errorf("failed to create award: %w", err)
	}
	return true, nil
}

// Exists reports whether the user holds the badge.
func (r *awardRepository) Exists(ctx context.Context, badgeID, userID int64) (bool, error) {
	var exists bool
	err := r.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM awards WHERE badge_id = $1 AND user_id = $2)`,
		badgeID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check award: %w", err)
	}
	return exists, nil
}

// ListByUser returns the user's awards, newest first.
func (r *awardRepository) ListByUser(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error) {
	return r.list(ctx, "user_id", userID, params)
}

// ListByBadge returns the badge's awards, newest first.
func (r *awardRepository) ListByBadge(ctx context.Context, badgeID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error) {
	return r.list(ctx, "badge_id", badgeID, params)
}

func (r *awardRepository) list(ctx context.Context, column string, id int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error) {
	r.NormalizePagination(&params)

	total, err := r.GetTotalCount(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM awards WHERE %s = $1`, column), id)
	if err != nil {
		return nil, fmt.Errorf("failed to count awards: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, badge_id, user_id, awarded_on
		FROM awards
		WHERE %s = $1
		ORDER BY awarded_on DESC
		LIMIT $2 OFFSET $3`, column)

	rows, err := r.QueryContext(ctx, query, id, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list awards: %w", err)
	}
	defer rows.Close()

	awards := make([]*models.Award, 0)
	for rows.Next() {
		var award models.Award
		if err := rows.Scan(&award.ID, &award.BadgeID, &award.UserID, &award.AwardedOn); err != nil {
			return nil, err
		}
		awards = append(awards, &award)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.Award]{
		Data:       awards,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

// AwardedBadgeIDs returns which of badgeIDs the user holds.
func (r *awardRepository) AwardedBadgeIDs(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(badgeIDs))
	if len(badgeIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(badgeIDs))
	args := make([]interface{}, 0, len(badgeIDs)+1)
	args = append(args, userID)
	for i, id := range badgeIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT badge_id
		FROM awards
		WHERE user_id = $1 AND badge_id IN (%s)`, strings.Join(placeholders, ", "))

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve awarded badges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = true
	}
	return result, rows.Err()
}
