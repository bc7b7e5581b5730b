// file: internal/repositories/submission_repository.go
package repositories

import (
	"context"
	"fmt"
	"strings"

	"badgehub/internal/database"
	"badgehub/internal/models"

	"go.uber.org/zap"
)

// submissionRepository implements SubmissionRepository.
type submissionRepository struct {
	*BaseRepository
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *database.Manager, logger *zap.Logger) SubmissionRepository {
	return &submissionRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create persists a new submission.
func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	query := `
		INSERT INTO submissions (badge_id, author_id, content, url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.QueryRowContext(
		ctx, query,
		submission.BadgeID, submission.AuthorID,
		submission.Content, submission.URL,
	).Scan(&submission.ID, &submission.CreatedAt)
	if err != nil {
		r.GetLogger().Error("failed to create submission",
			zap.Error(err),
			zap.Int64("badge_id", submission.BadgeID),
			zap.Int64("author_id", submission.AuthorID),
		)
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// GetByID retrieves a single submission.
func (r *submissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	query := `
		SELECT id, badge_id, author_id, content, url, created_at
		FROM submissions
		WHERE id = $1`

	var s models.Submission
	err := r.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.BadgeID, &s.AuthorID, &s.Content, &s.URL, &s.CreatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &s, nil
}

// ListByBadge returns the badge's submissions, newest first.
func (r *submissionRepository) ListByBadge(ctx context.Context, badgeID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Submission], error) {
	r.NormalizePagination(&params)

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM submissions WHERE badge_id = $1`, badgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	query := `
		SELECT id, badge_id, author_id, content, url, created_at
		FROM submissions
		WHERE badge_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.QueryContext(ctx, query, badgeID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]*models.Submission, 0)
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.BadgeID, &s.AuthorID, &s.Content, &s.URL, &s.CreatedAt); err != nil {
			return nil, err
		}
		submissions = append(submissions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.Submission]{
		Data:       submissions,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

// ListPending returns submissions whose author has not been awarded the
// badge yet. Derived at query time; there is no stored review state.
func (r *submissionRepository) ListPending(ctx context.Context, badgeID int64, excludeAuthorID int64) ([]*models.Submission, error) {
	query := `
		SELECT s.id, s.badge_id, s.author_id, s.content, s.url, s.created_at
		FROM submissions s
		WHERE s.badge_id = $1
		  AND ($2 = 0 OR s.author_id <> $2)
		  AND NOT EXISTS (
			SELECT 1 FROM awards a
			WHERE a.badge_id = s.badge_id AND a.user_id = s.author_id
		  )
		ORDER BY s.created_at ASC`

	rows, err := r.QueryContext(ctx, query, badgeID, excludeAuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]*models.Submission, 0)
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.BadgeID, &s.AuthorID, &s.Content, &s.URL, &s.CreatedAt); err != nil {
			return nil, err
		}
		submissions = append(submissions, &s)
	}
	return submissions, rows.Err()
}

// HasSubmission reports whether the user has applied for the badge.
func (r *submissionRepository) HasSubmission(ctx context.Context, badgeID, authorID int64) (bool, error) {
	var exists bool
	err := r.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE badge_id = $1 AND author_id = $2)`,
		badgeID, authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check submission: %w", err)
	}
	return exists, nil
}

// BadgeIDsWithSubmissionBy returns which of badgeIDs have a submission
// authored by the user.
func (r *submissionRepository) BadgeIDsWithSubmissionBy(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error) {
	query := `
		SELECT DISTINCT badge_id
		FROM submissions
		WHERE author_id = $1 AND badge_id IN (%s)`
	return r.badgeIDSet(ctx, query, userID, badgeIDs)
}

// BadgeIDsWithPendingReview returns which of badgeIDs have at least one
// pending submission authored by someone other than the user.
func (r *submissionRepository) BadgeIDsWithPendingReview(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error) {
	query := `
		SELECT DISTINCT s.badge_id
		FROM submissions s
		WHERE s.author_id <> $1
		  AND s.badge_id IN (%s)
		  AND NOT EXISTS (
			SELECT 1 FROM awards a
			WHERE a.badge_id = s.badge_id AND a.user_id = s.author_id
		  )`
	return r.badgeIDSet(ctx, query, userID, badgeIDs)
}

func (r *submissionRepository) badgeIDSet(ctx context.Context, queryTemplate string, userID int64, badgeIDs []int64) (map[int64]bool, error) {
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

	query := fmt.Sprintf(queryTemplate, strings.Join(placeholders, ", "))
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve submission badge set: %w", err)
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
