// file: internal/repositories/assessment_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"badgehub/internal/database"
	"badgehub/internal/models"

	"go.uber.org/zap"
)

// assessmentRepository implements AssessmentRepository.
type assessmentRepository struct {
	*BaseRepository
}

// NewAssessmentRepository creates a new assessment repository.
func NewAssessmentRepository(db *database.Manager, logger *zap.Logger) AssessmentRepository {
	return &assessmentRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// ASSESSMENTS
// ===============================

// Create persists a new assessment.
func (r *assessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	query := `
		INSERT INTO assessments (
			badge_id, assessor_id, assessed_id, comment, submission_id,
			final_rating, completed
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.QueryRowContext(
		ctx, query,
		assessment.BadgeID, assessment.AssessorID, assessment.AssessedID,
		assessment.Comment, assessment.SubmissionID,
		assessment.FinalRating, assessment.Completed,
	).Scan(&assessment.ID, &assessment.CreatedAt)

	if err != nil {
		r.GetLogger().Error("failed to create assessment",
			zap.Error(err),
			zap.Int64("badge_id", assessment.BadgeID),
			zap.Int64("assessor_id", assessment.AssessorID),
		)
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

// GetByID retrieves a single assessment.
func (r *assessmentRepository) GetByID(ctx context.Context, id int64) (*models.Assessment, error) {
	query := `
		SELECT id, badge_id, assessor_id, assessed_id, comment, submission_id,
		       final_rating, completed, created_at
		FROM assessments
		WHERE id = $1`

	var a models.Assessment
	err := r.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.BadgeID, &a.AssessorID, &a.AssessedID,
		&a.Comment, &a.SubmissionID,
		&a.FinalRating, &a.Completed, &a.CreatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return &a, nil
}

// ListByAssessed returns all assessments of a user for a badge, oldest first.
func (r *assessmentRepository) ListByAssessed(ctx context.Context, badgeID, assessedID int64) ([]*models.Assessment, error) {
	query := `
		SELECT id, badge_id, assessor_id, assessed_id, comment, submission_id,
		       final_rating, completed, created_at
		FROM assessments
		WHERE badge_id = $1 AND assessed_id = $2
		ORDER BY created_at ASC`

	rows, err := r.QueryContext(ctx, query, badgeID, assessedID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	assessments := make([]*models.Assessment, 0)
	for rows.Next() {
		var a models.Assessment
		if err := rows.Scan(
			&a.ID, &a.BadgeID, &a.AssessorID, &a.AssessedID,
			&a.Comment, &a.SubmissionID,
			&a.FinalRating, &a.Completed, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		assessments = append(assessments, &a)
	}
	return assessments, rows.Err()
}

// ===============================
// RATINGS
// ===============================

// CreateRating appends a rating. The unique (assessment_id, rubric_id)
// constraint rejects a second rating for the same rubric.
func (r *assessmentRepository) CreateRating(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO assessment_ratings (assessment_id, rubric_id, score)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.QueryRowContext(
		ctx, query,
		rating.AssessmentID, rating.RubricID, rating.Score,
	).Scan(&rating.ID, &rating.CreatedAt)

	if err != nil {
		r.GetLogger().Error("failed to create rating",
			zap.Error(err),
			zap.Int64("assessment_id", rating.AssessmentID),
			zap.Int64("rubric_id", rating.RubricID),
		)
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

// GetRatings returns an assessment's ratings, oldest first.
func (r *assessmentRepository) GetRatings(ctx context.Context, assessmentID int64) ([]*models.Rating, error) {
	query := `
		SELECT id, assessment_id, rubric_id, score, created_at
		FROM assessment_ratings
		WHERE assessment_id = $1
		ORDER BY created_at ASC`

	rows, err := r.QueryContext(ctx, query, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]*models.Rating, 0)
	for rows.Next() {
		var rating models.Rating
		if err := rows.Scan(
			&rating.ID, &rating.AssessmentID, &rating.RubricID,
			&rating.Score, &rating.CreatedAt,
		); err != nil {
			return nil, err
		}
		ratings = append(ratings, &rating)
	}
	return ratings, rows.Err()
}

// CountRatings returns how many ratings the assessment has received.
func (r *assessmentRepository) CountRatings(ctx context.Context, assessmentID int64) (int, error) {
	var count int
	err := r.QueryRowContext(
		ctx, `SELECT COUNT(*) FROM assessment_ratings WHERE assessment_id = $1`, assessmentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ratings: %w", err)
	}
	return count, nil
}

// HasRubricRating reports whether the assessment already has a rating for
// the rubric.
func (r *assessmentRepository) HasRubricRating(ctx context.Context, assessmentID, rubricID int64) (bool, error) {
	var exists bool
	err := r.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM assessment_ratings WHERE assessment_id = $1 AND rubric_id = $2)`,
		assessmentID, rubricID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check rubric rating: %w", err)
	}
	return exists, nil
}

// ===============================
// AGGREGATES
// ===============================

// UpdateFinalRating stores the recomputed mean score.
func (r *assessmentRepository) UpdateFinalRating(ctx context.Context, assessmentID int64, finalRating float64) error {
	result, err := r.ExecContext(
		ctx, `UPDATE assessments SET final_rating = $2 WHERE id = $1`,
		assessmentID, finalRating,
	)
	if err != nil {
		return fmt.Errorf("failed to update final rating: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkCompleted flips the completed flag, reporting whether this call did
// the flip. The WHERE guard makes the transition happen exactly once even
// under concurrent triggers.
func (r *assessmentRepository) MarkCompleted(ctx context.Context, assessmentID int64) (bool, error) {
	result, err := r.ExecContext(
		ctx, `UPDATE assessments SET completed = TRUE WHERE id = $1 AND completed = FALSE`,
		assessmentID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark assessment completed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AverageFinalRating returns the mean final rating across the user's
// completed assessments for the badge, and how many were averaged.
func (r *assessmentRepository) AverageFinalRating(ctx context.Context, badgeID, assessedID int64) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(final_rating), 0), COUNT(*)
		FROM assessments
		WHERE badge_id = $1 AND assessed_id = $2 AND completed = TRUE`

	var avg float64
	var count int
	if err := r.QueryRowContext(ctx, query, badgeID, assessedID).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("failed to average final ratings: %w", err)
	}
	return avg, count, nil
}
