// file: internal/repositories/badge_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"badgehub/internal/database"
	"badgehub/internal/models"

	"go.uber.org/zap"
)

// badgeRepository implements BadgeRepository.
type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(db *database.Manager, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create persists the badge, its logic, rubrics, prerequisites and
// project links atomically. The badge slug is derived from the name and
// suffixed ("name-2", "name-3", ...) until it is free.
func (r *badgeRepository) Create(ctx context.Context, badge *models.Badge) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		slug, err := r.nextFreeSlug(ctx, tx, models.Slugify(badge.Name))
		if err != nil {
			return fmt.Errorf("failed to resolve badge slug: %w", err)
		}
		badge.Slug = slug

		if badge.Logic != nil {
			logicQuery := `
				INSERT INTO badge_logic (min_qualified_adopter_votes, min_qualified_votes, min_rating)
				VALUES ($1, $2, $3)
				RETURNING id`
			if err := tx.QueryRowContext(
				ctx, logicQuery,
				badge.Logic.MinQualifiedAdopterVotes,
				badge.Logic.MinQualifiedVotes,
				badge.Logic.MinRating,
			).Scan(&badge.Logic.ID); err != nil {
				return fmt.Errorf("failed to create badge logic: %w", err)
			}
			badge.LogicID = &badge.Logic.ID
		}

		badgeQuery := `
			INSERT INTO badges (
				name, slug, description, image_url, image_public_id,
				assessment_type, badge_type, is_unique, logic_id, creator_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at, last_update`
		if err := tx.QueryRowContext(
			ctx, badgeQuery,
			badge.Name, badge.Slug, badge.Description,
			badge.ImageURL, badge.ImagePublicID,
			badge.AssessmentType, badge.BadgeType,
			badge.Unique, badge.LogicID, badge.CreatorID,
		).Scan(&badge.ID, &badge.CreatedAt, &badge.LastUpdate); err != nil {
			return fmt.Errorf("failed to create badge: %w", err)
		}

		for _, rubric := range badge.Rubrics {
			rubricQuery := `
				INSERT INTO badge_rubrics (badge_id, question)
				VALUES ($1, $2)
				RETURNING id`
			if err := tx.QueryRowContext(ctx, rubricQuery, badge.ID, rubric.Question).Scan(&rubric.ID); err != nil {
				return fmt.Errorf("failed to create rubric: %w", err)
			}
		}

		for _, prereqID := range badge.Prerequisites {
			prereqQuery := `
				INSERT INTO badge_prerequisites (badge_id, prerequisite_id)
				VALUES ($1, $2)`
			if _, err := tx.ExecContext(ctx, prereqQuery, badge.ID, prereqID); err != nil {
				return fmt.Errorf("failed to link prerequisite %d: %w", prereqID, err)
			}
		}

		for _, projectID := range badge.ProjectIDs {
			linkQuery := `
				INSERT INTO badge_projects (badge_id, project_id)
				VALUES ($1, $2)
				ON CONFLICT (badge_id, project_id) DO NOTHING`
			if _, err := tx.ExecContext(ctx, linkQuery, badge.ID, projectID); err != nil {
				return fmt.Errorf("failed to link project %d: %w", projectID, err)
			}
		}

		r.GetLogger().Info("badge created",
			zap.Int64("badge_id", badge.ID),
			zap.String("slug", badge.Slug),
			zap.String("assessment_type", badge.AssessmentType),
			zap.String("badge_type", badge.BadgeType),
		)
		return nil
	})
}

// nextFreeSlug finds the first unused slug in base, base-2, base-3, ...
func (r *badgeRepository) nextFreeSlug(ctx context.Context, tx *sql.Tx, base string) (string, error) {
	slug := base
	for count := 2; ; count++ {
		var exists bool
		if err := tx.QueryRowContext(
			ctx, `SELECT EXISTS (SELECT 1 FROM badges WHERE slug = $1)`, slug,
		).Scan(&exists); err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, count)
	}
}

const badgeColumns = `
	b.id, b.name, b.slug, b.description, b.image_url, b.image_public_id,
	b.assessment_type, b.badge_type, b.is_unique, b.logic_id, b.creator_id,
	b.created_at, b.last_update`

func scanBadge(scanner interface{ Scan(...interface{}) error }) (*models.Badge, error) {
	var badge models.Badge
	err := scanner.Scan(
		&badge.ID, &badge.Name, &badge.Slug, &badge.Description,
		&badge.ImageURL, &badge.ImagePublicID,
		&badge.AssessmentType, &badge.BadgeType,
		&badge.Unique, &badge.LogicID, &badge.CreatorID,
		&badge.CreatedAt, &badge.LastUpdate,
	)
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

// GetByID retrieves a badge with its relations loaded.
func (r *badgeRepository) GetByID(ctx context.Context, id int64) (*models.Badge, error) {
	query := fmt.Sprintf(`SELECT %s FROM badges b WHERE b.id = $1`, badgeColumns)
	badge, err := scanBadge(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get badge by id: %w", err)
	}
	if err := r.loadRelations(ctx, badge); err != nil {
		return nil, err
	}
	return badge, nil
}

// GetBySlug retrieves a badge by slug with its relations loaded.
func (r *badgeRepository) GetBySlug(ctx context.Context, slug string) (*models.Badge, error) {
	query := fmt.Sprintf(`SELECT %s FROM badges b WHERE b.slug = $1`, badgeColumns)
	badge, err := scanBadge(r.QueryRowContext(ctx, query, slug))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get badge by slug: %w", err)
	}
	if err := r.loadRelations(ctx, badge); err != nil {
		return nil, err
	}
	return badge, nil
}

func (r *badgeRepository) loadRelations(ctx context.Context, badge *models.Badge) error {
	if badge.LogicID != nil {
		logic, err := r.GetLogic(ctx, *badge.LogicID)
		if err != nil {
			return err
		}
		badge.Logic = logic
	}

	rubrics, err := r.GetRubrics(ctx, badge.ID)
	if err != nil {
		return err
	}
	badge.Rubrics = rubrics

	prereqs, err := r.GetPrerequisites(ctx, badge.ID)
	if err != nil {
		return err
	}
	badge.Prerequisites = prereqs

	projectIDs, err := r.GetProjectIDs(ctx, badge.ID)
	if err != nil {
		return err
	}
	badge.ProjectIDs = projectIDs
	return nil
}

// Update updates the badge's mutable fields. Slug and classification are
// fixed once assigned.
func (r *badgeRepository) Update(ctx context.Context, badge *models.Badge) error {
	query := `
		UPDATE badges
		SET name = $2, description = $3, image_url = $4, image_public_id = $5,
		    is_unique = $6, last_update = NOW()
		WHERE id = $1
		RETURNING last_update`
	err := r.QueryRowContext(
		ctx, query,
		badge.ID, badge.Name, badge.Description,
		badge.ImageURL, badge.ImagePublicID, badge.Unique,
	).Scan(&badge.LastUpdate)
	if err != nil {
		if r.IsNotFound(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("failed to update badge: %w", err)
	}
	return nil
}

// List returns badges ordered by creation time, newest first.
func (r *badgeRepository) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Badge], error) {
	r.NormalizePagination(&params)

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM badges`)
	if err != nil {
		return nil, fmt.Errorf("failed to count badges: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM badges b
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2`, badgeColumns)
	rows, err := r.QueryContext(ctx, query, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	badges, err := collectBadges(rows)
	if err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.Badge]{
		Data:       badges,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

func collectBadges(rows *sql.Rows) ([]*models.Badge, error) {
	badges := make([]*models.Badge, 0)
	for rows.Next() {
		badge, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, badge)
	}
	return badges, rows.Err()
}

// ===============================
// PROJECT ASSOCIATION
// ===============================

// ListByProject returns the project's badges matching the classification
// filter, relations loaded.
func (r *badgeRepository) ListByProject(ctx context.Context, projectID int64, filter models.BadgeFilter) ([]*models.Badge, error) {
	assessmentTypes, badgeTypes := filter.ClassificationPairs()
	if len(assessmentTypes) == 0 {
		return []*models.Badge{}, nil
	}

	// Each (assessment_type, badge_type) pair is matched positionally.
	var pairs []string
	args := []interface{}{projectID}
	argIndex := 2
	for i := range assessmentTypes {
		pairs = append(pairs, fmt.Sprintf("(b.assessment_type = $%d AND b.badge_type = $%d)", argIndex, argIndex+1))
		args = append(args, assessmentTypes[i], badgeTypes[i])
		argIndex += 2
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM badges b
		JOIN badge_projects bp ON bp.badge_id = b.id
		WHERE bp.project_id = $1 AND (%s)
		ORDER BY b.created_at ASC`, badgeColumns, strings.Join(pairs, " OR "))

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list project badges: %w", err)
	}
	defer rows.Close()

	badges, err := collectBadges(rows)
	if err != nil {
		return nil, err
	}
	for _, badge := range badges {
		if err := r.loadRelations(ctx, badge); err != nil {
			return nil, err
		}
	}
	return badges, nil
}

// AttachToProject links the badge to a project. Idempotent.
func (r *badgeRepository) AttachToProject(ctx context.Context, badgeID, projectID int64) error {
	query := `
		INSERT INTO badge_projects (badge_id, project_id)
		VALUES ($1, $2)
		ON CONFLICT (badge_id, project_id) DO NOTHING`
	if _, err := r.ExecContext(ctx, query, badgeID, projectID); err != nil {
		return fmt.Errorf("failed to attach badge to project: %w", err)
	}
	return nil
}

// GetProjectIDs returns the ids of projects the badge applies to.
func (r *badgeRepository) GetProjectIDs(ctx context.Context, badgeID int64) ([]int64, error) {
	query := `SELECT project_id FROM badge_projects WHERE badge_id = $1 ORDER BY project_id`
	rows, err := r.QueryContext(ctx, query, badgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get badge projects: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ===============================
// RELATIONS
// ===============================

// GetLogic retrieves a badge's threshold configuration.
func (r *badgeRepository) GetLogic(ctx context.Context, logicID int64) (*models.Logic, error) {
	query := `
		SELECT id, min_qualified_adopter_votes, min_qualified_votes, min_rating
		FROM badge_logic
		WHERE id = $1`
	var logic models.Logic
	err := r.QueryRowContext(ctx, query, logicID).Scan(
		&logic.ID,
		&logic.MinQualifiedAdopterVotes,
		&logic.MinQualifiedVotes,
		&logic.MinRating,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get badge logic: %w", err)
	}
	return &logic, nil
}

// GetRubrics returns the badge's evaluation criteria in creation order.
func (r *badgeRepository) GetRubrics(ctx context.Context, badgeID int64) ([]*models.Rubric, error) {
	query := `SELECT id, question FROM badge_rubrics WHERE badge_id = $1 ORDER BY id`
	rows, err := r.QueryContext(ctx, query, badgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rubrics: %w", err)
	}
	defer rows.Close()

	rubrics := make([]*models.Rubric, 0)
	for rows.Next() {
		var rubric models.Rubric
		if err := rows.Scan(&rubric.ID, &rubric.Question); err != nil {
			return nil, err
		}
		rubrics = append(rubrics, &rubric)
	}
	return rubrics, rows.Err()
}

// CountRubrics returns the number of rubrics attached to the badge.
func (r *badgeRepository) CountRubrics(ctx context.Context, badgeID int64) (int, error) {
	var count int
	err := r.QueryRowContext(ctx, `SELECT COUNT(*) FROM badge_rubrics WHERE badge_id = $1`, badgeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rubrics: %w", err)
	}
	return count, nil
}

// GetPrerequisites returns the ids of badges that must be awarded first.
func (r *badgeRepository) GetPrerequisites(ctx context.Context, badgeID int64) ([]int64, error) {
	query := `SELECT prerequisite_id FROM badge_prerequisites WHERE badge_id = $1 ORDER BY prerequisite_id`
	rows, err := r.QueryContext(ctx, query, badgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prerequisites: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
