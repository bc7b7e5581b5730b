// file: internal/repositories/project_repository.go
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

// projectRepository implements ProjectRepository.
type projectRepository struct {
	*BaseRepository
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.Manager, logger *zap.Logger) ProjectRepository {
	return &projectRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// PROJECTS
// ===============================

// Create persists a new project, suffixing the slug until it is free.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		base := models.Slugify(project.Name)
		slug := base
		for count := 2; ; count++ {
			var exists bool
			if err := tx.QueryRowContext(
				ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE slug = $1)`, slug,
			).Scan(&exists); err != nil {
				return fmt.Errorf("failed to resolve project slug: %w", err)
			}
			if !exists {
				break
			}
			slug = fmt.Sprintf("%s-%d", base, count)
		}
		project.Slug = slug

		query := `
			INSERT INTO projects (
				name, slug, category, short_description, long_description,
				under_development, not_listed, archived
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at`
		if err := tx.QueryRowContext(
			ctx, query,
			project.Name, project.Slug, project.Category,
			project.ShortDescription, project.LongDescription,
			project.UnderDevelopment, project.NotListed, project.Archived,
		).Scan(&project.ID, &project.CreatedAt); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		r.GetLogger().Info("project created",
			zap.Int64("project_id", project.ID),
			zap.String("slug", project.Slug),
			zap.String("category", project.Category),
		)
		return nil
	})
}

const projectColumns = `
	id, name, slug, category, short_description, long_description,
	under_development, not_listed, archived, created_at`

func scanProject(scanner interface{ Scan(...interface{}) error }) (*models.Project, error) {
	var p models.Project
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Category,
		&p.ShortDescription, &p.LongDescription,
		&p.UnderDevelopment, &p.NotListed, &p.Archived,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a project.
func (r *projectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1`, projectColumns)
	project, err := scanProject(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// GetBySlug retrieves a project by slug.
func (r *projectRepository) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE slug = $1`, projectColumns)
	project, err := scanProject(r.QueryRowContext(ctx, query, slug))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project by slug: %w", err)
	}
	return project, nil
}

// List returns listed, non-archived projects, newest first.
func (r *projectRepository) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Project], error) {
	r.NormalizePagination(&params)

	const where = `WHERE not_listed = FALSE AND archived = FALSE`
	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM projects `+where)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM projects
		%s
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, projectColumns, where)

	rows, err := r.QueryContext(ctx, query, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.Project]{
		Data:       projects,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

// ===============================
// PARTICIPATIONS
// ===============================

// CreateParticipation adds a user to a project. The partial unique index
// on active rows rejects joining twice without leaving first.
func (r *projectRepository) CreateParticipation(ctx context.Context, participation *models.Participation) error {
	query := `
		INSERT INTO participations (user_id, project_id, organizing, adopter)
		VALUES ($1, $2, $3, $4)
		RETURNING id, joined_on`

	err := r.QueryRowContext(
		ctx, query,
		participation.UserID, participation.ProjectID,
		participation.Organizing, participation.Adopter,
	).Scan(&participation.ID, &participation.JoinedOn)
	if err != nil {
		r.GetLogger().Error("failed to create participation",
			zap.Error(err),
			zap.Int64("user_id", participation.UserID),
			zap.Int64("project_id", participation.ProjectID),
		)
		return fmt.Errorf("failed to create participation: %w", err)
	}
	return nil
}

// GetActiveParticipation returns the user's current membership in the
// project, or nil when they are not an active member.
func (r *projectRepository) GetActiveParticipation(ctx context.Context, projectID, userID int64) (*models.Participation, error) {
	query := `
		SELECT id, user_id, project_id, organizing, adopter, joined_on, left_on
		FROM participations
		WHERE project_id = $1 AND user_id = $2 AND left_on IS NULL`

	var p models.Participation
	err := r.QueryRowContext(ctx, query, projectID, userID).Scan(
		&p.ID, &p.UserID, &p.ProjectID,
		&p.Organizing, &p.Adopter, &p.JoinedOn, &p.LeftOn,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get participation: %w", err)
	}
	return &p, nil
}

// LeaveProject stamps left_on on the active participation. The row stays
// for history.
func (r *projectRepository) LeaveProject(ctx context.Context, projectID, userID int64) error {
	result, err := r.ExecContext(
		ctx,
		`UPDATE participations SET left_on = NOW() WHERE project_id = $1 AND user_id = $2 AND left_on IS NULL`,
		projectID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to leave project: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListPeers returns the active, non-deleted members of a project.
func (r *projectRepository) ListPeers(ctx context.Context, projectID int64, excludeUserID int64) ([]*models.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.display_name, u.bio, u.deleted,
		       u.created_at, u.updated_at
		FROM users u
		JOIN participations p ON p.user_id = u.id
		WHERE p.project_id = $1
		  AND p.left_on IS NULL
		  AND u.deleted = FALSE
		  AND ($2 = 0 OR u.id <> $2)
		ORDER BY p.joined_on ASC`

	rows, err := r.QueryContext(ctx, query, projectID, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list peers: %w", err)
	}
	defer rows.Close()

	peers := make([]*models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.DisplayName, &u.Bio,
			&u.Deleted, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		peers = append(peers, &u)
	}
	return peers, rows.Err()
}

// IsActivePeerInAny reports whether the user holds an active
// participation in any of the given projects. This is the narrow
// membership check the award path depends on.
func (r *projectRepository) IsActivePeerInAny(ctx context.Context, userID int64, projectIDs []int64) (bool, error) {
	if len(projectIDs) == 0 {
		return false, nil
	}

	placeholders := make([]string, len(projectIDs))
	args := make([]interface{}, 0, len(projectIDs)+1)
	args = append(args, userID)
	for i, id := range projectIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM participations
			WHERE user_id = $1 AND left_on IS NULL AND project_id IN (%s)
		)`, strings.Join(placeholders, ", "))

	var exists bool
	if err := r.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check peer membership: %w", err)
	}
	return exists, nil
}

// ===============================
// TASKS
// ===============================

// CreateTask adds a task to a project.
func (r *projectRepository) CreateTask(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (project_id, title, listed, deleted)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.QueryRowContext(
		ctx, query,
		task.ProjectID, task.Title, task.Listed, task.Deleted,
	).Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetTask retrieves a single task.
func (r *projectRepository) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	query := `
		SELECT id, project_id, title, listed, deleted, created_at
		FROM tasks
		WHERE id = $1`

	var t models.Task
	err := r.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Listed, &t.Deleted, &t.CreatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// ListTasks returns the project's listed, non-deleted tasks.
func (r *projectRepository) ListTasks(ctx context.Context, projectID int64) ([]*models.Task, error) {
	query := `
		SELECT id, project_id, title, listed, deleted, created_at
		FROM tasks
		WHERE project_id = $1 AND listed = TRUE AND deleted = FALSE
		ORDER BY id ASC`

	rows, err := r.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Listed, &t.Deleted, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// SetTaskCompletion records a check or uncheck. Checking inserts a fresh
// completion row; unchecking stamps unchecked_on on the current one.
func (r *projectRepository) SetTaskCompletion(ctx context.Context, taskID, userID int64, checked bool, url *string) error {
	if checked {
		query := `
			INSERT INTO task_completions (task_id, user_id, url)
			SELECT $1, $2, $3
			WHERE NOT EXISTS (
				SELECT 1 FROM task_completions
				WHERE task_id = $1 AND user_id = $2 AND unchecked_on IS NULL
			)`
		if _, err := r.ExecContext(ctx, query, taskID, userID, url); err != nil {
			return fmt.Errorf("failed to check task: %w", err)
		}
		return nil
	}

	query := `
		UPDATE task_completions
		SET unchecked_on = NOW()
		WHERE task_id = $1 AND user_id = $2 AND unchecked_on IS NULL`
	if _, err := r.ExecContext(ctx, query, taskID, userID); err != nil {
		return fmt.Errorf("failed to uncheck task: %w", err)
	}
	return nil
}

// AllListedTasksCompleted reports whether the user has an active check on
// every listed, non-deleted task of the project. Projects without tasks
// never count as completed.
func (r *projectRepository) AllListedTasksCompleted(ctx context.Context, projectID, userID int64) (bool, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(tc.id) AS checked
		FROM tasks t
		LEFT JOIN task_completions tc
			ON tc.task_id = t.id AND tc.user_id = $2 AND tc.unchecked_on IS NULL
		WHERE t.project_id = $1 AND t.listed = TRUE AND t.deleted = FALSE`

	var total, checked int
	if err := r.QueryRowContext(ctx, query, projectID, userID).Scan(&total, &checked); err != nil {
		return false, fmt.Errorf("failed to check task completion: %w", err)
	}
	return total > 0 && total == checked, nil
}
