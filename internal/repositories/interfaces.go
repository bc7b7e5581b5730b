// file: internal/repositories/interfaces.go
package repositories

import (
	"context"

	"badgehub/internal/models"
)

// ===============================
// CORE REPOSITORY INTERFACES
// ===============================

// BadgeRepository defines the contract for badge data operations.
type BadgeRepository interface {
	// Create persists the badge with its logic, rubrics, prerequisites and
	// project links in one transaction. Slug collisions are resolved by
	// suffixing before insert.
	Create(ctx context.Context, badge *models.Badge) error
	GetByID(ctx context.Context, id int64) (*models.Badge, error)
	GetBySlug(ctx context.Context, slug string) (*models.Badge, error)
	Update(ctx context.Context, badge *models.Badge) error
	List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Badge], error)

	// ListByProject returns the project's badges matching the
	// classification filter.
	ListByProject(ctx context.Context, projectID int64, filter models.BadgeFilter) ([]*models.Badge, error)
	AttachToProject(ctx context.Context, badgeID, projectID int64) error
	GetProjectIDs(ctx context.Context, badgeID int64) ([]int64, error)

	// Relations
	GetLogic(ctx context.Context, logicID int64) (*models.Logic, error)
	GetRubrics(ctx context.Context, badgeID int64) ([]*models.Rubric, error)
	CountRubrics(ctx context.Context, badgeID int64) (int, error)
	GetPrerequisites(ctx context.Context, badgeID int64) ([]int64, error)
}

// SubmissionRepository defines the contract for badge submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	ListByBadge(ctx context.Context, badgeID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Submission], error)

	// ListPending returns submissions whose author has not been awarded
	// the badge yet. excludeAuthorID removes the viewing user's own
	// submissions; pass 0 to keep them.
	ListPending(ctx context.Context, badgeID int64, excludeAuthorID int64) ([]*models.Submission, error)
	HasSubmission(ctx context.Context, badgeID, authorID int64) (bool, error)

	// BadgeIDsWithSubmissionBy returns which of badgeIDs have a submission
	// authored by the user.
	BadgeIDsWithSubmissionBy(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error)

	// BadgeIDsWithPendingReview returns which of badgeIDs have at least one
	// pending submission authored by someone other than the user.
	BadgeIDsWithPendingReview(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error)
}

// AssessmentRepository defines the contract for assessments and their
// ratings.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *models.Assessment) error
	GetByID(ctx context.Context, id int64) (*models.Assessment, error)
	ListByAssessed(ctx context.Context, badgeID, assessedID int64) ([]*models.Assessment, error)

	// Ratings
	CreateRating(ctx context.Context, rating *models.Rating) error
	GetRatings(ctx context.Context, assessmentID int64) ([]*models.Rating, error)
	CountRatings(ctx context.Context, assessmentID int64) (int, error)
	HasRubricRating(ctx context.Context, assessmentID, rubricID int64) (bool, error)

	// Aggregates
	UpdateFinalRating(ctx context.Context, assessmentID int64, finalRating float64) error

	// MarkCompleted flips the completed flag and reports whether this call
	// was the one that flipped it.
	MarkCompleted(ctx context.Context, assessmentID int64) (bool, error)

	// AverageFinalRating returns the mean final rating across the user's
	// completed assessments for the badge, and how many were averaged.
	AverageFinalRating(ctx context.Context, badgeID, assessedID int64) (float64, int, error)
}

// ProgressRepository defines the contract for per-(badge, user) progress
// counters.
type ProgressRepository interface {
	// Increment atomically creates-or-increments the counter and returns
	// the updated row.
	Increment(ctx context.Context, badgeID, userID int64) (*models.Progress, error)

	// Get returns the counter, or nil when the user has no progress yet.
	Get(ctx context.Context, badgeID, userID int64) (*models.Progress, error)
}

// AwardRepository defines the contract for issued awards.
type AwardRepository interface {
	Create(ctx context.Context, award *models.Award) error

	// CreateIfAbsent inserts the award unless one already exists for the
	// (badge, user) pair. Returns true when a row was inserted.
	CreateIfAbsent(ctx context.Context, award *models.Award) (bool, error)

	Exists(ctx context.Context, badgeID, userID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error)
	ListByBadge(ctx context.Context, badgeID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error)

	// AwardedBadgeIDs returns which of badgeIDs the user holds.
	AwardedBadgeIDs(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error)
}

// ProjectRepository defines the contract for projects, participations and
// task completion tracking.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	GetBySlug(ctx context.Context, slug string) (*models.Project, error)
	List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Project], error)

	// Participations
	CreateParticipation(ctx context.Context, participation *models.Participation) error
	GetActiveParticipation(ctx context.Context, projectID, userID int64) (*models.Participation, error)
	LeaveProject(ctx context.Context, projectID, userID int64) error
	ListPeers(ctx context.Context, projectID int64, excludeUserID int64) ([]*models.User, error)

	// IsActivePeerInAny reports whether the user holds an active
	// participation in any of the given projects.
	IsActivePeerInAny(ctx context.Context, userID int64, projectIDs []int64) (bool, error)

	// Tasks
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	ListTasks(ctx context.Context, projectID int64) ([]*models.Task, error)
	SetTaskCompletion(ctx context.Context, taskID, userID int64, checked bool, url *string) error

	// AllListedTasksCompleted reports whether the user has checked every
	// listed, non-deleted task of the project.
	AllListedTasksCompleted(ctx context.Context, projectID, userID int64) (bool, error)
}

// UserRepository defines the contract for user profile lookups.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
	List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error)
}
