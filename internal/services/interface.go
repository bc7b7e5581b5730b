// file: internal/services/interface.go
package services

import (
	"context"

	"badgehub/internal/models"
)

// ===============================
// BADGE SERVICE
// ===============================

// BadgeService manages badge definitions, project attachments, and
// submissions made against badges.
type BadgeService interface {
	CreateBadge(ctx context.Context, req *CreateBadgeRequest) (*models.Badge, error)
	GetBadgeByID(ctx context.Context, id int64) (*models.Badge, error)
	GetBadgeBySlug(ctx context.Context, slug string) (*models.Badge, error)
	UpdateBadge(ctx context.Context, id int64, req *UpdateBadgeRequest) (*models.Badge, error)
	ListBadges(ctx context.Context, params *models.PaginationParams) (*models.PaginatedResponse[*models.Badge], error)
	AttachBadgeToProject(ctx context.Context, badgeID, projectID int64) error
	GetProjectBadges(ctx context.Context, projectID int64, filter models.BadgeFilter) ([]*models.Badge, error)
	GetProjectBadgeBoard(ctx context.Context, projectID, userID int64) (*models.ProjectBadgeBoard, error)
	SubmitForBadge(ctx context.Context, req *CreateSubmissionRequest) (*models.Submission, error)
	ListPendingSubmissions(ctx context.Context, badgeID, viewerID int64) ([]*models.Submission, error)
}

// ===============================
// ASSESSMENT SERVICE
// ===============================

// AssessmentService manages assessments and rubric ratings. Rating
// submission drives final-rating recomputation, completion detection,
// and the downstream award pipeline.
type AssessmentService interface {
	SubmitAssessment(ctx context.Context, req *SubmitAssessmentRequest) (*models.Assessment, error)
	SubmitRating(ctx context.Context, req *SubmitRatingRequest) (*models.Rating, error)
	GetAssessment(ctx context.Context, id int64) (*models.Assessment, error)
	ListUserAssessments(ctx context.Context, badgeID, userID int64) ([]*models.Assessment, error)
}

// ===============================
// AWARD SERVICE
// ===============================

// AwardService owns eligibility decisions and award issuance.
// TryAward is the single terminal entry point for granting a badge:
// every path that can make a user eligible funnels through it.
type AwardService interface {
	// IsEligible reports whether the user holds every prerequisite of
	// the badge. A badge with no prerequisites is always eligible.
	IsEligible(ctx context.Context, badge *models.Badge, userID int64) (bool, error)

	// LogicEligible evaluates the badge's vote-count and rating
	// thresholds against the user's progress and completed assessments.
	LogicEligible(ctx context.Context, badge *models.Badge, userID int64) (bool, error)

	// OnAssessmentComplete advances progress for a freshly completed
	// assessment and then attempts an award for the assessed user.
	OnAssessmentComplete(ctx context.Context, assessment *models.Assessment) (*models.Award, error)

	// TryAward grants the badge to the user when eligible. A nil award
	// with a nil error means no award was issued (not eligible, logic
	// unmet, or already held for unique badges).
	TryAward(ctx context.Context, badge *models.Badge, userID int64) (*models.Award, error)

	// OnAllTasksCompleted awards the project's self-completion badges
	// to the user who just finished every listed task.
	OnAllTasksCompleted(ctx context.Context, projectID, userID int64) ([]*models.Award, error)

	ListUserAwards(ctx context.Context, userID int64) ([]*models.Award, error)
	ListBadgeAwards(ctx context.Context, badgeID int64) ([]*models.Award, error)
}

// ===============================
// PROJECT SERVICE
// ===============================

// ProjectService manages projects, participation, and tasks.
type ProjectService interface {
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)
	GetProjectByID(ctx context.Context, id int64) (*models.Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (*models.Project, error)
	ListProjects(ctx context.Context, params *models.PaginationParams) (*models.PaginatedResponse[*models.Project], error)
	JoinProject(ctx context.Context, req *JoinProjectRequest) (*models.Participation, error)
	LeaveProject(ctx context.Context, projectID, userID int64) error
	GetPeers(ctx context.Context, projectID, excludeUserID int64) ([]*models.User, error)
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*models.Task, error)
	ToggleTaskCompletion(ctx context.Context, req *ToggleTaskRequest) ([]*models.Award, error)
}

// ===============================
// USER SERVICE
// ===============================

// UserService manages user accounts.
type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, params *models.PaginationParams) (*models.PaginatedResponse[*models.User], error)
}

// ===============================
// EMAIL SERVICE
// ===============================

// EmailService handles outbound notification email.
type EmailService interface {
	SendTemplateEmail(ctx context.Context, req *SendTemplateEmailRequest) error
	SendProjectCreatedEmail(ctx context.Context, projectName, projectSlug string, creatorID int64) error
}

// ===============================
// FILE SERVICE
// ===============================

// FileService handles badge image storage.
type FileService interface {
	UploadBadgeImage(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error)
	DeleteBadgeImage(ctx context.Context, publicID string) error
}
