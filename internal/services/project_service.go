// file: internal/services/project_service.go
package services

import (
	"context"
	"time"

	"badgehub/internal/events"
	"badgehub/internal/metrics"
	"badgehub/internal/models"
	"badgehub/internal/repositories"
	"badgehub/internal/validation"

	"go.uber.org/zap"
)

// projectService implements ProjectService. Task completion is the
// second entry point into the award cascade: checking the last listed
// task awards the project's self-completion badges before the call
// returns.
type projectService struct {
	projectRepo  repositories.ProjectRepository
	userRepo     repositories.UserRepository
	awardService AwardService
	events       events.EventBus
	logger       *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	awardService AwardService,
	eventBus events.EventBus,
	logger *zap.Logger,
) ProjectService {
	return &projectService{
		projectRepo:  projectRepo,
		userRepo:     userRepo,
		awardService: awardService,
		events:       eventBus,
		logger:       logger,
	}
}

// ===============================
// PROJECTS
// ===============================

// CreateProject creates a project and enrolls the creator as its
// organizer in the same breath.
func (s *projectService) CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid project request", err)
	}

	creator, err := s.userRepo.GetByID(ctx, req.CreatorID)
	if err != nil {
		return nil, NewInternalError("failed to load creator")
	}
	if creator == nil {
		return nil, NewNotFoundError("user")
	}

	project := &models.Project{
		Name:             req.Name,
		Category:         req.Category,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		UnderDevelopment: req.UnderDevelopment,
		NotListed:        req.NotListed,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		s.logger.Error("Failed to create project", zap.String("name", req.Name), zap.Error(err))
		return nil, NewInternalError("failed to create project")
	}

	participation := &models.Participation{
		ProjectID:  project.ID,
		UserID:     req.CreatorID,
		Organizing: true,
		JoinedOn:   time.Now(),
	}
	if err := s.projectRepo.CreateParticipation(ctx, participation); err != nil {
		s.logger.Error("Failed to enroll project creator",
			zap.Int64("project_id", project.ID),
			zap.Int64("user_id", req.CreatorID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to enroll project creator")
	}

	metrics.ProjectsCreated.Inc()

	// The project-created handlers (notification email, counters) run on
	// the synchronous bus so failures surface in logs immediately, but
	// the project is already committed either way.
	if err := s.events.Publish(ctx, events.NewProjectCreatedEvent(
		project.ID, req.CreatorID, project.Name, project.Slug,
	)); err != nil {
		s.logger.Warn("Project created event handler failed", zap.Error(err))
	}

	s.logger.Info("Project created",
		zap.Int64("project_id", project.ID),
		zap.String("slug", project.Slug),
		zap.Int64("creator_id", req.CreatorID),
	)
	return project, nil
}

// GetProjectByID retrieves a project.
func (s *projectService) GetProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	if id <= 0 {
		return nil, NewValidationError("invalid project ID", nil)
	}
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load project")
	}
	if project == nil {
		return nil, NewNotFoundError("project")
	}
	return project, nil
}

// GetProjectBySlug retrieves a project by its URL slug.
func (s *projectService) GetProjectBySlug(ctx context.Context, slug string) (*models.Project, error) {
	if slug == "" {
		return nil, NewValidationError("invalid project slug", nil)
	}
	project, err := s.projectRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, NewInternalError("failed to load project")
	}
	if project == nil {
		return nil, NewNotFoundError("project")
	}
	return project, nil
}

// ListProjects returns a page of listed, non-archived projects.
func (s *projectService) ListProjects(ctx context.Context, params *models.PaginationParams) (*models.PaginatedResponse[*models.Project], error) {
	var p models.PaginationParams
	if params != nil {
		p = *params
	}
	result, err := s.projectRepo.List(ctx, p)
	if err != nil {
		return nil, NewInternalError("failed to list projects")
	}
	return result, nil
}

// ===============================
// PARTICIPATION
// ===============================

// JoinProject enrolls a user. Rejoining after leaving creates a fresh
// participation; joining twice while active is a conflict.
func (s *projectService) JoinProject(ctx context.Context, req *JoinProjectRequest) (*models.Participation, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid join request", err)
	}

	project, err := s.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, NewInternalError("failed to load project")
	}
	if project == nil {
		return nil, NewNotFoundError("project")
	}

	existing, err := s.projectRepo.GetActiveParticipation(ctx, req.ProjectID, req.UserID)
	if err != nil {
		return nil, NewInternalError("failed to check participation")
	}
	if existing != nil {
		return nil, NewConflictError("user already participates in this project", "ALREADY_PARTICIPATING")
	}

	participation := &models.Participation{
		ProjectID:  req.ProjectID,
		UserID:     req.UserID,
		Organizing: req.Organizing,
		Adopter:    req.Adopter,
		JoinedOn:   time.Now(),
	}
	if err := s.projectRepo.CreateParticipation(ctx, participation); err != nil {
		s.logger.Error("Failed to create participation",
			zap.Int64("project_id", req.ProjectID),
			zap.Int64("user_id", req.UserID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to join project")
	}

	metrics.ProjectJoins.Inc()

	if err := s.events.PublishAsync(ctx, events.NewParticipationCreatedEvent(
		participation.ID, req.ProjectID, req.UserID, req.Organizing,
	)); err != nil {
		s.logger.Warn("Failed to publish participation event", zap.Error(err))
	}

	return participation, nil
}

// LeaveProject stamps the user's active participation as left. A former
// peer's past ratings keep counting; only future ones stop qualifying.
func (s *projectService) LeaveProject(ctx context.Context, projectID, userID int64) error {
	if projectID <= 0 || userID <= 0 {
		return NewValidationError("invalid project or user ID", nil)
	}
	if err := s.projectRepo.LeaveProject(ctx, projectID, userID); err != nil {
		if repositories.IsNoRows(err) {
			return NewNotFoundError("participation")
		}
		return NewInternalError("failed to leave project")
	}
	return nil
}

// GetPeers lists the project's active participants, excluding the given
// user.
func (s *projectService) GetPeers(ctx context.Context, projectID, excludeUserID int64) ([]*models.User, error) {
	if projectID <= 0 {
		return nil, NewValidationError("invalid project ID", nil)
	}
	peers, err := s.projectRepo.ListPeers(ctx, projectID, excludeUserID)
	if err != nil {
		return nil, NewInternalError("failed to list peers")
	}
	return peers, nil
}

// ===============================
// TASKS
// ===============================

// CreateTask adds a task to the project.
func (s *projectService) CreateTask(ctx context.Context, req *CreateTaskRequest) (*models.Task, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid task request", err)
	}

	project, err := s.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, NewInternalError("failed to load project")
	}
	if project == nil {
		return nil, NewNotFoundError("project")
	}

	task := &models.Task{
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Listed:    req.Listed,
	}
	if err := s.projectRepo.CreateTask(ctx, task); err != nil {
		s.logger.Error("Failed to create task",
			zap.Int64("project_id", req.ProjectID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to create task")
	}
	return task, nil
}

// ToggleTaskCompletion checks or unchecks a task for a user. Checking
// the last listed task triggers the self-completion award pipeline; the
// returned awards are whatever it issued. Unchecking never revokes an
// award.
func (s *projectService) ToggleTaskCompletion(ctx context.Context, req *ToggleTaskRequest) ([]*models.Award, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid task toggle request", err)
	}

	task, err := s.projectRepo.GetTask(ctx, req.TaskID)
	if err != nil {
		return nil, NewInternalError("failed to load task")
	}
	if task == nil {
		return nil, NewNotFoundError("task")
	}

	active, err := s.projectRepo.GetActiveParticipation(ctx, task.ProjectID, req.UserID)
	if err != nil {
		return nil, NewInternalError("failed to check participation")
	}
	if active == nil {
		return nil, NewForbiddenError("only project participants can complete tasks")
	}

	if err := s.projectRepo.SetTaskCompletion(ctx, req.TaskID, req.UserID, req.Checked, req.URL); err != nil {
		s.logger.Error("Failed to toggle task completion",
			zap.Int64("task_id", req.TaskID),
			zap.Int64("user_id", req.UserID),
			zap.Bool("checked", req.Checked),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to toggle task completion")
	}

	allCompleted := false
	var awards []*models.Award
	if req.Checked {
		allCompleted, err = s.projectRepo.AllListedTasksCompleted(ctx, task.ProjectID, req.UserID)
		if err != nil {
			return nil, NewInternalError("failed to check task completion")
		}
		if allCompleted {
			awards, err = s.awardService.OnAllTasksCompleted(ctx, task.ProjectID, req.UserID)
			if err != nil {
				return awards, err
			}
		}
	}

	if err := s.events.PublishAsync(ctx, events.NewTaskCompletionToggledEvent(
		task.ProjectID, req.TaskID, req.UserID, req.Checked, allCompleted,
	)); err != nil {
		s.logger.Warn("Failed to publish task completion event", zap.Error(err))
	}

	return awards, nil
}
