// file: internal/services/mocks_test.go
package services

import (
	"context"

	"badgehub/internal/events"
	"badgehub/internal/models"
)

// Hand-written repository mocks. Each method delegates to an optional
// function field so a test only wires what it exercises.

type mockBadgeRepo struct {
	CreateFn           func(ctx context.Context, badge *models.Badge) error
	GetByIDFn          func(ctx context.Context, id int64) (*models.Badge, error)
	GetBySlugFn        func(ctx context.Context, slug string) (*models.Badge, error)
	UpdateFn           func(ctx context.Context, badge *models.Badge) error
	ListFn             func(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Badge], error)
	ListByProjectFn    func(ctx context.Context, projectID int64, filter models.BadgeFilter) ([]*models.Badge, error)
	AttachToProjectFn  func(ctx context.Context, badgeID, projectID int64) error
	GetProjectIDsFn    func(ctx context.Context, badgeID int64) ([]int64, error)
	GetLogicFn         func(ctx context.Context, logicID int64) (*models.Logic, error)
	GetRubricsFn       func(ctx context.Context, badgeID int64) ([]*models.Rubric, error)
	CountRubricsFn     func(ctx context.Context, badgeID int64) (int, error)
	GetPrerequisitesFn func(ctx context.Context, badgeID int64) ([]int64, error)
}

func (m *mockBadgeRepo) Create(ctx context.Context, badge *models.Badge) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, badge)
	}
	badge.ID = 1
	return nil
}

func (m *mockBadgeRepo) GetByID(ctx context.Context, id int64) (*models.Badge, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBadgeRepo) GetBySlug(ctx context.Context, slug string) (*models.Badge, error) {
	if m.GetBySlugFn != nil {
		return m.GetBySlugFn(ctx, slug)
	}
	return nil, nil
}

func (m *mockBadgeRepo) Update(ctx context.Context, badge *models.Badge) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, badge)
	}
	return nil
}

func (m *mockBadgeRepo) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Badge], error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, params)
	}
	return &models.PaginatedResponse[*models.Badge]{}, nil
}

func (m *mockBadgeRepo) ListByProject(ctx context.Context, projectID int64, filter models.BadgeFilter) ([]*models.Badge, error) {
	if m.ListByProjectFn != nil {
		return m.ListByProjectFn(ctx, projectID, filter)
	}
	return nil, nil
}

func (m *mockBadgeRepo) AttachToProject(ctx context.Context, badgeID, projectID int64) error {
	if m.AttachToProjectFn != nil {
		return m.AttachToProjectFn(ctx, badgeID, projectID)
	}
	return nil
}

func (m *mockBadgeRepo) GetProjectIDs(ctx context.Context, badgeID int64) ([]int64, error) {
	if m.GetProjectIDsFn != nil {
		return m.GetProjectIDsFn(ctx, badgeID)
	}
	return nil, nil
}

func (m *mockBadgeRepo) GetLogic(ctx context.Context, logicID int64) (*models.Logic, error) {
	if m.GetLogicFn != nil {
		return m.GetLogicFn(ctx, logicID)
	}
	return nil, nil
}

func (m *mockBadgeRepo) GetRubrics(ctx context.Context, badgeID int64) ([]*models.Rubric, error) {
	if m.GetRubricsFn != nil {
		return m.GetRubricsFn(ctx, badgeID)
	}
	return nil, nil
}

func (m *mockBadgeRepo) CountRubrics(ctx context.Context, badgeID int64) (int, error) {
	if m.CountRubricsFn != nil {
		return m.CountRubricsFn(ctx, badgeID)
	}
	return 0, nil
}

func (m *mockBadgeRepo) GetPrerequisites(ctx context.Context, badgeID int64) ([]int64, error) {
	if m.GetPrerequisitesFn != nil {
		return m.GetPrerequisitesFn(ctx, badgeID)
	}
	return nil, nil
}

type mockSubmissionRepo struct {
	CreateFn                    func(ctx context.Context, submission *models.Submission) error
	GetByIDFn                   func(ctx context.Context, id int64) (*models.Submission, error)
	ListByBadgeFn               func(ctx context.Context, badgeID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Submission], error)
	ListPendingFn               func(ctx context.Context, badgeID, excludeAuthorID int64) ([]*models.Submission, error)
	HasSubmissionFn             func(ctx context.Context, badgeID, authorID int64) (bool, error)
	BadgeIDsWithSubmissionByFn  func(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error)
	BadgeIDsWithPendingReviewFn func(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error)
}

func (m *mockSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, submission)
	}
	submission.ID = 1
	return nil
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSubmissionRepo) ListByBadge(ctx context.Context, badgeID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Submission], error) {
	if m.ListByBadgeFn != nil {
		return m.ListByBadgeFn(ctx, badgeID, params)
	}
	return &models.PaginatedResponse[*models.Submission]{}, nil
}

func (m *mockSubmissionRepo) ListPending(ctx context.Context, badgeID, excludeAuthorID int64) ([]*models.Submission, error) {
	if m.ListPendingFn != nil {
		return m.ListPendingFn(ctx, badgeID, excludeAuthorID)
	}
	return nil, nil
}

func (m *mockSubmissionRepo) HasSubmission(ctx context.Context, badgeID, authorID int64) (bool, error) {
	if m.HasSubmissionFn != nil {
		return m.HasSubmissionFn(ctx, badgeID, authorID)
	}
	return false, nil
}

func (m *mockSubmissionRepo) BadgeIDsWithSubmissionBy(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error) {
	if m.BadgeIDsWithSubmissionByFn != nil {
		return m.BadgeIDsWithSubmissionByFn(ctx, userID, badgeIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockSubmissionRepo) BadgeIDsWithPendingReview(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error) {
	if m.BadgeIDsWithPendingReviewFn != nil {
		return m.BadgeIDsWithPendingReviewFn(ctx, userID, badgeIDs)
	}
	return map[int64]bool{}, nil
}

type mockAssessmentRepo struct {
	CreateFn             func(ctx context.Context, assessment *models.Assessment) error
	GetByIDFn            func(ctx context.Context, id int64) (*models.Assessment, error)
	ListByAssessedFn     func(ctx context.Context, badgeID, assessedID int64) ([]*models.Assessment, error)
	CreateRatingFn       func(ctx context.Context, rating *models.Rating) error
	GetRatingsFn         func(ctx context.Context, assessmentID int64) ([]*models.Rating, error)
	CountRatingsFn       func(ctx context.Context, assessmentID int64) (int, error)
	HasRubricRatingFn    func(ctx context.Context, assessmentID, rubricID int64) (bool, error)
	UpdateFinalRatingFn  func(ctx context.Context, assessmentID int64, finalRating float64) error
	MarkCompletedFn      func(ctx context.Context, assessmentID int64) (bool, error)
	AverageFinalRatingFn func(ctx context.Context, badgeID, assessedID int64) (float64, int, error)
}

func (m *mockAssessmentRepo) Create(ctx context.Context, assessment *models.Assessment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, assessment)
	}
	assessment.ID = 1
	return nil
}

func (m *mockAssessmentRepo) GetByID(ctx context.Context, id int64) (*models.Assessment, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockAssessmentRepo) ListByAssessed(ctx context.Context, badgeID, assessedID int64) ([]*models.Assessment, error) {
	if m.ListByAssessedFn != nil {
		return m.ListByAssessedFn(ctx, badgeID, assessedID)
	}
	return nil, nil
}

func (m *mockAssessmentRepo) CreateRating(ctx context.Context, rating *models.Rating) error {
	if m.CreateRatingFn != nil {
		return m.CreateRatingFn(ctx, rating)
	}
	rating.ID = 1
	return nil
}

func (m *mockAssessmentRepo) GetRatings(ctx context.Context, assessmentID int64) ([]*models.Rating, error) {
	if m.GetRatingsFn != nil {
		return m.GetRatingsFn(ctx, assessmentID)
	}
	return nil, nil
}

func (m *mockAssessmentRepo) CountRatings(ctx context.Context, assessmentID int64) (int, error) {
	if m.CountRatingsFn != nil {
		return m.CountRatingsFn(ctx, assessmentID)
	}
	return 0, nil
}

func (m *mockAssessmentRepo) HasRubricRating(ctx context.Context, assessmentID, rubricID int64) (bool, error) {
	if m.HasRubricRatingFn != nil {
		return m.HasRubricRatingFn(ctx, assessmentID, rubricID)
	}
	return false, nil
}

func (m *mockAssessmentRepo) UpdateFinalRating(ctx context.Context, assessmentID int64, finalRating float64) error {
	if m.UpdateFinalRatingFn != nil {
		return m.UpdateFinalRatingFn(ctx, assessmentID, finalRating)
	}
	return nil
}

func (m *mockAssessmentRepo) MarkCompleted(ctx context.Context, assessmentID int64) (bool, error) {
	if m.MarkCompletedFn != nil {
		return m.MarkCompletedFn(ctx, assessmentID)
	}
	return true, nil
}

func (m *mockAssessmentRepo) AverageFinalRating(ctx context.Context, badgeID, assessedID int64) (float64, int, error) {
	if m.AverageFinalRatingFn != nil {
		return m.AverageFinalRatingFn(ctx, badgeID, assessedID)
	}
	return 0, 0, nil
}

type mockProgressRepo struct {
	IncrementFn func(ctx context.Context, badgeID, userID int64) (*models.Progress, error)
	GetFn       func(ctx context.Context, badgeID, userID int64) (*models.Progress, error)
}

func (m *mockProgressRepo) Increment(ctx context.Context, badgeID, userID int64) (*models.Progress, error) {
	if m.IncrementFn != nil {
		return m.IncrementFn(ctx, badgeID, userID)
	}
	return &models.Progress{BadgeID: badgeID, UserID: userID, CurrentQualifiedRatings: 1}, nil
}

func (m *mockProgressRepo) Get(ctx context.Context, badgeID, userID int64) (*models.Progress, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, badgeID, userID)
	}
	return nil, nil
}

type mockAwardRepo struct {
	CreateFn          func(ctx context.Context, award *models.Award) error
	CreateIfAbsentFn  func(ctx context.Context, award *models.Award) (bool, error)
	ExistsFn          func(ctx context.Context, badgeID, userID int64) (bool, error)
	ListByUserFn      func(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error)
	ListByBadgeFn     func(ctx context.Context, badgeID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error)
	AwardedBadgeIDsFn func(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error)
}

func (m *mockAwardRepo) Create(ctx context.Context, award *models.Award) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, award)
	}
	award.ID = 1
	return nil
}

func (m *mockAwardRepo) CreateIfAbsent(ctx context.Context, award *models.Award) (bool, error) {
	if m.CreateIfAbsentFn != nil {
		return m.CreateIfAbsentFn(ctx, award)
	}
	award.ID = 1
	return true, nil
}

func (m *mockAwardRepo) Exists(ctx context.Context, badgeID, userID int64) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, badgeID, userID)
	}
	return false, nil
}

func (m *mockAwardRepo) ListByUser(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, params)
	}
	return &models.PaginatedResponse[*models.Award]{}, nil
}

func (m *mockAwardRepo) ListByBadge(ctx context.Context, badgeID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error) {
	if m.ListByBadgeFn != nil {
		return m.ListByBadgeFn(ctx, badgeID, params)
	}
	return &models.PaginatedResponse[*models.Award]{}, nil
}

func (m *mockAwardRepo) AwardedBadgeIDs(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error) {
	if m.AwardedBadgeIDsFn != nil {
		return m.AwardedBadgeIDsFn(ctx, userID, badgeIDs)
	}
	return map[int64]bool{}, nil
}

type mockProjectRepo struct {
	CreateFn                  func(ctx context.Context, project *models.Project) error
	GetByIDFn                 func(ctx context.Context, id int64) (*models.Project, error)
	GetBySlugFn               func(ctx context.Context, slug string) (*models.Project, error)
	ListFn                    func(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Project], error)
	CreateParticipationFn     func(ctx context.Context, participation *models.Participation) error
	GetActiveParticipationFn  func(ctx context.Context, projectID, userID int64) (*models.Participation, error)
	LeaveProjectFn            func(ctx context.Context, projectID, userID int64) error
	ListPeersFn               func(ctx context.Context, projectID, excludeUserID int64) ([]*models.User, error)
	IsActivePeerInAnyFn       func(ctx context.Context, userID int64, projectIDs []int64) (bool, error)
	CreateTaskFn              func(ctx context.Context, task *models.Task) error
	GetTaskFn                 func(ctx context.Context, id int64) (*models.Task, error)
	ListTasksFn               func(ctx context.Context, projectID int64) ([]*models.Task, error)
	SetTaskCompletionFn       func(ctx context.Context, taskID, userID int64, checked bool, url *string) error
	AllListedTasksCompletedFn func(ctx context.Context, projectID, userID int64) (bool, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, project *models.Project) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, project)
	}
	project.ID = 1
	project.Slug = models.Slugify(project.Name)
	return nil
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProjectRepo) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	if m.GetBySlugFn != nil {
		return m.GetBySlugFn(ctx, slug)
	}
	return nil, nil
}

func (m *mockProjectRepo) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Project], error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, params)
	}
	return &models.PaginatedResponse[*models.Project]{}, nil
}

func (m *mockProjectRepo) CreateParticipation(ctx context.Context, participation *models.Participation) error {
	if m.CreateParticipationFn != nil {
		return m.CreateParticipationFn(ctx, participation)
	}
	participation.ID = 1
	return nil
}

func (m *mockProjectRepo) GetActiveParticipation(ctx context.Context, projectID, userID int64) (*models.Participation, error) {
	if m.GetActiveParticipationFn != nil {
		return m.GetActiveParticipationFn(ctx, projectID, userID)
	}
	return nil, nil
}

func (m *mockProjectRepo) LeaveProject(ctx context.Context, projectID, userID int64) error {
	if m.LeaveProjectFn != nil {
		return m.LeaveProjectFn(ctx, projectID, userID)
	}
	return nil
}

func (m *mockProjectRepo) ListPeers(ctx context.Context, projectID, excludeUserID int64) ([]*models.User, error) {
	if m.ListPeersFn != nil {
		return m.ListPeersFn(ctx, projectID, excludeUserID)
	}
	return nil, nil
}

func (m *mockProjectRepo) IsActivePeerInAny(ctx context.Context, userID int64, projectIDs []int64) (bool, error) {
	if m.IsActivePeerInAnyFn != nil {
		return m.IsActivePeerInAnyFn(ctx, userID, projectIDs)
	}
	return false, nil
}

func (m *mockProjectRepo) CreateTask(ctx context.Context, task *models.Task) error {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, task)
	}
	task.ID = 1
	return nil
}

func (m *mockProjectRepo) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProjectRepo) ListTasks(ctx context.Context, projectID int64) ([]*models.Task, error) {
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx, projectID)
	}
	return nil, nil
}

func (m *mockProjectRepo) SetTaskCompletion(ctx context.Context, taskID, userID int64, checked bool, url *string) error {
	if m.SetTaskCompletionFn != nil {
		return m.SetTaskCompletionFn(ctx, taskID, userID, checked, url)
	}
	return nil
}

func (m *mockProjectRepo) AllListedTasksCompleted(ctx context.Context, projectID, userID int64) (bool, error) {
	if m.AllListedTasksCompletedFn != nil {
		return m.AllListedTasksCompletedFn(ctx, projectID, userID)
	}
	return false, nil
}

type mockUserRepo struct {
	CreateFn        func(ctx context.Context, user *models.User) error
	GetByIDFn       func(ctx context.Context, id int64) (*models.User, error)
	GetByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	GetByIDsFn      func(ctx context.Context, ids []int64) ([]*models.User, error)
	ListFn          func(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return &models.User{ID: id, Username: "someone"}, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	if m.GetByIDsFn != nil {
		return m.GetByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, params)
	}
	return &models.PaginatedResponse[*models.User]{}, nil
}

// mockEventBus records published events and never fails.
type mockEventBus struct {
	published []events.Event
}

func (m *mockEventBus) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *mockEventBus) PublishAsync(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *mockEventBus) Subscribe(eventType string, handler events.EventHandler) error   { return nil }
func (m *mockEventBus) Unsubscribe(eventType string, handler events.EventHandler) error { return nil }
func (m *mockEventBus) Start(ctx context.Context) error                                 { return nil }
func (m *mockEventBus) Stop(ctx context.Context) error                                  { return nil }
func (m *mockEventBus) Health() error                                                   { return nil }
func (m *mockEventBus) Stats() *events.EventBusStats                                    { return &events.EventBusStats{} }

func (m *mockEventBus) eventTypes() []string {
	types := make([]string, 0, len(m.published))
	for _, e := range m.published {
		types = append(types, e.GetEventType())
	}
	return types
}
