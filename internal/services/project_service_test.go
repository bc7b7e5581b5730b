// file: internal/services/project_service_test.go
package services

import (
	"context"
	"database/sql"
	"testing"

	"badgehub/internal/events"
	"badgehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubTaskAwardService answers OnAllTasksCompleted with canned awards.
type stubTaskAwardService struct {
	AwardService
	awards []*models.Award
	calls  int
}

func (s *stubTaskAwardService) OnAllTasksCompleted(ctx context.Context, projectID, userID int64) ([]*models.Award, error) {
	s.calls++
	return s.awards, nil
}

func newProjectServiceForTest(
	projectRepo *mockProjectRepo,
	userRepo *mockUserRepo,
	awards AwardService,
	bus *mockEventBus,
) ProjectService {
	return NewProjectService(projectRepo, userRepo, awards, bus, zap.NewNop())
}

func TestCreateProjectEnrollsCreatorAsOrganizer(t *testing.T) {
	var enrolled *models.Participation
	projectRepo := &mockProjectRepo{
		CreateParticipationFn: func(ctx context.Context, participation *models.Participation) error {
			participation.ID = 1
			enrolled = participation
			return nil
		},
	}
	bus := &mockEventBus{}
	svc := newProjectServiceForTest(projectRepo, &mockUserRepo{}, &stubTaskAwardService{}, bus)

	project, err := svc.CreateProject(context.Background(), &CreateProjectRequest{
		Name:             "Go Study Circle",
		Category:         "study group",
		ShortDescription: "Weekly deep dives",
		CreatorID:        7,
	})

	require.NoError(t, err)
	assert.Equal(t, "go-study-circle", project.Slug)
	require.NotNil(t, enrolled)
	assert.True(t, enrolled.Organizing)
	assert.Equal(t, int64(7), enrolled.UserID)
	assert.Contains(t, bus.eventTypes(), events.EventProjectCreated)
}

func TestJoinProjectTwiceConflicts(t *testing.T) {
	projectRepo := &mockProjectRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Project, error) {
			return &models.Project{ID: id}, nil
		},
		GetActiveParticipationFn: func(ctx context.Context, projectID, userID int64) (*models.Participation, error) {
			return &models.Participation{ID: 1, ProjectID: projectID, UserID: userID}, nil
		},
	}
	svc := newProjectServiceForTest(projectRepo, &mockUserRepo{}, &stubTaskAwardService{}, &mockEventBus{})

	_, err := svc.JoinProject(context.Background(), &JoinProjectRequest{ProjectID: 3, UserID: 7})

	require.Error(t, err)
	assert.True(t, IsConflictError(err))
}

func TestLeaveProjectWithoutParticipation(t *testing.T) {
	projectRepo := &mockProjectRepo{
		LeaveProjectFn: func(ctx context.Context, projectID, userID int64) error {
			return sql.ErrNoRows
		},
	}
	svc := newProjectServiceForTest(projectRepo, &mockUserRepo{}, &stubTaskAwardService{}, &mockEventBus{})

	err := svc.LeaveProject(context.Background(), 3, 7)

	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestToggleTaskRequiresActiveParticipation(t *testing.T) {
	projectRepo := &mockProjectRepo{
		GetTaskFn: func(ctx context.Context, id int64) (*models.Task, error) {
			return &models.Task{ID: id, ProjectID: 3, Listed: true}, nil
		},
	}
	svc := newProjectServiceForTest(projectRepo, &mockUserRepo{}, &stubTaskAwardService{}, &mockEventBus{})

	_, err := svc.ToggleTaskCompletion(context.Background(), &ToggleTaskRequest{TaskID: 1, UserID: 7, Checked: true})

	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrorTypeForbidden))
}

func TestToggleTaskLastCheckTriggersAwards(t *testing.T) {
	projectRepo := &mockProjectRepo{
		GetTaskFn: func(ctx context.Context, id int64) (*models.Task, error) {
			return &models.Task{ID: id, ProjectID: 3, Listed: true}, nil
		},
		GetActiveParticipationFn: func(ctx context.Context, projectID, userID int64) (*models.Participation, error) {
			return &models.Participation{ID: 1, ProjectID: projectID, UserID: userID}, nil
		},
		AllListedTasksCompletedFn: func(ctx context.Context, projectID, userID int64) (bool, error) {
			return true, nil
		},
	}
	stub := &stubTaskAwardService{awards: []*models.Award{{ID: 1, BadgeID: 10, UserID: 7}}}
	bus := &mockEventBus{}
	svc := newProjectServiceForTest(projectRepo, &mockUserRepo{}, stub, bus)

	awards, err := svc.ToggleTaskCompletion(context.Background(), &ToggleTaskRequest{TaskID: 1, UserID: 7, Checked: true})

	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.Equal(t, 1, stub.calls)
	assert.Contains(t, bus.eventTypes(), events.EventTaskCompletionToggled)
}

func TestToggleTaskUncheckNeverAwards(t *testing.T) {
	projectRepo := &mockProjectRepo{
		GetTaskFn: func(ctx context.Context, id int64) (*models.Task, error) {
			return &models.Task{ID: id, ProjectID: 3, Listed: true}, nil
		},
		GetActiveParticipationFn: func(ctx context.Context, projectID, userID int64) (*models.Participation, error) {
			return &models.Participation{ID: 1, ProjectID: projectID, UserID: userID}, nil
		},
		AllListedTasksCompletedFn: func(ctx context.Context, projectID, userID int64) (bool, error) {
			t.Fatal("unchecking must not consult task completion")
			return false, nil
		},
	}
	stub := &stubTaskAwardService{}
	svc := newProjectServiceForTest(projectRepo, &mockUserRepo{}, stub, &mockEventBus{})

	awards, err := svc.ToggleTaskCompletion(context.Background(), &ToggleTaskRequest{TaskID: 1, UserID: 7, Checked: false})

	require.NoError(t, err)
	assert.Empty(t, awards)
	assert.Equal(t, 0, stub.calls)
}
