// file: internal/services/assessment_service_test.go
package services

import (
	"context"
	"testing"

	"badgehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubAwardService records OnAssessmentComplete calls.
type stubAwardService struct {
	AwardService
	completed []*models.Assessment
}

func (s *stubAwardService) OnAssessmentComplete(ctx context.Context, assessment *models.Assessment) (*models.Award, error) {
	s.completed = append(s.completed, assessment)
	return &models.Award{ID: 1, BadgeID: assessment.BadgeID, UserID: assessment.AssessedID}, nil
}

func newAssessmentServiceForTest(
	assessRepo *mockAssessmentRepo,
	badgeRepo *mockBadgeRepo,
	submissionRepo *mockSubmissionRepo,
	awards *stubAwardService,
	bus *mockEventBus,
) AssessmentService {
	return NewAssessmentService(assessRepo, badgeRepo, submissionRepo, awards, bus, zap.NewNop())
}

func peerSkillBadge(id int64) *models.Badge {
	return &models.Badge{
		ID:             id,
		Name:           "Code Reviewer",
		Slug:           "code-reviewer",
		AssessmentType: models.AssessmentPeer,
		BadgeType:      models.BadgeSkill,
		Unique:         true,
	}
}

func TestSubmitAssessmentRejectsSelfAssessment(t *testing.T) {
	svc := newAssessmentServiceForTest(&mockAssessmentRepo{}, &mockBadgeRepo{}, &mockSubmissionRepo{}, &stubAwardService{}, &mockEventBus{})

	_, err := svc.SubmitAssessment(context.Background(), &SubmitAssessmentRequest{
		BadgeID:    1,
		AssessorID: 7,
		AssessedID: 7,
		Comment:    "looks great",
	})

	require.Error(t, err)
	assert.True(t, IsBusinessError(err))
}

func TestSubmitAssessmentValidatesSubmissionOwnership(t *testing.T) {
	badgeRepo := &mockBadgeRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Badge, error) {
			return peerSkillBadge(id), nil
		},
	}
	submissionRepo := &mockSubmissionRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Submission, error) {
			return &models.Submission{ID: id, BadgeID: 1, AuthorID: 99}, nil
		},
	}
	svc := newAssessmentServiceForTest(&mockAssessmentRepo{}, badgeRepo, submissionRepo, &stubAwardService{}, &mockEventBus{})

	submissionID := int64(5)
	_, err := svc.SubmitAssessment(context.Background(), &SubmitAssessmentRequest{
		BadgeID:      1,
		AssessorID:   2,
		AssessedID:   7,
		Comment:      "solid work",
		SubmissionID: &submissionID,
	})

	require.Error(t, err)
	assert.True(t, IsValidationError(err), "submission authored by someone else is rejected")
}

func TestSubmitAssessmentRubriclessBadgeCompletesImmediately(t *testing.T) {
	badgeRepo := &mockBadgeRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Badge, error) {
			return peerSkillBadge(id), nil
		},
		CountRubricsFn: func(ctx context.Context, badgeID int64) (int, error) {
			return 0, nil
		},
	}
	awards := &stubAwardService{}
	svc := newAssessmentServiceForTest(&mockAssessmentRepo{}, badgeRepo, &mockSubmissionRepo{}, awards, &mockEventBus{})

	assessment, err := svc.SubmitAssessment(context.Background(), &SubmitAssessmentRequest{
		BadgeID:    1,
		AssessorID: 2,
		AssessedID: 7,
		Comment:    "nothing to rate",
	})

	require.NoError(t, err)
	assert.True(t, assessment.Completed)
	require.Len(t, awards.completed, 1, "award pipeline runs before the call returns")
}

func TestSubmitRatingRecomputesMean(t *testing.T) {
	var storedFinal float64
	ratings := []*models.Rating{
		{ID: 1, AssessmentID: 5, RubricID: 1, Score: 2},
		{ID: 2, AssessmentID: 5, RubricID: 2, Score: 4},
	}
	assessRepo := &mockAssessmentRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Assessment, error) {
			return &models.Assessment{ID: id, BadgeID: 1, AssessorID: 2, AssessedID: 7}, nil
		},
		GetRatingsFn: func(ctx context.Context, assessmentID int64) ([]*models.Rating, error) {
			return ratings, nil
		},
		CountRatingsFn: func(ctx context.Context, assessmentID int64) (int, error) {
			return len(ratings), nil
		},
		UpdateFinalRatingFn: func(ctx context.Context, assessmentID int64, finalRating float64) error {
			storedFinal = finalRating
			return nil
		},
	}
	badgeRepo := &mockBadgeRepo{
		CountRubricsFn: func(ctx context.Context, badgeID int64) (int, error) {
			return 3, nil // not fully covered yet
		},
	}
	awards := &stubAwardService{}
	svc := newAssessmentServiceForTest(assessRepo, badgeRepo, &mockSubmissionRepo{}, awards, &mockEventBus{})

	_, err := svc.SubmitRating(context.Background(), &SubmitRatingRequest{
		AssessmentID: 5,
		RubricID:     2,
		Score:        4,
	})

	require.NoError(t, err)
	assert.InDelta(t, 3.0, storedFinal, 1e-9, "final rating is the mean of all scores")
	assert.Empty(t, awards.completed, "partial rubric coverage must not complete the assessment")
}

func TestSubmitRatingLastRubricCompletesOnce(t *testing.T) {
	flips := 0
	assessRepo := &mockAssessmentRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Assessment, error) {
			return &models.Assessment{ID: id, BadgeID: 1, AssessorID: 2, AssessedID: 7}, nil
		},
		GetRatingsFn: func(ctx context.Context, assessmentID int64) ([]*models.Rating, error) {
			return []*models.Rating{{Score: 3}, {Score: 4}}, nil
		},
		CountRatingsFn: func(ctx context.Context, assessmentID int64) (int, error) {
			return 2, nil
		},
		MarkCompletedFn: func(ctx context.Context, assessmentID int64) (bool, error) {
			flips++
			return flips == 1, nil
		},
	}
	badgeRepo := &mockBadgeRepo{
		CountRubricsFn: func(ctx context.Context, badgeID int64) (int, error) {
			return 2, nil
		},
	}
	awards := &stubAwardService{}
	svc := newAssessmentServiceForTest(assessRepo, badgeRepo, &mockSubmissionRepo{}, awards, &mockEventBus{})

	_, err := svc.SubmitRating(context.Background(), &SubmitRatingRequest{
		AssessmentID: 5,
		RubricID:     2,
		Score:        4,
	})

	require.NoError(t, err)
	require.Len(t, awards.completed, 1)
	assert.True(t, awards.completed[0].Completed)
}

func TestSubmitRatingDuplicateRubricConflicts(t *testing.T) {
	assessRepo := &mockAssessmentRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Assessment, error) {
			return &models.Assessment{ID: id, BadgeID: 1}, nil
		},
		HasRubricRatingFn: func(ctx context.Context, assessmentID, rubricID int64) (bool, error) {
			return true, nil
		},
	}
	svc := newAssessmentServiceForTest(assessRepo, &mockBadgeRepo{}, &mockSubmissionRepo{}, &stubAwardService{}, &mockEventBus{})

	_, err := svc.SubmitRating(context.Background(), &SubmitRatingRequest{
		AssessmentID: 5,
		RubricID:     1,
		Score:        3,
	})

	require.Error(t, err)
	assert.True(t, IsConflictError(err))
}

func TestSubmitRatingCompletedAssessmentConflicts(t *testing.T) {
	assessRepo := &mockAssessmentRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Assessment, error) {
			return &models.Assessment{ID: id, BadgeID: 1, Completed: true}, nil
		},
	}
	svc := newAssessmentServiceForTest(assessRepo, &mockBadgeRepo{}, &mockSubmissionRepo{}, &stubAwardService{}, &mockEventBus{})

	_, err := svc.SubmitRating(context.Background(), &SubmitRatingRequest{
		AssessmentID: 5,
		RubricID:     1,
		Score:        3,
	})

	require.Error(t, err)
	assert.True(t, IsConflictError(err))
}

func TestSubmitRatingScoreOutOfRange(t *testing.T) {
	svc := newAssessmentServiceForTest(&mockAssessmentRepo{}, &mockBadgeRepo{}, &mockSubmissionRepo{}, &stubAwardService{}, &mockEventBus{})

	_, err := svc.SubmitRating(context.Background(), &SubmitRatingRequest{
		AssessmentID: 5,
		RubricID:     1,
		Score:        5,
	})

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
