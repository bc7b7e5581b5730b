// file: internal/services/award_service_test.go
package services

import (
	"context"
	"testing"

	"badgehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAwardServiceForTest(
	badgeRepo *mockBadgeRepo,
	awardRepo *mockAwardRepo,
	progressRepo *mockProgressRepo,
	assessRepo *mockAssessmentRepo,
	projectRepo *mockProjectRepo,
	bus *mockEventBus,
) AwardService {
	return NewAwardService(badgeRepo, awardRepo, progressRepo, assessRepo, projectRepo, bus, zap.NewNop())
}

func TestIsEligibleNoPrerequisites(t *testing.T) {
	svc := newAwardServiceForTest(&mockBadgeRepo{}, &mockAwardRepo{}, &mockProgressRepo{}, &mockAssessmentRepo{}, &mockProjectRepo{}, &mockEventBus{})

	badge := &models.Badge{ID: 1, Prerequisites: []int64{}}
	eligible, err := svc.IsEligible(context.Background(), badge, 7)

	require.NoError(t, err)
	assert.True(t, eligible, "a badge without prerequisites is always eligible")
}

func TestIsEligibleRequiresEveryPrerequisite(t *testing.T) {
	awardRepo := &mockAwardRepo{
		AwardedBadgeIDsFn: func(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{10: true}, nil
		},
	}
	svc := newAwardServiceForTest(&mockBadgeRepo{}, awardRepo, &mockProgressRepo{}, &mockAssessmentRepo{}, &mockProjectRepo{}, &mockEventBus{})

	badge := &models.Badge{ID: 1, Prerequisites: []int64{10, 11}}
	eligible, err := svc.IsEligible(context.Background(), badge, 7)

	require.NoError(t, err)
	assert.False(t, eligible, "one missing prerequisite blocks eligibility")

	awardRepo.AwardedBadgeIDsFn = func(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error) {
		return map[int64]bool{10: true, 11: true}, nil
	}
	eligible, err = svc.IsEligible(context.Background(), badge, 7)
	require.NoError(t, err)
	assert.True(t, eligible)
}

func TestLogicEligibleThresholds(t *testing.T) {
	tests := []struct {
		name      string
		logic     *models.Logic
		qualified int
		avg       float64
		completed int
		want      bool
	}{
		{
			name: "vote threshold not met",
			logic: &models.Logic{MinQualifiedVotes: 2, MinRating: 3},
			qualified: 1, avg: 4, completed: 1,
			want: false,
		},
		{
			name: "rating threshold not met",
			logic: &models.Logic{MinQualifiedVotes: 2, MinRating: 3},
			qualified: 2, avg: 2.5, completed: 2,
			want: false,
		},
		{
			name: "both thresholds met",
			logic: &models.Logic{MinQualifiedVotes: 2, MinRating: 3},
			qualified: 2, avg: 3.0, completed: 2,
			want: true,
		},
		{
			name: "min rating with no completed assessments fails",
			logic: &models.Logic{MinRating: 1},
			qualified: 0, avg: 0, completed: 0,
			want: false,
		},
		{
			name: "zero logic always passes",
			logic: &models.Logic{},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progressRepo := &mockProgressRepo{
				GetFn: func(ctx context.Context, badgeID, userID int64) (*models.Progress, error) {
					if tt.qualified == 0 {
						return nil, nil
					}
					return &models.Progress{CurrentQualifiedRatings: tt.qualified}, nil
				},
			}
			assessRepo := &mockAssessmentRepo{
				AverageFinalRatingFn: func(ctx context.Context, badgeID, assessedID int64) (float64, int, error) {
					return tt.avg, tt.completed, nil
				},
			}
			svc := newAwardServiceForTest(&mockBadgeRepo{}, &mockAwardRepo{}, progressRepo, assessRepo, &mockProjectRepo{}, &mockEventBus{})

			badge := &models.Badge{ID: 1, Logic: tt.logic}
			got, err := svc.LogicEligible(context.Background(), badge, 7)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogicEligibleNoLogic(t *testing.T) {
	svc := newAwardServiceForTest(&mockBadgeRepo{}, &mockAwardRepo{}, &mockProgressRepo{}, &mockAssessmentRepo{}, &mockProjectRepo{}, &mockEventBus{})

	badge := &models.Badge{ID: 1}
	eligible, err := svc.LogicEligible(context.Background(), badge, 7)

	require.NoError(t, err)
	assert.True(t, eligible, "a badge without logic has no threshold requirements")
}

func TestTryAwardUniqueBadgeIdempotent(t *testing.T) {
	created := 0
	awardRepo := &mockAwardRepo{
		CreateIfAbsentFn: func(ctx context.Context, award *models.Award) (bool, error) {
			created++
			if created == 1 {
				award.ID = 100
				return true, nil
			}
			return false, nil
		},
	}
	bus := &mockEventBus{}
	svc := newAwardServiceForTest(&mockBadgeRepo{}, awardRepo, &mockProgressRepo{}, &mockAssessmentRepo{}, &mockProjectRepo{}, bus)

	badge := &models.Badge{ID: 1, Slug: "gopher", Unique: true}

	first, err := svc.TryAward(context.Background(), badge, 7)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, int64(100), first.ID)

	second, err := svc.TryAward(context.Background(), badge, 7)
	require.NoError(t, err)
	assert.Nil(t, second, "second grant of a unique badge is a no-op")

	assert.Len(t, bus.published, 1, "only the real grant publishes an event")
}

func TestTryAwardNonUniqueBadgeRepeats(t *testing.T) {
	var ids []int64
	awardRepo := &mockAwardRepo{
		CreateFn: func(ctx context.Context, award *models.Award) error {
			award.ID = int64(len(ids) + 1)
			ids = append(ids, award.ID)
			return nil
		},
	}
	svc := newAwardServiceForTest(&mockBadgeRepo{}, awardRepo, &mockProgressRepo{}, &mockAssessmentRepo{}, &mockProjectRepo{}, &mockEventBus{})

	badge := &models.Badge{ID: 1, Unique: false}

	for i := 0; i < 2; i++ {
		award, err := svc.TryAward(context.Background(), badge, 7)
		require.NoError(t, err)
		require.NotNil(t, award)
	}
	assert.Len(t, ids, 2)
}

func TestTryAwardIneligibleIsNoOp(t *testing.T) {
	awardRepo := &mockAwardRepo{
		AwardedBadgeIDsFn: func(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{}, nil
		},
		CreateFn: func(ctx context.Context, award *models.Award) error {
			t.Fatal("award must not be created for an ineligible user")
			return nil
		},
	}
	svc := newAwardServiceForTest(&mockBadgeRepo{}, awardRepo, &mockProgressRepo{}, &mockAssessmentRepo{}, &mockProjectRepo{}, &mockEventBus{})

	badge := &models.Badge{ID: 1, Prerequisites: []int64{42}}
	award, err := svc.TryAward(context.Background(), badge, 7)

	require.NoError(t, err)
	assert.Nil(t, award)
}

func TestOnAssessmentCompletePeerAssessorAdvancesProgress(t *testing.T) {
	incremented := false
	badgeRepo := &mockBadgeRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Badge, error) {
			return &models.Badge{
				ID:             id,
				AssessmentType: models.AssessmentPeer,
				BadgeType:      models.BadgeSkill,
				Unique:         true,
				ProjectIDs:     []int64{3},
			}, nil
		},
	}
	progressRepo := &mockProgressRepo{
		IncrementFn: func(ctx context.Context, badgeID, userID int64) (*models.Progress, error) {
			incremented = true
			return &models.Progress{BadgeID: badgeID, UserID: userID, CurrentQualifiedRatings: 1}, nil
		},
	}
	projectRepo := &mockProjectRepo{
		IsActivePeerInAnyFn: func(ctx context.Context, userID int64, projectIDs []int64) (bool, error) {
			return true, nil
		},
	}
	svc := newAwardServiceForTest(badgeRepo, &mockAwardRepo{}, progressRepo, &mockAssessmentRepo{}, projectRepo, &mockEventBus{})

	assessment := &models.Assessment{ID: 5, BadgeID: 1, AssessorID: 2, AssessedID: 7, Completed: true}
	award, err := svc.OnAssessmentComplete(context.Background(), assessment)

	require.NoError(t, err)
	assert.True(t, incremented, "qualified peer rating advances progress")
	assert.NotNil(t, award)
}

func TestOnAssessmentCompleteNonPeerDoesNotAdvanceProgress(t *testing.T) {
	badgeRepo := &mockBadgeRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Badge, error) {
			return &models.Badge{
				ID:             id,
				AssessmentType: models.AssessmentSelf,
				BadgeType:      models.BadgeCompletion,
				Unique:         true,
			}, nil
		},
	}
	progressRepo := &mockProgressRepo{
		IncrementFn: func(ctx context.Context, badgeID, userID int64) (*models.Progress, error) {
			t.Fatal("self assessment must not advance progress")
			return nil, nil
		},
	}
	svc := newAwardServiceForTest(badgeRepo, &mockAwardRepo{}, progressRepo, &mockAssessmentRepo{}, &mockProjectRepo{}, &mockEventBus{})

	assessment := &models.Assessment{ID: 5, BadgeID: 1, AssessorID: 7, AssessedID: 7, Completed: true}
	award, err := svc.OnAssessmentComplete(context.Background(), assessment)

	require.NoError(t, err)
	assert.NotNil(t, award, "award attempt still runs for non-peer assessments")
}

func TestOnAssessmentCompleteProjectlessBadgeHasNoQualifiedVoters(t *testing.T) {
	badgeRepo := &mockBadgeRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Badge, error) {
			return &models.Badge{
				ID:             id,
				AssessmentType: models.AssessmentPeer,
				BadgeType:      models.BadgeSkill,
				Unique:         true,
				ProjectIDs:     []int64{},
			}, nil
		},
	}
	progressRepo := &mockProgressRepo{
		IncrementFn: func(ctx context.Context, badgeID, userID int64) (*models.Progress, error) {
			t.Fatal("a badge attached to no project has no peers, so no rating qualifies")
			return nil, nil
		},
	}
	projectRepo := &mockProjectRepo{
		IsActivePeerInAnyFn: func(ctx context.Context, userID int64, projectIDs []int64) (bool, error) {
			t.Fatal("membership must not be consulted for an empty project set")
			return false, nil
		},
	}
	svc := newAwardServiceForTest(badgeRepo, &mockAwardRepo{}, progressRepo, &mockAssessmentRepo{}, projectRepo, &mockEventBus{})

	assessment := &models.Assessment{ID: 5, BadgeID: 1, AssessorID: 2, AssessedID: 7, Completed: true}
	award, err := svc.OnAssessmentComplete(context.Background(), assessment)

	require.NoError(t, err)
	assert.NotNil(t, award, "award attempt still runs without a qualified vote")
}

func TestOnAssessmentCompleteLoadsProjectsWhenNotPreloaded(t *testing.T) {
	badgeRepo := &mockBadgeRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Badge, error) {
			return &models.Badge{
				ID:             id,
				AssessmentType: models.AssessmentPeer,
				BadgeType:      models.BadgeSkill,
				Unique:         true,
			}, nil
		},
		GetProjectIDsFn: func(ctx context.Context, badgeID int64) ([]int64, error) {
			return []int64{3}, nil
		},
	}
	incremented := false
	progressRepo := &mockProgressRepo{
		IncrementFn: func(ctx context.Context, badgeID, userID int64) (*models.Progress, error) {
			incremented = true
			return &models.Progress{BadgeID: badgeID, UserID: userID, CurrentQualifiedRatings: 1}, nil
		},
	}
	projectRepo := &mockProjectRepo{
		IsActivePeerInAnyFn: func(ctx context.Context, userID int64, projectIDs []int64) (bool, error) {
			assert.Equal(t, []int64{3}, projectIDs)
			return true, nil
		},
	}
	svc := newAwardServiceForTest(badgeRepo, &mockAwardRepo{}, progressRepo, &mockAssessmentRepo{}, projectRepo, &mockEventBus{})

	assessment := &models.Assessment{ID: 5, BadgeID: 1, AssessorID: 2, AssessedID: 7, Completed: true}
	_, err := svc.OnAssessmentComplete(context.Background(), assessment)

	require.NoError(t, err)
	assert.True(t, incremented)
}

func TestOnAssessmentCompleteUnknownBadge(t *testing.T) {
	svc := newAwardServiceForTest(&mockBadgeRepo{}, &mockAwardRepo{}, &mockProgressRepo{}, &mockAssessmentRepo{}, &mockProjectRepo{}, &mockEventBus{})

	assessment := &models.Assessment{ID: 5, BadgeID: 99, AssessorID: 2, AssessedID: 7}
	_, err := svc.OnAssessmentComplete(context.Background(), assessment)

	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestOnAllTasksCompletedAwardsSelfCompletionBadges(t *testing.T) {
	badgeRepo := &mockBadgeRepo{
		ListByProjectFn: func(ctx context.Context, projectID int64, filter models.BadgeFilter) ([]*models.Badge, error) {
			assert.True(t, filter.OnlySelfCompletion)
			return []*models.Badge{
				{ID: 1, AssessmentType: models.AssessmentSelf, BadgeType: models.BadgeCompletion, Unique: true},
				{ID: 2, AssessmentType: models.AssessmentSelf, BadgeType: models.BadgeCompletion, Unique: true, Prerequisites: []int64{99}},
			}, nil
		},
	}
	svc := newAwardServiceForTest(badgeRepo, &mockAwardRepo{}, &mockProgressRepo{}, &mockAssessmentRepo{}, &mockProjectRepo{}, &mockEventBus{})

	awards, err := svc.OnAllTasksCompleted(context.Background(), 3, 7)

	require.NoError(t, err)
	require.Len(t, awards, 1, "the badge with an unmet prerequisite is skipped")
	assert.Equal(t, int64(1), awards[0].BadgeID)
}
