// file: internal/services/badge_service_test.go
package services

import (
	"context"
	"testing"

	"badgehub/internal/cache"
	"badgehub/internal/config"
	"badgehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBadgeServiceForTest(
	badgeRepo *mockBadgeRepo,
	submissionRepo *mockSubmissionRepo,
	awardRepo *mockAwardRepo,
	projectRepo *mockProjectRepo,
	features *config.FeatureConfig,
) BadgeService {
	if features == nil {
		features = &config.FeatureConfig{EnforceAcyclicPrerequisites: true}
	}
	c := cache.NewMemoryCache(cache.DefaultConfig(), zap.NewNop())
	return NewBadgeService(badgeRepo, submissionRepo, awardRepo, projectRepo, c, features, zap.NewNop())
}

func TestCreateBadgeRejectsMissingPrerequisite(t *testing.T) {
	svc := newBadgeServiceForTest(&mockBadgeRepo{}, &mockSubmissionRepo{}, &mockAwardRepo{}, &mockProjectRepo{}, nil)

	_, err := svc.CreateBadge(context.Background(), &CreateBadgeRequest{
		Name:           "Reviewer",
		Description:    "Reviews code",
		AssessmentType: models.AssessmentPeer,
		BadgeType:      models.BadgeSkill,
		Prerequisites:  []int64{42},
	})

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestCreateBadgeRejectsCyclicPrerequisites(t *testing.T) {
	// badge 10 requires 11, badge 11 requires 10
	badgeRepo := &mockBadgeRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Badge, error) {
			return &models.Badge{ID: id}, nil
		},
		GetPrerequisitesFn: func(ctx context.Context, badgeID int64) ([]int64, error) {
			switch badgeID {
			case 10:
				return []int64{11}, nil
			case 11:
				return []int64{10}, nil
			}
			return nil, nil
		},
	}
	svc := newBadgeServiceForTest(badgeRepo, &mockSubmissionRepo{}, &mockAwardRepo{}, &mockProjectRepo{}, nil)

	_, err := svc.CreateBadge(context.Background(), &CreateBadgeRequest{
		Name:           "Mentor",
		Description:    "Guides peers",
		AssessmentType: models.AssessmentPeer,
		BadgeType:      models.BadgeSkill,
		Prerequisites:  []int64{10},
	})

	require.Error(t, err)
	assert.True(t, IsBusinessError(err))
}

func TestCreateBadgeBuildsRelations(t *testing.T) {
	var created *models.Badge
	badgeRepo := &mockBadgeRepo{
		CreateFn: func(ctx context.Context, badge *models.Badge) error {
			badge.ID = 1
			created = badge
			return nil
		},
	}
	svc := newBadgeServiceForTest(badgeRepo, &mockSubmissionRepo{}, &mockAwardRepo{}, &mockProjectRepo{}, nil)

	_, err := svc.CreateBadge(context.Background(), &CreateBadgeRequest{
		Name:           "Tester",
		Description:    "Writes tests",
		AssessmentType: models.AssessmentPeer,
		BadgeType:      models.BadgeSkill,
		Unique:         true,
		Logic:          &LogicSpec{MinQualifiedVotes: 2, MinRating: 3},
		Rubrics:        []string{"Covers edge cases?", "Readable assertions?"},
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	require.NotNil(t, created.Logic)
	assert.Equal(t, 2, created.Logic.MinQualifiedVotes)
	assert.Equal(t, 3, created.Logic.MinRating)
	require.Len(t, created.Rubrics, 2)
	assert.Equal(t, "Covers edge cases?", created.Rubrics[0].Question)
}

func TestGetBadgeByIDCachesLookups(t *testing.T) {
	calls := 0
	badgeRepo := &mockBadgeRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Badge, error) {
			calls++
			return &models.Badge{ID: id, Slug: "tester"}, nil
		},
	}
	svc := newBadgeServiceForTest(badgeRepo, &mockSubmissionRepo{}, &mockAwardRepo{}, &mockProjectRepo{}, nil)

	for i := 0; i < 3; i++ {
		badge, err := svc.GetBadgeByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), badge.ID)
	}
	assert.Equal(t, 1, calls, "repeat lookups are served from cache")
}

func TestGetProjectBadgeBoardPartitions(t *testing.T) {
	selfDone := &models.Badge{ID: 1, AssessmentType: models.AssessmentSelf, BadgeType: models.BadgeCompletion}
	selfReady := &models.Badge{ID: 2, AssessmentType: models.AssessmentSelf, BadgeType: models.BadgeCompletion, Prerequisites: []int64{1}}
	selfBlocked := &models.Badge{ID: 3, AssessmentType: models.AssessmentSelf, BadgeType: models.BadgeCompletion, Prerequisites: []int64{50}}
	skillSubmitted := &models.Badge{ID: 4, AssessmentType: models.AssessmentPeer, BadgeType: models.BadgeSkill}
	skillIdle := &models.Badge{ID: 5, AssessmentType: models.AssessmentPeer, BadgeType: models.BadgeSkill}

	badgeRepo := &mockBadgeRepo{
		ListByProjectFn: func(ctx context.Context, projectID int64, filter models.BadgeFilter) ([]*models.Badge, error) {
			return []*models.Badge{selfDone, selfReady, selfBlocked, skillSubmitted, skillIdle}, nil
		},
	}
	awardRepo := &mockAwardRepo{
		AwardedBadgeIDsFn: func(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error) {
			// External prerequisite 50 must be part of the lookup.
			assert.Contains(t, badgeIDs, int64(50))
			return map[int64]bool{1: true}, nil
		},
	}
	submissionRepo := &mockSubmissionRepo{
		BadgeIDsWithSubmissionByFn: func(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{4: true}, nil
		},
		BadgeIDsWithPendingReviewFn: func(ctx context.Context, userID int64, badgeIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{4: true, 5: true}, nil
		},
	}
	svc := newBadgeServiceForTest(badgeRepo, submissionRepo, awardRepo, &mockProjectRepo{}, nil)

	board, err := svc.GetProjectBadgeBoard(context.Background(), 3, 7)
	require.NoError(t, err)

	boardIDs := func(badges []*models.Badge) []int64 {
		ids := make([]int64, 0, len(badges))
		for _, b := range badges {
			ids = append(ids, b.ID)
		}
		return ids
	}

	assert.Equal(t, []int64{1}, boardIDs(board.Awarded))
	assert.Equal(t, []int64{2}, boardIDs(board.UponCompletion), "prerequisite held by the viewer unlocks upon-completion")
	assert.Equal(t, []int64{4}, boardIDs(board.InProgress))
	assert.Equal(t, []int64{5}, boardIDs(board.NotAttempted), "not-attempted holds peer-skill badges only")
	assert.NotContains(t, boardIDs(board.UponCompletion), int64(3), "unmet external prerequisite hides the completion badge")
	assert.ElementsMatch(t, []int64{4, 5}, boardIDs(board.NeedsReview), "needs-review overlaps the other partitions")
}

func TestGetProjectBadgeBoardSiblingSelfCompletionDoesNotGate(t *testing.T) {
	first := &models.Badge{ID: 1, AssessmentType: models.AssessmentSelf, BadgeType: models.BadgeCompletion}
	second := &models.Badge{ID: 2, AssessmentType: models.AssessmentSelf, BadgeType: models.BadgeCompletion, Prerequisites: []int64{1}}

	badgeRepo := &mockBadgeRepo{
		ListByProjectFn: func(ctx context.Context, projectID int64, filter models.BadgeFilter) ([]*models.Badge, error) {
			return []*models.Badge{first, second}, nil
		},
	}
	svc := newBadgeServiceForTest(badgeRepo, &mockSubmissionRepo{}, &mockAwardRepo{}, &mockProjectRepo{}, nil)

	board, err := svc.GetProjectBadgeBoard(context.Background(), 3, 7)
	require.NoError(t, err)

	assert.Len(t, board.UponCompletion, 2, "sibling self-completion badges are earned by the same task run")
	assert.Empty(t, board.NotAttempted)
}

func TestSubmitForBadgeRejectsSelfAssessedBadges(t *testing.T) {
	badgeRepo := &mockBadgeRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Badge, error) {
			return &models.Badge{ID: id, AssessmentType: models.AssessmentSelf, BadgeType: models.BadgeCompletion}, nil
		},
	}
	svc := newBadgeServiceForTest(badgeRepo, &mockSubmissionRepo{}, &mockAwardRepo{}, &mockProjectRepo{}, nil)

	_, err := svc.SubmitForBadge(context.Background(), &CreateSubmissionRequest{
		BadgeID:  1,
		AuthorID: 7,
		Content:  "please review",
	})

	require.Error(t, err)
	assert.True(t, IsBusinessError(err))
}

func TestSubmitForBadgeRejectsAlreadyHeldUniqueBadge(t *testing.T) {
	badgeRepo := &mockBadgeRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Badge, error) {
			return &models.Badge{ID: id, AssessmentType: models.AssessmentPeer, BadgeType: models.BadgeSkill, Unique: true}, nil
		},
	}
	awardRepo := &mockAwardRepo{
		ExistsFn: func(ctx context.Context, badgeID, userID int64) (bool, error) {
			return true, nil
		},
	}
	svc := newBadgeServiceForTest(badgeRepo, &mockSubmissionRepo{}, awardRepo, &mockProjectRepo{}, nil)

	_, err := svc.SubmitForBadge(context.Background(), &CreateSubmissionRequest{
		BadgeID:  1,
		AuthorID: 7,
		Content:  "please review",
	})

	require.Error(t, err)
	assert.True(t, IsBusinessError(err))
}
