// file: internal/services/award_service.go
package services

import (
	"context"
	"time"

	"badgehub/internal/events"
	"badgehub/internal/metrics"
	"badgehub/internal/models"
	"badgehub/internal/repositories"

	"go.uber.org/zap"
)

// awardService implements AwardService. It is the terminal stage of the
// evaluation cascade: assessment completion and task completion both end
// up in TryAward, which is the only place awards are created.
type awardService struct {
	badgeRepo    repositories.BadgeRepository
	awardRepo    repositories.AwardRepository
	progressRepo repositories.ProgressRepository
	assessRepo   repositories.AssessmentRepository
	projectRepo  repositories.ProjectRepository
	events       events.EventBus
	logger       *zap.Logger
}

// NewAwardService creates a new award service
func NewAwardService(
	badgeRepo repositories.BadgeRepository,
	awardRepo repositories.AwardRepository,
	progressRepo repositories.ProgressRepository,
	assessRepo repositories.AssessmentRepository,
	projectRepo repositories.ProjectRepository,
	eventBus events.EventBus,
	logger *zap.Logger,
) AwardService {
	return &awardService{
		badgeRepo:    badgeRepo,
		awardRepo:    awardRepo,
		progressRepo: progressRepo,
		assessRepo:   assessRepo,
		projectRepo:  projectRepo,
		events:       eventBus,
		logger:       logger,
	}
}

// ===============================
// ELIGIBILITY
// ===============================

// IsEligible reports whether the user already holds every prerequisite
// badge. No prerequisites means always eligible.
func (s *awardService) IsEligible(ctx context.Context, badge *models.Badge, userID int64) (bool, error) {
	prereqs := badge.Prerequisites
	if prereqs == nil {
		var err error
		prereqs, err = s.badgeRepo.GetPrerequisites(ctx, badge.ID)
		if err != nil {
			return false, NewInternalError("failed to load badge prerequisites")
		}
	}
	if len(prereqs) == 0 {
		return true, nil
	}

	held, err := s.awardRepo.AwardedBadgeIDs(ctx, userID, prereqs)
	if err != nil {
		return false, NewInternalError("failed to load user awards")
	}
	for _, id := range prereqs {
		if !held[id] {
			return false, nil
		}
	}
	return true, nil
}

// LogicEligible checks the badge's vote-count and rating thresholds.
// A zero threshold always passes, so a badge without logic (or with the
// zero logic) is purely prerequisite-gated.
func (s *awardService) LogicEligible(ctx context.Context, badge *models.Badge, userID int64) (bool, error) {
	logic := badge.Logic
	if logic == nil && badge.LogicID != nil {
		var err error
		logic, err = s.badgeRepo.GetLogic(ctx, *badge.LogicID)
		if err != nil {
			return false, NewInternalError("failed to load badge logic")
		}
	}
	if logic == nil {
		return true, nil
	}

	if logic.MinQualifiedVotes > 0 {
		progress, err := s.progressRepo.Get(ctx, badge.ID, userID)
		if err != nil {
			return false, NewInternalError("failed to load badge progress")
		}
		current := 0
		if progress != nil {
			current = progress.CurrentQualifiedRatings
		}
		if current < logic.MinQualifiedVotes {
			return false, nil
		}
	}

	if logic.MinRating > 0 {
		avg, count, err := s.assessRepo.AverageFinalRating(ctx, badge.ID, userID)
		if err != nil {
			return false, NewInternalError("failed to compute average rating")
		}
		if count == 0 || avg < float64(logic.MinRating) {
			return false, nil
		}
	}

	return true, nil
}

// ===============================
// CASCADE ENTRY POINTS
// ===============================

// OnAssessmentComplete reacts to an assessment receiving its last rubric
// rating. Progress advances by one when the assessor counts as a
// qualified voter (an active peer in one of the badge's projects); the
// award attempt runs regardless, so self and stealth assessments still
// reach TryAward.
func (s *awardService) OnAssessmentComplete(ctx context.Context, assessment *models.Assessment) (*models.Award, error) {
	badge, err := s.badgeRepo.GetByID(ctx, assessment.BadgeID)
	if err != nil {
		return nil, NewInternalError("failed to load badge")
	}
	if badge == nil {
		return nil, NewNotFoundError("badge")
	}

	qualified, err := s.assessorQualifies(ctx, badge, assessment.AssessorID)
	if err != nil {
		return nil, err
	}
	if qualified {
		progress, err := s.progressRepo.Increment(ctx, badge.ID, assessment.AssessedID)
		if err != nil {
			s.logger.Error("Failed to increment badge progress",
				zap.Int64("badge_id", badge.ID),
				zap.Int64("user_id", assessment.AssessedID),
				zap.Error(err),
			)
			return nil, NewInternalError("failed to record badge progress")
		}
		s.logger.Debug("Badge progress advanced",
			zap.Int64("badge_id", badge.ID),
			zap.Int64("user_id", assessment.AssessedID),
			zap.Int("qualified_ratings", progress.CurrentQualifiedRatings),
		)
	}

	return s.TryAward(ctx, badge, assessment.AssessedID)
}

// assessorQualifies reports whether the assessor's rating counts toward
// the vote threshold. Peer assessments qualify only when the assessor is
// an active participant in one of the projects the badge is attached to;
// a badge attached to no project has no peers, so no rating qualifies.
func (s *awardService) assessorQualifies(ctx context.Context, badge *models.Badge, assessorID int64) (bool, error) {
	if badge.AssessmentType != models.AssessmentPeer {
		return false, nil
	}
	projectIDs := badge.ProjectIDs
	if projectIDs == nil {
		var err error
		projectIDs, err = s.badgeRepo.GetProjectIDs(ctx, badge.ID)
		if err != nil {
			return false, NewInternalError("failed to load badge projects")
		}
	}
	if len(projectIDs) == 0 {
		return false, nil
	}
	ok, err := s.projectRepo.IsActivePeerInAny(ctx, assessorID, projectIDs)
	if err != nil {
		return false, NewInternalError("failed to check assessor participation")
	}
	return ok, nil
}

// OnAllTasksCompleted awards the project's self-completion badges to the
// user who just checked off the last listed task. Badges whose
// prerequisites or logic are unmet are skipped, not errors.
func (s *awardService) OnAllTasksCompleted(ctx context.Context, projectID, userID int64) ([]*models.Award, error) {
	badges, err := s.badgeRepo.ListByProject(ctx, projectID, models.BadgeFilter{OnlySelfCompletion: true})
	if err != nil {
		return nil, NewInternalError("failed to load project badges")
	}

	var awards []*models.Award
	for _, badge := range badges {
		award, err := s.TryAward(ctx, badge, userID)
		if err != nil {
			return awards, err
		}
		if award != nil {
			awards = append(awards, award)
		}
	}
	return awards, nil
}

// ===============================
// AWARD ISSUANCE
// ===============================

// TryAward grants the badge when the user passes both eligibility gates.
// For unique badges the insert races through a create-if-absent, so a
// concurrent duplicate quietly resolves to a no-op. (nil, nil) means no
// award was issued.
func (s *awardService) TryAward(ctx context.Context, badge *models.Badge, userID int64) (*models.Award, error) {
	eligible, err := s.IsEligible(ctx, badge, userID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, nil
	}

	eligible, err = s.LogicEligible(ctx, badge, userID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, nil
	}

	award := &models.Award{
		BadgeID:   badge.ID,
		UserID:    userID,
		AwardedOn: time.Now(),
	}

	if badge.Unique {
		created, err := s.awardRepo.CreateIfAbsent(ctx, award)
		if err != nil {
			s.logger.Error("Failed to create award",
				zap.Int64("badge_id", badge.ID),
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return nil, NewInternalError("failed to create award")
		}
		if !created {
			return nil, nil
		}
	} else {
		if err := s.awardRepo.Create(ctx, award); err != nil {
			s.logger.Error("Failed to create award",
				zap.Int64("badge_id", badge.ID),
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return nil, NewInternalError("failed to create award")
		}
	}

	metrics.AwardsIssued.Inc()

	if err := s.events.PublishAsync(ctx, events.NewAwardIssuedEvent(award.ID, badge.ID, userID)); err != nil {
		s.logger.Warn("Failed to publish award issued event", zap.Error(err))
	}

	s.logger.Info("Badge awarded",
		zap.Int64("award_id", award.ID),
		zap.Int64("badge_id", badge.ID),
		zap.String("badge_slug", badge.Slug),
		zap.Int64("user_id", userID),
	)

	return award, nil
}

// ===============================
// QUERIES
// ===============================

func (s *awardService) ListUserAwards(ctx context.Context, userID int64) ([]*models.Award, error) {
	if userID <= 0 {
		return nil, NewValidationError("invalid user ID", nil)
	}
	result, err := s.awardRepo.ListByUser(ctx, userID, models.PaginationParams{})
	if err != nil {
		return nil, NewInternalError("failed to list awards")
	}
	return result.Data, nil
}

func (s *awardService) ListBadgeAwards(ctx context.Context, badgeID int64) ([]*models.Award, error) {
	if badgeID <= 0 {
		return nil, NewValidationError("invalid badge ID", nil)
	}
	result, err := s.awardRepo.ListByBadge(ctx, badgeID, models.PaginationParams{})
	if err != nil {
		return nil, NewInternalError("failed to list awards")
	}
	return result.Data, nil
}
