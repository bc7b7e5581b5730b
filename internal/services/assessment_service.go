// file: internal/services/assessment_service.go
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

// assessmentService implements AssessmentService. Rating submission is
// the hot path: each accepted rating recomputes the assessment's mean
// and, when the last rubric is covered, flips the assessment completed
// and hands it to the award service synchronously. The whole cascade has
// run by the time SubmitRating returns.
type assessmentService struct {
	assessRepo     repositories.AssessmentRepository
	badgeRepo      repositories.BadgeRepository
	submissionRepo repositories.SubmissionRepository
	awardService   AwardService
	events         events.EventBus
	logger         *zap.Logger
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(
	assessRepo repositories.AssessmentRepository,
	badgeRepo repositories.BadgeRepository,
	submissionRepo repositories.SubmissionRepository,
	awardService AwardService,
	eventBus events.EventBus,
	logger *zap.Logger,
) AssessmentService {
	return &assessmentService{
		assessRepo:     assessRepo,
		badgeRepo:      badgeRepo,
		submissionRepo: submissionRepo,
		awardService:   awardService,
		events:         eventBus,
		logger:         logger,
	}
}

// ===============================
// ASSESSMENTS
// ===============================

// SubmitAssessment creates an assessment. Badges without rubrics have
// nothing to rate, so the assessment completes immediately and the award
// pipeline runs before the call returns.
func (s *assessmentService) SubmitAssessment(ctx context.Context, req *SubmitAssessmentRequest) (*models.Assessment, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid assessment request", err)
	}
	if req.AssessorID == req.AssessedID {
		return nil, NewBusinessError("users cannot assess themselves", "SELF_ASSESSMENT")
	}

	badge, err := s.badgeRepo.GetByID(ctx, req.BadgeID)
	if err != nil {
		return nil, NewInternalError("failed to load badge")
	}
	if badge == nil {
		return nil, NewNotFoundError("badge")
	}

	if req.SubmissionID != nil {
		submission, err := s.submissionRepo.GetByID(ctx, *req.SubmissionID)
		if err != nil {
			return nil, NewInternalError("failed to load submission")
		}
		if submission == nil || submission.BadgeID != badge.ID {
			return nil, NewValidationError("submission does not belong to this badge", nil)
		}
		if submission.AuthorID != req.AssessedID {
			return nil, NewValidationError("submission was not authored by the assessed user", nil)
		}
	}

	assessment := &models.Assessment{
		BadgeID:      req.BadgeID,
		AssessorID:   req.AssessorID,
		AssessedID:   req.AssessedID,
		Comment:      req.Comment,
		SubmissionID: req.SubmissionID,
		CreatedAt:    time.Now(),
	}
	if err := s.assessRepo.Create(ctx, assessment); err != nil {
		s.logger.Error("Failed to create assessment",
			zap.Int64("badge_id", req.BadgeID),
			zap.Int64("assessor_id", req.AssessorID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to create assessment")
	}

	if err := s.events.PublishAsync(ctx, events.NewAssessmentCreatedEvent(
		assessment.ID, assessment.BadgeID, assessment.AssessorID, assessment.AssessedID, assessment.SubmissionID,
	)); err != nil {
		s.logger.Warn("Failed to publish assessment created event", zap.Error(err))
	}

	rubricCount, err := s.badgeRepo.CountRubrics(ctx, badge.ID)
	if err != nil {
		return nil, NewInternalError("failed to count badge rubrics")
	}
	if rubricCount == 0 {
		if err := s.completeAssessment(ctx, assessment); err != nil {
			return nil, err
		}
	}

	return assessment, nil
}

// GetAssessment retrieves an assessment with its ratings loaded.
func (s *assessmentService) GetAssessment(ctx context.Context, id int64) (*models.Assessment, error) {
	if id <= 0 {
		return nil, NewValidationError("invalid assessment ID", nil)
	}
	assessment, err := s.assessRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load assessment")
	}
	if assessment == nil {
		return nil, NewNotFoundError("assessment")
	}
	ratings, err := s.assessRepo.GetRatings(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load ratings")
	}
	assessment.Ratings = ratings
	return assessment, nil
}

// ListUserAssessments lists the assessments a user has received for a badge.
func (s *assessmentService) ListUserAssessments(ctx context.Context, badgeID, userID int64) ([]*models.Assessment, error) {
	if badgeID <= 0 || userID <= 0 {
		return nil, NewValidationError("invalid badge or user ID", nil)
	}
	assessments, err := s.assessRepo.ListByAssessed(ctx, badgeID, userID)
	if err != nil {
		return nil, NewInternalError("failed to list assessments")
	}
	return assessments, nil
}

// ===============================
// RATINGS
// ===============================

// SubmitRating records one rubric score under an assessment. The
// assessment's final rating is the mean of all its scores and is
// recomputed on every accepted rating. Rating the same rubric twice is a
// conflict the caller may retry against a different rubric; it never
// advances the assessment.
func (s *assessmentService) SubmitRating(ctx context.Context, req *SubmitRatingRequest) (*models.Rating, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid rating request", err)
	}
	if req.Score < models.RatingNever || req.Score > models.RatingAlways {
		return nil, NewValidationError("score out of range", nil)
	}

	assessment, err := s.assessRepo.GetByID(ctx, req.AssessmentID)
	if err != nil {
		return nil, NewInternalError("failed to load assessment")
	}
	if assessment == nil {
		return nil, NewNotFoundError("assessment")
	}
	if assessment.Completed {
		return nil, NewConflictError("assessment is already completed", "ASSESSMENT_COMPLETED")
	}

	rated, err := s.assessRepo.HasRubricRating(ctx, req.AssessmentID, req.RubricID)
	if err != nil {
		return nil, NewInternalError("failed to check rubric rating")
	}
	if rated {
		return nil, NewConflictError("rubric already rated for this assessment", "RUBRIC_ALREADY_RATED")
	}

	rating := &models.Rating{
		AssessmentID: req.AssessmentID,
		RubricID:     req.RubricID,
		Score:        req.Score,
		CreatedAt:    time.Now(),
	}
	if err := s.assessRepo.CreateRating(ctx, rating); err != nil {
		s.logger.Error("Failed to create rating",
			zap.Int64("assessment_id", req.AssessmentID),
			zap.Int64("rubric_id", req.RubricID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to create rating")
	}
	metrics.RatingsSubmitted.Inc()

	if err := s.events.PublishAsync(ctx, events.NewRatingCreatedEvent(
		rating.ID, assessment.ID, rating.RubricID, rating.Score, assessment.AssessorID,
	)); err != nil {
		s.logger.Warn("Failed to publish rating created event", zap.Error(err))
	}

	if err := s.recomputeFinalRating(ctx, assessment); err != nil {
		return nil, err
	}

	covered, err := s.fullyCovered(ctx, assessment)
	if err != nil {
		return nil, err
	}
	if covered {
		if err := s.completeAssessment(ctx, assessment); err != nil {
			return nil, err
		}
	}

	return rating, nil
}

// recomputeFinalRating replaces the assessment's cached mean with the
// mean over all its ratings.
func (s *assessmentService) recomputeFinalRating(ctx context.Context, assessment *models.Assessment) error {
	ratings, err := s.assessRepo.GetRatings(ctx, assessment.ID)
	if err != nil {
		return NewInternalError("failed to load ratings")
	}
	if len(ratings) == 0 {
		return nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Score
	}
	mean := float64(sum) / float64(len(ratings))
	if err := s.assessRepo.UpdateFinalRating(ctx, assessment.ID, mean); err != nil {
		return NewInternalError("failed to update final rating")
	}
	assessment.FinalRating = mean
	return nil
}

// fullyCovered reports whether every rubric of the assessment's badge has
// a rating under this assessment.
func (s *assessmentService) fullyCovered(ctx context.Context, assessment *models.Assessment) (bool, error) {
	rubricCount, err := s.badgeRepo.CountRubrics(ctx, assessment.BadgeID)
	if err != nil {
		return false, NewInternalError("failed to count badge rubrics")
	}
	ratingCount, err := s.assessRepo.CountRatings(ctx, assessment.ID)
	if err != nil {
		return false, NewInternalError("failed to count ratings")
	}
	return rubricCount > 0 && ratingCount >= rubricCount, nil
}

// completeAssessment flips the completed flag and, when this call is the
// one that flipped it, runs the award pipeline. The rows-affected gate in
// MarkCompleted guarantees progress advances at most once per assessment
// even under concurrent raters.
func (s *assessmentService) completeAssessment(ctx context.Context, assessment *models.Assessment) error {
	flipped, err := s.assessRepo.MarkCompleted(ctx, assessment.ID)
	if err != nil {
		return NewInternalError("failed to mark assessment completed")
	}
	if !flipped {
		return nil
	}
	assessment.Completed = true
	metrics.AssessmentsCompleted.Inc()

	if err := s.events.PublishAsync(ctx, events.NewAssessmentCompletedEvent(
		assessment.ID, assessment.BadgeID, assessment.AssessorID, assessment.AssessedID,
	)); err != nil {
		s.logger.Warn("Failed to publish assessment completed event", zap.Error(err))
	}

	s.logger.Info("Assessment completed",
		zap.Int64("assessment_id", assessment.ID),
		zap.Int64("badge_id", assessment.BadgeID),
		zap.Int64("assessed_id", assessment.AssessedID),
		zap.Float64("final_rating", assessment.FinalRating),
	)

	if _, err := s.awardService.OnAssessmentComplete(ctx, assessment); err != nil {
		return err
	}
	return nil
}
