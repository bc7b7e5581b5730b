// file: internal/services/badge_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"badgehub/internal/cache"
	"badgehub/internal/config"
	"badgehub/internal/models"
	"badgehub/internal/repositories"
	"badgehub/internal/validation"

	"go.uber.org/zap"
)

// badgeService implements BadgeService.
type badgeService struct {
	badgeRepo      repositories.BadgeRepository
	submissionRepo repositories.SubmissionRepository
	awardRepo      repositories.AwardRepository
	projectRepo    repositories.ProjectRepository
	cache          cache.Cache
	features       *config.FeatureConfig
	logger         *zap.Logger
}

const badgeCacheTTL = 15 * time.Minute

// NewBadgeService creates a new badge service
func NewBadgeService(
	badgeRepo repositories.BadgeRepository,
	submissionRepo repositories.SubmissionRepository,
	awardRepo repositories.AwardRepository,
	projectRepo repositories.ProjectRepository,
	cache cache.Cache,
	features *config.FeatureConfig,
	logger *zap.Logger,
) BadgeService {
	return &badgeService{
		badgeRepo:      badgeRepo,
		submissionRepo: submissionRepo,
		awardRepo:      awardRepo,
		projectRepo:    projectRepo,
		cache:          cache,
		features:       features,
		logger:         logger,
	}
}

// ===============================
// CORE CRUD OPERATIONS
// ===============================

// CreateBadge mints a badge together with its logic, rubrics,
// prerequisites and project links.
func (s *badgeService) CreateBadge(ctx context.Context, req *CreateBadgeRequest) (*models.Badge, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid badge request", err)
	}

	for _, prereqID := range req.Prerequisites {
		prereq, err := s.badgeRepo.GetByID(ctx, prereqID)
		if err != nil {
			return nil, NewInternalError("failed to load prerequisite badge")
		}
		if prereq == nil {
			return nil, NewValidationError(fmt.Sprintf("prerequisite badge %d does not exist", prereqID), nil)
		}
	}
	if s.features.EnforceAcyclicPrerequisites {
		if err := s.checkAcyclic(ctx, req.Prerequisites); err != nil {
			return nil, err
		}
	}

	for _, projectID := range req.ProjectIDs {
		project, err := s.projectRepo.GetByID(ctx, projectID)
		if err != nil {
			return nil, NewInternalError("failed to load project")
		}
		if project == nil {
			return nil, NewValidationError(fmt.Sprintf("project %d does not exist", projectID), nil)
		}
	}

	badge := &models.Badge{
		Name:           req.Name,
		Description:    req.Description,
		AssessmentType: req.AssessmentType,
		BadgeType:      req.BadgeType,
		Unique:         req.Unique,
		CreatorID:      req.CreatorID,
		ImageURL:       req.ImageURL,
		ImagePublicID:  req.ImagePublicID,
		Prerequisites:  req.Prerequisites,
		ProjectIDs:     req.ProjectIDs,
	}
	if req.Logic != nil {
		badge.Logic = &models.Logic{
			MinQualifiedAdopterVotes: req.Logic.MinQualifiedAdopterVotes,
			MinQualifiedVotes:        req.Logic.MinQualifiedVotes,
			MinRating:                req.Logic.MinRating,
		}
	}
	for _, question := range req.Rubrics {
		badge.Rubrics = append(badge.Rubrics, &models.Rubric{Question: question})
	}

	if err := s.badgeRepo.Create(ctx, badge); err != nil {
		s.logger.Error("Failed to create badge", zap.String("name", req.Name), zap.Error(err))
		return nil, NewInternalError("failed to create badge")
	}

	return badge, nil
}

// GetBadgeByID retrieves a badge, serving repeat lookups from cache.
func (s *badgeService) GetBadgeByID(ctx context.Context, id int64) (*models.Badge, error) {
	if id <= 0 {
		return nil, NewValidationError("invalid badge ID", nil)
	}

	cacheKey := fmt.Sprintf("badge:%d", id)
	if cached, found := s.cache.Get(ctx, cacheKey); found {
		if badge, ok := cached.(*models.Badge); ok {
			return badge, nil
		}
	}

	badge, err := s.badgeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load badge")
	}
	if badge == nil {
		return nil, NewNotFoundError("badge")
	}

	if err := s.cache.Set(ctx, cacheKey, badge, badgeCacheTTL); err != nil {
		s.logger.Debug("Failed to cache badge", zap.Error(err))
	}
	return badge, nil
}

// GetBadgeBySlug retrieves a badge by its URL slug.
func (s *badgeService) GetBadgeBySlug(ctx context.Context, slug string) (*models.Badge, error) {
	if slug == "" {
		return nil, NewValidationError("invalid badge slug", nil)
	}

	cacheKey := fmt.Sprintf("badge:slug:%s", slug)
	if cached, found := s.cache.Get(ctx, cacheKey); found {
		if badge, ok := cached.(*models.Badge); ok {
			return badge, nil
		}
	}

	badge, err := s.badgeRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, NewInternalError("failed to load badge")
	}
	if badge == nil {
		return nil, NewNotFoundError("badge")
	}

	if err := s.cache.Set(ctx, cacheKey, badge, badgeCacheTTL); err != nil {
		s.logger.Debug("Failed to cache badge", zap.Error(err))
	}
	return badge, nil
}

// UpdateBadge updates the badge's mutable fields. Classification, logic,
// rubrics and prerequisites are fixed at creation.
func (s *badgeService) UpdateBadge(ctx context.Context, id int64, req *UpdateBadgeRequest) (*models.Badge, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid badge update", err)
	}

	badge, err := s.badgeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load badge")
	}
	if badge == nil {
		return nil, NewNotFoundError("badge")
	}

	badge.Name = req.Name
	badge.Description = req.Description
	badge.Unique = req.Unique
	if req.ImageURL != nil {
		badge.ImageURL = req.ImageURL
	}

	if err := s.badgeRepo.Update(ctx, badge); err != nil {
		s.logger.Error("Failed to update badge", zap.Int64("badge_id", id), zap.Error(err))
		return nil, NewInternalError("failed to update badge")
	}

	s.invalidateBadgeCaches(ctx, badge)
	return badge, nil
}

// ListBadges returns a page of badges.
func (s *badgeService) ListBadges(ctx context.Context, params *models.PaginationParams) (*models.PaginatedResponse[*models.Badge], error) {
	var p models.PaginationParams
	if params != nil {
		p = *params
	}
	result, err := s.badgeRepo.List(ctx, p)
	if err != nil {
		return nil, NewInternalError("failed to list badges")
	}
	return result, nil
}

// checkAcyclic rejects prerequisite sets whose transitive closure
// contains a cycle. The walk is bounded by the existing badge graph,
// which this check keeps acyclic.
func (s *badgeService) checkAcyclic(ctx context.Context, prereqIDs []int64) error {
	visiting := make(map[int64]bool)
	done := make(map[int64]bool)

	var visit func(id int64) error
	visit = func(id int64) error {
		if done[id] {
			return nil
		}
		if visiting[id] {
			return NewBusinessError("prerequisite graph contains a cycle", "CYCLIC_PREREQUISITES")
		}
		visiting[id] = true
		next, err := s.badgeRepo.GetPrerequisites(ctx, id)
		if err != nil {
			return NewInternalError("failed to load prerequisites")
		}
		for _, nextID := range next {
			if err := visit(nextID); err != nil {
				return err
			}
		}
		visiting[id] = false
		done[id] = true
		return nil
	}

	for _, id := range prereqIDs {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *badgeService) invalidateBadgeCaches(ctx context.Context, badge *models.Badge) {
	s.cache.Delete(ctx, fmt.Sprintf("badge:%d", badge.ID))
	s.cache.Delete(ctx, fmt.Sprintf("badge:slug:%s", badge.Slug))
}

// ===============================
// PROJECT ASSOCIATION
// ===============================

// AttachBadgeToProject links a badge to a project so the project's peers
// count as qualified assessors and the badge shows on the project board.
func (s *badgeService) AttachBadgeToProject(ctx context.Context, badgeID, projectID int64) error {
	badge, err := s.badgeRepo.GetByID(ctx, badgeID)
	if err != nil {
		return NewInternalError("failed to load badge")
	}
	if badge == nil {
		return NewNotFoundError("badge")
	}
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return NewInternalError("failed to load project")
	}
	if project == nil {
		return NewNotFoundError("project")
	}

	if err := s.badgeRepo.AttachToProject(ctx, badgeID, projectID); err != nil {
		return NewInternalError("failed to attach badge to project")
	}
	s.invalidateBadgeCaches(ctx, badge)
	return nil
}

// GetProjectBadges lists a project's badges by classification.
func (s *badgeService) GetProjectBadges(ctx context.Context, projectID int64, filter models.BadgeFilter) ([]*models.Badge, error) {
	if projectID <= 0 {
		return nil, NewValidationError("invalid project ID", nil)
	}
	badges, err := s.badgeRepo.ListByProject(ctx, projectID, filter)
	if err != nil {
		return nil, NewInternalError("failed to list project badges")
	}
	return badges, nil
}

// GetProjectBadgeBoard partitions the project's badges for one viewer:
// awarded, awardable upon task completion, in progress (own unawarded
// submission), not attempted (peer-skill badges only), and needing the
// viewer's review. The needs-review partition is computed independently
// and may overlap the others.
func (s *badgeService) GetProjectBadgeBoard(ctx context.Context, projectID, userID int64) (*models.ProjectBadgeBoard, error) {
	badges, err := s.badgeRepo.ListByProject(ctx, projectID, models.BadgeFilter{})
	if err != nil {
		return nil, NewInternalError("failed to list project badges")
	}

	board := &models.ProjectBadgeBoard{
		Awarded:        []*models.Badge{},
		UponCompletion: []*models.Badge{},
		InProgress:     []*models.Badge{},
		NotAttempted:   []*models.Badge{},
		NeedsReview:    []*models.Badge{},
	}
	if len(badges) == 0 {
		return board, nil
	}

	// Prerequisites can live outside the project, so the award lookup
	// spans the project's badges plus every prerequisite they name.
	idSet := make(map[int64]bool)
	selfCompletion := make(map[int64]bool)
	var badgeIDs []int64
	for _, b := range badges {
		badgeIDs = append(badgeIDs, b.ID)
		idSet[b.ID] = true
		if b.IsSelfCompletion() {
			selfCompletion[b.ID] = true
		}
	}
	lookupIDs := append([]int64{}, badgeIDs...)
	for _, b := range badges {
		for _, prereqID := range b.Prerequisites {
			if !idSet[prereqID] {
				idSet[prereqID] = true
				lookupIDs = append(lookupIDs, prereqID)
			}
		}
	}

	awarded, err := s.awardRepo.AwardedBadgeIDs(ctx, userID, lookupIDs)
	if err != nil {
		return nil, NewInternalError("failed to load user awards")
	}
	submitted, err := s.submissionRepo.BadgeIDsWithSubmissionBy(ctx, userID, badgeIDs)
	if err != nil {
		return nil, NewInternalError("failed to load user submissions")
	}
	pendingReview, err := s.submissionRepo.BadgeIDsWithPendingReview(ctx, userID, badgeIDs)
	if err != nil {
		return nil, NewInternalError("failed to load pending reviews")
	}

	for _, b := range badges {
		if b.IsPeerSkill() && pendingReview[b.ID] {
			board.NeedsReview = append(board.NeedsReview, b)
		}

		switch {
		case awarded[b.ID]:
			board.Awarded = append(board.Awarded, b)
		case b.IsSelfCompletion():
			// Sibling self-completion badges of the same project are
			// all earned by the same task run, so they do not gate
			// each other. A self-completion badge with unmet external
			// prerequisites surfaces in no partition until they resolve.
			ready := true
			for _, prereqID := range b.Prerequisites {
				if selfCompletion[prereqID] {
					continue
				}
				if !awarded[prereqID] {
					ready = false
					break
				}
			}
			if ready {
				board.UponCompletion = append(board.UponCompletion, b)
			}
		case b.IsPeerSkill() && submitted[b.ID]:
			board.InProgress = append(board.InProgress, b)
		case b.IsPeerSkill():
			board.NotAttempted = append(board.NotAttempted, b)
		}
	}

	return board, nil
}

// ===============================
// SUBMISSIONS
// ===============================

// SubmitForBadge records a user's application for a badge. Submissions
// only make sense for peer-assessed badges; self-completion badges are
// earned through the project's task list.
func (s *badgeService) SubmitForBadge(ctx context.Context, req *CreateSubmissionRequest) (*models.Submission, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid submission request", err)
	}

	badge, err := s.badgeRepo.GetByID(ctx, req.BadgeID)
	if err != nil {
		return nil, NewInternalError("failed to load badge")
	}
	if badge == nil {
		return nil, NewNotFoundError("badge")
	}
	if badge.AssessmentType != models.AssessmentPeer {
		return nil, NewBusinessError("badge does not accept submissions", "SUBMISSION_NOT_ACCEPTED")
	}

	if badge.Unique {
		held, err := s.awardRepo.Exists(ctx, badge.ID, req.AuthorID)
		if err != nil {
			return nil, NewInternalError("failed to check existing award")
		}
		if held {
			return nil, NewBusinessError("badge already awarded to this user", "ALREADY_AWARDED")
		}
	}

	submission := &models.Submission{
		BadgeID:   req.BadgeID,
		AuthorID:  req.AuthorID,
		Content:   req.Content,
		URL:       req.URL,
		CreatedAt: time.Now(),
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		s.logger.Error("Failed to create submission",
			zap.Int64("badge_id", req.BadgeID),
			zap.Int64("author_id", req.AuthorID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to create submission")
	}

	return submission, nil
}

// ListPendingSubmissions lists a badge's submissions awaiting review,
// excluding the viewer's own.
func (s *badgeService) ListPendingSubmissions(ctx context.Context, badgeID, viewerID int64) ([]*models.Submission, error) {
	if badgeID <= 0 {
		return nil, NewValidationError("invalid badge ID", nil)
	}
	submissions, err := s.submissionRepo.ListPending(ctx, badgeID, viewerID)
	if err != nil {
		return nil, NewInternalError("failed to list pending submissions")
	}
	return submissions, nil
}
