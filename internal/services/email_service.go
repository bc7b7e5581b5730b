// file: internal/services/email_service.go
package services

import (
	"context"
	"fmt"

	"badgehub/internal/repositories"

	"go.uber.org/zap"
)

// emailService implements the EmailService interface
type emailService struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

// NewEmailService creates a new instance of EmailService
func NewEmailService(userRepo repositories.UserRepository, logger *zap.Logger) EmailService {
	return &emailService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// SendTemplateEmail sends an email using a template
func (s *emailService) SendTemplateEmail(ctx context.Context, req *SendTemplateEmailRequest) error {
	s.logger.Info("Sending template email",
		zap.Strings("to", req.To),
		zap.String("template_id", req.TemplateID),
	)
	// TODO: wire up an SMTP or provider backend; delivery is log-only for now
	return nil
}

// SendProjectCreatedEmail notifies a project creator that their project
// is live.
func (s *emailService) SendProjectCreatedEmail(ctx context.Context, projectName, projectSlug string, creatorID int64) error {
	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		return fmt.Errorf("failed to load project creator: %w", err)
	}
	if creator == nil {
		return fmt.Errorf("project creator %d not found", creatorID)
	}

	err = s.SendTemplateEmail(ctx, &SendTemplateEmailRequest{
		To:         []string{creator.Email},
		TemplateID: "project_created",
		TemplateData: map[string]interface{}{
			"ProjectName": projectName,
			"ProjectURL":  fmt.Sprintf("/projects/%s", projectSlug),
			"DisplayName": creator.DisplayName,
		},
	})
	if err != nil {
		s.logger.Error("Failed to send project created email",
			zap.Error(err),
			zap.Int64("creator_id", creatorID),
			zap.String("project_slug", projectSlug),
		)
		return fmt.Errorf("failed to send project created email: %w", err)
	}
	return nil
}
