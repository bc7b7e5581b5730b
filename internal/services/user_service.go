// file: internal/services/user_service.go
package services

import (
	"context"

	"badgehub/internal/models"
	"badgehub/internal/repositories"
	"badgehub/internal/validation"

	"go.uber.org/zap"
)

// userService implements UserService.
type userService struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreateUser registers a user profile.
func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid user request", err)
	}

	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, NewInternalError("failed to check username")
	}
	if existing != nil {
		return nil, NewConflictError("username already taken", "USERNAME_TAKEN")
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	}
	if user.DisplayName == "" {
		user.DisplayName = req.Username
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.String("username", req.Username), zap.Error(err))
		return nil, NewInternalError("failed to create user")
	}

	s.logger.Info("User created",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return user, nil
}

// GetUserByID retrieves a user.
func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, NewValidationError("invalid user ID", nil)
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, NewNotFoundError("user")
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, NewValidationError("invalid username", nil)
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, NewNotFoundError("user")
	}
	return user, nil
}

// ListUsers returns a page of active users.
func (s *userService) ListUsers(ctx context.Context, params *models.PaginationParams) (*models.PaginatedResponse[*models.User], error) {
	var p models.PaginationParams
	if params != nil {
		p = *params
	}
	result, err := s.userRepo.List(ctx, p)
	if err != nil {
		return nil, NewInternalError("failed to list users")
	}
	return result, nil
}
