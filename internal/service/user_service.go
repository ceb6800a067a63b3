package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tuncrm/crm-api/internal/auth"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/mapper"
	"github.com/tuncrm/crm-api/internal/repository"
	"go.uber.org/zap"
)

// UserService manages application accounts. Deleting a user only clears the active flag.
type UserService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
	now      Clock
}

func NewUserService(userRepo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
		now:      utcNow,
	}
}

// List returns active users ordered by name
func (s *UserService) List(ctx context.Context) ([]domain.UserDTO, error) {
	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = mapper.ToUserDTO(&users[i])
	}
	return dtos, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*domain.UserDTO, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "failed to get user")
	}
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.UserDTO, error) {
	role := req.Role
	if role == 0 {
		role = domain.RoleUser
	}
	if !role.IsValid() {
		return nil, NewValidationError("role " + domain.GetValidationMessage("oneof"))
	}

	email := strings.TrimSpace(req.Email)
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	user.CreatedAt = s.now()

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created",
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role.String()))

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) Update(ctx context.Context, id uint, req *domain.UpdateUserRequest) (*domain.UserDTO, error) {
	if !req.Role.IsValid() {
		return nil, NewValidationError("role " + domain.GetValidationMessage("oneof"))
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "failed to get user")
	}

	email := strings.TrimSpace(req.Email)
	if err := s.ensureEmailFree(ctx, email, id); err != nil {
		return nil, err
	}

	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Email = email
	user.Phone = strings.TrimSpace(req.Phone)
	user.Role = req.Role
	if req.Active != nil {
		user.Active = *req.Active
	}
	now := s.now()
	user.UpdatedAt = &now

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user updated", zap.Uint("user_id", user.ID))

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// Delete deactivates the user. Opportunities and activities keep pointing at it.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.userRepo.SoftDelete(ctx, id, s.now()); err != nil {
		return notFound(err, "failed to delete user")
	}

	s.logger.Info("user deactivated", zap.Uint("user_id", id))
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, excludeID uint) error {
	exists, err := s.userRepo.EmailExists(ctx, email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return &ConflictError{Message: domain.MsgEmailExists}
	}
	return nil
}
