package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tuncrm/crm-api/internal/auth"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/mapper"
	"github.com/tuncrm/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService handles local email/password login and self-service account actions
type AuthService struct {
	userRepo *repository.UserRepository
	users    *UserService
	tokens   *auth.TokenManager
	logger   *zap.Logger
	now      Clock
}

func NewAuthService(userRepo *repository.UserRepository, users *UserService, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		users:    users,
		tokens:   tokens,
		logger:   logger,
		now:      utcNow,
	}
}

// Login checks the credentials of an active user and issues a token.
// Unknown email, inactive user and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("login rejected: unknown or inactive user")
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Info("login rejected", zap.Uint("user_id", user.ID))
		return nil, ErrUnauthorized
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to stamp last login: %w", err)
	}
	user.LastLoginAt = &now

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.Uint("user_id", user.ID))

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(mapper.TimeFormat),
		User:      mapper.ToUserDTO(user),
	}, nil
}

// Register creates an account with the User role
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.UserDTO, error) {
	return s.users.Create(ctx, &domain.CreateUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		Role:      domain.RoleUser,
	})
}

// ChangePassword replaces the caller's password after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, req *domain.ChangePasswordRequest) error {
	user, err := s.currentUser(ctx)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return NewValidationError("currentPassword hatalı")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash, s.now()); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password changed", zap.Uint("user_id", user.ID))
	return nil
}

// Me returns the authenticated caller
func (s *AuthService) Me(ctx context.Context) (*domain.UserDTO, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

func (s *AuthService) currentUser(ctx context.Context) (*domain.User, error) {
	id := auth.UserIDFromContext(ctx)
	if id == 0 {
		return nil, ErrUnauthorized
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
