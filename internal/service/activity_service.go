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

// ActivityService handles logged interactions. Writes refresh the company list
// cache because company rows carry activity counts.
type ActivityService struct {
	activityRepo    *repository.ActivityRepository
	companyRepo     *repository.CompanyRepository
	opportunityRepo *repository.OpportunityRepository
	userRepo        *repository.UserRepository
	lists           *ListCache
	logger          *zap.Logger
	now             Clock
}

func NewActivityService(
	activityRepo *repository.ActivityRepository,
	companyRepo *repository.CompanyRepository,
	opportunityRepo *repository.OpportunityRepository,
	userRepo *repository.UserRepository,
	lists *ListCache,
	logger *zap.Logger,
) *ActivityService {
	return &ActivityService{
		activityRepo:    activityRepo,
		companyRepo:     companyRepo,
		opportunityRepo: opportunityRepo,
		userRepo:        userRepo,
		lists:           lists,
		logger:          logger,
		now:             utcNow,
	}
}

func (s *ActivityService) List(ctx context.Context, filters *domain.ActivityFilters, p repository.Pagination) (*domain.PaginatedResponse, error) {
	activities, total, err := s.activityRepo.List(ctx, filters, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	return paginated(dtos, total, p), nil
}

func (s *ActivityService) GetByID(ctx context.Context, id uint) (*domain.ActivityDTO, error) {
	a, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "failed to get activity")
	}
	dto := mapper.ToActivityDTO(a)
	return &dto, nil
}

// Create logs an activity. The occurrence defaults to now and the user to the caller.
func (s *ActivityService) Create(ctx context.Context, req *domain.CreateActivityRequest) (*domain.ActivityDTO, error) {
	a := &domain.Activity{}
	if err := s.apply(ctx, a, req); err != nil {
		return nil, err
	}

	a.CreatedAt = s.now()
	if err := s.activityRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}
	s.lists.Invalidate(ctx, companyListPrefix)

	s.logger.Info("activity created",
		zap.Uint("activity_id", a.ID),
		zap.String("type", a.Type.String()),
		zap.Uint("user_id", a.UserID))

	return s.GetByID(ctx, a.ID)
}

func (s *ActivityService) Update(ctx context.Context, id uint, req *domain.UpdateActivityRequest) (*domain.ActivityDTO, error) {
	a, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "failed to get activity")
	}

	// an omitted user keeps the current one rather than switching to the caller
	if req.UserID == 0 {
		req.UserID = a.UserID
	}
	if err := s.apply(ctx, a, req); err != nil {
		return nil, err
	}
	a.Company, a.Opportunity, a.User = nil, nil, nil
	now := s.now()
	a.UpdatedAt = &now

	if err := s.activityRepo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}
	s.lists.Invalidate(ctx, companyListPrefix)

	s.logger.Info("activity updated", zap.Uint("activity_id", a.ID))

	return s.GetByID(ctx, a.ID)
}

func (s *ActivityService) Delete(ctx context.Context, id uint) error {
	if err := s.activityRepo.Delete(ctx, id); err != nil {
		return notFound(err, "failed to delete activity")
	}
	s.lists.Invalidate(ctx, companyListPrefix)

	s.logger.Info("activity deleted", zap.Uint("activity_id", id))
	return nil
}

func (s *ActivityService) apply(ctx context.Context, a *domain.Activity, req *domain.CreateActivityRequest) error {
	if !req.Type.IsValid() {
		return NewValidationError("type " + domain.GetValidationMessage("oneof"))
	}
	occurredAt, err := optionalTime(req.OccurredAt, "occurredAt")
	if err != nil {
		return err
	}

	userID := req.UserID
	if userID == 0 {
		userID = auth.UserIDFromContext(ctx)
	}
	if userID == 0 {
		return NewValidationError("userId " + domain.GetValidationMessage("required"))
	}

	if err := s.ensureReferences(ctx, req.CompanyID, req.OpportunityID, userID); err != nil {
		return err
	}

	a.Title = strings.TrimSpace(req.Title)
	a.Description = strings.TrimSpace(req.Description)
	a.Type = req.Type
	a.CompanyID = req.CompanyID
	a.OpportunityID = req.OpportunityID
	a.UserID = userID
	if occurredAt != nil {
		a.OccurredAt = *occurredAt
	} else if a.OccurredAt.IsZero() {
		a.OccurredAt = s.now()
	}
	return nil
}

func (s *ActivityService) ensureReferences(ctx context.Context, companyID, opportunityID *uint, userID uint) error {
	if companyID != nil {
		exists, err := s.companyRepo.Exists(ctx, *companyID)
		if err != nil {
			return fmt.Errorf("failed to check company: %w", err)
		}
		if !exists {
			return fmt.Errorf("company %d: %w", *companyID, ErrNotFound)
		}
	}
	if opportunityID != nil {
		if _, err := s.opportunityRepo.GetByID(ctx, *opportunityID); err != nil {
			return notFound(err, fmt.Sprintf("opportunity %d", *opportunityID))
		}
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return notFound(err, fmt.Sprintf("user %d", userID))
	}
	return nil
}
