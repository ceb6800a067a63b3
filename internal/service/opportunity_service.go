package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tuncrm/crm-api/internal/auth"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/events"
	"github.com/tuncrm/crm-api/internal/mapper"
	"github.com/tuncrm/crm-api/internal/repository"
	"go.uber.org/zap"
)

// OpportunityService owns the opportunity lifecycle. Stages may move freely;
// entering a terminal stage stamps the closing date, leaving one never clears it.
type OpportunityService struct {
	opportunityRepo *repository.OpportunityRepository
	companyRepo     *repository.CompanyRepository
	userRepo        *repository.UserRepository
	publisher       events.Publisher
	lists           *ListCache
	logger          *zap.Logger
	now             Clock
}

func NewOpportunityService(
	opportunityRepo *repository.OpportunityRepository,
	companyRepo *repository.CompanyRepository,
	userRepo *repository.UserRepository,
	publisher events.Publisher,
	lists *ListCache,
	logger *zap.Logger,
) *OpportunityService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &OpportunityService{
		opportunityRepo: opportunityRepo,
		companyRepo:     companyRepo,
		userRepo:        userRepo,
		publisher:       publisher,
		lists:           lists,
		logger:          logger,
		now:             utcNow,
	}
}

func (s *OpportunityService) List(ctx context.Context, filters *domain.OpportunityFilters, p repository.Pagination) (*domain.PaginatedResponse, error) {
	if filters != nil && filters.MinAmount != nil && filters.MaxAmount != nil && *filters.MinAmount > *filters.MaxAmount {
		return nil, NewValidationError("minAmount maxAmount değerinden büyük olamaz")
	}

	opportunities, total, err := s.opportunityRepo.List(ctx, filters, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}

	dtos := make([]domain.OpportunityDTO, len(opportunities))
	for i := range opportunities {
		dtos[i] = mapper.ToOpportunityDTO(&opportunities[i])
	}
	return paginated(dtos, total, p), nil
}

func (s *OpportunityService) GetByID(ctx context.Context, id uint) (*domain.OpportunityDTO, error) {
	o, err := s.opportunityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "failed to get opportunity")
	}
	dto := mapper.ToOpportunityDTO(o)
	return &dto, nil
}

func (s *OpportunityService) Create(ctx context.Context, req *domain.CreateOpportunityRequest) (*domain.OpportunityDTO, error) {
	if err := validateOpportunityRequest(req); err != nil {
		return nil, err
	}
	if err := s.ensureReferences(ctx, req.CompanyID, req.UserID); err != nil {
		return nil, err
	}

	now := s.now()
	o := &domain.Opportunity{}
	applyOpportunityRequest(o, req)
	o.CreatedAt = now
	if o.Stage.IsTerminal() {
		o.ClosingDate = &now
	}

	if err := s.opportunityRepo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}
	s.lists.Invalidate(ctx, companyListPrefix)

	s.logger.Info("opportunity created",
		zap.Uint("opportunity_id", o.ID),
		zap.String("name", o.Name),
		zap.String("stage", o.Stage.String()))
	s.publish(ctx, events.TypeOpportunityCreated, o, events.StageChanged{
		OpportunityID: o.ID,
		Name:          o.Name,
		To:            o.Stage.String(),
		ClosingDate:   o.ClosingDate,
		ChangedBy:     auth.UserIDFromContext(ctx),
	})

	return s.GetByID(ctx, o.ID)
}

// Update replaces every editable field. A stage change follows the same rules as UpdateStage.
func (s *OpportunityService) Update(ctx context.Context, id uint, req *domain.UpdateOpportunityRequest) (*domain.OpportunityDTO, error) {
	if err := validateOpportunityRequest(req); err != nil {
		return nil, err
	}

	o, err := s.opportunityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "failed to get opportunity")
	}
	if err := s.ensureReferences(ctx, req.CompanyID, req.UserID); err != nil {
		return nil, err
	}

	previous, previousCompany := o.Stage, o.CompanyID
	now := s.now()
	applyOpportunityRequest(o, req)
	o.Company, o.User = nil, nil
	o.UpdatedAt = &now
	if o.Stage.IsTerminal() {
		o.ClosingDate = &now
	}

	if err := s.opportunityRepo.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to update opportunity: %w", err)
	}
	// company rows carry opportunity counts
	if o.CompanyID != previousCompany {
		s.lists.Invalidate(ctx, companyListPrefix)
	}

	s.logger.Info("opportunity updated",
		zap.Uint("opportunity_id", o.ID),
		zap.String("name", o.Name))
	if previous != o.Stage {
		s.stageChanged(ctx, o, previous)
	}

	return s.GetByID(ctx, o.ID)
}

// UpdateStage moves the opportunity to stage. Any stage may follow any other.
func (s *OpportunityService) UpdateStage(ctx context.Context, id uint, stage domain.Stage) (*domain.OpportunityDTO, error) {
	if !stage.IsValid() {
		return nil, NewValidationError("stage " + domain.GetValidationMessage("oneof"))
	}

	o, err := s.opportunityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "failed to get opportunity")
	}

	previous := o.Stage
	now := s.now()
	var closing *time.Time
	if stage.IsTerminal() {
		closing = &now
	}

	if err := s.opportunityRepo.UpdateStage(ctx, id, stage, closing, now); err != nil {
		return nil, notFound(err, "failed to update opportunity stage")
	}

	o.Stage = stage
	o.UpdatedAt = &now
	if closing != nil {
		o.ClosingDate = closing
	}

	if previous != stage {
		s.logger.Info("opportunity stage changed",
			zap.Uint("opportunity_id", id),
			zap.String("from", previous.String()),
			zap.String("to", stage.String()))
		s.stageChanged(ctx, o, previous)
	}

	dto := mapper.ToOpportunityDTO(o)
	return &dto, nil
}

func (s *OpportunityService) Delete(ctx context.Context, id uint) error {
	if err := s.opportunityRepo.Delete(ctx, id); err != nil {
		return notFound(err, "failed to delete opportunity")
	}
	s.lists.Invalidate(ctx, companyListPrefix)

	s.logger.Info("opportunity deleted", zap.Uint("opportunity_id", id))
	s.publish(ctx, events.TypeOpportunityDeleted, &domain.Opportunity{BaseModel: domain.BaseModel{ID: id}},
		events.StageChanged{OpportunityID: id, ChangedBy: auth.UserIDFromContext(ctx)})
	return nil
}

func (s *OpportunityService) stageChanged(ctx context.Context, o *domain.Opportunity, from domain.Stage) {
	s.publish(ctx, events.TypeOpportunityStageChanged, o, events.StageChanged{
		OpportunityID: o.ID,
		Name:          o.Name,
		From:          from.String(),
		To:            o.Stage.String(),
		ClosingDate:   o.ClosingDate,
		ChangedBy:     auth.UserIDFromContext(ctx),
	})
}

// publish never fails the request; broker problems are logged
func (s *OpportunityService) publish(ctx context.Context, eventType string, o *domain.Opportunity, payload events.StageChanged) {
	event, err := events.NewEvent(eventType, "opportunity-"+strconv.FormatUint(uint64(o.ID), 10), payload, s.now())
	if err == nil {
		err = s.publisher.Publish(ctx, event)
	}
	if err != nil {
		s.logger.Warn("failed to publish opportunity event",
			zap.String("type", eventType),
			zap.Uint("opportunity_id", o.ID),
			zap.Error(err))
	}
}

func (s *OpportunityService) ensureReferences(ctx context.Context, companyID, userID uint) error {
	exists, err := s.companyRepo.Exists(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to check company: %w", err)
	}
	if !exists {
		return fmt.Errorf("company %d: %w", companyID, ErrNotFound)
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return notFound(err, fmt.Sprintf("user %d", userID))
	}
	return nil
}

func validateOpportunityRequest(req *domain.CreateOpportunityRequest) error {
	var fields []string
	if !req.Stage.IsValid() {
		fields = append(fields, "stage "+domain.GetValidationMessage("oneof"))
	}
	if req.Amount != nil && *req.Amount < 0 {
		fields = append(fields, "amount "+domain.GetValidationMessage("gte"))
	}
	if len(fields) > 0 {
		return NewValidationError(fields...)
	}
	return nil
}

func applyOpportunityRequest(o *domain.Opportunity, req *domain.CreateOpportunityRequest) {
	o.Name = strings.TrimSpace(req.Name)
	o.Description = strings.TrimSpace(req.Description)
	o.Stage = req.Stage
	o.CompanyID = req.CompanyID
	o.UserID = req.UserID
	if req.Amount != nil {
		o.Amount = decimal.NewNullDecimal(decimal.NewFromFloat(*req.Amount).Round(2))
	} else {
		o.Amount = decimal.NullDecimal{}
	}
}
