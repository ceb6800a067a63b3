package handler

import (
	"net/http"

	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/service"
	"go.uber.org/zap"
)

type OpportunityHandler struct {
	opportunityService *service.OpportunityService
	logger             *zap.Logger
}

func NewOpportunityHandler(opportunityService *service.OpportunityService, logger *zap.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		opportunityService: opportunityService,
		logger:             logger,
	}
}

// opportunityFilters reads the list filters shared by the list and export endpoints
func opportunityFilters(r *http.Request) (*domain.OpportunityFilters, error) {
	filters := &domain.OpportunityFilters{Search: queryParam(r, "search", "arama")}

	var err error
	if filters.Stage, err = optionalEnum(r, domain.ParseStage, "stage", "asama"); err != nil {
		return nil, err
	}
	if filters.MinAmount, err = optionalFloat(r, "minAmount", "minTutar"); err != nil {
		return nil, err
	}
	if filters.MaxAmount, err = optionalFloat(r, "maxAmount", "maxTutar"); err != nil {
		return nil, err
	}
	if filters.CompanyID, err = optionalUint(r, "companyId"); err != nil {
		return nil, err
	}
	if filters.UserID, err = optionalUint(r, "userId"); err != nil {
		return nil, err
	}
	return filters, nil
}

// List godoc
// @Summary List opportunities
// @Description Paginated opportunity list, newest first. Search matches name and description.
// @Tags Opportunities
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(10)
// @Param search query string false "Search by name or description"
// @Param stage query string false "Filter by stage" Enums(InitialContact, ProposalPreparation, ProposalSent, Negotiation, WonClosed, LostClosed)
// @Param minAmount query number false "Minimum amount"
// @Param maxAmount query number false "Maximum amount"
// @Param companyId query int false "Filter by company"
// @Param userId query int false "Filter by owner"
// @Success 200 {object} domain.APIResponse{data=[]domain.OpportunityDTO}
// @Failure 400 {object} domain.APIResponse
// @Security BearerAuth
// @Router /opportunities [get]
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := opportunityFilters(r)
	if err != nil {
		handleError(w, r, h.logger, err, "invalid opportunity filters")
		return
	}

	page, err := h.opportunityService.List(r.Context(), filters, parsePagination(r))
	if err != nil {
		handleError(w, r, h.logger, err, "failed to list opportunities")
		return
	}
	respondPage(w, page)
}

// GetByID godoc
// @Summary Get opportunity
// @Tags Opportunities
// @Produce json
// @Param id path int true "Opportunity ID"
// @Success 200 {object} domain.APIResponse{data=domain.OpportunityDTO}
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /opportunities/{id} [get]
func (h *OpportunityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	opportunity, err := h.opportunityService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to get opportunity")
		return
	}
	respondData(w, http.StatusOK, opportunity)
}

// Create godoc
// @Summary Create opportunity
// @Description Entering WonClosed or LostClosed stamps the closing date.
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param request body domain.CreateOpportunityRequest true "Opportunity data"
// @Success 201 {object} domain.APIResponse{data=domain.OpportunityDTO}
// @Failure 400 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /opportunities [post]
func (h *OpportunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOpportunityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	opportunity, err := h.opportunityService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to create opportunity")
		return
	}

	w.Header().Set("Location", "/api/v1/opportunities/"+formatID(opportunity.ID))
	respondData(w, http.StatusCreated, opportunity)
}

// Update godoc
// @Summary Update opportunity
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param id path int true "Opportunity ID"
// @Param request body domain.UpdateOpportunityRequest true "Opportunity data"
// @Success 200 {object} domain.APIResponse{data=domain.OpportunityDTO}
// @Failure 400 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /opportunities/{id} [put]
func (h *OpportunityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateOpportunityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	opportunity, err := h.opportunityService.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to update opportunity")
		return
	}
	respondData(w, http.StatusOK, opportunity)
}

// UpdateStage godoc
// @Summary Move opportunity to another stage
// @Description Any stage may follow any other. The closing date is kept when a closed opportunity is reopened.
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param id path int true "Opportunity ID"
// @Param request body domain.UpdateStageRequest true "Target stage"
// @Success 200 {object} domain.APIResponse{data=domain.OpportunityDTO}
// @Failure 400 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /opportunities/{id}/stage [patch]
func (h *OpportunityHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	opportunity, err := h.opportunityService.UpdateStage(r.Context(), id, req.Stage)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to update opportunity stage")
		return
	}
	respondData(w, http.StatusOK, opportunity)
}

// Delete godoc
// @Summary Delete opportunity
// @Tags Opportunities
// @Param id path int true "Opportunity ID"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /opportunities/{id} [delete]
func (h *OpportunityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.opportunityService.Delete(r.Context(), id); err != nil {
		handleError(w, r, h.logger, err, "failed to delete opportunity")
		return
	}
	respondMessage(w, http.StatusOK, domain.MsgOpportunityDeleted)
}
