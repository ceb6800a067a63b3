package handler

import (
	"net/http"

	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/service"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

func activityFilters(r *http.Request) (*domain.ActivityFilters, error) {
	filters := &domain.ActivityFilters{}

	var err error
	if filters.CompanyID, err = optionalUint(r, "companyId"); err != nil {
		return nil, err
	}
	if filters.OpportunityID, err = optionalUint(r, "opportunityId"); err != nil {
		return nil, err
	}
	if filters.Type, err = optionalEnum(r, domain.ParseActivityType, "type", "tip"); err != nil {
		return nil, err
	}
	return filters, nil
}

// List godoc
// @Summary List activities
// @Description Paginated activity list, latest occurrence first
// @Tags Activities
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(10)
// @Param companyId query int false "Filter by company"
// @Param opportunityId query int false "Filter by opportunity"
// @Param type query string false "Filter by type" Enums(Phone, Email, Meeting, Note, Task)
// @Success 200 {object} domain.APIResponse{data=[]domain.ActivityDTO}
// @Failure 400 {object} domain.APIResponse
// @Security BearerAuth
// @Router /activities [get]
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := activityFilters(r)
	if err != nil {
		handleError(w, r, h.logger, err, "invalid activity filters")
		return
	}

	page, err := h.activityService.List(r.Context(), filters, parsePagination(r))
	if err != nil {
		handleError(w, r, h.logger, err, "failed to list activities")
		return
	}
	respondPage(w, page)
}

// GetByID godoc
// @Summary Get activity
// @Tags Activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} domain.APIResponse{data=domain.ActivityDTO}
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /activities/{id} [get]
func (h *ActivityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	activity, err := h.activityService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to get activity")
		return
	}
	respondData(w, http.StatusOK, activity)
}

// Create godoc
// @Summary Log activity
// @Description occurredAt defaults to now and userId to the caller
// @Tags Activities
// @Accept json
// @Produce json
// @Param request body domain.CreateActivityRequest true "Activity data"
// @Success 201 {object} domain.APIResponse{data=domain.ActivityDTO}
// @Failure 400 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /activities [post]
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateActivityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	activity, err := h.activityService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to create activity")
		return
	}

	w.Header().Set("Location", "/api/v1/activities/"+formatID(activity.ID))
	respondData(w, http.StatusCreated, activity)
}

// Update godoc
// @Summary Update activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path int true "Activity ID"
// @Param request body domain.UpdateActivityRequest true "Activity data"
// @Success 200 {object} domain.APIResponse{data=domain.ActivityDTO}
// @Failure 400 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /activities/{id} [put]
func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateActivityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	activity, err := h.activityService.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to update activity")
		return
	}
	respondData(w, http.StatusOK, activity)
}

// Delete godoc
// @Summary Delete activity
// @Tags Activities
// @Param id path int true "Activity ID"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /activities/{id} [delete]
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.activityService.Delete(r.Context(), id); err != nil {
		handleError(w, r, h.logger, err, "failed to delete activity")
		return
	}
	respondMessage(w, http.StatusOK, domain.MsgActivityDeleted)
}
