package handler

import (
	"net/http"

	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/service"
	"go.uber.org/zap"
)

type CompanyHandler struct {
	companyService *service.CompanyService
	logger         *zap.Logger
}

func NewCompanyHandler(companyService *service.CompanyService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		logger:         logger,
	}
}

func companyFilters(r *http.Request) *domain.CompanyFilters {
	return &domain.CompanyFilters{
		Search: queryParam(r, "search", "arama"),
		City:   queryParam(r, "city", "sehir"),
	}
}

// List godoc
// @Summary List companies
// @Description Paginated company list, newest first. Search matches name, email and phone.
// @Tags Companies
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(10)
// @Param search query string false "Search by name, email or phone"
// @Param city query string false "Filter by city"
// @Success 200 {object} domain.APIResponse{data=[]domain.CompanyDTO}
// @Failure 401 {object} domain.APIResponse
// @Security BearerAuth
// @Router /companies [get]
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.companyService.List(r.Context(), companyFilters(r), parsePagination(r))
	if err != nil {
		handleError(w, r, h.logger, err, "failed to list companies")
		return
	}
	respondPage(w, page)
}

// GetByID godoc
// @Summary Get company
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} domain.APIResponse{data=domain.CompanyDTO}
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /companies/{id} [get]
func (h *CompanyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	company, err := h.companyService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to get company")
		return
	}
	respondData(w, http.StatusOK, company)
}

// Create godoc
// @Summary Create company
// @Tags Companies
// @Accept json
// @Produce json
// @Param request body domain.CreateCompanyRequest true "Company data"
// @Success 201 {object} domain.APIResponse{data=domain.CompanyDTO}
// @Failure 400 {object} domain.APIResponse
// @Failure 409 {object} domain.APIResponse
// @Security BearerAuth
// @Router /companies [post]
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCompanyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	company, err := h.companyService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to create company")
		return
	}

	w.Header().Set("Location", "/api/v1/companies/"+formatID(company.ID))
	respondData(w, http.StatusCreated, company)
}

// Update godoc
// @Summary Update company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path int true "Company ID"
// @Param request body domain.UpdateCompanyRequest true "Company data"
// @Success 200 {object} domain.APIResponse{data=domain.CompanyDTO}
// @Failure 400 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Failure 409 {object} domain.APIResponse
// @Security BearerAuth
// @Router /companies/{id} [put]
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateCompanyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	company, err := h.companyService.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to update company")
		return
	}
	respondData(w, http.StatusOK, company)
}

// Delete godoc
// @Summary Delete company
// @Description Removes the company and its opportunities. Linked activities and tasks are kept with the link cleared.
// @Tags Companies
// @Param id path int true "Company ID"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.companyService.Delete(r.Context(), id); err != nil {
		handleError(w, r, h.logger, err, "failed to delete company")
		return
	}
	respondMessage(w, http.StatusOK, domain.MsgCompanyDeleted)
}
