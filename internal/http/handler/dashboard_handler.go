package handler

import (
	"net/http"
	"strconv"

	"github.com/tuncrm/crm-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

func (h *DashboardHandler) respond(w http.ResponseWriter, r *http.Request, action string, data interface{}, err error) {
	if err != nil {
		handleError(w, r, h.logger, err, action)
		return
	}
	respondData(w, http.StatusOK, data)
}

// Stats godoc
// @Summary Dashboard counters
// @Description Companies, opportunities (total, active, won), activities (total, this month), tasks (active, overdue)
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.APIResponse{data=domain.DashboardStats}
// @Security BearerAuth
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboardService.Stats(r.Context())
	h.respond(w, r, "failed to compute dashboard stats", data, err)
}

// StageDistribution godoc
// @Summary Opportunities per stage
// @Description Only stages holding at least one opportunity, in pipeline order
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.StageReport}
// @Security BearerAuth
// @Router /dashboard/stage-distribution [get]
func (h *DashboardHandler) StageDistribution(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboardService.StageDistribution(r.Context())
	h.respond(w, r, "failed to compute stage distribution", data, err)
}

// ActivityTrend godoc
// @Summary Activities per month
// @Description The last six calendar months, oldest first
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.MonthlyCount}
// @Security BearerAuth
// @Router /dashboard/activity-trend [get]
func (h *DashboardHandler) ActivityTrend(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboardService.ActivityTrend(r.Context())
	h.respond(w, r, "failed to compute activity trend", data, err)
}

// RevenueTrend godoc
// @Summary Won revenue per month
// @Description Amounts of WonClosed opportunities bucketed by closing month, last six months
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.MonthlyAmount}
// @Security BearerAuth
// @Router /dashboard/revenue-trend [get]
func (h *DashboardHandler) RevenueTrend(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboardService.RevenueTrend(r.Context())
	h.respond(w, r, "failed to compute revenue trend", data, err)
}

// CityDistribution godoc
// @Summary Companies per city
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.CityReport}
// @Security BearerAuth
// @Router /dashboard/city-distribution [get]
func (h *DashboardHandler) CityDistribution(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboardService.CityDistribution(r.Context())
	h.respond(w, r, "failed to compute city distribution", data, err)
}

// TaskStatusDistribution godoc
// @Summary Active tasks per status
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.TaskStatusReport}
// @Security BearerAuth
// @Router /dashboard/task-status-distribution [get]
func (h *DashboardHandler) TaskStatusDistribution(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboardService.TaskStatusDistribution(r.Context())
	h.respond(w, r, "failed to compute task status distribution", data, err)
}

// RecentActivities godoc
// @Summary Latest activities
// @Tags Dashboard
// @Produce json
// @Param count query int false "Number of activities (max 100)" default(10)
// @Success 200 {object} domain.APIResponse{data=[]domain.ActivityDTO}
// @Security BearerAuth
// @Router /dashboard/recent-activities [get]
func (h *DashboardHandler) RecentActivities(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(queryParam(r, "count", "adet"))
	data, err := h.dashboardService.RecentActivities(r.Context(), count)
	h.respond(w, r, "failed to load recent activities", data, err)
}
