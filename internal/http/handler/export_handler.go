package handler

import (
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tuncrm/crm-api/internal/export"
	"github.com/tuncrm/crm-api/internal/service"
	"go.uber.org/zap"
)

// Response headers describing the archive outcome of an export
const (
	HeaderArchiveKey    = "X-Archive-Key"
	HeaderArchiveStatus = "X-Archive-Status"
)

type ExportHandler struct {
	exportService *service.ExportService
	logger        *zap.Logger
}

func NewExportHandler(exportService *service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		logger:        logger,
	}
}

func (h *ExportHandler) send(w http.ResponseWriter, r *http.Request, file *service.ExportFile, err error, action string) {
	if err != nil {
		handleError(w, r, h.logger, err, action)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	if file.ArchiveKey != "" {
		w.Header().Set(HeaderArchiveKey, file.ArchiveKey)
	}
	if file.ArchiveFailed {
		w.Header().Set(HeaderArchiveStatus, "failed")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// Companies godoc
// @Summary Export companies as CSV
// @Description Same filters as the company list, without pagination. archive=true also stores the file.
// @Tags Export
// @Produce text/csv
// @Param search query string false "Search by name, email or phone"
// @Param city query string false "Filter by city"
// @Param archive query bool false "Archive the export"
// @Success 200 {file} file
// @Header 200 {string} X-Archive-Key "Storage key of the archived file"
// @Header 200 {string} X-Archive-Status "failed when archiving did not succeed"
// @Security BearerAuth
// @Router /export/companies [get]
func (h *ExportHandler) Companies(w http.ResponseWriter, r *http.Request) {
	file, err := h.exportService.Companies(r.Context(), companyFilters(r), wantsArchive(r))
	h.send(w, r, file, err, "failed to export companies")
}

// Opportunities godoc
// @Summary Export opportunities as CSV
// @Description Same filters as the opportunity list, without pagination
// @Tags Export
// @Produce text/csv
// @Param search query string false "Search by name or description"
// @Param stage query string false "Filter by stage"
// @Param minAmount query number false "Minimum amount"
// @Param maxAmount query number false "Maximum amount"
// @Param archive query bool false "Archive the export"
// @Success 200 {file} file
// @Failure 400 {object} domain.APIResponse
// @Security BearerAuth
// @Router /export/opportunities [get]
func (h *ExportHandler) Opportunities(w http.ResponseWriter, r *http.Request) {
	filters, err := opportunityFilters(r)
	if err != nil {
		handleError(w, r, h.logger, err, "invalid opportunity filters")
		return
	}
	file, err := h.exportService.Opportunities(r.Context(), filters, wantsArchive(r))
	h.send(w, r, file, err, "failed to export opportunities")
}

// Activities godoc
// @Summary Export activities as CSV
// @Tags Export
// @Produce text/csv
// @Param companyId query int false "Filter by company"
// @Param opportunityId query int false "Filter by opportunity"
// @Param type query string false "Filter by type"
// @Param archive query bool false "Archive the export"
// @Success 200 {file} file
// @Failure 400 {object} domain.APIResponse
// @Security BearerAuth
// @Router /export/activities [get]
func (h *ExportHandler) Activities(w http.ResponseWriter, r *http.Request) {
	filters, err := activityFilters(r)
	if err != nil {
		handleError(w, r, h.logger, err, "invalid activity filters")
		return
	}
	file, err := h.exportService.Activities(r.Context(), filters, wantsArchive(r))
	h.send(w, r, file, err, "failed to export activities")
}

// StageDistribution godoc
// @Summary Export the stage distribution report as CSV
// @Tags Export
// @Produce text/csv
// @Param archive query bool false "Archive the export"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /export/stage-distribution [get]
func (h *ExportHandler) StageDistribution(w http.ResponseWriter, r *http.Request) {
	file, err := h.exportService.StageDistribution(r.Context(), wantsArchive(r))
	h.send(w, r, file, err, "failed to export stage distribution")
}

// Archive godoc
// @Summary Download an archived export
// @Tags Export
// @Produce text/csv
// @Param key path string true "Archive key returned in X-Archive-Key"
// @Success 200 {file} file
// @Failure 400 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /export/archives/{key} [get]
func (h *ExportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	rc, err := h.exportService.OpenArchive(r.Context(), key)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to open export archive")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(key)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("archive download interrupted", zap.String("key", key), zap.Error(err))
	}
}
