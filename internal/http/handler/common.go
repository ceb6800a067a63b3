package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tuncrm/crm-api/internal/auth"
	"github.com/tuncrm/crm-api/internal/domain"
	applog "github.com/tuncrm/crm-api/internal/logger"
	"github.com/tuncrm/crm-api/internal/repository"
	"github.com/tuncrm/crm-api/internal/service"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxBodyBytes caps decoded request bodies
const maxBodyBytes = 1 << 20

var (
	validate   = newValidator()
	fieldTitle = cases.Title(language.Und, cases.NoLower)
)

// newValidator reports fields by their json name
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondData wraps data in a success envelope
func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, domain.APIResponse{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, domain.APIResponse{Success: true, Message: message})
}

// respondPage always fills the pagination fields of the envelope
func respondPage(w http.ResponseWriter, page *domain.PaginatedResponse) {
	total, p, size := page.Total, page.Page, page.PageSize
	respondJSON(w, http.StatusOK, domain.APIResponse{
		Success:    true,
		Data:       page.Data,
		TotalCount: &total,
		Page:       &p,
		PageSize:   &size,
	})
}

// respondWithError sends a failure envelope
func respondWithError(w http.ResponseWriter, status int, message string, details ...string) {
	respondJSON(w, status, domain.APIResponse{Success: false, Message: message, Errors: details})
}

// respondValidationError lists one message per failing field
func respondValidationError(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		respondWithError(w, http.StatusBadRequest, domain.MsgValidationFailed)
		return
	}
	messages := make([]string, 0, len(ve))
	for _, fe := range ve {
		messages = append(messages, formatValidationError(fe))
	}
	respondWithError(w, http.StatusBadRequest, domain.MsgValidationFailed, messages...)
}

// formatValidationError renders "<Field> <message>", e.g. "CompanyId zorunludur"
func formatValidationError(fe validator.FieldError) string {
	field := fieldTitle.String(fe.Field())
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("%s en fazla %s karakter olabilir", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s en az %s karakter olmalıdır", field, fe.Param())
	default:
		return field + " " + domain.GetValidationMessage(fe.Tag())
	}
}

// handleError maps service errors onto status codes. Unexpected errors are
// logged under a fresh error id that is the only detail the caller sees.
func handleError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, action string) {
	var verr *service.ValidationError
	var conflict *service.ConflictError

	switch {
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, domain.MsgValidationFailed, verr.Fields...)
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, domain.MsgValidationFailed)
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, domain.MsgNotFound)
	case errors.As(err, &conflict):
		respondWithError(w, http.StatusConflict, conflict.Message)
	case errors.Is(err, service.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, domain.MsgUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		respondWithError(w, http.StatusForbidden, domain.MsgForbidden)
	default:
		errorID := uuid.NewString()
		log := applog.WithRequest(logger, r.Method, r.URL.Path, r.Header.Get("X-Request-ID"))
		if caller, ok := auth.FromContext(r.Context()); ok {
			log = applog.WithUser(log, caller.UserID, caller.Email)
		}
		log.Error(action, zap.String("error_id", errorID), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf(domain.MsgInternalWithID, errorID))
	}
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, domain.MsgInvalidBody, err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondValidationError(w, err)
		return false
	}
	return true
}

// parseID reads a positive integer route parameter
func parseID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		respondWithError(w, http.StatusBadRequest, domain.MsgInvalidID)
		return 0, false
	}
	return uint(id), true
}

// queryParam returns the first non-empty value among the given names
func queryParam(r *http.Request, names ...string) string {
	q := r.URL.Query()
	for _, name := range names {
		if v := strings.TrimSpace(q.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

// parsePagination reads page/pageSize (sayfa/sayfaBoyutu); bad values fall back to defaults
func parsePagination(r *http.Request) repository.Pagination {
	page, _ := strconv.Atoi(queryParam(r, "page", "sayfa"))
	pageSize, _ := strconv.Atoi(queryParam(r, "pageSize", "sayfaBoyutu"))
	return repository.NewPagination(page, pageSize)
}

// optionalUint parses an optional id query parameter
func optionalUint(r *http.Request, names ...string) (*uint, error) {
	raw := queryParam(r, names...)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, service.NewValidationError(names[0] + " geçerli bir sayı olmalıdır")
	}
	v := uint(n)
	return &v, nil
}

func optionalFloat(r *http.Request, names ...string) (*float64, error) {
	raw := queryParam(r, names...)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, service.NewValidationError(names[0] + " geçerli bir sayı olmalıdır")
	}
	return &f, nil
}

// optionalEnum parses an optional enum query parameter with parse
func optionalEnum[E any](r *http.Request, parse func(string) (E, error), names ...string) (*E, error) {
	raw := queryParam(r, names...)
	if raw == "" {
		return nil, nil
	}
	v, err := parse(raw)
	if err != nil {
		return nil, service.NewValidationError(names[0] + " " + domain.GetValidationMessage("oneof"))
	}
	return &v, nil
}

// wantsArchive reads the archive flag of export endpoints
func wantsArchive(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("archive"))
	return v
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
