package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/auth"
	"github.com/tuncrm/crm-api/internal/cache"
	"github.com/tuncrm/crm-api/internal/config"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/http/handler"
	"github.com/tuncrm/crm-api/internal/repository"
	"github.com/tuncrm/crm-api/internal/service"
	"github.com/tuncrm/crm-api/internal/storage"
	"github.com/tuncrm/crm-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testEnv wires real services over an in-memory database
type testEnv struct {
	db     *gorm.DB
	router chi.Router
	caller *domain.User
	tokens *auth.TokenManager
}

func newTestEnv(t *testing.T, store storage.Storage) *testEnv {
	t.Helper()
	log := zap.NewNop()
	db := testutil.SetupTestDB(t)

	companyRepo := repository.NewCompanyRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	tokens := auth.NewTokenManager(&config.SecurityConfig{
		JWTSecret:   "handler-test-secret-with-enough-bytes",
		JWTIssuer:   "TunCRM",
		JWTAudience: "TunCRM_Users",
		TokenTTL:    60,
	})
	lists := service.NewListCache(cache.NewMemoryCache(cache.Expiry{Absolute: time.Minute, Sliding: time.Minute}), true, log)
	userService := service.NewUserService(userRepo, log)
	taskService := service.NewTaskService(taskRepo, userRepo, companyRepo, opportunityRepo, log)

	companies := handler.NewCompanyHandler(service.NewCompanyService(companyRepo, lists, log), log)
	opportunities := handler.NewOpportunityHandler(service.NewOpportunityService(opportunityRepo, companyRepo, userRepo, nil, lists, log), log)
	activities := handler.NewActivityHandler(service.NewActivityService(activityRepo, companyRepo, opportunityRepo, userRepo, lists, log), log)
	users := handler.NewUserHandler(userService, taskService, log)
	tasks := handler.NewTaskHandler(taskService, log)
	dashboard := handler.NewDashboardHandler(service.NewDashboardService(companyRepo, opportunityRepo, activityRepo, taskRepo, log), log)
	authH := handler.NewAuthHandler(service.NewAuthService(userRepo, userService, tokens, log), log)
	exports := handler.NewExportHandler(service.NewExportService(companyRepo, opportunityRepo, activityRepo, store, log), log)
	health := handler.NewHealthHandler(db, log)

	env := &testEnv{db: db, tokens: tokens}
	env.caller = testutil.CreateTestUser(t, db, "Deniz")

	r := chi.NewRouter()
	r.Get("/health", health.Live)
	r.Get("/health/db", health.Database)
	r.Get("/health/ready", health.Ready)
	r.Post("/auth/login", authH.Login)
	r.Post("/auth/register", authH.Register)

	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(tokens, log).Authenticate)

		r.Get("/auth/me", authH.Me)
		r.Post("/auth/change-password", authH.ChangePassword)

		r.Get("/companies", companies.List)
		r.Post("/companies", companies.Create)
		r.Get("/companies/{id}", companies.GetByID)
		r.Put("/companies/{id}", companies.Update)
		r.Delete("/companies/{id}", companies.Delete)

		r.Get("/opportunities", opportunities.List)
		r.Post("/opportunities", opportunities.Create)
		r.Get("/opportunities/{id}", opportunities.GetByID)
		r.Put("/opportunities/{id}", opportunities.Update)
		r.Patch("/opportunities/{id}/stage", opportunities.UpdateStage)
		r.Delete("/opportunities/{id}", opportunities.Delete)

		r.Get("/activities", activities.List)
		r.Post("/activities", activities.Create)
		r.Get("/activities/{id}", activities.GetByID)
		r.Delete("/activities/{id}", activities.Delete)

		r.Get("/users", users.List)
		r.Post("/users", users.Create)
		r.Get("/users/{id}/tasks", users.Tasks)
		r.Delete("/users/{id}", users.Delete)

		r.Get("/tasks", tasks.List)
		r.Post("/tasks", tasks.Create)
		r.Get("/tasks/overdue", tasks.Overdue)
		r.Get("/tasks/due-today", tasks.DueToday)
		r.Put("/tasks/{id}", tasks.Update)
		r.Delete("/tasks/{id}", tasks.Delete)

		r.Get("/dashboard/stats", dashboard.Stats)
		r.Get("/dashboard/stage-distribution", dashboard.StageDistribution)
		r.Get("/dashboard/recent-activities", dashboard.RecentActivities)

		r.Get("/export/companies", exports.Companies)
		r.Get("/export/opportunities", exports.Opportunities)
		r.Get("/export/stage-distribution", exports.StageDistribution)
		r.Get("/export/archives/*", exports.Archive)
	})

	env.router = r
	return env
}

func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	token, _, err := e.tokens.Issue(e.caller)
	require.NoError(t, err)
	return token
}

// do sends an authenticated request; body may be nil, a string or a value to encode
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return e.send(t, method, path, body, e.token(t))
}

func (e *testEnv) send(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// envelope decodes the response and unpacks data into out when given
func envelope(t *testing.T, w *httptest.ResponseRecorder, out interface{}) domain.APIResponse {
	t.Helper()
	var raw struct {
		domain.APIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(raw.Data, out), string(raw.Data))
	}
	return raw.APIResponse
}

func id(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
