package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/auth"
	"github.com/tuncrm/crm-api/internal/config"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/http/middleware"
	"go.uber.org/zap"
)

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, path, remoteAddr string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	for _, m := range mutate {
		m(req)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1}, zap.NewNop())
	calls := 0
	h := rl.LimitByIP(okHandler(&calls))

	for i := 0; i < 30; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "/api/v1/companies", "192.168.1.1:1234").Code)
	}
	assert.Equal(t, 30, calls)
}

func TestRateLimiter_Whitelists(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 2,
		WhitelistIPs:      []string{"10.0.0.1"},
		WhitelistPaths:    []string{"/health", "/swagger/*"},
	}, zap.NewNop())
	calls := 0
	h := rl.LimitByIP(okHandler(&calls))

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "/health", "192.168.1.1:1234").Code)
		assert.Equal(t, http.StatusOK, hit(h, "/swagger/index.html", "192.168.1.1:1234").Code)
		assert.Equal(t, http.StatusOK, hit(h, "/api/v1/tasks", "10.0.0.1:1234").Code)
		// whitelisted client behind a proxy
		assert.Equal(t, http.StatusOK, hit(h, "/api/v1/tasks", "172.16.0.1:1234", func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
		}).Code)
	}
	assert.Equal(t, 40, calls)
}

func TestRateLimiter_PrefixWhitelistNeedsSeparator(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistPaths:    []string{"/health/*"},
	}, zap.NewNop())
	calls := 0
	h := rl.LimitByIP(okHandler(&calls))

	assert.Equal(t, http.StatusOK, hit(h, "/healthz", "192.168.1.9:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/healthz", "192.168.1.9:1234").Code)
	assert.Equal(t, http.StatusOK, hit(h, "/health/db", "192.168.1.9:1234").Code)
}

func TestRateLimiter_LimitExceeded(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 3}, zap.NewNop())
	calls := 0
	h := rl.LimitByIP(okHandler(&calls))

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(h, "/api/v1/companies", "192.168.1.100:1234").Code)
	}

	w := hit(h, "/api/v1/companies", "192.168.1.100:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	var body domain.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, middleware.MsgRateLimited, body.Message)

	// another client keeps its own budget
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/companies", "192.168.1.101:1234").Code)
	assert.Equal(t, 4, calls)
}

func TestRateLimiter_LimitByUser(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     100,
		RequestsPerMinuteAuth: 2,
	}, zap.NewNop())
	calls := 0
	h := rl.LimitByUser(okHandler(&calls))

	as := func(id uint) func(*http.Request) {
		return func(r *http.Request) {
			*r = *r.WithContext(auth.WithUserContext(r.Context(), &auth.UserContext{UserID: id}))
		}
	}

	// same user from two addresses shares one budget
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/tasks", "192.168.1.1:1", as(5)).Code)
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/tasks", "192.168.1.2:1", as(5)).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/api/v1/tasks", "192.168.1.3:1", as(5)).Code)

	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/tasks", "192.168.1.1:1", as(6)).Code)
}
