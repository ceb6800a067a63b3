package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/health", "/health/db", "/health/ready"} {
		t.Run(path, func(t *testing.T) {
			w := env.send(t, http.MethodGet, path, nil, "")
			require.Equal(t, http.StatusOK, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "healthy", body["status"])
		})
	}
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	env := newTestEnv(t, nil)
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	for _, path := range []string{"/health/db", "/health/ready"} {
		t.Run(path, func(t *testing.T) {
			w := env.send(t, http.MethodGet, path, nil, "")
			assert.Equal(t, http.StatusServiceUnavailable, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "unhealthy", body["status"])
		})
	}

	w := env.send(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
