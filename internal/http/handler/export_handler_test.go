package handler_test

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/http/handler"
	"github.com/tuncrm/crm-api/internal/storage"
	"github.com/tuncrm/crm-api/internal/testutil"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func TestExportHandler_Companies(t *testing.T) {
	env := newTestEnv(t, nil)
	testutil.CreateTestCompany(t, env.db, "Çukurova Gıda", "Adana")

	w := env.do(t, http.MethodGet, "/export/companies", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), `attachment; filename="firmalar-`))
	assert.Empty(t, w.Header().Get(handler.HeaderArchiveStatus))
	assert.Empty(t, w.Header().Get(handler.HeaderArchiveKey))

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, utf8BOM))
	assert.Contains(t, string(body), "Çukurova Gıda")
}

func TestExportHandler_ArchiveWithoutStorage(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/export/opportunities?archive=true", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "failed", w.Header().Get(handler.HeaderArchiveStatus))
	assert.Empty(t, w.Header().Get(handler.HeaderArchiveKey))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), utf8BOM))
}

func TestExportHandler_ArchiveRoundTrip(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	env := newTestEnv(t, store)
	company := testutil.CreateTestCompany(t, env.db, "Karadeniz Enerji", "Trabzon")
	testutil.CreateTestOpportunity(t, env.db, "Rüzgar santrali", domain.StageNegotiation, "500000", company.ID, env.caller.ID)

	w := env.do(t, http.MethodGet, "/export/stage-distribution?archive=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	key := w.Header().Get(handler.HeaderArchiveKey)
	require.NotEmpty(t, key)
	assert.True(t, strings.HasPrefix(key, "exports/"))
	exported := w.Body.String()

	w = env.do(t, http.MethodGet, "/export/archives/"+key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, exported, w.Body.String())
	assert.Contains(t, exported, "Müzakere")
}

func TestExportHandler_ArchiveNotFound(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	env := newTestEnv(t, store)

	w := env.do(t, http.MethodGet, "/export/archives/exports/2025/01/missing.csv", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
