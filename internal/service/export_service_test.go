package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/storage"
	"github.com/tuncrm/crm-api/internal/testutil"
)

type failingStorage struct{}

func (failingStorage) Upload(context.Context, string, string, io.Reader) (int64, error) {
	return 0, errors.New("disk full")
}

func (failingStorage) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func TestExportService(t *testing.T) {
	db, r := setupRepos(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewExportService(r.companies, r.opportunities, r.activities, store, nopLogger())
	svc.now = fixedClock(testNow)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, db, "Sales")
	acme := testutil.CreateTestCompany(t, db, "Acme", "Ankara")
	testutil.CreateTestCompany(t, db, "Other", "İzmir")
	testutil.CreateTestOpportunity(t, db, "Deal", domain.StageWonClosed, "1500.5", acme.ID, user.ID)
	testutil.CreateTestActivity(t, db, "Call", testNow, &acme.ID, nil, user.ID)

	t.Run("companies with filter", func(t *testing.T) {
		file, err := svc.Companies(ctx, &domain.CompanyFilters{City: "ankara"}, false)
		require.NoError(t, err)
		assert.Equal(t, "firmalar-20250315-100000.csv", file.Name)
		assert.True(t, bytes.HasPrefix(file.Data, []byte{0xEF, 0xBB, 0xBF}))
		assert.Contains(t, string(file.Data), "Acme")
		assert.NotContains(t, string(file.Data), "Other")
		assert.Empty(t, file.ArchiveKey)
		assert.False(t, file.ArchiveFailed)
	})

	t.Run("opportunities archived and downloadable", func(t *testing.T) {
		file, err := svc.Opportunities(ctx, nil, true)
		require.NoError(t, err)
		assert.Contains(t, string(file.Data), "1500.50")
		require.NotEmpty(t, file.ArchiveKey)
		assert.True(t, strings.HasPrefix(file.ArchiveKey, "exports/2025/03/firsatlar-"))

		rc, err := svc.OpenArchive(ctx, file.ArchiveKey)
		require.NoError(t, err)
		defer rc.Close()
		stored, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, file.Data, stored)
	})

	t.Run("activities and stage distribution", func(t *testing.T) {
		file, err := svc.Activities(ctx, nil, false)
		require.NoError(t, err)
		assert.Contains(t, string(file.Data), "Call")

		file, err = svc.StageDistribution(ctx, false)
		require.NoError(t, err)
		assert.Contains(t, string(file.Data), "Kazanıldı")
	})

	t.Run("archive lookups", func(t *testing.T) {
		_, err := svc.OpenArchive(ctx, "../etc/passwd")
		assert.True(t, errors.Is(err, ErrInvalidInput))

		_, err = svc.OpenArchive(ctx, "exports/2025/03/missing.csv")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestExportService_ArchiveFailureDegrades(t *testing.T) {
	_, r := setupRepos(t)
	ctx := context.Background()

	svc := NewExportService(r.companies, r.opportunities, r.activities, failingStorage{}, nopLogger())
	file, err := svc.Companies(ctx, nil, true)
	require.NoError(t, err)
	assert.True(t, file.ArchiveFailed)
	assert.Empty(t, file.ArchiveKey)

	svc = NewExportService(r.companies, r.opportunities, r.activities, nil, nopLogger())
	file, err = svc.Companies(ctx, nil, true)
	require.NoError(t, err)
	assert.True(t, file.ArchiveFailed)
}
