package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/testutil"
)

func TestDashboardHandler_Stats(t *testing.T) {
	env := newTestEnv(t, nil)
	company := testutil.CreateTestCompany(t, env.db, "Toros Un", "Mersin")
	testutil.CreateTestOpportunity(t, env.db, "Silo", domain.StageWonClosed, "1000", company.ID, env.caller.ID)
	testutil.CreateTestOpportunity(t, env.db, "Paketleme", domain.StageNegotiation, "", company.ID, env.caller.ID)

	w := env.do(t, http.MethodGet, "/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats domain.DashboardStats
	envelope(t, w, &stats)
	assert.Equal(t, int64(1), stats.TotalCompanies)
	assert.Equal(t, int64(2), stats.TotalOpportunities)
	assert.Equal(t, int64(1), stats.ActiveOpportunities)
	assert.Equal(t, int64(1), stats.WonOpportunities)
}

func TestDashboardHandler_RecentActivities(t *testing.T) {
	env := newTestEnv(t, nil)
	base := time.Now().UTC().Add(-time.Hour)
	for i, title := range []string{"İlk", "İkinci", "Üçüncü"} {
		testutil.CreateTestActivity(t, env.db, title, base.Add(time.Duration(i)*time.Minute), nil, nil, env.caller.ID)
	}

	w := env.do(t, http.MethodGet, "/dashboard/recent-activities?adet=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var activities []domain.ActivityDTO
	envelope(t, w, &activities)
	require.Len(t, activities, 2)
	assert.Equal(t, "Üçüncü", activities[0].Title)
	assert.Equal(t, env.caller.FullName(), activities[0].UserName)
}

func TestDashboardHandler_StageDistribution(t *testing.T) {
	env := newTestEnv(t, nil)
	company := testutil.CreateTestCompany(t, env.db, "Toros Un", "Mersin")
	testutil.CreateTestOpportunity(t, env.db, "Silo", domain.StageWonClosed, "3000", company.ID, env.caller.ID)
	testutil.CreateTestOpportunity(t, env.db, "Paketleme", domain.StageInitialContact, "1000", company.ID, env.caller.ID)
	testutil.CreateTestOpportunity(t, env.db, "Kantar", domain.StageWonClosed, "1000", company.ID, env.caller.ID)

	w := env.do(t, http.MethodGet, "/dashboard/stage-distribution", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rows []domain.StageReport
	envelope(t, w, &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.StageInitialContact, rows[0].Stage)
	assert.Equal(t, domain.StageWonClosed, rows[1].Stage)
	assert.Equal(t, 2, rows[1].Count)
	assert.InDelta(t, 2000.0, rows[1].AverageAmount, 0.001)
}
