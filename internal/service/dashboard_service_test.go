package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/testutil"
)

func TestDashboardService(t *testing.T) {
	db, r := setupRepos(t)
	svc := NewDashboardService(r.companies, r.opportunities, r.activities, r.tasks, nopLogger())
	svc.now = fixedClock(testNow)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, db, "Sales")
	ankara := testutil.CreateTestCompany(t, db, "A", "Ankara")
	testutil.CreateTestCompany(t, db, "B", "Ankara")
	testutil.CreateTestCompany(t, db, "C", "İzmir")
	testutil.CreateTestCompany(t, db, "D", "")

	testutil.CreateTestOpportunity(t, db, "open", domain.StageNegotiation, "100", ankara.ID, user.ID)
	won := testutil.CreateTestOpportunity(t, db, "won", domain.StageWonClosed, "300", ankara.ID, user.ID)
	testutil.CreateTestOpportunity(t, db, "lost", domain.StageLostClosed, "", ankara.ID, user.ID)
	closed := time.Date(2025, time.January, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(won).Update("closing_date", closed).Error)

	testutil.CreateTestActivity(t, db, "this month", testNow.Add(-24*time.Hour), nil, nil, user.ID)
	testutil.CreateTestActivity(t, db, "last month", time.Date(2025, time.February, 3, 9, 0, 0, 0, time.UTC), nil, nil, user.ID)
	testutil.CreateTestActivity(t, db, "too old", time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC), nil, nil, user.ID)

	yesterday := testNow.Add(-24 * time.Hour)
	testutil.CreateTestTask(t, db, "late", domain.TaskStatusPending, &yesterday)
	testutil.CreateTestTask(t, db, "done", domain.TaskStatusCompleted, &yesterday)

	t.Run("stats", func(t *testing.T) {
		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.DashboardStats{
			TotalCompanies:      4,
			TotalOpportunities:  3,
			ActiveOpportunities: 1,
			WonOpportunities:    1,
			TotalActivities:     3,
			ActivitiesThisMonth: 1,
			TotalTasks:          2,
			OverdueTasks:        1,
		}, *stats)
	})

	t.Run("stage distribution", func(t *testing.T) {
		rows, err := svc.StageDistribution(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, domain.StageNegotiation, rows[0].Stage)
		assert.Equal(t, 300.0, rows[1].SumAmount)
		assert.Equal(t, 0.0, rows[2].AverageAmount)
	})

	t.Run("trends", func(t *testing.T) {
		activity, err := svc.ActivityTrend(ctx)
		require.NoError(t, err)
		require.Len(t, activity, 6)
		assert.Equal(t, "Oct 2024", activity[0].Label)
		assert.Equal(t, 1, activity[4].Count)
		assert.Equal(t, 1, activity[5].Count)

		revenue, err := svc.RevenueTrend(ctx)
		require.NoError(t, err)
		require.Len(t, revenue, 6)
		assert.Equal(t, 300.0, revenue[3].Amount)
	})

	t.Run("cities and tasks", func(t *testing.T) {
		cities, err := svc.CityDistribution(ctx)
		require.NoError(t, err)
		require.Len(t, cities, 2)
		assert.Equal(t, domain.CityReport{City: "Ankara", Count: 2}, cities[0])

		statuses, err := svc.TaskStatusDistribution(ctx)
		require.NoError(t, err)
		require.Len(t, statuses, 2)
		assert.Equal(t, domain.TaskStatusPending, statuses[0].Status)
	})

	t.Run("recent activities", func(t *testing.T) {
		recent, err := svc.RecentActivities(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "this month", recent[0].Title)
		assert.Equal(t, "Sales Test", recent[0].UserName)

		all, err := svc.RecentActivities(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}
