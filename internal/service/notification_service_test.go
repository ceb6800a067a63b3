package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/notify"
	"github.com/tuncrm/crm-api/internal/testutil"
)

func TestNotificationService_Sweep(t *testing.T) {
	db, r := setupRepos(t)
	notifier := &recordingNotifier{}
	svc := NewNotificationService(r.tasks, r.opportunities, r.activities, r.users, notifier, 7*24*time.Hour, nopLogger())
	svc.now = fixedClock(testNow)
	ctx := context.Background()

	manager := testutil.CreateTestUser(t, db, "Manager")
	require.NoError(t, db.Model(manager).Update("role", domain.RoleManager).Error)
	sales := testutil.CreateTestUser(t, db, "Sales")
	company := testutil.CreateTestCompany(t, db, "Acme", "Ankara")

	yesterday := testNow.Add(-24 * time.Hour)
	laterToday := testNow.Add(5 * time.Hour)
	late := testutil.CreateTestTask(t, db, "late", domain.TaskStatusPending, &yesterday)
	require.NoError(t, db.Model(late).Update("assignee_id", sales.ID).Error)
	testutil.CreateTestTask(t, db, "today", domain.TaskStatusInProgress, &laterToday)

	stale := testutil.CreateTestOpportunity(t, db, "stale", domain.StageProposalSent, "", company.ID, sales.ID)
	require.NoError(t, db.Model(stale).Update("created_at", testNow.AddDate(0, 0, -10)).Error)
	closedOld := testutil.CreateTestOpportunity(t, db, "closed", domain.StageWonClosed, "", company.ID, sales.ID)
	require.NoError(t, db.Model(closedOld).Update("created_at", testNow.AddDate(0, 0, -30)).Error)
	testutil.CreateTestOpportunity(t, db, "fresh", domain.StageNegotiation, "", company.ID, sales.ID)

	testutil.CreateTestActivity(t, db, "tomorrow", testNow.Add(24*time.Hour), &company.ID, nil, sales.ID)
	testutil.CreateTestActivity(t, db, "today", testNow, nil, nil, sales.ID)

	result, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.OverdueTasks)
	assert.Equal(t, 1, result.TasksDueToday)
	assert.Equal(t, 1, result.StaleOpportunities)
	assert.Equal(t, 1, result.UpcomingActivities)
	assert.Equal(t, 4, result.Delivered)
	assert.Zero(t, result.Failed)

	overdue := notifier.byKind(notify.KindOverdueTasks)
	require.NotNil(t, overdue)
	assert.ElementsMatch(t, []string{manager.Email, sales.Email}, overdue.Recipients)
	assert.Equal(t, late.ID, overdue.Items[0].ID)

	staleMsg := notifier.byKind(notify.KindStaleOpportunities)
	require.NotNil(t, staleMsg)
	assert.Equal(t, "stale", staleMsg.Items[0].Title)
	assert.Contains(t, staleMsg.Items[0].Detail, "10 gündür")

	upcoming := notifier.byKind(notify.KindUpcomingActivities)
	require.NotNil(t, upcoming)
	assert.Equal(t, "tomorrow", upcoming.Items[0].Title)
}

func TestNotificationService_SweepCountsFailures(t *testing.T) {
	db, r := setupRepos(t)
	notifier := &recordingNotifier{fail: map[notify.Kind]error{notify.KindOverdueTasks: errors.New("smtp down")}}
	svc := NewNotificationService(r.tasks, r.opportunities, r.activities, r.users, notifier, 0, nopLogger())
	svc.now = fixedClock(testNow)

	yesterday := testNow.Add(-24 * time.Hour)
	testutil.CreateTestTask(t, db, "late", domain.TaskStatusPending, &yesterday)

	result, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Zero(t, result.Delivered)
	assert.Empty(t, notifier.sent)
	assert.Equal(t, DefaultStaleOpportunityAge, svc.staleAfter)
}
