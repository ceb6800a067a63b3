package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/repository"
	"github.com/tuncrm/crm-api/internal/testutil"
	"gorm.io/gorm"
)

func TestTaskRepository_OverdueAndDue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTaskRepository(db)
	ctx := context.Background()

	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	later := now.Add(3 * time.Hour)
	nextWeek := now.AddDate(0, 0, 7)

	testutil.CreateTestTask(t, db, "late", domain.TaskStatusPending, &yesterday)
	testutil.CreateTestTask(t, db, "late but done", domain.TaskStatusCompleted, &yesterday)
	testutil.CreateTestTask(t, db, "today", domain.TaskStatusInProgress, &later)
	testutil.CreateTestTask(t, db, "future", domain.TaskStatusPending, &nextWeek)
	testutil.CreateTestTask(t, db, "undated", domain.TaskStatusPending, nil)
	removed := testutil.CreateTestTask(t, db, "removed", domain.TaskStatusPending, &yesterday)
	require.NoError(t, repo.SoftDelete(ctx, removed.ID, now))

	overdue, err := repo.ListOverdue(ctx, now)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "late", overdue[0].Title)

	count, err := repo.CountOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	start := domain.StartOfDay(now)
	today, err := repo.ListDueBetween(ctx, start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "today", today[0].Title)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestTaskRepository_ListByAssignee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTaskRepository(db)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, db, "Derya")
	soon := time.Date(2024, 7, 16, 9, 0, 0, 0, time.UTC)
	sooner := soon.AddDate(0, 0, -1)

	create := func(title string, priority domain.TaskPriority, due *time.Time) {
		task := &domain.Task{Title: title, Status: domain.TaskStatusPending, Priority: priority,
			DueDate: due, AssigneeID: &user.ID, Active: true}
		require.NoError(t, db.Create(task).Error)
	}
	create("normal undated", domain.TaskPriorityNormal, nil)
	create("normal later", domain.TaskPriorityNormal, &soon)
	create("normal sooner", domain.TaskPriorityNormal, &sooner)
	create("critical", domain.TaskPriorityCritical, &soon)

	tasks, err := repo.ListByAssignee(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
	}
	assert.Equal(t, []string{"critical", "normal sooner", "normal later", "normal undated"}, titles)
	require.NotNil(t, tasks[0].Assignee)
	assert.Equal(t, "Derya", tasks[0].Assignee.FirstName)
}

func TestTaskRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTaskRepository(db)
	ctx := context.Background()

	testutil.CreateTestTask(t, db, "a", domain.TaskStatusPending, nil)
	testutil.CreateTestTask(t, db, "b", domain.TaskStatusCompleted, nil)
	gone := testutil.CreateTestTask(t, db, "c", domain.TaskStatusPending, nil)
	require.NoError(t, repo.SoftDelete(ctx, gone.ID, time.Now().UTC()))

	pending := domain.TaskStatusPending
	items, total, err := repo.List(ctx, &domain.TaskFilters{Status: &pending}, repository.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "a", items[0].Title)

	_, err = repo.GetByID(ctx, gone.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
