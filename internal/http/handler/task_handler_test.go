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

func TestTaskHandler_CreateDefaults(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/tasks", map[string]interface{}{
		"title":      "Teklifi gözden geçir",
		"assigneeId": env.caller.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var task domain.TaskDTO
	envelope(t, w, &task)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, domain.TaskPriorityNormal, task.Priority)
	require.NotNil(t, task.CreatorID)
	assert.Equal(t, env.caller.ID, *task.CreatorID)
	assert.Equal(t, env.caller.FullName(), task.AssigneeName)
}

func TestTaskHandler_Overdue(t *testing.T) {
	env := newTestEnv(t, nil)
	past := time.Now().UTC().AddDate(0, 0, -3)
	future := time.Now().UTC().AddDate(0, 0, 10)
	testutil.CreateTestTask(t, env.db, "Gecikmiş", domain.TaskStatusPending, &past)
	testutil.CreateTestTask(t, env.db, "Bitmiş", domain.TaskStatusCompleted, &past)
	testutil.CreateTestTask(t, env.db, "İleride", domain.TaskStatusPending, &future)

	w := env.do(t, http.MethodGet, "/tasks/overdue", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tasks []domain.TaskDTO
	envelope(t, w, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Gecikmiş", tasks[0].Title)
	assert.True(t, tasks[0].IsOverdue)
}

func TestTaskHandler_ListRejectsBadStatus(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/tasks?durum=Someday", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_DeleteIsSoft(t *testing.T) {
	env := newTestEnv(t, nil)
	task := testutil.CreateTestTask(t, env.db, "Silinecek", domain.TaskStatusPending, nil)

	w := env.do(t, http.MethodDelete, "/tasks/"+id(task.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.MsgTaskDeleted, envelope(t, w, nil).Message)

	var stored domain.Task
	require.NoError(t, env.db.First(&stored, task.ID).Error)
	assert.False(t, stored.Active)

	w = env.do(t, http.MethodDelete, "/tasks/"+id(task.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_Tasks(t *testing.T) {
	env := newTestEnv(t, nil)
	task := testutil.CreateTestTask(t, env.db, "Bana ait", domain.TaskStatusInProgress, nil)
	require.NoError(t, env.db.Model(task).Update("assignee_id", env.caller.ID).Error)
	testutil.CreateTestTask(t, env.db, "Sahipsiz", domain.TaskStatusPending, nil)

	w := env.do(t, http.MethodGet, "/users/"+id(env.caller.ID)+"/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tasks []domain.TaskDTO
	envelope(t, w, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Bana ait", tasks[0].Title)
}
