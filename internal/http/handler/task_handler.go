package handler

import (
	"net/http"

	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/service"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService *service.TaskService
	logger      *zap.Logger
}

func NewTaskHandler(taskService *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

func taskFilters(r *http.Request) (*domain.TaskFilters, error) {
	filters := &domain.TaskFilters{}

	var err error
	if filters.Status, err = optionalEnum(r, domain.ParseTaskStatus, "status", "durum"); err != nil {
		return nil, err
	}
	if filters.Priority, err = optionalEnum(r, domain.ParseTaskPriority, "priority", "oncelik"); err != nil {
		return nil, err
	}
	if filters.AssigneeID, err = optionalUint(r, "assigneeId"); err != nil {
		return nil, err
	}
	return filters, nil
}

// List godoc
// @Summary List tasks
// @Description Paginated list of active tasks, newest first
// @Tags Tasks
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(10)
// @Param status query string false "Filter by status" Enums(Pending, InProgress, Completed, Cancelled)
// @Param priority query string false "Filter by priority" Enums(Low, Normal, High, Critical)
// @Param assigneeId query int false "Filter by assignee"
// @Success 200 {object} domain.APIResponse{data=[]domain.TaskDTO}
// @Failure 400 {object} domain.APIResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := taskFilters(r)
	if err != nil {
		handleError(w, r, h.logger, err, "invalid task filters")
		return
	}

	page, err := h.taskService.List(r.Context(), filters, parsePagination(r))
	if err != nil {
		handleError(w, r, h.logger, err, "failed to list tasks")
		return
	}
	respondPage(w, page)
}

// Overdue godoc
// @Summary List overdue tasks
// @Description Due date in the past and not completed
// @Tags Tasks
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.TaskDTO}
// @Security BearerAuth
// @Router /tasks/overdue [get]
func (h *TaskHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.Overdue(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err, "failed to list overdue tasks")
		return
	}
	respondData(w, http.StatusOK, tasks)
}

// DueToday godoc
// @Summary List tasks due today
// @Tags Tasks
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.TaskDTO}
// @Security BearerAuth
// @Router /tasks/due-today [get]
func (h *TaskHandler) DueToday(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.DueToday(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err, "failed to list tasks due today")
		return
	}
	respondData(w, http.StatusOK, tasks)
}

// GetByID godoc
// @Summary Get task
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} domain.APIResponse{data=domain.TaskDTO}
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to get task")
		return
	}
	respondData(w, http.StatusOK, task)
}

// Create godoc
// @Summary Create task
// @Description Status defaults to Pending and priority to Normal. The caller is recorded as creator.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body domain.CreateTaskRequest true "Task data"
// @Success 201 {object} domain.APIResponse{data=domain.TaskDTO}
// @Failure 400 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to create task")
		return
	}

	w.Header().Set("Location", "/api/v1/tasks/"+formatID(task.ID))
	respondData(w, http.StatusCreated, task)
}

// Update godoc
// @Summary Update task
// @Description Moving into Completed stamps completedAt; leaving Completed clears it.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body domain.UpdateTaskRequest true "Task data"
// @Success 200 {object} domain.APIResponse{data=domain.TaskDTO}
// @Failure 400 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to update task")
		return
	}
	respondData(w, http.StatusOK, task)
}

// Delete godoc
// @Summary Delete task
// @Description Soft delete; the task is kept with active=false
// @Tags Tasks
// @Param id path int true "Task ID"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), id); err != nil {
		handleError(w, r, h.logger, err, "failed to delete task")
		return
	}
	respondMessage(w, http.StatusOK, domain.MsgTaskDeleted)
}
