package handler

import (
	"net/http"

	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/service"
	"go.uber.org/zap"
)

// UserHandler serves account management. Writes are gated to Admin and Manager by the router.
type UserHandler struct {
	userService *service.UserService
	taskService *service.TaskService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, taskService *service.TaskService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		taskService: taskService,
		logger:      logger,
	}
}

// List godoc
// @Summary List active users
// @Tags Users
// @Produce json
// @Success 200 {object} domain.APIResponse{data=[]domain.UserDTO}
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err, "failed to list users")
		return
	}
	respondData(w, http.StatusOK, users)
}

// GetByID godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} domain.APIResponse{data=domain.UserDTO}
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to get user")
		return
	}
	respondData(w, http.StatusOK, user)
}

// Create godoc
// @Summary Create user
// @Description Requires Admin or Manager. The account is created active.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.CreateUserRequest true "User data"
// @Success 201 {object} domain.APIResponse{data=domain.UserDTO}
// @Failure 400 {object} domain.APIResponse
// @Failure 403 {object} domain.APIResponse
// @Failure 409 {object} domain.APIResponse
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to create user")
		return
	}

	w.Header().Set("Location", "/api/v1/users/"+formatID(user.ID))
	respondData(w, http.StatusCreated, user)
}

// Update godoc
// @Summary Update user
// @Description Requires Admin or Manager
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body domain.UpdateUserRequest true "User data"
// @Success 200 {object} domain.APIResponse{data=domain.UserDTO}
// @Failure 400 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Failure 409 {object} domain.APIResponse
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to update user")
		return
	}
	respondData(w, http.StatusOK, user)
}

// Delete godoc
// @Summary Deactivate user
// @Description Requires Admin or Manager. The account is kept with active=false.
// @Tags Users
// @Param id path int true "User ID"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		handleError(w, r, h.logger, err, "failed to delete user")
		return
	}
	respondMessage(w, http.StatusOK, domain.MsgUserDeleted)
}

// Tasks godoc
// @Summary List tasks assigned to a user
// @Description Active tasks ordered by priority (highest first), then due date
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} domain.APIResponse{data=[]domain.TaskDTO}
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /users/{id}/tasks [get]
func (h *UserHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListByAssignee(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err, "failed to list user tasks")
		return
	}
	respondData(w, http.StatusOK, tasks)
}
