package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tuncrm/crm-api/internal/auth"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/mapper"
	"github.com/tuncrm/crm-api/internal/repository"
	"go.uber.org/zap"
)

// TaskService handles to-do items. Overdue and due flags are evaluated on read.
type TaskService struct {
	taskRepo        *repository.TaskRepository
	userRepo        *repository.UserRepository
	companyRepo     *repository.CompanyRepository
	opportunityRepo *repository.OpportunityRepository
	logger          *zap.Logger
	now             Clock
}

func NewTaskService(
	taskRepo *repository.TaskRepository,
	userRepo *repository.UserRepository,
	companyRepo *repository.CompanyRepository,
	opportunityRepo *repository.OpportunityRepository,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:        taskRepo,
		userRepo:        userRepo,
		companyRepo:     companyRepo,
		opportunityRepo: opportunityRepo,
		logger:          logger,
		now:             utcNow,
	}
}

func (s *TaskService) List(ctx context.Context, filters *domain.TaskFilters, p repository.Pagination) (*domain.PaginatedResponse, error) {
	tasks, total, err := s.taskRepo.List(ctx, filters, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return paginated(mapper.ToTaskDTOs(tasks, s.now()), total, p), nil
}

func (s *TaskService) GetByID(ctx context.Context, id uint) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "failed to get task")
	}
	dto := mapper.ToTaskDTO(task, s.now())
	return &dto, nil
}

// Overdue lists open tasks whose due date has passed
func (s *TaskService) Overdue(ctx context.Context) ([]domain.TaskDTO, error) {
	now := s.now()
	tasks, err := s.taskRepo.ListOverdue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue tasks: %w", err)
	}
	return mapper.ToTaskDTOs(tasks, now), nil
}

// DueToday lists open tasks due within the current calendar day
func (s *TaskService) DueToday(ctx context.Context) ([]domain.TaskDTO, error) {
	now := s.now()
	start := domain.StartOfDay(now)
	tasks, err := s.taskRepo.ListDueBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks due today: %w", err)
	}
	return mapper.ToTaskDTOs(tasks, now), nil
}

// ListByAssignee returns the user's active tasks, most urgent first
func (s *TaskService) ListByAssignee(ctx context.Context, userID uint) ([]domain.TaskDTO, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, notFound(err, "failed to get user")
	}
	tasks, err := s.taskRepo.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for user: %w", err)
	}
	return mapper.ToTaskDTOs(tasks, s.now()), nil
}

func (s *TaskService) Create(ctx context.Context, req *domain.CreateTaskRequest) (*domain.TaskDTO, error) {
	task := &domain.Task{Active: true}
	if err := s.apply(ctx, task, req); err != nil {
		return nil, err
	}
	if creator := auth.UserIDFromContext(ctx); creator != 0 {
		task.CreatorID = &creator
	}

	task.CreatedAt = s.now()
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created",
		zap.Uint("task_id", task.ID),
		zap.String("status", task.Status.String()),
		zap.String("priority", task.Priority.String()))

	return s.GetByID(ctx, task.ID)
}

// Update replaces the editable fields. completedAt follows the status: it is
// stamped on entering Completed and cleared on leaving it.
func (s *TaskService) Update(ctx context.Context, id uint, req *domain.UpdateTaskRequest) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "failed to get task")
	}

	previous := task.Status
	if err := s.apply(ctx, task, req); err != nil {
		return nil, err
	}
	task.Assignee, task.Creator, task.Company, task.Opportunity = nil, nil, nil, nil

	now := s.now()
	switch {
	case task.Status == domain.TaskStatusCompleted && previous != domain.TaskStatusCompleted:
		task.CompletedAt = &now
	case task.Status != domain.TaskStatusCompleted:
		task.CompletedAt = nil
	}
	task.UpdatedAt = &now

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("task updated",
		zap.Uint("task_id", task.ID),
		zap.String("status", task.Status.String()))

	return s.GetByID(ctx, task.ID)
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	if err := s.taskRepo.SoftDelete(ctx, id, s.now()); err != nil {
		return notFound(err, "failed to delete task")
	}

	s.logger.Info("task deleted", zap.Uint("task_id", id))
	return nil
}

func (s *TaskService) apply(ctx context.Context, task *domain.Task, req *domain.CreateTaskRequest) error {
	status, priority := req.Status, req.Priority
	if status == 0 {
		status = domain.TaskStatusPending
	}
	if priority == 0 {
		priority = domain.TaskPriorityNormal
	}

	var fields []string
	if !status.IsValid() {
		fields = append(fields, "status "+domain.GetValidationMessage("oneof"))
	}
	if !priority.IsValid() {
		fields = append(fields, "priority "+domain.GetValidationMessage("oneof"))
	}
	if len(fields) > 0 {
		return NewValidationError(fields...)
	}

	startDate, err := optionalTime(req.StartDate, "startDate")
	if err != nil {
		return err
	}
	dueDate, err := optionalTime(req.DueDate, "dueDate")
	if err != nil {
		return err
	}

	if err := s.ensureReferences(ctx, req); err != nil {
		return err
	}

	task.Title = strings.TrimSpace(req.Title)
	task.Description = strings.TrimSpace(req.Description)
	task.Status = status
	task.Priority = priority
	task.StartDate = startDate
	task.DueDate = dueDate
	task.AssigneeID = req.AssigneeID
	task.CompanyID = req.CompanyID
	task.OpportunityID = req.OpportunityID
	if task.ID == 0 && status == domain.TaskStatusCompleted {
		now := s.now()
		task.CompletedAt = &now
	}
	return nil
}

func (s *TaskService) ensureReferences(ctx context.Context, req *domain.CreateTaskRequest) error {
	if req.AssigneeID != nil {
		if _, err := s.userRepo.GetByID(ctx, *req.AssigneeID); err != nil {
			return notFound(err, fmt.Sprintf("assignee %d", *req.AssigneeID))
		}
	}
	if req.CompanyID != nil {
		exists, err := s.companyRepo.Exists(ctx, *req.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to check company: %w", err)
		}
		if !exists {
			return fmt.Errorf("company %d: %w", *req.CompanyID, ErrNotFound)
		}
	}
	if req.OpportunityID != nil {
		if _, err := s.opportunityRepo.GetByID(ctx, *req.OpportunityID); err != nil {
			return notFound(err, fmt.Sprintf("opportunity %d", *req.OpportunityID))
		}
	}
	return nil
}
