package repository

import (
	"context"
	"time"

	"github.com/tuncrm/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func withPeople(db *gorm.DB) *gorm.DB {
	return db.Preload("Assignee").Preload("Creator").Preload("Company").Preload("Opportunity")
}

func activeTasks(db *gorm.DB) *gorm.DB {
	return db.Where("tasks.active = ?", true)
}

// urgentFirst puts critical tasks first, then the earliest due date; tasks without
// a due date sink to the bottom of their priority.
const urgentFirst = "priority DESC, due_date IS NULL, due_date ASC, id ASC"

// pendingStatuses are the states an overdue or due-today task may be in
var pendingStatuses = []domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusInProgress}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// GetByID returns an active task with its links loaded
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).Scopes(activeTasks, withPeople).First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

func (r *TaskRepository) SoftDelete(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]interface{}{"active": false, "updated_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns a page of active tasks, newest first
func (r *TaskRepository) List(ctx context.Context, f *domain.TaskFilters, p Pagination) ([]domain.Task, int64, error) {
	var tasks []domain.Task
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Task{}).Scopes(activeTasks)
	if f != nil {
		if f.Status != nil {
			query = query.Where("status = ?", *f.Status)
		}
		if f.Priority != nil {
			query = query.Where("priority = ?", *f.Priority)
		}
		if f.AssigneeID != nil {
			query = query.Where("assignee_id = ?", *f.AssigneeID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(withPeople, paginate(p)).Order(newestFirst).Find(&tasks).Error
	return tasks, total, err
}

// ListByAssignee returns a user's active tasks, most urgent first
func (r *TaskRepository) ListByAssignee(ctx context.Context, assigneeID uint) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).Scopes(activeTasks, withPeople).
		Where("assignee_id = ?", assigneeID).
		Order(urgentFirst).
		Find(&tasks).Error
	return tasks, err
}

// ListActive returns every active task (reports)
func (r *TaskRepository) ListActive(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).Scopes(activeTasks).Find(&tasks).Error
	return tasks, err
}

// ListOverdue returns open tasks whose due date is before now
func (r *TaskRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).Scopes(activeTasks, withPeople).
		Where("status IN ? AND due_date IS NOT NULL AND due_date < ?", pendingStatuses, now).
		Order(urgentFirst).
		Find(&tasks).Error
	return tasks, err
}

// ListDueBetween returns open tasks due in [from, to)
func (r *TaskRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).Scopes(activeTasks, withPeople).
		Where("status IN ? AND due_date >= ? AND due_date < ?", pendingStatuses, from, to).
		Order(urgentFirst).
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).Scopes(activeTasks).Count(&count).Error
	return count, err
}

func (r *TaskRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).Scopes(activeTasks).
		Where("status IN ? AND due_date IS NOT NULL AND due_date < ?", pendingStatuses, now).
		Count(&count).Error
	return count, err
}
