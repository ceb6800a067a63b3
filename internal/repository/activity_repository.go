package repository

import (
	"context"
	"time"

	"github.com/tuncrm/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func withLinks(db *gorm.DB) *gorm.DB {
	return db.Preload("Company").Preload("Opportunity").Preload("User")
}

const latestOccurrenceFirst = "occurred_at DESC, id DESC"

func (r *ActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error
}

func (r *ActivityRepository) GetByID(ctx context.Context, id uint) (*domain.Activity, error) {
	var a domain.Activity
	err := r.db.WithContext(ctx).Scopes(withLinks).First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ActivityRepository) Update(ctx context.Context, a *domain.Activity) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error
}

func (r *ActivityRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Activity{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ActivityRepository) filtered(ctx context.Context, f *domain.ActivityFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.Activity{})
	if f == nil {
		return query
	}
	if f.CompanyID != nil {
		query = query.Where("company_id = ?", *f.CompanyID)
	}
	if f.OpportunityID != nil {
		query = query.Where("opportunity_id = ?", *f.OpportunityID)
	}
	if f.Type != nil {
		query = query.Where("type = ?", *f.Type)
	}
	return query
}

// List returns a page of activities, latest occurrence first
func (r *ActivityRepository) List(ctx context.Context, f *domain.ActivityFilters, p Pagination) ([]domain.Activity, int64, error) {
	var activities []domain.Activity
	var total int64

	query := r.filtered(ctx, f)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(withLinks, paginate(p)).Order(latestOccurrenceFirst).Find(&activities).Error
	return activities, total, err
}

// ListAll returns every match without pagination (exports)
func (r *ActivityRepository) ListAll(ctx context.Context, f *domain.ActivityFilters) ([]domain.Activity, error) {
	var activities []domain.Activity
	err := r.filtered(ctx, f).Scopes(withLinks).Order(latestOccurrenceFirst).Find(&activities).Error
	return activities, err
}

// Recent returns the n latest activities with their linked names loaded
func (r *ActivityRepository) Recent(ctx context.Context, n int) ([]domain.Activity, error) {
	var activities []domain.Activity
	err := r.db.WithContext(ctx).Scopes(withLinks).Order(latestOccurrenceFirst).Limit(n).Find(&activities).Error
	return activities, err
}

// ListBetween returns activities occurring in [from, to)
func (r *ActivityRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Activity, error) {
	var activities []domain.Activity
	err := r.db.WithContext(ctx).Scopes(withLinks).
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Order("occurred_at ASC").
		Find(&activities).Error
	return activities, err
}

func (r *ActivityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Activity{}).Count(&count).Error
	return count, err
}

// CountBetween counts activities occurring in [from, to)
func (r *ActivityRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Activity{}).
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Count(&count).Error
	return count, err
}
