package repository

import (
	"context"
	"time"

	"github.com/tuncrm/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OpportunityRepository struct {
	db *gorm.DB
}

func NewOpportunityRepository(db *gorm.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

func withOwners(db *gorm.DB) *gorm.DB {
	return db.Preload("Company").Preload("User")
}

func (r *OpportunityRepository) Create(ctx context.Context, o *domain.Opportunity) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error
}

func (r *OpportunityRepository) GetByID(ctx context.Context, id uint) (*domain.Opportunity, error) {
	var o domain.Opportunity
	err := r.db.WithContext(ctx).Scopes(withOwners).First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OpportunityRepository) Update(ctx context.Context, o *domain.Opportunity) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error
}

// UpdateStage writes only the stage-related columns. closingDate nil leaves the
// stored closing date untouched.
func (r *OpportunityRepository) UpdateStage(ctx context.Context, id uint, stage domain.Stage, closingDate *time.Time, updatedAt time.Time) error {
	updates := map[string]interface{}{
		"stage":      stage,
		"updated_at": updatedAt,
	}
	if closingDate != nil {
		updates["closing_date"] = *closingDate
	}

	result := r.db.WithContext(ctx).Model(&domain.Opportunity{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the opportunity and nulls the links of activities and tasks to it
func (r *OpportunityRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&domain.Activity{}, &domain.Task{}} {
			if err := tx.Model(model).Where("opportunity_id = ?", id).Update("opportunity_id", nil).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&domain.Opportunity{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *OpportunityRepository) filtered(ctx context.Context, f *domain.OpportunityFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.Opportunity{})
	if f == nil {
		return query
	}

	query = searchColumns(query, f.Search, "name", "description")
	if f.Stage != nil {
		query = query.Where("stage = ?", *f.Stage)
	}
	if f.MinAmount != nil {
		query = query.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		query = query.Where("amount <= ?", *f.MaxAmount)
	}
	if f.CompanyID != nil {
		query = query.Where("company_id = ?", *f.CompanyID)
	}
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}
	return query
}

// List applies filters, counts the matches, then returns the requested page newest first
func (r *OpportunityRepository) List(ctx context.Context, filters *domain.OpportunityFilters, p Pagination) ([]domain.Opportunity, int64, error) {
	var opportunities []domain.Opportunity
	var total int64

	query := r.filtered(ctx, filters)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(withOwners, paginate(p)).Order(newestFirst).Find(&opportunities).Error
	return opportunities, total, err
}

// ListAll returns every match without pagination (exports, reports)
func (r *OpportunityRepository) ListAll(ctx context.Context, filters *domain.OpportunityFilters) ([]domain.Opportunity, error) {
	var opportunities []domain.Opportunity
	err := r.filtered(ctx, filters).Scopes(withOwners).Order(newestFirst).Find(&opportunities).Error
	return opportunities, err
}

// ListWonClosedSince returns won opportunities whose closing date is on or after since
func (r *OpportunityRepository) ListWonClosedSince(ctx context.Context, since time.Time) ([]domain.Opportunity, error) {
	var opportunities []domain.Opportunity
	err := r.db.WithContext(ctx).
		Where("stage = ? AND closing_date IS NOT NULL AND closing_date >= ?", domain.StageWonClosed, since).
		Find(&opportunities).Error
	return opportunities, err
}

// ListStale returns open opportunities not touched since before
func (r *OpportunityRepository) ListStale(ctx context.Context, before time.Time) ([]domain.Opportunity, error) {
	var opportunities []domain.Opportunity
	err := r.db.WithContext(ctx).Scopes(withOwners).
		Where("stage NOT IN ?", domain.TerminalStages()).
		Where("COALESCE(updated_at, created_at) < ?", before).
		Order("COALESCE(updated_at, created_at) ASC").
		Find(&opportunities).Error
	return opportunities, err
}

func (r *OpportunityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Opportunity{}).Count(&count).Error
	return count, err
}

// CountActive counts opportunities outside the terminal stages
func (r *OpportunityRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Opportunity{}).
		Where("stage NOT IN ?", domain.TerminalStages()).
		Count(&count).Error
	return count, err
}

func (r *OpportunityRepository) CountByStage(ctx context.Context, stage domain.Stage) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Opportunity{}).Where("stage = ?", stage).Count(&count).Error
	return count, err
}
