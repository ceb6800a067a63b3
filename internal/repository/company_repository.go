package repository

import (
	"context"
	"strings"

	"github.com/tuncrm/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// withRefIDs preloads only the ids of back-references so DTOs can report counts
func withRefIDs(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Opportunities", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "company_id") }).
		Preload("Activities", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "company_id") })
}

func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(company).Error
}

func (r *CompanyRepository) GetByID(ctx context.Context, id uint) (*domain.Company, error) {
	var company domain.Company
	err := r.db.WithContext(ctx).Scopes(withRefIDs).First(&company, id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Company{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *CompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(company).Error
}

// ExistsByNameAndCity matches the name case-insensitively within the same city.
// excludeID skips the company being updated; pass 0 on create.
func (r *CompanyRepository) ExistsByNameAndCity(ctx context.Context, name, city string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Company{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Where("COALESCE(city, '') = ?", strings.TrimSpace(city))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// Delete removes the company and its opportunities in one transaction.
// Activities and tasks that pointed at either keep existing with the link nulled.
func (r *CompanyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		opportunityIDs := tx.Model(&domain.Opportunity{}).Select("id").Where("company_id = ?", id)

		for _, model := range []interface{}{&domain.Activity{}, &domain.Task{}} {
			if err := tx.Model(model).Where("opportunity_id IN (?)", opportunityIDs).
				Update("opportunity_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Model(model).Where("company_id = ?", id).
				Update("company_id", nil).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("company_id = ?", id).Delete(&domain.Opportunity{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&domain.Company{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *CompanyRepository) filtered(ctx context.Context, filters *domain.CompanyFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.Company{})
	if filters == nil {
		return query
	}
	query = searchColumns(query, filters.Search, "name", "email", "phone")
	if city := strings.TrimSpace(filters.City); city != "" {
		query = query.Where(`LOWER(city) LIKE ? ESCAPE '\'`, likePattern(city))
	}
	return query
}

// List applies filters, counts the matches, then returns the requested page newest first
func (r *CompanyRepository) List(ctx context.Context, filters *domain.CompanyFilters, p Pagination) ([]domain.Company, int64, error) {
	var companies []domain.Company
	var total int64

	query := r.filtered(ctx, filters)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(withRefIDs, paginate(p)).Order(newestFirst).Find(&companies).Error
	return companies, total, err
}

// ListAll returns every match without pagination (exports)
func (r *CompanyRepository) ListAll(ctx context.Context, filters *domain.CompanyFilters) ([]domain.Company, error) {
	var companies []domain.Company
	err := r.filtered(ctx, filters).Scopes(withRefIDs).Order(newestFirst).Find(&companies).Error
	return companies, err
}

// ListCities loads only the city column of every company
func (r *CompanyRepository) ListCities(ctx context.Context) ([]domain.Company, error) {
	var companies []domain.Company
	err := r.db.WithContext(ctx).Select("id", "city").Find(&companies).Error
	return companies, err
}

func (r *CompanyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Company{}).Count(&count).Error
	return count, err
}
