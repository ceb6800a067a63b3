package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tuncrm/crm-api/internal/cache"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/mapper"
	"github.com/tuncrm/crm-api/internal/repository"
	"go.uber.org/zap"
)

// CompanyService handles business logic for companies
type CompanyService struct {
	companyRepo *repository.CompanyRepository
	lists       *ListCache
	logger      *zap.Logger
	now         Clock
}

func NewCompanyService(companyRepo *repository.CompanyRepository, lists *ListCache, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		lists:       lists,
		logger:      logger,
		now:         utcNow,
	}
}

// companyPage is the cached form of one list page
type companyPage struct {
	Items []domain.CompanyDTO `json:"items"`
	Total int64               `json:"total"`
}

func companyListKey(f *domain.CompanyFilters, p repository.Pagination) string {
	var search, city string
	if f != nil {
		search = strings.ToLower(strings.TrimSpace(f.Search))
		city = strings.ToLower(strings.TrimSpace(f.City))
	}
	return fmt.Sprintf("%ssearch=%s|city=%s|page=%d|size=%d", companyListPrefix, search, city, p.Page, p.PageSize)
}

// List returns a filtered page of companies, served through the list cache
func (s *CompanyService) List(ctx context.Context, filters *domain.CompanyFilters, p repository.Pagination) (*domain.PaginatedResponse, error) {
	page, err := cache.Fetch(ctx, s.lists.backend(), s.logger, companyListKey(filters, p),
		func(ctx context.Context) (companyPage, error) {
			companies, total, err := s.companyRepo.List(ctx, filters, p)
			if err != nil {
				return companyPage{}, err
			}
			items := make([]domain.CompanyDTO, len(companies))
			for i := range companies {
				items[i] = mapper.ToCompanyDTO(&companies[i])
			}
			return companyPage{Items: items, Total: total}, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	return paginated(page.Items, page.Total, p), nil
}

func (s *CompanyService) GetByID(ctx context.Context, id uint) (*domain.CompanyDTO, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "failed to get company")
	}
	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

func (s *CompanyService) Create(ctx context.Context, req *domain.CreateCompanyRequest) (*domain.CompanyDTO, error) {
	company := &domain.Company{}
	applyCompanyRequest(company, req)

	if err := s.ensureUnique(ctx, company.Name, company.City, 0); err != nil {
		return nil, err
	}

	company.CreatedAt = s.now()
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	s.lists.Invalidate(ctx, companyListPrefix)

	s.logger.Info("company created",
		zap.Uint("company_id", company.ID),
		zap.String("name", company.Name))

	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

func (s *CompanyService) Update(ctx context.Context, id uint, req *domain.UpdateCompanyRequest) (*domain.CompanyDTO, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "failed to get company")
	}

	name, city := strings.TrimSpace(req.Name), strings.TrimSpace(req.City)
	if err := s.ensureUnique(ctx, name, city, id); err != nil {
		return nil, err
	}

	applyCompanyRequest(company, req)
	now := s.now()
	company.UpdatedAt = &now

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	s.lists.Invalidate(ctx, companyListPrefix)

	s.logger.Info("company updated",
		zap.Uint("company_id", company.ID),
		zap.String("name", company.Name))

	dto := mapper.ToCompanyDTO(company)
	return &dto, nil
}

// Delete removes the company together with its opportunities
func (s *CompanyService) Delete(ctx context.Context, id uint) error {
	if err := s.companyRepo.Delete(ctx, id); err != nil {
		return notFound(err, "failed to delete company")
	}
	s.lists.Invalidate(ctx, companyListPrefix)

	s.logger.Info("company deleted", zap.Uint("company_id", id))
	return nil
}

func (s *CompanyService) ensureUnique(ctx context.Context, name, city string, excludeID uint) error {
	exists, err := s.companyRepo.ExistsByNameAndCity(ctx, name, city, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check company uniqueness: %w", err)
	}
	if exists {
		return &ConflictError{Message: domain.MsgCompanyExists}
	}
	return nil
}

func applyCompanyRequest(company *domain.Company, req *domain.CreateCompanyRequest) {
	company.Name = strings.TrimSpace(req.Name)
	company.Address = strings.TrimSpace(req.Address)
	company.Phone = strings.TrimSpace(req.Phone)
	company.Email = strings.TrimSpace(req.Email)
	company.Website = strings.TrimSpace(req.Website)
	company.City = strings.TrimSpace(req.City)
	company.District = strings.TrimSpace(req.District)
	company.PostalCode = strings.TrimSpace(req.PostalCode)
	company.Notes = strings.TrimSpace(req.Notes)
}
