package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/export"
	"github.com/tuncrm/crm-api/internal/report"
	"github.com/tuncrm/crm-api/internal/repository"
	"github.com/tuncrm/crm-api/internal/storage"
	"go.uber.org/zap"
)

// ExportFile is a rendered export. ArchiveKey is set when the payload was
// archived; ArchiveFailed when archiving was requested but did not succeed.
type ExportFile struct {
	Name          string
	ContentType   string
	Data          []byte
	ArchiveKey    string
	ArchiveFailed bool
}

// ExportService renders lists and reports as CSV and optionally archives them
type ExportService struct {
	companyRepo     *repository.CompanyRepository
	opportunityRepo *repository.OpportunityRepository
	activityRepo    *repository.ActivityRepository
	store           storage.Storage
	logger          *zap.Logger
	now             Clock
}

// NewExportService creates the service. A nil store disables archiving.
func NewExportService(
	companyRepo *repository.CompanyRepository,
	opportunityRepo *repository.OpportunityRepository,
	activityRepo *repository.ActivityRepository,
	store storage.Storage,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		companyRepo:     companyRepo,
		opportunityRepo: opportunityRepo,
		activityRepo:    activityRepo,
		store:           store,
		logger:          logger,
		now:             utcNow,
	}
}

func (s *ExportService) Companies(ctx context.Context, filters *domain.CompanyFilters, archive bool) (*ExportFile, error) {
	companies, err := s.companyRepo.ListAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}
	return s.render(ctx, "firmalar", archive, func(w io.Writer) error {
		return export.Companies(w, companies)
	})
}

func (s *ExportService) Opportunities(ctx context.Context, filters *domain.OpportunityFilters, archive bool) (*ExportFile, error) {
	opportunities, err := s.opportunityRepo.ListAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load opportunities: %w", err)
	}
	return s.render(ctx, "firsatlar", archive, func(w io.Writer) error {
		return export.Opportunities(w, opportunities)
	})
}

func (s *ExportService) Activities(ctx context.Context, filters *domain.ActivityFilters, archive bool) (*ExportFile, error) {
	activities, err := s.activityRepo.ListAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	return s.render(ctx, "aktiviteler", archive, func(w io.Writer) error {
		return export.Activities(w, activities)
	})
}

func (s *ExportService) StageDistribution(ctx context.Context, archive bool) (*ExportFile, error) {
	opportunities, err := s.opportunityRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load opportunities: %w", err)
	}
	rows := report.StageDistribution(opportunities)
	return s.render(ctx, "asama-dagilimi", archive, func(w io.Writer) error {
		return export.StageDistribution(w, rows)
	})
}

// OpenArchive streams a previously archived export. The caller closes the reader.
func (s *ExportService) OpenArchive(ctx context.Context, key string) (io.ReadCloser, error) {
	if !storage.ValidKey(key) {
		return nil, NewValidationError("key geçersiz")
	}
	if s.store == nil {
		return nil, fmt.Errorf("archive %s: %w", key, ErrNotFound)
	}
	rc, err := s.store.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("archive %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return rc, nil
}

func (s *ExportService) render(ctx context.Context, kind string, archive bool, write func(io.Writer) error) (*ExportFile, error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", kind, err)
	}

	now := s.now()
	file := &ExportFile{
		Name:        fmt.Sprintf("%s-%s.csv", kind, now.Format("20060102-150405")),
		ContentType: export.ContentType,
		Data:        buf.Bytes(),
	}
	if archive {
		s.archive(ctx, kind, file, now)
	}
	return file, nil
}

// archive never fails the export; problems are logged and flagged on the file
func (s *ExportService) archive(ctx context.Context, kind string, file *ExportFile, now time.Time) {
	if s.store == nil {
		s.logger.Warn("export archive requested but storage is not configured", zap.String("kind", kind))
		file.ArchiveFailed = true
		return
	}

	key := storage.ArchiveKey(kind, ".csv", now)
	n, err := s.store.Upload(ctx, key, file.ContentType, bytes.NewReader(file.Data))
	if err != nil {
		s.logger.Warn("failed to archive export",
			zap.String("kind", kind),
			zap.String("key", key),
			zap.Error(err))
		file.ArchiveFailed = true
		return
	}

	s.logger.Info("export archived",
		zap.String("kind", kind),
		zap.String("key", key),
		zap.Int64("bytes", n))
	file.ArchiveKey = key
}
