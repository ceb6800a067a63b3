package service

import (
	"context"
	"strings"
	"time"

	"github.com/tuncrm/crm-api/internal/cache"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/mapper"
	"github.com/tuncrm/crm-api/internal/repository"
	"go.uber.org/zap"
)

// Clock returns the current time. Services default to UTC wall time.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// companyListPrefix namespaces every cached company list page
const companyListPrefix = "companies:"

// ListCache wraps the read-through cache with the write-invalidation policy
type ListCache struct {
	cache      cache.Cache
	invalidate bool
	logger     *zap.Logger
}

// NewListCache returns a cache helper. A nil cache disables caching entirely.
// With invalidateOnWrite false, entries only expire by TTL.
func NewListCache(c cache.Cache, invalidateOnWrite bool, logger *zap.Logger) *ListCache {
	return &ListCache{cache: c, invalidate: invalidateOnWrite, logger: logger}
}

func (l *ListCache) backend() cache.Cache {
	if l == nil {
		return nil
	}
	return l.cache
}

// Invalidate drops every entry under prefix when write invalidation is on
func (l *ListCache) Invalidate(ctx context.Context, prefix string) {
	if l == nil || l.cache == nil || !l.invalidate {
		return
	}
	if err := l.cache.DeletePrefix(ctx, prefix); err != nil {
		l.logger.Warn("cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
	}
}

// paginated wraps a page of DTOs in the list response shape
func paginated(data interface{}, total int64, p repository.Pagination) *domain.PaginatedResponse {
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(total),
	}
}

// optionalTime parses an optional timestamp field, naming the field on failure
func optionalTime(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := mapper.ParseTime(strings.TrimSpace(*raw))
	if err != nil {
		return nil, NewValidationError(field + " geçerli bir tarih olmalıdır")
	}
	return &t, nil
}
