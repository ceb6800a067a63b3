package repository

import (
	"strings"

	"gorm.io/gorm"
)

const (
	// DefaultPageSize applies when a list request carries no page size
	DefaultPageSize = 10
	// MaxPageSize is the maximum allowed page size for paginated queries
	MaxPageSize = 200
)

// Pagination is a 1-based page request
type Pagination struct {
	Page     int
	PageSize int
}

// NewPagination clamps page to at least 1 and pageSize to 1..MaxPageSize,
// substituting DefaultPageSize for a missing size.
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// Offset is the number of rows skipped before this page
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages rounds up; zero rows means zero pages
func (p Pagination) TotalPages(total int64) int {
	if p.PageSize == 0 {
		return 0
	}
	return int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// paginate slices a query that has already been counted
func paginate(p Pagination) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PageSize)
	}
}

// likePattern builds a lower-cased substring pattern, escaping LIKE wildcards
func likePattern(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	term = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + term + "%"
}

// searchColumns ORs a case-insensitive LIKE over each column
func searchColumns(db *gorm.DB, term string, columns ...string) *gorm.DB {
	if strings.TrimSpace(term) == "" || len(columns) == 0 {
		return db
	}
	pattern := likePattern(term)
	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, c := range columns {
		clauses[i] = "LOWER(" + c + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// newestFirst is the default list ordering; id breaks creation-time ties
const newestFirst = "created_at DESC, id DESC"
