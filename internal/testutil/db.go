// Package testutil provides in-memory sqlite fixtures for package tests
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/config"
	"github.com/tuncrm/crm-api/internal/database"
	"github.com/tuncrm/crm-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var seq atomic.Int64

// SetupTestDB opens a private in-memory sqlite database with the full schema.
// A single pooled connection keeps the memory database alive for the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewDatabase(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file::memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func next() int64 {
	return seq.Add(1)
}

// CreateTestUser inserts an active sales user with a unique email
func CreateTestUser(t *testing.T, db *gorm.DB, firstName string) *domain.User {
	t.Helper()
	u := &domain.User{
		FirstName:    firstName,
		LastName:     "Test",
		Email:        fmt.Sprintf("user%d@example.com", next()),
		PasswordHash: "not-a-real-hash",
		Role:         domain.RoleSales,
		Active:       true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateTestCompany inserts a company in the given city
func CreateTestCompany(t *testing.T, db *gorm.DB, name, city string) *domain.Company {
	t.Helper()
	c := &domain.Company{Name: name, City: city}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreateTestOpportunity inserts an opportunity. An empty amount stores NULL.
func CreateTestOpportunity(t *testing.T, db *gorm.DB, name string, stage domain.Stage, amount string, companyID, userID uint) *domain.Opportunity {
	t.Helper()
	o := &domain.Opportunity{
		Name:      name,
		Stage:     stage,
		CompanyID: companyID,
		UserID:    userID,
	}
	if amount != "" {
		o.Amount = decimal.NewNullDecimal(decimal.RequireFromString(amount))
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

// CreateTestActivity inserts an activity linked to the given optional company/opportunity
func CreateTestActivity(t *testing.T, db *gorm.DB, title string, occurredAt time.Time, companyID, opportunityID *uint, userID uint) *domain.Activity {
	t.Helper()
	a := &domain.Activity{
		Title:         title,
		Type:          domain.ActivityTypeNote,
		OccurredAt:    occurredAt,
		CompanyID:     companyID,
		OpportunityID: opportunityID,
		UserID:        userID,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

// CreateTestTask inserts an active task
func CreateTestTask(t *testing.T, db *gorm.DB, title string, status domain.TaskStatus, due *time.Time) *domain.Task {
	t.Helper()
	task := &domain.Task{
		Title:    title,
		Status:   status,
		Priority: domain.TaskPriorityNormal,
		DueDate:  due,
		Active:   true,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
