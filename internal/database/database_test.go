package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return db, mock
}

func TestHealthCheck(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectPing()

	require.NoError(t, HealthCheck(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck_PingFails(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err := HealthCheck(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHealthCheckWithStats(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectPing()

	stats, err := HealthCheckWithStats(context.Background(), db)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "crm.db?_foreign_keys=1", SQLiteDSN("crm.db"))
	assert.Equal(t, "file::memory:?cache=shared&_foreign_keys=1", SQLiteDSN("file::memory:?cache=shared"))
	assert.Equal(t, "crm.db?_fk=1", SQLiteDSN("crm.db?_fk=1"))
}

func TestNewDatabase_SQLiteAutoMigrate(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:", MaxOpenConns: 1, MaxIdleConns: 1}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "companies", "opportunities", "activities", "tasks"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestNewDatabase_UnknownDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}
