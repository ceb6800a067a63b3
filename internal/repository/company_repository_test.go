package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/repository"
	"github.com/tuncrm/crm-api/internal/testutil"
	"gorm.io/gorm"
)

func TestCompanyRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCompanyRepository(db)
	ctx := context.Background()

	company := &domain.Company{Name: "Acme Ltd", City: "İstanbul", Email: "info@acme.test"}
	require.NoError(t, repo.Create(ctx, company))
	assert.NotZero(t, company.ID)
	assert.Nil(t, company.UpdatedAt)

	user := testutil.CreateTestUser(t, db, "Ayşe")
	testutil.CreateTestOpportunity(t, db, "Deal", domain.StageInitialContact, "100", company.ID, user.ID)
	testutil.CreateTestActivity(t, db, "Call", time.Now().UTC(), &company.ID, nil, user.ID)

	t.Run("counts back-references", func(t *testing.T) {
		found, err := repo.GetByID(ctx, company.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Ltd", found.Name)
		assert.Len(t, found.Opportunities, 1)
		assert.Len(t, found.Activities, 1)
	})

	t.Run("missing company", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestCompanyRepository_ExistsByNameAndCity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCompanyRepository(db)
	ctx := context.Background()

	existing := testutil.CreateTestCompany(t, db, "Acme", "Ankara")

	t.Run("same name different case", func(t *testing.T) {
		exists, err := repo.ExistsByNameAndCity(ctx, "ACME", "Ankara", 0)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("same name other city", func(t *testing.T) {
		exists, err := repo.ExistsByNameAndCity(ctx, "Acme", "İzmir", 0)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("excludes itself on update", func(t *testing.T) {
		exists, err := repo.ExistsByNameAndCity(ctx, "Acme", "Ankara", existing.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestCompanyRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCompanyRepository(db)
	ctx := context.Background()

	testutil.CreateTestCompany(t, db, "Alpha Yazılım", "İstanbul")
	testutil.CreateTestCompany(t, db, "Beta Lojistik", "Ankara")
	testutil.CreateTestCompany(t, db, "Gamma 100%", "Ankara")

	t.Run("no filters", func(t *testing.T) {
		companies, total, err := repo.List(ctx, nil, repository.NewPagination(1, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, companies, 3)
		assert.Equal(t, "Gamma 100%", companies[0].Name)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		companies, total, err := repo.List(ctx, &domain.CompanyFilters{Search: "BETA"}, repository.NewPagination(1, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Beta Lojistik", companies[0].Name)
	})

	t.Run("percent sign is literal", func(t *testing.T) {
		_, total, err := repo.List(ctx, &domain.CompanyFilters{Search: "%"}, repository.NewPagination(1, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("city filter", func(t *testing.T) {
		_, total, err := repo.List(ctx, &domain.CompanyFilters{City: "ankara"}, repository.NewPagination(1, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("page beyond the end", func(t *testing.T) {
		companies, total, err := repo.List(ctx, nil, repository.NewPagination(5, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Empty(t, companies)
	})
}

func TestCompanyRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCompanyRepository(db)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, db, "Mehmet")
	company := testutil.CreateTestCompany(t, db, "Doomed", "Bursa")
	opp := testutil.CreateTestOpportunity(t, db, "Doomed deal", domain.StageNegotiation, "5000", company.ID, user.ID)
	onCompany := testutil.CreateTestActivity(t, db, "Visit", time.Now().UTC(), &company.ID, nil, user.ID)
	onOpp := testutil.CreateTestActivity(t, db, "Offer call", time.Now().UTC(), nil, &opp.ID, user.ID)

	task := &domain.Task{Title: "Follow up", Status: domain.TaskStatusPending, Priority: domain.TaskPriorityHigh,
		CompanyID: &company.ID, OpportunityID: &opp.ID, Active: true}
	require.NoError(t, db.Create(task).Error)

	require.NoError(t, repo.Delete(ctx, company.ID))

	var oppCount int64
	require.NoError(t, db.Model(&domain.Opportunity{}).Where("company_id = ?", company.ID).Count(&oppCount).Error)
	assert.Zero(t, oppCount)

	var a1, a2 domain.Activity
	require.NoError(t, db.First(&a1, onCompany.ID).Error)
	require.NoError(t, db.First(&a2, onOpp.ID).Error)
	assert.Nil(t, a1.CompanyID)
	assert.Nil(t, a2.OpportunityID)

	var reloaded domain.Task
	require.NoError(t, db.First(&reloaded, task.ID).Error)
	assert.Nil(t, reloaded.CompanyID)
	assert.Nil(t, reloaded.OpportunityID)

	t.Run("deleting again is not found", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, company.ID), gorm.ErrRecordNotFound)
	})
}
