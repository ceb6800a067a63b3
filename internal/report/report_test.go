package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/domain"
)

func amount(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func opp(stage domain.Stage, amt string) domain.Opportunity {
	o := domain.Opportunity{Stage: stage}
	if amt != "" {
		o.Amount = amount(amt)
	}
	return o
}

func TestStageDistribution(t *testing.T) {
	opps := []domain.Opportunity{
		opp(domain.StageNegotiation, "100"),
		opp(domain.StageInitialContact, "50"),
		opp(domain.StageNegotiation, "300"),
		opp(domain.StageNegotiation, ""),
		opp(domain.StageWonClosed, "1000"),
		opp(domain.StageInitialContact, ""),
	}

	rows := StageDistribution(opps)
	require.Len(t, rows, 3)

	assert.Equal(t, domain.StageInitialContact, rows[0].Stage)
	assert.Equal(t, domain.StageNegotiation, rows[1].Stage)
	assert.Equal(t, domain.StageWonClosed, rows[2].Stage)

	neg := rows[1]
	assert.Equal(t, 3, neg.Count)
	assert.Equal(t, "Müzakere", neg.DisplayName)
	assert.InDelta(t, 400, neg.SumAmount, 0.001)
	assert.InDelta(t, 133.33, neg.AverageAmount, 0.001)
	assert.InDelta(t, 50, neg.Percent, 0.001)

	assert.InDelta(t, 25, rows[0].AverageAmount, 0.001)
}

func TestStageDistribution_PercentagesSumTo100(t *testing.T) {
	var opps []domain.Opportunity
	stages := domain.AllStages()
	for i := 0; i < 37; i++ {
		opps = append(opps, opp(stages[i%len(stages)], fmt.Sprintf("%d", i*10)))
	}

	var total float64
	for _, r := range StageDistribution(opps) {
		total += r.Percent
	}
	assert.InDelta(t, 100, total, 0.05)
}

func TestStageDistribution_Empty(t *testing.T) {
	rows := StageDistribution(nil)
	assert.Empty(t, rows)
	for _, r := range rows {
		assert.Zero(t, r.Percent)
	}
}

func TestMonthWindow(t *testing.T) {
	now := time.Date(2025, 3, 31, 18, 0, 0, 0, time.UTC)

	months := MonthWindow(now, 6)
	require.Len(t, months, 6)
	assert.Equal(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), months[0])
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), months[4])
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), months[5])

	for i := 1; i < len(months); i++ {
		assert.True(t, months[i].After(months[i-1]))
	}
}

func TestActivityTrend(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	acts := []domain.Activity{
		{OccurredAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{OccurredAt: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)},
		{OccurredAt: time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)},
		{OccurredAt: time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)},
		{OccurredAt: time.Date(2024, 9, 30, 23, 59, 0, 0, time.UTC)},
	}

	rows := ActivityTrend(acts, now)
	require.Len(t, rows, TrendMonths)

	assert.Equal(t, "Oct 2024", rows[0].Label)
	assert.Equal(t, 1, rows[0].Count)
	assert.Equal(t, 0, rows[1].Count)
	assert.Equal(t, 1, rows[2].Count)
	assert.Equal(t, 0, rows[3].Count)
	assert.Equal(t, 0, rows[4].Count)
	assert.Equal(t, "Mar 2025", rows[5].Label)
	assert.Equal(t, 2025, rows[5].Year)
	assert.Equal(t, 3, rows[5].Month)
	assert.Equal(t, 2, rows[5].Count)
}

func TestActivityTrend_NoRows(t *testing.T) {
	rows := ActivityTrend(nil, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.Len(t, rows, TrendMonths)
	assert.Equal(t, "Aug 2024", rows[0].Label)
	for _, r := range rows {
		assert.Zero(t, r.Count)
	}
}

func TestRevenueTrend(t *testing.T) {
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	closedAt := func(y int, m time.Month, d int) *time.Time {
		ts := time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
		return &ts
	}

	won := func(amt string, at *time.Time) domain.Opportunity {
		o := opp(domain.StageWonClosed, amt)
		o.ClosingDate = at
		return o
	}
	lost := opp(domain.StageLostClosed, "999")
	lost.ClosingDate = closedAt(2025, 6, 1)

	opps := []domain.Opportunity{
		won("100.25", closedAt(2025, 6, 2)),
		won("200", closedAt(2025, 6, 18)),
		won("50", closedAt(2025, 1, 31)),
		won("75", nil),
		won("500", closedAt(2024, 12, 31)),
		lost,
	}

	rows := RevenueTrend(opps, now)
	require.Len(t, rows, TrendMonths)
	assert.Equal(t, "Jan 2025", rows[0].Label)
	assert.InDelta(t, 50, rows[0].Amount, 0.001)
	assert.InDelta(t, 300.25, rows[5].Amount, 0.001)

	var total float64
	for _, r := range rows {
		total += r.Amount
	}
	assert.InDelta(t, 350.25, total, 0.001)
}

func TestCityDistribution(t *testing.T) {
	var companies []domain.Company
	add := func(city string, n int) {
		for i := 0; i < n; i++ {
			companies = append(companies, domain.Company{City: city})
		}
	}
	add("İstanbul", 5)
	add("Ankara", 3)
	add("", 7)
	add("  ", 2)
	for i := 0; i < 12; i++ {
		add(fmt.Sprintf("Şehir %d", i), 1)
	}

	rows := CityDistribution(companies)
	require.Len(t, rows, TopCities)
	assert.Equal(t, domain.CityReport{City: "İstanbul", Count: 5}, rows[0])
	assert.Equal(t, domain.CityReport{City: "Ankara", Count: 3}, rows[1])

	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Count, rows[i].Count)
		assert.NotEmpty(t, rows[i].City)
	}
}

func TestTaskStatusDistribution(t *testing.T) {
	tasks := []domain.Task{
		{Status: domain.TaskStatusCompleted, Active: true},
		{Status: domain.TaskStatusPending, Active: true},
		{Status: domain.TaskStatusPending, Active: true},
		{Status: domain.TaskStatusCancelled, Active: false},
	}

	rows := TaskStatusDistribution(tasks)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.TaskStatusReport{Status: domain.TaskStatusPending, StatusOrdinal: 1, DisplayName: "Beklemede", Count: 2}, rows[0])
	assert.Equal(t, domain.TaskStatusCompleted, rows[1].Status)
}

func TestRecentActivities(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	var acts []domain.Activity
	for i := 0; i < 15; i++ {
		acts = append(acts, domain.Activity{BaseModel: domain.BaseModel{ID: uint(i + 1)}, OccurredAt: base.Add(time.Duration(i) * time.Hour)})
	}

	recent := RecentActivities(acts, 10)
	require.Len(t, recent, 10)
	assert.Equal(t, uint(15), recent[0].ID)
	assert.Equal(t, uint(6), recent[9].ID)
	assert.Equal(t, uint(1), acts[0].ID, "input must not be reordered")

	assert.Len(t, RecentActivities(acts[:3], 10), 3)
}
