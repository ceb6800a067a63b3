// Package report computes dashboard aggregations over snapshots of rows.
// Every function is pure: callers load the rows and pass the clock in.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tuncrm/crm-api/internal/domain"
)

const (
	// TrendMonths is the length of the trailing monthly window
	TrendMonths = 6
	// TopCities caps the city distribution
	TopCities = 10
	// MonthLabelFormat renders a bucket label such as "Mar 2025"
	MonthLabelFormat = "Jan 2006"
)

var hundred = decimal.NewFromInt(100)

// StageDistribution groups opportunities by stage. Only stages with at least
// one opportunity are emitted, ordered by stage ordinal. Percentages are of
// the total opportunity count and are zero when there are no opportunities.
func StageDistribution(opportunities []domain.Opportunity) []domain.StageReport {
	type bucket struct {
		count int
		sum   decimal.Decimal
	}
	buckets := make(map[domain.Stage]*bucket)
	for i := range opportunities {
		o := &opportunities[i]
		b, ok := buckets[o.Stage]
		if !ok {
			b = &bucket{}
			buckets[o.Stage] = b
		}
		b.count++
		if o.Amount.Valid {
			b.sum = b.sum.Add(o.Amount.Decimal)
		}
	}

	total := len(opportunities)
	stages := make([]domain.Stage, 0, len(buckets))
	for s := range buckets {
		stages = append(stages, s)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })

	rows := make([]domain.StageReport, 0, len(stages))
	for _, s := range stages {
		b := buckets[s]
		rows = append(rows, domain.StageReport{
			Stage:         s,
			StageOrdinal:  int(s),
			DisplayName:   s.DisplayName(),
			Count:         b.count,
			SumAmount:     toFloat(b.sum),
			AverageAmount: toFloat(safeDiv(b.sum, b.count)),
			Percent:       percent(b.count, total),
		})
	}
	return rows
}

// MonthWindow returns the first instant of each of the n calendar months
// ending with now's month, oldest first, in now's location.
func MonthWindow(now time.Time, n int) []time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	months := make([]time.Time, n)
	for i := 0; i < n; i++ {
		months[i] = first.AddDate(0, -(n - 1 - i), 0)
	}
	return months
}

// WindowStart is the first instant covered by the trailing trend window
func WindowStart(now time.Time) time.Time {
	return MonthWindow(now, TrendMonths)[0]
}

// ActivityTrend counts activities per calendar month over the trailing window.
// Months without activities are present with a zero count.
func ActivityTrend(activities []domain.Activity, now time.Time) []domain.MonthlyCount {
	months := MonthWindow(now, TrendMonths)
	counts := make(map[monthKey]int, len(months))
	for i := range activities {
		counts[keyOf(activities[i].OccurredAt.In(now.Location()))]++
	}

	rows := make([]domain.MonthlyCount, len(months))
	for i, m := range months {
		rows[i] = domain.MonthlyCount{
			Label: m.Format(MonthLabelFormat),
			Year:  m.Year(),
			Month: int(m.Month()),
			Count: counts[keyOf(m)],
		}
	}
	return rows
}

// RevenueTrend sums the amounts of won opportunities by the calendar month of
// their closing date. Opportunities without a closing date are skipped.
func RevenueTrend(opportunities []domain.Opportunity, now time.Time) []domain.MonthlyAmount {
	months := MonthWindow(now, TrendMonths)
	sums := make(map[monthKey]decimal.Decimal, len(months))
	for i := range opportunities {
		o := &opportunities[i]
		if o.Stage != domain.StageWonClosed || o.ClosingDate == nil || !o.Amount.Valid {
			continue
		}
		k := keyOf(o.ClosingDate.In(now.Location()))
		sums[k] = sums[k].Add(o.Amount.Decimal)
	}

	rows := make([]domain.MonthlyAmount, len(months))
	for i, m := range months {
		rows[i] = domain.MonthlyAmount{
			Label:  m.Format(MonthLabelFormat),
			Year:   m.Year(),
			Month:  int(m.Month()),
			Amount: toFloat(sums[keyOf(m)]),
		}
	}
	return rows
}

// CityDistribution counts companies per non-empty city and keeps the top ten
// by count. Ties keep no particular order.
func CityDistribution(companies []domain.Company) []domain.CityReport {
	counts := make(map[string]int)
	for i := range companies {
		city := strings.TrimSpace(companies[i].City)
		if city == "" {
			continue
		}
		counts[city]++
	}

	rows := make([]domain.CityReport, 0, len(counts))
	for city, n := range counts {
		rows = append(rows, domain.CityReport{City: city, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })

	if len(rows) > TopCities {
		rows = rows[:TopCities]
	}
	return rows
}

// TaskStatusDistribution counts active tasks per status, ordered by status ordinal
func TaskStatusDistribution(tasks []domain.Task) []domain.TaskStatusReport {
	counts := make(map[domain.TaskStatus]int)
	for i := range tasks {
		if !tasks[i].Active {
			continue
		}
		counts[tasks[i].Status]++
	}

	statuses := make([]domain.TaskStatus, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })

	rows := make([]domain.TaskStatusReport, len(statuses))
	for i, s := range statuses {
		rows[i] = domain.TaskStatusReport{
			Status:        s,
			StatusOrdinal: int(s),
			DisplayName:   s.DisplayName(),
			Count:         counts[s],
		}
	}
	return rows
}

// RecentActivities returns at most n activities, newest occurrence first
func RecentActivities(activities []domain.Activity, n int) []domain.Activity {
	sorted := make([]domain.Activity, len(activities))
	copy(sorted, activities)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OccurredAt.After(sorted[j].OccurredAt) })
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

type monthKey struct {
	year  int
	month time.Month
}

func keyOf(t time.Time) monthKey {
	return monthKey{year: t.Year(), month: t.Month()}
}

func safeDiv(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return toFloat(decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(total))))
}

func toFloat(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
