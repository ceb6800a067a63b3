package service

import (
	"context"
	"fmt"

	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/mapper"
	"github.com/tuncrm/crm-api/internal/report"
	"github.com/tuncrm/crm-api/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultRecentActivities = 10
	MaxRecentActivities     = 100
)

// DashboardService loads row snapshots and hands them to the report package
type DashboardService struct {
	companyRepo     *repository.CompanyRepository
	opportunityRepo *repository.OpportunityRepository
	activityRepo    *repository.ActivityRepository
	taskRepo        *repository.TaskRepository
	logger          *zap.Logger
	now             Clock
}

func NewDashboardService(
	companyRepo *repository.CompanyRepository,
	opportunityRepo *repository.OpportunityRepository,
	activityRepo *repository.ActivityRepository,
	taskRepo *repository.TaskRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		companyRepo:     companyRepo,
		opportunityRepo: opportunityRepo,
		activityRepo:    activityRepo,
		taskRepo:        taskRepo,
		logger:          logger,
		now:             utcNow,
	}
}

// Stats returns the headline counters
func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	now := s.now()
	monthStart := report.MonthWindow(now, 1)[0]
	stats := &domain.DashboardStats{}

	counters := []struct {
		name  string
		dst   *int64
		count func(context.Context) (int64, error)
	}{
		{"companies", &stats.TotalCompanies, s.companyRepo.Count},
		{"opportunities", &stats.TotalOpportunities, s.opportunityRepo.Count},
		{"active opportunities", &stats.ActiveOpportunities, s.opportunityRepo.CountActive},
		{"won opportunities", &stats.WonOpportunities, func(ctx context.Context) (int64, error) {
			return s.opportunityRepo.CountByStage(ctx, domain.StageWonClosed)
		}},
		{"activities", &stats.TotalActivities, s.activityRepo.Count},
		{"activities this month", &stats.ActivitiesThisMonth, func(ctx context.Context) (int64, error) {
			return s.activityRepo.CountBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0))
		}},
		{"tasks", &stats.TotalTasks, s.taskRepo.Count},
		{"overdue tasks", &stats.OverdueTasks, func(ctx context.Context) (int64, error) {
			return s.taskRepo.CountOverdue(ctx, now)
		}},
	}

	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.name, err)
		}
		*c.dst = n
	}
	return stats, nil
}

func (s *DashboardService) StageDistribution(ctx context.Context) ([]domain.StageReport, error) {
	opportunities, err := s.opportunityRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load opportunities: %w", err)
	}
	return report.StageDistribution(opportunities), nil
}

func (s *DashboardService) ActivityTrend(ctx context.Context) ([]domain.MonthlyCount, error) {
	now := s.now()
	from := report.WindowStart(now)
	to := report.MonthWindow(now, 1)[0].AddDate(0, 1, 0)

	activities, err := s.activityRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	return report.ActivityTrend(activities, now), nil
}

func (s *DashboardService) RevenueTrend(ctx context.Context) ([]domain.MonthlyAmount, error) {
	now := s.now()
	opportunities, err := s.opportunityRepo.ListWonClosedSince(ctx, report.WindowStart(now))
	if err != nil {
		return nil, fmt.Errorf("failed to load won opportunities: %w", err)
	}
	return report.RevenueTrend(opportunities, now), nil
}

func (s *DashboardService) CityDistribution(ctx context.Context) ([]domain.CityReport, error) {
	companies, err := s.companyRepo.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load company cities: %w", err)
	}
	return report.CityDistribution(companies), nil
}

func (s *DashboardService) TaskStatusDistribution(ctx context.Context) ([]domain.TaskStatusReport, error) {
	tasks, err := s.taskRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return report.TaskStatusDistribution(tasks), nil
}

// RecentActivities returns the latest n activities. n <= 0 means the default; it is capped at MaxRecentActivities.
func (s *DashboardService) RecentActivities(ctx context.Context, n int) ([]domain.ActivityDTO, error) {
	if n <= 0 {
		n = DefaultRecentActivities
	}
	if n > MaxRecentActivities {
		n = MaxRecentActivities
	}

	activities, err := s.activityRepo.Recent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent activities: %w", err)
	}
	activities = report.RecentActivities(activities, n)

	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	return dtos, nil
}
