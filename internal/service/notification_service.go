package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/notify"
	"github.com/tuncrm/crm-api/internal/repository"
	"go.uber.org/zap"
)

// DefaultStaleOpportunityAge applies when no threshold is configured
const DefaultStaleOpportunityAge = 7 * 24 * time.Hour

// SweepResult summarises one notification sweep
type SweepResult struct {
	OverdueTasks       int       `json:"overdueTasks"`
	TasksDueToday      int       `json:"tasksDueToday"`
	StaleOpportunities int       `json:"staleOpportunities"`
	UpcomingActivities int       `json:"upcomingActivities"`
	Delivered          int       `json:"delivered"`
	Failed             int       `json:"failed"`
	RanAt              time.Time `json:"ranAt"`
}

// NotificationService collects reminder-worthy rows and hands them to a Notifier.
// Delivery failures are counted, never returned.
type NotificationService struct {
	taskRepo        *repository.TaskRepository
	opportunityRepo *repository.OpportunityRepository
	activityRepo    *repository.ActivityRepository
	userRepo        *repository.UserRepository
	notifier        notify.Notifier
	staleAfter      time.Duration
	logger          *zap.Logger
	now             Clock
}

func NewNotificationService(
	taskRepo *repository.TaskRepository,
	opportunityRepo *repository.OpportunityRepository,
	activityRepo *repository.ActivityRepository,
	userRepo *repository.UserRepository,
	notifier notify.Notifier,
	staleAfter time.Duration,
	logger *zap.Logger,
) *NotificationService {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleOpportunityAge
	}
	return &NotificationService{
		taskRepo:        taskRepo,
		opportunityRepo: opportunityRepo,
		activityRepo:    activityRepo,
		userRepo:        userRepo,
		notifier:        notifier,
		staleAfter:      staleAfter,
		logger:          logger,
		now:             utcNow,
	}
}

// Sweep runs every collector once. A failing query aborts the sweep; a failing
// delivery only bumps the Failed counter.
func (s *NotificationService) Sweep(ctx context.Context) (*SweepResult, error) {
	now := s.now()
	today := domain.StartOfDay(now)
	result := &SweepResult{RanAt: now}

	managers, err := s.managerEmails(ctx)
	if err != nil {
		return nil, err
	}

	overdue, err := s.taskRepo.ListOverdue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue tasks: %w", err)
	}
	result.OverdueTasks = len(overdue)
	s.deliver(ctx, result, taskNotification(notify.KindOverdueTasks, "Geciken görevler", overdue, managers, now))

	dueToday, err := s.taskRepo.ListDueBetween(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks due today: %w", err)
	}
	result.TasksDueToday = len(dueToday)
	s.deliver(ctx, result, taskNotification(notify.KindTasksDueToday, "Bugün bitmesi gereken görevler", dueToday, managers, now))

	stale, err := s.opportunityRepo.ListStale(ctx, now.Add(-s.staleAfter))
	if err != nil {
		return nil, fmt.Errorf("failed to list stale opportunities: %w", err)
	}
	result.StaleOpportunities = len(stale)
	s.deliver(ctx, result, staleNotification(stale, managers, now))

	upcoming, err := s.activityRepo.ListBetween(ctx, today.AddDate(0, 0, 1), today.AddDate(0, 0, 2))
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming activities: %w", err)
	}
	result.UpcomingActivities = len(upcoming)
	s.deliver(ctx, result, activityNotification(upcoming, managers, now))

	s.logger.Info("notification sweep finished",
		zap.Int("overdue_tasks", result.OverdueTasks),
		zap.Int("tasks_due_today", result.TasksDueToday),
		zap.Int("stale_opportunities", result.StaleOpportunities),
		zap.Int("upcoming_activities", result.UpcomingActivities),
		zap.Int("delivered", result.Delivered),
		zap.Int("failed", result.Failed))

	return result, nil
}

// deliver skips empty groups
func (s *NotificationService) deliver(ctx context.Context, result *SweepResult, n notify.Notification) {
	if len(n.Items) == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		result.Failed++
		s.logger.Warn("notification delivery failed",
			zap.String("kind", string(n.Kind)),
			zap.Int("items", len(n.Items)),
			zap.Error(err))
		return
	}
	result.Delivered++
}

// managerEmails are copied on every notification
func (s *NotificationService) managerEmails(ctx context.Context) ([]string, error) {
	managers, err := s.userRepo.ListByRoles(ctx, domain.RoleAdmin, domain.RoleManager)
	if err != nil {
		return nil, fmt.Errorf("failed to list managers: %w", err)
	}
	emails := make([]string, 0, len(managers))
	for i := range managers {
		emails = append(emails, managers[i].Email)
	}
	return emails, nil
}

func taskNotification(kind notify.Kind, subject string, tasks []domain.Task, managers []string, now time.Time) notify.Notification {
	recipients := newRecipients(managers)
	items := make([]notify.Item, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		detail := t.Priority.DisplayName()
		if t.DueDate != nil {
			detail += " / " + t.DueDate.Format("02.01.2006 15:04")
		}
		if t.Assignee != nil {
			recipients.add(t.Assignee.Email)
			detail += " / " + t.Assignee.FullName()
		}
		items[i] = notify.Item{ID: t.ID, Title: t.Title, Detail: detail}
	}
	return notify.Notification{Kind: kind, Subject: subject, Recipients: recipients.list(), Items: items, CreatedAt: now}
}

func staleNotification(opportunities []domain.Opportunity, managers []string, now time.Time) notify.Notification {
	recipients := newRecipients(managers)
	items := make([]notify.Item, len(opportunities))
	for i := range opportunities {
		o := &opportunities[i]
		days := int(now.Sub(o.LastTouched()).Hours() / 24)
		detail := fmt.Sprintf("%s / %d gündür güncellenmedi", o.Stage.DisplayName(), days)
		if o.Company != nil {
			detail = o.Company.Name + " / " + detail
		}
		if o.User != nil {
			recipients.add(o.User.Email)
		}
		items[i] = notify.Item{ID: o.ID, Title: o.Name, Detail: detail}
	}
	return notify.Notification{
		Kind:       notify.KindStaleOpportunities,
		Subject:    "Uzun süredir güncellenmeyen fırsatlar",
		Recipients: recipients.list(),
		Items:      items,
		CreatedAt:  now,
	}
}

func activityNotification(activities []domain.Activity, managers []string, now time.Time) notify.Notification {
	recipients := newRecipients(managers)
	items := make([]notify.Item, len(activities))
	for i := range activities {
		a := &activities[i]
		detail := a.Type.DisplayName() + " / " + a.OccurredAt.Format("02.01.2006 15:04")
		if a.Company != nil {
			detail += " / " + a.Company.Name
		}
		if a.User != nil {
			recipients.add(a.User.Email)
		}
		items[i] = notify.Item{ID: a.ID, Title: a.Title, Detail: detail}
	}
	return notify.Notification{
		Kind:       notify.KindUpcomingActivities,
		Subject:    "Yarınki aktiviteler",
		Recipients: recipients.list(),
		Items:      items,
		CreatedAt:  now,
	}
}

type recipientSet map[string]struct{}

func newRecipients(seed []string) recipientSet {
	r := make(recipientSet, len(seed))
	for _, email := range seed {
		r.add(email)
	}
	return r
}

func (r recipientSet) add(email string) {
	if email != "" {
		r[email] = struct{}{}
	}
}

func (r recipientSet) list() []string {
	out := make([]string, 0, len(r))
	for email := range r {
		out = append(out, email)
	}
	sort.Strings(out)
	return out
}
