// Package notify delivers sweep notifications. Delivery failures are reported
// to the caller, which decides whether they matter.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/tuncrm/crm-api/internal/events"
	"go.uber.org/zap"
)

// Kind identifies what a notification is about
type Kind string

const (
	KindOverdueTasks       Kind = "overdue_tasks"
	KindTasksDueToday      Kind = "tasks_due_today"
	KindStaleOpportunities Kind = "stale_opportunities"
	KindUpcomingActivities Kind = "upcoming_activities"
)

// Item is one line of a notification
type Item struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

type Notification struct {
	Kind       Kind      `json:"kind"`
	Subject    string    `json:"subject"`
	Recipients []string  `json:"recipients,omitempty"`
	Items      []Item    `json:"items"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the application log
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	titles := make([]string, len(n.Items))
	for i, item := range n.Items {
		titles[i] = item.Title
	}
	l.logger.Info("notification",
		zap.String("kind", string(n.Kind)),
		zap.String("subject", n.Subject),
		zap.Strings("recipients", n.Recipients),
		zap.Int("items", len(n.Items)),
		zap.Strings("titles", titles))
	return nil
}

// EventNotifier publishes notifications as domain events
type EventNotifier struct {
	publisher events.Publisher
}

func NewEventNotifier(publisher events.Publisher) *EventNotifier {
	return &EventNotifier{publisher: publisher}
}

func (e *EventNotifier) Notify(ctx context.Context, n Notification) error {
	event, err := events.NewEvent(events.TypeNotification, string(n.Kind), n, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	return e.publisher.Publish(ctx, event)
}

// Fanout delivers to every notifier and returns the first error
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n Notification) error {
	var first error
	for _, notifier := range f {
		if err := notifier.Notify(ctx, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}
