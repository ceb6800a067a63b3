package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tuncrm/crm-api/internal/auth"
	"github.com/tuncrm/crm-api/internal/domain"
	"github.com/tuncrm/crm-api/internal/events"
	"github.com/tuncrm/crm-api/internal/notify"
	"github.com/tuncrm/crm-api/internal/repository"
	"github.com/tuncrm/crm-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testNow is a Saturday mid-month, on the hour
var testNow = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type repos struct {
	companies     *repository.CompanyRepository
	opportunities *repository.OpportunityRepository
	activities    *repository.ActivityRepository
	users         *repository.UserRepository
	tasks         *repository.TaskRepository
}

func setupRepos(t *testing.T) (*gorm.DB, repos) {
	db := testutil.SetupTestDB(t)
	return db, repos{
		companies:     repository.NewCompanyRepository(db),
		opportunities: repository.NewOpportunityRepository(db),
		activities:    repository.NewActivityRepository(db),
		users:         repository.NewUserRepository(db),
		tasks:         repository.NewTaskRepository(db),
	}
}

func callerContext(user *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.FullName(),
		Role:   user.Role,
	})
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// recordingNotifier keeps delivered notifications and can fail selected kinds
type recordingNotifier struct {
	sent []notify.Notification
	fail map[notify.Kind]error
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Notification) error {
	if err := n.fail[msg.Kind]; err != nil {
		return err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) byKind(kind notify.Kind) *notify.Notification {
	for i := range n.sent {
		if n.sent[i].Kind == kind {
			return &n.sent[i]
		}
	}
	return nil
}

func nopLogger() *zap.Logger { return zap.NewNop() }
