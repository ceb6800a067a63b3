package jobs

import (
	"context"
	"time"

	"github.com/tuncrm/crm-api/internal/service"
	"go.uber.org/zap"
)

// NotificationJobName is the scheduler name of the notification sweep
const NotificationJobName = "notification_sweep"

// DefaultSweepTimeout bounds a single sweep when no timeout is configured
const DefaultSweepTimeout = 2 * time.Minute

// Sweeper is the part of the notification service the job needs
type Sweeper interface {
	Sweep(ctx context.Context) (*service.SweepResult, error)
}

// NotificationJob runs one notification sweep per tick
type NotificationJob struct {
	sweeper Sweeper
	logger  *zap.Logger
	timeout time.Duration
}

func NewNotificationJob(sweeper Sweeper, logger *zap.Logger, timeout time.Duration) *NotificationJob {
	if timeout <= 0 {
		timeout = DefaultSweepTimeout
	}
	return &NotificationJob{
		sweeper: sweeper,
		logger:  logger,
		timeout: timeout,
	}
}

// Run is the scheduler entry point. Errors are logged, never returned.
func (j *NotificationJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.Error("notification sweep failed", zap.Error(err))
	}
}

// RunOnce performs a sweep with the caller's context
func (j *NotificationJob) RunOnce(ctx context.Context) (*service.SweepResult, error) {
	start := time.Now()
	result, err := j.sweeper.Sweep(ctx)
	if err != nil {
		return nil, err
	}

	j.logger.Info("notification sweep job completed",
		zap.Int("delivered", result.Delivered),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// Register adds the job to the scheduler under NotificationJobName
func (j *NotificationJob) Register(s *Scheduler, cronExpr string) error {
	return s.AddJob(NotificationJobName, cronExpr, j.Run)
}
