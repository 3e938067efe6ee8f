// Package scheduler runs the periodic maintenance jobs on gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/connecthub/connecthub/internal/shared/biztime"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

// BatchJob processes one batch and returns the number of items it handled.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

const (
	JobCredentialExpiry = "credential-expiry"
	JobInvitationExpiry = "invitation-expiry"

	invitationExpiryInterval = time.Hour
)

type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterCredentialExpiryJob refreshes or expires credentials whose token
// expiry has passed, every interval.
func (m *SchedulerManager) RegisterCredentialExpiryJob(job BatchJob, interval time.Duration) error {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if err := m.registerBatchJob(JobCredentialExpiry, job, interval, "credentials"); err != nil {
		return err
	}
	m.logger.Infow("registered credential expiry job", "interval", interval.String())
	return nil
}

// RegisterInvitationExpiryJob marks pending invitations past their expiry as expired.
func (m *SchedulerManager) RegisterInvitationExpiryJob(job BatchJob) error {
	if err := m.registerBatchJob(JobInvitationExpiry, job, invitationExpiryInterval, "workspace"); err != nil {
		return err
	}
	m.logger.Infow("registered invitation expiry job", "interval", invitationExpiryInterval.String())
	return nil
}

func (m *SchedulerManager) registerBatchJob(name string, job BatchJob, interval time.Duration, tag string) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			m.runBatch(ctx, name, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags(tag, name),
		gocron.WithName(name),
	)
	return err
}

func (m *SchedulerManager) runBatch(ctx context.Context, name string, job BatchJob) {
	m.logger.Debugw("scheduled job started", "job", name)

	startTime := biztime.NowUTC()
	count, err := job.Execute(ctx)
	if err != nil {
		// cancelled during shutdown
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("scheduled job failed",
			"job", name,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if count > 0 {
		m.logger.Infow("scheduled job processed items",
			"job", name,
			"count", count,
			"duration", time.Since(startTime),
		)
		return
	}
	m.logger.Debugw("scheduled job found nothing to process", "job", name)
}

func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to complete.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")
	err := m.scheduler.Shutdown()
	m.started = false
	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
