package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/robfig/cron/v3"
)

// DefaultPresenceSweepSchedule runs the sweep every five minutes.
const DefaultPresenceSweepSchedule = "@every 5m"

// Sweeper evicts idle connections.
type Sweeper interface {
	Sweep(now time.Time) []kernel.Actor
}

// PresenceSweepJob periodically removes connections that stopped sending anything,
// which covers sessions that vanished without a clean disconnect.
type PresenceSweepJob struct {
	sweeper  Sweeper
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
	now      func() time.Time
}

// NewPresenceSweepJob creates the job. An empty schedule means DefaultPresenceSweepSchedule.
func NewPresenceSweepJob(sweeper Sweeper, schedule string, logger *slog.Logger) *PresenceSweepJob {
	if schedule == "" {
		schedule = DefaultPresenceSweepSchedule
	}
	return &PresenceSweepJob{
		sweeper:  sweeper,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "presence_sweep_job"),
		now:      time.Now,
	}
}

// Start schedules the sweep.
func (j *PresenceSweepJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Presence sweep job started", "schedule", j.schedule)
	return nil
}

// Run performs one sweep and returns the number of evicted connections.
func (j *PresenceSweepJob) Run(ctx context.Context) int {
	evicted := j.sweeper.Sweep(j.now())
	if len(evicted) > 0 {
		j.logger.InfoContext(ctx, "Presence sweep evicted idle connections", "evicted", len(evicted))
	}
	return len(evicted)
}

// Stop stops the schedule and waits for a running sweep to finish.
func (j *PresenceSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Presence sweep job stopped")
}
