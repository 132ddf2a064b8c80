package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultRebroadcastSchedule looks for unaccepted orders every two minutes.
	DefaultRebroadcastSchedule = "@every 2m"
	// DefaultRebroadcastMinAge leaves fresh orders to the announcement made at creation.
	DefaultRebroadcastMinAge = 2 * time.Minute
	// rebroadcastBatch caps the orders handled per run, oldest first.
	rebroadcastBatch = 100
)

// PendingOrderLister lists orders nobody accepted yet.
type PendingOrderLister interface {
	ListPending(ctx context.Context, filter ports.PendingFilter) ([]*order.Order, error)
}

// Rebroadcaster re-announces one pending order.
type Rebroadcaster interface {
	Handle(ctx context.Context, cmd commands.RebroadcastOrderCommand) (int, error)
}

// PendingOrderRebroadcastJob offers orders that are still pending after minAge to the
// workers who match them now, for example workers who came online after creation.
type PendingOrderRebroadcastJob struct {
	orders   PendingOrderLister
	handler  Rebroadcaster
	schedule string
	minAge   time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
	now      func() time.Time
}

func NewPendingOrderRebroadcastJob(
	orders PendingOrderLister,
	handler Rebroadcaster,
	schedule string,
	minAge time.Duration,
	logger *slog.Logger,
) *PendingOrderRebroadcastJob {
	if schedule == "" {
		schedule = DefaultRebroadcastSchedule
	}
	if minAge <= 0 {
		minAge = DefaultRebroadcastMinAge
	}
	return &PendingOrderRebroadcastJob{
		orders:   orders,
		handler:  handler,
		schedule: schedule,
		minAge:   minAge,
		cron:     cron.New(),
		logger:   logger.With("component", "pending_order_rebroadcast_job"),
		now:      time.Now,
	}
}

// Start schedules the rebroadcast.
func (j *PendingOrderRebroadcastJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if _, runErr := j.Run(context.Background()); runErr != nil {
			j.logger.Error("Pending order rebroadcast failed", "error", runErr)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Pending order rebroadcast job started", "schedule", j.schedule)
	return nil
}

// Run rebroadcasts every pending order older than minAge.
//
// Returns:
//   - int: number of worker notifications sent
//   - error: failure to list pending orders; per-order failures are logged and skipped
func (j *PendingOrderRebroadcastJob) Run(ctx context.Context) (int, error) {
	pending, err := j.orders.ListPending(ctx, ports.PendingFilter{
		CreatedBefore: j.now().Add(-j.minAge),
		Limit:         rebroadcastBatch,
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, o := range pending {
		cmd, cmdErr := commands.NewRebroadcastOrderCommand(o.ID())
		if cmdErr != nil {
			return sent, cmdErr
		}

		n, handleErr := j.handler.Handle(ctx, cmd)
		if handleErr != nil {
			// Accepted or cancelled since it was listed.
			if !errors.Is(handleErr, errs.ErrTransitionIsInvalid) {
				j.logger.ErrorContext(ctx, "Order rebroadcast failed", "order_id", o.ID().String(), "error", handleErr)
			}
			continue
		}
		sent += n
	}
	return sent, nil
}

// Stop stops the schedule and waits for a running rebroadcast to finish.
func (j *PendingOrderRebroadcastJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Pending order rebroadcast job stopped")
}
