package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// CancelOrderCommandHandler cancels an order. When a worker was committed to it, the
// worker is released in the same transaction.
type CancelOrderCommandHandler struct {
	transitioner orderTransitioner
}

func NewCancelOrderCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{transitioner: newOrderTransitioner(uowFactory, notifier, logger)}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var release bool
	return h.transitioner.run(ctx, cmd.OrderID(), transition{
		event: "order_cancel",
		apply: func(o *order.Order, now time.Time) error {
			var err error
			release, err = o.Cancel(cmd.Actor(), cmd.Reason(), now)
			return err
		},
		effect: func(ctx context.Context, o *order.Order, repos WorkerRepoFactory) error {
			if !release {
				return nil
			}
			return repos.WorkerRepository().Release(ctx, *o.WorkerID())
		},
	})
}
