package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// RateOrderCommandHandler stores the rating and folds it into the worker's average.
type RateOrderCommandHandler struct {
	transitioner orderTransitioner
}

func NewRateOrderCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) RateOrderCommandHandler {
	return RateOrderCommandHandler{transitioner: newOrderTransitioner(uowFactory, notifier, logger)}
}

func (h RateOrderCommandHandler) Handle(ctx context.Context, cmd RateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.transitioner.run(ctx, cmd.OrderID(), transition{
		event: "order_rate",
		apply: func(o *order.Order, now time.Time) error {
			return o.Rate(cmd.Actor(), cmd.Rating(), cmd.Comment(), now)
		},
		effect: func(ctx context.Context, o *order.Order, repos WorkerRepoFactory) error {
			return repos.WorkerRepository().RecordRating(ctx, *o.WorkerID(), o.Rating())
		},
	})
}
