package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// StartWorkCommandHandler moves an order with a confirmed quote to in_progress.
type StartWorkCommandHandler struct {
	transitioner orderTransitioner
}

func NewStartWorkCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) StartWorkCommandHandler {
	return StartWorkCommandHandler{transitioner: newOrderTransitioner(uowFactory, notifier, logger)}
}

func (h StartWorkCommandHandler) Handle(ctx context.Context, cmd StartWorkCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.transitioner.run(ctx, cmd.OrderID(), transition{
		event: "order_start",
		apply: func(o *order.Order, now time.Time) error {
			return o.StartWork(cmd.Actor(), now)
		},
	})
}
