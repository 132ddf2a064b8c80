package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// PayOrderCommandHandler moves a completed order to paid.
type PayOrderCommandHandler struct {
	transitioner orderTransitioner
}

func NewPayOrderCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) PayOrderCommandHandler {
	return PayOrderCommandHandler{transitioner: newOrderTransitioner(uowFactory, notifier, logger)}
}

func (h PayOrderCommandHandler) Handle(ctx context.Context, cmd PayOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.transitioner.run(ctx, cmd.OrderID(), transition{
		event: "order_pay",
		apply: func(o *order.Order, now time.Time) error {
			return o.Pay(cmd.Actor(), cmd.Method(), now)
		},
	})
}
