package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// ConfirmOrderCommandHandler moves an accepted order to confirmed.
type ConfirmOrderCommandHandler struct {
	transitioner orderTransitioner
}

func NewConfirmOrderCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) ConfirmOrderCommandHandler {
	return ConfirmOrderCommandHandler{transitioner: newOrderTransitioner(uowFactory, notifier, logger)}
}

// Handle confirms the order for its customer.
func (h ConfirmOrderCommandHandler) Handle(ctx context.Context, cmd ConfirmOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.transitioner.run(ctx, cmd.OrderID(), transition{
		event: "order_confirm",
		apply: func(o *order.Order, now time.Time) error {
			return o.Confirm(cmd.Actor(), now)
		},
	})
}
