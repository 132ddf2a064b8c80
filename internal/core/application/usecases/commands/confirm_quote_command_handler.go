package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// ConfirmQuoteCommandHandler moves a quoted order to quote_confirmed.
type ConfirmQuoteCommandHandler struct {
	transitioner orderTransitioner
}

func NewConfirmQuoteCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) ConfirmQuoteCommandHandler {
	return ConfirmQuoteCommandHandler{transitioner: newOrderTransitioner(uowFactory, notifier, logger)}
}

func (h ConfirmQuoteCommandHandler) Handle(ctx context.Context, cmd ConfirmQuoteCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.transitioner.run(ctx, cmd.OrderID(), transition{
		event: "order_confirm_quote",
		apply: func(o *order.Order, now time.Time) error {
			return o.ConfirmQuote(cmd.Actor(), now)
		},
	})
}
