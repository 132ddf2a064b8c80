package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// SubmitQuoteCommandHandler stores a quote on a confirmed order. A quoted order
// may be re-quoted until the customer confirms.
type SubmitQuoteCommandHandler struct {
	transitioner orderTransitioner
}

func NewSubmitQuoteCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) SubmitQuoteCommandHandler {
	return SubmitQuoteCommandHandler{transitioner: newOrderTransitioner(uowFactory, notifier, logger)}
}

func (h SubmitQuoteCommandHandler) Handle(ctx context.Context, cmd SubmitQuoteCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.transitioner.run(ctx, cmd.OrderID(), transition{
		event: "order_quote",
		apply: func(o *order.Order, now time.Time) error {
			return o.SubmitQuote(cmd.Actor(), cmd.Amount(), cmd.Note(), now)
		},
	})
}
