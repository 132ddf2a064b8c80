package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
)

// CompleteWorkCommandHandler completes an in-progress order. In the same transaction
// the worker's statistics grow by the final amount and the worker becomes available.
type CompleteWorkCommandHandler struct {
	transitioner orderTransitioner
}

func NewCompleteWorkCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) CompleteWorkCommandHandler {
	return CompleteWorkCommandHandler{transitioner: newOrderTransitioner(uowFactory, notifier, logger)}
}

func (h CompleteWorkCommandHandler) Handle(ctx context.Context, cmd CompleteWorkCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var billed decimal.Decimal
	return h.transitioner.run(ctx, cmd.OrderID(), transition{
		event: "order_complete",
		apply: func(o *order.Order, now time.Time) error {
			amount, err := o.CompleteWork(cmd.Actor(), cmd.FinalAmount(), cmd.WorkContent(), now)
			billed = amount
			return err
		},
		effect: func(ctx context.Context, o *order.Order, repos WorkerRepoFactory) error {
			return repos.WorkerRepository().RecordCompletion(ctx, *o.WorkerID(), billed)
		},
	})
}
