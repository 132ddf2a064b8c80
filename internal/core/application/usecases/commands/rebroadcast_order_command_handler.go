package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// RebroadcastOrderCommandHandler announces a still pending order to the workers who
// match it now. Workers that came online after creation get a chance to accept.
type RebroadcastOrderCommandHandler struct {
	uowFactory UoWFactory
	matcher    services.DispatchMatcher
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewRebroadcastOrderCommandHandler(
	uowFactory UoWFactory,
	matcher services.DispatchMatcher,
	notifier ports.Notifier,
	logger *slog.Logger,
) RebroadcastOrderCommandHandler {
	return RebroadcastOrderCommandHandler{
		uowFactory: uowFactory,
		matcher:    matcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// Handle returns the number of workers the order was sent to. An order that left
// pending in the meantime yields TransitionIsInvalidError and nothing is sent.
func (h RebroadcastOrderCommandHandler) Handle(ctx context.Context, cmd RebroadcastOrderCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return 0, err
	}
	if o.Status() != order.Pending {
		return 0, errs.NewTransitionIsInvalidError("order", o.Status().String(), "rebroadcast")
	}

	workers, err := uow.WorkerRepository().ListDispatchable(ctx, false)
	if err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	candidates, err := h.matcher.Match(services.CriteriaForOrder(o), workers)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	h.logger.Info("order_rebroadcast",
		"order_id", o.ID().String(),
		"order_number", o.Number(),
		"matched_workers", len(candidates),
	)
	h.notifier.OrderAvailable(ctx, o, candidateIDs(candidates))

	return len(candidates), nil
}
