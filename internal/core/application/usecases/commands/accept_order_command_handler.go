package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// AcceptOrderCommandHandler assigns a pending order to the first worker who claims it.
//
// Two conditional writes run in one transaction:
//
//	UPDATE orders  SET status='accepted', worker_id=?  WHERE id=? AND status='pending' AND worker_id IS NULL
//	UPDATE workers SET work_status='busy'              WHERE id=? AND work_status='available'
//
// When several workers accept the same order concurrently exactly one succeeds; the
// others get an AlreadyAssignedError and no worker other than the winner turns busy.
//
// Example:
//
//	handler := NewAcceptOrderCommandHandler(uowFactory, notifier, logger)
//	accepted, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrAlreadyAssigned):
//	    // another worker was faster
//	case err != nil:
//	    return err
//	}
type AcceptOrderCommandHandler struct {
	uowFactory UoWFactory
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewAcceptOrderCommandHandler creates a handler for order acceptance.
func NewAcceptOrderCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     logger,
	}
}

// Handle accepts the order for the worker behind the command's actor.
//
// Returns:
//   - *order.Order: the accepted order
//   - error: NotAuthorizedError for an unapproved worker, TransitionIsInvalidError when
//     the worker is not available or the order was cancelled, AlreadyAssignedError when
//     another worker won, ObjectNotFoundError for an unknown order or worker
func (h AcceptOrderCommandHandler) Handle(ctx context.Context, cmd AcceptOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	workers := uow.WorkerRepository()
	orders := uow.OrderRepository()

	w, err := workers.Get(ctx, cmd.Actor().ID)
	if err != nil {
		return nil, err
	}
	if err = w.Occupy(); err != nil {
		return nil, err
	}

	o, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if err = o.Accept(cmd.Actor(), time.Now().UTC()); err != nil {
		return nil, classifyAcceptError(o, err)
	}

	if err = orders.Accept(ctx, o); err != nil {
		return nil, err
	}
	if err = workers.Occupy(ctx, w.ID()); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Info("order_accept",
		"order_id", o.ID().String(),
		"order_number", o.Number(),
		"worker_id", w.ID().String(),
	)
	h.notifier.OrderStatusChanged(ctx, o, order.Pending)

	return o, nil
}

// classifyAcceptError reports a pre-read order that is already assigned as lost race.
// Cancelled orders keep the invalid transition error.
func classifyAcceptError(o *order.Order, err error) error {
	if errors.Is(err, errs.ErrTransitionIsInvalid) && o.Status() != order.Cancelled && o.WorkerID() != nil {
		return errs.NewAlreadyAssignedError(o.ID().String())
	}
	return err
}
