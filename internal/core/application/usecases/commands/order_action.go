package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/guard"
)

// orderAction is the part shared by every command that acts on an existing order.
type orderAction struct {
	orderID kernel.UUID
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func newOrderAction(orderID kernel.UUID, actor kernel.Actor) (orderAction, error) {
	if err := errors.Join(orderID.Validate(), actor.Validate()); err != nil {
		return orderAction{}, err
	}
	return orderAction{orderID: orderID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

// OrderID returns the order the command acts on.
func (a orderAction) OrderID() kernel.UUID {
	return a.orderID
}

// Actor returns the authenticated caller.
func (a orderAction) Actor() kernel.Actor {
	return a.actor
}

// transition describes one order operation for orderTransitioner.
type transition struct {
	// event is the business event name used in logs.
	event string
	// apply runs the domain transition on the loaded order.
	apply func(o *order.Order, now time.Time) error
	// effect runs after the conditional order write, in the same transaction.
	effect func(ctx context.Context, o *order.Order, repos WorkerRepoFactory) error
}

// orderTransitioner runs the common sequence of every transition except accept:
// load, apply, conditional save on the loaded status, worker side effects, commit, notify.
type orderTransitioner struct {
	uowFactory UoWFactory
	notifier   ports.Notifier
	logger     *slog.Logger
	now        func() time.Time
}

func newOrderTransitioner(uowFactory UoWFactory, notifier ports.Notifier, logger *slog.Logger) orderTransitioner {
	return orderTransitioner{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (t orderTransitioner) run(ctx context.Context, orderID kernel.UUID, tr transition) (*order.Order, error) {
	uow := t.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()
	o, err := orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := o.Status()
	if err = tr.apply(o, t.now()); err != nil {
		return nil, err
	}

	if err = orders.Update(ctx, o, previous); err != nil {
		return nil, err
	}

	if tr.effect != nil {
		if err = tr.effect(ctx, o, uow); err != nil {
			return nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	t.logger.Info(tr.event,
		"order_id", o.ID().String(),
		"order_number", o.Number(),
		"from", previous.String(),
		"to", o.Status().String(),
	)
	t.notifier.OrderStatusChanged(ctx, o, previous)

	return o, nil
}
