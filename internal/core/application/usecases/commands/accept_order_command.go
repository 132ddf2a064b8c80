package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var ErrAcceptOrderCommandIsNotConstructed = errors.New(
	"AcceptOrderCommand must be created via NewAcceptOrderCommand constructor",
)

// AcceptOrderCommand is a worker's claim on a pending order.
type AcceptOrderCommand struct {
	orderAction
}

// NewAcceptOrderCommand validates the claim. Only workers accept orders.
func NewAcceptOrderCommand(orderID kernel.UUID, actor kernel.Actor) (AcceptOrderCommand, error) {
	action, err := newOrderAction(orderID, actor)
	if err != nil {
		return AcceptOrderCommand{}, err
	}
	if !actor.Is(kernel.RoleWorker) {
		return AcceptOrderCommand{}, errs.NewNotAuthorizedError(actor.ID.String(), "only workers accept orders")
	}
	return AcceptOrderCommand{orderAction: action}, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptOrderCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOrderCommandIsNotConstructed)
}
