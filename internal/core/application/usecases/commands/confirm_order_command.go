package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
)

var ErrConfirmOrderCommandIsNotConstructed = errors.New(
	"ConfirmOrderCommand must be created via NewConfirmOrderCommand constructor",
)

// ConfirmOrderCommand is the customer's confirmation of the worker who accepted the order.
type ConfirmOrderCommand struct {
	orderAction
}

func NewConfirmOrderCommand(orderID kernel.UUID, actor kernel.Actor) (ConfirmOrderCommand, error) {
	action, err := newOrderAction(orderID, actor)
	if err != nil {
		return ConfirmOrderCommand{}, err
	}
	return ConfirmOrderCommand{orderAction: action}, nil
}

// Validate ensures the command was created through the constructor.
func (c ConfirmOrderCommand) Validate() error {
	return c.guard.Validate(ErrConfirmOrderCommandIsNotConstructed)
}
