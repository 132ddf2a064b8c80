package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
)

var ErrConfirmQuoteCommandIsNotConstructed = errors.New(
	"ConfirmQuoteCommand must be created via NewConfirmQuoteCommand constructor",
)

// ConfirmQuoteCommand is the customer's acceptance of the current quote.
type ConfirmQuoteCommand struct {
	orderAction
}

func NewConfirmQuoteCommand(orderID kernel.UUID, actor kernel.Actor) (ConfirmQuoteCommand, error) {
	action, err := newOrderAction(orderID, actor)
	if err != nil {
		return ConfirmQuoteCommand{}, err
	}
	return ConfirmQuoteCommand{orderAction: action}, nil
}

// Validate ensures the command was created through the constructor.
func (c ConfirmQuoteCommand) Validate() error {
	return c.guard.Validate(ErrConfirmQuoteCommandIsNotConstructed)
}
