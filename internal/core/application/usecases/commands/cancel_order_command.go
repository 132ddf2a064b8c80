package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand cancels a pending or active order. The customer, the assigned
// worker or an admin may cancel; a reason is required.
type CancelOrderCommand struct {
	orderAction
	reason string
}

func NewCancelOrderCommand(orderID kernel.UUID, actor kernel.Actor, reason string) (CancelOrderCommand, error) {
	action, err := newOrderAction(orderID, actor)
	if err != nil {
		return CancelOrderCommand{}, err
	}
	if strings.TrimSpace(reason) == "" {
		return CancelOrderCommand{}, errs.NewValueIsRequiredError("reason")
	}
	return CancelOrderCommand{orderAction: action, reason: reason}, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) Reason() string {
	return c.reason
}
