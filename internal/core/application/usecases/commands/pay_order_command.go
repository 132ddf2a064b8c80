package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var ErrPayOrderCommandIsNotConstructed = errors.New(
	"PayOrderCommand must be created via NewPayOrderCommand constructor",
)

// PayOrderCommand records that the customer paid a completed order. The payment
// itself happens outside the service; only the method is recorded.
type PayOrderCommand struct {
	orderAction
	method string
}

func NewPayOrderCommand(orderID kernel.UUID, actor kernel.Actor, method string) (PayOrderCommand, error) {
	action, err := newOrderAction(orderID, actor)
	if err != nil {
		return PayOrderCommand{}, err
	}
	if strings.TrimSpace(method) == "" {
		return PayOrderCommand{}, errs.NewValueIsRequiredError("paymentMethod")
	}
	return PayOrderCommand{orderAction: action, method: method}, nil
}

// Validate ensures the command was created through the constructor.
func (c PayOrderCommand) Validate() error {
	return c.guard.Validate(ErrPayOrderCommandIsNotConstructed)
}

func (c PayOrderCommand) Method() string {
	return c.method
}
