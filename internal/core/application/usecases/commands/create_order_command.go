package commands

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a customer's request for an electrician.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(customer,
//	    order.Details{Title: "Socket sparks", Category: "electrical", Address: "12 Dongcheng Rd"},
//	    kernel.MustNewLocation(39.90, 116.40), order.PriorityUrgent, decimal.NewFromInt(200))
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct {
	customer  kernel.Actor
	details   order.Details
	location  kernel.Location
	priority  order.Priority
	estimated decimal.Decimal

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the request. Only customers create orders; an empty
// priority means normal and a zero estimate means the customer gave none.
func NewCreateOrderCommand(
	customer kernel.Actor,
	details order.Details,
	location kernel.Location,
	priority order.Priority,
	estimated decimal.Decimal,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCustomer(customer),
		cmd.setDetails(details),
		cmd.setLocation(location),
		cmd.setPriority(priority),
		cmd.setEstimated(estimated),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Customer() kernel.Actor {
	return c.customer
}

func (c CreateOrderCommand) Details() order.Details {
	return c.details
}

func (c CreateOrderCommand) Location() kernel.Location {
	return c.location
}

func (c CreateOrderCommand) Priority() order.Priority {
	return c.priority
}

func (c CreateOrderCommand) EstimatedAmount() decimal.Decimal {
	return c.estimated
}

func (c *CreateOrderCommand) setCustomer(customer kernel.Actor) error {
	if err := customer.Validate(); err != nil {
		return err
	}
	if !customer.Is(kernel.RoleCustomer) {
		return errs.NewNotAuthorizedError(customer.ID.String(), "only customers create orders")
	}

	c.customer = customer
	return nil
}

func (c *CreateOrderCommand) setDetails(details order.Details) error {
	if strings.TrimSpace(details.Title) == "" {
		return errs.NewValueIsRequiredError("title")
	}

	c.details = details
	return nil
}

func (c *CreateOrderCommand) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}

func (c *CreateOrderCommand) setPriority(priority order.Priority) error {
	parsed, err := order.ParsePriority(string(priority))
	if err != nil {
		return err
	}

	c.priority = parsed
	return nil
}

func (c *CreateOrderCommand) setEstimated(estimated decimal.Decimal) error {
	if estimated.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("estimatedAmount", fmt.Errorf("%s is negative", estimated))
	}

	c.estimated = estimated
	return nil
}
