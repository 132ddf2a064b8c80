package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRebroadcastOrderCommandIsNotConstructed = errors.New(
	"RebroadcastOrderCommand must be created via NewRebroadcastOrderCommand constructor",
)

// RebroadcastOrderCommand re-runs matching for a pending order nobody accepted yet.
// It is issued by the rebroadcast job, not by users.
type RebroadcastOrderCommand struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRebroadcastOrderCommand(orderID kernel.UUID) (RebroadcastOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RebroadcastOrderCommand{}, err
	}
	return RebroadcastOrderCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c RebroadcastOrderCommand) Validate() error {
	return c.guard.Validate(ErrRebroadcastOrderCommandIsNotConstructed)
}

func (c RebroadcastOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}
