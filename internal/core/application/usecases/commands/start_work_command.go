package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
)

var ErrStartWorkCommandIsNotConstructed = errors.New(
	"StartWorkCommand must be created via NewStartWorkCommand constructor",
)

// StartWorkCommand tells the customer the assigned worker started the job.
type StartWorkCommand struct {
	orderAction
}

func NewStartWorkCommand(orderID kernel.UUID, actor kernel.Actor) (StartWorkCommand, error) {
	action, err := newOrderAction(orderID, actor)
	if err != nil {
		return StartWorkCommand{}, err
	}
	return StartWorkCommand{orderAction: action}, nil
}

// Validate ensures the command was created through the constructor.
func (c StartWorkCommand) Validate() error {
	return c.guard.Validate(ErrStartWorkCommandIsNotConstructed)
}
