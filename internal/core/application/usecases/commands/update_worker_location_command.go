package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateWorkerLocationCommandIsNotConstructed = errors.New(
	"UpdateWorkerLocationCommand must be created via NewUpdateWorkerLocationCommand constructor",
)

// UpdateWorkerLocationCommand is a worker's position report, sent over REST or the
// realtime update_location event.
type UpdateWorkerLocationCommand struct {
	actor    kernel.Actor
	location kernel.Location

	guard guard.ConstructorGuard
}

func NewUpdateWorkerLocationCommand(actor kernel.Actor, location kernel.Location) (UpdateWorkerLocationCommand, error) {
	if err := errors.Join(actor.Validate(), location.Validate()); err != nil {
		return UpdateWorkerLocationCommand{}, err
	}
	if !actor.Is(kernel.RoleWorker) {
		return UpdateWorkerLocationCommand{}, errs.NewNotAuthorizedError(actor.ID.String(), "only workers report a location")
	}

	return UpdateWorkerLocationCommand{actor: actor, location: location, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateWorkerLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateWorkerLocationCommandIsNotConstructed)
}

func (c UpdateWorkerLocationCommand) Actor() kernel.Actor {
	return c.actor
}

func (c UpdateWorkerLocationCommand) Location() kernel.Location {
	return c.location
}
