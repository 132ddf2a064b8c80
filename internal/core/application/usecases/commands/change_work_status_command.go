package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/worker"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrChangeWorkStatusCommandIsNotConstructed = errors.New(
	"ChangeWorkStatusCommand must be created via NewChangeWorkStatusCommand constructor",
)

// ChangeWorkStatusCommand is a worker going available or offline.
type ChangeWorkStatusCommand struct {
	actor  kernel.Actor
	target worker.WorkStatus

	guard guard.ConstructorGuard
}

func NewChangeWorkStatusCommand(actor kernel.Actor, target worker.WorkStatus) (ChangeWorkStatusCommand, error) {
	if err := actor.Validate(); err != nil {
		return ChangeWorkStatusCommand{}, err
	}
	if !actor.Is(kernel.RoleWorker) {
		return ChangeWorkStatusCommand{}, errs.NewNotAuthorizedError(actor.ID.String(), "only workers change their work status")
	}
	if target != worker.Available && target != worker.Offline {
		return ChangeWorkStatusCommand{}, errs.NewValueIsInvalidError("workStatus")
	}

	return ChangeWorkStatusCommand{actor: actor, target: target, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c ChangeWorkStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeWorkStatusCommandIsNotConstructed)
}

func (c ChangeWorkStatusCommand) Actor() kernel.Actor {
	return c.actor
}

func (c ChangeWorkStatusCommand) Target() worker.WorkStatus {
	return c.target
}
