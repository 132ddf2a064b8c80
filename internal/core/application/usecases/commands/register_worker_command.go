package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrRegisterWorkerCommandIsNotConstructed = errors.New(
	"RegisterWorkerCommand must be created via NewRegisterWorkerCommand constructor",
)

// RegisterWorkerCommand creates the worker profile of an authenticated worker.
// The profile id is the actor id.
type RegisterWorkerCommand struct {
	actor            kernel.Actor
	name             string
	specialties      []string
	emergencyCapable bool
	minOrderAmount   *decimal.Decimal

	guard guard.ConstructorGuard
}

// NewRegisterWorkerCommand validates the registration. minOrderAmount may be nil.
func NewRegisterWorkerCommand(
	actor kernel.Actor,
	name string,
	specialties []string,
	emergencyCapable bool,
	minOrderAmount *decimal.Decimal,
) (RegisterWorkerCommand, error) {
	if err := actor.Validate(); err != nil {
		return RegisterWorkerCommand{}, err
	}
	if !actor.Is(kernel.RoleWorker) {
		return RegisterWorkerCommand{}, errs.NewNotAuthorizedError(actor.ID.String(), "only workers register a worker profile")
	}

	return RegisterWorkerCommand{
		actor:            actor,
		name:             name,
		specialties:      specialties,
		emergencyCapable: emergencyCapable,
		minOrderAmount:   minOrderAmount,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RegisterWorkerCommand) Validate() error {
	return c.guard.Validate(ErrRegisterWorkerCommandIsNotConstructed)
}

func (c RegisterWorkerCommand) Actor() kernel.Actor {
	return c.actor
}

func (c RegisterWorkerCommand) Name() string {
	return c.name
}

func (c RegisterWorkerCommand) Specialties() []string {
	return c.specialties
}

func (c RegisterWorkerCommand) EmergencyCapable() bool {
	return c.emergencyCapable
}

func (c RegisterWorkerCommand) MinOrderAmount() *decimal.Decimal {
	return c.minOrderAmount
}
