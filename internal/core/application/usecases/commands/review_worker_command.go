package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/worker"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrReviewWorkerCommandIsNotConstructed = errors.New(
	"ReviewWorkerCommand must be created via NewReviewWorkerCommand constructor",
)

// ReviewWorkerCommand is an admin's verification decision for a worker.
type ReviewWorkerCommand struct {
	workerID kernel.UUID
	decision worker.VerificationStatus

	guard guard.ConstructorGuard
}

// NewReviewWorkerCommand validates the decision: approved or rejected, issued by an admin.
func NewReviewWorkerCommand(
	admin kernel.Actor,
	workerID kernel.UUID,
	decision worker.VerificationStatus,
) (ReviewWorkerCommand, error) {
	if err := errors.Join(admin.Validate(), workerID.Validate()); err != nil {
		return ReviewWorkerCommand{}, err
	}
	if !admin.Is(kernel.RoleAdmin) {
		return ReviewWorkerCommand{}, errs.NewNotAuthorizedError(admin.ID.String(), "only admins review workers")
	}
	if decision != worker.VerificationApproved && decision != worker.VerificationRejected {
		return ReviewWorkerCommand{}, errs.NewValueIsInvalidError("verificationStatus")
	}

	return ReviewWorkerCommand{workerID: workerID, decision: decision, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c ReviewWorkerCommand) Validate() error {
	return c.guard.Validate(ErrReviewWorkerCommandIsNotConstructed)
}

func (c ReviewWorkerCommand) WorkerID() kernel.UUID {
	return c.workerID
}

func (c ReviewWorkerCommand) Decision() worker.VerificationStatus {
	return c.decision
}
