package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/worker"
)

// ReviewWorkerCommandHandler applies an admin's verification decision.
type ReviewWorkerCommandHandler struct {
	uowFactory WorkerUoWFactory
	logger     *slog.Logger
}

func NewReviewWorkerCommandHandler(uowFactory WorkerUoWFactory, logger *slog.Logger) ReviewWorkerCommandHandler {
	return ReviewWorkerCommandHandler{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

func (h ReviewWorkerCommandHandler) Handle(ctx context.Context, cmd ReviewWorkerCommand) (*worker.Worker, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	workers := uow.WorkerRepository()
	w, err := workers.Get(ctx, cmd.WorkerID())
	if err != nil {
		return nil, err
	}

	previous := w.WorkStatus()
	if err = w.Review(cmd.Decision()); err != nil {
		return nil, err
	}

	if err = workers.UpdateProfile(ctx, w, previous); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Info("worker_review",
		"worker_id", w.ID().String(),
		"verification_status", w.VerificationStatus().String(),
	)
	return w, nil
}
