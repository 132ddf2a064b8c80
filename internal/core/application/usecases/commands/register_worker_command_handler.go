package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/worker"
)

// RegisterWorkerCommandHandler stores a new worker profile. The worker starts
// offline and pending verification.
type RegisterWorkerCommandHandler struct {
	uowFactory WorkerUoWFactory
	logger     *slog.Logger
}

func NewRegisterWorkerCommandHandler(uowFactory WorkerUoWFactory, logger *slog.Logger) RegisterWorkerCommandHandler {
	return RegisterWorkerCommandHandler{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

func (h RegisterWorkerCommandHandler) Handle(ctx context.Context, cmd RegisterWorkerCommand) (*worker.Worker, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	w, err := worker.NewWorker(
		cmd.Actor().ID,
		cmd.Name(),
		cmd.Specialties(),
		cmd.EmergencyCapable(),
		cmd.MinOrderAmount(),
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.WorkerRepository().Add(ctx, w); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Info("worker_register", "worker_id", w.ID().String())
	return w, nil
}
