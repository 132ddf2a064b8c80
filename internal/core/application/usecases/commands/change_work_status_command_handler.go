package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/worker"
)

// ChangeWorkStatusCommandHandler switches a worker between available and offline.
// A busy worker is refused; the write is conditional on the status that was read,
// so a concurrent acceptance can not be overwritten.
type ChangeWorkStatusCommandHandler struct {
	uowFactory WorkerUoWFactory
	logger     *slog.Logger
}

func NewChangeWorkStatusCommandHandler(uowFactory WorkerUoWFactory, logger *slog.Logger) ChangeWorkStatusCommandHandler {
	return ChangeWorkStatusCommandHandler{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

func (h ChangeWorkStatusCommandHandler) Handle(ctx context.Context, cmd ChangeWorkStatusCommand) (*worker.Worker, error) {
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
	w, err := workers.Get(ctx, cmd.Actor().ID)
	if err != nil {
		return nil, err
	}

	previous := w.WorkStatus()
	if err = w.ChangeWorkStatus(cmd.Target()); err != nil {
		return nil, err
	}

	if err = workers.UpdateProfile(ctx, w, previous); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Info("worker_status_change",
		"worker_id", w.ID().String(),
		"from", previous.String(),
		"to", w.WorkStatus().String(),
	)
	return w, nil
}
