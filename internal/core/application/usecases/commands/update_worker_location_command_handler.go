package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// UpdateWorkerLocationCommandHandler stores a worker's position and forwards it to the
// followers of the worker's active order.
type UpdateWorkerLocationCommandHandler struct {
	uowFactory UoWFactory
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewUpdateWorkerLocationCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) UpdateWorkerLocationCommandHandler {
	return UpdateWorkerLocationCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     logger,
	}
}

// Handle returns the id of the worker's active order, nil when the worker has none.
func (h UpdateWorkerLocationCommandHandler) Handle(ctx context.Context, cmd UpdateWorkerLocationCommand) (*kernel.UUID, error) {
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

	workerID := cmd.Actor().ID
	if err := uow.WorkerRepository().UpdateLocation(ctx, workerID, cmd.Location(), time.Now().UTC()); err != nil {
		return nil, err
	}

	var activeOrderID *kernel.UUID
	active, err := uow.OrderRepository().GetActiveByWorker(ctx, workerID)
	switch {
	case err == nil:
		id := active.ID()
		activeOrderID = &id
	case !errors.Is(err, errs.ErrObjectNotFound):
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Debug("location_update",
		"worker_id", workerID.String(),
		"location", cmd.Location().String(),
	)
	h.notifier.WorkerLocationChanged(ctx, workerID, cmd.Location(), activeOrderID)

	return activeOrderID, nil
}
