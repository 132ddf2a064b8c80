package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// CreateOrderCommandHandler stores a new pending order and announces it to the
// workers the dispatch matcher selects.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, numbers, matcher, notifier, logger)
//	created, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	// created is pending and matched workers received new_order_available
type CreateOrderCommandHandler struct {
	uowFactory UoWFactory
	numbers    ports.OrderNumberGenerator
	matcher    services.DispatchMatcher
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewCreateOrderCommandHandler creates a handler for order creation.
func NewCreateOrderCommandHandler(
	uowFactory UoWFactory,
	numbers ports.OrderNumberGenerator,
	matcher services.DispatchMatcher,
	notifier ports.Notifier,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		numbers:    numbers,
		matcher:    matcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// Handle creates the order and returns it. Workers are matched from the dispatchable
// set read in the same transaction; the broadcast happens after commit.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	number, err := h.numbers.Next(ctx)
	if err != nil {
		return nil, err
	}

	created, err := order.NewOrder(
		kernel.NewUUID(),
		number,
		cmd.Customer().ID,
		cmd.Details(),
		cmd.Location(),
		cmd.Priority(),
		cmd.EstimatedAmount(),
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

	if err = uow.OrderRepository().Add(ctx, created); err != nil {
		return nil, err
	}

	workers, err := uow.WorkerRepository().ListDispatchable(ctx, false)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Info("order_create",
		"order_id", created.ID().String(),
		"order_number", created.Number(),
		"priority", created.Priority().String(),
	)
	h.notifier.OrderCreated(ctx, created)

	// The order is committed: a matching failure only skips the broadcast.
	candidates, err := h.matcher.Match(services.CriteriaForOrder(created), workers)
	if err != nil {
		h.logger.Error("order_match_failed", "order_id", created.ID().String(), "error", err)
		return created, nil
	}
	h.logger.Debug("order_matched", "order_id", created.ID().String(), "matched_workers", len(candidates))
	h.notifier.OrderAvailable(ctx, created, candidateIDs(candidates))

	return created, nil
}

func candidateIDs(candidates []services.Candidate) []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.Worker.ID())
	}
	return ids
}
