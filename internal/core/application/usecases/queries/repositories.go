// Package queries contains the read side of the dispatch engine: single order lookups,
// the nearby browse for workers and customers, and the presence snapshot.
// Queries never open a transaction and never notify anyone.
package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/worker"
	"dispatch/internal/core/ports"
)

// OrderReader is the read subset of ports.OrderRepository.
type OrderReader interface {
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
	ListPending(ctx context.Context, filter ports.PendingFilter) ([]*order.Order, error)
}

// WorkerReader is the read subset of ports.WorkerRepository.
type WorkerReader interface {
	Get(ctx context.Context, id kernel.UUID) (*worker.Worker, error)
	ListDispatchable(ctx context.Context, includeBusy bool) ([]*worker.Worker, error)
}
