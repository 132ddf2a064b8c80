// Package ports defines the contracts between the dispatch core and its adapters:
// persistence, unit of work, notification fan-out, presence and order numbering.
package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// PendingFilter narrows ListPending.
type PendingFilter struct {
	// CreatedBefore keeps only orders created strictly before this instant when non-zero.
	CreatedBefore time.Time
	// Category keeps only orders of this category when non-empty.
	Category string
	// Limit caps the result when positive. Oldest orders come first.
	Limit int
}

// OrderRepository defines the persistence contract for order aggregates.
// Writes after creation are conditional on the stored status, so a transition
// computed from a stale read never overwrites a concurrent one.
type OrderRepository interface {
	// Add persists a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Accept persists the pending to accepted transition as a single conditional write
	// that only succeeds while the stored order is still pending and unassigned.
	// Every caller except the first receives an AlreadyAssignedError.
	Accept(ctx context.Context, aggregate *order.Order) error

	// Update persists any other transition. The write only applies while the stored
	// status still equals expected; otherwise a TransitionIsInvalidError is returned
	// because a concurrent transition won.
	Update(ctx context.Context, aggregate *order.Order, expected order.Status) error

	// Get retrieves an order by id, ObjectNotFoundError when absent.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetActiveByWorker returns the worker's order in an active status, or
	// ObjectNotFoundError when the worker has none.
	GetActiveByWorker(ctx context.Context, workerID kernel.UUID) (*order.Order, error)

	// ListPending returns pending orders, oldest first.
	ListPending(ctx context.Context, filter PendingFilter) ([]*order.Order, error)
}
