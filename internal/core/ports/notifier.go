package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// Notifier fans committed changes out to interested parties.
// Delivery is best effort: implementations log failures and never return them,
// so a notification problem can not fail a transition that already committed.
type Notifier interface {
	// OrderCreated announces a newly stored order, before any worker is matched.
	OrderCreated(ctx context.Context, o *order.Order)

	// OrderAvailable announces a pending order to the matched workers.
	OrderAvailable(ctx context.Context, o *order.Order, workerIDs []kernel.UUID)

	// OrderStatusChanged tells the customer, the assigned worker and the order's
	// followers about a transition.
	OrderStatusChanged(ctx context.Context, o *order.Order, previous order.Status)

	// WorkerLocationChanged forwards a worker's position to the followers of their
	// active order, if any.
	WorkerLocationChanged(ctx context.Context, workerID kernel.UUID, location kernel.Location, activeOrderID *kernel.UUID)
}

// OrderNumberGenerator issues human readable, unique order numbers.
type OrderNumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

// PresenceStats is a snapshot of who is connected, per role.
type PresenceStats struct {
	Online   map[kernel.Role][]kernel.UUID
	Sessions int
}

// PresenceReader exposes the connection registry to the read side.
type PresenceReader interface {
	Stats() PresenceStats
	IsOnline(actorID kernel.UUID, role kernel.Role) bool
}
