package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/worker"

	"github.com/shopspring/decimal"
)

// WorkerRepository defines the persistence contract for worker aggregates.
// Availability and statistics change through narrow atomic writes so that
// location reports, ratings and order transitions never overwrite each other.
type WorkerRepository interface {
	// Add persists a newly registered worker.
	Add(ctx context.Context, aggregate *worker.Worker) error

	// Get retrieves a worker by id, ObjectNotFoundError when absent.
	Get(ctx context.Context, id kernel.UUID) (*worker.Worker, error)

	// UpdateProfile persists name, specialties, filters, verification and work status.
	// The write only applies while the stored work status equals expected, otherwise
	// TransitionIsInvalidError is returned.
	UpdateProfile(ctx context.Context, aggregate *worker.Worker, expected worker.WorkStatus) error

	// UpdateLocation stores a location report without touching any other column.
	UpdateLocation(ctx context.Context, id kernel.UUID, location kernel.Location, at time.Time) error

	// Occupy marks an approved, available worker busy and counts the order.
	// TransitionIsInvalidError is returned when the worker is no longer available.
	Occupy(ctx context.Context, id kernel.UUID) error

	// Release makes a busy worker available. It is a no-op for any other status.
	Release(ctx context.Context, id kernel.UUID) error

	// RecordCompletion adds amount to the earnings, counts the completed order and
	// releases the worker.
	RecordCompletion(ctx context.Context, id kernel.UUID, amount decimal.Decimal) error

	// RecordRating folds one customer rating into the worker's average.
	RecordRating(ctx context.Context, id kernel.UUID, rating int) error

	// ListDispatchable returns approved workers with a known location that are
	// available, or available or busy when includeBusy is set.
	ListDispatchable(ctx context.Context, includeBusy bool) ([]*worker.Worker, error)
}
