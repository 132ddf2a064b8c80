package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/worker"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Accept(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order, expected order.Status) error {
	args := m.Called(ctx, o, expected)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetActiveByWorker(ctx context.Context, workerID kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListPending(ctx context.Context, filter ports.PendingFilter) ([]*order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockWorkerRepository struct{ mock.Mock }

func (m *MockWorkerRepository) Add(ctx context.Context, w *worker.Worker) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWorkerRepository) Get(ctx context.Context, id kernel.UUID) (*worker.Worker, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worker.Worker), args.Error(1)
}

func (m *MockWorkerRepository) UpdateProfile(ctx context.Context, w *worker.Worker, expected worker.WorkStatus) error {
	args := m.Called(ctx, w, expected)
	return args.Error(0)
}

func (m *MockWorkerRepository) UpdateLocation(
	ctx context.Context,
	id kernel.UUID,
	location kernel.Location,
	at time.Time,
) error {
	args := m.Called(ctx, id, location, at)
	return args.Error(0)
}

func (m *MockWorkerRepository) Occupy(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkerRepository) Release(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkerRepository) RecordCompletion(ctx context.Context, id kernel.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockWorkerRepository) RecordRating(ctx context.Context, id kernel.UUID, rating int) error {
	args := m.Called(ctx, id, rating)
	return args.Error(0)
}

func (m *MockWorkerRepository) ListDispatchable(ctx context.Context, includeBusy bool) ([]*worker.Worker, error) {
	args := m.Called(ctx, includeBusy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*worker.Worker), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) WorkerRepository() ports.WorkerRepository {
	args := m.Called()
	return args.Get(0).(ports.WorkerRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockWorkerUoWFactory struct{ mock.Mock }

func (m *MockWorkerUoWFactory) Create() commands.WorkerUoW {
	args := m.Called()
	return args.Get(0).(commands.WorkerUoW)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) OrderCreated(ctx context.Context, o *order.Order) {
	m.Called(ctx, o)
}

func (m *MockNotifier) OrderAvailable(ctx context.Context, o *order.Order, workerIDs []kernel.UUID) {
	m.Called(ctx, o, workerIDs)
}

func (m *MockNotifier) OrderStatusChanged(ctx context.Context, o *order.Order, previous order.Status) {
	m.Called(ctx, o, previous)
}

func (m *MockNotifier) WorkerLocationChanged(
	ctx context.Context,
	workerID kernel.UUID,
	location kernel.Location,
	activeOrderID *kernel.UUID,
) {
	m.Called(ctx, workerID, location, activeOrderID)
}

type MockOrderNumberGenerator struct{ mock.Mock }

func (m *MockOrderNumberGenerator) Next(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

var testNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func customerActor() kernel.Actor {
	return kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
}

func workerActor() kernel.Actor {
	return kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleWorker}
}

func adminActor() kernel.Actor {
	return kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleAdmin}
}

func newPendingOrder(t *testing.T, customer kernel.Actor, priority order.Priority) *order.Order {
	t.Helper()

	o, err := order.NewOrder(kernel.NewUUID(), "ORD20250301000042", customer.ID,
		order.Details{Title: "Socket sparks", Category: "electrical"},
		kernel.MustNewLocation(39.90, 116.40), priority, decimal.NewFromInt(200), testNow)
	require.NoError(t, err)
	return o
}

// orderAt drives a new order through the lifecycle up to status.
func orderAt(t *testing.T, status order.Status, customer, assigned kernel.Actor) *order.Order {
	t.Helper()

	o := newPendingOrder(t, customer, order.PriorityNormal)
	steps := []struct {
		reached order.Status
		apply   func() error
	}{
		{order.Accepted, func() error { return o.Accept(assigned, testNow) }},
		{order.Confirmed, func() error { return o.Confirm(customer, testNow) }},
		{order.Quoted, func() error { return o.SubmitQuote(assigned, decimal.NewFromInt(120), "", testNow) }},
		{order.QuoteConfirmed, func() error { return o.ConfirmQuote(customer, testNow) }},
		{order.InProgress, func() error { return o.StartWork(assigned, testNow) }},
		{order.Completed, func() error {
			_, err := o.CompleteWork(assigned, nil, "replaced socket", testNow)
			return err
		}},
		{order.Paid, func() error { return o.Pay(customer, "cash", testNow) }},
	}
	for _, step := range steps {
		if o.Status() == status {
			return o
		}
		require.NoError(t, step.apply())
		require.Equal(t, step.reached, o.Status())
	}
	require.Equal(t, status, o.Status())
	return o
}

// newWorker builds a worker in the given state, located at (lat, lon).
func newWorker(
	t *testing.T,
	actor kernel.Actor,
	approved bool,
	status worker.WorkStatus,
	lat, lon float64,
	emergency bool,
) *worker.Worker {
	t.Helper()

	w, err := worker.NewWorker(actor.ID, "Li Wei", []string{"wiring"}, emergency, nil, testNow)
	require.NoError(t, err)
	require.NoError(t, w.UpdateLocation(kernel.MustNewLocation(lat, lon), testNow))
	if approved {
		require.NoError(t, w.Review(worker.VerificationApproved))
	}
	switch status {
	case worker.Available:
		require.NoError(t, w.ChangeWorkStatus(worker.Available))
	case worker.Busy:
		require.NoError(t, w.ChangeWorkStatus(worker.Available))
		require.NoError(t, w.Occupy())
	}
	return w
}
