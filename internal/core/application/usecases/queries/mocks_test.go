package queries_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/worker"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderReader) ListPending(ctx context.Context, filter ports.PendingFilter) ([]*order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockWorkerReader struct{ mock.Mock }

func (m *MockWorkerReader) Get(ctx context.Context, id kernel.UUID) (*worker.Worker, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*worker.Worker), args.Error(1)
}

func (m *MockWorkerReader) ListDispatchable(ctx context.Context, includeBusy bool) ([]*worker.Worker, error) {
	args := m.Called(ctx, includeBusy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*worker.Worker), args.Error(1)
}

type MockPresenceReader struct{ mock.Mock }

func (m *MockPresenceReader) Stats() ports.PresenceStats {
	args := m.Called()
	return args.Get(0).(ports.PresenceStats)
}

func (m *MockPresenceReader) IsOnline(actorID kernel.UUID, role kernel.Role) bool {
	args := m.Called(actorID, role)
	return args.Bool(0)
}

var (
	testNow  = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	orderSeq atomic.Int64
)

func actorOf(role kernel.Role) kernel.Actor {
	return kernel.Actor{ID: kernel.NewUUID(), Role: role}
}

func pendingOrderAt(
	t *testing.T,
	customer kernel.Actor,
	lat, lon float64,
	category string,
	priority order.Priority,
	estimate int64,
) *order.Order {
	t.Helper()

	o, err := order.NewOrder(kernel.NewUUID(), fmt.Sprintf("ORD20250301%06d", orderSeq.Add(1)), customer.ID,
		order.Details{Title: "Breaker trips", Category: category},
		kernel.MustNewLocation(lat, lon), priority, decimal.NewFromInt(estimate), testNow)
	require.NoError(t, err)
	return o
}

func approvedWorker(t *testing.T, id kernel.UUID, lat, lon float64, status worker.WorkStatus) *worker.Worker {
	t.Helper()

	w, err := worker.NewWorker(id, "Wang Fang", []string{"wiring"}, false, nil, testNow)
	require.NoError(t, err)
	require.NoError(t, w.UpdateLocation(kernel.MustNewLocation(lat, lon), testNow))
	require.NoError(t, w.Review(worker.VerificationApproved))
	require.NoError(t, w.ChangeWorkStatus(worker.Available))
	if status == worker.Busy {
		require.NoError(t, w.Occupy())
	}
	return w
}
