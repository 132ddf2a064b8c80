package rabbitmq_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/adapters/out/rabbitmq"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, msg)
	return args.Error(0)
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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOrder(t *testing.T) *order.Order {
	t.Helper()

	o, err := order.NewOrder(kernel.NewUUID(), "ORD20250301000007", kernel.NewUUID(),
		order.Details{Title: "No power in kitchen", Category: "repair"},
		kernel.MustNewLocation(39.90, 116.40), order.PriorityUrgent, decimal.NewFromInt(120),
		time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return o
}

func decodeEvent(t *testing.T, msg amqp.Publishing) rabbitmq.OrderEvent {
	t.Helper()

	var ev rabbitmq.OrderEvent
	require.NoError(t, json.Unmarshal(msg.Body, &ev))
	return ev
}

func TestPublishingNotifier_OrderCreated(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t)
	next := new(MockNotifier)
	next.On("OrderCreated", ctx, o).Once()

	var published amqp.Publishing
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, "orders", rabbitmq.RoutingKeyOrderCreated, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(3).(amqp.Publishing) }).
		Return(nil).Once()

	n := rabbitmq.NewPublishingNotifier(next, publisher, "orders", discardLogger())
	n.Start()
	n.OrderCreated(ctx, o)
	n.Close()

	next.AssertExpectations(t)
	publisher.AssertExpectations(t)

	assert.Equal(t, "application/json", published.ContentType)
	assert.Equal(t, amqp.Persistent, published.DeliveryMode)
	assert.Equal(t, "ORD20250301000007", published.CorrelationId)

	ev := decodeEvent(t, published)
	assert.Equal(t, rabbitmq.RoutingKeyOrderCreated, ev.Type)
	assert.Equal(t, o.ID().String(), ev.OrderID)
	assert.Equal(t, "pending", ev.Status)
	assert.Empty(t, ev.Previous)
	assert.Empty(t, ev.WorkerID)
	assert.Equal(t, "urgent", ev.Priority)
	assert.True(t, ev.EstimatedAmount.Equal(decimal.NewFromInt(120)))
}

func TestPublishingNotifier_OrderStatusChanged(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t)
	workerActor := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleWorker}
	require.NoError(t, o.Accept(workerActor, time.Now()))

	next := new(MockNotifier)
	next.On("OrderStatusChanged", ctx, o, order.Pending).Once()

	var published amqp.Publishing
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, rabbitmq.DefaultExchange, rabbitmq.RoutingKeyOrderStatusChanged, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(3).(amqp.Publishing) }).
		Return(nil).Once()

	n := rabbitmq.NewPublishingNotifier(next, publisher, "", discardLogger())
	n.Start()
	n.OrderStatusChanged(ctx, o, order.Pending)
	n.Close()

	next.AssertExpectations(t)
	publisher.AssertExpectations(t)

	ev := decodeEvent(t, published)
	assert.Equal(t, "accepted", ev.Status)
	assert.Equal(t, "pending", ev.Previous)
	assert.Equal(t, workerActor.ID.String(), ev.WorkerID)
}

func TestPublishingNotifier_PublishFailureIsSwallowed(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t)
	next := new(MockNotifier)
	next.On("OrderCreated", ctx, o).Once()
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection closed")).Once()

	n := rabbitmq.NewPublishingNotifier(next, publisher, "orders", discardLogger())
	n.Start()
	assert.NotPanics(t, func() { n.OrderCreated(ctx, o) })
	n.Close()

	next.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestPublishingNotifier_ForwardsWithoutPublishing(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t)
	workerID := kernel.NewUUID()
	loc := kernel.MustNewLocation(39.91, 116.41)
	ids := []kernel.UUID{workerID}

	next := new(MockNotifier)
	next.On("OrderAvailable", ctx, o, ids).Once()
	next.On("WorkerLocationChanged", ctx, workerID, loc, (*kernel.UUID)(nil)).Once()
	publisher := new(MockPublisher)

	n := rabbitmq.NewPublishingNotifier(next, publisher, "orders", discardLogger())
	n.OrderAvailable(ctx, o, ids)
	n.WorkerLocationChanged(ctx, workerID, loc, nil)
	n.Close()

	next.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishingNotifier_PublishOutlivesRequestContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	o := newOrder(t)
	next := new(MockNotifier)
	next.On("OrderCreated", ctx, o).Once()

	publisher := new(MockPublisher)
	publisher.On("Publish", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }),
		mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	n := rabbitmq.NewPublishingNotifier(next, publisher, "orders", discardLogger())
	n.Start()
	n.OrderCreated(ctx, o)
	n.Close()

	publisher.AssertExpectations(t)
}

func TestPublishingNotifier_StalledBrokerDoesNotBlockCaller(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t)
	next := new(MockNotifier)
	next.On("OrderStatusChanged", ctx, o, order.Pending).Times(3)

	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
		Return(context.DeadlineExceeded)

	n := rabbitmq.NewPublishingNotifier(next, publisher, "orders", discardLogger(),
		rabbitmq.WithQueueSize(1), rabbitmq.WithPublishTimeout(200*time.Millisecond))
	n.Start()

	started := time.Now()
	for range 3 {
		n.OrderStatusChanged(ctx, o, order.Pending)
	}
	elapsed := time.Since(started)
	n.Close()

	assert.Less(t, elapsed, 150*time.Millisecond)
	next.AssertExpectations(t)
	assert.NotEmpty(t, publisher.Calls)
	assert.LessOrEqual(t, len(publisher.Calls), 2)
}

func TestPublishingNotifier_DropsWhenQueueIsFull(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t)
	next := new(MockNotifier)
	next.On("OrderCreated", ctx, o).Twice()

	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, "orders", rabbitmq.RoutingKeyOrderCreated, mock.Anything).
		Return(nil).Once()

	n := rabbitmq.NewPublishingNotifier(next, publisher, "orders", discardLogger(), rabbitmq.WithQueueSize(1))
	n.OrderCreated(ctx, o)
	n.OrderCreated(ctx, o)
	n.Start()
	n.Close()

	next.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestPublishingNotifier_CloseIsIdempotent(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t)
	next := new(MockNotifier)
	next.On("OrderCreated", ctx, o).Once()
	publisher := new(MockPublisher)

	n := rabbitmq.NewPublishingNotifier(next, publisher, "orders", discardLogger())
	n.Start()
	n.Close()

	assert.NotPanics(t, func() {
		n.Close()
		n.OrderCreated(ctx, o)
		n.Start()
	})
	next.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
