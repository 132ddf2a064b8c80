package rabbitmq

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

// Routing keys of the published events.
const (
	RoutingKeyOrderCreated       = "order.created"
	RoutingKeyOrderStatusChanged = "order.status_changed"
)

const (
	DefaultExchange  = "dispatch.orders"
	DefaultQueueSize = 256

	defaultPublishTimeout = 5 * time.Second
)

// Publisher sends one message. *Client implements it.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error
}

// OrderEvent is the JSON body of every published message.
type OrderEvent struct {
	Type            string              `json:"type"`
	OrderID         string              `json:"orderId"`
	OrderNumber     string              `json:"orderNumber"`
	Status          string              `json:"status"`
	Previous        string              `json:"previous,omitempty"`
	CustomerID      string              `json:"customerId"`
	WorkerID        string              `json:"workerId,omitempty"`
	Category        string              `json:"category,omitempty"`
	Priority        string              `json:"priority"`
	EstimatedAmount decimal.Decimal     `json:"estimatedAmount"`
	FinalAmount     decimal.NullDecimal `json:"finalAmount"`
	OccurredAt      time.Time           `json:"occurredAt"`
}

type outgoing struct {
	key  string
	ev   OrderEvent
	body []byte
}

// Option customizes a PublishingNotifier.
type Option func(*PublishingNotifier)

// WithQueueSize sets how many events may wait for the broker before new ones are dropped.
func WithQueueSize(n int) Option {
	return func(p *PublishingNotifier) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// WithPublishTimeout bounds a single publish, and the drain on Close.
func WithPublishTimeout(d time.Duration) Option {
	return func(p *PublishingNotifier) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// PublishingNotifier decorates another notifier: every call is forwarded first, then
// order creation and status changes are queued for the exchange. A single goroutine,
// started by Start, drains the queue. Callers never wait for the broker: when the
// queue is full the event is dropped. Publishing is best effort and failures are
// only logged.
//
// Example usage:
//
//	n := rabbitmq.NewPublishingNotifier(dispatcher, client, "dispatch.orders", logger)
//	n.Start()
//	defer n.Close()
type PublishingNotifier struct {
	next      ports.Notifier
	publisher Publisher
	exchange  string
	logger    *slog.Logger
	now       func() time.Time
	queueSize int
	timeout   time.Duration

	mu      sync.RWMutex
	queue   chan outgoing
	started bool
	closed  bool
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

var _ ports.Notifier = (*PublishingNotifier)(nil)

func NewPublishingNotifier(
	next ports.Notifier,
	publisher Publisher,
	exchange string,
	logger *slog.Logger,
	opts ...Option,
) *PublishingNotifier {
	if exchange == "" {
		exchange = DefaultExchange
	}
	n := &PublishingNotifier{
		next:      next,
		publisher: publisher,
		exchange:  exchange,
		logger:    logger.With("component", "order_event_publisher"),
		now:       func() time.Time { return time.Now().UTC() },
		queueSize: DefaultQueueSize,
		timeout:   defaultPublishTimeout,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.queue = make(chan outgoing, n.queueSize)
	n.ctx, n.cancel = context.WithCancel(context.Background())
	return n
}

// Start launches the publishing goroutine. Calling it again, or after Close, does nothing.
func (n *PublishingNotifier) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.started || n.closed {
		return
	}
	n.started = true
	go n.run()
}

// Close stops accepting events and waits for the queued ones to be published.
// Events still waiting after the publish timeout are abandoned.
func (n *PublishingNotifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	started := n.started
	n.mu.Unlock()

	defer n.cancel()
	if !started {
		if left := len(n.queue); left > 0 {
			n.logger.Warn("order_events_abandoned", "count", left)
		}
		return
	}

	timer := time.NewTimer(n.timeout)
	defer timer.Stop()
	select {
	case <-n.done:
	case <-timer.C:
		n.logger.Warn("order_event_drain_timeout", "pending", len(n.queue))
		n.cancel()
		<-n.done
	}
}

func (n *PublishingNotifier) OrderCreated(ctx context.Context, o *order.Order) {
	n.next.OrderCreated(ctx, o)
	n.publish(ctx, RoutingKeyOrderCreated, n.event(RoutingKeyOrderCreated, o, order.Unknown))
}

func (n *PublishingNotifier) OrderAvailable(ctx context.Context, o *order.Order, workerIDs []kernel.UUID) {
	n.next.OrderAvailable(ctx, o, workerIDs)
}

func (n *PublishingNotifier) OrderStatusChanged(ctx context.Context, o *order.Order, previous order.Status) {
	n.next.OrderStatusChanged(ctx, o, previous)
	n.publish(ctx, RoutingKeyOrderStatusChanged, n.event(RoutingKeyOrderStatusChanged, o, previous))
}

func (n *PublishingNotifier) WorkerLocationChanged(
	ctx context.Context,
	workerID kernel.UUID,
	location kernel.Location,
	activeOrderID *kernel.UUID,
) {
	n.next.WorkerLocationChanged(ctx, workerID, location, activeOrderID)
}

func (n *PublishingNotifier) event(kind string, o *order.Order, previous order.Status) OrderEvent {
	ev := OrderEvent{
		Type:            kind,
		OrderID:         o.ID().String(),
		OrderNumber:     o.Number(),
		Status:          o.Status().String(),
		CustomerID:      o.CustomerID().String(),
		Category:        o.Details().Category,
		Priority:        o.Priority().String(),
		EstimatedAmount: o.EstimatedAmount(),
		FinalAmount:     o.FinalAmount(),
		OccurredAt:      n.now(),
	}
	if previous != order.Unknown {
		ev.Previous = previous.String()
	}
	if id := o.WorkerID(); id != nil {
		ev.WorkerID = id.String()
	}
	return ev
}

// publish queues the event without blocking.
func (n *PublishingNotifier) publish(ctx context.Context, key string, ev OrderEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		n.logger.ErrorContext(ctx, "order_event_encode_failed", "routing_key", key, "error", err)
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		n.logger.DebugContext(ctx, "order_event_dropped", "routing_key", key, "order_id", ev.OrderID, "reason", "closed")
		return
	}
	select {
	case n.queue <- outgoing{key: key, ev: ev, body: body}:
	default:
		n.logger.DebugContext(ctx, "order_event_dropped", "routing_key", key, "order_id", ev.OrderID, "reason", "queue_full")
	}
}

func (n *PublishingNotifier) run() {
	defer close(n.done)
	for m := range n.queue {
		n.send(m)
	}
}

func (n *PublishingNotifier) send(m outgoing) {
	ctx, cancel := context.WithTimeout(n.ctx, n.timeout)
	defer cancel()

	err := n.publisher.Publish(ctx, n.exchange, m.key, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		CorrelationId: m.ev.OrderNumber,
		Timestamp:     m.ev.OccurredAt,
		Body:          m.body,
		Headers:       amqp.Table{"x-source": "dispatch"},
	})
	if err != nil {
		n.logger.Warn("order_event_publish_failed", "routing_key", m.key, "order_id", m.ev.OrderID, "error", err)
		return
	}
	n.logger.Debug("order_event_published", "routing_key", m.key, "order_id", m.ev.OrderID)
}
