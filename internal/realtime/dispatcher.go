package realtime

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// Dispatcher turns committed changes into events and fans them out through the
// registry. Delivery is best effort: offline targets and full session queues are
// skipped, and nothing is returned to the caller.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.Notifier = (*Dispatcher)(nil)

func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, logger: logger, now: time.Now}
}

// OrderCreated confirms a new order to every session of its customer with an
// order_status_update in status pending.
func (d *Dispatcher) OrderCreated(_ context.Context, o *order.Order) {
	payload, ok := d.encode(OrderStatusUpdate{
		OrderID:     o.ID().String(),
		OrderNumber: o.Number(),
		Status:      o.Status().String(),
		Timestamp:   d.now().UnixMilli(),
		Order:       NewOrderView(o),
	})
	if !ok {
		return
	}
	d.registry.Broadcast(payload, ActorRoom(kernel.RoleCustomer, o.CustomerID()))
}

// OrderAvailable sends new_order_available to the listed workers that are online.
func (d *Dispatcher) OrderAvailable(_ context.Context, o *order.Order, workerIDs []kernel.UUID) {
	if len(workerIDs) == 0 {
		return
	}
	targets := make(map[kernel.UUID]struct{}, len(workerIDs))
	for _, id := range workerIDs {
		targets[id] = struct{}{}
	}

	payload, ok := d.encode(newOrderAvailable(o, d.now()))
	if !ok {
		return
	}
	delivered := d.registry.BroadcastFiltered(payload, func(a kernel.Actor) bool {
		_, wanted := targets[a.ID]
		return wanted
	}, RoleRoom(kernel.RoleWorker))

	d.logger.Debug("order_available_sent",
		"order_id", o.ID().String(),
		"matched", len(workerIDs),
		"delivered", delivered,
	)
}

// OrderStatusChanged sends order_status_update to the customer, the assigned worker
// and the order room.
func (d *Dispatcher) OrderStatusChanged(_ context.Context, o *order.Order, previous order.Status) {
	payload, ok := d.encode(OrderStatusUpdate{
		OrderID:     o.ID().String(),
		OrderNumber: o.Number(),
		Status:      o.Status().String(),
		Previous:    previous.String(),
		Timestamp:   d.now().UnixMilli(),
		Order:       NewOrderView(o),
	})
	if !ok {
		return
	}

	rooms := []string{ActorRoom(kernel.RoleCustomer, o.CustomerID())}
	if id := o.WorkerID(); id != nil {
		rooms = append(rooms, ActorRoom(kernel.RoleWorker, *id))
		d.pruneOrderRoom(o)
	}
	rooms = append(rooms, OrderRoom(o.ID()))

	delivered := d.registry.Broadcast(payload, rooms...)
	d.logger.Debug("order_status_sent",
		"order_id", o.ID().String(),
		"status", o.Status().String(),
		"delivered", delivered,
	)
}

// pruneOrderRoom drops workers who followed the order while it was pending but
// did not win it. Only the customer, the assigned worker and admins stay.
func (d *Dispatcher) pruneOrderRoom(o *order.Order) {
	removed := d.registry.PruneRoom(OrderRoom(o.ID()), func(a kernel.Actor) bool {
		switch a.Role {
		case kernel.RoleAdmin:
			return true
		case kernel.RoleCustomer:
			return a.ID.IsEqual(o.CustomerID())
		default:
			return o.IsAssignedTo(a.ID)
		}
	})
	for _, a := range removed {
		d.logger.Debug("room_pruned",
			"order_id", o.ID().String(),
			"actor_id", a.ID.String(),
			"role", a.Role.String(),
		)
	}
}

// WorkerLocationChanged caches the position and forwards it to the active order's room.
func (d *Dispatcher) WorkerLocationChanged(
	_ context.Context,
	workerID kernel.UUID,
	location kernel.Location,
	activeOrderID *kernel.UUID,
) {
	d.registry.UpdateLocation(workerID, location)
	if activeOrderID == nil {
		return
	}

	payload, ok := d.encode(WorkerLocation{
		WorkerID:  workerID.String(),
		OrderID:   activeOrderID.String(),
		Location:  newLocationPayload(location),
		Timestamp: d.now().UnixMilli(),
	})
	if !ok {
		return
	}
	d.registry.BroadcastFiltered(payload, func(a kernel.Actor) bool {
		return !(a.Role == kernel.RoleWorker && a.ID.IsEqual(workerID))
	}, OrderRoom(*activeOrderID))
}

// RelayMessage delivers a chat line. Order messages go to the order room, private
// messages to every session of the target actor. The sender never receives its own line.
// It returns the number of sessions reached.
func (d *Dispatcher) RelayMessage(from kernel.Actor, msg SendMessage) int {
	ev := NewMessage{
		From:      from.ID.String(),
		FromRole:  from.Role.String(),
		Type:      msg.Type,
		Content:   msg.Content,
		Timestamp: d.now().UnixMilli(),
	}

	var rooms []string
	switch msg.Type {
	case MessageTypeOrder:
		ev.OrderID = msg.OrderID.String()
		rooms = []string{OrderRoom(msg.OrderID)}
	case MessageTypePrivate:
		for _, role := range kernel.Roles() {
			rooms = append(rooms, ActorRoom(role, msg.Target))
		}
	default:
		return 0
	}

	payload, ok := d.encode(ev)
	if !ok {
		return 0
	}
	return d.registry.BroadcastFiltered(payload, func(a kernel.Actor) bool {
		return a != from
	}, rooms...)
}

func (d *Dispatcher) encode(ev Event) ([]byte, bool) {
	payload, err := Encode(ev)
	if err != nil {
		d.logger.Error("event_encode_failed", "event", string(ev.EventName()), "error", err)
		return nil, false
	}
	return payload, true
}
