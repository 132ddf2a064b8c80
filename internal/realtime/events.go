// Package realtime keeps connected customers and workers in sync with the orders they
// care about. It owns the connection registry, the typed event catalogue, the
// notification dispatcher and the router for inbound session messages.
//
// Every message on the wire is an envelope tagged by event name:
//
//	{"event":"heartbeat_ack","data":{"timestamp":1740821400000}}
package realtime

import (
	"encoding/json"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// EventName discriminates the envelope variants.
type EventName string

// Inbound events, client to server.
const (
	EventAuth           EventName = "auth"
	EventJoinRoom       EventName = "join-room"
	EventLeaveRoom      EventName = "leave-room"
	EventHeartbeat      EventName = "heartbeat"
	EventUpdateLocation EventName = "update_location"
	EventSendMessage    EventName = "send_message"
)

// Outbound events, server to client.
const (
	EventConnected         EventName = "connected"
	EventAuthSuccess       EventName = "auth_success"
	EventHeartbeatAck      EventName = "heartbeat_ack"
	EventLocationUpdated   EventName = "location_updated"
	EventNewOrderAvailable EventName = "new_order_available"
	EventOrderStatusUpdate EventName = "order_status_update"
	EventNewMessage        EventName = "new_message"
	EventWorkerLocation    EventName = "worker_location"
	EventRoomJoined        EventName = "room_joined"
	EventRoomLeft          EventName = "room_left"
	EventError             EventName = "error"
)

// Envelope is the wire frame of every event.
type Envelope struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is an outbound variant with a fixed field set.
type Event interface {
	EventName() EventName
}

// Encode wraps ev in an envelope.
func Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: ev.EventName(), Data: data})
}

// LocationPayload is a coordinate pair on the wire.
type LocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func newLocationPayload(l kernel.Location) LocationPayload {
	return LocationPayload{Latitude: l.Latitude(), Longitude: l.Longitude()}
}

type Connected struct {
	ActorID   string `json:"actorId"`
	Role      string `json:"role"`
	SessionID string `json:"sessionId"`
	Timestamp int64  `json:"timestamp"`
}

func (Connected) EventName() EventName { return EventConnected }

type AuthSuccess struct {
	ActorID string `json:"actorId"`
	Role    string `json:"role"`
}

func (AuthSuccess) EventName() EventName { return EventAuthSuccess }

type HeartbeatAck struct {
	Timestamp int64 `json:"timestamp"`
}

func (HeartbeatAck) EventName() EventName { return EventHeartbeatAck }

type LocationUpdated struct {
	Success bool `json:"success"`
}

func (LocationUpdated) EventName() EventName { return EventLocationUpdated }

type RoomJoined struct {
	RoomName string `json:"roomName"`
}

func (RoomJoined) EventName() EventName { return EventRoomJoined }

type RoomLeft struct {
	RoomName string `json:"roomName"`
}

func (RoomLeft) EventName() EventName { return EventRoomLeft }

// NewOrderAvailable is offered to the workers the matcher selected.
type NewOrderAvailable struct {
	OrderID         string          `json:"orderId"`
	OrderNumber     string          `json:"orderNumber"`
	Title           string          `json:"title"`
	Category        string          `json:"category,omitempty"`
	Address         string          `json:"address,omitempty"`
	Priority        string          `json:"priority"`
	Location        LocationPayload `json:"location"`
	EstimatedAmount decimal.Decimal `json:"estimatedAmount"`
	Timestamp       int64           `json:"timestamp"`
}

func (NewOrderAvailable) EventName() EventName { return EventNewOrderAvailable }

func newOrderAvailable(o *order.Order, now time.Time) NewOrderAvailable {
	d := o.Details()
	return NewOrderAvailable{
		OrderID:         o.ID().String(),
		OrderNumber:     o.Number(),
		Title:           d.Title,
		Category:        d.Category,
		Address:         d.Address,
		Priority:        o.Priority().String(),
		Location:        newLocationPayload(o.Location()),
		EstimatedAmount: o.EstimatedAmount(),
		Timestamp:       now.UnixMilli(),
	}
}

// OrderStatusUpdate follows every committed transition.
type OrderStatusUpdate struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status"`
	Previous    string    `json:"previous,omitempty"`
	Timestamp   int64     `json:"timestamp"`
	Order       OrderView `json:"order"`
}

func (OrderStatusUpdate) EventName() EventName { return EventOrderStatusUpdate }

// OrderView is the order as parties see it in status updates.
type OrderView struct {
	ID              string              `json:"id"`
	Number          string              `json:"number"`
	Status          string              `json:"status"`
	CustomerID      string              `json:"customerId"`
	WorkerID        string              `json:"workerId,omitempty"`
	Title           string              `json:"title"`
	Description     string              `json:"description,omitempty"`
	Category        string              `json:"category,omitempty"`
	Address         string              `json:"address,omitempty"`
	Priority        string              `json:"priority"`
	Location        LocationPayload     `json:"location"`
	EstimatedAmount decimal.Decimal     `json:"estimatedAmount"`
	QuotedAmount    decimal.NullDecimal `json:"quotedAmount"`
	FinalAmount     decimal.NullDecimal `json:"finalAmount"`
	QuoteNote       string              `json:"quoteNote,omitempty"`
	WorkContent     string              `json:"workContent,omitempty"`
	PaymentMethod   string              `json:"paymentMethod,omitempty"`
	Rating          int                 `json:"rating,omitempty"`
	RatingComment   string              `json:"ratingComment,omitempty"`
	CancelReason    string              `json:"cancelReason,omitempty"`
	CancelledBy     string              `json:"cancelledBy,omitempty"`
	Timeline        TimelineView        `json:"timeline"`
}

// TimelineView carries the transition stamps; unset stamps are omitted.
type TimelineView struct {
	CreatedAt        time.Time  `json:"createdAt"`
	AcceptedAt       *time.Time `json:"acceptedAt,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmedAt,omitempty"`
	QuotedAt         *time.Time `json:"quotedAt,omitempty"`
	QuoteConfirmedAt *time.Time `json:"quoteConfirmedAt,omitempty"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
	RatedAt          *time.Time `json:"ratedAt,omitempty"`
	CancelledAt      *time.Time `json:"cancelledAt,omitempty"`
}

// NewOrderView flattens an order for the wire.
func NewOrderView(o *order.Order) OrderView {
	d := o.Details()
	v := OrderView{
		ID:              o.ID().String(),
		Number:          o.Number(),
		Status:          o.Status().String(),
		CustomerID:      o.CustomerID().String(),
		Title:           d.Title,
		Description:     d.Description,
		Category:        d.Category,
		Address:         d.Address,
		Priority:        o.Priority().String(),
		Location:        newLocationPayload(o.Location()),
		EstimatedAmount: o.EstimatedAmount(),
		QuotedAmount:    o.QuotedAmount(),
		FinalAmount:     o.FinalAmount(),
		QuoteNote:       o.QuoteNote(),
		WorkContent:     o.WorkContent(),
		PaymentMethod:   o.PaymentMethod(),
		Rating:          o.Rating(),
		RatingComment:   o.RatingComment(),
		CancelReason:    o.CancelReason(),
		CancelledBy:     string(o.CancelledBy()),
		Timeline:        TimelineView(o.Timeline()),
	}
	if id := o.WorkerID(); id != nil {
		v.WorkerID = id.String()
	}
	return v
}

// NewMessage is a chat line relayed to an order room or a single actor.
type NewMessage struct {
	From      string `json:"from"`
	FromRole  string `json:"fromRole"`
	Type      string `json:"type"`
	OrderID   string `json:"orderId,omitempty"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

func (NewMessage) EventName() EventName { return EventNewMessage }

// WorkerLocation is forwarded to the followers of the worker's active order.
type WorkerLocation struct {
	WorkerID  string          `json:"workerId"`
	OrderID   string          `json:"orderId"`
	Location  LocationPayload `json:"location"`
	Timestamp int64           `json:"timestamp"`
}

func (WorkerLocation) EventName() EventName { return EventWorkerLocation }

// ErrorEvent reports a rejected inbound message to its sender only.
type ErrorEvent struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (ErrorEvent) EventName() EventName { return EventError }
