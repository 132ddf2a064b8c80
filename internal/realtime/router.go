package realtime

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// ErrSessionExpired is returned by Route when the session is no longer registered,
// because it was evicted, replaced or unregistered. The transport should hang up.
var ErrSessionExpired = errors.New("session is no longer registered")

// LocationHandler persists a worker position report.
type LocationHandler interface {
	Handle(ctx context.Context, cmd commands.UpdateWorkerLocationCommand) (*kernel.UUID, error)
}

// OrderViewer authorizes order room subscriptions.
type OrderViewer interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (*order.Order, error)
}

// Router handles inbound frames of authenticated sessions. Each frame is decoded into
// one Inbound variant and handled by exactly one method; replies go to the sender's
// session only.
type Router struct {
	registry   *Registry
	dispatcher *Dispatcher
	locations  LocationHandler
	orders     OrderViewer
	logger     *slog.Logger
	now        func() time.Time
}

func NewRouter(
	registry *Registry,
	dispatcher *Dispatcher,
	locations LocationHandler,
	orders OrderViewer,
	logger *slog.Logger,
) *Router {
	return &Router{
		registry:   registry,
		dispatcher: dispatcher,
		locations:  locations,
		orders:     orders,
		logger:     logger,
		now:        time.Now,
	}
}

// Route handles one raw frame from session, which belongs to actor.
//
// Every frame, valid or not, counts as activity. Invalid frames and failed operations
// are answered with an error event and do not end the session.
//
// Returns:
//   - error: ErrSessionExpired when the session must be closed, nil otherwise
func (r *Router) Route(ctx context.Context, actor kernel.Actor, session Session, raw []byte) error {
	if !r.registry.TouchSession(actor.ID, actor.Role, session.ID()) {
		return ErrSessionExpired
	}

	msg, err := Decode(raw)
	if err != nil {
		r.replyError(session, err)
		return nil
	}

	switch m := msg.(type) {
	case Auth:
		r.handleAuth(actor, session, m)
	case JoinRoom:
		r.handleJoin(ctx, actor, session, m)
	case LeaveRoom:
		r.handleLeave(actor, session, m)
	case Heartbeat:
		r.reply(session, HeartbeatAck{Timestamp: r.now().UnixMilli()})
	case UpdateLocation:
		r.handleLocation(ctx, actor, session, m)
	case SendMessage:
		r.handleMessage(actor, session, m)
	}
	return nil
}

// Welcome sends the connected event to a freshly registered session.
func (r *Router) Welcome(actor kernel.Actor, session Session) {
	r.reply(session, Connected{
		ActorID:   actor.ID.String(),
		Role:      actor.Role.String(),
		SessionID: session.ID(),
		Timestamp: r.now().UnixMilli(),
	})
}

func (r *Router) handleAuth(actor kernel.Actor, session Session, m Auth) {
	if !m.ActorID.IsEqual(actor.ID) || m.Role != actor.Role {
		r.logger.Warn("socket_auth_mismatch",
			"actor_id", actor.ID.String(),
			"claimed_actor_id", m.ActorID.String(),
			"claimed_role", m.Role.String(),
		)
		r.replyError(session, errs.NewNotAuthorizedError(m.ActorID.String(), "does not match the session identity"))
		return
	}
	r.reply(session, AuthSuccess{ActorID: actor.ID.String(), Role: actor.Role.String()})
}

func (r *Router) handleJoin(ctx context.Context, actor kernel.Actor, session Session, m JoinRoom) {
	orderID, ok := ParseOrderRoom(m.Room)
	if !ok {
		r.replyError(session, errs.NewValueIsInvalidError("roomName"))
		return
	}

	if r.orders != nil {
		query, err := queries.NewGetOrderQuery(orderID, actor)
		if err != nil {
			r.replyError(session, err)
			return
		}
		if _, err = r.orders.Handle(ctx, query); err != nil {
			r.replyError(session, err)
			return
		}
	}

	if err := r.registry.Join(actor.ID, actor.Role, m.Room); err != nil {
		r.replyError(session, err)
		return
	}
	r.logger.Debug("room_join", "actor_id", actor.ID.String(), "room", m.Room)
	r.reply(session, RoomJoined{RoomName: m.Room})
}

func (r *Router) handleLeave(actor kernel.Actor, session Session, m LeaveRoom) {
	if _, ok := ParseOrderRoom(m.Room); !ok {
		r.replyError(session, errs.NewValueIsInvalidError("roomName"))
		return
	}
	if err := r.registry.Leave(actor.ID, actor.Role, m.Room); err != nil {
		r.replyError(session, err)
		return
	}
	r.logger.Debug("room_leave", "actor_id", actor.ID.String(), "room", m.Room)
	r.reply(session, RoomLeft{RoomName: m.Room})
}

func (r *Router) handleLocation(ctx context.Context, actor kernel.Actor, session Session, m UpdateLocation) {
	cmd, err := commands.NewUpdateWorkerLocationCommand(actor, m.Location)
	if err != nil {
		r.replyError(session, err)
		return
	}
	if _, err = r.locations.Handle(ctx, cmd); err != nil {
		r.replyError(session, err)
		return
	}
	r.reply(session, LocationUpdated{Success: true})
}

func (r *Router) handleMessage(actor kernel.Actor, session Session, m SendMessage) {
	if m.Type == MessageTypeOrder {
		conn, ok := r.registry.Lookup(actor.ID, actor.Role)
		if !ok || !slices.Contains(conn.Rooms, OrderRoom(m.OrderID)) {
			r.replyError(session, errs.NewNotAuthorizedError(actor.ID.String(), "has not joined the order room"))
			return
		}
	}

	reached := r.dispatcher.RelayMessage(actor, m)
	r.logger.Info(m.Type,
		"actor_id", actor.ID.String(),
		"order_id", orderIDOrEmpty(m),
		"target", targetOrEmpty(m),
		"reached", reached,
	)
}

func (r *Router) reply(session Session, ev Event) {
	payload, err := Encode(ev)
	if err != nil {
		r.logger.Error("event_encode_failed", "event", string(ev.EventName()), "error", err)
		return
	}
	if !session.Send(payload) {
		r.logger.Debug("delivery_dropped", "session_id", session.ID(), "event", string(ev.EventName()))
	}
}

func (r *Router) replyError(session Session, err error) {
	r.reply(session, ErrorEvent{Message: err.Error(), Code: errs.Code(err)})
}

func orderIDOrEmpty(m SendMessage) string {
	if m.Type != MessageTypeOrder {
		return ""
	}
	return m.OrderID.String()
}

func targetOrEmpty(m SendMessage) string {
	if m.Type != MessageTypePrivate {
		return ""
	}
	return m.Target.String()
}
