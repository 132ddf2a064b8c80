package realtime

import (
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

const (
	// DefaultPresenceTimeout evicts connections without activity for this long.
	DefaultPresenceTimeout = 10 * time.Minute
	// DefaultSweepInterval is how often the presence sweep runs.
	DefaultSweepInterval = 5 * time.Minute
)

var ErrRegistryClosed = errors.New("connection registry is closed")

const (
	actorRoomPrefix = "actor:"
	orderRoomPrefix = "order:"
	roleRoomPrefix  = "role:"
)

// ActorRoom is the direct delivery room of one actor.
func ActorRoom(role kernel.Role, id kernel.UUID) string {
	return actorRoomPrefix + role.String() + ":" + id.String()
}

// OrderRoom gathers everyone following an order.
func OrderRoom(id kernel.UUID) string {
	return orderRoomPrefix + id.String()
}

// RoleRoom gathers every online actor of a role.
func RoleRoom(role kernel.Role) string {
	return roleRoomPrefix + role.String()
}

// ParseOrderRoom returns the order id of an order room name.
func ParseOrderRoom(room string) (kernel.UUID, bool) {
	raw, ok := strings.CutPrefix(room, orderRoomPrefix)
	if !ok {
		return kernel.UUID{}, false
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, false
	}
	return id, true
}

// Connection is a read-only snapshot of a registered session.
type Connection struct {
	Actor          kernel.Actor
	SessionID      string
	ConnectedAt    time.Time
	LastActivityAt time.Time
	Location       *kernel.Location
	Rooms          []string
}

type connection struct {
	actor          kernel.Actor
	session        Session
	connectedAt    time.Time
	lastActivityAt time.Time
	location       *kernel.Location
	rooms          map[string]struct{}
}

// Option customizes a Registry.
type Option func(*Registry)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// Registry tracks live sessions per role and the rooms they listen to.
//
// There is at most one connection per actor and role. Registering again replaces the
// previous session, which is closed. Fan-out runs under the read lock; registration,
// touches and room changes take the write lock.
//
// Example usage:
//
//	registry := realtime.NewRegistry(realtime.DefaultPresenceTimeout, logger)
//	defer registry.Close()
//
//	if err := registry.Register(actor, session); err != nil {
//	    return err
//	}
//	registry.Broadcast(payload, realtime.ActorRoom(actor.Role, actor.ID))
type Registry struct {
	mu         sync.RWMutex
	partitions map[kernel.Role]map[kernel.UUID]*connection
	rooms      map[string]map[string]*connection
	timeout    time.Duration
	now        func() time.Time
	logger     *slog.Logger
	closed     bool
}

var _ ports.PresenceReader = (*Registry)(nil)

func NewRegistry(timeout time.Duration, logger *slog.Logger, opts ...Option) *Registry {
	if timeout <= 0 {
		timeout = DefaultPresenceTimeout
	}
	r := &Registry{
		partitions: make(map[kernel.Role]map[kernel.UUID]*connection),
		rooms:      make(map[string]map[string]*connection),
		timeout:    timeout,
		now:        time.Now,
		logger:     logger,
	}
	for _, role := range kernel.Roles() {
		r.partitions[role] = make(map[kernel.UUID]*connection)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timeout returns the inactivity timeout used by Sweep.
func (r *Registry) Timeout() time.Duration {
	return r.timeout
}

// Register binds session to actor and joins the actor room and the role room.
//
// Returns:
//   - error: validation error for a bad actor or nil session, ErrRegistryClosed after Close
func (r *Registry) Register(actor kernel.Actor, session Session) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if session == nil {
		return errs.NewValueIsRequiredError("session")
	}

	now := r.now()
	var replaced Session

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRegistryClosed
	}
	if prev := r.partitions[actor.Role][actor.ID]; prev != nil && prev.session.ID() != session.ID() {
		r.removeLocked(prev)
		replaced = prev.session
	}
	c := &connection{
		actor:          actor,
		session:        session,
		connectedAt:    now,
		lastActivityAt: now,
		rooms:          make(map[string]struct{}),
	}
	r.partitions[actor.Role][actor.ID] = c
	r.joinLocked(c, ActorRoom(actor.Role, actor.ID))
	r.joinLocked(c, RoleRoom(actor.Role))
	r.mu.Unlock()

	if replaced != nil {
		replaced.Close()
		r.logger.Info("session_replaced",
			"actor_id", actor.ID.String(),
			"role", actor.Role.String(),
			"session_id", replaced.ID(),
		)
	}
	return nil
}

// Touch records activity. It reports false when the actor has no connection.
func (r *Registry) Touch(actorID kernel.UUID, role kernel.Role) bool {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.partitions[role][actorID]
	if c == nil {
		return false
	}
	c.lastActivityAt = now
	return true
}

// TouchSession records activity only while sessionID is the actor's current session.
func (r *Registry) TouchSession(actorID kernel.UUID, role kernel.Role, sessionID string) bool {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.partitions[role][actorID]
	if c == nil || c.session.ID() != sessionID {
		return false
	}
	c.lastActivityAt = now
	return true
}

// UpdateLocation caches the last known position of a connected worker.
// It does not count as activity; callers on the inbound path Touch separately.
func (r *Registry) UpdateLocation(actorID kernel.UUID, location kernel.Location) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.partitions[kernel.RoleWorker][actorID]
	if c == nil {
		return false
	}
	loc := location
	c.location = &loc
	return true
}

// Unregister drops the actor's connection. Unknown actors are a no-op.
func (r *Registry) Unregister(actorID kernel.UUID, role kernel.Role) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.partitions[role][actorID]
	if c == nil {
		return false
	}
	r.removeLocked(c)
	return true
}

// Detach drops the actor's connection only while sessionID is still the current one,
// so a late disconnect of a replaced session cannot remove its successor.
func (r *Registry) Detach(actorID kernel.UUID, role kernel.Role, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.partitions[role][actorID]
	if c == nil || c.session.ID() != sessionID {
		return false
	}
	r.removeLocked(c)
	return true
}

func (r *Registry) IsOnline(actorID kernel.UUID, role kernel.Role) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.partitions[role][actorID]
	return ok
}

// Lookup returns a snapshot of the actor's connection.
func (r *Registry) Lookup(actorID kernel.UUID, role kernel.Role) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := r.partitions[role][actorID]
	if c == nil {
		return Connection{}, false
	}
	return c.snapshot(), true
}

// Join subscribes the actor's current session to room.
func (r *Registry) Join(actorID kernel.UUID, role kernel.Role, room string) error {
	if room == "" {
		return errs.NewValueIsRequiredError("room")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.partitions[role][actorID]
	if c == nil {
		return errs.NewObjectNotFoundError("connection", actorID.String())
	}
	r.joinLocked(c, room)
	return nil
}

// Leave unsubscribes the actor from room. The actor's own room cannot be left.
func (r *Registry) Leave(actorID kernel.UUID, role kernel.Role, room string) error {
	if room == ActorRoom(role, actorID) {
		return errs.NewValueIsInvalidError("room")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.partitions[role][actorID]
	if c == nil {
		return errs.NewObjectNotFoundError("connection", actorID.String())
	}
	r.leaveLocked(c, room)
	return nil
}

// PruneRoom removes from room every session whose actor keep rejects.
// It returns the removed actors.
func (r *Registry) PruneRoom(room string, keep func(actor kernel.Actor) bool) []kernel.Actor {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []kernel.Actor
	for _, c := range r.rooms[room] {
		if keep(c.actor) {
			continue
		}
		r.leaveLocked(c, room)
		removed = append(removed, c.actor)
	}
	return removed
}

// Members returns the number of sessions in room.
func (r *Registry) Members(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// Broadcast sends payload to every session in rooms. A session reached through
// several rooms receives it once. It returns the number of sessions that accepted it.
func (r *Registry) Broadcast(payload []byte, rooms ...string) int {
	return r.BroadcastFiltered(payload, nil, rooms...)
}

// BroadcastFiltered is Broadcast restricted to the sessions keep accepts.
// A nil keep accepts everyone.
func (r *Registry) BroadcastFiltered(payload []byte, keep func(actor kernel.Actor) bool, rooms ...string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	delivered := 0
	for _, room := range rooms {
		for sid, c := range r.rooms[room] {
			if _, dup := seen[sid]; dup {
				continue
			}
			seen[sid] = struct{}{}
			if keep != nil && !keep(c.actor) {
				continue
			}
			if c.session.Send(payload) {
				delivered++
				continue
			}
			r.logger.Debug("delivery_dropped",
				"actor_id", c.actor.ID.String(),
				"role", c.actor.Role.String(),
				"session_id", sid,
				"room", room,
			)
		}
	}
	return delivered
}

// Sweep evicts connections idle for longer than the timeout and closes their sessions.
//
// Candidates are collected under the read lock and re-checked one by one under the
// write lock: a connection that was touched or replaced in between survives.
//
// Returns:
//   - []kernel.Actor: the evicted actors
func (r *Registry) Sweep(now time.Time) []kernel.Actor {
	cutoff := now.Add(-r.timeout)

	r.mu.RLock()
	var candidates []*connection
	for _, partition := range r.partitions {
		for _, c := range partition {
			if c.lastActivityAt.Before(cutoff) {
				candidates = append(candidates, c)
			}
		}
	}
	r.mu.RUnlock()

	evicted := make([]kernel.Actor, 0, len(candidates))
	for _, c := range candidates {
		r.mu.Lock()
		current := r.partitions[c.actor.Role][c.actor.ID]
		stale := current == c && current.lastActivityAt.Before(cutoff)
		if stale {
			r.removeLocked(current)
		}
		r.mu.Unlock()

		if !stale {
			continue
		}
		c.session.Close()
		evicted = append(evicted, c.actor)
		r.logger.Info("presence_evict",
			"actor_id", c.actor.ID.String(),
			"role", c.actor.Role.String(),
			"session_id", c.session.ID(),
			"idle", now.Sub(c.lastActivityAt).String(),
		)
	}
	return evicted
}

// Stats lists online actors per role, ids sorted.
func (r *Registry) Stats() ports.PresenceStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := ports.PresenceStats{Online: make(map[kernel.Role][]kernel.UUID, len(r.partitions))}
	for role, partition := range r.partitions {
		ids := make([]kernel.UUID, 0, len(partition))
		for id := range partition {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, func(a, b kernel.UUID) int {
			return strings.Compare(a.String(), b.String())
		})
		stats.Online[role] = ids
		stats.Sessions += len(partition)
	}
	return stats
}

// Close drops every connection and closes their sessions. Register fails afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	var sessions []Session
	for role, partition := range r.partitions {
		for _, c := range partition {
			sessions = append(sessions, c.session)
		}
		r.partitions[role] = make(map[kernel.UUID]*connection)
	}
	r.rooms = make(map[string]map[string]*connection)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (r *Registry) joinLocked(c *connection, room string) {
	members := r.rooms[room]
	if members == nil {
		members = make(map[string]*connection)
		r.rooms[room] = members
	}
	members[c.session.ID()] = c
	c.rooms[room] = struct{}{}
}

func (r *Registry) leaveLocked(c *connection, room string) {
	if members := r.rooms[room]; members != nil {
		delete(members, c.session.ID())
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	delete(c.rooms, room)
}

func (r *Registry) removeLocked(c *connection) {
	for room := range c.rooms {
		r.leaveLocked(c, room)
	}
	if current := r.partitions[c.actor.Role][c.actor.ID]; current == c {
		delete(r.partitions[c.actor.Role], c.actor.ID)
	}
}

func (c *connection) snapshot() Connection {
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	slices.Sort(rooms)

	var loc *kernel.Location
	if c.location != nil {
		l := *c.location
		loc = &l
	}
	return Connection{
		Actor:          c.actor,
		SessionID:      c.session.ID(),
		ConnectedAt:    c.connectedAt,
		LastActivityAt: c.lastActivityAt,
		Location:       loc,
		Rooms:          rooms,
	}
}
