package realtime_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/realtime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRegistry(clock *fakeClock) *realtime.Registry {
	return realtime.NewRegistry(realtime.DefaultPresenceTimeout, discardLogger(), realtime.WithClock(clock.Now))
}

func actorOf(role kernel.Role) kernel.Actor {
	return kernel.Actor{ID: kernel.NewUUID(), Role: role}
}

func newSession() *realtime.BufferedSession {
	return realtime.NewBufferedSession(uuid.NewString(), 16)
}

// connect registers a fresh session for actor.
func connect(t *testing.T, r *realtime.Registry, actor kernel.Actor) *realtime.BufferedSession {
	t.Helper()

	s := newSession()
	require.NoError(t, r.Register(actor, s))
	return s
}

// drain returns the frames queued on s without blocking.
func drain(t *testing.T, s *realtime.BufferedSession) []realtime.Envelope {
	t.Helper()

	var out []realtime.Envelope
	for {
		select {
		case payload, ok := <-s.Outbox():
			if !ok {
				return out
			}
			var env realtime.Envelope
			require.NoError(t, json.Unmarshal(payload, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}

func eventNames(envs []realtime.Envelope) []realtime.EventName {
	names := make([]realtime.EventName, 0, len(envs))
	for _, e := range envs {
		names = append(names, e.Event)
	}
	return names
}

func frame(t *testing.T, event realtime.EventName, data any) []byte {
	t.Helper()

	env := map[string]any{"event": event}
	if data != nil {
		env["data"] = data
	}
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return raw
}
