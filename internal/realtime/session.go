package realtime

import (
	"sync"
)

// DefaultSessionBuffer is the outbound queue length of a session.
const DefaultSessionBuffer = 64

// Session is the delivery handle of one live connection.
type Session interface {
	// ID is unique per connection, also across reconnects of the same actor.
	ID() string
	// Send queues payload without blocking. It reports false when the payload was
	// dropped because the queue is full or the session is closed.
	Send(payload []byte) bool
	// Close stops delivery. It is safe to call more than once.
	Close()
}

// BufferedSession queues outbound frames on a bounded channel drained by the
// transport's writer goroutine.
type BufferedSession struct {
	id     string
	out    chan []byte
	mu     sync.RWMutex
	closed bool
}

func NewBufferedSession(id string, buffer int) *BufferedSession {
	if buffer <= 0 {
		buffer = DefaultSessionBuffer
	}
	return &BufferedSession{id: id, out: make(chan []byte, buffer)}
}

func (s *BufferedSession) ID() string {
	return s.id
}

func (s *BufferedSession) Send(payload []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}
	select {
	case s.out <- payload:
		return true
	default:
		return false
	}
}

// Outbox is closed by Close, which ends the writer's range loop.
func (s *BufferedSession) Outbox() <-chan []byte {
	return s.out
}

func (s *BufferedSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.out)
}

// Closed reports whether Close was called.
func (s *BufferedSession) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
