package chat

import (
	"sync"

	"github.com/google/uuid"
)

// State is the registration progress of a Session.
type State int

const (
	// StateUnregistered sessions have not sent their name yet.
	StateUnregistered State = iota
	// StateRegistered sessions have a display name and send chat messages.
	StateRegistered
	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateRegistered:
		return "registered"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is the server-side state of one live connection.
//
// Transitions happen only on the hub goroutine; the mutex lets transports
// and tests read identity fields from elsewhere.
type Session struct {
	id     uuid.UUID
	conn   Conn
	origin string

	mu    sync.RWMutex
	name  string
	color string
	state State
}

func newSession(conn Conn, origin string) *Session {
	return &Session{
		id:     uuid.New(),
		conn:   conn,
		origin: origin,
		state:  StateUnregistered,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Origin returns the origin reported by the transport at connect time.
func (s *Session) Origin() string {
	return s.origin
}

// RemoteAddr returns the peer address of the underlying connection.
func (s *Session) RemoteAddr() string {
	return s.conn.RemoteAddr()
}

// Name returns the claimed display name, or "" before registration.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Color returns the assigned identity color, or "" if none was granted.
func (s *Session) Color() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.color
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// claim moves an unregistered session to registered.
func (s *Session) claim(name, color string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUnregistered {
		return false
	}
	s.name = name
	s.color = color
	s.state = StateRegistered
	return true
}

// close moves the session to closed and returns the color it held, if any.
// wasRegistered is false when the session never claimed a name or was
// already closed.
func (s *Session) close() (color string, wasRegistered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasRegistered = s.state == StateRegistered
	color = s.color
	s.state = StateClosed
	s.color = ""
	return color, wasRegistered
}
