package chat

import "github.com/google/uuid"

// Registry tracks the sessions whose connections are open, keyed by session ID.
// Not safe for concurrent use.
type Registry struct {
	sessions map[uuid.UUID]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

// Add inserts s. It reports false if s was already present.
func (r *Registry) Add(s *Session) bool {
	if _, ok := r.sessions[s.id]; ok {
		return false
	}
	r.sessions[s.id] = s
	return true
}

// Remove deletes s and reports whether it was present.
func (r *Registry) Remove(s *Session) bool {
	if _, ok := r.sessions[s.id]; !ok {
		return false
	}
	delete(r.sessions, s.id)
	return true
}

// Contains reports whether s is tracked.
func (r *Registry) Contains(s *Session) bool {
	_, ok := r.sessions[s.id]
	return ok
}

// All returns the live sessions in no particular order.
func (r *Registry) All() []*Session {
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

// Registered returns how many live sessions have claimed a name.
func (r *Registry) Registered() int {
	n := 0
	for _, s := range r.sessions {
		if s.State() == StateRegistered {
			n++
		}
	}
	return n
}
