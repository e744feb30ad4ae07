package skins

import "github.com/icrus-dev/irsplugin/pkg/world"

// Registry maps connected users to their browse sessions. Sessions are
// created on connect and dropped on disconnect; they are always looked up
// by id, never cached by callers.
type Registry struct {
	sessions map[world.UserID]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[world.UserID]*Session)}
}

// Register creates a session for a user, or returns the existing one on a
// duplicate connect notice.
func (r *Registry) Register(user world.UserID, catalog *Catalog, presenter Presenter, containerUID uint64, capacity int) *Session {
	if s, ok := r.sessions[user]; ok {
		return s
	}
	s := NewSession(user, catalog, presenter, containerUID, capacity)
	r.sessions[user] = s
	return s
}

// Unregister releases a user's virtual container and drops the session.
// Unknown ids are a no-op.
func (r *Registry) Unregister(user world.UserID) {
	s, ok := r.sessions[user]
	if !ok {
		return
	}
	s.Release()
	delete(r.sessions, user)
}

// Lookup finds a user's session.
func (r *Registry) Lookup(user world.UserID) (*Session, bool) {
	s, ok := r.sessions[user]
	return s, ok
}

// Count returns the number of live sessions.
func (r *Registry) Count() int { return len(r.sessions) }

// OpenCount returns the number of sessions with a visible panel.
func (r *Registry) OpenCount() int {
	n := 0
	for _, s := range r.sessions {
		if s.Visible() {
			n++
		}
	}
	return n
}
