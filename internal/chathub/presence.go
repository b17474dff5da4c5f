package chathub

import "sync"

// PresenceRegistry owns the ephemeral connection-to-username binding. It is
// the source of truth for "who is live right now" and the only way to recover
// the username when the transport fires a payload-less disconnect. It is
// never the system of record for status; every transition is written back to
// the store by the coordinator.
type PresenceRegistry struct {
	mu       sync.RWMutex
	bindings map[string]string // connID -> username
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{bindings: make(map[string]string)}
}

// Bind records the authenticated username for a connection. Called exactly
// once per connection, at login.
func (r *PresenceRegistry) Bind(connID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[connID] = username
}

// Lookup returns the bound username for a connection, if any.
func (r *PresenceRegistry) Lookup(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	username, ok := r.bindings[connID]
	return username, ok
}

// Unbind removes the binding. Unbinding an unbound connection is a no-op.
func (r *PresenceRegistry) Unbind(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bindings, connID)
}

// Len returns the number of live bindings.
func (r *PresenceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
