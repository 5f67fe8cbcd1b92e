package ws

import "sync"

// Registry maps an identity to its single active realtime connection.
// Last-connected-wins: a new connection from the same identity replaces
// the previous entry. The registry is in-memory only and rebuilt from
// nothing on restart; it is injected where needed rather than held as
// a package global so tests can use a fresh instance.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register unconditionally overwrites any existing entry for userID and
// returns the displaced connection, if any, so the caller can close it.
func (r *Registry) Register(userID string, c *Client) *Client {
	r.mu.Lock()
	prev := r.clients[userID]
	r.clients[userID] = c
	r.mu.Unlock()
	if prev == c {
		return nil
	}
	return prev
}

// Lookup returns the active connection for userID, if any.
func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[userID]
	return c, ok
}

// Unregister removes the entry only if it still belongs to the given
// connection. A disconnect racing a fresh connection from the same
// identity must not evict the newer entry.
func (r *Registry) Unregister(userID string, c *Client) {
	r.mu.Lock()
	if current, ok := r.clients[userID]; ok && current == c {
		delete(r.clients, userID)
	}
	r.mu.Unlock()
}

// Count returns the number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
