// Package ws – connection registry.
//
// The registry is a process-wide map from connection identity to the single
// live client registered under it. All mutation and iteration is serialized
// behind one mutex; no I/O happens while the lock is held.
package ws

import (
	"sync"

	"github.com/talentwire/go-messaging-core/internal/domain"
)

// connRegistry maps connection identities to live clients. Safe for
// concurrent use.
type connRegistry struct {
	mu      sync.RWMutex
	clients map[domain.ConnIdentity]*Client
}

func newConnRegistry() *connRegistry {
	return &connRegistry{clients: make(map[domain.ConnIdentity]*Client)}
}

// register stores c under its identity and returns the client it superseded,
// if any. At most one live client exists per identity at any instant.
func (r *connRegistry) register(c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.clients[c.identity]
	r.clients[c.identity] = c
	if old == c {
		return nil
	}
	return old
}

// unregister removes c and reports whether it was the registered entry.
// The pointer comparison keeps a stale close from evicting a successor that
// reused the same identity.
func (r *connRegistry) unregister(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.clients[c.identity]; ok && cur == c {
		delete(r.clients, c.identity)
		return true
	}
	return false
}

// get returns the live client for identity, if any.
func (r *connRegistry) get(id domain.ConnIdentity) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	return c, ok
}

// all returns a snapshot of every registered client.
func (r *connRegistry) all() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// count returns the number of registered clients.
func (r *connRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
