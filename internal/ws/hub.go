// Package ws – the hub.
//
// The hub is the single synchronization boundary for shared connection
// state: it owns the connection registry and the room registry and is the
// only component that reads or mutates them. Connection handlers hold a
// reference to the hub; nothing is reached through ambient globals.
package ws

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/talentwire/go-messaging-core/internal/domain"
)

// Hub owns the live connection and room registries and performs all
// broadcast fan-out. Safe for concurrent use from any connection handler.
type Hub struct {
	registry *connRegistry
	rooms    *roomRegistry
	log      zerolog.Logger
}

// NewHub constructs an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		registry: newConnRegistry(),
		rooms:    newRoomRegistry(),
		log:      log,
	}
}

// Register stores c under its identity. When the identity was already
// registered (a reconnect), the superseded client is force-closed: the old
// socket would otherwise be orphaned until its own heartbeat failed.
func (h *Hub) Register(c *Client) {
	old := h.registry.register(c)
	wsConnections.Set(float64(h.registry.count()))
	h.log.Info().
		Str("identity", c.identity.String()).
		Int("connections", h.registry.count()).
		Msg("connection registered")

	if old != nil {
		h.log.Info().
			Str("identity", old.identity.String()).
			Msg("superseded connection closed")
		// The fresh connection has not joined a room yet, so any
		// membership under this identity belongs to the old socket.
		if room := h.rooms.evict(c.identity); room != "" {
			wsRooms.Set(float64(h.rooms.count()))
			h.BroadcastRoom(room, &c.identity, Outbound(TypeUserLeft, RoomEventPayload{Email: old.principal.Email}))
		}
		old.closeSuperseded()
	}
}

// Unregister removes c and reports whether it was the registered entry for
// its identity. A stale close after supersession returns false and leaves
// the successor untouched.
func (h *Hub) Unregister(c *Client) bool {
	removed := h.registry.unregister(c)
	if removed {
		wsConnections.Set(float64(h.registry.count()))
		h.log.Info().
			Str("identity", c.identity.String()).
			Int("connections", h.registry.count()).
			Msg("connection unregistered")
	}
	return removed
}

// OnlineUsers returns the current global presence list.
func (h *Hub) OnlineUsers() []PresenceUser {
	clients := h.registry.all()
	out := make([]PresenceUser, 0, len(clients))
	for _, c := range clients {
		out = append(out, PresenceUser{Email: c.principal.Email, Name: c.principal.Name})
	}
	return out
}

// JoinRoom adds identity to the conversation's room. Any previous room is
// left first, under a single registry lock, so the identity is never a
// member of two rooms or a stale one.
func (h *Hub) JoinRoom(conversationID string, id domain.ConnIdentity) {
	h.rooms.join(conversationID, id)
	wsRooms.Set(float64(h.rooms.count()))
}

// LeaveRoom removes identity from the conversation's room.
func (h *Hub) LeaveRoom(conversationID string, id domain.ConnIdentity) {
	h.rooms.leave(conversationID, id)
	wsRooms.Set(float64(h.rooms.count()))
}

// RoomMembers returns a snapshot of the room's member identities.
func (h *Hub) RoomMembers(conversationID string) []domain.ConnIdentity {
	return h.rooms.members(conversationID)
}

// BroadcastRoom delivers env to every member of the conversation's room,
// minus the excluded identity. A missing room is a no-op.
func (h *Hub) BroadcastRoom(conversationID string, exclude *domain.ConnIdentity, env Envelope) {
	h.deliver(h.rooms.members(conversationID), exclude, env)
}

// BroadcastAll delivers env to every registered connection, minus the
// excluded identity.
func (h *Hub) BroadcastAll(exclude *domain.ConnIdentity, env Envelope) {
	clients := h.registry.all()
	ids := make([]domain.ConnIdentity, 0, len(clients))
	for _, c := range clients {
		ids = append(ids, c.identity)
	}
	h.deliver(ids, exclude, env)
}

// SendDirect delivers env to an explicit identity list, minus the excluded
// identity.
func (h *Hub) SendDirect(targets []domain.ConnIdentity, exclude *domain.ConnIdentity, env Envelope) {
	h.deliver(targets, exclude, env)
}

// deliver resolves each identity to its live connection and enqueues the
// envelope. Absent connections and full send queues are skipped; a failed
// send never aborts delivery to the remaining targets and never reaches the
// caller.
func (h *Hub) deliver(targets []domain.ConnIdentity, exclude *domain.ConnIdentity, env Envelope) {
	for _, id := range targets {
		if exclude != nil && id == *exclude {
			continue
		}
		c, ok := h.registry.get(id)
		if !ok {
			continue
		}
		c.enqueue(env)
	}
}

// Shutdown force-closes every connection and waits (bounded by ctx) for the
// registry to drain.
func (h *Hub) Shutdown(ctx context.Context) error {
	for _, c := range h.registry.all() {
		c.closeSuperseded()
	}
	for h.registry.count() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return nil
}
