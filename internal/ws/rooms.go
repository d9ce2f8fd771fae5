// Package ws – room registry.
//
// Rooms are the live fan-out sets: conversation ID → identities currently
// joined. They exist only in memory, created implicitly on first join and
// deleted when the last member leaves. A process restart loses all
// membership; clients re-join after reconnect.
//
// An identity is a member of at most one room. The byIdentity index makes
// the leave-current-then-join-new switch a single atomic step and lets the
// hub evict a superseded connection's membership without knowing which room
// it was in.
package ws

import (
	"sync"

	"github.com/talentwire/go-messaging-core/internal/domain"
)

type roomRegistry struct {
	mu         sync.RWMutex
	rooms      map[string]map[domain.ConnIdentity]struct{}
	byIdentity map[domain.ConnIdentity]string
}

func newRoomRegistry() *roomRegistry {
	return &roomRegistry{
		rooms:      make(map[string]map[domain.ConnIdentity]struct{}),
		byIdentity: make(map[domain.ConnIdentity]string),
	}
}

// join moves identity into the room, implicitly leaving any previous room
// first. Leave-then-join happens under one lock so the identity is never a
// ghost member of a stale room.
func (r *roomRegistry) join(conversationID string, id domain.ConnIdentity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byIdentity[id]; ok && prev != conversationID {
		r.leaveLocked(prev, id)
	}

	members, ok := r.rooms[conversationID]
	if !ok {
		members = make(map[domain.ConnIdentity]struct{})
		r.rooms[conversationID] = members
	}
	members[id] = struct{}{}
	r.byIdentity[id] = conversationID
}

// leave removes identity from the room, deleting the room entirely once its
// member set becomes empty.
func (r *roomRegistry) leave(conversationID string, id domain.ConnIdentity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(conversationID, id)
}

func (r *roomRegistry) leaveLocked(conversationID string, id domain.ConnIdentity) {
	if r.byIdentity[id] == conversationID {
		delete(r.byIdentity, id)
	}
	members, ok := r.rooms[conversationID]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.rooms, conversationID)
	}
}

// evict removes identity from whatever room it is in and returns that
// room's conversation ID, or "" when the identity was roomless.
func (r *roomRegistry) evict(id domain.ConnIdentity) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversationID, ok := r.byIdentity[id]
	if !ok {
		return ""
	}
	r.leaveLocked(conversationID, id)
	return conversationID
}

// members returns a snapshot of the room's member identities. A missing
// room yields an empty slice.
func (r *roomRegistry) members(conversationID string) []domain.ConnIdentity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.rooms[conversationID]
	if !ok {
		return nil
	}
	out := make([]domain.ConnIdentity, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// current returns the room the identity is joined to, if any.
func (r *roomRegistry) current(id domain.ConnIdentity) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conversationID, ok := r.byIdentity[id]
	return conversationID, ok
}

// count returns the number of live rooms.
func (r *roomRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
