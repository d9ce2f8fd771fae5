package ws

import (
	"testing"

	"github.com/talentwire/go-messaging-core/internal/domain"
)

func identity(kind domain.PrincipalKind, id string) domain.ConnIdentity {
	return domain.ConnIdentity{Kind: kind, ID: id}
}

func TestRoomRegistry_JoinAndMembers(t *testing.T) {
	r := newRoomRegistry()
	alice := identity(domain.KindCandidate, "cand-1")
	bob := identity(domain.KindEmployer, "emp-1")

	r.join("c1", alice)
	r.join("c1", bob)

	members := r.members("c1")
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if got, ok := r.current(alice); !ok || got != "c1" {
		t.Fatalf("current(alice) = %q, %v", got, ok)
	}
	if r.members("missing") != nil {
		t.Fatal("missing room must yield nil")
	}
}

func TestRoomRegistry_JoinSwitchesRooms(t *testing.T) {
	r := newRoomRegistry()
	alice := identity(domain.KindCandidate, "cand-1")

	r.join("c1", alice)
	r.join("c2", alice)

	if len(r.members("c1")) != 0 {
		t.Fatalf("alice still ghost member of c1: %v", r.members("c1"))
	}
	if got, _ := r.current(alice); got != "c2" {
		t.Fatalf("current = %q, want c2", got)
	}
	// c1 emptied out, so it must be gone entirely.
	if r.count() != 1 {
		t.Fatalf("expected 1 live room, got %d", r.count())
	}
}

func TestRoomRegistry_JoinSameRoomTwice(t *testing.T) {
	r := newRoomRegistry()
	alice := identity(domain.KindCandidate, "cand-1")

	r.join("c1", alice)
	r.join("c1", alice)

	if len(r.members("c1")) != 1 {
		t.Fatalf("duplicate membership: %v", r.members("c1"))
	}
}

func TestRoomRegistry_LeaveDeletesEmptyRoom(t *testing.T) {
	r := newRoomRegistry()
	alice := identity(domain.KindCandidate, "cand-1")
	bob := identity(domain.KindEmployer, "emp-1")

	r.join("c1", alice)
	r.join("c1", bob)
	r.leave("c1", alice)

	if len(r.members("c1")) != 1 {
		t.Fatalf("expected bob to remain, got %v", r.members("c1"))
	}
	if _, ok := r.current(alice); ok {
		t.Fatal("alice still indexed after leave")
	}

	r.leave("c1", bob)
	if r.count() != 0 {
		t.Fatalf("empty room not deleted, count=%d", r.count())
	}

	// Leaving an unknown room is a no-op.
	r.leave("missing", alice)
}

func TestRoomRegistry_Evict(t *testing.T) {
	r := newRoomRegistry()
	alice := identity(domain.KindCandidate, "cand-1")

	if got := r.evict(alice); got != "" {
		t.Fatalf("evicting roomless identity returned %q", got)
	}

	r.join("c1", alice)
	if got := r.evict(alice); got != "c1" {
		t.Fatalf("evict returned %q, want c1", got)
	}
	if _, ok := r.current(alice); ok {
		t.Fatal("identity still indexed after evict")
	}
	if r.count() != 0 {
		t.Fatalf("room not cleaned up, count=%d", r.count())
	}
}
