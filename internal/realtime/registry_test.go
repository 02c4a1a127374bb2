package realtime

import (
	"fmt"
	"sync"
	"testing"
)

func TestRegistryRegisterAndSubscribers(t *testing.T) {
	r := NewRegistry()

	a := NewConn("c1", "alice", nil)
	b := NewConn("c2", "bob", nil)

	r.Register(a, []string{UserRoom("alice"), BudgetRoom("b1")})
	r.Register(b, []string{UserRoom("bob"), BudgetRoom("b1")})

	if got := len(r.Subscribers(BudgetRoom("b1"))); got != 2 {
		t.Fatalf("budget room subscribers = %d, want 2", got)
	}
	if got := len(r.Subscribers(UserRoom("alice"))); got != 1 {
		t.Fatalf("alice room subscribers = %d, want 1", got)
	}
	if got := len(r.Subscribers(UserRoom("carol"))); got != 0 {
		t.Fatalf("unknown room subscribers = %d, want 0", got)
	}
}

func TestRegistryUnregisterReleasesEverything(t *testing.T) {
	r := NewRegistry()

	for i := 0; i < 100; i++ {
		c := NewConn(fmt.Sprintf("c%d", i), "alice", nil)
		r.Register(c, []string{UserRoom("alice"), BudgetRoom("b1"), BudgetRoom("b2")})
		r.Unregister(c)
	}

	if r.ConnCount() != 0 {
		t.Fatalf("connections leaked: %d", r.ConnCount())
	}
	if r.RoomCount() != 0 {
		t.Fatalf("rooms leaked: %d", r.RoomCount())
	}
}

func TestRegistryUnregisterTwice(t *testing.T) {
	r := NewRegistry()
	c := NewConn("c1", "alice", nil)
	r.Register(c, []string{UserRoom("alice")})
	r.Unregister(c)
	r.Unregister(c) // must be a no-op
	if r.ConnCount() != 0 {
		t.Fatalf("conn count = %d", r.ConnCount())
	}
}

func TestRegistryJoinRoomAffectsLiveConnections(t *testing.T) {
	r := NewRegistry()

	// Two sessions for the same user, plus an unrelated one.
	a1 := NewConn("c1", "alice", nil)
	a2 := NewConn("c2", "alice", nil)
	b := NewConn("c3", "bob", nil)
	r.Register(a1, []string{UserRoom("alice")})
	r.Register(a2, []string{UserRoom("alice")})
	r.Register(b, []string{UserRoom("bob")})

	// alice joins a budget: both of her open sessions start receiving
	// that room without reconnecting.
	r.JoinRoom("alice", BudgetRoom("b1"))
	if got := len(r.Subscribers(BudgetRoom("b1"))); got != 2 {
		t.Fatalf("subscribers after join = %d, want 2", got)
	}

	r.LeaveRoom("alice", BudgetRoom("b1"))
	if got := len(r.Subscribers(BudgetRoom("b1"))); got != 0 {
		t.Fatalf("subscribers after leave = %d, want 0", got)
	}

	// bob was never touched.
	if got := len(r.Subscribers(UserRoom("bob"))); got != 1 {
		t.Fatalf("bob's subscriptions were disturbed")
	}
}

func TestRegistryJoinRoomUnknownUser(t *testing.T) {
	r := NewRegistry()
	// No panic for a user with no live connections.
	r.JoinRoom("ghost", BudgetRoom("b1"))
	r.LeaveRoom("ghost", BudgetRoom("b1"))
}

func TestRegistryConcurrentChurn(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c := NewConn(fmt.Sprintf("w%d-%d", worker, j), fmt.Sprintf("user%d", worker), nil)
				r.Register(c, []string{UserRoom(c.UserID), BudgetRoom("shared")})
				r.JoinRoom(c.UserID, BudgetRoom("extra"))
				r.Subscribers(BudgetRoom("shared"))
				r.LeaveRoom(c.UserID, BudgetRoom("extra"))
				r.Unregister(c)
			}
		}(i)
	}
	wg.Wait()

	if r.ConnCount() != 0 {
		t.Fatalf("connections leaked after churn: %d", r.ConnCount())
	}
	if r.RoomCount() != 0 {
		t.Fatalf("rooms leaked after churn: %d", r.RoomCount())
	}
}
