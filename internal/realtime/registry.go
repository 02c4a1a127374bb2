package realtime

import (
	"sync"
)

// Registry tracks which rooms each live connection receives events for.
// Subscriptions are rebuilt from current memberships on every handshake
// and adjusted in place when a membership mutation affects an already
// open connection, so a reconnect is never required to pick up a join,
// leave or kick.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Conn]struct{}
	conns map[*Conn]map[string]struct{}
	users map[string]map[*Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[*Conn]struct{}),
		conns: make(map[*Conn]map[string]struct{}),
		users: make(map[string]map[*Conn]struct{}),
	}
}

// Register subscribes a connection to its initial room set.
func (r *Registry) Register(c *Conn, rooms []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := make(map[string]struct{}, len(rooms))
	r.conns[c] = set
	for _, room := range rooms {
		set[room] = struct{}{}
		r.addToRoom(room, c)
	}

	if r.users[c.UserID] == nil {
		r.users[c.UserID] = make(map[*Conn]struct{})
	}
	r.users[c.UserID][c] = struct{}{}
}

// Unregister releases every subscription held by the connection. Safe to
// call more than once.
func (r *Registry) Unregister(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[c]
	if !ok {
		return
	}
	for room := range set {
		r.removeFromRoom(room, c)
	}
	delete(r.conns, c)

	if conns := r.users[c.UserID]; conns != nil {
		delete(conns, c)
		if len(conns) == 0 {
			delete(r.users, c.UserID)
		}
	}
}

// JoinRoom subscribes all of a user's live connections to a room,
// typically right after that user joined a shared budget.
func (r *Registry) JoinRoom(userID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for c := range r.users[userID] {
		r.conns[c][room] = struct{}{}
		r.addToRoom(room, c)
	}
}

// LeaveRoom removes a room from all of a user's live connections.
func (r *Registry) LeaveRoom(userID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for c := range r.users[userID] {
		delete(r.conns[c], room)
		r.removeFromRoom(room, c)
	}
}

// Subscribers snapshots the connections currently in a room.
func (r *Registry) Subscribers(room string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.rooms[room]
	out := make([]*Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// ConnCount reports how many connections are registered, across all users.
func (r *Registry) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// RoomCount reports how many rooms have at least one subscriber.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// callers hold r.mu
func (r *Registry) addToRoom(room string, c *Conn) {
	if r.rooms[room] == nil {
		r.rooms[room] = make(map[*Conn]struct{})
	}
	r.rooms[room][c] = struct{}{}
}

func (r *Registry) removeFromRoom(room string, c *Conn) {
	set := r.rooms[room]
	if set == nil {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.rooms, room)
	}
}
