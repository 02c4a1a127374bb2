package realtime

import (
	"encoding/json"
	"log/slog"
)

// Broadcaster fans committed mutations out to room subscribers. Delivery
// is best-effort and strictly downstream of the store write: an
// undeliverable connection is dropped and the mutation's caller never
// hears about it. Clients recover missed events with a full resync.
type Broadcaster struct {
	Log      *slog.Logger
	Registry *Registry
}

func NewBroadcaster(log *slog.Logger, registry *Registry) *Broadcaster {
	return &Broadcaster{Log: log, Registry: registry}
}

// ToUser delivers an event to every live session of one user.
func (b *Broadcaster) ToUser(userID, event string, payload any) {
	b.publish(UserRoom(userID), event, payload)
}

// ToBudget delivers an event to every live session of every member of a
// shared budget.
func (b *Broadcaster) ToBudget(budgetID, event string, payload any) {
	b.publish(BudgetRoom(budgetID), event, payload)
}

func (b *Broadcaster) publish(room, event string, payload any) {
	msg, err := json.Marshal(Event{Name: event, Payload: payload})
	if err != nil {
		b.Log.Error("failed to encode event", "event", event, "error", err)
		return
	}

	for _, c := range b.Registry.Subscribers(room) {
		if !c.TrySend(msg) {
			// Buffer full or already closing. Cut the connection loose
			// rather than stall the room; the client resyncs on reconnect.
			b.Log.Warn("dropping slow connection",
				"conn_id", c.ID,
				"user_id", c.UserID,
				"room", room,
				"event", event)
			b.Registry.Unregister(c)
			c.Close()
		}
	}
}
