package realtime

// Event names pushed over the realtime channel. Personal events route to
// the owning user's room, shared events to the budget's room.
const (
	EvtTransactionCreated = "transaction:created"
	EvtTransactionUpdated = "transaction:updated"
	EvtTransactionDeleted = "transaction:deleted"
	EvtSavingsUpdated     = "savings:updated"
	EvtGoalCreated        = "savingsGoal:created"
	EvtGoalUpdated        = "savingsGoal:updated"
	EvtGoalDeleted        = "savingsGoal:deleted"

	EvtSharedTxCreated   = "sharedTransaction:created"
	EvtSharedTxDeleted   = "sharedTransaction:deleted"
	EvtSharedSavings     = "sharedSavings:updated"
	EvtMemberJoined      = "sharedBudget:memberJoined"
	EvtMemberLeft        = "sharedBudget:memberLeft"
	EvtMemberRemoved     = "sharedBudget:memberRemoved"
	EvtSharedBudgetMade  = "sharedBudget:created"
	EvtSharedBudgetGone  = "sharedBudget:deleted"
)

// Event is the wire frame for every broadcast.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Room identifiers. One room per shared budget plus one personal room
// per user; a connection subscribes to its user's personal room and the
// room of every budget the user belongs to.
func UserRoom(userID string) string { return "user:" + userID }

func BudgetRoom(budgetID string) string { return "budget:" + budgetID }
