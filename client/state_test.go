package client

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/mpellar/budgetsync/internal/dto"
	"github.com/mpellar/budgetsync/internal/models"
	"github.com/mpellar/budgetsync/internal/realtime"
	"github.com/mpellar/budgetsync/pkg/logger"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	return NewState(slog.New(logger.NewTestHandler(slog.LevelInfo)))
}

func frame(t *testing.T, event string, payload any) []byte {
	t.Helper()
	msg, err := json.Marshal(realtime.Event{Name: event, Payload: payload})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return msg
}

func syncedState(t *testing.T) *State {
	s := newTestState(t)
	s.LoadSync(&dto.SyncResponse{
		Transactions: []models.Transaction{{ID: "t1", Name: "Rent", Amount: 800}},
		Savings:      &models.Savings{Amount: 100},
		SharedBudgets: []dto.SharedBudgetDetail{{
			SharedBudget: models.SharedBudget{
				ID:      "b1",
				Name:    "Household",
				OwnerID: "alice",
				Members: []models.Member{
					{UserID: "alice", UserName: "Alice"},
					{UserID: "bob", UserName: "Bob"},
				},
				MemberIDs: []string{"alice", "bob"},
				Savings:   50,
			},
			Transactions: []models.SharedTransaction{{ID: "st1", Name: "Power", Amount: 60}},
		}},
	})
	return s
}

func TestApplyTransactionLifecycle(t *testing.T) {
	s := syncedState(t)

	s.Apply(frame(t, realtime.EvtTransactionCreated, models.Transaction{ID: "t2", Name: "Food", Amount: 30}))
	if got := len(s.Transactions()); got != 2 {
		t.Fatalf("transactions after create = %d, want 2", got)
	}

	// Duplicate delivery of the same create changes nothing.
	s.Apply(frame(t, realtime.EvtTransactionCreated, models.Transaction{ID: "t2", Name: "Food", Amount: 30}))
	if got := len(s.Transactions()); got != 2 {
		t.Fatalf("transactions after duplicate create = %d, want 2", got)
	}

	s.Apply(frame(t, realtime.EvtTransactionDeleted, dto.TransactionDeletedEvent{ID: "t2"}))
	if got := len(s.Transactions()); got != 1 {
		t.Fatalf("transactions after delete = %d, want 1", got)
	}

	// Deleting something already gone is tolerated.
	s.Apply(frame(t, realtime.EvtTransactionDeleted, dto.TransactionDeletedEvent{ID: "t2"}))
	if got := len(s.Transactions()); got != 1 {
		t.Fatalf("transactions after repeat delete = %d, want 1", got)
	}
}

func TestApplyUpdateForUnknownRecordSkipped(t *testing.T) {
	s := syncedState(t)

	s.Apply(frame(t, realtime.EvtTransactionUpdated, models.Transaction{ID: "never-synced", Name: "Ghost"}))
	for _, tx := range s.Transactions() {
		if tx.ID == "never-synced" {
			t.Fatal("update for an unknown record must not insert it")
		}
	}
}

func TestApplySavingsOverwrite(t *testing.T) {
	s := syncedState(t)
	s.Apply(frame(t, realtime.EvtSavingsUpdated, dto.SavingsEvent{Amount: 250}))
	if got := s.Savings().Amount; got != 250 {
		t.Fatalf("savings = %v, want 250", got)
	}
}

func TestApplySharedTransactionDuplicateDelivery(t *testing.T) {
	s := syncedState(t)

	tx := &models.SharedTransaction{ID: "st2", Name: "Water", Amount: 25}
	evt := dto.SharedTransactionCreatedEvent{BudgetID: "b1", Transaction: tx}

	s.Apply(frame(t, realtime.EvtSharedTxCreated, evt))
	s.Apply(frame(t, realtime.EvtSharedTxCreated, evt))

	budget, _ := s.Budget("b1")
	if got := len(budget.Transactions); got != 2 {
		t.Fatalf("shared transactions = %d, want 2 (duplicate collapsed)", got)
	}
}

func TestApplySharedTransactionForUnknownBudget(t *testing.T) {
	s := syncedState(t)
	evt := dto.SharedTransactionCreatedEvent{
		BudgetID:    "not-synced",
		Transaction: &models.SharedTransaction{ID: "st9"},
	}
	s.Apply(frame(t, realtime.EvtSharedTxCreated, evt))
	if _, ok := s.Budget("not-synced"); ok {
		t.Fatal("event must not conjure a budget the sync never delivered")
	}
}

func TestApplyMemberJoinAndRemove(t *testing.T) {
	s := syncedState(t)

	join := dto.MemberJoinedEvent{BudgetID: "b1", Member: &models.Member{UserID: "carol", UserName: "Carol"}}
	s.Apply(frame(t, realtime.EvtMemberJoined, join))
	s.Apply(frame(t, realtime.EvtMemberJoined, join)) // duplicate

	budget, _ := s.Budget("b1")
	if got := len(budget.Members); got != 3 {
		t.Fatalf("members after join = %d, want 3", got)
	}

	s.Apply(frame(t, realtime.EvtMemberRemoved, dto.MemberGoneEvent{BudgetID: "b1", UserID: "bob"}))
	budget, _ = s.Budget("b1")
	if got := len(budget.Members); got != 2 {
		t.Fatalf("members after removal = %d, want 2", got)
	}
	for _, m := range budget.Members {
		if m.UserID == "bob" {
			t.Fatal("removed member still present")
		}
	}
}

func TestApplySharedSavings(t *testing.T) {
	s := syncedState(t)
	s.Apply(frame(t, realtime.EvtSharedSavings, dto.SharedSavingsEvent{BudgetID: "b1", Amount: 75}))
	budget, _ := s.Budget("b1")
	if budget.Savings != 75 {
		t.Fatalf("shared savings = %v, want 75", budget.Savings)
	}
}

func TestApplyBudgetDeletedClearsActiveSelection(t *testing.T) {
	s := syncedState(t)
	s.SetActiveBudget("b1")

	s.Apply(frame(t, realtime.EvtSharedBudgetGone, dto.BudgetDeletedEvent{BudgetID: "b1"}))

	if _, ok := s.Budget("b1"); ok {
		t.Fatal("deleted budget still in state")
	}
	if s.ActiveBudget() != nil {
		t.Fatal("active budget selection survived the deletion")
	}
}

func TestActiveBudgetMirrorsListEntry(t *testing.T) {
	s := syncedState(t)
	s.SetActiveBudget("b1")

	s.Apply(frame(t, realtime.EvtSharedTxCreated, dto.SharedTransactionCreatedEvent{
		BudgetID:    "b1",
		Transaction: &models.SharedTransaction{ID: "st2", Name: "Gas"},
	}))

	active := s.ActiveBudget()
	if active == nil || len(active.Transactions) != 2 {
		t.Fatalf("active budget view = %+v, want the new transaction visible", active)
	}
}

func TestApplyMalformedFrameDropped(t *testing.T) {
	s := syncedState(t)
	before := len(s.Transactions())

	s.Apply([]byte("not json at all"))
	s.Apply([]byte(`{"event":"transaction:created","payload":"not an object"}`))
	s.Apply(frame(t, "something:unheard-of", map[string]string{"x": "y"}))

	if got := len(s.Transactions()); got != before {
		t.Fatalf("bad frames changed state: %d -> %d", before, got)
	}
}

func TestLoadSyncReplacesEverything(t *testing.T) {
	s := syncedState(t)
	s.SetActiveBudget("b1")

	// Second sync containing none of the previous data.
	s.LoadSync(&dto.SyncResponse{
		Transactions: []models.Transaction{{ID: "t99"}},
	})

	if got := s.Transactions(); len(got) != 1 || got[0].ID != "t99" {
		t.Fatalf("transactions after resync = %+v", got)
	}
	if _, ok := s.Budget("b1"); ok {
		t.Fatal("stale budget survived a full resync")
	}
	if s.ActiveBudget() != nil {
		t.Fatal("active selection points at a budget the resync removed")
	}
}
