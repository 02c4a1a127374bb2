package services

import (
	"context"
	"testing"

	"github.com/mpellar/budgetsync/internal/dto"
	"github.com/mpellar/budgetsync/internal/errs"
	"github.com/mpellar/budgetsync/internal/models"
	"github.com/mpellar/budgetsync/internal/realtime"
	"github.com/mpellar/budgetsync/pkg/helpers"
)

type fakeTxStore struct {
	txs map[string]*models.Transaction
}

func newFakeTxStore() *fakeTxStore {
	return &fakeTxStore{txs: make(map[string]*models.Transaction)}
}

func (f *fakeTxStore) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	copied := *tx
	f.txs[tx.ID] = &copied
	return nil
}

func (f *fakeTxStore) GetTransaction(_ context.Context, _, txID string) (*models.Transaction, error) {
	tx, ok := f.txs[txID]
	if !ok {
		return nil, errs.NewNotFoundError("transaction not found")
	}
	copied := *tx
	return &copied, nil
}

func (f *fakeTxStore) DeleteTransaction(_ context.Context, _, txID string) error {
	delete(f.txs, txID)
	return nil
}

func (f *fakeTxStore) ListTransactions(_ context.Context, _ string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range f.txs {
		out = append(out, *tx)
	}
	return out, nil
}

func TestCreateTransactionBroadcastsToOwner(t *testing.T) {
	store := newFakeTxStore()
	pub := &recordingPublisher{}
	svc := NewTransactionService(store, pub)
	ctx := helpers.TestCtx()

	tx, err := svc.CreateTransaction(ctx, "u1", dto.CreateTransactionRequest{
		Name: "Coffee", Amount: 4.5, Type: "expense", CategoryID: "food", Date: "2025-09-01",
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if tx.OwnerID != "u1" || tx.ID == "" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	events := pub.byEvent(realtime.EvtTransactionCreated)
	if len(events) != 1 || events[0].Room != "user:u1" {
		t.Fatalf("expected one event to the owner's room, got %+v", events)
	}
}

func TestCreateTransactionIdempotent(t *testing.T) {
	store := newFakeTxStore()
	pub := &recordingPublisher{}
	svc := NewTransactionService(store, pub)
	ctx := helpers.TestCtx()

	req := dto.CreateTransactionRequest{ID: "t-1", Name: "Coffee", Amount: 4.5, Type: "expense"}
	if _, err := svc.CreateTransaction(ctx, "u1", req); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, "u1", req); err != nil {
		t.Fatalf("duplicate create failed: %v", err)
	}

	if len(store.txs) != 1 {
		t.Fatalf("stored %d transactions, want 1", len(store.txs))
	}
	if got := len(pub.byEvent(realtime.EvtTransactionCreated)); got != 1 {
		t.Fatalf("broadcast %d times, want 1", got)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	svc := NewTransactionService(newFakeTxStore(), &recordingPublisher{})
	ctx := helpers.TestCtx()

	bad := []dto.CreateTransactionRequest{
		{Name: "", Amount: 5, Type: "expense"},
		{Name: "x", Amount: 0, Type: "income"},
		{Name: "x", Amount: 5, Type: "loan"},
	}
	for _, req := range bad {
		if _, err := svc.CreateTransaction(ctx, "u1", req); err == nil {
			t.Fatalf("expected error for %+v", req)
		}
	}
}

func TestDeleteTransaction(t *testing.T) {
	store := newFakeTxStore()
	pub := &recordingPublisher{}
	svc := NewTransactionService(store, pub)
	ctx := helpers.TestCtx()

	tx, _ := svc.CreateTransaction(ctx, "u1", dto.CreateTransactionRequest{
		Name: "Coffee", Amount: 4.5, Type: "expense",
	})

	if err := svc.DeleteTransaction(ctx, "u1", tx.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, "u1", tx.ID); err == nil {
		t.Fatalf("deleting a missing transaction should error")
	}

	events := pub.byEvent(realtime.EvtTransactionDeleted)
	if len(events) != 1 {
		t.Fatalf("deleted events = %d, want 1", len(events))
	}
}
