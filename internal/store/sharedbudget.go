package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mpellar/budgetsync/internal/errs"
	"github.com/mpellar/budgetsync/internal/models"
)

type sharedBudgetStore struct {
	client *firestore.Client
}

func NewSharedBudgetStore(client *firestore.Client) *sharedBudgetStore {
	return &sharedBudgetStore{client: client}
}

func (s *sharedBudgetStore) budgets() *firestore.CollectionRef {
	return s.client.Collection("shared_budgets")
}

func (s *sharedBudgetStore) txCollection(budgetID string) *firestore.CollectionRef {
	return s.budgets().Doc(budgetID).Collection("transactions")
}

func (s *sharedBudgetStore) CreateBudget(ctx context.Context, budget *models.SharedBudget) error {
	_, err := s.budgets().Doc(budget.ID).Create(ctx, budget)
	if err != nil {
		return errs.NewDatabaseError("create_budget", err.Error())
	}
	return nil
}

func (s *sharedBudgetStore) GetBudget(ctx context.Context, budgetID string) (*models.SharedBudget, error) {
	snap, err := s.budgets().Doc(budgetID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NewNotFoundError("shared budget not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("get_budget", err.Error())
	}

	var budget models.SharedBudget
	if err := snap.DataTo(&budget); err != nil {
		return nil, errs.NewDatabaseError("get_budget", err.Error())
	}
	return &budget, nil
}

// GetBudgetByInviteCode expects an already-normalized code.
func (s *sharedBudgetStore) GetBudgetByInviteCode(ctx context.Context, code string) (*models.SharedBudget, error) {
	iter := s.budgets().Where("inviteCode", "==", code).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, errs.NewNotFoundError("no budget matches that invite code")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("get_budget_by_code", err.Error())
	}

	var budget models.SharedBudget
	if err := snap.DataTo(&budget); err != nil {
		return nil, errs.NewDatabaseError("get_budget_by_code", err.Error())
	}
	return &budget, nil
}

func (s *sharedBudgetStore) UpdateBudget(ctx context.Context, budget *models.SharedBudget) error {
	budget.UpdatedAt = time.Now()
	if _, err := s.budgets().Doc(budget.ID).Set(ctx, budget); err != nil {
		return errs.NewDatabaseError("update_budget", err.Error())
	}
	return nil
}

// DeleteBudget removes the budget document and its transaction
// subcollection. Firestore does not cascade subcollection deletes.
func (s *sharedBudgetStore) DeleteBudget(ctx context.Context, budgetID string) error {
	iter := s.txCollection(budgetID).Documents(ctx)
	defer iter.Stop()

	bw := s.client.BulkWriter(ctx)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bw.End()
			return errs.NewDatabaseError("delete_budget", err.Error())
		}
		if _, err := bw.Delete(snap.Ref); err != nil {
			bw.End()
			return errs.NewDatabaseError("delete_budget", err.Error())
		}
	}
	bw.End()

	if _, err := s.budgets().Doc(budgetID).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete_budget", err.Error())
	}
	return nil
}

func (s *sharedBudgetStore) ListBudgetsForUser(ctx context.Context, userID string) ([]*models.SharedBudget, error) {
	iter := s.budgets().Where("memberIds", "array-contains", userID).Documents(ctx)
	defer iter.Stop()

	var budgets []*models.SharedBudget
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("list_budgets", err.Error())
		}

		var budget models.SharedBudget
		if err := snap.DataTo(&budget); err != nil {
			return nil, errs.NewDatabaseError("list_budgets", err.Error())
		}
		budgets = append(budgets, &budget)
	}
	return budgets, nil
}

func (s *sharedBudgetStore) AddTransaction(ctx context.Context, tx *models.SharedTransaction) error {
	// Set, not Create: a replayed request with the same client id must
	// land on the same document instead of failing.
	if _, err := s.txCollection(tx.BudgetID).Doc(tx.ID).Set(ctx, tx); err != nil {
		return errs.NewDatabaseError("add_shared_transaction", err.Error())
	}
	return nil
}

func (s *sharedBudgetStore) GetTransaction(ctx context.Context, budgetID, txID string) (*models.SharedTransaction, error) {
	snap, err := s.txCollection(budgetID).Doc(txID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NewNotFoundError("shared transaction not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("get_shared_transaction", err.Error())
	}

	var tx models.SharedTransaction
	if err := snap.DataTo(&tx); err != nil {
		return nil, errs.NewDatabaseError("get_shared_transaction", err.Error())
	}
	return &tx, nil
}

func (s *sharedBudgetStore) DeleteTransaction(ctx context.Context, budgetID, txID string) error {
	if _, err := s.txCollection(budgetID).Doc(txID).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete_shared_transaction", err.Error())
	}
	return nil
}

func (s *sharedBudgetStore) ListTransactions(ctx context.Context, budgetID string) ([]models.SharedTransaction, error) {
	iter := s.txCollection(budgetID).OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var txs []models.SharedTransaction
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("list_shared_transactions", err.Error())
		}

		var tx models.SharedTransaction
		if err := snap.DataTo(&tx); err != nil {
			return nil, errs.NewDatabaseError("list_shared_transactions", err.Error())
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
