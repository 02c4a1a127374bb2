package services

import (
	"context"

	"github.com/mpellar/budgetsync/internal/dto"
	"github.com/mpellar/budgetsync/pkg/logger"
)

// syncService assembles the authoritative full-state payload. Broadcast
// delivery is best-effort, so a client that was offline reloads
// everything from here rather than replaying missed events.
type syncService struct {
	Budgets      sharedBudgetSBStore
	Transactions transactionTSStore
	Savings      savingsSVStore
}

func NewSyncService(budgets sharedBudgetSBStore, transactions transactionTSStore, savings savingsSVStore) *syncService {
	return &syncService{
		Budgets:      budgets,
		Transactions: transactions,
		Savings:      savings,
	}
}

func (s *syncService) FullSync(ctx context.Context, uid string) (*dto.SyncResponse, error) {
	log := logger.FromContext(ctx)

	txs, err := s.Transactions.ListTransactions(ctx, uid)
	if err != nil {
		return nil, err
	}

	savings, err := s.Savings.GetSavings(ctx, uid)
	if err != nil {
		return nil, err
	}

	goals, err := s.Savings.ListGoals(ctx, uid)
	if err != nil {
		return nil, err
	}

	budgets, err := s.Budgets.ListBudgetsForUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	details := make([]dto.SharedBudgetDetail, 0, len(budgets))
	for _, b := range budgets {
		btxs, err := s.Budgets.ListTransactions(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, dto.SharedBudgetDetail{
			SharedBudget: *b,
			Transactions: btxs,
		})
	}

	log.Debug("full sync assembled",
		"transactions", len(txs),
		"goals", len(goals),
		"shared_budgets", len(details))

	return &dto.SyncResponse{
		Transactions:  txs,
		Savings:       savings,
		SavingsGoals:  goals,
		SharedBudgets: details,
	}, nil
}
