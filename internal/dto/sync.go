package dto

import (
	"github.com/mpellar/budgetsync/internal/models"
)

// SyncResponse is the authoritative full-state payload a client loads
// after (re)connecting. Incremental events are layered on top of it and
// are never the sole source of truth.
type SyncResponse struct {
	Transactions  []models.Transaction  `json:"transactions"`
	Savings       *models.Savings       `json:"savings,omitempty"`
	SavingsGoals  []models.SavingsGoal  `json:"savingsGoals"`
	SharedBudgets []SharedBudgetDetail  `json:"sharedBudgets"`
}

// SharedBudgetDetail bundles a budget with its transactions, which live
// in a separate subcollection server-side.
type SharedBudgetDetail struct {
	models.SharedBudget
	Transactions []models.SharedTransaction `json:"transactions"`
}
