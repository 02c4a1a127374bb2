package dto

import (
	"github.com/mpellar/budgetsync/internal/models"
)

// Broadcast payloads. Shared-budget events always carry the budget id so
// clients can update both the budget list entry and the active-budget
// detail view from one frame.

type SharedTransactionCreatedEvent struct {
	BudgetID    string                    `json:"budgetId"`
	Transaction *models.SharedTransaction `json:"transaction"`
}

type SharedTransactionDeletedEvent struct {
	BudgetID      string `json:"budgetId"`
	TransactionID string `json:"transactionId"`
}

type SharedSavingsEvent struct {
	BudgetID string  `json:"budgetId"`
	Amount   float64 `json:"amount"`
}

type MemberJoinedEvent struct {
	BudgetID string         `json:"budgetId"`
	Member   *models.Member `json:"member"`
}

type MemberGoneEvent struct {
	BudgetID string `json:"budgetId"`
	UserID   string `json:"userId"`
}

type BudgetDeletedEvent struct {
	BudgetID string `json:"budgetId"`
}

type SavingsEvent struct {
	Amount float64 `json:"amount"`
}

type TransactionDeletedEvent struct {
	ID string `json:"id"`
}
