package dto

type CreateSharedBudgetRequest struct {
	Name string `json:"name"`
}

type JoinSharedBudgetRequest struct {
	InviteCode string `json:"inviteCode"`
}

// CreateSharedTransactionRequest carries a client-generated id so a
// retried create after a timeout lands on the same document.
type CreateSharedTransactionRequest struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	CategoryID string  `json:"categoryId"`
	Date       string  `json:"date"`
}

type UpdateSavingsRequest struct {
	Amount float64 `json:"amount"`
}
