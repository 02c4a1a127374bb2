package dto

type CreateTransactionRequest struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	CategoryID string  `json:"categoryId"`
	Date       string  `json:"date"`
}

type CreateSavingsGoalRequest struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Target float64 `json:"target"`
}

type UpdateSavingsGoalRequest struct {
	Name   *string  `json:"name,omitempty"`
	Target *float64 `json:"target,omitempty"`
	Saved  *float64 `json:"saved,omitempty"`
}
