package models

import (
	"time"
)

// Transaction is a personal ledger entry, scoped to one user.
type Transaction struct {
	ID         string          `firestore:"id" json:"id"`
	OwnerID    string          `firestore:"ownerId" json:"ownerId"`
	Name       string          `firestore:"name" json:"name"`
	Amount     float64         `firestore:"amount" json:"amount"`
	Type       TransactionType `firestore:"type" json:"type"`
	CategoryID string          `firestore:"categoryId" json:"categoryId"`
	Date       string          `firestore:"date" json:"date"` // YYYY-MM-DD
	CreatedAt  time.Time       `firestore:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time       `firestore:"updatedAt" json:"updatedAt"`
}
