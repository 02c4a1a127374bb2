package models

import (
	"time"
)

// Savings is a single per-user document holding the current amount set
// aside. Updates are unconditional overwrites (last write wins).
type Savings struct {
	OwnerID   string    `firestore:"ownerId" json:"ownerId"`
	Amount    float64   `firestore:"amount" json:"amount"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

type SavingsGoal struct {
	ID        string    `firestore:"id" json:"id"`
	OwnerID   string    `firestore:"ownerId" json:"ownerId"`
	Name      string    `firestore:"name" json:"name"`
	Target    float64   `firestore:"target" json:"target"`
	Saved     float64   `firestore:"saved" json:"saved"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}
