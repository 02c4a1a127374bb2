package models

import (
	"time"
)

// SharedBudget is a multi-member ledger joined via invite code. Members
// are embedded on the budget document; transactions live in a
// subcollection keyed by budget id.
type SharedBudget struct {
	ID         string    `firestore:"id" json:"id"`
	Name       string    `firestore:"name" json:"name"`
	InviteCode string    `firestore:"inviteCode" json:"inviteCode"`
	OwnerID    string    `firestore:"ownerId" json:"ownerId"`
	Members    []Member  `firestore:"members" json:"members"`
	// MemberIDs mirrors Members for array-contains queries.
	MemberIDs []string  `firestore:"memberIds" json:"-"`
	Savings   float64   `firestore:"savings" json:"savings"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

type Member struct {
	UserID   string    `firestore:"userId" json:"userId"`
	UserName string    `firestore:"userName" json:"userName"`
	JoinedAt time.Time `firestore:"joinedAt" json:"joinedAt"`
}

func (b *SharedBudget) HasMember(userID string) bool {
	for _, m := range b.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// RemoveMember drops the member with the given user id and keeps the
// id mirror in step. Returns false if no such member existed.
func (b *SharedBudget) RemoveMember(userID string) bool {
	for i, m := range b.Members {
		if m.UserID == userID {
			b.Members = append(b.Members[:i], b.Members[i+1:]...)
			break
		}
	}
	for i, id := range b.MemberIDs {
		if id == userID {
			b.MemberIDs = append(b.MemberIDs[:i], b.MemberIDs[i+1:]...)
			return true
		}
	}
	return false
}

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// SharedTransaction is immutable once created except for deletion.
type SharedTransaction struct {
	ID         string          `firestore:"id" json:"id"`
	BudgetID   string          `firestore:"budgetId" json:"budgetId"`
	Name       string          `firestore:"name" json:"name"`
	Amount     float64         `firestore:"amount" json:"amount"`
	Type       TransactionType `firestore:"type" json:"type"`
	CategoryID string          `firestore:"categoryId" json:"categoryId"`
	Date       string          `firestore:"date" json:"date"` // YYYY-MM-DD
	AddedBy    AddedBy         `firestore:"addedBy" json:"addedBy"`
	CreatedAt  time.Time       `firestore:"createdAt" json:"createdAt"`
}

// AddedBy caches the author's name at creation time; it is not updated
// if the user later renames themselves.
type AddedBy struct {
	UserID   string `firestore:"userId" json:"userId"`
	UserName string `firestore:"userName" json:"userName"`
}
