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

type transactionStore struct {
	client *firestore.Client
}

func NewTransactionStore(client *firestore.Client) *transactionStore {
	return &transactionStore{client: client}
}

func (s *transactionStore) txCollection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("transactions")
}

func (s *transactionStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	now := time.Now()
	tx.UpdatedAt = now
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}

	if _, err := s.txCollection(tx.OwnerID).Doc(tx.ID).Set(ctx, tx); err != nil {
		return errs.NewDatabaseError("create_transaction", err.Error())
	}
	return nil
}

func (s *transactionStore) GetTransaction(ctx context.Context, uid, txID string) (*models.Transaction, error) {
	snap, err := s.txCollection(uid).Doc(txID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NewNotFoundError("transaction not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("get_transaction", err.Error())
	}

	var tx models.Transaction
	if err := snap.DataTo(&tx); err != nil {
		return nil, errs.NewDatabaseError("get_transaction", err.Error())
	}
	return &tx, nil
}

func (s *transactionStore) DeleteTransaction(ctx context.Context, uid, txID string) error {
	if _, err := s.txCollection(uid).Doc(txID).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete_transaction", err.Error())
	}
	return nil
}

func (s *transactionStore) ListTransactions(ctx context.Context, uid string) ([]models.Transaction, error) {
	iter := s.txCollection(uid).OrderBy("date", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var txs []models.Transaction
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("list_transactions", err.Error())
		}

		var tx models.Transaction
		if err := snap.DataTo(&tx); err != nil {
			return nil, errs.NewDatabaseError("list_transactions", err.Error())
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
