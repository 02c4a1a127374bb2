package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mpellar/budgetsync/internal/dto"
	"github.com/mpellar/budgetsync/internal/errs"
	"github.com/mpellar/budgetsync/internal/models"
	"github.com/mpellar/budgetsync/internal/realtime"
	"github.com/mpellar/budgetsync/pkg/logger"
)

type transactionTSStore interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, uid, txID string) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, uid, txID string) error
	ListTransactions(ctx context.Context, uid string) ([]models.Transaction, error)
}

type transactionService struct {
	Store     transactionTSStore
	Publisher publisher
}

func NewTransactionService(store transactionTSStore, pub publisher) *transactionService {
	return &transactionService{Store: store, Publisher: pub}
}

// CreateTransaction mirrors the shared-budget path: idempotent on the
// client id, event to the owner's other sessions after commit.
func (s *transactionService) CreateTransaction(ctx context.Context, uid string, req dto.CreateTransactionRequest) (*models.Transaction, error) {
	log := logger.FromContext(ctx)

	if req.Name == "" {
		return nil, errs.NewValidationError("transaction name must not be empty")
	}
	if req.Amount <= 0 {
		return nil, errs.NewValidationError("amount must be positive")
	}
	txType := models.TransactionType(req.Type)
	if !txType.Valid() {
		return nil, errs.NewValidationError("type must be income or expense")
	}

	if req.ID != "" {
		if existing, err := s.Store.GetTransaction(ctx, uid, req.ID); err == nil {
			return existing, nil
		} else if _, missing := err.(*errs.NotFoundError); !missing {
			return nil, err
		}
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	tx := &models.Transaction{
		ID:         id,
		OwnerID:    uid,
		Name:       req.Name,
		Amount:     req.Amount,
		Type:       txType,
		CategoryID: req.CategoryID,
		Date:       req.Date,
		CreatedAt:  time.Now(),
	}

	if err := s.Store.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.Publisher.ToUser(uid, realtime.EvtTransactionCreated, tx)

	log.Info("transaction created", "tx_id", tx.ID)
	return tx, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, uid, txID string) error {
	if _, err := s.Store.GetTransaction(ctx, uid, txID); err != nil {
		return err
	}
	if err := s.Store.DeleteTransaction(ctx, uid, txID); err != nil {
		return err
	}

	s.Publisher.ToUser(uid, realtime.EvtTransactionDeleted, dto.TransactionDeletedEvent{ID: txID})
	return nil
}

func (s *transactionService) ListTransactions(ctx context.Context, uid string) ([]models.Transaction, error) {
	return s.Store.ListTransactions(ctx, uid)
}
