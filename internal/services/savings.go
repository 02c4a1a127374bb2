package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mpellar/budgetsync/internal/dto"
	"github.com/mpellar/budgetsync/internal/errs"
	"github.com/mpellar/budgetsync/internal/models"
	"github.com/mpellar/budgetsync/internal/realtime"
	"github.com/mpellar/budgetsync/pkg/helpers"
)

type savingsSVStore interface {
	GetSavings(ctx context.Context, uid string) (*models.Savings, error)
	SetSavings(ctx context.Context, uid string, amount float64) (*models.Savings, error)
	CreateGoal(ctx context.Context, goal *models.SavingsGoal) error
	GetGoal(ctx context.Context, uid, goalID string) (*models.SavingsGoal, error)
	UpdateGoal(ctx context.Context, goal *models.SavingsGoal) error
	DeleteGoal(ctx context.Context, uid, goalID string) error
	ListGoals(ctx context.Context, uid string) ([]models.SavingsGoal, error)
}

type savingsService struct {
	Store     savingsSVStore
	Publisher publisher
}

func NewSavingsService(store savingsSVStore, pub publisher) *savingsService {
	return &savingsService{Store: store, Publisher: pub}
}

func (s *savingsService) UpdateSavings(ctx context.Context, uid string, amount float64) (*models.Savings, error) {
	if amount < 0 {
		return nil, errs.NewValidationError("savings amount must not be negative")
	}

	savings, err := s.Store.SetSavings(ctx, uid, amount)
	if err != nil {
		return nil, err
	}

	s.Publisher.ToUser(uid, realtime.EvtSavingsUpdated, dto.SavingsEvent{Amount: amount})
	return savings, nil
}

func (s *savingsService) CreateGoal(ctx context.Context, uid string, req dto.CreateSavingsGoalRequest) (*models.SavingsGoal, error) {
	if req.Name == "" {
		return nil, errs.NewValidationError("goal name must not be empty")
	}
	if req.Target <= 0 {
		return nil, errs.NewValidationError("goal target must be positive")
	}

	if req.ID != "" {
		if existing, err := s.Store.GetGoal(ctx, uid, req.ID); err == nil {
			return existing, nil
		} else if _, missing := err.(*errs.NotFoundError); !missing {
			return nil, err
		}
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	goal := &models.SavingsGoal{
		ID:        id,
		OwnerID:   uid,
		Name:      req.Name,
		Target:    req.Target,
		CreatedAt: time.Now(),
	}

	if err := s.Store.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}

	s.Publisher.ToUser(uid, realtime.EvtGoalCreated, goal)
	return goal, nil
}

func (s *savingsService) UpdateGoal(ctx context.Context, uid, goalID string, req dto.UpdateSavingsGoalRequest) (*models.SavingsGoal, error) {
	goal, err := s.Store.GetGoal(ctx, uid, goalID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, errs.NewValidationError("goal name must not be empty")
		}
		goal.Name = *req.Name
	}
	if req.Target != nil {
		if *req.Target <= 0 {
			return nil, errs.NewValidationError("goal target must be positive")
		}
		goal.Target = *req.Target
	}
	if req.Saved != nil {
		goal.Saved = helpers.Value(req.Saved)
	}

	if err := s.Store.UpdateGoal(ctx, goal); err != nil {
		return nil, err
	}

	s.Publisher.ToUser(uid, realtime.EvtGoalUpdated, goal)
	return goal, nil
}

func (s *savingsService) DeleteGoal(ctx context.Context, uid, goalID string) error {
	if _, err := s.Store.GetGoal(ctx, uid, goalID); err != nil {
		return err
	}
	if err := s.Store.DeleteGoal(ctx, uid, goalID); err != nil {
		return err
	}

	s.Publisher.ToUser(uid, realtime.EvtGoalDeleted, dto.TransactionDeletedEvent{ID: goalID})
	return nil
}
