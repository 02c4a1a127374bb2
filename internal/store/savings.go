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

type savingsStore struct {
	client *firestore.Client
}

func NewSavingsStore(client *firestore.Client) *savingsStore {
	return &savingsStore{client: client}
}

func (s *savingsStore) savingsDoc(uid string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid).Collection("savings").Doc("current")
}

func (s *savingsStore) goals(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("savings_goals")
}

func (s *savingsStore) GetSavings(ctx context.Context, uid string) (*models.Savings, error) {
	snap, err := s.savingsDoc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		// Never written yet; zero is a valid amount.
		return &models.Savings{OwnerID: uid}, nil
	}
	if err != nil {
		return nil, errs.NewDatabaseError("get_savings", err.Error())
	}

	var savings models.Savings
	if err := snap.DataTo(&savings); err != nil {
		return nil, errs.NewDatabaseError("get_savings", err.Error())
	}
	return &savings, nil
}

// SetSavings is an unconditional overwrite; concurrent writers race and
// the last one committed wins.
func (s *savingsStore) SetSavings(ctx context.Context, uid string, amount float64) (*models.Savings, error) {
	savings := &models.Savings{
		OwnerID:   uid,
		Amount:    amount,
		UpdatedAt: time.Now(),
	}
	if _, err := s.savingsDoc(uid).Set(ctx, savings); err != nil {
		return nil, errs.NewDatabaseError("set_savings", err.Error())
	}
	return savings, nil
}

func (s *savingsStore) CreateGoal(ctx context.Context, goal *models.SavingsGoal) error {
	now := time.Now()
	goal.UpdatedAt = now
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = now
	}

	if _, err := s.goals(goal.OwnerID).Doc(goal.ID).Set(ctx, goal); err != nil {
		return errs.NewDatabaseError("create_goal", err.Error())
	}
	return nil
}

func (s *savingsStore) GetGoal(ctx context.Context, uid, goalID string) (*models.SavingsGoal, error) {
	snap, err := s.goals(uid).Doc(goalID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NewNotFoundError("savings goal not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("get_goal", err.Error())
	}

	var goal models.SavingsGoal
	if err := snap.DataTo(&goal); err != nil {
		return nil, errs.NewDatabaseError("get_goal", err.Error())
	}
	return &goal, nil
}

func (s *savingsStore) UpdateGoal(ctx context.Context, goal *models.SavingsGoal) error {
	goal.UpdatedAt = time.Now()
	if _, err := s.goals(goal.OwnerID).Doc(goal.ID).Set(ctx, goal); err != nil {
		return errs.NewDatabaseError("update_goal", err.Error())
	}
	return nil
}

func (s *savingsStore) DeleteGoal(ctx context.Context, uid, goalID string) error {
	if _, err := s.goals(uid).Doc(goalID).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete_goal", err.Error())
	}
	return nil
}

func (s *savingsStore) ListGoals(ctx context.Context, uid string) ([]models.SavingsGoal, error) {
	iter := s.goals(uid).OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var goals []models.SavingsGoal
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("list_goals", err.Error())
		}

		var goal models.SavingsGoal
		if err := snap.DataTo(&goal); err != nil {
			return nil, errs.NewDatabaseError("list_goals", err.Error())
		}
		goals = append(goals, goal)
	}
	return goals, nil
}
