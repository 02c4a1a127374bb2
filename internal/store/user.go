package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mpellar/budgetsync/internal/errs"
	"github.com/mpellar/budgetsync/internal/models"
)

type userStore struct {
	client *firestore.Client
}

func NewUserStore(client *firestore.Client) *userStore {
	return &userStore{client: client}
}

func (s *userStore) users() *firestore.CollectionRef {
	return s.client.Collection("users")
}

func (s *userStore) CreateUser(ctx context.Context, user *models.User) error {
	if _, err := s.users().Doc(user.UID).Set(ctx, user); err != nil {
		return errs.NewDatabaseError("create_user", err.Error())
	}
	return nil
}

func (s *userStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	snap, err := s.users().Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("get_user", err.Error())
	}

	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, errs.NewDatabaseError("get_user", err.Error())
	}
	return &user, nil
}

func (s *userStore) UpdateUser(ctx context.Context, user *models.User) error {
	if _, err := s.users().Doc(user.UID).Set(ctx, user, firestore.MergeAll); err != nil {
		return errs.NewDatabaseError("update_user", err.Error())
	}
	return nil
}
