package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mpellar/budgetsync/internal/models"
	"github.com/mpellar/budgetsync/pkg/helpers"
)

type stubUserUSStore struct {
	user            *models.User
	createUserCalls int
	err             error
}

func (s *stubUserUSStore) CreateUser(_ context.Context, user *models.User) error {
	s.user = user
	s.createUserCalls++
	return s.err
}

func (s *stubUserUSStore) UpdateUser(_ context.Context, _ *models.User) error { return nil }
func (s *stubUserUSStore) GetUser(_ context.Context, _ string) (*models.User, error) {
	return nil, nil
}

func TestUserServiceCreateUser(t *testing.T) {
	store := &stubUserUSStore{}
	svc := NewUserService(store)

	ctx := helpers.TestCtx()
	now := time.Now()

	err := svc.CreateUser(ctx, "uid-123", "user@example.com", "Jane", "Doe")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if store.createUserCalls != 1 {
		t.Fatalf("CreateUser called %d times, want 1", store.createUserCalls)
	}
	if store.user == nil {
		t.Fatalf("store received nil user")
	}
	if store.user.UID != "uid-123" || store.user.Email != "user@example.com" {
		t.Fatalf("unexpected user identifiers: %+v", store.user)
	}
	if store.user.FirstName != "Jane" || store.user.LastName != "Doe" {
		t.Fatalf("unexpected user name: %+v", store.user)
	}
	if store.user.CreatedAt.Before(now) {
		t.Fatalf("CreatedAt set earlier than call time: %v before %v", store.user.CreatedAt, now)
	}
}

func TestUserServiceCreateUserStoreError(t *testing.T) {
	store := &stubUserUSStore{err: errors.New("store failure")}
	svc := NewUserService(store)

	err := svc.CreateUser(helpers.TestCtx(), "uid-456", "user2@example.com", "John", "Smith")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if store.createUserCalls != 1 {
		t.Fatalf("CreateUser called %d times, want 1", store.createUserCalls)
	}
}

func TestUserDisplayName(t *testing.T) {
	cases := []struct {
		user models.User
		want string
	}{
		{models.User{FirstName: "Jane", LastName: "Doe"}, "Jane Doe"},
		{models.User{FirstName: "Jane"}, "Jane"},
		{models.User{Email: "jane@example.com"}, "jane@example.com"},
	}
	for _, c := range cases {
		if got := c.user.DisplayName(); got != c.want {
			t.Fatalf("DisplayName() = %q, want %q", got, c.want)
		}
	}
}
