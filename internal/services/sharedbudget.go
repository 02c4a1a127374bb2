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

// inviteCodeRetries bounds collision re-rolls on budget creation.
const inviteCodeRetries = 2

type sharedBudgetSBStore interface {
	CreateBudget(ctx context.Context, budget *models.SharedBudget) error
	GetBudget(ctx context.Context, budgetID string) (*models.SharedBudget, error)
	GetBudgetByInviteCode(ctx context.Context, code string) (*models.SharedBudget, error)
	UpdateBudget(ctx context.Context, budget *models.SharedBudget) error
	DeleteBudget(ctx context.Context, budgetID string) error
	ListBudgetsForUser(ctx context.Context, userID string) ([]*models.SharedBudget, error)
	AddTransaction(ctx context.Context, tx *models.SharedTransaction) error
	GetTransaction(ctx context.Context, budgetID, txID string) (*models.SharedTransaction, error)
	DeleteTransaction(ctx context.Context, budgetID, txID string) error
	ListTransactions(ctx context.Context, budgetID string) ([]models.SharedTransaction, error)
}

type sharedBudgetUserStore interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

// publisher is the broadcast side effect of every committed mutation.
// Implementations must not block and must never return delivery errors
// into the mutation path.
type publisher interface {
	ToUser(userID, event string, payload any)
	ToBudget(budgetID, event string, payload any)
}

// roomManager adjusts live connections' subscriptions when membership
// changes, so an open session picks up a join or kick without
// reconnecting.
type roomManager interface {
	JoinRoom(userID, room string)
	LeaveRoom(userID, room string)
}

type sharedBudgetService struct {
	Store     sharedBudgetSBStore
	Users     sharedBudgetUserStore
	Publisher publisher
	Rooms     roomManager
}

func NewSharedBudgetService(store sharedBudgetSBStore, users sharedBudgetUserStore, pub publisher, rooms roomManager) *sharedBudgetService {
	return &sharedBudgetService{
		Store:     store,
		Users:     users,
		Publisher: pub,
		Rooms:     rooms,
	}
}

func (s *sharedBudgetService) CreateBudget(ctx context.Context, uid, name string) (*models.SharedBudget, error) {
	log := logger.FromContext(ctx)

	if name == "" {
		return nil, errs.NewValidationError("budget name must not be empty")
	}

	user, err := s.Users.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	code, err := s.freeInviteCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	budget := &models.SharedBudget{
		ID:         uuid.NewString(),
		Name:       name,
		InviteCode: code,
		OwnerID:    uid,
		Members: []models.Member{{
			UserID:   uid,
			UserName: user.DisplayName(),
			JoinedAt: now,
		}},
		MemberIDs: []string{uid},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.CreateBudget(ctx, budget); err != nil {
		return nil, err
	}

	s.Rooms.JoinRoom(uid, realtime.BudgetRoom(budget.ID))
	s.Publisher.ToBudget(budget.ID, realtime.EvtSharedBudgetMade, budget)

	log.Info("shared budget created", "budget_id", budget.ID)
	return budget, nil
}

// freeInviteCode rolls codes until one has no existing budget, giving up
// after a couple of collisions.
func (s *sharedBudgetService) freeInviteCode(ctx context.Context) (string, error) {
	for i := 0; i <= inviteCodeRetries; i++ {
		code := newInviteCode()
		_, err := s.Store.GetBudgetByInviteCode(ctx, code)
		if _, free := err.(*errs.NotFoundError); free {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errs.NewConflictError("could not generate a unique invite code")
}

// JoinBudget is idempotent: a user already on the budget gets the budget
// back instead of an error.
func (s *sharedBudgetService) JoinBudget(ctx context.Context, uid, inviteCode string) (*models.SharedBudget, error) {
	log := logger.FromContext(ctx)

	code := normalizeInviteCode(inviteCode)
	if code == "" {
		return nil, errs.NewValidationError("invite code must not be empty")
	}

	budget, err := s.Store.GetBudgetByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if budget.HasMember(uid) {
		log.Debug("join is a no-op, already a member", "budget_id", budget.ID)
		return budget, nil
	}

	user, err := s.Users.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	member := models.Member{
		UserID:   uid,
		UserName: user.DisplayName(),
		JoinedAt: time.Now(),
	}
	budget.Members = append(budget.Members, member)
	budget.MemberIDs = append(budget.MemberIDs, uid)

	if err := s.Store.UpdateBudget(ctx, budget); err != nil {
		return nil, err
	}

	s.Rooms.JoinRoom(uid, realtime.BudgetRoom(budget.ID))
	s.Publisher.ToBudget(budget.ID, realtime.EvtMemberJoined, dto.MemberJoinedEvent{
		BudgetID: budget.ID,
		Member:   &member,
	})

	log.Info("user joined shared budget", "budget_id", budget.ID)
	return budget, nil
}

// LeaveBudget removes the caller's membership. The owner leaving deletes
// the whole budget; there is no ownership transfer.
func (s *sharedBudgetService) LeaveBudget(ctx context.Context, uid, budgetID string) error {
	log := logger.FromContext(ctx)

	budget, err := s.Store.GetBudget(ctx, budgetID)
	if err != nil {
		return err
	}
	if !budget.HasMember(uid) {
		return errs.NewNotFoundError("not a member of this budget")
	}

	if budget.OwnerID == uid {
		log.Info("owner leaving, deleting budget", "budget_id", budgetID)
		return s.destroyBudget(ctx, budget)
	}

	budget.RemoveMember(uid)
	if err := s.Store.UpdateBudget(ctx, budget); err != nil {
		return err
	}

	s.Publisher.ToBudget(budgetID, realtime.EvtMemberLeft, dto.MemberGoneEvent{
		BudgetID: budgetID,
		UserID:   uid,
	})
	s.Rooms.LeaveRoom(uid, realtime.BudgetRoom(budgetID))

	log.Info("user left shared budget", "budget_id", budgetID)
	return nil
}

// DeleteBudget is the explicit owner-only removal of a budget.
func (s *sharedBudgetService) DeleteBudget(ctx context.Context, uid, budgetID string) error {
	budget, err := s.Store.GetBudget(ctx, budgetID)
	if err != nil {
		return err
	}
	if budget.OwnerID != uid {
		return errs.NewForbiddenError("only the owner can delete a budget")
	}
	return s.destroyBudget(ctx, budget)
}

// destroyBudget deletes the budget and its transactions, then tells every
// member before unsubscribing their live connections. The event must go
// out before the rooms are torn down or nobody would receive it.
func (s *sharedBudgetService) destroyBudget(ctx context.Context, budget *models.SharedBudget) error {
	if err := s.Store.DeleteBudget(ctx, budget.ID); err != nil {
		return err
	}

	s.Publisher.ToBudget(budget.ID, realtime.EvtSharedBudgetGone, dto.BudgetDeletedEvent{
		BudgetID: budget.ID,
	})
	for _, m := range budget.Members {
		s.Rooms.LeaveRoom(m.UserID, realtime.BudgetRoom(budget.ID))
	}
	return nil
}

// RemoveMember kicks a member. Owner-only; the owner cannot kick
// themselves (that is a leave, which deletes the budget).
func (s *sharedBudgetService) RemoveMember(ctx context.Context, callerID, budgetID, targetID string) error {
	log := logger.FromContext(ctx)

	budget, err := s.Store.GetBudget(ctx, budgetID)
	if err != nil {
		return err
	}
	if budget.OwnerID != callerID {
		return errs.NewForbiddenError("only the owner can remove members")
	}
	if targetID == budget.OwnerID {
		return errs.NewValidationError("the owner cannot be removed")
	}
	if !budget.HasMember(targetID) {
		return errs.NewNotFoundError("user is not a member of this budget")
	}

	budget.RemoveMember(targetID)
	if err := s.Store.UpdateBudget(ctx, budget); err != nil {
		return err
	}

	// The removed user's own sessions get this too; their room
	// subscription is only dropped afterwards.
	s.Publisher.ToBudget(budgetID, realtime.EvtMemberRemoved, dto.MemberGoneEvent{
		BudgetID: budgetID,
		UserID:   targetID,
	})
	s.Rooms.LeaveRoom(targetID, realtime.BudgetRoom(budgetID))

	log.Info("member removed from shared budget", "budget_id", budgetID, "target", targetID)
	return nil
}

// AddTransaction appends to the budget's ledger. Idempotent on the
// client-supplied id: replaying a create that already committed returns
// the stored transaction without a second event.
func (s *sharedBudgetService) AddTransaction(ctx context.Context, uid, budgetID string, req dto.CreateSharedTransactionRequest) (*models.SharedTransaction, error) {
	log := logger.FromContext(ctx)

	budget, err := s.Store.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.HasMember(uid) {
		return nil, errs.NewForbiddenError("not a member of this budget")
	}

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
		if existing, err := s.Store.GetTransaction(ctx, budgetID, req.ID); err == nil {
			log.Debug("duplicate create, returning existing transaction", "tx_id", req.ID)
			return existing, nil
		} else if _, missing := err.(*errs.NotFoundError); !missing {
			return nil, err
		}
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	var addedBy models.AddedBy
	for _, m := range budget.Members {
		if m.UserID == uid {
			addedBy = models.AddedBy{UserID: uid, UserName: m.UserName}
			break
		}
	}

	tx := &models.SharedTransaction{
		ID:         id,
		BudgetID:   budgetID,
		Name:       req.Name,
		Amount:     req.Amount,
		Type:       txType,
		CategoryID: req.CategoryID,
		Date:       req.Date,
		AddedBy:    addedBy,
		CreatedAt:  time.Now(),
	}

	if err := s.Store.AddTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.Publisher.ToBudget(budgetID, realtime.EvtSharedTxCreated, dto.SharedTransactionCreatedEvent{
		BudgetID:    budgetID,
		Transaction: tx,
	})

	log.Info("shared transaction added", "budget_id", budgetID, "tx_id", tx.ID)
	return tx, nil
}

func (s *sharedBudgetService) DeleteTransaction(ctx context.Context, uid, budgetID, txID string) error {
	log := logger.FromContext(ctx)

	budget, err := s.Store.GetBudget(ctx, budgetID)
	if err != nil {
		return err
	}
	if !budget.HasMember(uid) {
		return errs.NewForbiddenError("not a member of this budget")
	}

	if _, err := s.Store.GetTransaction(ctx, budgetID, txID); err != nil {
		return err
	}
	if err := s.Store.DeleteTransaction(ctx, budgetID, txID); err != nil {
		return err
	}

	s.Publisher.ToBudget(budgetID, realtime.EvtSharedTxDeleted, dto.SharedTransactionDeletedEvent{
		BudgetID:      budgetID,
		TransactionID: txID,
	})

	log.Info("shared transaction deleted", "budget_id", budgetID, "tx_id", txID)
	return nil
}

// UpdateSavings overwrites the budget's savings scalar. Concurrent
// updates are last-write-wins; there is no version field.
func (s *sharedBudgetService) UpdateSavings(ctx context.Context, uid, budgetID string, amount float64) (*models.SharedBudget, error) {
	budget, err := s.Store.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.HasMember(uid) {
		return nil, errs.NewForbiddenError("not a member of this budget")
	}
	if amount < 0 {
		return nil, errs.NewValidationError("savings amount must not be negative")
	}

	budget.Savings = amount
	if err := s.Store.UpdateBudget(ctx, budget); err != nil {
		return nil, err
	}

	s.Publisher.ToBudget(budgetID, realtime.EvtSharedSavings, dto.SharedSavingsEvent{
		BudgetID: budgetID,
		Amount:   amount,
	})
	return budget, nil
}

func (s *sharedBudgetService) GetBudget(ctx context.Context, uid, budgetID string) (*dto.SharedBudgetDetail, error) {
	budget, err := s.Store.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.HasMember(uid) {
		return nil, errs.NewForbiddenError("not a member of this budget")
	}

	txs, err := s.Store.ListTransactions(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	return &dto.SharedBudgetDetail{SharedBudget: *budget, Transactions: txs}, nil
}

func (s *sharedBudgetService) ListBudgets(ctx context.Context, uid string) ([]*models.SharedBudget, error) {
	return s.Store.ListBudgetsForUser(ctx, uid)
}
