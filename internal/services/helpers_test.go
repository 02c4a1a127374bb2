package services

import (
	"context"
	"sync"

	"github.com/mpellar/budgetsync/internal/errs"
	"github.com/mpellar/budgetsync/internal/models"
)

// fakeBudgetStore is an in-memory sharedBudgetSBStore.
type fakeBudgetStore struct {
	mu      sync.Mutex
	budgets map[string]*models.SharedBudget
	txs     map[string]map[string]*models.SharedTransaction // budgetID → txID → tx
	err     error
}

func newFakeBudgetStore() *fakeBudgetStore {
	return &fakeBudgetStore{
		budgets: make(map[string]*models.SharedBudget),
		txs:     make(map[string]map[string]*models.SharedTransaction),
	}
}

func (f *fakeBudgetStore) CreateBudget(_ context.Context, budget *models.SharedBudget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	copied := *budget
	f.budgets[budget.ID] = &copied
	return nil
}

func (f *fakeBudgetStore) GetBudget(_ context.Context, budgetID string) (*models.SharedBudget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.budgets[budgetID]
	if !ok {
		return nil, errs.NewNotFoundError("shared budget not found")
	}
	copied := *b
	copied.Members = append([]models.Member(nil), b.Members...)
	copied.MemberIDs = append([]string(nil), b.MemberIDs...)
	return &copied, nil
}

func (f *fakeBudgetStore) GetBudgetByInviteCode(_ context.Context, code string) (*models.SharedBudget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.budgets {
		if b.InviteCode == code {
			copied := *b
			copied.Members = append([]models.Member(nil), b.Members...)
			copied.MemberIDs = append([]string(nil), b.MemberIDs...)
			return &copied, nil
		}
	}
	return nil, errs.NewNotFoundError("no budget matches that invite code")
}

func (f *fakeBudgetStore) UpdateBudget(_ context.Context, budget *models.SharedBudget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *budget
	f.budgets[budget.ID] = &copied
	return nil
}

func (f *fakeBudgetStore) DeleteBudget(_ context.Context, budgetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.budgets, budgetID)
	delete(f.txs, budgetID)
	return nil
}

func (f *fakeBudgetStore) ListBudgetsForUser(_ context.Context, userID string) ([]*models.SharedBudget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.SharedBudget
	for _, b := range f.budgets {
		if b.HasMember(userID) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBudgetStore) AddTransaction(_ context.Context, tx *models.SharedTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.txs[tx.BudgetID] == nil {
		f.txs[tx.BudgetID] = make(map[string]*models.SharedTransaction)
	}
	copied := *tx
	f.txs[tx.BudgetID][tx.ID] = &copied
	return nil
}

func (f *fakeBudgetStore) GetTransaction(_ context.Context, budgetID, txID string) (*models.SharedTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[budgetID][txID]
	if !ok {
		return nil, errs.NewNotFoundError("shared transaction not found")
	}
	copied := *tx
	return &copied, nil
}

func (f *fakeBudgetStore) DeleteTransaction(_ context.Context, budgetID, txID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.txs[budgetID], txID)
	return nil
}

func (f *fakeBudgetStore) ListTransactions(_ context.Context, budgetID string) ([]models.SharedTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SharedTransaction
	for _, tx := range f.txs[budgetID] {
		out = append(out, *tx)
	}
	return out, nil
}

type stubUserStore struct {
	users map[string]*models.User
}

func newStubUserStore(users ...*models.User) *stubUserStore {
	s := &stubUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		s.users[u.UID] = u
	}
	return s
}

func (s *stubUserStore) GetUser(_ context.Context, uid string) (*models.User, error) {
	u, ok := s.users[uid]
	if !ok {
		return nil, errs.NewNotFoundError("user not found")
	}
	return u, nil
}

// recordingPublisher captures every broadcast in emission order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Room    string // "user:<id>" or "budget:<id>"
	Event   string
	Payload any
}

func (p *recordingPublisher) ToUser(userID, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Room: "user:" + userID, Event: event, Payload: payload})
}

func (p *recordingPublisher) ToBudget(budgetID, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Room: "budget:" + budgetID, Event: event, Payload: payload})
}

func (p *recordingPublisher) byEvent(name string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Event == name {
			out = append(out, e)
		}
	}
	return out
}

// recordingRooms captures membership-driven subscription changes.
type recordingRooms struct {
	mu     sync.Mutex
	joins  []string // "userID room"
	leaves []string
}

func (r *recordingRooms) JoinRoom(userID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joins = append(r.joins, userID+" "+room)
}

func (r *recordingRooms) LeaveRoom(userID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaves = append(r.leaves, userID+" "+room)
}
