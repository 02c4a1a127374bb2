package client

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mpellar/budgetsync/internal/dto"
	"github.com/mpellar/budgetsync/internal/models"
	"github.com/mpellar/budgetsync/internal/realtime"
)

// State is the client's local source of truth. It is populated wholesale
// by a full sync and patched afterwards by broadcast events, applying the
// same idempotent merge rules regardless of whether a change originated
// locally or on another member's device.
type State struct {
	mu  sync.RWMutex
	log *slog.Logger

	transactions map[string]models.Transaction
	savings      models.Savings
	goals        map[string]models.SavingsGoal
	budgets      map[string]*dto.SharedBudgetDetail

	// activeBudget mirrors one entry of budgets so the detail view and
	// the list never diverge.
	activeBudgetID string
}

func NewState(log *slog.Logger) *State {
	return &State{
		log:          log,
		transactions: make(map[string]models.Transaction),
		goals:        make(map[string]models.SavingsGoal),
		budgets:      make(map[string]*dto.SharedBudgetDetail),
	}
}

// LoadSync replaces every collection with the authoritative payload.
func (s *State) LoadSync(resp *dto.SyncResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = make(map[string]models.Transaction, len(resp.Transactions))
	for _, tx := range resp.Transactions {
		s.transactions[tx.ID] = tx
	}

	if resp.Savings != nil {
		s.savings = *resp.Savings
	}

	s.goals = make(map[string]models.SavingsGoal, len(resp.SavingsGoals))
	for _, g := range resp.SavingsGoals {
		s.goals[g.ID] = g
	}

	s.budgets = make(map[string]*dto.SharedBudgetDetail, len(resp.SharedBudgets))
	for i := range resp.SharedBudgets {
		b := resp.SharedBudgets[i]
		s.budgets[b.ID] = &b
	}

	if s.activeBudgetID != "" {
		if _, still := s.budgets[s.activeBudgetID]; !still {
			s.activeBudgetID = ""
		}
	}
}

// SetActiveBudget selects which budget the detail view shows.
func (s *State) SetActiveBudget(budgetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeBudgetID = budgetID
}

// ActiveBudget returns a copy of the selected budget, or nil.
func (s *State) ActiveBudget() *dto.SharedBudgetDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.budgets[s.activeBudgetID]
	if !ok {
		return nil
	}
	out := *b
	out.Transactions = append([]models.SharedTransaction(nil), b.Transactions...)
	return &out
}

func (s *State) Transactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		out = append(out, tx)
	}
	return out
}

func (s *State) Savings() models.Savings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.savings
}

func (s *State) Goals() []models.SavingsGoal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SavingsGoal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, g)
	}
	return out
}

func (s *State) Budgets() []*dto.SharedBudgetDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*dto.SharedBudgetDetail, 0, len(s.budgets))
	for _, b := range s.budgets {
		copied := *b
		out = append(out, &copied)
	}
	return out
}

func (s *State) Budget(budgetID string) (*dto.SharedBudgetDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[budgetID]
	if !ok {
		return nil, false
	}
	copied := *b
	return &copied, true
}

// Apply merges one raw broadcast frame. Malformed or unrecognized frames
// are logged and dropped; Apply never panics the connection.
func (s *State) Apply(msg []byte) {
	var evt struct {
		Name    string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.log.Warn("dropping malformed event frame", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch evt.Name {
	case realtime.EvtTransactionCreated, realtime.EvtTransactionUpdated:
		err = s.mergeTransaction(evt.Name, evt.Payload)
	case realtime.EvtTransactionDeleted:
		err = s.removeTransaction(evt.Payload)
	case realtime.EvtSavingsUpdated:
		err = s.mergeSavings(evt.Payload)
	case realtime.EvtGoalCreated, realtime.EvtGoalUpdated:
		err = s.mergeGoal(evt.Name, evt.Payload)
	case realtime.EvtGoalDeleted:
		err = s.removeGoal(evt.Payload)
	case realtime.EvtSharedBudgetMade:
		err = s.mergeBudget(evt.Payload)
	case realtime.EvtSharedBudgetGone:
		err = s.removeBudget(evt.Payload)
	case realtime.EvtSharedTxCreated:
		err = s.mergeSharedTransaction(evt.Payload)
	case realtime.EvtSharedTxDeleted:
		err = s.removeSharedTransaction(evt.Payload)
	case realtime.EvtSharedSavings:
		err = s.mergeSharedSavings(evt.Payload)
	case realtime.EvtMemberJoined:
		err = s.mergeMember(evt.Payload)
	case realtime.EvtMemberLeft, realtime.EvtMemberRemoved:
		err = s.removeMember(evt.Payload)
	default:
		s.log.Warn("dropping unrecognized event", "event", evt.Name)
		return
	}

	if err != nil {
		s.log.Warn("dropping undecodable event", "event", evt.Name, "error", err)
	}
}

func (s *State) mergeTransaction(name string, payload json.RawMessage) error {
	var tx models.Transaction
	if err := json.Unmarshal(payload, &tx); err != nil {
		return err
	}
	if name == realtime.EvtTransactionUpdated {
		// Update for data we do not hold: skip rather than insert a
		// partial record.
		if _, ok := s.transactions[tx.ID]; !ok {
			return nil
		}
	}
	s.transactions[tx.ID] = tx
	return nil
}

func (s *State) removeTransaction(payload json.RawMessage) error {
	var evt dto.TransactionDeletedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return err
	}
	delete(s.transactions, evt.ID)
	return nil
}

func (s *State) mergeSavings(payload json.RawMessage) error {
	var evt dto.SavingsEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return err
	}
	s.savings.Amount = evt.Amount
	return nil
}

func (s *State) mergeGoal(name string, payload json.RawMessage) error {
	var goal models.SavingsGoal
	if err := json.Unmarshal(payload, &goal); err != nil {
		return err
	}
	if name == realtime.EvtGoalUpdated {
		if _, ok := s.goals[goal.ID]; !ok {
			return nil
		}
	}
	s.goals[goal.ID] = goal
	return nil
}

func (s *State) removeGoal(payload json.RawMessage) error {
	var evt dto.TransactionDeletedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return err
	}
	delete(s.goals, evt.ID)
	return nil
}

func (s *State) mergeBudget(payload json.RawMessage) error {
	var budget models.SharedBudget
	if err := json.Unmarshal(payload, &budget); err != nil {
		return err
	}
	if existing, ok := s.budgets[budget.ID]; ok {
		existing.SharedBudget = budget
		return nil
	}
	s.budgets[budget.ID] = &dto.SharedBudgetDetail{SharedBudget: budget}
	return nil
}

func (s *State) removeBudget(payload json.RawMessage) error {
	var evt dto.BudgetDeletedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return err
	}
	delete(s.budgets, evt.BudgetID)
	if s.activeBudgetID == evt.BudgetID {
		s.activeBudgetID = ""
	}
	return nil
}

func (s *State) mergeSharedTransaction(payload json.RawMessage) error {
	var evt dto.SharedTransactionCreatedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return err
	}
	if evt.Transaction == nil {
		return nil
	}
	budget, ok := s.budgets[evt.BudgetID]
	if !ok {
		// Event for a budget we have not synced yet; the next full
		// sync brings it in whole.
		return nil
	}
	for _, tx := range budget.Transactions {
		if tx.ID == evt.Transaction.ID {
			// Duplicate delivery is a no-op.
			return nil
		}
	}
	budget.Transactions = append(budget.Transactions, *evt.Transaction)
	return nil
}

func (s *State) removeSharedTransaction(payload json.RawMessage) error {
	var evt dto.SharedTransactionDeletedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return err
	}
	budget, ok := s.budgets[evt.BudgetID]
	if !ok {
		return nil
	}
	for i, tx := range budget.Transactions {
		if tx.ID == evt.TransactionID {
			budget.Transactions = append(budget.Transactions[:i], budget.Transactions[i+1:]...)
			break
		}
	}
	return nil
}

func (s *State) mergeSharedSavings(payload json.RawMessage) error {
	var evt dto.SharedSavingsEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return err
	}
	if budget, ok := s.budgets[evt.BudgetID]; ok {
		budget.Savings = evt.Amount
	}
	return nil
}

func (s *State) mergeMember(payload json.RawMessage) error {
	var evt dto.MemberJoinedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return err
	}
	if evt.Member == nil {
		return nil
	}
	budget, ok := s.budgets[evt.BudgetID]
	if !ok {
		return nil
	}
	for _, m := range budget.Members {
		if m.UserID == evt.Member.UserID {
			return nil
		}
	}
	budget.Members = append(budget.Members, *evt.Member)
	budget.MemberIDs = append(budget.MemberIDs, evt.Member.UserID)
	return nil
}

func (s *State) removeMember(payload json.RawMessage) error {
	var evt dto.MemberGoneEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return err
	}
	if budget, ok := s.budgets[evt.BudgetID]; ok {
		budget.RemoveMember(evt.UserID)
	}
	return nil
}
