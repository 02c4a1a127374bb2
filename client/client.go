// Package client is the Go client for the budgetsync API. Mutations that
// fail for connectivity reasons are captured in a durable offline queue
// and replayed, in order, when the connection returns; incoming broadcast
// events are merged into a local reconciliation store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mpellar/budgetsync/internal/dto"
	"github.com/mpellar/budgetsync/internal/models"
)

type Client struct {
	BaseURL string
	Token   string

	HTTPClient *http.Client
	Queue      *Queue
	State      *State
	Log        *slog.Logger
}

func New(baseURL, token string, queue *Queue, log *slog.Logger) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Queue:      queue,
		State:      NewState(log),
		Log:        log,
	}
}

// ---- personal data ----

func (c *Client) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*models.Transaction, error) {
	// The id is fixed before the request leaves the device: if the
	// response is lost and the action replays from the queue, the server
	// dedupes on it instead of committing a second record.
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	var tx models.Transaction
	if err := c.mutate(ctx, "transaction:create", http.MethodPost, "/transactions", req, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, txID string) error {
	return c.mutate(ctx, "transaction:delete", http.MethodDelete, "/transactions/"+txID, nil, nil)
}

func (c *Client) UpdateSavings(ctx context.Context, amount float64) error {
	req := dto.UpdateSavingsRequest{Amount: amount}
	return c.mutate(ctx, "savings:update", http.MethodPut, "/savings", req, nil)
}

func (c *Client) CreateSavingsGoal(ctx context.Context, req dto.CreateSavingsGoalRequest) (*models.SavingsGoal, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	var goal models.SavingsGoal
	if err := c.mutate(ctx, "goal:create", http.MethodPost, "/savings-goals", req, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (c *Client) UpdateSavingsGoal(ctx context.Context, goalID string, req dto.UpdateSavingsGoalRequest) error {
	return c.mutate(ctx, "goal:update", http.MethodPut, "/savings-goals/"+goalID, req, nil)
}

func (c *Client) DeleteSavingsGoal(ctx context.Context, goalID string) error {
	return c.mutate(ctx, "goal:delete", http.MethodDelete, "/savings-goals/"+goalID, nil, nil)
}

// ---- shared budgets ----

func (c *Client) CreateSharedBudget(ctx context.Context, name string) (*models.SharedBudget, error) {
	var budget models.SharedBudget
	req := dto.CreateSharedBudgetRequest{Name: name}
	if err := c.mutate(ctx, "sharedBudget:create", http.MethodPost, "/shared-budgets", req, &budget); err != nil {
		return nil, err
	}
	return &budget, nil
}

func (c *Client) JoinSharedBudget(ctx context.Context, inviteCode string) (*models.SharedBudget, error) {
	var budget models.SharedBudget
	req := dto.JoinSharedBudgetRequest{InviteCode: inviteCode}
	if err := c.mutate(ctx, "sharedBudget:join", http.MethodPost, "/shared-budgets/join", req, &budget); err != nil {
		return nil, err
	}
	return &budget, nil
}

func (c *Client) LeaveSharedBudget(ctx context.Context, budgetID string) error {
	return c.mutate(ctx, "sharedBudget:leave", http.MethodPost, "/shared-budgets/"+budgetID+"/leave", nil, nil)
}

func (c *Client) DeleteSharedBudget(ctx context.Context, budgetID string) error {
	return c.mutate(ctx, "sharedBudget:delete", http.MethodDelete, "/shared-budgets/"+budgetID, nil, nil)
}

func (c *Client) AddSharedTransaction(ctx context.Context, budgetID string, req dto.CreateSharedTransactionRequest) (*models.SharedTransaction, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	var tx models.SharedTransaction
	path := "/shared-budgets/" + budgetID + "/transactions"
	if err := c.mutate(ctx, "sharedTransaction:create", http.MethodPost, path, req, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (c *Client) DeleteSharedTransaction(ctx context.Context, budgetID, txID string) error {
	path := "/shared-budgets/" + budgetID + "/transactions/" + txID
	return c.mutate(ctx, "sharedTransaction:delete", http.MethodDelete, path, nil, nil)
}

func (c *Client) UpdateSharedSavings(ctx context.Context, budgetID string, amount float64) error {
	req := dto.UpdateSavingsRequest{Amount: amount}
	return c.mutate(ctx, "sharedSavings:update", http.MethodPut, "/shared-budgets/"+budgetID+"/savings", req, nil)
}

func (c *Client) RemoveSharedMember(ctx context.Context, budgetID, userID string) error {
	path := "/shared-budgets/" + budgetID + "/members/" + userID
	return c.mutate(ctx, "sharedBudget:removeMember", http.MethodDelete, path, nil, nil)
}

// Sync pulls the authoritative full state and resets the local store
// from it. Never queued: a failed sync just happens again later.
func (c *Client) Sync(ctx context.Context) error {
	var state dto.SyncResponse
	if err := c.do(ctx, http.MethodGet, "/sync", nil, &state); err != nil {
		return err
	}
	c.State.LoadSync(&state)
	return nil
}

// mutate performs a request and, on connectivity failure, enqueues it for
// replay and reports ErrSavedOffline. Definitive rejections pass through.
func (c *Client) mutate(ctx context.Context, actionType, method, path string, body, out any) error {
	err := c.do(ctx, method, path, body, out)
	if err == nil {
		return nil
	}

	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		return err
	}

	var raw json.RawMessage
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	if qerr := c.Queue.Enqueue(PendingAction{
		Type:     actionType,
		Endpoint: path,
		Method:   method,
		Body:     raw,
	}); qerr != nil {
		c.Log.Error("failed to persist offline action", "type", actionType, "error", qerr)
		return qerr
	}

	c.Log.Info("action saved offline", "type", actionType, "pending", c.Queue.Len())
	return ErrSavedOffline
}

// ReplayQueue drains the offline queue strictly in order. A definitive
// rejection drops that entry and continues; a connectivity failure stops
// and preserves the remainder for the next attempt.
func (c *Client) ReplayQueue(ctx context.Context) error {
	for {
		action, ok := c.Queue.Peek()
		if !ok {
			return nil
		}

		var body any
		if len(action.Body) > 0 {
			body = action.Body
		}
		err := c.do(ctx, action.Method, action.Endpoint, body, nil)
		if err == nil {
			if err := c.Queue.Pop(); err != nil {
				return err
			}
			continue
		}

		if apiErr, ok := err.(*APIError); ok && apiErr.Definitive() {
			c.Log.Warn("queued action rejected, dropping",
				"type", action.Type,
				"endpoint", action.Endpoint,
				"error", apiErr)
			if err := c.Queue.Drop(apiErr.Message); err != nil {
				return err
			}
			continue
		}

		c.Log.Info("replay interrupted, keeping remaining actions",
			"pending", c.Queue.Len(), "error", err)
		return err
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if isConnectivity(err) {
			return &ConnectivityError{Err: err}
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Code: apiErr.Code, Message: apiErr.Message}
	}

	if out == nil {
		return nil
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}
