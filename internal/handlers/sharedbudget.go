package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mpellar/budgetsync/internal/dto"
	"github.com/mpellar/budgetsync/internal/errs"
	"github.com/mpellar/budgetsync/internal/middleware"
	"github.com/mpellar/budgetsync/internal/models"
	"github.com/mpellar/budgetsync/internal/response"
)

type SharedBudgetService interface {
	CreateBudget(ctx context.Context, uid, name string) (*models.SharedBudget, error)
	JoinBudget(ctx context.Context, uid, inviteCode string) (*models.SharedBudget, error)
	LeaveBudget(ctx context.Context, uid, budgetID string) error
	DeleteBudget(ctx context.Context, uid, budgetID string) error
	RemoveMember(ctx context.Context, callerID, budgetID, targetID string) error
	AddTransaction(ctx context.Context, uid, budgetID string, req dto.CreateSharedTransactionRequest) (*models.SharedTransaction, error)
	DeleteTransaction(ctx context.Context, uid, budgetID, txID string) error
	UpdateSavings(ctx context.Context, uid, budgetID string, amount float64) (*models.SharedBudget, error)
	GetBudget(ctx context.Context, uid, budgetID string) (*dto.SharedBudgetDetail, error)
	ListBudgets(ctx context.Context, uid string) ([]*models.SharedBudget, error)
}

type sharedBudgetHandlers struct {
	ResponseHandler response.ResponseHandler
	BudgetSvc       SharedBudgetService
}

func NewSharedBudgetHandlers(deps *Deps) *sharedBudgetHandlers {
	return &sharedBudgetHandlers{
		ResponseHandler: deps.ResponseHandler,
		BudgetSvc:       deps.SharedBudgetSvc,
	}
}

func (h *sharedBudgetHandlers) SharedBudgetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListBudgets)
	r.Post("/", h.CreateBudget)
	r.Post("/join", h.JoinBudget) // must be before /{budgetId}
	r.Get("/{budgetId}", h.GetBudget)
	r.Delete("/{budgetId}", h.DeleteBudget)
	r.Post("/{budgetId}/leave", h.LeaveBudget)
	r.Post("/{budgetId}/transactions", h.AddTransaction)
	r.Delete("/{budgetId}/transactions/{transactionId}", h.DeleteTransaction)
	r.Put("/{budgetId}/savings", h.UpdateSavings)
	r.Delete("/{budgetId}/members/{userId}", h.RemoveMember)
	return r
}

func (h *sharedBudgetHandlers) ListBudgets(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	budgets, err := h.BudgetSvc.ListBudgets(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, budgets)
}

func (h *sharedBudgetHandlers) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSharedBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	budget, err := h.BudgetSvc.CreateBudget(r.Context(), uid, req.Name)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, budget)
}

func (h *sharedBudgetHandlers) JoinBudget(w http.ResponseWriter, r *http.Request) {
	var req dto.JoinSharedBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	budget, err := h.BudgetSvc.JoinBudget(r.Context(), uid, req.InviteCode)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, budget)
}

func (h *sharedBudgetHandlers) GetBudget(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetId")
	uid := middleware.UID(r.Context())
	detail, err := h.BudgetSvc.GetBudget(r.Context(), uid, budgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, detail)
}

func (h *sharedBudgetHandlers) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetId")
	uid := middleware.UID(r.Context())
	if err := h.BudgetSvc.DeleteBudget(r.Context(), uid, budgetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *sharedBudgetHandlers) LeaveBudget(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetId")
	uid := middleware.UID(r.Context())
	if err := h.BudgetSvc.LeaveBudget(r.Context(), uid, budgetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *sharedBudgetHandlers) AddTransaction(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetId")
	var req dto.CreateSharedTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	tx, err := h.BudgetSvc.AddTransaction(r.Context(), uid, budgetID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, tx)
}

func (h *sharedBudgetHandlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetId")
	txID := chi.URLParam(r, "transactionId")
	uid := middleware.UID(r.Context())
	if err := h.BudgetSvc.DeleteTransaction(r.Context(), uid, budgetID, txID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *sharedBudgetHandlers) UpdateSavings(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetId")
	var req dto.UpdateSavingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	budget, err := h.BudgetSvc.UpdateSavings(r.Context(), uid, budgetID, req.Amount)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, budget)
}

func (h *sharedBudgetHandlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetId")
	targetID := chi.URLParam(r, "userId")
	uid := middleware.UID(r.Context())
	if err := h.BudgetSvc.RemoveMember(r.Context(), uid, budgetID, targetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
