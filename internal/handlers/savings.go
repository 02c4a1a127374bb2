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

type SavingsService interface {
	UpdateSavings(ctx context.Context, uid string, amount float64) (*models.Savings, error)
	CreateGoal(ctx context.Context, uid string, req dto.CreateSavingsGoalRequest) (*models.SavingsGoal, error)
	UpdateGoal(ctx context.Context, uid, goalID string, req dto.UpdateSavingsGoalRequest) (*models.SavingsGoal, error)
	DeleteGoal(ctx context.Context, uid, goalID string) error
}

type savingsHandlers struct {
	ResponseHandler response.ResponseHandler
	SavingsSvc      SavingsService
}

func NewSavingsHandlers(deps *Deps) *savingsHandlers {
	return &savingsHandlers{
		ResponseHandler: deps.ResponseHandler,
		SavingsSvc:      deps.SavingsSvc,
	}
}

func (h *savingsHandlers) SavingsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Put("/", h.UpdateSavings)
	return r
}

func (h *savingsHandlers) GoalRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateGoal)
	r.Put("/{goalId}", h.UpdateGoal)
	r.Delete("/{goalId}", h.DeleteGoal)
	return r
}

func (h *savingsHandlers) UpdateSavings(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSavingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	savings, err := h.SavingsSvc.UpdateSavings(r.Context(), uid, req.Amount)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, savings)
}

func (h *savingsHandlers) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSavingsGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	goal, err := h.SavingsSvc.CreateGoal(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, goal)
}

func (h *savingsHandlers) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	goalID := chi.URLParam(r, "goalId")
	var req dto.UpdateSavingsGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	goal, err := h.SavingsSvc.UpdateGoal(r.Context(), uid, goalID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, goal)
}

func (h *savingsHandlers) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	goalID := chi.URLParam(r, "goalId")
	uid := middleware.UID(r.Context())
	if err := h.SavingsSvc.DeleteGoal(r.Context(), uid, goalID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
