package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mpellar/budgetsync/internal/dto"
	"github.com/mpellar/budgetsync/internal/middleware"
	"github.com/mpellar/budgetsync/internal/response"
)

type SyncService interface {
	FullSync(ctx context.Context, uid string) (*dto.SyncResponse, error)
}

type syncHandlers struct {
	ResponseHandler response.ResponseHandler
	SyncSvc         SyncService
}

func NewSyncHandlers(deps *Deps) *syncHandlers {
	return &syncHandlers{
		ResponseHandler: deps.ResponseHandler,
		SyncSvc:         deps.SyncSvc,
	}
}

func (h *syncHandlers) SyncRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.FullSync)
	return r
}

// FullSync returns the caller's complete state. Clients call this once
// after every (re)connect; incremental events only patch what this
// endpoint established.
func (h *syncHandlers) FullSync(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	state, err := h.SyncSvc.FullSync(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, state)
}
