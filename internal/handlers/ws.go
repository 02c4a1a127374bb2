package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mpellar/budgetsync/internal/middleware"
	"github.com/mpellar/budgetsync/internal/models"
	"github.com/mpellar/budgetsync/internal/realtime"
)

type budgetLister interface {
	ListBudgets(ctx context.Context, uid string) ([]*models.SharedBudget, error)
}

type wsHandlers struct {
	Log      *slog.Logger
	Mw       *middleware.Middleware
	Registry *realtime.Registry
	Budgets  budgetLister
	upgrader websocket.Upgrader
}

func NewWSHandlers(deps *Deps, allowedOrigins string) *wsHandlers {
	origins := strings.Split(allowedOrigins, ",")
	return &wsHandlers{
		Log:      deps.Log,
		Mw:       deps.Middleware,
		Registry: deps.Registry,
		Budgets:  deps.SharedBudgetSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser client; the token is the gate.
			return true
		}
		for _, a := range allowed {
			a = strings.TrimSpace(a)
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Serve authenticates the handshake, subscribes the connection to its
// personal room and one room per current budget membership, and runs the
// pumps until disconnect. Subscriptions are released on the way out;
// nothing survives the connection.
func (h *wsHandlers) Serve(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set headers on a websocket upgrade, so the token
	// arrives as a query parameter; header is accepted for other clients.
	token := r.URL.Query().Get("token")
	if token == "" {
		parts := strings.Fields(r.Header.Get("Authorization"))
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = parts[1]
		}
	}
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	uid, _, err := h.Mw.VerifyToken(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	budgets, err := h.Budgets.ListBudgets(r.Context(), uid)
	if err != nil {
		h.Log.Error("failed to load memberships for handshake", "uid", uid, "error", err)
		http.Error(w, "could not establish session", http.StatusInternalServerError)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response.
		h.Log.Warn("websocket upgrade failed", "error", err)
		return
	}

	rooms := make([]string, 0, len(budgets)+1)
	rooms = append(rooms, realtime.UserRoom(uid))
	for _, b := range budgets {
		rooms = append(rooms, realtime.BudgetRoom(b.ID))
	}

	conn := realtime.NewConn(uuid.NewString(), uid, ws)
	h.Registry.Register(conn, rooms)

	log := h.Log.With("conn_id", conn.ID, "uid", uid)
	log.Info("realtime session opened", "rooms", len(rooms))

	go conn.WritePump(log)
	conn.ReadPump(log)

	h.Registry.Unregister(conn)
	conn.Close()
	log.Info("realtime session closed")
}
