package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mpellar/budgetsync/internal/handlers"
	"github.com/mpellar/budgetsync/internal/middleware"
)

func NewRouter(deps *handlers.Deps, allowedOrigins string) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)

	ush := handlers.NewUserHandlers(deps)
	sbh := handlers.NewSharedBudgetHandlers(deps)
	txh := handlers.NewTransactionHandlers(deps)
	svh := handlers.NewSavingsHandlers(deps)
	syh := handlers.NewSyncHandlers(deps)
	wsh := handlers.NewWSHandlers(deps, allowedOrigins)

	// Websocket handshake authenticates its own token; everything else
	// goes through the bearer middleware.
	r.Get("/ws", wsh.Serve)

	r.Group(func(r chi.Router) {
		r.Use(deps.Middleware.FirebaseAuth)

		r.Mount("/users", ush.UserRoutes())
		r.Mount("/shared-budgets", sbh.SharedBudgetRoutes())
		r.Mount("/transactions", txh.TransactionRoutes())
		r.Mount("/savings", svh.SavingsRoutes())
		r.Mount("/savings-goals", svh.GoalRoutes())
		r.Mount("/sync", syh.SyncRoutes())
	})

	return r
}
