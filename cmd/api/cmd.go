package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/mpellar/budgetsync/internal/bootstrap"
	"github.com/mpellar/budgetsync/internal/config"
	"github.com/mpellar/budgetsync/internal/handlers"
	"github.com/mpellar/budgetsync/internal/middleware"
	"github.com/mpellar/budgetsync/internal/realtime"
	"github.com/mpellar/budgetsync/internal/response"
	"github.com/mpellar/budgetsync/internal/router"
	"github.com/mpellar/budgetsync/internal/services"
	"github.com/mpellar/budgetsync/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// realtime
	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(bs.Log, registry)

	// stores
	ustore := store.NewUserStore(bs.Firestore)
	tstore := store.NewTransactionStore(bs.Firestore)
	sbstore := store.NewSharedBudgetStore(bs.Firestore)
	svstore := store.NewSavingsStore(bs.Firestore)

	// services
	userv := services.NewUserService(ustore)
	tserv := services.NewTransactionService(tstore, broadcaster)
	sbserv := services.NewSharedBudgetService(sbstore, ustore, broadcaster, registry)
	svserv := services.NewSavingsService(svstore, broadcaster)
	syserv := services.NewSyncService(sbstore, tstore, svstore)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Middleware = middleware.NewMiddleware(bs.Firebase)
	deps.Registry = registry
	deps.UserSvc = userv
	deps.SharedBudgetSvc = sbserv
	deps.TransactionSvc = tserv
	deps.SavingsSvc = svserv
	deps.SyncSvc = syserv

	// router
	r := router.NewRouter(deps, cfg.AllowedOrigins)
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
