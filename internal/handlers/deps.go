package handlers

import (
	"log/slog"

	"github.com/mpellar/budgetsync/internal/middleware"
	"github.com/mpellar/budgetsync/internal/realtime"
	"github.com/mpellar/budgetsync/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Middleware      *middleware.Middleware
	Registry        *realtime.Registry

	UserSvc         UserService
	SharedBudgetSvc SharedBudgetService
	TransactionSvc  TransactionService
	SavingsSvc      SavingsService
	SyncSvc         SyncService
}
