package handler

import (
	expensedomain "expenses-app-go/internal/domain/expense"
	scopedomain "expenses-app-go/internal/domain/scope"
	userdomain "expenses-app-go/internal/domain/user"
	"expenses-app-go/internal/importer"
	"expenses-app-go/internal/transport/httpserver/handler/common"
	"expenses-app-go/internal/transport/httpserver/handler/expenses"
	"expenses-app-go/internal/transport/httpserver/handler/imports"
	"expenses-app-go/internal/transport/httpserver/handler/scopes"
	"expenses-app-go/internal/transport/httpserver/handler/users"
	"expenses-app-go/pkg/logger"
)

type Handlers struct {
	Common   *common.Handlers
	Scopes   *scopes.Handlers
	Expenses *expenses.Handlers
	Users    *users.Handlers
	Imports  *imports.Handlers
}

func New(
	scopeService *scopedomain.Service,
	expenseService *expensedomain.Service,
	userService *userdomain.Service,
	fileImporter importer.FileImporter,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Common:   common.New(),
		Scopes:   scopes.New(scopeService, userService, log),
		Expenses: expenses.New(expenseService, userService, log),
		Users:    users.New(userService, scopeService, log),
		Imports:  imports.New(fileImporter, log),
	}
}
