package expenses

import (
	"errors"
	"net/http"

	expensedomain "expenses-app-go/internal/domain/expense"
	userdomain "expenses-app-go/internal/domain/user"
	"expenses-app-go/internal/transport/httpserver/handler/common"
	"expenses-app-go/internal/transport/httpserver/middleware"
	"expenses-app-go/pkg/logger"
)

// Handlers serves categories and expenses. Every operation runs against the
// caller's selected scope; there is no scope id in these routes.
type Handlers struct {
	expenses *expensedomain.Service
	users    *userdomain.Service
	log      logger.Logger
}

func New(expenses *expensedomain.Service, users *userdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{expenses: expenses, users: users, log: log}
}

// resolveSelectedScope maps the caller's identity to their selected scope id.
// A missing user row and a missing selection are distinct failures; clients
// use the code to decide between onboarding and scope selection.
func (h *Handlers) resolveSelectedScope(w http.ResponseWriter, r *http.Request) (int64, bool) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return 0, false
	}

	caller, err := h.users.Get(r.Context(), ident.Subject)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			common.WriteError(w, http.StatusNotFound, "user_not_recognized", "user not recognized")
			return 0, false
		}
		h.log.InternalError("expenses: resolve caller", err)
		common.WriteInternalError(w)
		return 0, false
	}

	if caller.SelectedScopeID == nil {
		common.WriteError(w, http.StatusNotFound, "no_selected_scope", "no scope selected")
		return 0, false
	}
	return *caller.SelectedScopeID, true
}

func (h *Handlers) writeDomainError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, expensedomain.ErrCategoryNotFound):
		common.WriteError(w, http.StatusNotFound, "category_not_found", "category not found")
	case errors.Is(err, expensedomain.ErrExpenseNotFound):
		common.WriteError(w, http.StatusNotFound, "expense_not_found", "expense not found")
	case errors.Is(err, expensedomain.ErrCategoryNotInScope):
		common.WriteError(w, http.StatusForbidden, "forbidden", "category does not belong to the selected scope")
	case errors.Is(err, expensedomain.ErrCategoryNameTaken):
		common.WriteError(w, http.StatusConflict, "category_name_taken", "a category with this name already exists")
	case errors.Is(err, expensedomain.ErrCategoryInUse):
		common.WriteError(w, http.StatusConflict, "category_in_use", "category still has expenses")
	default:
		h.log.InternalError(op, err)
		common.WriteInternalError(w)
	}
}
