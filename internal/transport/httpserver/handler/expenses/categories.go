package expenses

import (
	"net/http"
	"strings"

	expensedomain "expenses-app-go/internal/domain/expense"
	"expenses-app-go/internal/transport/httpserver/handler/common"
)

type categoryResponse struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	ScopeID  int64             `json:"scopeId"`
	Expenses []expenseResponse `json:"expenses,omitempty"`
}

func toCategoryResponse(c *expensedomain.Category) categoryResponse {
	response := categoryResponse{ID: c.ID, Name: c.Name, ScopeID: c.ScopeID}
	for i := range c.Expenses {
		response.Expenses = append(response.Expenses, toExpenseResponse(&c.Expenses[i], false))
	}
	return response
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	scopeID, ok := h.resolveSelectedScope(w, r)
	if !ok {
		return
	}

	includeExpenses := r.URL.Query().Get("includeExpenses") == "true"
	categories, err := h.expenses.ListCategories(r.Context(), scopeID, includeExpenses)
	if err != nil {
		h.writeDomainError(w, err, "categories: list")
		return
	}

	response := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		response = append(response, toCategoryResponse(&categories[i]))
	}
	common.WriteJSON(w, http.StatusOK, response)
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	scopeID, ok := h.resolveSelectedScope(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "category name is required")
		return
	}

	category, err := h.expenses.CreateCategory(r.Context(), scopeID, name)
	if err != nil {
		h.writeDomainError(w, err, "categories: create")
		return
	}
	common.WriteJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	scopeID, ok := h.resolveSelectedScope(w, r)
	if !ok {
		return
	}

	categoryID, err := common.IDParam(r, "id")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var req categoryRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "category name is required")
		return
	}

	category, err := h.expenses.UpdateCategory(r.Context(), scopeID, categoryID, name)
	if err != nil {
		h.writeDomainError(w, err, "categories: update")
		return
	}
	common.WriteJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	scopeID, ok := h.resolveSelectedScope(w, r)
	if !ok {
		return
	}

	categoryID, err := common.IDParam(r, "id")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.expenses.DeleteCategory(r.Context(), scopeID, categoryID); err != nil {
		h.writeDomainError(w, err, "categories: delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
