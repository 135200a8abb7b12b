package expenses

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	expensedomain "expenses-app-go/internal/domain/expense"
	"expenses-app-go/internal/transport/httpserver/handler/common"
)

type expenseResponse struct {
	ID          int64             `json:"id"`
	CategoryID  int64             `json:"categoryId"`
	Category    *categoryResponse `json:"category,omitempty"`
	ScopeID     int64             `json:"scopeId"`
	Date        string            `json:"date"`
	Comment     string            `json:"comment"`
	Value       float64           `json:"value"`
	Details     string            `json:"details"`
	IsDuplicate bool              `json:"isDuplicate"`
}

func toExpenseResponse(e *expensedomain.Expense, isDuplicate bool) expenseResponse {
	response := expenseResponse{
		ID:          e.ID,
		CategoryID:  e.CategoryID,
		ScopeID:     e.ScopeID,
		Date:        e.Date.Format("2006-01-02"),
		Comment:     e.Comment,
		Value:       e.Value,
		Details:     e.Details,
		IsDuplicate: isDuplicate,
	}
	if e.Category != nil {
		response.Category = &categoryResponse{
			ID:      e.Category.ID,
			Name:    e.Category.Name,
			ScopeID: e.Category.ScopeID,
		}
	}
	return response
}

func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	scopeID, ok := h.resolveSelectedScope(w, r)
	if !ok {
		return
	}

	start, err := common.ParseDate(r.URL.Query().Get("startDate"))
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "startDate is required as YYYY-MM-DD")
		return
	}
	end, err := common.ParseDate(r.URL.Query().Get("endDate"))
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "endDate is required as YYYY-MM-DD")
		return
	}

	items, err := h.expenses.ListExpenses(r.Context(), scopeID, start, end)
	if err != nil {
		h.writeDomainError(w, err, "expenses: list")
		return
	}

	response := make([]expenseResponse, 0, len(items))
	for i := range items {
		response = append(response, toExpenseResponse(&items[i].Expense, items[i].IsDuplicate))
	}
	common.WriteJSON(w, http.StatusOK, response)
}

type expenseRequest struct {
	CategoryID int64   `json:"categoryId"`
	Date       string  `json:"date"`
	Comment    string  `json:"comment"`
	Value      float64 `json:"value"`
	Details    string  `json:"details"`
}

func (req *expenseRequest) toCreateInput(scopeID int64) (expensedomain.CreateExpenseInput, error) {
	date, err := common.ParseDate(req.Date)
	if err != nil {
		return expensedomain.CreateExpenseInput{}, err
	}
	return expensedomain.CreateExpenseInput{
		ScopeID:    scopeID,
		CategoryID: req.CategoryID,
		Date:       date,
		Comment:    req.Comment,
		Value:      req.Value,
		Details:    req.Details,
	}, nil
}

func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	scopeID, ok := h.resolveSelectedScope(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}
	input, err := req.toCreateInput(scopeID)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	created, err := h.expenses.CreateExpense(r.Context(), input)
	if err != nil {
		h.writeValidationOrDomainError(w, err, "expenses: create")
		return
	}
	common.WriteJSON(w, http.StatusCreated, toExpenseResponse(created, false))
}

func (h *Handlers) CreateExpenses(w http.ResponseWriter, r *http.Request) {
	scopeID, ok := h.resolveSelectedScope(w, r)
	if !ok {
		return
	}

	var reqs []expenseRequest
	if err := common.DecodeJSON(r, &reqs); err != nil {
		common.WriteInvalidJSON(w)
		return
	}
	if len(reqs) == 0 {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "at least one expense is required")
		return
	}

	inputs := make([]expensedomain.CreateExpenseInput, 0, len(reqs))
	for i := range reqs {
		input, err := reqs[i].toCreateInput(scopeID)
		if err != nil {
			common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		inputs = append(inputs, input)
	}

	created, err := h.expenses.CreateExpenses(r.Context(), inputs)
	if err != nil {
		h.writeValidationOrDomainError(w, err, "expenses: create batch")
		return
	}

	response := make([]expenseResponse, 0, len(created))
	for i := range created {
		response = append(response, toExpenseResponse(&created[i], false))
	}
	common.WriteJSON(w, http.StatusCreated, response)
}

func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	scopeID, ok := h.resolveSelectedScope(w, r)
	if !ok {
		return
	}

	expenseID, err := common.IDParam(r, "id")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var req expenseRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}
	date, err := common.ParseDate(req.Date)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	updated, err := h.expenses.UpdateExpense(r.Context(), expensedomain.UpdateExpenseInput{
		ID:         expenseID,
		ScopeID:    scopeID,
		CategoryID: req.CategoryID,
		Date:       date,
		Comment:    req.Comment,
		Value:      req.Value,
		Details:    req.Details,
	})
	if err != nil {
		h.writeValidationOrDomainError(w, err, "expenses: update")
		return
	}
	common.WriteJSON(w, http.StatusOK, toExpenseResponse(updated, false))
}

func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	scopeID, ok := h.resolveSelectedScope(w, r)
	if !ok {
		return
	}

	expenseID, err := common.IDParam(r, "id")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.expenses.DeleteExpense(r.Context(), scopeID, expenseID); err != nil {
		h.writeDomainError(w, err, "expenses: delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeleteExpenses(w http.ResponseWriter, r *http.Request) {
	scopeID, ok := h.resolveSelectedScope(w, r)
	if !ok {
		return
	}

	ids, err := parseIDList(r.URL.Query()["ids"])
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.expenses.DeleteExpenses(r.Context(), scopeID, ids); err != nil {
		h.writeValidationOrDomainError(w, err, "expenses: delete batch")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeValidationOrDomainError treats unwrapped plain errors from the
// service's field validation as client faults.
func (h *Handlers) writeValidationOrDomainError(w http.ResponseWriter, err error, op string) {
	if isDomainError(err) {
		h.writeDomainError(w, err, op)
		return
	}
	common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
}

func isDomainError(err error) bool {
	for _, known := range []error{
		expensedomain.ErrCategoryNotFound,
		expensedomain.ErrExpenseNotFound,
		expensedomain.ErrCategoryNotInScope,
		expensedomain.ErrCategoryNameTaken,
		expensedomain.ErrCategoryInUse,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

// parseIDList accepts both repeated ids params and one comma-separated list.
func parseIDList(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id < 1 {
				return nil, fmt.Errorf("invalid id %q", part)
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("ids query parameter is required")
	}
	return ids, nil
}
