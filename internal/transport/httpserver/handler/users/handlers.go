package users

import (
	"errors"
	"net/http"
	"strings"

	scopedomain "expenses-app-go/internal/domain/scope"
	userdomain "expenses-app-go/internal/domain/user"
	"expenses-app-go/internal/identity"
	"expenses-app-go/internal/transport/httpserver/handler/common"
	"expenses-app-go/internal/transport/httpserver/middleware"
	"expenses-app-go/pkg/logger"
)

type Handlers struct {
	users  *userdomain.Service
	scopes *scopedomain.Service
	log    logger.Logger
}

func New(users *userdomain.Service, scopes *scopedomain.Service, log logger.Logger) *Handlers {
	return &Handlers{users: users, scopes: scopes, log: log}
}

type userResponse struct {
	ID              string `json:"id"`
	UserName        string `json:"userName"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	SelectedScopeID *int64 `json:"selectedScopeId"`
}

func toUserResponse(u *userdomain.User) userResponse {
	return userResponse{
		ID:              u.ID,
		UserName:        u.UserName,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		SelectedScopeID: u.SelectedScopeID,
	}
}

func (h *Handlers) resolveCaller(w http.ResponseWriter, r *http.Request) (*userdomain.User, identity.Identity, bool) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return nil, identity.Identity{}, false
	}

	caller, err := h.users.Get(r.Context(), ident.Subject)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			common.WriteError(w, http.StatusNotFound, "user_not_recognized", "user not recognized")
			return nil, identity.Identity{}, false
		}
		h.log.InternalError("users: resolve caller", err)
		common.WriteInternalError(w)
		return nil, identity.Identity{}, false
	}
	return caller, ident, true
}

func (h *Handlers) Details(w http.ResponseWriter, r *http.Request) {
	caller, _, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}
	common.WriteJSON(w, http.StatusOK, toUserResponse(caller))
}

type updateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	caller, _, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), userdomain.UpdateProfileInput{
		UserID:    caller.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		h.writeUserError(w, err, "users: update profile")
		return
	}
	common.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

type selectedScopeResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"ownerId"`
}

// SelectedScope returns the caller's current selection, or a JSON null when
// nothing is selected yet.
func (h *Handlers) SelectedScope(w http.ResponseWriter, r *http.Request) {
	caller, _, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	if caller.SelectedScopeID == nil {
		common.WriteJSON(w, http.StatusOK, nil)
		return
	}

	s, err := h.scopes.SelectedScope(r.Context(), *caller.SelectedScopeID)
	if err != nil {
		if errors.Is(err, scopedomain.ErrScopeNotFound) {
			// Selection points at a scope deleted since; report no selection.
			common.WriteJSON(w, http.StatusOK, nil)
			return
		}
		h.log.InternalError("users: selected scope", err)
		common.WriteInternalError(w)
		return
	}
	common.WriteJSON(w, http.StatusOK, selectedScopeResponse{ID: s.ID, Name: s.Name, OwnerID: s.OwnerID})
}

type setSelectedScopeRequest struct {
	ID int64 `json:"id"`
}

func (h *Handlers) SetSelectedScope(w http.ResponseWriter, r *http.Request) {
	caller, _, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	var req setSelectedScopeRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}
	if req.ID < 1 {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "scope id is required")
		return
	}

	if err := h.users.SetSelectedScope(r.Context(), caller.ID, req.ID); err != nil {
		h.writeUserError(w, err, "users: set selected scope")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type directoryUserResponse struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	IsMember bool   `json:"isMember"`
}

// List searches the identity provider's directory and annotates each result
// with membership of the caller's selected scope.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	caller, ident, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	found, err := h.users.Search(r.Context(), ident.Token, query)
	if err != nil {
		if errors.Is(err, identity.ErrDirectoryUnavailable) {
			h.log.BusinessError("users: directory search", err)
			common.WriteError(w, http.StatusBadGateway, "directory_unavailable", "user directory is unavailable")
			return
		}
		h.log.InternalError("users: directory search", err)
		common.WriteInternalError(w)
		return
	}

	response := make([]directoryUserResponse, 0, len(found))
	for _, u := range found {
		member := false
		if caller.SelectedScopeID != nil {
			member, err = h.scopes.IsMember(r.Context(), *caller.SelectedScopeID, u.ID)
			if err != nil {
				h.log.InternalError("users: membership lookup", err)
				common.WriteInternalError(w)
				return
			}
		}
		response = append(response, directoryUserResponse{
			ID:       u.ID,
			UserName: u.UserName,
			Email:    u.Email,
			IsMember: member,
		})
	}
	common.WriteJSON(w, http.StatusOK, response)
}

func (h *Handlers) writeUserError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, userdomain.ErrUserNotFound):
		common.WriteError(w, http.StatusNotFound, "user_not_recognized", "user not recognized")
	case errors.Is(err, userdomain.ErrScopeNotFound):
		common.WriteError(w, http.StatusNotFound, "scope_not_found", "scope not found")
	default:
		h.log.InternalError(op, err)
		common.WriteInternalError(w)
	}
}
