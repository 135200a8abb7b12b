package scopes

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

	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	scopes *scopedomain.Service
	users  *userdomain.Service
	log    logger.Logger
}

func New(scopes *scopedomain.Service, users *userdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{scopes: scopes, users: users, log: log}
}

type scopeResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"ownerId"`
}

func toScopeResponse(s *scopedomain.Scope) scopeResponse {
	return scopeResponse{ID: s.ID, Name: s.Name, OwnerID: s.OwnerID}
}

// resolveCaller requires both a resolved identity and an existing user row.
// Operations that provision users on demand work from the identity alone.
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
		h.log.InternalError("scopes: resolve caller", err)
		common.WriteInternalError(w)
		return nil, identity.Identity{}, false
	}
	return caller, ident, true
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	caller, _, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	list, err := h.scopes.ListScopes(r.Context(), caller.ID)
	if err != nil {
		h.log.InternalError("scopes: list", err)
		common.WriteInternalError(w)
		return
	}

	response := make([]scopeResponse, 0, len(list))
	for i := range list {
		response = append(response, toScopeResponse(&list[i]))
	}
	common.WriteJSON(w, http.StatusOK, response)
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	caller, _, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	scopeID, err := common.IDParam(r, "id")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s, err := h.scopes.GetScope(r.Context(), caller.ID, scopeID)
	if err != nil {
		h.writeScopeError(w, err, "scopes: get")
		return
	}
	common.WriteJSON(w, http.StatusOK, toScopeResponse(s))
}

type createScopeRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createScopeRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "scope name is required")
		return
	}

	displayName := ident.Email
	if displayName == "" {
		displayName = ident.Name
	}

	s, err := h.scopes.CreateScope(r.Context(), ident.Subject, displayName, name)
	if err != nil {
		h.writeScopeError(w, err, "scopes: create")
		return
	}
	common.WriteJSON(w, http.StatusCreated, toScopeResponse(s))
}

type updateScopeRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	caller, _, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	scopeID, err := common.IDParam(r, "id")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var req updateScopeRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "scope name is required")
		return
	}

	s, err := h.scopes.UpdateScope(r.Context(), caller.ID, scopeID, name)
	if err != nil {
		h.writeScopeError(w, err, "scopes: update")
		return
	}
	common.WriteJSON(w, http.StatusOK, toScopeResponse(s))
}

func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	scopeID, err := common.IDParam(r, "id")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.scopes.DeleteScope(r.Context(), caller.ID, scopeID); err != nil {
		h.writeScopeError(w, err, "scopes: delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addUserRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

func (h *Handlers) AddUser(w http.ResponseWriter, r *http.Request) {
	caller, _, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	scopeID, err := common.IDParam(r, "id")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var req addUserRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteInvalidJSON(w)
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "userId is required")
		return
	}

	if err := h.scopes.AddUser(r.Context(), caller.ID, scopeID, userID, strings.TrimSpace(req.UserName)); err != nil {
		h.writeScopeError(w, err, "scopes: add user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type memberResponse struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

// Members lists a scope's memberships with profiles fetched from the user
// directory. Subjects the directory no longer knows are returned id-only.
func (h *Handlers) Members(w http.ResponseWriter, r *http.Request) {
	caller, ident, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	scopeID, err := common.IDParam(r, "id")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	members, err := h.scopes.ListMembers(r.Context(), caller.ID, scopeID)
	if err != nil {
		h.writeScopeError(w, err, "scopes: list members")
		return
	}

	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.UserID)
	}

	profiles, err := h.users.Details(r.Context(), ident.Token, ids)
	if err != nil {
		if errors.Is(err, identity.ErrDirectoryUnavailable) {
			h.log.BusinessError("scopes: member profiles", err)
			common.WriteError(w, http.StatusBadGateway, "directory_unavailable", "user directory is unavailable")
			return
		}
		h.log.InternalError("scopes: member profiles", err)
		common.WriteInternalError(w)
		return
	}

	byID := make(map[string]userdomain.DirectoryUser, len(profiles))
	for _, profile := range profiles {
		byID[profile.ID] = profile
	}

	response := make([]memberResponse, 0, len(ids))
	for _, id := range ids {
		entry := memberResponse{ID: id}
		if profile, ok := byID[id]; ok {
			entry.UserName = profile.UserName
			entry.Email = profile.Email
		}
		response = append(response, entry)
	}
	common.WriteJSON(w, http.StatusOK, response)
}

func (h *Handlers) RemoveUser(w http.ResponseWriter, r *http.Request) {
	caller, _, ok := h.resolveCaller(w, r)
	if !ok {
		return
	}

	scopeID, err := common.IDParam(r, "id")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "user id is required")
		return
	}

	if err := h.scopes.RemoveUser(r.Context(), caller.ID, scopeID, userID); err != nil {
		h.writeScopeError(w, err, "scopes: remove user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeScopeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, scopedomain.ErrScopeNotFound):
		common.WriteError(w, http.StatusNotFound, "scope_not_found", "scope not found")
	case errors.Is(err, scopedomain.ErrMemberNotFound):
		common.WriteError(w, http.StatusNotFound, "member_not_found", "user is not a member of this scope")
	case errors.Is(err, scopedomain.ErrNotOwner):
		common.WriteError(w, http.StatusForbidden, "forbidden", "only the scope owner may do this")
	case errors.Is(err, scopedomain.ErrScopeNameTaken):
		common.WriteError(w, http.StatusConflict, "scope_name_taken", "a scope with this name already exists")
	case errors.Is(err, scopedomain.ErrScopeNotEmpty):
		common.WriteError(w, http.StatusConflict, "scope_not_empty", "scope still contains categories or expenses")
	case errors.Is(err, scopedomain.ErrMemberExists):
		common.WriteError(w, http.StatusConflict, "member_exists", "user is already a member of this scope")
	default:
		h.log.InternalError(op, err)
		common.WriteInternalError(w)
	}
}
