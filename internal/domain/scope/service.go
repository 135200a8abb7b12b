package scope

import (
	"context"
	"fmt"
	"strings"
)

// UserStore is the slice of the user domain the scope service needs:
// just-in-time provisioning and scope selection.
type UserStore interface {
	EnsureUser(ctx context.Context, userID, displayName string) error
	SelectedScopeID(ctx context.Context, userID string) (*int64, error)
	SetSelectedScope(ctx context.Context, userID string, scopeID int64) error
}

type Service struct {
	repo  Repository
	users UserStore
}

func NewService(repo Repository, users UserStore) *Service {
	return &Service{repo: repo, users: users}
}

func (s *Service) ListScopes(ctx context.Context, callerID string) ([]Scope, error) {
	return s.repo.ListScopesByUser(ctx, callerID)
}

func (s *Service) GetScope(ctx context.Context, callerID string, scopeID int64) (*Scope, error) {
	sc, err := s.repo.GetScope(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(callerID, sc, ActionView); err != nil {
		return nil, err
	}
	return sc, nil
}

// SelectedScope fetches a scope without an ownership check. It serves the
// caller's own selection, which may point at a scope they merely belong to.
func (s *Service) SelectedScope(ctx context.Context, scopeID int64) (*Scope, error) {
	return s.repo.GetScope(ctx, scopeID)
}

// CreateScope provisions the caller's user row if this is their first write,
// rejects duplicate names among the caller's own scopes, and selects the new
// scope when the caller had none selected.
func (s *Service) CreateScope(ctx context.Context, callerID, callerName, name string) (*Scope, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	if err := s.users.EnsureUser(ctx, callerID, callerName); err != nil {
		return nil, err
	}

	created := Scope{Name: name, OwnerID: callerID}
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		count, err := tx.CountScopesByName(ctx, callerID, name)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrScopeNameTaken
		}
		return tx.CreateScope(ctx, &created)
	})
	if err != nil {
		return nil, err
	}

	selected, err := s.users.SelectedScopeID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if selected == nil {
		if err := s.users.SetSelectedScope(ctx, callerID, created.ID); err != nil {
			return nil, err
		}
	}

	return s.repo.GetScope(ctx, created.ID)
}

// UpdateScope renames a scope. Duplicate names are not rejected here,
// matching the create-only uniqueness check.
// TODO: decide whether rename should enforce the same per-owner name
// uniqueness as CreateScope; the current tests pin the permissive behavior.
func (s *Service) UpdateScope(ctx context.Context, callerID string, scopeID int64, name string) (*Scope, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	sc, err := s.repo.GetScope(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(callerID, sc, ActionRename); err != nil {
		return nil, err
	}

	ok, err := s.repo.UpdateScopeName(ctx, scopeID, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrScopeNotFound
	}

	return s.repo.GetScope(ctx, scopeID)
}

func (s *Service) DeleteScope(ctx context.Context, callerID string, scopeID int64) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		sc, err := tx.GetScope(ctx, scopeID)
		if err != nil {
			return err
		}
		if err := Authorize(callerID, sc, ActionDelete); err != nil {
			return err
		}

		deleted, err := tx.DeleteScopeIfEmpty(ctx, scopeID)
		if err != nil {
			return err
		}
		if deleted {
			return nil
		}

		counts, err := tx.ChildCounts(ctx, scopeID)
		if err != nil {
			return err
		}
		if !counts.Empty() {
			return ErrScopeNotEmpty
		}
		// Empty but not deleted: removed by a concurrent request.
		return ErrScopeNotFound
	})
}

// AddUser grants membership. The target user row is provisioned as a stub
// when the subject has never touched this service; the directory remains
// the source of truth for their profile. A scope the caller does not own is
// reported as missing, not forbidden.
func (s *Service) AddUser(ctx context.Context, callerID string, scopeID int64, targetID, targetName string) error {
	sc, err := s.repo.GetScope(ctx, scopeID)
	if err != nil {
		return err
	}
	if sc.OwnerID != callerID {
		return ErrScopeNotFound
	}

	if err := s.users.EnsureUser(ctx, targetID, targetName); err != nil {
		return err
	}

	return s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := tx.IsMember(ctx, scopeID, targetID)
		if err != nil {
			return err
		}
		if member {
			return ErrMemberExists
		}
		return tx.AddMember(ctx, &ScopeUser{ScopeID: scopeID, UserID: targetID})
	})
}

func (s *Service) RemoveUser(ctx context.Context, callerID string, scopeID int64, targetID string) error {
	sc, err := s.repo.GetScope(ctx, scopeID)
	if err != nil {
		return err
	}
	if err := Authorize(callerID, sc, ActionManageMembers); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteMember(ctx, scopeID, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMemberNotFound
	}
	return nil
}

// ListMembers returns the memberships of a scope the caller owns.
func (s *Service) ListMembers(ctx context.Context, callerID string, scopeID int64) ([]ScopeUser, error) {
	sc, err := s.repo.GetScope(ctx, scopeID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(callerID, sc, ActionView); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, scopeID)
}

func (s *Service) IsMember(ctx context.Context, scopeID int64, userID string) (bool, error) {
	return s.repo.IsMember(ctx, scopeID, userID)
}
