package user

import (
	"context"
	"fmt"
	"strings"
)

// Directory is the remote user directory hosted by the identity provider.
// Calls carry the caller's bearer token explicitly; the implementation
// exchanges it for a delegated credential per request.
type Directory interface {
	Search(ctx context.Context, userToken, query string) ([]DirectoryUser, error)
	Details(ctx context.Context, userToken string, ids []string) ([]DirectoryUser, error)
}

type Service struct {
	repo      Repository
	directory Directory
}

func NewService(repo Repository, directory Directory) *Service {
	return &Service{repo: repo, directory: directory}
}

func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetUser(ctx, userID)
}

// EnsureUser materializes a local row for the subject if none exists yet.
// Safe to call repeatedly; an existing row is left untouched.
func (s *Service) EnsureUser(ctx context.Context, userID, displayName string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	return s.repo.CreateUserIfAbsent(ctx, &User{
		ID:       userID,
		UserName: strings.TrimSpace(displayName),
	})
}

func (s *Service) SelectedScopeID(ctx context.Context, userID string) (*int64, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.SelectedScopeID, nil
}

// SetSelectedScope verifies both rows exist. Membership of the target scope
// is not enforced, matching the historical behavior of the selection API.
func (s *Service) SetSelectedScope(ctx context.Context, userID string, scopeID int64) error {
	return s.repo.SetSelectedScope(ctx, userID, scopeID)
}

func (s *Service) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*User, error) {
	var updated *User
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		u, err := tx.GetUser(ctx, input.UserID)
		if err != nil {
			return err
		}

		u.FirstName = strings.TrimSpace(input.FirstName)
		u.LastName = strings.TrimSpace(input.LastName)
		u.Email = strings.TrimSpace(input.Email)

		ok, err := tx.UpdateProfile(ctx, u)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}

		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Search(ctx context.Context, userToken, query string) ([]DirectoryUser, error) {
	return s.directory.Search(ctx, userToken, query)
}

func (s *Service) Details(ctx context.Context, userToken string, ids []string) ([]DirectoryUser, error) {
	if len(ids) == 0 {
		return []DirectoryUser{}, nil
	}
	return s.directory.Details(ctx, userToken, ids)
}
