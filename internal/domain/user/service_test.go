package user

import (
	"context"
	"errors"
	"testing"
)

type fakeUserRepo struct {
	users       map[string]*User
	knownScopes map[int64]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:       make(map[string]*User),
		knownScopes: make(map[int64]bool),
	}
}

func (r *fakeUserRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeUserRepo) GetUser(ctx context.Context, userID string) (*User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) CreateUserIfAbsent(ctx context.Context, user *User) error {
	if _, ok := r.users[user.ID]; ok {
		return nil
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user *User) (bool, error) {
	existing, ok := r.users[user.ID]
	if !ok {
		return false, nil
	}
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.Email = user.Email
	return true, nil
}

func (r *fakeUserRepo) SetSelectedScope(ctx context.Context, userID string, scopeID int64) error {
	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if !r.knownScopes[scopeID] {
		return ErrScopeNotFound
	}
	id := scopeID
	u.SelectedScopeID = &id
	return nil
}

type fakeDirectory struct {
	searchResults []DirectoryUser
	lastToken     string
	lastQuery     string
}

func (d *fakeDirectory) Search(ctx context.Context, userToken, query string) ([]DirectoryUser, error) {
	d.lastToken = userToken
	d.lastQuery = query
	return d.searchResults, nil
}

func (d *fakeDirectory) Details(ctx context.Context, userToken string, ids []string) ([]DirectoryUser, error) {
	d.lastToken = userToken
	return d.searchResults, nil
}

func TestEnsureUserIdempotent(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, &fakeDirectory{})

	if err := svc.EnsureUser(context.Background(), "user-1", "first@example.com"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.EnsureUser(context.Background(), "user-1", "changed@example.com"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	u := repo.users["user-1"]
	if u == nil {
		t.Fatalf("expected user created")
	}
	if u.UserName != "first@example.com" {
		t.Fatalf("expected existing row untouched, got %q", u.UserName)
	}
}

func TestEnsureUserRequiresID(t *testing.T) {
	svc := NewService(newFakeUserRepo(), &fakeDirectory{})
	if err := svc.EnsureUser(context.Background(), "   ", "name"); err == nil {
		t.Fatalf("expected error for blank id")
	}
}

func TestSetSelectedScopeUnknownScope(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["user-1"] = &User{ID: "user-1"}
	svc := NewService(repo, &fakeDirectory{})

	err := svc.SetSelectedScope(context.Background(), "user-1", 7)
	if !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("expected ErrScopeNotFound, got %v", err)
	}
}

func TestSetSelectedScope(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["user-1"] = &User{ID: "user-1"}
	repo.knownScopes[7] = true
	svc := NewService(repo, &fakeDirectory{})

	if err := svc.SetSelectedScope(context.Background(), "user-1", 7); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	selected, err := svc.SelectedScopeID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if selected == nil || *selected != 7 {
		t.Fatalf("expected scope 7 selected, got %v", selected)
	}
}

func TestUpdateProfileTrims(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["user-1"] = &User{ID: "user-1", Email: "old@example.com"}
	svc := NewService(repo, &fakeDirectory{})

	updated, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:    "user-1",
		FirstName: "  Jan ",
		LastName:  " Kowalski  ",
		Email:     " jan@example.com ",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.FirstName != "Jan" || updated.LastName != "Kowalski" || updated.Email != "jan@example.com" {
		t.Fatalf("expected fields trimmed, got %+v", updated)
	}
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	svc := NewService(newFakeUserRepo(), &fakeDirectory{})
	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: "missing"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSearchForwardsToken(t *testing.T) {
	directory := &fakeDirectory{searchResults: []DirectoryUser{{ID: "u1", UserName: "u1@example.com"}}}
	svc := NewService(newFakeUserRepo(), directory)

	found, err := svc.Search(context.Background(), "caller-token", "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 result, got %d", len(found))
	}
	if directory.lastToken != "caller-token" {
		t.Fatalf("expected caller token forwarded, got %q", directory.lastToken)
	}
	if directory.lastQuery != "u1" {
		t.Fatalf("expected query forwarded, got %q", directory.lastQuery)
	}
}

func TestDetailsEmptyIDs(t *testing.T) {
	directory := &fakeDirectory{}
	svc := NewService(newFakeUserRepo(), directory)

	found, err := svc.Details(context.Background(), "caller-token", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected no results, got %d", len(found))
	}
	if directory.lastToken != "" {
		t.Fatalf("directory must not be called for empty ids")
	}
}
