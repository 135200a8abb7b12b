package scope

import (
	"context"
	"errors"
	"testing"
)

type memberKey struct {
	scopeID int64
	userID  string
}

type fakeScopeRepo struct {
	scopes     map[int64]*Scope
	members    map[memberKey]*ScopeUser
	categories map[int64]int64
	expenses   map[int64]int64
	nextID     int64
}

func newFakeScopeRepo() *fakeScopeRepo {
	return &fakeScopeRepo{
		scopes:     make(map[int64]*Scope),
		members:    make(map[memberKey]*ScopeUser),
		categories: make(map[int64]int64),
		expenses:   make(map[int64]int64),
		nextID:     1,
	}
}

func (r *fakeScopeRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeScopeRepo) GetScope(ctx context.Context, scopeID int64) (*Scope, error) {
	s, ok := r.scopes[scopeID]
	if !ok {
		return nil, ErrScopeNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeScopeRepo) ListScopesByUser(ctx context.Context, userID string) ([]Scope, error) {
	result := make([]Scope, 0)
	for _, s := range r.scopes {
		if s.OwnerID == userID {
			result = append(result, *s)
			continue
		}
		if _, ok := r.members[memberKey{scopeID: s.ID, userID: userID}]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (r *fakeScopeRepo) CountScopesByName(ctx context.Context, ownerID, name string) (int64, error) {
	var count int64
	for _, s := range r.scopes {
		if s.OwnerID == ownerID && s.Name == name {
			count++
		}
	}
	return count, nil
}

func (r *fakeScopeRepo) CreateScope(ctx context.Context, scope *Scope) error {
	scope.ID = r.nextID
	r.nextID++
	copied := *scope
	r.scopes[scope.ID] = &copied
	return nil
}

func (r *fakeScopeRepo) UpdateScopeName(ctx context.Context, scopeID int64, name string) (bool, error) {
	s, ok := r.scopes[scopeID]
	if !ok {
		return false, nil
	}
	s.Name = name
	return true, nil
}

func (r *fakeScopeRepo) DeleteScopeIfEmpty(ctx context.Context, scopeID int64) (bool, error) {
	if _, ok := r.scopes[scopeID]; !ok {
		return false, nil
	}
	if r.categories[scopeID] > 0 || r.expenses[scopeID] > 0 {
		return false, nil
	}
	delete(r.scopes, scopeID)
	return true, nil
}

func (r *fakeScopeRepo) ChildCounts(ctx context.Context, scopeID int64) (ChildCounts, error) {
	return ChildCounts{Categories: r.categories[scopeID], Expenses: r.expenses[scopeID]}, nil
}

func (r *fakeScopeRepo) AddMember(ctx context.Context, member *ScopeUser) error {
	copied := *member
	r.members[memberKey{scopeID: member.ScopeID, userID: member.UserID}] = &copied
	return nil
}

func (r *fakeScopeRepo) DeleteMember(ctx context.Context, scopeID int64, userID string) (bool, error) {
	key := memberKey{scopeID: scopeID, userID: userID}
	if _, ok := r.members[key]; !ok {
		return false, nil
	}
	delete(r.members, key)
	return true, nil
}

func (r *fakeScopeRepo) ListMembers(ctx context.Context, scopeID int64) ([]ScopeUser, error) {
	result := make([]ScopeUser, 0)
	for _, member := range r.members {
		if member.ScopeID == scopeID {
			result = append(result, *member)
		}
	}
	return result, nil
}

func (r *fakeScopeRepo) IsMember(ctx context.Context, scopeID int64, userID string) (bool, error) {
	_, ok := r.members[memberKey{scopeID: scopeID, userID: userID}]
	return ok, nil
}

type fakeUserStore struct {
	ensured  map[string]string
	selected map[string]*int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		ensured:  make(map[string]string),
		selected: make(map[string]*int64),
	}
}

func (s *fakeUserStore) EnsureUser(ctx context.Context, userID, displayName string) error {
	if _, ok := s.ensured[userID]; !ok {
		s.ensured[userID] = displayName
	}
	return nil
}

func (s *fakeUserStore) SelectedScopeID(ctx context.Context, userID string) (*int64, error) {
	return s.selected[userID], nil
}

func (s *fakeUserStore) SetSelectedScope(ctx context.Context, userID string, scopeID int64) error {
	id := scopeID
	s.selected[userID] = &id
	return nil
}

func TestCreateScopeProvisionsAndSelects(t *testing.T) {
	repo := newFakeScopeRepo()
	users := newFakeUserStore()
	svc := NewService(repo, users)

	created, err := svc.CreateScope(context.Background(), "user-1", "user@example.com", "  Household  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.Name != "Household" {
		t.Fatalf("expected name trimmed, got %q", created.Name)
	}
	if created.OwnerID != "user-1" {
		t.Fatalf("expected owner user-1, got %q", created.OwnerID)
	}
	if users.ensured["user-1"] != "user@example.com" {
		t.Fatalf("expected user provisioned, got %q", users.ensured["user-1"])
	}
	selected := users.selected["user-1"]
	if selected == nil || *selected != created.ID {
		t.Fatalf("expected new scope selected, got %v", selected)
	}
}

func TestCreateScopeKeepsExistingSelection(t *testing.T) {
	repo := newFakeScopeRepo()
	users := newFakeUserStore()
	existing := int64(42)
	users.selected["user-1"] = &existing
	svc := NewService(repo, users)

	if _, err := svc.CreateScope(context.Background(), "user-1", "u", "Second"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if *users.selected["user-1"] != 42 {
		t.Fatalf("expected selection untouched, got %d", *users.selected["user-1"])
	}
}

func TestCreateScopeDuplicateName(t *testing.T) {
	repo := newFakeScopeRepo()
	repo.scopes[1] = &Scope{ID: 1, Name: "Household", OwnerID: "user-1"}
	repo.nextID = 2
	svc := NewService(repo, newFakeUserStore())

	_, err := svc.CreateScope(context.Background(), "user-1", "u", "Household")
	if !errors.Is(err, ErrScopeNameTaken) {
		t.Fatalf("expected ErrScopeNameTaken, got %v", err)
	}
}

func TestCreateScopeSameNameDifferentOwner(t *testing.T) {
	repo := newFakeScopeRepo()
	repo.scopes[1] = &Scope{ID: 1, Name: "Household", OwnerID: "other"}
	repo.nextID = 2
	svc := NewService(repo, newFakeUserStore())

	if _, err := svc.CreateScope(context.Background(), "user-1", "u", "Household"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestGetScopeMemberCannotView(t *testing.T) {
	repo := newFakeScopeRepo()
	repo.scopes[1] = &Scope{ID: 1, Name: "S", OwnerID: "owner"}
	repo.members[memberKey{scopeID: 1, userID: "member"}] = &ScopeUser{ScopeID: 1, UserID: "member"}
	svc := NewService(repo, newFakeUserStore())

	_, err := svc.GetScope(context.Background(), "member", 1)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestListScopesIncludesMemberships(t *testing.T) {
	repo := newFakeScopeRepo()
	repo.scopes[1] = &Scope{ID: 1, Name: "Mine", OwnerID: "user-1"}
	repo.scopes[2] = &Scope{ID: 2, Name: "Shared", OwnerID: "other"}
	repo.scopes[3] = &Scope{ID: 3, Name: "Foreign", OwnerID: "other"}
	repo.members[memberKey{scopeID: 2, userID: "user-1"}] = &ScopeUser{ScopeID: 2, UserID: "user-1"}
	svc := NewService(repo, newFakeUserStore())

	list, err := svc.ListScopes(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 scopes, got %d", len(list))
	}
}

func TestUpdateScopeNotOwner(t *testing.T) {
	repo := newFakeScopeRepo()
	repo.scopes[1] = &Scope{ID: 1, Name: "S", OwnerID: "owner"}
	svc := NewService(repo, newFakeUserStore())

	_, err := svc.UpdateScope(context.Background(), "intruder", 1, "New")
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if repo.scopes[1].Name != "S" {
		t.Fatalf("expected name unchanged, got %q", repo.scopes[1].Name)
	}
}

func TestDeleteScopeWithChildren(t *testing.T) {
	repo := newFakeScopeRepo()
	repo.scopes[1] = &Scope{ID: 1, Name: "S", OwnerID: "owner"}
	repo.categories[1] = 2
	svc := NewService(repo, newFakeUserStore())

	err := svc.DeleteScope(context.Background(), "owner", 1)
	if !errors.Is(err, ErrScopeNotEmpty) {
		t.Fatalf("expected ErrScopeNotEmpty, got %v", err)
	}
	if _, ok := repo.scopes[1]; !ok {
		t.Fatalf("scope should not be deleted")
	}
}

func TestDeleteScopeEmpty(t *testing.T) {
	repo := newFakeScopeRepo()
	repo.scopes[1] = &Scope{ID: 1, Name: "S", OwnerID: "owner"}
	svc := NewService(repo, newFakeUserStore())

	if err := svc.DeleteScope(context.Background(), "owner", 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.scopes[1]; ok {
		t.Fatalf("scope should be deleted")
	}
}

func TestAddUserProvisionsTarget(t *testing.T) {
	repo := newFakeScopeRepo()
	repo.scopes[1] = &Scope{ID: 1, Name: "S", OwnerID: "owner"}
	users := newFakeUserStore()
	svc := NewService(repo, users)

	if err := svc.AddUser(context.Background(), "owner", 1, "friend", "friend@example.com"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := users.ensured["friend"]; !ok {
		t.Fatalf("expected target user provisioned")
	}
	if _, ok := repo.members[memberKey{scopeID: 1, userID: "friend"}]; !ok {
		t.Fatalf("expected membership created")
	}
}

func TestAddUserTwice(t *testing.T) {
	repo := newFakeScopeRepo()
	repo.scopes[1] = &Scope{ID: 1, Name: "S", OwnerID: "owner"}
	repo.members[memberKey{scopeID: 1, userID: "friend"}] = &ScopeUser{ScopeID: 1, UserID: "friend"}
	svc := NewService(repo, newFakeUserStore())

	err := svc.AddUser(context.Background(), "owner", 1, "friend", "")
	if !errors.Is(err, ErrMemberExists) {
		t.Fatalf("expected ErrMemberExists, got %v", err)
	}
}

func TestAddUserNotOwnerHidesScope(t *testing.T) {
	repo := newFakeScopeRepo()
	repo.scopes[1] = &Scope{ID: 1, Name: "S", OwnerID: "owner"}
	svc := NewService(repo, newFakeUserStore())

	err := svc.AddUser(context.Background(), "intruder", 1, "friend", "")
	if !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("expected ErrScopeNotFound, got %v", err)
	}
}

func TestListMembersOwnerOnly(t *testing.T) {
	repo := newFakeScopeRepo()
	repo.scopes[1] = &Scope{ID: 1, Name: "S", OwnerID: "owner"}
	repo.members[memberKey{scopeID: 1, userID: "friend"}] = &ScopeUser{ScopeID: 1, UserID: "friend"}
	svc := NewService(repo, newFakeUserStore())

	members, err := svc.ListMembers(context.Background(), "owner", 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(members) != 1 || members[0].UserID != "friend" {
		t.Fatalf("unexpected members %+v", members)
	}

	if _, err := svc.ListMembers(context.Background(), "friend", 1); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestRemoveUserNotMember(t *testing.T) {
	repo := newFakeScopeRepo()
	repo.scopes[1] = &Scope{ID: 1, Name: "S", OwnerID: "owner"}
	svc := NewService(repo, newFakeUserStore())

	err := svc.RemoveUser(context.Background(), "owner", 1, "stranger")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestRemoveUser(t *testing.T) {
	repo := newFakeScopeRepo()
	repo.scopes[1] = &Scope{ID: 1, Name: "S", OwnerID: "owner"}
	repo.members[memberKey{scopeID: 1, userID: "friend"}] = &ScopeUser{ScopeID: 1, UserID: "friend"}
	svc := NewService(repo, newFakeUserStore())

	if err := svc.RemoveUser(context.Background(), "owner", 1, "friend"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.members[memberKey{scopeID: 1, userID: "friend"}]; ok {
		t.Fatalf("expected membership removed")
	}
}
