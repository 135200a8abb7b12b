package scope

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetScope(ctx context.Context, scopeID int64) (*Scope, error)
	// ListScopesByUser returns scopes the user owns or is a member of.
	ListScopesByUser(ctx context.Context, userID string) ([]Scope, error)
	CountScopesByName(ctx context.Context, ownerID, name string) (int64, error)
	CreateScope(ctx context.Context, scope *Scope) error
	UpdateScopeName(ctx context.Context, scopeID int64, name string) (bool, error)
	// DeleteScopeIfEmpty deletes the scope in a single conditional statement
	// guarded by the absence of categories and expenses, so the precondition
	// cannot race a concurrent insert.
	DeleteScopeIfEmpty(ctx context.Context, scopeID int64) (bool, error)
	ChildCounts(ctx context.Context, scopeID int64) (ChildCounts, error)
	AddMember(ctx context.Context, member *ScopeUser) error
	DeleteMember(ctx context.Context, scopeID int64, userID string) (bool, error)
	ListMembers(ctx context.Context, scopeID int64) ([]ScopeUser, error)
	IsMember(ctx context.Context, scopeID int64, userID string) (bool, error)
}
