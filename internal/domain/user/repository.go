package user

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetUser(ctx context.Context, userID string) (*User, error)
	CreateUserIfAbsent(ctx context.Context, user *User) error
	UpdateProfile(ctx context.Context, user *User) (bool, error)
	// SetSelectedScope fails with ErrUserNotFound or ErrScopeNotFound when
	// either side of the reference is missing.
	SetSelectedScope(ctx context.Context, userID string, scopeID int64) error
}
