package user

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrScopeNotFound = errors.New("scope not found")
)
