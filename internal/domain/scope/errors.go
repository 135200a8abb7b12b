package scope

import "errors"

var (
	ErrScopeNotFound  = errors.New("scope not found")
	ErrScopeNameTaken = errors.New("scope name already exists")
	ErrNotOwner       = errors.New("scope does not belong to caller")
	ErrScopeNotEmpty  = errors.New("scope has assigned elements")
	ErrMemberExists   = errors.New("user is already a member")
	ErrMemberNotFound = errors.New("member not found")
)
