package scope

// Action enumerates the operations the authorization policy rules on.
type Action int

const (
	ActionView Action = iota
	ActionRename
	ActionDelete
	ActionManageMembers
)

// Authorize decides whether the caller may perform an action on a scope.
// Every action is owner-only: memberships grant access to a scope's
// contents (through scope selection), not to the scope object itself.
// Centralized here so handler code never re-implements ownership checks.
func Authorize(callerID string, s *Scope, _ Action) error {
	if s == nil {
		return ErrScopeNotFound
	}
	if s.OwnerID != callerID {
		return ErrNotOwner
	}
	return nil
}
