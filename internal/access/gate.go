// Package access decides who may run staff commands.
package access

import "slices"

// Context is everything the gate needs about one invocation.
type Context struct {
	InvokerID      string
	InvokerRoleIDs []string
	OwnerID        string
	StaffRoleIDs   []string
}

// IsAuthorized reports whether the invoker is staff: the guild owner, or a
// member holding at least one staff role. The owner is always allowed since
// the owner may hold no staff role at all.
func IsAuthorized(ctx Context) bool {
	if ctx.OwnerID != "" && ctx.InvokerID == ctx.OwnerID {
		return true
	}
	for _, role := range ctx.InvokerRoleIDs {
		if slices.Contains(ctx.StaffRoleIDs, role) {
			return true
		}
	}
	return false
}
