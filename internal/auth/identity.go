package auth

import "slices"

// DefaultAdminGroup is the group whose members may run admin-only mutations.
const DefaultAdminGroup = "admin"

// Identity is the authenticated caller as seen by the catalog. The zero value
// is an anonymous caller.
type Identity struct {
	Email  string
	Groups []string
}

// IdentityFromClaims extracts the caller identity from validated token claims.
func IdentityFromClaims(c *Claims) Identity {
	if c == nil {
		return Identity{}
	}
	return Identity{Email: c.Email, Groups: c.Groups}
}

// InGroup reports whether the caller is a member of group.
func (id Identity) InGroup(group string) bool {
	return group != "" && slices.Contains(id.Groups, group)
}

// Owns reports whether the caller created a record with the given createdBy.
// An anonymous caller owns nothing.
func (id Identity) Owns(createdBy string) bool {
	return id.Email != "" && id.Email == createdBy
}
