// Package access holds the single authorization policy shared by every
// basket, order and partner operation.
package access

import "marketplace/internal/domain"

// Identity is what the session layer knows about the caller.
type Identity struct {
	UserID        int64
	Role          domain.Role
	Authenticated bool
}

// Anonymous is the identity of a request without a valid session.
func Anonymous() Identity { return Identity{} }

// User builds the identity of an authenticated account.
func User(u *domain.User) Identity {
	if u == nil {
		return Anonymous()
	}
	return Identity{UserID: u.ID, Role: u.Role, Authenticated: true}
}

// Authorize allows the call when the identity is authenticated and, if a
// role is required, holds one of the given roles. Denials are returned as
// domain.ErrNotAuthenticated or domain.ErrWrongRole.
func Authorize(id Identity, roles ...domain.Role) error {
	if !id.Authenticated || id.UserID == 0 {
		return domain.ErrNotAuthenticated
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	return domain.ErrWrongRole
}
