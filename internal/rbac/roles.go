package rbac

import "errors"

// Role names. Keep these stable; they are part of the auth/RBAC contract
// and are persisted on user records.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ErrForbidden is the uniform denial outcome. It carries no information
// about which role would have been accepted.
var ErrForbidden = errors.New("forbidden")

func IsValid(role string) bool {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// Authorize is a pure membership check of role against the allowed set.
// No hierarchy is assumed between roles: admin does not implicitly satisfy
// a moderator-only check, so every call site lists its full allowed set.
func Authorize(role string, allowed ...string) error {
	for _, a := range allowed {
		if role == a {
			return nil
		}
	}
	return ErrForbidden
}
