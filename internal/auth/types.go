package auth

import "errors"

// Role represents an authorisation tier on the station API.
type Role string

const (
	// RoleViewer may read station state: devices, models, environment.
	RoleViewer Role = "viewer"

	// RoleOperator may run environment checks and read everything a
	// viewer can. Typical identity for CI runners.
	RoleOperator Role = "operator"

	// RoleAdmin has full control of the station API.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of roles accepted in token claims.
var ValidRoles = []Role{RoleViewer, RoleOperator, RoleAdmin}

// IsValidRole returns true if the role is recognised.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Sentinel errors for auth operations.
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)
