package models

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// ParseRole normalises raw input into a Role. Unknown values are returned verbatim
// so callers can report them; use Valid to check membership.
func ParseRole(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// SelfRegistrable reports whether the role may be chosen during public sign-up.
func (r Role) SelfRegistrable() bool {
	return r == RoleCustomer || r == RoleVendor
}

func (r Role) String() string { return string(r) }
