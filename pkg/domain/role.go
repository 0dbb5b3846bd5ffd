package domain

import dErrors "cockpit/pkg/domain-errors"

// Role is the privilege level a user holds within a tenant, totally ordered
// from viewer (lowest) to owner (highest). Projects do not carry independent
// roles; a user's role in a project is their role in the owning tenant.
type Role string

const (
	RoleNone      Role = ""
	RoleViewer    Role = "viewer"
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
	RoleOwner     Role = "owner"
)

var roleRank = map[Role]int{
	RoleNone:      0,
	RoleViewer:    1,
	RoleDeveloper: 2,
	RoleAdmin:     3,
	RoleOwner:     4,
}

// ParseRole validates a role string from an API response.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleRank[r]; !ok || r == RoleNone {
		return RoleNone, dErrors.New(dErrors.CodeInvalidInput, "unknown role: "+s)
	}
	return r, nil
}

// AtLeast reports whether r carries at least the privilege of other.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

func (r Role) String() string {
	return string(r)
}
