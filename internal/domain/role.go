package domain

import "strings"

type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleAssistant  Role = "ASSISTANT"
	RolePickup     Role = "PICKUP"
	RoleLR         Role = "LR"
	RoleDelivery   Role = "DELIVERY"
	RoleCustomer   Role = "CUSTOMER"
	RoleUnknown    Role = ""
)

var allRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleAssistant,
	RolePickup,
	RoleLR,
	RoleDelivery,
	RoleCustomer,
}

func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// ParseRole maps a raw role string to a Role. Dashes, spaces and case are
// tolerated ("super-admin", "Super Admin"); anything else is RoleUnknown.
func ParseRole(raw string) Role {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch s {
	case "SUPERADMIN":
		return RoleSuperAdmin
	case "BRANCH_ADMIN", "BRANCHADMIN":
		return RoleAdmin
	}
	for _, r := range allRoles {
		if Role(s) == r {
			return r
		}
	}
	return RoleUnknown
}

// BranchScoped reports whether visibility for r is limited to the user's branch.
func (r Role) BranchScoped() bool {
	switch r {
	case RoleAdmin, RolePickup, RoleLR, RoleDelivery:
		return true
	}
	return false
}

func (r Role) Staff() bool {
	return r != RoleCustomer && r != RoleUnknown
}

func (r Role) String() string {
	if r == RoleUnknown {
		return "UNKNOWN"
	}
	return string(r)
}
