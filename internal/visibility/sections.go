package visibility

import (
	"sort"

	"haulage/internal/domain"
)

const (
	SectionDashboard   = "dashboard"
	SectionOrders      = "orders"
	SectionCreateOrder = "create-order"
	SectionMyOrders    = "my-orders"
	SectionBranches    = "branches"
	SectionStaff       = "staff"
	SectionUsers       = "users"
	SectionEnquiries   = "enquiries"
	SectionPickups     = "pickups"
	SectionDocuments   = "documents"
	SectionDeliveries  = "deliveries"
	SectionProfile     = "profile"
)

var roleSections = map[domain.Role][]string{
	domain.RoleSuperAdmin: {
		SectionDashboard, SectionOrders, SectionCreateOrder, SectionBranches,
		SectionStaff, SectionUsers, SectionEnquiries, SectionProfile,
	},
	domain.RoleAdmin: {
		SectionDashboard, SectionOrders, SectionCreateOrder, SectionStaff,
		SectionEnquiries, SectionProfile,
	},
	domain.RoleAssistant: {SectionDashboard, SectionOrders, SectionCreateOrder, SectionProfile},
	domain.RolePickup:    {SectionDashboard, SectionPickups, SectionProfile},
	domain.RoleLR:        {SectionDashboard, SectionDocuments, SectionProfile},
	domain.RoleDelivery:  {SectionDashboard, SectionDeliveries, SectionProfile},
	domain.RoleCustomer:  {SectionMyOrders, SectionCreateOrder, SectionProfile},
}

// Sections returns the menu sections role may open. Unknown roles get an
// empty set.
func Sections(role domain.Role) map[string]bool {
	out := make(map[string]bool)
	for _, s := range roleSections[role] {
		out[s] = true
	}
	return out
}

// SortedSections is Sections as a sorted slice, for stable output.
func SortedSections(role domain.Role) []string {
	set := Sections(role)
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
