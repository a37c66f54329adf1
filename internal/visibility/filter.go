// Package visibility derives what a principal may see and do from the full
// order collection. Everything here is a pure function of its arguments.
package visibility

import (
	"strings"

	"haulage/internal/domain"
	"haulage/internal/lifecycle"
	"haulage/internal/session"
)

// roleStatuses narrows branch-scoped roles to the statuses they work on.
// Roles missing from the map see every status of their scope.
var roleStatuses = map[domain.Role][]domain.Status{
	domain.RolePickup:   {domain.StatusApproved, domain.StatusConfirmed},
	domain.RoleLR:       {domain.StatusReview, domain.StatusPickedUp},
	domain.RoleDelivery: {domain.StatusPickedUp},
}

// View narrows a listing further. It never widens what the role may see.
type View struct {
	Statuses []domain.Status
	Search   string
}

// Visible reports whether p may see order at all.
func Visible(order *domain.Order, p session.Principal) bool {
	if order == nil || p.Anonymous() {
		return false
	}

	switch p.Role {
	case domain.RoleSuperAdmin:
		return true
	case domain.RoleCustomer:
		return order.CustomerID == p.UserID
	case domain.RoleAssistant:
		return order.CreatedByID == p.UserID || order.AssistantID == p.UserID
	}

	if !p.Role.BranchScoped() {
		return false
	}
	if order.BranchID == "" || order.BranchID != p.BranchID {
		return false
	}

	statuses, ok := roleStatuses[p.Role]
	if !ok {
		return true
	}
	status, valid := domain.ParseStatus(string(order.Status))
	return valid && containsStatus(statuses, status)
}

// Filter returns the orders p may see that also match view, in input order.
func Filter(orders []domain.Order, p session.Principal, view View) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	search := strings.ToLower(strings.TrimSpace(view.Search))

	for i := range orders {
		o := &orders[i]
		if !Visible(o, p) {
			continue
		}
		if len(view.Statuses) > 0 {
			status, _ := domain.ParseStatus(string(o.Status))
			if !containsStatus(view.Statuses, status) {
				continue
			}
		}
		if search != "" && !matches(o, search) {
			continue
		}
		out = append(out, *o)
	}
	return out
}

// Actions lists the buttons p gets for order. Orders p cannot see have none.
func Actions(policy *lifecycle.Policy, order *domain.Order, p session.Principal) []lifecycle.Action {
	if !Visible(order, p) {
		return nil
	}
	return policy.Allowed(order, p.Role)
}

// Actor converts a principal into the lifecycle actor it acts as.
func Actor(p session.Principal) lifecycle.Actor {
	return lifecycle.Actor{ID: p.UserID, Role: p.Role, BranchID: p.BranchID}
}

func matches(o *domain.Order, search string) bool {
	fields := []string{
		o.ID,
		o.BookedCompanyName,
		o.BookedCustomerName,
		o.BookedEmail,
		o.BookedPhoneNumber,
		o.VehicleNumber,
		o.Documents.LRNumber,
	}
	for _, p := range o.Pickups {
		fields = append(fields, p.CompanyName, p.Location, p.Pincode)
	}
	for _, d := range o.Deliveries {
		fields = append(fields, d.CompanyName, d.Location, d.Pincode)
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func containsStatus(list []domain.Status, s domain.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
