// Package lifecycle is the single place where order status changes are
// decided. Every caller, server or console, goes through Transition or
// Apply; nothing else compares status strings.
package lifecycle

import (
	"fmt"

	"haulage/internal/authz"
	"haulage/internal/domain"
	apperrors "haulage/internal/errors"
)

type Action string

const (
	ActionCreate  Action = "create"
	ActionAssign  Action = "assign"
	ActionReview  Action = "review"
	ActionApprove Action = "approve"
	ActionConfirm Action = "confirm"
	ActionPickUp  Action = "pickup"
	ActionReject  Action = "reject"
	ActionAttach  Action = "attach"
	ActionDelete  Action = "delete"
)

// UpdateFailedMessage is shown when a rejected update carries no better
// explanation.
const UpdateFailedMessage = "Failed to update order"

// Permissions answers role x resource x action questions. *authz.Enforcer
// implements it.
type Permissions interface {
	Can(role domain.Role, resource authz.Resource, action string) bool
}

type edge struct {
	from []domain.Status
	// to is empty when the action keeps the current status.
	to domain.Status
}

var edges = map[Action]edge{
	ActionAssign: {from: []domain.Status{
		domain.StatusPending, domain.StatusReview, domain.StatusApproved, domain.StatusConfirmed,
	}},
	ActionReview:  {from: []domain.Status{domain.StatusPending}, to: domain.StatusReview},
	ActionApprove: {from: []domain.Status{domain.StatusReview}, to: domain.StatusApproved},
	ActionConfirm: {from: []domain.Status{domain.StatusReview}, to: domain.StatusConfirmed},
	ActionPickUp:  {from: []domain.Status{domain.StatusApproved, domain.StatusConfirmed}, to: domain.StatusPickedUp},
	ActionReject: {from: []domain.Status{
		domain.StatusPending, domain.StatusReview, domain.StatusApproved,
		domain.StatusConfirmed, domain.StatusPickedUp,
	}, to: domain.StatusRejected},
	ActionAttach: {from: []domain.Status{
		domain.StatusPending, domain.StatusReview, domain.StatusApproved,
		domain.StatusConfirmed, domain.StatusPickedUp,
	}},
	ActionDelete: {from: domain.Statuses()},
}

// buttonOrder is the order in which Allowed reports actions.
var buttonOrder = []Action{
	ActionAssign, ActionReview, ActionApprove, ActionConfirm, ActionPickUp,
	ActionAttach, ActionReject, ActionDelete,
}

func ParseAction(raw string) (Action, bool) {
	a := Action(raw)
	if a == ActionCreate {
		return a, true
	}
	_, ok := edges[a]
	return a, ok
}

// ActionFor maps a requested target status onto the action that reaches it
// from current. Clients that send {"status": "APPROVED"} go through here.
// Requesting the current status yields no action.
func ActionFor(current, target domain.Status) (Action, error) {
	if target == current {
		return "", nil
	}
	for _, a := range buttonOrder {
		e := edges[a]
		if e.to == target && containsStatus(e.from, current) {
			return a, nil
		}
	}
	return "", apperrors.NewConflictError(fmt.Sprintf("cannot move an order from %s to %s", current, target))
}

type Policy struct {
	perms Permissions
}

func NewPolicy(perms Permissions) *Policy {
	return &Policy{perms: perms}
}

// Transition decides the status an order moves to when role performs
// action on it. The order is read, never written. Field requirements of the
// destination status are checked against the order as given, so callers
// staging field changes pass the staged copy.
func (p *Policy) Transition(order *domain.Order, role domain.Role, action Action) (domain.Status, error) {
	if order == nil {
		return "", apperrors.NewValidationError("order is required")
	}

	if action == ActionCreate {
		return p.initialStatus(order, role)
	}

	e, ok := edges[action]
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown action %q", action),
			apperrors.ValidationDetail{Field: "action", Message: "unsupported action"})
	}

	if !p.perms.Can(role, authz.ResourceOrder, string(action)) {
		return "", apperrors.NewForbiddenError(fmt.Sprintf("role %s cannot %s orders", role, action))
	}

	current, ok := domain.ParseStatus(string(order.Status))
	if !ok {
		return "", apperrors.NewConflictError(fmt.Sprintf("order has unknown status %q", order.Status))
	}

	if !containsStatus(e.from, current) {
		return "", apperrors.NewConflictError(fmt.Sprintf("cannot %s an order in status %s", action, current))
	}

	// Removal puts no demands on the record's fields.
	if action == ActionDelete {
		return current, nil
	}

	next := e.to
	if next == "" {
		next = current
	}

	if action == ActionAssign && order.AssistantID == "" {
		return "", apperrors.NewValidationError("no assistant to assign", apperrors.ValidationDetail{
			Field:   "assistantId",
			Message: "assistantId is required",
		})
	}

	if details := requirementsFor(next, order); len(details) > 0 {
		return "", apperrors.NewValidationError(fmt.Sprintf("order is not ready to become %s", next), details...)
	}

	return next, nil
}

func (p *Policy) initialStatus(order *domain.Order, role domain.Role) (domain.Status, error) {
	if !p.perms.Can(role, authz.ResourceOrder, string(ActionCreate)) {
		return "", apperrors.NewForbiddenError(fmt.Sprintf("role %s cannot create orders", role))
	}

	status := domain.StatusReview
	if role == domain.RoleCustomer {
		status = domain.StatusPending
	}

	if details := requirementsFor(status, order); len(details) > 0 {
		return "", apperrors.NewValidationError("order is incomplete", details...)
	}

	return status, nil
}

// Allowed lists the actions role may start on order given its current
// status. Field requirements are not checked: the fields usually travel
// with the action.
func (p *Policy) Allowed(order *domain.Order, role domain.Role) []Action {
	if order == nil {
		return nil
	}
	current, ok := domain.ParseStatus(string(order.Status))
	if !ok {
		return nil
	}

	var out []Action
	for _, a := range buttonOrder {
		if !containsStatus(edges[a].from, current) {
			continue
		}
		if p.perms.Can(role, authz.ResourceOrder, string(a)) {
			out = append(out, a)
		}
	}
	return out
}

func containsStatus(list []domain.Status, s domain.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
