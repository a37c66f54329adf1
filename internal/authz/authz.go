// Package authz holds the role x resource x action permission matrix. The
// server enforces it and the console consults the same table to decide
// which actions to offer.
package authz

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	"haulage/internal/domain"
)

type Resource string

const (
	ResourceOrder            Resource = "order"
	ResourceOrderBooking     Resource = "order.booking"
	ResourceOrderCommercial  Resource = "order.commercial"
	ResourceOrderOperational Resource = "order.operational"
	ResourceBranch           Resource = "branch"
	ResourceEnquiry          Resource = "enquiry"
	ResourceUser             Resource = "user"
)

const ActionWrite = "write"

//go:embed model.conf
var modelText string

//go:embed policy.csv
var policyText string

type Enforcer struct {
	enforcer *casbin.Enforcer
}

// New builds an enforcer from the embedded model and policy.
func New() (*Enforcer, error) {
	return NewFromText(modelText, policyText)
}

// NewFromText builds an enforcer from caller supplied model and policy text.
// Policy lines use the casbin CSV form "p, ROLE, resource, action". Lines
// starting with '#' and lines of the wrong arity grant nothing.
func NewFromText(modelConf, policy string) (*Enforcer, error) {
	m, err := model.NewModelFromString(modelConf)
	if err != nil {
		return nil, fmt.Errorf("parsing authz model: %w", err)
	}

	e, err := casbin.NewEnforcer(m, stringadapter.NewAdapter(policy))
	if err != nil {
		return nil, fmt.Errorf("loading authz policy: %w", err)
	}
	return &Enforcer{enforcer: e}, nil
}

// Can reports whether role may perform action on resource. Unknown roles
// and enforcer errors deny.
func (a *Enforcer) Can(role domain.Role, resource Resource, action string) bool {
	if role == domain.RoleUnknown {
		return false
	}
	ok, err := a.enforcer.Enforce(string(role), string(resource), action)
	if err != nil {
		return false
	}
	return ok
}
