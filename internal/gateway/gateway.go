package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"haulage/internal/domain"
	"haulage/internal/dto"
)

var (
	OrderKind = Kind{
		Tag: "Orders", Noun: "order", Plural: "orders",
		Endpoints: Endpoints{
			List:   "/orders",
			Get:    "/orders/{id}",
			Create: "/orders/myOrders",
			Update: "/orders/updateOrder/{id}",
			Delete: "/orders/{id}",
		},
	}

	BranchKind = Kind{
		Tag: "Branches", Noun: "branch", Plural: "branches",
		Endpoints: Endpoints{
			List:   "/superadmin/branches",
			Create: "/branch",
			Delete: "/branches/{id}",
		},
	}

	EnquiryKind = Kind{
		Tag: "Enquiries", Noun: "enquiry", Plural: "enquiries",
		Endpoints: Endpoints{
			List:   "/enquiry",
			Create: "/enquiry",
			Update: "/enquiry/{id}",
		},
	}
)

// UserKind picks the profile and staff paths the API exposes to role. Only
// admins can create users through it.
func UserKind(role domain.Role) Kind {
	ep := Endpoints{Get: "/auth/user/{id}"}
	switch role {
	case domain.RoleSuperAdmin:
		ep = Endpoints{Get: "/superadmin/users/{id}", Create: "/superadmin/users"}
	case domain.RoleAdmin:
		ep = Endpoints{Get: "/admin/staff/{id}", Create: "/admin/staff"}
	}
	return Kind{Tag: "Users", Noun: "user", Plural: "users", Endpoints: ep}
}

const (
	loginPath  = "/auth/login"
	signupPath = "/auth/signup"
)

// Gateway bundles the typed resources over one client.
type Gateway struct {
	Orders    *Resource[domain.Order]
	Branches  *Resource[domain.Branch]
	Enquiries *Resource[domain.Enquiry]
	Users     *Resource[domain.User]

	client *Client
}

func NewGateway(c *Client, role domain.Role) *Gateway {
	return &Gateway{
		Orders:    NewResource(c, OrderKind, func(o *domain.Order) string { return o.ID }),
		Branches:  NewResource(c, BranchKind, func(b *domain.Branch) string { return b.ID }),
		Enquiries: NewResource(c, EnquiryKind, func(e *domain.Enquiry) string { return e.ID }),
		Users:     NewResource(c, UserKind(role), func(u *domain.User) string { return u.ID }),
		client:    c,
	}
}

func (g *Gateway) Client() *Client {
	return g.client
}

// Login exchanges credentials for a session. Cached reads belong to the
// previous identity and are dropped on success.
func (g *Gateway) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	return g.authenticate(ctx, loginPath, req)
}

// Signup registers a customer account and logs it in.
func (g *Gateway) Signup(ctx context.Context, req dto.SignupRequest) (dto.AuthResponse, error) {
	return g.authenticate(ctx, signupPath, req)
}

func (g *Gateway) authenticate(ctx context.Context, path string, payload any) (dto.AuthResponse, error) {
	var out dto.AuthResponse
	if err := validatePayload(payload); err != nil {
		return out, err
	}

	body, err := g.client.do(ctx, request{method: http.MethodPost, path: path, body: payload, verb: "create", noun: "session"})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &APIError{Message: "Failed to create session", Err: err}
	}

	g.client.cache.Reset()
	return out, nil
}
