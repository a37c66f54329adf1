package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"haulage/internal/account"
	"haulage/internal/auth"
	"haulage/internal/branch"
	"haulage/internal/commons"
	"haulage/internal/enquiry"
	orderctrl "haulage/internal/order/controller"
)

type Controllers struct {
	Orders    *orderctrl.OrderController
	Branches  *branch.Controller
	Enquiries *enquiry.Controller
	Accounts  *account.Controller
}

func NewRouter(c Controllers, issuer *auth.Issuer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(traceMiddleware)
	r.Use(accessMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		commons.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/login", c.Accounts.HandleLogin)
	r.Post("/auth/signin", c.Accounts.HandleLogin)
	r.Post("/auth/signup", c.Accounts.HandleSignup)
	r.Post("/auth/register", c.Accounts.HandleSignup)
	r.Post("/enquiry", c.Enquiries.HandleCreate)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(issuer, logger))

		r.Get("/orders", c.Orders.List)
		r.Post("/orders/myOrders", c.Orders.Create)
		r.Put("/orders/updateOrder/{id}", c.Orders.Update)
		r.Get("/orders/{id}", c.Orders.Get)
		r.Delete("/orders/{id}", c.Orders.Delete)

		r.Get("/superadmin/branches", c.Branches.HandleList)
		r.Post("/branch", c.Branches.HandleCreate)
		r.Delete("/branches/{id}", c.Branches.HandleDelete)

		r.Get("/enquiry", c.Enquiries.HandleList)
		r.Put("/enquiry/{id}", c.Enquiries.HandleUpdate)

		r.Get("/auth/user/{id}", c.Accounts.HandleGetUser(account.ScopeSelf))
		r.Get("/admin/staff/{id}", c.Accounts.HandleGetUser(account.ScopeStaff))
		r.Post("/admin/staff", c.Accounts.HandleCreateStaff)
		r.Get("/superadmin/users/{id}", c.Accounts.HandleGetUser(account.ScopeAny))
		r.Post("/superadmin/users", c.Accounts.HandleCreateStaff)
	})

	return r
}
