package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"haulage/internal/auth"
	"haulage/internal/commons"
	"haulage/internal/dto"
)

type Controller struct {
	service *Service
	logger  *zap.Logger
}

func NewController(service *Service, logger *zap.Logger) *Controller {
	return &Controller{service: service, logger: logger}
}

func (c *Controller) HandleLogin(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())

	var req dto.LoginRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	if err := dto.Validate(req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	resp, err := c.service.Login(r.Context(), req)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, resp)
}

func (c *Controller) HandleSignup(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())

	var req dto.SignupRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	if err := dto.Validate(req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	resp, err := c.service.Signup(r.Context(), req)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusCreated, resp)
}

func (c *Controller) HandleCreateStaff(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	p, err := auth.Principal(r)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	var req dto.StaffRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	if err := dto.Validate(req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	u, err := c.service.CreateStaff(r.Context(), p, req)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusCreated, u)
}

// HandleGetUser serves one user lookup route; scope decides who may call it.
func (c *Controller) HandleGetUser(scope Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		traceID := commons.TraceID(r.Context())
		p, err := auth.Principal(r)
		if err != nil {
			commons.WriteError(w, traceID, err, c.logger)
			return
		}

		u, err := c.service.GetUser(r.Context(), p, chi.URLParam(r, "id"), scope)
		if err != nil {
			commons.WriteError(w, traceID, err, c.logger)
			return
		}
		commons.WriteJSON(w, http.StatusOK, u)
	}
}
