package enquiry

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

func (c *Controller) HandleCreate(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())

	var req dto.CreateEnquiryRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	if err := dto.Validate(req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	e, err := c.service.Create(r.Context(), req)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusCreated, e)
}

func (c *Controller) HandleList(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	p, err := auth.Principal(r)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	enquiries, err := c.service.List(r.Context(), p)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, enquiries)
}

func (c *Controller) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	p, err := auth.Principal(r)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	var req dto.UpdateEnquiryRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	if err := dto.Validate(req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	e, err := c.service.UpdateStatus(r.Context(), p, chi.URLParam(r, "id"), req)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, e)
}
