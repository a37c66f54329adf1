package branch

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"haulage/internal/auth"
	"haulage/internal/commons"
	"haulage/internal/dto"
)

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func (c *Controller) HandleList(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	p, err := auth.Principal(r)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	branches, err := c.service.List(r.Context(), p)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, branches)
}

func (c *Controller) HandleCreate(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	p, err := auth.Principal(r)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	var req dto.CreateBranchRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	if err := dto.Validate(req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	b, err := c.service.Create(r.Context(), p, req)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusCreated, b)
}

func (c *Controller) HandleDelete(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	p, err := auth.Principal(r)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	id := chi.URLParam(r, "id")
	if err := c.service.Delete(r.Context(), p, id); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, dto.DeleteResponse{ID: id, Deleted: true})
}
