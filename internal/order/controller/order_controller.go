package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"haulage/internal/auth"
	"haulage/internal/commons"
	"haulage/internal/domain"
	"haulage/internal/dto"
	apperrors "haulage/internal/errors"
	"haulage/internal/session"
	"haulage/internal/visibility"
)

type OrderService interface {
	List(ctx context.Context, p session.Principal, view visibility.View) ([]dto.OrderView, error)
	Get(ctx context.Context, p session.Principal, id string) (*dto.OrderView, error)
	Create(ctx context.Context, p session.Principal, req dto.CreateOrderRequest) (*dto.OrderView, error)
	Delete(ctx context.Context, p session.Principal, id string) error
}

type UpdateOrderUseCase interface {
	Update(ctx context.Context, p session.Principal, id string, req dto.UpdateOrderRequest) (*dto.OrderView, error)
}

type OrderController struct {
	service OrderService
	update  UpdateOrderUseCase
	logger  *zap.Logger
}

func NewOrderController(service OrderService, update UpdateOrderUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		service: service,
		update:  update,
		logger:  logger,
	}
}

// List accepts ?status=REVIEW,APPROVED and ?search= to narrow the caller's
// view.
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	p, err := auth.Principal(r)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	view, err := parseView(r)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	orders, err := c.service.List(r.Context(), p, view)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, orders)
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	p, err := auth.Principal(r)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	order, err := c.service.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, order)
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	logger := c.logger.With(zap.String("traceId", traceID))

	p, err := auth.Principal(r)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	var req dto.CreateOrderRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	if err := dto.Validate(req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	order, err := c.service.Create(r.Context(), p, req)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusCreated, order)
}

func (c *OrderController) Update(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	logger := c.logger.With(zap.String("traceId", traceID))

	p, err := auth.Principal(r)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	var req dto.UpdateOrderRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	if err := dto.Validate(req); err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}

	order, err := c.update.Update(r.Context(), p, chi.URLParam(r, "id"), req)
	if err != nil {
		commons.WriteError(w, traceID, err, c.logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, order)
}

func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
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

func parseView(r *http.Request) (visibility.View, error) {
	q := r.URL.Query()
	view := visibility.View{Search: q.Get("search")}

	for _, raw := range strings.Split(q.Get("status"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		s, ok := domain.ParseStatus(raw)
		if !ok {
			return view, apperrors.NewValidationError("invalid status filter", apperrors.ValidationDetail{
				Field:   "status",
				Message: "unknown status " + raw,
			})
		}
		view.Statuses = append(view.Statuses, s)
	}
	return view, nil
}
