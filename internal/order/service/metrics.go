package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "haulage/internal/errors"
	"haulage/internal/lifecycle"
)

const (
	outcomeOK        = "ok"
	outcomeForbidden = "forbidden"
	outcomeConflict  = "conflict"
	outcomeInvalid   = "invalid"
	outcomeNotFound  = "not_found"
	outcomeError     = "error"
)

var transitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "haulage",
		Subsystem: "orders",
		Name:      "transitions_total",
		Help:      "Order lifecycle actions by outcome.",
	},
	[]string{"action", "outcome"},
)

// RecordTransition counts one attempt of action ending in err. Field edits
// without an action are reported as "edit".
func RecordTransition(action lifecycle.Action, err error) {
	outcome := outcomeOf(err)
	label := string(action)
	if label == "" {
		label = "edit"
	}
	transitionsTotal.WithLabelValues(label, outcome).Inc()
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	if _, ok := apperrors.IsForbiddenError(err); ok {
		return outcomeForbidden
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		return outcomeConflict
	}
	if _, ok := apperrors.IsValidationError(err); ok {
		return outcomeInvalid
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return outcomeNotFound
	}
	return outcomeError
}
