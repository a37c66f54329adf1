package dto

import (
	"time"

	apperrors "haulage/internal/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	TraceID   string                       `json:"traceId"`
	Status    int                          `json:"status"`
	Code      string                       `json:"code"`
	Message   string                       `json:"message"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}
