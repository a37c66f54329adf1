package commons

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"haulage/internal/dto"
	apperrors "haulage/internal/errors"
)

type traceIDKey struct{}

// WithTraceID stores the request's trace id in ctx.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceID returns the trace id set by the router, or a fresh one.
func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads the request body into v. Unknown fields are rejected so
// typos in partial updates do not silently do nothing.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}
	return nil
}

// WriteError maps err onto a status and writes the error body. Unexpected
// errors are logged and hidden behind a generic message.
func WriteError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	status, code, message := http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred"
	var details []apperrors.ValidationDetail

	if ve, ok := apperrors.IsValidationError(err); ok {
		status, code, message, details = http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details
	} else if _, ok := apperrors.IsNotFoundError(err); ok {
		status, code, message = http.StatusNotFound, "NOT_FOUND", err.Error()
	} else if _, ok := apperrors.IsConflictError(err); ok {
		status, code, message = http.StatusConflict, "CONFLICT", err.Error()
	} else if _, ok := apperrors.IsForbiddenError(err); ok {
		status, code, message = http.StatusForbidden, "FORBIDDEN", err.Error()
	} else if _, ok := apperrors.IsUnauthorizedError(err); ok {
		status, code, message = http.StatusUnauthorized, "UNAUTHORIZED", err.Error()
	} else if errors.Is(err, context.Canceled) {
		status, code, message = 499, "CANCELLED", "request cancelled"
	} else {
		logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
	}

	if status < http.StatusInternalServerError {
		logger.Warn("request failed",
			zap.String("traceId", traceID),
			zap.Int("status", status),
			zap.String("code", code),
			zap.String("message", message),
		)
	}

	WriteJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}
