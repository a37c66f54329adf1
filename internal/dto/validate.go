package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "haulage/internal/errors"
)

// requestValidate is shared by the server controllers and the console
// gateway so both reject the same payloads.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	requestValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

// Validate checks v against its struct tags. Failures come back as a
// *errors.ValidationError with one detail per field.
func Validate(v any) error {
	err := requestValidate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error())
	}

	details := make([]apperrors.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, apperrors.ValidationDetail{
			Field:   fieldPath(fe),
			Message: fieldMessage(fe),
		})
	}
	return apperrors.NewValidationError("validation failed", details...)
}

// fieldPath drops the top-level struct name: "CreateOrderRequest.pickups[0].pincode"
// becomes "pickups[0].pincode".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "url":
		return fe.Field() + " must be a valid URL"
	case "numeric":
		return fe.Field() + " must contain digits only"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s entries", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be %s %s", fe.Field(), comparison(fe.Tag()), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

func comparison(tag string) string {
	if tag == "gt" {
		return "greater than"
	}
	return "at least"
}

func invalidStatus(raw string) error {
	return apperrors.NewValidationError(fmt.Sprintf("unknown status %q", raw),
		apperrors.ValidationDetail{Field: "status", Message: "status must be one of PENDING, REVIEW, APPROVED, CONFIRMED, PICKED_UP, REJECTED"})
}
