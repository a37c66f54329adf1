package lifecycle

import (
	"fmt"

	"haulage/internal/domain"
	apperrors "haulage/internal/errors"
)

// requirementsFor lists the fields order is missing for status. It covers
// the positive requirements only; rate must-be-unset is in CheckInvariants.
func requirementsFor(status domain.Status, order *domain.Order) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail

	if status != domain.StatusPending && status != domain.StatusRejected {
		if len(order.Pickups) == 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "pickups",
				Message: "at least one pickup is required",
			})
		}
		if len(order.Deliveries) == 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "deliveries",
				Message: "at least one delivery is required",
			})
		}
	}

	if status.Quoted() && order.Rate <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "rate",
			Message: fmt.Sprintf("rate must be set before the order is %s", status),
		})
	}

	if status == domain.StatusPickedUp && !order.HasDriverAssignment() {
		if order.VehicleNumber == "" {
			details = append(details, apperrors.ValidationDetail{Field: "vehicleNumber", Message: "vehicle number is required"})
		}
		if order.DriverName == "" {
			details = append(details, apperrors.ValidationDetail{Field: "driverName", Message: "driver name is required"})
		}
		if order.DriverMobile == "" {
			details = append(details, apperrors.ValidationDetail{Field: "driverMobile", Message: "driver mobile is required"})
		}
	}

	return details
}

// CheckInvariants validates a complete order record against its status.
func CheckInvariants(order *domain.Order) error {
	if order == nil {
		return apperrors.NewValidationError("order is required")
	}

	status, ok := domain.ParseStatus(string(order.Status))
	if !ok {
		return apperrors.NewValidationError("invalid order", apperrors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("unknown status %q", order.Status),
		})
	}

	details := requirementsFor(status, order)

	if (status == domain.StatusPending || status == domain.StatusReview) && order.Rate != 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "rate",
			Message: "rate stays unset until the order is approved or confirmed",
		})
	}
	if order.Rate < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "rate", Message: "rate must not be negative"})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("invalid order", details...)
	}
	return nil
}
