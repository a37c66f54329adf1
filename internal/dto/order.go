package dto

import (
	"time"

	"haulage/internal/domain"
	"haulage/internal/lifecycle"
)

type PickUpRequest struct {
	CompanyName  string     `json:"companyName" validate:"required,max=200"`
	ContactName  string     `json:"contactName" validate:"required,max=120"`
	ContactPhone string     `json:"contactPhone" validate:"required,numeric,min=7,max=15"`
	Address      string     `json:"address" validate:"required,max=500"`
	Location     string     `json:"location" validate:"required,max=120"`
	Pincode      string     `json:"pincode" validate:"required,numeric,len=6"`
	PickupDate   *time.Time `json:"pickupDate,omitempty"`
}

type DeliveryRequest struct {
	CompanyName  string `json:"companyName" validate:"required,max=200"`
	ContactName  string `json:"contactName" validate:"required,max=120"`
	ContactPhone string `json:"contactPhone" validate:"required,numeric,min=7,max=15"`
	Address      string `json:"address" validate:"required,max=500"`
	Location     string `json:"location" validate:"required,max=120"`
	Pincode      string `json:"pincode" validate:"required,numeric,len=6"`
}

type PackageRequest struct {
	Count         int                `json:"count" validate:"gte=1"`
	WeightKg      float64            `json:"weightKg" validate:"gt=0"`
	TotalWeightKg float64            `json:"totalWeightKg" validate:"gte=0"`
	Dimensions    *DimensionsRequest `json:"dimensions,omitempty"`
}

type DimensionsRequest struct {
	LengthCm float64 `json:"lengthCm" validate:"gt=0"`
	WidthCm  float64 `json:"widthCm" validate:"gt=0"`
	HeightCm float64 `json:"heightCm" validate:"gt=0"`
}

type VehicleRequest struct {
	Type        string `json:"type" validate:"required"`
	LoadingType string `json:"loadingType" validate:"required,oneof=FTL PTL"`
	Model       string `json:"model,omitempty"`
}

type DocumentsRequest struct {
	EwayBillNumber string `json:"ewayBillNumber,omitempty"`
	EwayBillURL    string `json:"ewayBillUrl,omitempty" validate:"omitempty,url"`
	PackageListURL string `json:"packageListUrl,omitempty" validate:"omitempty,url"`
	LRNumber       string `json:"lrNumber,omitempty"`
	LRURL          string `json:"lrUrl,omitempty" validate:"omitempty,url"`
	PODURL         string `json:"podUrl,omitempty" validate:"omitempty,url"`
	IODURL         string `json:"iodUrl,omitempty" validate:"omitempty,url"`
}

// CreateOrderRequest is the booking form. Rate and driver fields are not
// accepted here; they arrive later through updates.
type CreateOrderRequest struct {
	BranchID           string            `json:"branchId,omitempty"`
	CustomerID         string            `json:"customerId,omitempty"`
	BookedCompanyName  string            `json:"bookedCompanyName" validate:"required,max=200"`
	BookedCustomerName string            `json:"bookedCustomerName" validate:"required,max=120"`
	BookedEmail        string            `json:"bookedEmail" validate:"omitempty,email"`
	BookedPhoneNumber  string            `json:"bookedPhoneNumber" validate:"required,numeric,min=7,max=15"`
	Pickups            []PickUpRequest   `json:"pickups" validate:"required,min=1,dive"`
	Deliveries         []DeliveryRequest `json:"deliveries" validate:"required,min=1,dive"`
	Packages           []PackageRequest  `json:"packages" validate:"omitempty,dive"`
	Vehicles           []VehicleRequest  `json:"vehicles" validate:"omitempty,dive"`
	Notes              string            `json:"notes,omitempty" validate:"max=2000"`
}

func (r CreateOrderRequest) ToDomain() *domain.Order {
	return &domain.Order{
		BranchID:           r.BranchID,
		CustomerID:         r.CustomerID,
		BookedCompanyName:  r.BookedCompanyName,
		BookedCustomerName: r.BookedCustomerName,
		BookedEmail:        r.BookedEmail,
		BookedPhoneNumber:  r.BookedPhoneNumber,
		Pickups:            pickupsToDomain(r.Pickups),
		Deliveries:         deliveriesToDomain(r.Deliveries),
		Packages:           packagesToDomain(r.Packages),
		Vehicles:           vehiclesToDomain(r.Vehicles),
		Notes:              r.Notes,
	}
}

// UpdateOrderRequest is a partial update. Absent fields stay as stored.
// Either Action or Status may request a transition; Status is mapped onto
// the action that reaches it.
type UpdateOrderRequest struct {
	Action *string `json:"action,omitempty" validate:"omitempty,oneof=assign review approve confirm pickup reject attach"`
	Status *string `json:"status,omitempty"`

	AssistantID *string `json:"assistantId,omitempty" validate:"omitempty,min=1,max=64"`

	BranchID           *string           `json:"branchId,omitempty"`
	BookedCompanyName  *string           `json:"bookedCompanyName,omitempty" validate:"omitempty,max=200"`
	BookedCustomerName *string           `json:"bookedCustomerName,omitempty" validate:"omitempty,max=120"`
	BookedEmail        *string           `json:"bookedEmail,omitempty" validate:"omitempty,email"`
	BookedPhoneNumber  *string           `json:"bookedPhoneNumber,omitempty" validate:"omitempty,numeric,min=7,max=15"`
	Pickups            []PickUpRequest   `json:"pickups,omitempty" validate:"omitempty,dive"`
	Deliveries         []DeliveryRequest `json:"deliveries,omitempty" validate:"omitempty,dive"`
	Packages           []PackageRequest  `json:"packages,omitempty" validate:"omitempty,dive"`
	Vehicles           []VehicleRequest  `json:"vehicles,omitempty" validate:"omitempty,dive"`

	Rate         *float64 `json:"rate,omitempty" validate:"omitempty,gte=0"`
	RateQuotedBy *string  `json:"rateQuotedBy,omitempty"`
	Notes        *string  `json:"notes,omitempty" validate:"omitempty,max=2000"`

	VehicleNumber   *string           `json:"vehicleNumber,omitempty" validate:"omitempty,max=20"`
	DriverName      *string           `json:"driverName,omitempty" validate:"omitempty,max=120"`
	DriverMobile    *string           `json:"driverMobile,omitempty" validate:"omitempty,numeric,min=7,max=15"`
	PickupTeamNotes *string           `json:"pickupTeamNotes,omitempty" validate:"omitempty,max=2000"`
	Documents       *DocumentsRequest `json:"documents,omitempty"`
}

// ToChange converts the request into a lifecycle change against an order
// currently in status current.
func (r UpdateOrderRequest) ToChange(current domain.Status) (lifecycle.Change, error) {
	var change lifecycle.Change

	switch {
	case r.Action != nil:
		change.Action = lifecycle.Action(*r.Action)
	case r.Status != nil:
		target, ok := domain.ParseStatus(*r.Status)
		if !ok {
			return change, invalidStatus(*r.Status)
		}
		action, err := lifecycle.ActionFor(current, target)
		if err != nil {
			return change, err
		}
		change.Action = action
	}
	change.AssistantID = r.AssistantID

	if r.BranchID != nil || r.BookedCompanyName != nil || r.BookedCustomerName != nil ||
		r.BookedEmail != nil || r.BookedPhoneNumber != nil ||
		r.Pickups != nil || r.Deliveries != nil || r.Packages != nil || r.Vehicles != nil {
		change.Booking = &lifecycle.BookingChange{
			BranchID:           r.BranchID,
			BookedCompanyName:  r.BookedCompanyName,
			BookedCustomerName: r.BookedCustomerName,
			BookedEmail:        r.BookedEmail,
			BookedPhoneNumber:  r.BookedPhoneNumber,
			Pickups:            pickupsToDomain(r.Pickups),
			Deliveries:         deliveriesToDomain(r.Deliveries),
			Packages:           packagesToDomain(r.Packages),
			Vehicles:           vehiclesToDomain(r.Vehicles),
		}
	}

	if r.Rate != nil || r.RateQuotedBy != nil || r.Notes != nil {
		change.Commercial = &lifecycle.CommercialChange{
			Rate:         r.Rate,
			RateQuotedBy: r.RateQuotedBy,
			Notes:        r.Notes,
		}
	}

	if r.VehicleNumber != nil || r.DriverName != nil || r.DriverMobile != nil ||
		r.PickupTeamNotes != nil || r.Documents != nil {
		op := &lifecycle.OperationalChange{
			VehicleNumber:   r.VehicleNumber,
			DriverName:      r.DriverName,
			DriverMobile:    r.DriverMobile,
			PickupTeamNotes: r.PickupTeamNotes,
		}
		if r.Documents != nil {
			docs := domain.Documents(*r.Documents)
			op.Documents = &docs
		}
		change.Operational = op
	}

	return change, nil
}

// OrderView is an order as returned to a caller, with the actions the
// caller may take on it.
type OrderView struct {
	domain.Order
	Actions []string `json:"actions,omitempty"`
}

func NewOrderView(o domain.Order, actions []lifecycle.Action) OrderView {
	v := OrderView{Order: o}
	for _, a := range actions {
		v.Actions = append(v.Actions, string(a))
	}
	return v
}

func pickupsToDomain(in []PickUpRequest) []domain.PickUp {
	if in == nil {
		return nil
	}
	out := make([]domain.PickUp, len(in))
	for i, p := range in {
		out[i] = domain.PickUp(p)
	}
	return out
}

func deliveriesToDomain(in []DeliveryRequest) []domain.Delivery {
	if in == nil {
		return nil
	}
	out := make([]domain.Delivery, len(in))
	for i, d := range in {
		out[i] = domain.Delivery(d)
	}
	return out
}

func packagesToDomain(in []PackageRequest) []domain.Package {
	if in == nil {
		return nil
	}
	out := make([]domain.Package, len(in))
	for i, p := range in {
		out[i] = domain.Package{Count: p.Count, WeightKg: p.WeightKg, TotalWeightKg: p.TotalWeightKg}
		if out[i].TotalWeightKg == 0 {
			out[i].TotalWeightKg = float64(p.Count) * p.WeightKg
		}
		if p.Dimensions != nil {
			d := domain.Dimensions(*p.Dimensions)
			out[i].Dimensions = &d
		}
	}
	return out
}

func vehiclesToDomain(in []VehicleRequest) []domain.Vehicle {
	if in == nil {
		return nil
	}
	out := make([]domain.Vehicle, len(in))
	for i, v := range in {
		out[i] = domain.Vehicle{Type: v.Type, LoadingType: domain.LoadingType(v.LoadingType), Model: v.Model}
	}
	return out
}
