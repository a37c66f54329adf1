package lifecycle

import (
	"fmt"

	"haulage/internal/authz"
	"haulage/internal/domain"
	apperrors "haulage/internal/errors"
)

// Actor is whoever performs a change, as resolved from the session.
type Actor struct {
	ID       string
	Role     domain.Role
	BranchID string
}

// Change is a partial update. Nil groups and nil fields are left alone;
// nil slices keep the stored collection. AssistantID only travels with
// ActionAssign.
type Change struct {
	Action      Action
	AssistantID *string
	Booking     *BookingChange
	Commercial  *CommercialChange
	Operational *OperationalChange
}

type BookingChange struct {
	BranchID           *string
	BookedCompanyName  *string
	BookedCustomerName *string
	BookedEmail        *string
	BookedPhoneNumber  *string
	Pickups            []domain.PickUp
	Deliveries         []domain.Delivery
	Packages           []domain.Package
	Vehicles           []domain.Vehicle
}

type CommercialChange struct {
	Rate         *float64
	RateQuotedBy *string
	Notes        *string
}

type OperationalChange struct {
	VehicleNumber   *string
	DriverName      *string
	DriverMobile    *string
	PickupTeamNotes *string
	Documents       *domain.Documents
}

func (c Change) empty() bool {
	return c.Action == "" && c.AssistantID == nil && c.Booking == nil && c.Commercial == nil && c.Operational == nil
}

// Create validates a new order drafted by actor and returns the record to
// persist, with ownership links and the initial status filled in.
func (p *Policy) Create(actor Actor, draft *domain.Order) (*domain.Order, error) {
	if draft == nil {
		return nil, apperrors.NewValidationError("order is required")
	}

	order := draft.Clone()
	order.ID = ""
	order.CreatedByID = actor.ID

	switch actor.Role {
	case domain.RoleCustomer:
		order.CustomerID = actor.ID
	case domain.RoleAssistant:
		order.AssistantID = actor.ID
	}
	if order.BranchID == "" && actor.Role.BranchScoped() {
		order.BranchID = actor.BranchID
	}

	var details []apperrors.ValidationDetail
	if order.Rate != 0 {
		details = append(details, apperrors.ValidationDetail{Field: "rate", Message: "rate is quoted after review"})
	}
	if order.VehicleNumber != "" || order.DriverName != "" || order.DriverMobile != "" {
		details = append(details, apperrors.ValidationDetail{Field: "vehicleNumber", Message: "vehicle and driver are assigned by the pickup team"})
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid order", details...)
	}

	status, err := p.Transition(order, actor.Role, ActionCreate)
	if err != nil {
		return nil, err
	}
	order.Status = status

	if err := CheckInvariants(order); err != nil {
		return nil, err
	}
	return order, nil
}

// Apply stages change on a copy of order and returns the copy when every
// permission, edge and invariant holds. order itself is never modified, so
// a rejected change leaves the stored record as it was.
func (p *Policy) Apply(order *domain.Order, actor Actor, change Change) (*domain.Order, error) {
	if order == nil {
		return nil, apperrors.NewValidationError("order is required")
	}
	if change.empty() {
		return nil, apperrors.NewValidationError("nothing to update")
	}
	if change.Action == ActionCreate || change.Action == ActionDelete {
		return nil, apperrors.NewValidationError(fmt.Sprintf("action %q is not an update", change.Action),
			apperrors.ValidationDetail{Field: "action", Message: "use the create or delete endpoint"})
	}

	current, ok := domain.ParseStatus(string(order.Status))
	if !ok {
		return nil, apperrors.NewConflictError(fmt.Sprintf("order has unknown status %q", order.Status))
	}

	staged := order.Clone()
	staged.Status = current

	if change.AssistantID != nil {
		if change.Action == "" {
			change.Action = ActionAssign
		}
		if change.Action != ActionAssign {
			return nil, apperrors.NewValidationError("assistantId is changed by the assign action",
				apperrors.ValidationDetail{Field: "assistantId", Message: "send it with action assign"})
		}
		staged.AssistantID = *change.AssistantID
	}

	if change.Booking != nil {
		if err := p.stageBooking(staged, actor, change.Booking); err != nil {
			return nil, err
		}
	}
	if change.Commercial != nil {
		if err := p.stageCommercial(staged, actor, change.Commercial); err != nil {
			return nil, err
		}
	}
	if change.Operational != nil {
		if err := p.stageOperational(staged, actor, change.Operational); err != nil {
			return nil, err
		}
	}

	if change.Action != "" {
		next, err := p.Transition(staged, actor.Role, change.Action)
		if err != nil {
			return nil, err
		}
		staged.Status = next
	}

	if err := CheckInvariants(staged); err != nil {
		return nil, err
	}
	return staged, nil
}

func (p *Policy) stageBooking(o *domain.Order, actor Actor, c *BookingChange) error {
	if !p.perms.Can(actor.Role, authz.ResourceOrderBooking, authz.ActionWrite) {
		return apperrors.NewForbiddenError(fmt.Sprintf("role %s cannot edit booking details", actor.Role))
	}
	if actor.Role == domain.RoleCustomer {
		if o.CustomerID != actor.ID {
			return apperrors.NewForbiddenError("customers can only edit their own orders")
		}
		if o.Status != domain.StatusPending {
			return apperrors.NewConflictError("booking details are locked once the order is under review")
		}
	}
	if o.Status != domain.StatusPending && o.Status != domain.StatusReview {
		return apperrors.NewConflictError(fmt.Sprintf("booking details are locked in status %s", o.Status))
	}

	setString(&o.BranchID, c.BranchID)
	setString(&o.BookedCompanyName, c.BookedCompanyName)
	setString(&o.BookedCustomerName, c.BookedCustomerName)
	setString(&o.BookedEmail, c.BookedEmail)
	setString(&o.BookedPhoneNumber, c.BookedPhoneNumber)
	if c.Pickups != nil {
		o.Pickups = append([]domain.PickUp(nil), c.Pickups...)
	}
	if c.Deliveries != nil {
		o.Deliveries = append([]domain.Delivery(nil), c.Deliveries...)
	}
	if c.Packages != nil {
		o.Packages = append([]domain.Package(nil), c.Packages...)
	}
	if c.Vehicles != nil {
		o.Vehicles = append([]domain.Vehicle(nil), c.Vehicles...)
	}
	return nil
}

func (p *Policy) stageCommercial(o *domain.Order, actor Actor, c *CommercialChange) error {
	if !p.perms.Can(actor.Role, authz.ResourceOrderCommercial, authz.ActionWrite) {
		return apperrors.NewForbiddenError(fmt.Sprintf("role %s cannot change commercial fields", actor.Role))
	}
	if o.Status == domain.StatusRejected {
		return apperrors.NewConflictError("rejected orders cannot be re-quoted")
	}

	if c.Rate != nil {
		o.Rate = *c.Rate
		if c.RateQuotedBy == nil {
			o.RateQuotedBy = actor.ID
		}
	}
	setString(&o.RateQuotedBy, c.RateQuotedBy)
	setString(&o.Notes, c.Notes)
	return nil
}

func (p *Policy) stageOperational(o *domain.Order, actor Actor, c *OperationalChange) error {
	if !p.perms.Can(actor.Role, authz.ResourceOrderOperational, authz.ActionWrite) {
		return apperrors.NewForbiddenError(fmt.Sprintf("role %s cannot attach operational data", actor.Role))
	}
	if o.Status == domain.StatusRejected {
		return apperrors.NewConflictError("rejected orders cannot be changed")
	}

	setString(&o.VehicleNumber, c.VehicleNumber)
	setString(&o.DriverName, c.DriverName)
	setString(&o.DriverMobile, c.DriverMobile)
	setString(&o.PickupTeamNotes, c.PickupTeamNotes)
	if c.Documents != nil {
		mergeDocuments(&o.Documents, *c.Documents)
	}
	return nil
}

// mergeDocuments copies the non-empty fields of in onto dst so separate
// uploads (e-way bill, then LR) accumulate.
func mergeDocuments(dst *domain.Documents, in domain.Documents) {
	merge := func(d *string, v string) {
		if v != "" {
			*d = v
		}
	}
	merge(&dst.EwayBillNumber, in.EwayBillNumber)
	merge(&dst.EwayBillURL, in.EwayBillURL)
	merge(&dst.PackageListURL, in.PackageListURL)
	merge(&dst.LRNumber, in.LRNumber)
	merge(&dst.LRURL, in.LRURL)
	merge(&dst.PODURL, in.PODURL)
	merge(&dst.IODURL, in.IODURL)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
