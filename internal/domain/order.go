package domain

import "time"

type Order struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customerId,omitempty"`
	BranchID    string `json:"branchId,omitempty"`
	AssistantID string `json:"assistantId,omitempty"`
	CreatedByID string `json:"createdById,omitempty"`

	BookedCompanyName  string `json:"bookedCompanyName"`
	BookedCustomerName string `json:"bookedCustomerName"`
	BookedEmail        string `json:"bookedEmail"`
	BookedPhoneNumber  string `json:"bookedPhoneNumber"`

	Pickups    []PickUp   `json:"pickups"`
	Deliveries []Delivery `json:"deliveries"`
	Packages   []Package  `json:"packages"`
	Vehicles   []Vehicle  `json:"vehicles"`

	Rate         float64 `json:"rate"`
	RateQuotedBy string  `json:"rateQuotedBy,omitempty"`
	Notes        string  `json:"notes,omitempty"`

	VehicleNumber   string    `json:"vehicleNumber,omitempty"`
	DriverName      string    `json:"driverName,omitempty"`
	DriverMobile    string    `json:"driverMobile,omitempty"`
	PickupTeamNotes string    `json:"pickupTeamNotes,omitempty"`
	Documents       Documents `json:"documents"`

	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PickUp struct {
	CompanyName  string     `json:"companyName"`
	ContactName  string     `json:"contactName"`
	ContactPhone string     `json:"contactPhone"`
	Address      string     `json:"address"`
	Location     string     `json:"location"`
	Pincode      string     `json:"pincode"`
	PickupDate   *time.Time `json:"pickupDate,omitempty"`
}

type Delivery struct {
	CompanyName  string `json:"companyName"`
	ContactName  string `json:"contactName"`
	ContactPhone string `json:"contactPhone"`
	Address      string `json:"address"`
	Location     string `json:"location"`
	Pincode      string `json:"pincode"`
}

type Package struct {
	Count         int         `json:"count"`
	WeightKg      float64     `json:"weightKg"`
	TotalWeightKg float64     `json:"totalWeightKg"`
	Dimensions    *Dimensions `json:"dimensions,omitempty"`
}

type Dimensions struct {
	LengthCm float64 `json:"lengthCm"`
	WidthCm  float64 `json:"widthCm"`
	HeightCm float64 `json:"heightCm"`
}

// LoadingType is the shipment sizing service: full or part truckload.
type LoadingType string

const (
	LoadingFTL LoadingType = "FTL"
	LoadingPTL LoadingType = "PTL"
)

type Vehicle struct {
	Type        string      `json:"type"`
	LoadingType LoadingType `json:"loadingType"`
	Model       string      `json:"model,omitempty"`
}

// Documents are attached by the LR team: e-way bill, package list, lorry
// receipt and the delivery proofs.
type Documents struct {
	EwayBillNumber string `json:"ewayBillNumber,omitempty"`
	EwayBillURL    string `json:"ewayBillUrl,omitempty"`
	PackageListURL string `json:"packageListUrl,omitempty"`
	LRNumber       string `json:"lrNumber,omitempty"`
	LRURL          string `json:"lrUrl,omitempty"`
	PODURL         string `json:"podUrl,omitempty"`
	IODURL         string `json:"iodUrl,omitempty"`
}

// Clone returns a deep copy so callers can stage changes without touching
// the stored record.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Pickups = append([]PickUp(nil), o.Pickups...)
	for i := range c.Pickups {
		if d := c.Pickups[i].PickupDate; d != nil {
			t := *d
			c.Pickups[i].PickupDate = &t
		}
	}
	c.Deliveries = append([]Delivery(nil), o.Deliveries...)
	c.Packages = append([]Package(nil), o.Packages...)
	for i := range c.Packages {
		if d := c.Packages[i].Dimensions; d != nil {
			dim := *d
			c.Packages[i].Dimensions = &dim
		}
	}
	c.Vehicles = append([]Vehicle(nil), o.Vehicles...)
	return &c
}

// HasDriverAssignment reports whether vehicle and driver are all filled in.
func (o *Order) HasDriverAssignment() bool {
	return o.VehicleNumber != "" && o.DriverName != "" && o.DriverMobile != ""
}
