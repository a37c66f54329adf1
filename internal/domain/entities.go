package domain

import "time"

type Branch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
}

type EnquiryStatus string

const (
	EnquiryPending    EnquiryStatus = "Pending"
	EnquiryInProgress EnquiryStatus = "In Progress"
	EnquiryCompleted  EnquiryStatus = "Completed"
)

func (s EnquiryStatus) Valid() bool {
	switch s {
	case EnquiryPending, EnquiryInProgress, EnquiryCompleted:
		return true
	}
	return false
}

type Enquiry struct {
	ID        string        `json:"id"`
	Company   string        `json:"company"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Message   string        `json:"message"`
	Role      string        `json:"role"`
	Status    EnquiryStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	BranchID     string    `json:"branchId,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
