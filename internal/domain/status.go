package domain

import "strings"

// Status is the lifecycle state of an order. Views never invent status
// strings; they go through ParseStatus and Label.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusReview    Status = "REVIEW"
	StatusApproved  Status = "APPROVED"
	StatusConfirmed Status = "CONFIRMED"
	StatusPickedUp  Status = "PICKED_UP"
	StatusRejected  Status = "REJECTED"
)

var allStatuses = []Status{
	StatusPending,
	StatusReview,
	StatusApproved,
	StatusConfirmed,
	StatusPickedUp,
	StatusRejected,
}

// Statuses returns every known status in workflow order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus normalises a raw status string. Empty input means PENDING.
// The loose display value "Completed" and unknown strings are rejected.
func ParseStatus(raw string) (Status, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return StatusPending, true
	}
	s = strings.ReplaceAll(s, " ", "_")
	for _, known := range allStatuses {
		if Status(s) == known {
			return known, true
		}
	}
	return "", false
}

// Quoted reports whether an order in s must carry a rate.
func (s Status) Quoted() bool {
	switch s {
	case StatusApproved, StatusConfirmed, StatusPickedUp:
		return true
	}
	return false
}

// Label is the human readable form the console prints.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusReview:
		return "In Review"
	case StatusApproved:
		return "Approved"
	case StatusConfirmed:
		return "Confirmed"
	case StatusPickedUp:
		return "Picked Up"
	case StatusRejected:
		return "Rejected"
	}
	return "Unknown"
}
