package dto

import "haulage/internal/domain"

type CreateBranchRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Location string `json:"location" validate:"required,max=200"`
}

type CreateEnquiryRequest struct {
	Company string `json:"company" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,numeric,min=7,max=15"`
	Message string `json:"message" validate:"required,max=4000"`
	Role    string `json:"role,omitempty" validate:"max=60"`
}

func (r CreateEnquiryRequest) ToDomain() *domain.Enquiry {
	return &domain.Enquiry{
		Company: r.Company,
		Email:   r.Email,
		Phone:   r.Phone,
		Message: r.Message,
		Role:    r.Role,
		Status:  domain.EnquiryPending,
	}
}

type UpdateEnquiryRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending 'In Progress' Completed"`
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
