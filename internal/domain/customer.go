package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the identity record loans and payments snapshot from.
type Customer struct {
	ID          uuid.UUID `json:"id" db:"id"`
	FullName    string    `json:"full_name" db:"full_name"`
	NRCNumber   string    `json:"nrc_number" db:"nrc_number"`
	PhoneNumber string    `json:"phone_number,omitempty" db:"phone_number"`
	Employer    string    `json:"employer,omitempty" db:"employer"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type CreateCustomerRequest struct {
	FullName    string `json:"full_name" validate:"required,min=2"`
	NRCNumber   string `json:"nrc_number" validate:"required"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Employer    string `json:"employer,omitempty"`
}
