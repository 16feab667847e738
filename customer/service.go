package customer

import (
	"context"

	"github.com/google/uuid"

	"github.com/m-atef1999/Spotless-sub000/entity"
)

// RegisterCustomerRequest carries the data required to register a customer
// profile. Credentials and token issuance are handled by the identity
// service; this only provisions the profile row.
type RegisterCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

// Service exposes customer-related business operations.
type Service interface {
	Register(ctx context.Context, req RegisterCustomerRequest) (*entity.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
}
