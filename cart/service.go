package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/m-atef1999/Spotless-sub000/entity"
)

// Service exposes cart operations. Checkout lives on the order service: it
// consumes the cart but owns order creation.
type Service interface {
	Get(ctx context.Context, customerID uuid.UUID) (*entity.Cart, error)
	AddItem(ctx context.Context, customerID, serviceID uuid.UUID, quantity int) (*entity.Cart, error)
	RemoveItem(ctx context.Context, customerID, serviceID uuid.UUID) (*entity.Cart, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
}
