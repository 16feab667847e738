package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/entity"
)

// Repository specifies cart database operations. Carts are single-writer
// (only the owning customer), so there is no cross-actor contention here.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// GetOrCreate returns the customer's cart, creating an empty one on
	// first use. Items are always loaded.
	GetOrCreate(ctx context.Context, customerID uuid.UUID) (*entity.Cart, error)
	// Get returns the cart with items, or a not-found error.
	Get(ctx context.Context, customerID uuid.UUID) (*entity.Cart, error)

	UpsertItem(ctx context.Context, cartID, serviceID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, serviceID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}
