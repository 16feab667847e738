package order

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/entity"
)

// Repository specifies order database operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, o *entity.Order) (*entity.Order, error)
	// GetByID loads the order with its item snapshot lines.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Order, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]entity.Order, error)
	// ListAvailable returns unassigned orders in requested status, oldest
	// first. Always read fresh; this feed drives driver competition.
	ListAvailable(ctx context.Context) ([]entity.Order, error)
	Save(ctx context.Context, o *entity.Order) error

	// AssignDriverCAS claims the order for the driver with a conditional
	// update (unassigned and requested). It reports whether the claim won.
	AssignDriverCAS(ctx context.Context, orderID, driverID uuid.UUID) (bool, error)
	// ReleaseToPool strips the assignment and puts an in-flight order back
	// in the open pool. Administrative repair used when a driver is revoked.
	ReleaseToPool(ctx context.Context, orderID uuid.UUID) error
}
