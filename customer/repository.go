package customer

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/entity"
)

// Repository specifies customer and base-user database operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	StoreUser(ctx context.Context, u *entity.User) (*entity.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	SaveUser(ctx context.Context, u *entity.User) error

	StoreCustomer(ctx context.Context, c *entity.Customer) (*entity.Customer, error)
	GetCustomerByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error)
	SaveCustomer(ctx context.Context, c *entity.Customer) error
	EmailExists(ctx context.Context, email string) (bool, error)
}
