package payment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/entity"
)

// Repository specifies payment database operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	StorePayment(ctx context.Context, p *entity.Payment) (*entity.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	// GetByTransactionRef is the webhook lookup path; the ref is the
	// idempotency key.
	GetByTransactionRef(ctx context.Context, ref string) (*entity.Payment, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Payment, error)
	Save(ctx context.Context, p *entity.Payment) error
}
