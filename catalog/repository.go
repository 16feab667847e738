package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/entity"
)

// Repository specifies read access to the service catalog and time slots.
// The catalog itself is maintained elsewhere; checkout only ever reads it.
type Repository interface {
	// WithTx returns a repository bound to the given transaction handle so
	// catalog reads during checkout share the command's transaction scope.
	WithTx(tx *gorm.DB) Repository

	GetServiceByID(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	ListActiveServices(ctx context.Context) ([]entity.Service, error)
	GetTimeSlotByID(ctx context.Context, id uuid.UUID) (*entity.TimeSlot, error)
	ListActiveTimeSlots(ctx context.Context) ([]entity.TimeSlot, error)

	// Seeding hooks used by admin tooling and tests.
	CreateService(ctx context.Context, s *entity.Service) (*entity.Service, error)
	CreateTimeSlot(ctx context.Context, t *entity.TimeSlot) (*entity.TimeSlot, error)
}
