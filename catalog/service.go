package catalog

import (
	"context"

	"github.com/m-atef1999/Spotless-sub000/entity"
)

// Service exposes the cached catalog reads used by the storefront.
type Service interface {
	ListServices(ctx context.Context) ([]entity.Service, error)
	ListTimeSlots(ctx context.Context) ([]entity.TimeSlot, error)
}
