package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is the cache layer seen by the rest of the system. It is treated as
// external, concurrent-safe, and best-effort: callers must tolerate any
// method failing.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, keys ...string) error
}

// Well-known keys. Commands declare the keys they dirty; the pipeline
// removes them after a successful commit.
const (
	KeyServices         = "catalog:services"
	KeyTimeSlots        = "catalog:timeslots"
	KeyAvailableDrivers = "drivers:available"
)

// KeyOrder is the per-order detail cache key.
func KeyOrder(orderID uuid.UUID) string {
	return fmt.Sprintf("orders:%s", orderID)
}

// KeyCart is the per-customer cart cache key.
func KeyCart(customerID uuid.UUID) string {
	return fmt.Sprintf("carts:%s", customerID)
}
