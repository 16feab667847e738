package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m-atef1999/Spotless-sub000/auth"
	"github.com/m-atef1999/Spotless-sub000/entity"
)

// CheckoutRequest carries the scheduling and address details for turning a
// cart into an order. Prices are never part of the request; they are read
// from the catalog server-side.
type CheckoutRequest struct {
	TimeSlotID    uuid.UUID            `json:"time_slot_id" binding:"required"`
	ScheduledDate time.Time            `json:"scheduled_date" binding:"required"`
	PaymentMethod entity.PaymentMethod `json:"payment_method" binding:"required"`

	PickupAddress   string   `json:"pickup_address" binding:"required"`
	PickupLat       *float64 `json:"pickup_lat"`
	PickupLng       *float64 `json:"pickup_lng"`
	DeliveryAddress string   `json:"delivery_address" binding:"required"`
	DeliveryLat     *float64 `json:"delivery_lat"`
	DeliveryLng     *float64 `json:"delivery_lng"`
}

// BuyNowRequest orders a single service directly, bypassing the cart.
type BuyNowRequest struct {
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
	CheckoutRequest
}

// Notifier pushes order events to connected clients. Satisfied by the
// realtime hub; delivery is best-effort.
type Notifier interface {
	NotifyCustomer(customerID uuid.UUID, event string, payload any)
	NotifyDriver(driverID uuid.UUID, event string, payload any)
}

// Service exposes the order lifecycle.
type Service interface {
	// Checkout converts the customer's cart into a requested order and
	// clears the cart.
	Checkout(ctx context.Context, customerID uuid.UUID, req CheckoutRequest) (*entity.Order, error)
	// BuyNow creates an order for one service without touching the cart.
	BuyNow(ctx context.Context, customerID uuid.UUID, req BuyNowRequest) (*entity.Order, error)

	Get(ctx context.Context, p *auth.Principal, orderID uuid.UUID) (*entity.Order, error)
	ListMine(ctx context.Context, customerID uuid.UUID) ([]entity.Order, error)
	ListForDriver(ctx context.Context, driverID uuid.UUID) ([]entity.Order, error)
	// ListAvailable is the open-order feed drivers browse before applying.
	ListAvailable(ctx context.Context) ([]entity.Order, error)

	// Cancel is the customer-side cancellation. Assigned drivers are
	// released back to the available pool.
	Cancel(ctx context.Context, customerID, orderID uuid.UUID) (*entity.Order, error)
	// UpdateStatus is the assigned driver's progression: confirmed ->
	// in_cleaning -> delivered. Delivery releases the driver.
	UpdateStatus(ctx context.Context, driverID, orderID uuid.UUID, to entity.OrderStatus) (*entity.Order, error)
}
