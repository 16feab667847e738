package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/errs"
)

// OrderStatus enumerates the lifecycle of an order.
type OrderStatus string

const (
	OrderRequested     OrderStatus = "requested"      // created, awaiting payment/assignment
	OrderConfirmed     OrderStatus = "confirmed"      // paid or driver assigned
	OrderInCleaning    OrderStatus = "in_cleaning"    // driver picked up, service in progress
	OrderDelivered     OrderStatus = "delivered"      // completed and returned to customer
	OrderCancelled     OrderStatus = "cancelled"      // terminal; orders are never hard-deleted
	OrderPaymentFailed OrderStatus = "payment_failed" // gateway reported failure
)

// orderTransitions is the allowed status graph. Terminal states map to an
// empty slice.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderRequested:     {OrderConfirmed, OrderCancelled, OrderPaymentFailed},
	OrderConfirmed:     {OrderInCleaning, OrderCancelled},
	OrderInCleaning:    {OrderDelivered},
	OrderPaymentFailed: {OrderConfirmed, OrderCancelled},
	OrderDelivered:     {},
	OrderCancelled:     {},
}

// CanTransition reports whether from -> to is an allowed order status change.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentWallet PaymentMethod = "wallet"
)

// Order captures a customer's scheduled service request. TotalPriceCents and
// the per-item unit prices are snapshots taken at creation; they are never
// recomputed from the live catalog.
type Order struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID  `json:"customer_id" gorm:"type:uuid;index;not null"`
	DriverID   *uuid.UUID `json:"driver_id,omitempty" gorm:"type:uuid;index;default:null"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	TimeSlotID    uuid.UUID     `json:"time_slot_id" gorm:"type:uuid;not null"`
	ScheduledDate time.Time     `json:"scheduled_date" gorm:"not null"`
	PaymentMethod PaymentMethod `json:"payment_method" gorm:"type:text;not null"`

	PickupAddress   string   `json:"pickup_address" gorm:"type:text;not null"`
	PickupLat       *float64 `json:"pickup_lat,omitempty" gorm:"type:double precision"`
	PickupLng       *float64 `json:"pickup_lng,omitempty" gorm:"type:double precision"`
	DeliveryAddress string   `json:"delivery_address" gorm:"type:text;not null"`
	DeliveryLat     *float64 `json:"delivery_lat,omitempty" gorm:"type:double precision"`
	DeliveryLng     *float64 `json:"delivery_lng,omitempty" gorm:"type:double precision"`

	TotalPriceCents      int64 `json:"total_price_cents" gorm:"type:bigint;not null"`
	TotalDurationMinutes int   `json:"total_duration_minutes" gorm:"not null;default:0"`

	Status    OrderStatus    `json:"status" gorm:"type:text;index;not null;default:'requested'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// OrderItem is one cart line frozen at checkout time.
type OrderItem struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID `json:"order_id" gorm:"type:uuid;index;not null"`
	ServiceID       uuid.UUID `json:"service_id" gorm:"type:uuid;index;not null"`
	ServiceName     string    `json:"service_name" gorm:"type:text;not null"`
	UnitPriceCents  int64     `json:"unit_price_cents" gorm:"type:bigint;not null"`
	Quantity        int       `json:"quantity" gorm:"not null"`
	DurationMinutes int       `json:"duration_minutes" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
}

// SetStatus applies a status change, validating it against the transition
// table. All status mutations must go through here.
func (o *Order) SetStatus(to OrderStatus) error {
	if !CanTransition(o.Status, to) {
		return errs.Newf(errs.KindState, "invalid order status transition: %s -> %s", o.Status, to)
	}
	o.Status = to
	return nil
}

// AssignDriver binds a driver to the order. The repository-level
// compare-and-set is the real concurrency guard; this check catches misuse
// on already-loaded aggregates.
func (o *Order) AssignDriver(driverID uuid.UUID) error {
	if o.DriverID != nil {
		return errs.Conflict("order already has an assigned driver")
	}
	if o.Status != OrderRequested {
		return errs.Newf(errs.KindState, "order in status %s is not open for assignment", o.Status)
	}
	id := driverID
	o.DriverID = &id
	return nil
}

// ClearDriver removes the assignment, returning the order to the open pool.
func (o *Order) ClearDriver() {
	o.DriverID = nil
}

// CanCancel reports whether the order may be cancelled from its current
// status.
func (o *Order) CanCancel() bool {
	switch o.Status {
	case OrderRequested, OrderConfirmed, OrderPaymentFailed:
		return true
	default:
		return false
	}
}
