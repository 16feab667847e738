package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is a customer's pre-checkout staging area. One cart per customer;
// only the owning customer mutates it.
type Cart struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID      `json:"customer_id" gorm:"type:uuid;uniqueIndex;not null"`
	Items      []CartItem     `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func NewCart(customerID uuid.UUID) *Cart {
	return &Cart{ID: uuid.New(), CustomerID: customerID}
}

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// CartItem maps a catalog service to a quantity. Quantities are merged on
// repeated adds of the same service.
type CartItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CartID    uuid.UUID `json:"cart_id" gorm:"type:uuid;index:idx_cart_service,unique;not null"`
	ServiceID uuid.UUID `json:"service_id" gorm:"type:uuid;index:idx_cart_service,unique;not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCartItem(cartID, serviceID uuid.UUID, quantity int) *CartItem {
	return &CartItem{ID: uuid.New(), CartID: cartID, ServiceID: serviceID, Quantity: quantity}
}
