package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the identity-provider record the core consumes. Token minting and
// password flows live outside this service; we only read the role and the
// profile links when resolving an authenticated actor.
type User struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string         `json:"email" gorm:"type:text;uniqueIndex;not null"`
	Role      string         `json:"role" gorm:"type:text;index;not null"` // "customer", "driver", "admin"
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Profile links. A user starts as a customer; DriverID is filled in
	// lazily once an approved application is materialized into a Driver.
	CustomerID *uuid.UUID `json:"customer_id,omitempty" gorm:"type:uuid;index;default:null"`
	DriverID   *uuid.UUID `json:"driver_id,omitempty" gorm:"type:uuid;index;default:null"`
}

func NewUser(email, role string) *User {
	return &User{ID: uuid.New(), Email: email, Role: role}
}

// LinkDriver records the user -> driver association created by lazy
// materialization. Idempotent for the same driver id.
func (u *User) LinkDriver(driverID uuid.UUID) {
	if u.DriverID == nil {
		id := driverID
		u.DriverID = &id
	}
}
