package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/errs"
)

// DriverStatus enumerates a driver's availability state.
type DriverStatus string

const (
	DriverOffline         DriverStatus = "offline"
	DriverAvailable       DriverStatus = "available"
	DriverBusy            DriverStatus = "busy" // fulfilling exactly one in-progress order
	DriverPendingApproval DriverStatus = "pending_approval"
	DriverRejected        DriverStatus = "rejected"
	DriverRevoked         DriverStatus = "revoked"
)

// Driver stores driver-specific data. Created either directly by an admin or
// lazily materialized from an approved DriverApplication.
type Driver struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	Email       string       `json:"email" gorm:"type:text;uniqueIndex;not null"`
	Phone       string       `json:"phone" gorm:"type:text"`
	VehicleInfo string       `json:"vehicle_info" gorm:"type:text"`
	Status      DriverStatus `json:"status" gorm:"type:text;index;not null;default:'offline'"`

	// Back-links for identity resolution.
	UserID        *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index;default:null"`
	ApplicationID *uuid.UUID `json:"application_id,omitempty" gorm:"type:uuid;index;default:null"`

	Latitude          *float64   `json:"latitude,omitempty" gorm:"type:double precision"`
	Longitude         *float64   `json:"longitude,omitempty" gorm:"type:double precision"`
	LocationUpdatedAt *time.Time `json:"location_updated_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func NewDriver(name, email, phone, vehicleInfo string) *Driver {
	return &Driver{
		ID:          uuid.New(),
		Name:        name,
		Email:       email,
		Phone:       phone,
		VehicleInfo: vehicleInfo,
		Status:      DriverOffline,
	}
}

// MarkBusy transitions an Available driver to Busy for an assignment.
func (d *Driver) MarkBusy() error {
	if d.Status != DriverAvailable {
		return errs.Newf(errs.KindState, "driver in status %s cannot take an order", d.Status)
	}
	d.Status = DriverBusy
	return nil
}

// Activate puts the driver into rotation, ready for assignment.
func (d *Driver) Activate() error {
	if d.Status == DriverRevoked {
		return errs.State("driver access has been revoked")
	}
	d.Status = DriverAvailable
	return nil
}

// Release returns a Busy driver to Available (order cancelled, delivered, or
// assignment cleared).
func (d *Driver) Release() {
	if d.Status == DriverBusy {
		d.Status = DriverAvailable
	}
}

// UpdateStatus applies a self-service or admin status change. Revoked is a
// terminal state only Revoke can set; revoked drivers cannot self-reactivate.
func (d *Driver) UpdateStatus(to DriverStatus) error {
	if d.Status == DriverRevoked {
		return errs.State("driver access has been revoked")
	}
	switch to {
	case DriverOffline, DriverAvailable, DriverBusy:
		d.Status = to
		return nil
	default:
		return errs.Newf(errs.KindValidation, "status %s cannot be set directly", to)
	}
}

func (d *Driver) Revoke() {
	d.Status = DriverRevoked
}

// ApplicationStatus enumerates a driver application's review state.
type ApplicationStatus string

const (
	ApplicationSubmitted ApplicationStatus = "submitted"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
)

// DriverApplication is a customer's request to become a driver. It moves
// Submitted -> {Approved, Rejected} exactly once; an Approved application is
// immutable (the Driver is its materialization).
type DriverApplication struct {
	ID              uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	CustomerID      uuid.UUID         `json:"customer_id" gorm:"type:uuid;index;not null"`
	VehicleInfo     string            `json:"vehicle_info" gorm:"type:text;not null"`
	Status          ApplicationStatus `json:"status" gorm:"type:text;index;not null;default:'submitted'"`
	RejectionReason string            `json:"rejection_reason,omitempty" gorm:"type:text"`
	DecidedAt       *time.Time        `json:"decided_at,omitempty"`
	DecidedBy       *uuid.UUID        `json:"decided_by,omitempty" gorm:"type:uuid;default:null"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	DeletedAt       gorm.DeletedAt    `json:"-" gorm:"index"`
}

func NewDriverApplication(customerID uuid.UUID, vehicleInfo string) *DriverApplication {
	return &DriverApplication{
		ID:          uuid.New(),
		CustomerID:  customerID,
		VehicleInfo: vehicleInfo,
		Status:      ApplicationSubmitted,
	}
}

func (a *DriverApplication) Approve(adminID uuid.UUID, now time.Time) error {
	if a.Status != ApplicationSubmitted {
		return errs.Newf(errs.KindState, "application is already %s", a.Status)
	}
	a.Status = ApplicationApproved
	a.DecidedAt = &now
	id := adminID
	a.DecidedBy = &id
	return nil
}

func (a *DriverApplication) Reject(adminID uuid.UUID, reason string, now time.Time) error {
	if a.Status != ApplicationSubmitted {
		return errs.Newf(errs.KindState, "application is already %s", a.Status)
	}
	a.Status = ApplicationRejected
	a.RejectionReason = reason
	a.DecidedAt = &now
	id := adminID
	a.DecidedBy = &id
	return nil
}

// OrderApplicationStatus enumerates a driver bid's state.
type OrderApplicationStatus string

const (
	OrderApplicationPending  OrderApplicationStatus = "pending"
	OrderApplicationAccepted OrderApplicationStatus = "accepted"
	OrderApplicationRejected OrderApplicationStatus = "rejected"
)

// OrderDriverApplication is a driver's pull-request to fulfill an open
// order. At most one Accepted application exists per order.
type OrderDriverApplication struct {
	ID        uuid.UUID              `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID              `json:"order_id" gorm:"type:uuid;index:idx_order_driver,unique;not null"`
	DriverID  uuid.UUID              `json:"driver_id" gorm:"type:uuid;index:idx_order_driver,unique;not null"`
	Status    OrderApplicationStatus `json:"status" gorm:"type:text;index;not null;default:'pending'"`
	AppliedAt time.Time              `json:"applied_at"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func NewOrderDriverApplication(orderID, driverID uuid.UUID, now time.Time) *OrderDriverApplication {
	return &OrderDriverApplication{
		ID:        uuid.New(),
		OrderID:   orderID,
		DriverID:  driverID,
		Status:    OrderApplicationPending,
		AppliedAt: now,
	}
}

func (a *OrderDriverApplication) Accept() error {
	if a.Status != OrderApplicationPending {
		return errs.Newf(errs.KindState, "order application is already %s", a.Status)
	}
	a.Status = OrderApplicationAccepted
	return nil
}

func (a *OrderDriverApplication) Reject() error {
	if a.Status != OrderApplicationPending {
		return errs.Newf(errs.KindState, "order application is already %s", a.Status)
	}
	a.Status = OrderApplicationRejected
	return nil
}
