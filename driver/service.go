package driver

import (
	"context"

	"github.com/google/uuid"

	"github.com/m-atef1999/Spotless-sub000/entity"
)

// CreateDriverRequest is the admin path for onboarding a driver directly,
// without an application.
type CreateDriverRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	VehicleInfo string `json:"vehicle_info"`
}

// Resolution reports how a driver reference was resolved. Materialized is
// true when resolution had to create the Driver row from an approved
// application.
type Resolution struct {
	DriverID      uuid.UUID
	ApplicationID *uuid.UUID
	Materialized  bool
}

// Notifier pushes driver-facing events to connected clients.
type Notifier interface {
	NotifyCustomer(customerID uuid.UUID, event string, payload any)
	NotifyDriver(driverID uuid.UUID, event string, payload any)
}

// Service exposes the driver marketplace: becoming a driver, bidding on
// orders, and admin assignment.
type Service interface {
	// SubmitApplication files a become-a-driver request. Customers with a
	// rejected application must wait out the cooldown before reapplying.
	SubmitApplication(ctx context.Context, customerID uuid.UUID, vehicleInfo string) (*entity.DriverApplication, error)
	GetMyApplication(ctx context.Context, customerID uuid.UUID) (*entity.DriverApplication, error)
	ListApplications(ctx context.Context, status entity.ApplicationStatus) ([]entity.DriverApplication, error)
	// ApproveApplication approves and immediately materializes the Driver.
	ApproveApplication(ctx context.Context, adminID, applicationID uuid.UUID) (*entity.Driver, error)
	RejectApplication(ctx context.Context, adminID, applicationID uuid.UUID, reason string) error

	CreateDriver(ctx context.Context, req CreateDriverRequest) (*entity.Driver, error)
	GetDriver(ctx context.Context, id uuid.UUID) (*entity.Driver, error)
	ListDrivers(ctx context.Context) ([]entity.Driver, error)
	ListAvailableDrivers(ctx context.Context) ([]entity.Driver, error)

	// AssignDriver is the admin push path. ref may be a driver id, a user
	// id, an application id, or an email; resolution may lazily materialize
	// the driver from an approved application.
	AssignDriver(ctx context.Context, orderID uuid.UUID, ref string) (*entity.Order, Resolution, error)

	// ApplyToOrder is the driver pull path: bid on an open order.
	ApplyToOrder(ctx context.Context, driverID, orderID uuid.UUID) (*entity.OrderDriverApplication, error)
	ListOrderApplications(ctx context.Context, orderID uuid.UUID) ([]entity.OrderDriverApplication, error)
	// AcceptOrderApplication accepts one bid, claims the order for that
	// driver, and rejects the remaining pending bids.
	AcceptOrderApplication(ctx context.Context, applicationID uuid.UUID) (*entity.Order, error)
	RejectOrderApplication(ctx context.Context, applicationID uuid.UUID) error

	UpdateStatus(ctx context.Context, driverID uuid.UUID, to entity.DriverStatus) (*entity.Driver, error)
	UpdateLocation(ctx context.Context, driverID uuid.UUID, lat, lng float64) error
	// Revoke bars the driver from the platform and frees any in-flight
	// assignment back to the open pool.
	Revoke(ctx context.Context, driverID uuid.UUID) error
}
