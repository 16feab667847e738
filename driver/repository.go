package driver

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/entity"
)

// Repository specifies driver, driver-application, and order-application
// database operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	StoreDriver(ctx context.Context, d *entity.Driver) (*entity.Driver, error)
	GetDriverByID(ctx context.Context, id uuid.UUID) (*entity.Driver, error)
	GetDriverByEmail(ctx context.Context, email string) (*entity.Driver, error)
	GetDriverByUserID(ctx context.Context, userID uuid.UUID) (*entity.Driver, error)
	GetDriverByApplicationID(ctx context.Context, applicationID uuid.UUID) (*entity.Driver, error)
	SaveDriver(ctx context.Context, d *entity.Driver) error
	ListDrivers(ctx context.Context) ([]entity.Driver, error)
	ListAvailableDrivers(ctx context.Context) ([]entity.Driver, error)

	StoreApplication(ctx context.Context, a *entity.DriverApplication) (*entity.DriverApplication, error)
	GetApplicationByID(ctx context.Context, id uuid.UUID) (*entity.DriverApplication, error)
	// LatestApplicationByCustomer returns the newest application regardless
	// of status, or a not-found error.
	LatestApplicationByCustomer(ctx context.Context, customerID uuid.UUID) (*entity.DriverApplication, error)
	ListApplications(ctx context.Context, status entity.ApplicationStatus) ([]entity.DriverApplication, error)
	SaveApplication(ctx context.Context, a *entity.DriverApplication) error

	StoreOrderApplication(ctx context.Context, a *entity.OrderDriverApplication) (*entity.OrderDriverApplication, error)
	GetOrderApplicationByID(ctx context.Context, id uuid.UUID) (*entity.OrderDriverApplication, error)
	ListPendingByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.OrderDriverApplication, error)
	ListOrderApplicationsByDriver(ctx context.Context, driverID uuid.UUID) ([]entity.OrderDriverApplication, error)
	SaveOrderApplication(ctx context.Context, a *entity.OrderDriverApplication) error
}
