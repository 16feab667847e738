package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	driverpkg "github.com/m-atef1999/Spotless-sub000/driver"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
)

// GormDriverRepo implements driver.Repository using GORM.
type GormDriverRepo struct {
	db *gorm.DB
}

func NewGormDriverRepo(db *gorm.DB) driverpkg.Repository {
	return &GormDriverRepo{db: db}
}

func (r *GormDriverRepo) WithTx(tx *gorm.DB) driverpkg.Repository {
	return &GormDriverRepo{db: tx}
}

func (r *GormDriverRepo) StoreDriver(ctx context.Context, d *entity.Driver) (*entity.Driver, error) {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (r *GormDriverRepo) GetDriverByID(ctx context.Context, id uuid.UUID) (*entity.Driver, error) {
	return r.firstDriver(ctx, "id = ?", id)
}

func (r *GormDriverRepo) GetDriverByEmail(ctx context.Context, email string) (*entity.Driver, error) {
	return r.firstDriver(ctx, "email = ?", email)
}

func (r *GormDriverRepo) GetDriverByUserID(ctx context.Context, userID uuid.UUID) (*entity.Driver, error) {
	return r.firstDriver(ctx, "user_id = ?", userID)
}

func (r *GormDriverRepo) GetDriverByApplicationID(ctx context.Context, applicationID uuid.UUID) (*entity.Driver, error) {
	return r.firstDriver(ctx, "application_id = ?", applicationID)
}

func (r *GormDriverRepo) firstDriver(ctx context.Context, query string, arg any) (*entity.Driver, error) {
	var d entity.Driver
	if err := r.db.WithContext(ctx).First(&d, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("driver not found")
		}
		return nil, err
	}
	return &d, nil
}

func (r *GormDriverRepo) SaveDriver(ctx context.Context, d *entity.Driver) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *GormDriverRepo) ListDrivers(ctx context.Context) ([]entity.Driver, error) {
	var drivers []entity.Driver
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&drivers).Error
	return drivers, err
}

func (r *GormDriverRepo) ListAvailableDrivers(ctx context.Context) ([]entity.Driver, error) {
	var drivers []entity.Driver
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.DriverAvailable).
		Order("created_at ASC").
		Find(&drivers).Error
	return drivers, err
}

func (r *GormDriverRepo) StoreApplication(ctx context.Context, a *entity.DriverApplication) (*entity.DriverApplication, error) {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *GormDriverRepo) GetApplicationByID(ctx context.Context, id uuid.UUID) (*entity.DriverApplication, error) {
	var a entity.DriverApplication
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("driver application not found")
		}
		return nil, err
	}
	return &a, nil
}

func (r *GormDriverRepo) LatestApplicationByCustomer(ctx context.Context, customerID uuid.UUID) (*entity.DriverApplication, error) {
	var a entity.DriverApplication
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("no application for this customer")
		}
		return nil, err
	}
	return &a, nil
}

func (r *GormDriverRepo) ListApplications(ctx context.Context, status entity.ApplicationStatus) ([]entity.DriverApplication, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var apps []entity.DriverApplication
	err := q.Find(&apps).Error
	return apps, err
}

func (r *GormDriverRepo) SaveApplication(ctx context.Context, a *entity.DriverApplication) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *GormDriverRepo) StoreOrderApplication(ctx context.Context, a *entity.OrderDriverApplication) (*entity.OrderDriverApplication, error) {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *GormDriverRepo) GetOrderApplicationByID(ctx context.Context, id uuid.UUID) (*entity.OrderDriverApplication, error) {
	var a entity.OrderDriverApplication
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("order application not found")
		}
		return nil, err
	}
	return &a, nil
}

func (r *GormDriverRepo) ListPendingByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.OrderDriverApplication, error) {
	var apps []entity.OrderDriverApplication
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, entity.OrderApplicationPending).
		Order("applied_at ASC").
		Find(&apps).Error
	return apps, err
}

func (r *GormDriverRepo) ListOrderApplicationsByDriver(ctx context.Context, driverID uuid.UUID) ([]entity.OrderDriverApplication, error) {
	var apps []entity.OrderDriverApplication
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *GormDriverRepo) SaveOrderApplication(ctx context.Context, a *entity.OrderDriverApplication) error {
	return r.db.WithContext(ctx).Save(a).Error
}
