package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
	orderpkg "github.com/m-atef1999/Spotless-sub000/order"
)

// GormOrderRepo implements order.Repository using GORM.
type GormOrderRepo struct {
	db *gorm.DB
}

func NewGormOrderRepo(db *gorm.DB) orderpkg.Repository {
	return &GormOrderRepo{db: db}
}

func (r *GormOrderRepo) WithTx(tx *gorm.DB) orderpkg.Repository {
	return &GormOrderRepo{db: tx}
}

func (r *GormOrderRepo) CreateOrder(ctx context.Context, o *entity.Order) (*entity.Order, error) {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

func (r *GormOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var o entity.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("order not found")
		}
		return nil, err
	}
	return &o, nil
}

func (r *GormOrderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepo) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepo) ListAvailable(ctx context.Context) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("driver_id IS NULL AND status = ?", entity.OrderRequested).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepo) Save(ctx context.Context, o *entity.Order) error {
	return r.db.WithContext(ctx).Save(o).Error
}

// AssignDriverCAS claims the order in one conditional UPDATE. Losing the race
// (assigned meanwhile, or no longer requested) affects zero rows.
func (r *GormOrderRepo) AssignDriverCAS(ctx context.Context, orderID, driverID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("id = ? AND driver_id IS NULL AND status = ?", orderID, entity.OrderRequested).
		Update("driver_id", driverID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormOrderRepo) ReleaseToPool(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("id = ? AND status IN ?", orderID, []entity.OrderStatus{entity.OrderConfirmed, entity.OrderInCleaning}).
		Updates(map[string]interface{}{"driver_id": nil, "status": entity.OrderRequested}).Error
}
