package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	cartpkg "github.com/m-atef1999/Spotless-sub000/cart"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
)

// GormCartRepo implements cart.Repository using GORM.
type GormCartRepo struct {
	db *gorm.DB
}

func NewGormCartRepo(db *gorm.DB) cartpkg.Repository {
	return &GormCartRepo{db: db}
}

func (r *GormCartRepo) WithTx(tx *gorm.DB) cartpkg.Repository {
	return &GormCartRepo{db: tx}
}

func (r *GormCartRepo) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*entity.Cart, error) {
	var c entity.Cart
	err := r.db.WithContext(ctx).Preload("Items").First(&c, "customer_id = ?", customerID).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := entity.NewCart(customerID)
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

func (r *GormCartRepo) Get(ctx context.Context, customerID uuid.UUID) (*entity.Cart, error) {
	var c entity.Cart
	if err := r.db.WithContext(ctx).Preload("Items").First(&c, "customer_id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("cart not found")
		}
		return nil, err
	}
	return &c, nil
}

// UpsertItem merges quantity into an existing line for the same service, or
// inserts a new line.
func (r *GormCartRepo) UpsertItem(ctx context.Context, cartID, serviceID uuid.UUID, quantity int) error {
	item := entity.NewCartItem(cartID, serviceID, quantity)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "service_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"quantity": gorm.Expr("quantity + ?", quantity)}),
	}).Create(item).Error
}

func (r *GormCartRepo) RemoveItem(ctx context.Context, cartID, serviceID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND service_id = ?", cartID, serviceID).
		Delete(&entity.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("cart item not found")
	}
	return nil
}

func (r *GormCartRepo) Clear(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&entity.CartItem{}).Error
}
