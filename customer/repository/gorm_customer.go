package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	customerpkg "github.com/m-atef1999/Spotless-sub000/customer"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
)

// GormCustomerRepo implements customer.Repository using GORM.
type GormCustomerRepo struct {
	db *gorm.DB
}

func NewGormCustomerRepo(db *gorm.DB) customerpkg.Repository {
	return &GormCustomerRepo{db: db}
}

func (r *GormCustomerRepo) WithTx(tx *gorm.DB) customerpkg.Repository {
	return &GormCustomerRepo{db: tx}
}

func (r *GormCustomerRepo) StoreUser(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (r *GormCustomerRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.KindNotFound, "user %s not found", id)
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormCustomerRepo) SaveUser(ctx context.Context, u *entity.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *GormCustomerRepo) StoreCustomer(ctx context.Context, c *entity.Customer) (*entity.Customer, error) {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *GormCustomerRepo) GetCustomerByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var c entity.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.KindNotFound, "customer %s not found", id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormCustomerRepo) GetCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	var c entity.Customer
	if err := r.db.WithContext(ctx).First(&c, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("customer not found for email")
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormCustomerRepo) SaveCustomer(ctx context.Context, c *entity.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *GormCustomerRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Customer{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
