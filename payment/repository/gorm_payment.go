package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
	paymentpkg "github.com/m-atef1999/Spotless-sub000/payment"
)

// GormPaymentRepo implements payment.Repository using GORM.
type GormPaymentRepo struct {
	db *gorm.DB
}

func NewGormPaymentRepo(db *gorm.DB) paymentpkg.Repository {
	return &GormPaymentRepo{db: db}
}

func (r *GormPaymentRepo) WithTx(tx *gorm.DB) paymentpkg.Repository {
	return &GormPaymentRepo{db: tx}
}

func (r *GormPaymentRepo) StorePayment(ctx context.Context, p *entity.Payment) (*entity.Payment, error) {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *GormPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	var p entity.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("payment not found")
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormPaymentRepo) GetByTransactionRef(ctx context.Context, ref string) (*entity.Payment, error) {
	var p entity.Payment
	if err := r.db.WithContext(ctx).First(&p, "transaction_ref = ?", ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("payment not found")
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormPaymentRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (r *GormPaymentRepo) Save(ctx context.Context, p *entity.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}
