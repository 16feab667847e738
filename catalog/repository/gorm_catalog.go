package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/catalog"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
)

// GormCatalogRepo implements catalog.Repository using GORM.
type GormCatalogRepo struct {
	db *gorm.DB
}

func NewGormCatalogRepo(db *gorm.DB) catalog.Repository {
	return &GormCatalogRepo{db: db}
}

func (r *GormCatalogRepo) WithTx(tx *gorm.DB) catalog.Repository {
	return &GormCatalogRepo{db: tx}
}

func (r *GormCatalogRepo) GetServiceByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	var s entity.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ? AND active = ?", id, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.KindNotFound, "service %s not found", id)
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormCatalogRepo) ListActiveServices(ctx context.Context) ([]entity.Service, error) {
	var services []entity.Service
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("name").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *GormCatalogRepo) GetTimeSlotByID(ctx context.Context, id uuid.UUID) (*entity.TimeSlot, error) {
	var t entity.TimeSlot
	if err := r.db.WithContext(ctx).First(&t, "id = ? AND active = ?", id, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.KindNotFound, "time slot %s not found", id)
		}
		return nil, err
	}
	return &t, nil
}

func (r *GormCatalogRepo) ListActiveTimeSlots(ctx context.Context) ([]entity.TimeSlot, error) {
	var slots []entity.TimeSlot
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("start_hour").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *GormCatalogRepo) CreateService(ctx context.Context, s *entity.Service) (*entity.Service, error) {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *GormCatalogRepo) CreateTimeSlot(ctx context.Context, t *entity.TimeSlot) (*entity.TimeSlot, error) {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}
