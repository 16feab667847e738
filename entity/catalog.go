package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is a catalog entry (e.g. "Deep Cleaning"). Orders snapshot the
// price and duration at checkout, so editing a Service never changes the
// totals of existing orders.
type Service struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name            string         `json:"name" gorm:"type:text;uniqueIndex;not null"`
	PriceCents      int64          `json:"price_cents" gorm:"type:bigint;not null"`
	DurationMinutes int            `json:"duration_minutes" gorm:"not null;default:60"`
	Active          bool           `json:"active" gorm:"index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

func NewService(name string, priceCents int64, durationMinutes int) *Service {
	return &Service{
		ID:              uuid.New(),
		Name:            name,
		PriceCents:      priceCents,
		DurationMinutes: durationMinutes,
		Active:          true,
	}
}

// TimeSlot is an admin-configured scheduling window shown at checkout.
type TimeSlot struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Label     string         `json:"label" gorm:"type:text;not null"` // e.g. "09:00 - 12:00"
	StartHour int            `json:"start_hour" gorm:"not null"`
	EndHour   int            `json:"end_hour" gorm:"not null"`
	Active    bool           `json:"active" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func NewTimeSlot(label string, startHour, endHour int) *TimeSlot {
	return &TimeSlot{ID: uuid.New(), Label: label, StartHour: startHour, EndHour: endHour, Active: true}
}
