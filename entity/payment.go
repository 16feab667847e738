package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/errs"
)

// PaymentStatus enumerates a payment's reconciliation state.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// Payment records one gateway transaction. TransactionRef is the
// gateway-assigned id and the webhook idempotency key; the unique index is
// what serializes concurrent duplicate deliveries.
type Payment struct {
	ID             uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID        *uuid.UUID    `json:"order_id,omitempty" gorm:"type:uuid;index;default:null"` // nil = wallet top-up
	CustomerID     uuid.UUID     `json:"customer_id" gorm:"type:uuid;index;not null"`
	TransactionRef string        `json:"transaction_ref" gorm:"type:text;uniqueIndex;not null"`
	AmountCents    int64         `json:"amount_cents" gorm:"type:bigint;not null"`
	Method         PaymentMethod `json:"method" gorm:"type:text;not null"`
	Status         PaymentStatus `json:"status" gorm:"type:text;index;not null;default:'pending'"`
	ProcessedAt    *time.Time    `json:"processed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func NewPayment(orderID *uuid.UUID, customerID uuid.UUID, transactionRef string, amountCents int64, method PaymentMethod) *Payment {
	return &Payment{
		ID:             uuid.New(),
		OrderID:        orderID,
		CustomerID:     customerID,
		TransactionRef: transactionRef,
		AmountCents:    amountCents,
		Method:         method,
		Status:         PaymentPending,
	}
}

// IsTerminal reports whether the payment outcome is already recorded.
// Reprocessing a terminal payment must be a no-op.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentSuccess || p.Status == PaymentFailed
}

func (p *Payment) MarkSuccess(now time.Time) error {
	if p.IsTerminal() {
		return errs.Newf(errs.KindState, "payment %s is already %s", p.TransactionRef, p.Status)
	}
	p.Status = PaymentSuccess
	p.ProcessedAt = &now
	return nil
}

func (p *Payment) MarkFailed(now time.Time) error {
	if p.IsTerminal() {
		return errs.Newf(errs.KindState, "payment %s is already %s", p.TransactionRef, p.Status)
	}
	p.Status = PaymentFailed
	p.ProcessedAt = &now
	return nil
}
