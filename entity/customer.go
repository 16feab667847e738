package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/errs"
)

// Customer represents a customer profile linked to a base User. The wallet
// balance only moves through CreditWallet and DebitWallet so reconciliation
// stays in one place.
type Customer struct {
	ID                 uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID      `json:"user_id" gorm:"type:uuid;index;not null"`
	Name               string         `json:"name" gorm:"type:text;not null"`
	Email              string         `json:"email" gorm:"type:text;uniqueIndex;not null"`
	Phone              string         `json:"phone" gorm:"type:text;index"`
	WalletBalanceCents int64          `json:"wallet_balance_cents" gorm:"type:bigint;not null;default:0"`
	Active             bool           `json:"active" gorm:"index"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}

func NewCustomer(userID uuid.UUID, name, email, phone string) *Customer {
	return &Customer{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Email:  email,
		Phone:  phone,
		Active: true,
	}
}

func (c *Customer) CreditWallet(amountCents int64) {
	if amountCents > 0 {
		c.WalletBalanceCents += amountCents
	}
}

// DebitWallet withdraws a wallet payment. The balance never goes negative.
func (c *Customer) DebitWallet(amountCents int64) error {
	if amountCents <= 0 {
		return errs.Validation("debit amount must be positive")
	}
	if c.WalletBalanceCents < amountCents {
		return errs.State("insufficient wallet balance")
	}
	c.WalletBalanceCents -= amountCents
	return nil
}
