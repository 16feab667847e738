package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/m-atef1999/Spotless-sub000/entity"
)

// InitiateResponse is returned to the client after opening a payment.
type InitiateResponse struct {
	Payment    *entity.Payment `json:"payment"`
	PaymentURL string          `json:"payment_url,omitempty"`
}

// Service exposes payment initiation and webhook reconciliation.
type Service interface {
	// InitiateOrderPayment opens payment for an order. Card payments go
	// through the gateway and settle via webhook; wallet payments settle
	// synchronously against the customer's balance.
	InitiateOrderPayment(ctx context.Context, customerID, orderID uuid.UUID) (*InitiateResponse, error)
	// InitiateTopUp opens a gateway transaction that credits the wallet on
	// webhook success.
	InitiateTopUp(ctx context.Context, customerID uuid.UUID, amountCents int64) (*InitiateResponse, error)

	// ProcessWebhook reconciles a signed gateway callback. Replays of a
	// settled transaction are acknowledged without effect.
	ProcessWebhook(ctx context.Context, payload WebhookPayload, signature string) (*entity.Payment, error)

	GetPayment(ctx context.Context, customerID, paymentID uuid.UUID) (*entity.Payment, error)
	ListMine(ctx context.Context, customerID uuid.UUID) ([]entity.Payment, error)
}
