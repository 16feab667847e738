package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InitiateResult is what the gateway hands back when a transaction is
// opened: the reference the webhook will later carry, and where to send the
// customer to complete the payment.
type InitiateResult struct {
	TransactionRef string
	PaymentURL     string
}

// Gateway opens transactions with the external payment provider. Settlement
// always arrives asynchronously through the webhook, never through the
// return value.
type Gateway interface {
	CreateTransaction(ctx context.Context, amountCents int64, currency string) (InitiateResult, error)
}

// SandboxGateway is the development gateway: it fabricates transaction refs
// locally and never talks to a provider. Webhooks against it are driven by
// tests or manual curl.
type SandboxGateway struct {
	BaseURL string
}

func NewSandboxGateway(baseURL string) *SandboxGateway {
	if baseURL == "" {
		baseURL = "https://sandbox.gateway.invalid/pay"
	}
	return &SandboxGateway{BaseURL: baseURL}
}

func (g *SandboxGateway) CreateTransaction(ctx context.Context, amountCents int64, currency string) (InitiateResult, error) {
	ref := "sbx-" + uuid.NewString()
	return InitiateResult{
		TransactionRef: ref,
		PaymentURL:     fmt.Sprintf("%s?ref=%s&amount=%d&currency=%s", g.BaseURL, ref, amountCents, currency),
	}, nil
}
