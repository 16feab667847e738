package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strconv"
	"strings"
)

// WebhookPayload is the gateway's transaction callback body. Field order in
// CanonicalString is fixed by the gateway contract; changing it breaks every
// signature.
type WebhookPayload struct {
	TransactionID string `json:"id" binding:"required"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Success       bool   `json:"success"`
	ErrorOccured  bool   `json:"error_occured"`
	Pending       bool   `json:"pending"`
	CreatedAt     string `json:"created_at"`
}

// CanonicalString concatenates the signed fields in the gateway's documented
// order, with booleans rendered lowercase.
func (p WebhookPayload) CanonicalString() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(p.AmountCents, 10))
	b.WriteString(p.CreatedAt)
	b.WriteString(p.Currency)
	b.WriteString(strconv.FormatBool(p.ErrorOccured))
	b.WriteString(p.TransactionID)
	b.WriteString(strconv.FormatBool(p.Pending))
	b.WriteString(strconv.FormatBool(p.Success))
	return b.String()
}

// ComputeSignature returns the lowercase hex HMAC-SHA512 of the payload's
// canonical string.
func ComputeSignature(secret string, p WebhookPayload) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(p.CanonicalString()))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a provided signature in constant time. Hex case is
// normalized before comparison.
func VerifySignature(secret string, p WebhookPayload, provided string) bool {
	expected := ComputeSignature(secret, p)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
}
