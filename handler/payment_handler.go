package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	paymentpkg "github.com/m-atef1999/Spotless-sub000/payment"
)

// signatureHeader carries the gateway's HMAC over the webhook body fields.
const signatureHeader = "Hmac-SHA512"

type initiatePaymentPayload struct {
	// OrderID nil means a wallet top-up; AmountCents is only read for
	// top-ups, order payments always charge the order total.
	OrderID     *uuid.UUID `json:"order_id"`
	AmountCents int64      `json:"amount_cents"`
}

// InitiatePayment opens payment for one of the caller's orders, or a
// wallet top-up when no order id is given.
func InitiatePayment(svc paymentpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}
		var payload initiatePaymentPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		var res *paymentpkg.InitiateResponse
		var err error
		if payload.OrderID != nil {
			res, err = svc.InitiateOrderPayment(ctx, id, *payload.OrderID)
		} else {
			res, err = svc.InitiateTopUp(ctx, id, payload.AmountCents)
		}
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// PaymentWebhook receives gateway settlement callbacks. Unauthenticated by
// design; the HMAC header is the only trust anchor.
func PaymentWebhook(svc paymentpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		signature := c.GetHeader(signatureHeader)
		if signature == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + signatureHeader + " header"})
			return
		}

		var payload paymentpkg.WebhookPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		p, err := svc.ProcessWebhook(ctx, payload, signature)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":         p.Status,
			"transaction_id": p.TransactionRef,
		})
	}
}

// GetPayment returns one of the caller's payments.
func GetPayment(svc paymentpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}
		paymentID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		p, err := svc.GetPayment(ctx, id, paymentID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// ListMyPayments returns the caller's payment history.
func ListMyPayments(svc paymentpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		payments, err := svc.ListMine(ctx, id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payments": payments})
	}
}
