package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cartpkg "github.com/m-atef1999/Spotless-sub000/cart"
)

// GetCart returns the caller's cart, creating it on first access.
func GetCart(svc cartpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		cart, err := svc.Get(ctx, id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

type addCartItemPayload struct {
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// AddCartItem adds a service to the cart, merging quantities on repeats.
func AddCartItem(svc cartpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}
		var payload addCartItemPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		cart, err := svc.AddItem(ctx, id, payload.ServiceID, payload.Quantity)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// RemoveCartItem drops one service line from the cart.
func RemoveCartItem(svc cartpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}
		serviceID, ok := pathUUID(c, "serviceId")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		cart, err := svc.RemoveItem(ctx, id, serviceID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// ClearCart empties the cart.
func ClearCart(svc cartpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		if err := svc.Clear(ctx, id); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
