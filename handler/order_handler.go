package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/m-atef1999/Spotless-sub000/entity"
	orderpkg "github.com/m-atef1999/Spotless-sub000/order"
)

// Checkout turns the caller's cart into an order.
func Checkout(svc orderpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}
		var payload orderpkg.CheckoutRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		o, err := svc.Checkout(ctx, id, payload)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// BuyNow orders a single service without going through the cart.
func BuyNow(svc orderpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}
		var payload orderpkg.BuyNowRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		o, err := svc.BuyNow(ctx, id, payload)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// GetOrder returns one order. Owner, assigned driver, or admin.
func GetOrder(svc orderpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		orderID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		o, err := svc.Get(ctx, p, orderID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// ListMyOrders returns the caller's order history, newest first.
func ListMyOrders(svc orderpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		orders, err := svc.ListMine(ctx, id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

// ListAvailableOrders is the open-order feed for drivers.
func ListAvailableOrders(svc orderpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		orders, err := svc.ListAvailable(ctx)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

// ListDriverOrders returns the orders assigned to the calling driver.
func ListDriverOrders(svc orderpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := driverID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		orders, err := svc.ListForDriver(ctx, id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

// CancelOrder is the customer-side cancellation.
func CancelOrder(svc orderpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}
		orderID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		o, err := svc.Cancel(ctx, id, orderID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

type updateOrderStatusPayload struct {
	Status entity.OrderStatus `json:"status" binding:"required"`
}

// UpdateOrderStatus is the assigned driver's progression through the
// fulfillment states.
func UpdateOrderStatus(svc orderpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := driverID(c)
		if !ok {
			return
		}
		orderID, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		var payload updateOrderStatusPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		o, err := svc.UpdateStatus(ctx, id, orderID, payload.Status)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
