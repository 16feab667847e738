package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	customerpkg "github.com/m-atef1999/Spotless-sub000/customer"
)

// RegisterCustomer creates a customer profile. Public: this is the signup
// entry point for the marketplace.
func RegisterCustomer(svc customerpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload customerpkg.RegisterCustomerRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		created, err := svc.Register(ctx, payload)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// GetMe returns the caller's customer profile, wallet balance included.
func GetMe(svc customerpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		me, err := svc.Get(ctx, id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, me)
	}
}
