package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	driverpkg "github.com/m-atef1999/Spotless-sub000/driver"
	"github.com/m-atef1999/Spotless-sub000/entity"
)

type submitApplicationPayload struct {
	VehicleInfo string `json:"vehicle_info" binding:"required"`
}

// SubmitDriverApplication files a become-a-driver request for the caller.
func SubmitDriverApplication(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}
		var payload submitApplicationPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		a, err := svc.SubmitApplication(ctx, id, payload.VehicleInfo)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

// GetMyDriverApplication returns the caller's latest application.
func GetMyDriverApplication(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		a, err := svc.GetMyApplication(ctx, id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

// ListDriverApplications lists applications, optionally filtered by
// ?status=. Admin only.
func ListDriverApplications(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		status := entity.ApplicationStatus(c.Query("status"))
		apps, err := svc.ListApplications(ctx, status)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"applications": apps})
	}
}

// ApproveDriverApplication approves and materializes the driver. Admin only.
func ApproveDriverApplication(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := adminID(c)
		if !ok {
			return
		}
		appID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		d, err := svc.ApproveApplication(ctx, admin, appID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

type rejectApplicationPayload struct {
	Reason string `json:"reason"`
}

// RejectDriverApplication rejects an application. Admin only.
func RejectDriverApplication(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := adminID(c)
		if !ok {
			return
		}
		appID, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		var payload rejectApplicationPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		if err := svc.RejectApplication(ctx, admin, appID, payload.Reason); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// CreateDriver onboards a driver directly. Admin only.
func CreateDriver(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload driverpkg.CreateDriverRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		d, err := svc.CreateDriver(ctx, payload)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, d)
	}
}

// ListDrivers returns the full roster. Admin only.
func ListDrivers(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		drivers, err := svc.ListDrivers(ctx)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"drivers": drivers})
	}
}

// ListAvailableDrivers returns drivers ready for assignment. Admin only.
func ListAvailableDrivers(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		drivers, err := svc.ListAvailableDrivers(ctx)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"drivers": drivers})
	}
}

type assignDriverPayload struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	// DriverRef may be a driver id, a user id, an approved application id,
	// or an email.
	DriverRef string `json:"driver_ref" binding:"required"`
}

// AssignDriver pushes a driver onto an open order. Admin only.
func AssignDriver(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload assignDriverPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		o, res, err := svc.AssignDriver(ctx, payload.OrderID, payload.DriverRef)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"order":        o,
			"driver_id":    res.DriverID,
			"materialized": res.Materialized,
		})
	}
}

// ApplyToOrder lets the calling driver bid on an open order.
func ApplyToOrder(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := driverID(c)
		if !ok {
			return
		}
		orderID, ok := pathUUID(c, "orderId")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		a, err := svc.ApplyToOrder(ctx, id, orderID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

// ListOrderApplications returns pending bids on an order. Admin only.
func ListOrderApplications(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		apps, err := svc.ListOrderApplications(ctx, orderID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"applications": apps})
	}
}

// AcceptOrderApplication accepts one bid and settles the rest. Admin only.
func AcceptOrderApplication(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		appID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		o, err := svc.AcceptOrderApplication(ctx, appID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// RejectOrderApplication rejects a single bid. Admin only.
func RejectOrderApplication(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		appID, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		if err := svc.RejectOrderApplication(ctx, appID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type updateDriverStatusPayload struct {
	Status entity.DriverStatus `json:"status" binding:"required"`
}

// UpdateDriverStatus is the driver's own availability toggle.
func UpdateDriverStatus(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := driverID(c)
		if !ok {
			return
		}
		var payload updateDriverStatusPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		d, err := svc.UpdateStatus(ctx, id, payload.Status)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// Pointers so zero coordinates (equator, prime meridian) still bind.
type updateLocationPayload struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// UpdateDriverLocation records the driver's reported position.
func UpdateDriverLocation(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := driverID(c)
		if !ok {
			return
		}
		var payload updateLocationPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		if err := svc.UpdateLocation(ctx, id, *payload.Latitude, *payload.Longitude); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RevokeDriver bars a driver from the platform. Admin only.
func RevokeDriver(svc driverpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		if err := svc.Revoke(ctx, id); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
