package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/cache"
	catalogpkg "github.com/m-atef1999/Spotless-sub000/catalog"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/pipeline"
)

// ListServices returns the active service catalog. Public.
func ListServices(svc catalogpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		services, err := svc.ListServices(ctx)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"services": services})
	}
}

// ListTimeSlots returns the bookable time slots. Public.
func ListTimeSlots(svc catalogpkg.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		slots, err := svc.ListTimeSlots(ctx)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"time_slots": slots})
	}
}

type createServicePayload struct {
	Name            string `json:"name" binding:"required"`
	PriceCents      int64  `json:"price_cents" binding:"required,min=1"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1"`
}

// CreateService adds a catalog entry. Admin only. Runs as a command so the
// catalog list caches are invalidated on commit.
func CreateService(repo catalogpkg.Repository, pipe *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload createServicePayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		s := entity.NewService(payload.Name, payload.PriceCents, payload.DurationMinutes)
		cmd := catalogSeedCommand("catalog.create_service", func(ctx context.Context, r catalogpkg.Repository) error {
			_, err := r.CreateService(ctx, s)
			return err
		}, repo)
		if err := pipe.Execute(ctx, cmd); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, s)
	}
}

type createTimeSlotPayload struct {
	Label     string `json:"label" binding:"required"`
	StartHour int    `json:"start_hour" binding:"min=0,max=23"`
	EndHour   int    `json:"end_hour" binding:"required,min=1,max=24"`
}

// CreateTimeSlot adds a bookable slot. Admin only.
func CreateTimeSlot(repo catalogpkg.Repository, pipe *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload createTimeSlotPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if payload.EndHour <= payload.StartHour {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_hour must be after start_hour"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), handlerTimeout)
		defer cancel()

		t := entity.NewTimeSlot(payload.Label, payload.StartHour, payload.EndHour)
		cmd := catalogSeedCommand("catalog.create_time_slot", func(ctx context.Context, r catalogpkg.Repository) error {
			_, err := r.CreateTimeSlot(ctx, t)
			return err
		}, repo)
		if err := pipe.Execute(ctx, cmd); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

// catalogSeedCommand wraps an admin catalog write in a command that dirties
// both catalog list caches.
func catalogSeedCommand(name string, fn func(ctx context.Context, r catalogpkg.Repository) error, repo catalogpkg.Repository) pipeline.Command {
	return pipeline.Command{
		Name:      name,
		CacheKeys: []string{cache.KeyServices, cache.KeyTimeSlots},
		Run: func(ctx context.Context, tx *gorm.DB) error {
			return fn(ctx, repo.WithTx(tx))
		},
	}
}
