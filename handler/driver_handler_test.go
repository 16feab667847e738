package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authpkg "github.com/m-atef1999/Spotless-sub000/auth"
	driverpkg "github.com/m-atef1999/Spotless-sub000/driver"
	"github.com/m-atef1999/Spotless-sub000/middleware"
)

const testJWTSecret = "handler-test-secret"

// locationRecorder stubs just the location update; the embedded interface
// covers the rest of driver.Service.
type locationRecorder struct {
	driverpkg.Service
	called   bool
	lat, lng float64
}

func (s *locationRecorder) UpdateLocation(_ context.Context, _ uuid.UUID, lat, lng float64) error {
	s.called = true
	s.lat = lat
	s.lng = lng
	return nil
}

func locationRouter(svc driverpkg.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/drivers/location", middleware.RequireAuth(testJWTSecret), UpdateDriverLocation(svc))
	return r
}

func driverToken(t *testing.T) string {
	t.Helper()
	id := uuid.New()
	p := &authpkg.Principal{UserID: uuid.New(), Role: "driver", DriverID: &id}
	token, err := authpkg.SignJWT(testJWTSecret, p, time.Minute, "access")
	require.NoError(t, err)
	return token
}

func putLocation(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/drivers/location", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+driverToken(t))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateDriverLocationAcceptsZeroCoordinates(t *testing.T) {
	svc := &locationRecorder{}
	r := locationRouter(svc)

	// Null Island is a legitimate position report.
	w := putLocation(t, r, `{"latitude": 0, "longitude": 0}`)

	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	require.True(t, svc.called)
	assert.Zero(t, svc.lat)
	assert.Zero(t, svc.lng)
}

func TestUpdateDriverLocationRequiresBothCoordinates(t *testing.T) {
	svc := &locationRecorder{}
	r := locationRouter(svc)

	w := putLocation(t, r, `{"latitude": 12.5}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.called)
}
