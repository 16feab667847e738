package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authpkg "github.com/m-atef1999/Spotless-sub000/auth"
	"github.com/m-atef1999/Spotless-sub000/errs"
	"github.com/m-atef1999/Spotless-sub000/middleware"
)

// handlerTimeout bounds every request's downstream work.
const handlerTimeout = 10 * time.Second

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindUnauthorized:
		return http.StatusUnauthorized
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondErr writes the error with its mapped status. Internal errors are
// masked; everything else surfaces its message.
func respondErr(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}

// principal returns the authenticated principal or aborts with 401.
func principal(c *gin.Context) (*authpkg.Principal, bool) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return nil, false
	}
	return p, true
}

// customerID returns the caller's customer profile id or aborts with 401.
func customerID(c *gin.Context) (uuid.UUID, bool) {
	p, ok := principal(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := p.MustCustomer()
	if err != nil {
		respondErr(c, err)
		return uuid.Nil, false
	}
	return id, true
}

// driverID returns the caller's driver profile id or aborts with 401.
func driverID(c *gin.Context) (uuid.UUID, bool) {
	p, ok := principal(c)
	if !ok {
		return uuid.Nil, false
	}
	if p.DriverID == nil {
		respondErr(c, errs.Unauthorized("driver profile required"))
		return uuid.Nil, false
	}
	return *p.DriverID, true
}

// adminID returns the caller's admin profile id or aborts with 401.
func adminID(c *gin.Context) (uuid.UUID, bool) {
	p, ok := principal(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := p.MustAdmin()
	if err != nil {
		respondErr(c, err)
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a uuid path parameter or aborts with 400.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
