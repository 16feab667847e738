package auth

import (
	"github.com/google/uuid"

	"github.com/m-atef1999/Spotless-sub000/errs"
)

// Principal is the already-authenticated actor: a stable user id plus role
// and any profile ids the identity service granted. It is passed into
// services explicitly, never read from ambient state.
type Principal struct {
	UserID     uuid.UUID
	Role       string
	CustomerID *uuid.UUID
	DriverID   *uuid.UUID
	AdminID    *uuid.UUID
}

// PrincipalFromClaims converts parsed JWT claims into a Principal.
func PrincipalFromClaims(c *Claims) (*Principal, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return nil, errs.Unauthorized("invalid user id claim")
	}
	p := &Principal{UserID: userID, Role: c.Role}
	if c.CustomerID != "" {
		if id, err := uuid.Parse(c.CustomerID); err == nil {
			p.CustomerID = &id
		}
	}
	if c.DriverID != "" {
		if id, err := uuid.Parse(c.DriverID); err == nil {
			p.DriverID = &id
		}
	}
	if c.AdminID != "" {
		if id, err := uuid.Parse(c.AdminID); err == nil {
			p.AdminID = &id
		}
	}
	return p, nil
}

// MustCustomer returns the customer profile id or an unauthorized error.
func (p *Principal) MustCustomer() (uuid.UUID, error) {
	if p.CustomerID == nil {
		return uuid.Nil, errs.Unauthorized("customer profile required")
	}
	return *p.CustomerID, nil
}

// MustAdmin returns the admin profile id or an unauthorized error.
func (p *Principal) MustAdmin() (uuid.UUID, error) {
	if p.AdminID == nil {
		return uuid.Nil, errs.Unauthorized("admin profile required")
	}
	return *p.AdminID, nil
}
