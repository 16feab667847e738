package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	customerpkg "github.com/m-atef1999/Spotless-sub000/customer"
	driverpkg "github.com/m-atef1999/Spotless-sub000/driver"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
)

// resolver turns a loosely-typed driver reference into a concrete Driver
// row. Callers pass an id (driver, user, or application) or an email; the
// strategies are tried in that order, and an approved application with no
// Driver row yet is materialized on the spot.
type resolver struct {
	drivers   driverpkg.Repository
	customers customerpkg.Repository
}

// Resolve runs inside the caller's transaction so a materialized driver
// commits atomically with whatever triggered the resolution.
func (r *resolver) Resolve(ctx context.Context, tx *gorm.DB, ref string) (*entity.Driver, driverpkg.Resolution, error) {
	drivers := r.drivers.WithTx(tx)
	customers := r.customers.WithTx(tx)

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, driverpkg.Resolution{}, errs.Validation("driver reference is required")
	}

	if id, err := uuid.Parse(ref); err == nil {
		// Driver id.
		if d, err := drivers.GetDriverByID(ctx, id); err == nil {
			return d, driverpkg.Resolution{DriverID: d.ID, ApplicationID: d.ApplicationID}, nil
		} else if !errs.IsKind(err, errs.KindNotFound) {
			return nil, driverpkg.Resolution{}, err
		}

		// User id with a driver profile linked from either side.
		if d, err := drivers.GetDriverByUserID(ctx, id); err == nil {
			return d, driverpkg.Resolution{DriverID: d.ID, ApplicationID: d.ApplicationID}, nil
		} else if !errs.IsKind(err, errs.KindNotFound) {
			return nil, driverpkg.Resolution{}, err
		}

		// User id with a customer link and no driver yet: an approved
		// application materializes the driver on the spot.
		if u, err := customers.GetUserByID(ctx, id); err == nil {
			if u.DriverID != nil {
				d, err := drivers.GetDriverByID(ctx, *u.DriverID)
				if err != nil {
					return nil, driverpkg.Resolution{}, err
				}
				return d, driverpkg.Resolution{DriverID: d.ID, ApplicationID: d.ApplicationID}, nil
			}
			if u.CustomerID != nil {
				a, err := drivers.LatestApplicationByCustomer(ctx, *u.CustomerID)
				if err == nil {
					return r.fromApplication(ctx, tx, a)
				}
				if !errs.IsKind(err, errs.KindNotFound) {
					return nil, driverpkg.Resolution{}, err
				}
			}
		} else if !errs.IsKind(err, errs.KindNotFound) {
			return nil, driverpkg.Resolution{}, err
		}

		// Approved application id, materializing if needed.
		if a, err := drivers.GetApplicationByID(ctx, id); err == nil {
			return r.fromApplication(ctx, tx, a)
		} else if !errs.IsKind(err, errs.KindNotFound) {
			return nil, driverpkg.Resolution{}, err
		}

		return nil, driverpkg.Resolution{}, errs.NotFound("no driver matches this reference")
	}

	// Email, against the driver roster first, then via the customer's
	// approved application.
	if d, err := drivers.GetDriverByEmail(ctx, ref); err == nil {
		return d, driverpkg.Resolution{DriverID: d.ID, ApplicationID: d.ApplicationID}, nil
	} else if !errs.IsKind(err, errs.KindNotFound) {
		return nil, driverpkg.Resolution{}, err
	}

	c, err := customers.GetCustomerByEmail(ctx, ref)
	if err != nil {
		if errs.IsKind(err, errs.KindNotFound) {
			return nil, driverpkg.Resolution{}, errs.NotFound("no driver matches this reference")
		}
		return nil, driverpkg.Resolution{}, err
	}
	a, err := drivers.LatestApplicationByCustomer(ctx, c.ID)
	if err != nil {
		if errs.IsKind(err, errs.KindNotFound) {
			return nil, driverpkg.Resolution{}, errs.NotFound("no driver matches this reference")
		}
		return nil, driverpkg.Resolution{}, err
	}
	return r.fromApplication(ctx, tx, a)
}

func (r *resolver) fromApplication(ctx context.Context, tx *gorm.DB, a *entity.DriverApplication) (*entity.Driver, driverpkg.Resolution, error) {
	if a.Status != entity.ApplicationApproved {
		return nil, driverpkg.Resolution{}, errs.Newf(errs.KindState, "driver application is %s, not approved", a.Status)
	}

	drivers := r.drivers.WithTx(tx)

	// Already materialized.
	if d, err := drivers.GetDriverByApplicationID(ctx, a.ID); err == nil {
		appID := a.ID
		return d, driverpkg.Resolution{DriverID: d.ID, ApplicationID: &appID}, nil
	} else if !errs.IsKind(err, errs.KindNotFound) {
		return nil, driverpkg.Resolution{}, err
	}

	d, err := materializeDriver(ctx, tx, r.drivers, r.customers, a)
	if err != nil {
		return nil, driverpkg.Resolution{}, err
	}
	appID := a.ID
	return d, driverpkg.Resolution{DriverID: d.ID, ApplicationID: &appID, Materialized: true}, nil
}

// materializeDriver creates the Driver row for an approved application. The
// email uniqueness check makes repeated materializations of the same person
// converge on one row.
func materializeDriver(ctx context.Context, tx *gorm.DB, driverRepo driverpkg.Repository, customerRepo customerpkg.Repository, a *entity.DriverApplication) (*entity.Driver, error) {
	drivers := driverRepo.WithTx(tx)
	customers := customerRepo.WithTx(tx)

	c, err := customers.GetCustomerByID(ctx, a.CustomerID)
	if err != nil {
		return nil, err
	}

	if existing, err := drivers.GetDriverByEmail(ctx, c.Email); err == nil {
		if existing.ApplicationID == nil {
			appID := a.ID
			existing.ApplicationID = &appID
			if err := drivers.SaveDriver(ctx, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	} else if !errs.IsKind(err, errs.KindNotFound) {
		return nil, err
	}

	d := entity.NewDriver(c.Name, c.Email, c.Phone, a.VehicleInfo)
	userID := c.UserID
	appID := a.ID
	d.UserID = &userID
	d.ApplicationID = &appID
	if _, err := drivers.StoreDriver(ctx, d); err != nil {
		return nil, err
	}

	u, err := customers.GetUserByID(ctx, c.UserID)
	if err != nil {
		return nil, err
	}
	u.LinkDriver(d.ID)
	if err := customers.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return d, nil
}
