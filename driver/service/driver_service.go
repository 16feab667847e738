package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/cache"
	customerpkg "github.com/m-atef1999/Spotless-sub000/customer"
	driverpkg "github.com/m-atef1999/Spotless-sub000/driver"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
	orderpkg "github.com/m-atef1999/Spotless-sub000/order"
	"github.com/m-atef1999/Spotless-sub000/pipeline"
)

// driverService implements driver.Service.
type driverService struct {
	drivers   driverpkg.Repository
	orders    orderpkg.Repository
	customers customerpkg.Repository
	resolve   *resolver
	pipe      *pipeline.Pipeline
	cooldown  time.Duration
	notifier  driverpkg.Notifier
	log       *zap.Logger
}

func NewDriverService(
	drivers driverpkg.Repository,
	orders orderpkg.Repository,
	customers customerpkg.Repository,
	pipe *pipeline.Pipeline,
	cooldown time.Duration,
	notifier driverpkg.Notifier,
	log *zap.Logger,
) driverpkg.Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &driverService{
		drivers:   drivers,
		orders:    orders,
		customers: customers,
		resolve:   &resolver{drivers: drivers, customers: customers},
		pipe:      pipe,
		cooldown:  cooldown,
		notifier:  notifier,
		log:       log,
	}
}

func (s *driverService) SubmitApplication(ctx context.Context, customerID uuid.UUID, vehicleInfo string) (*entity.DriverApplication, error) {
	if vehicleInfo == "" {
		return nil, errs.Validation("vehicle info is required")
	}

	var created *entity.DriverApplication
	cmd := pipeline.Command{
		Name: "driver.submit_application",
		Run: func(ctx context.Context, tx *gorm.DB) error {
			drivers := s.drivers.WithTx(tx)

			if _, err := s.customers.WithTx(tx).GetCustomerByID(ctx, customerID); err != nil {
				return err
			}

			prev, err := drivers.LatestApplicationByCustomer(ctx, customerID)
			if err != nil && !errs.IsKind(err, errs.KindNotFound) {
				return err
			}
			if prev != nil {
				switch prev.Status {
				case entity.ApplicationSubmitted:
					return errs.Conflict("an application is already under review")
				case entity.ApplicationApproved:
					return errs.Conflict("customer is already an approved driver")
				case entity.ApplicationRejected:
					if prev.DecidedAt != nil {
						wait := s.cooldown - time.Since(*prev.DecidedAt)
						if wait > 0 {
							return errs.Newf(errs.KindState,
								"rejected application cooldown active, retry in %s", wait.Round(time.Hour))
						}
					}
				}
			}

			created, err = drivers.StoreApplication(ctx, entity.NewDriverApplication(customerID, vehicleInfo))
			return err
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *driverService) GetMyApplication(ctx context.Context, customerID uuid.UUID) (*entity.DriverApplication, error) {
	var a *entity.DriverApplication
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		a, err = s.drivers.WithTx(db).LatestApplicationByCustomer(ctx, customerID)
		return err
	})
	return a, err
}

func (s *driverService) ListApplications(ctx context.Context, status entity.ApplicationStatus) ([]entity.DriverApplication, error) {
	var apps []entity.DriverApplication
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		apps, err = s.drivers.WithTx(db).ListApplications(ctx, status)
		return err
	})
	return apps, err
}

// ApproveApplication approves and materializes the driver in one
// transaction, so an approved application always has its Driver row.
func (s *driverService) ApproveApplication(ctx context.Context, adminID, applicationID uuid.UUID) (*entity.Driver, error) {
	var approved *entity.Driver
	var customerID uuid.UUID

	cmd := pipeline.Command{
		Name:      "driver.approve_application",
		CacheKeys: []string{cache.KeyAvailableDrivers},
		Run: func(ctx context.Context, tx *gorm.DB) error {
			drivers := s.drivers.WithTx(tx)

			a, err := drivers.GetApplicationByID(ctx, applicationID)
			if err != nil {
				return err
			}
			if err := a.Approve(adminID, time.Now()); err != nil {
				return err
			}
			if err := drivers.SaveApplication(ctx, a); err != nil {
				return err
			}

			approved, err = materializeDriver(ctx, tx, s.drivers, s.customers, a)
			if err != nil {
				return err
			}
			customerID = a.CustomerID
			return nil
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyCustomer(customerID, "application.approved", approved)
	}
	return approved, nil
}

func (s *driverService) RejectApplication(ctx context.Context, adminID, applicationID uuid.UUID, reason string) error {
	var customerID uuid.UUID
	cmd := pipeline.Command{
		Name: "driver.reject_application",
		Run: func(ctx context.Context, tx *gorm.DB) error {
			drivers := s.drivers.WithTx(tx)
			a, err := drivers.GetApplicationByID(ctx, applicationID)
			if err != nil {
				return err
			}
			if err := a.Reject(adminID, reason, time.Now()); err != nil {
				return err
			}
			customerID = a.CustomerID
			return drivers.SaveApplication(ctx, a)
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.NotifyCustomer(customerID, "application.rejected", map[string]any{"reason": reason})
	}
	return nil
}

func (s *driverService) CreateDriver(ctx context.Context, req driverpkg.CreateDriverRequest) (*entity.Driver, error) {
	var created *entity.Driver
	cmd := pipeline.Command{
		Name:      "driver.create",
		CacheKeys: []string{cache.KeyAvailableDrivers},
		Run: func(ctx context.Context, tx *gorm.DB) error {
			drivers := s.drivers.WithTx(tx)

			if _, err := drivers.GetDriverByEmail(ctx, req.Email); err == nil {
				return errs.Conflict("driver with this email already exists")
			} else if !errs.IsKind(err, errs.KindNotFound) {
				return err
			}

			var err error
			created, err = drivers.StoreDriver(ctx, entity.NewDriver(req.Name, req.Email, req.Phone, req.VehicleInfo))
			return err
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *driverService) GetDriver(ctx context.Context, id uuid.UUID) (*entity.Driver, error) {
	var d *entity.Driver
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		d, err = s.drivers.WithTx(db).GetDriverByID(ctx, id)
		return err
	})
	return d, err
}

func (s *driverService) ListDrivers(ctx context.Context) ([]entity.Driver, error) {
	var drivers []entity.Driver
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		drivers, err = s.drivers.WithTx(db).ListDrivers(ctx)
		return err
	})
	return drivers, err
}

func (s *driverService) ListAvailableDrivers(ctx context.Context) ([]entity.Driver, error) {
	var drivers []entity.Driver
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		drivers, err = s.drivers.WithTx(db).ListAvailableDrivers(ctx)
		return err
	})
	return drivers, err
}

// AssignDriver is the admin push path. The conditional update on the order
// row is the arbiter; whoever loses it gets a conflict.
func (s *driverService) AssignDriver(ctx context.Context, orderID uuid.UUID, ref string) (*entity.Order, driverpkg.Resolution, error) {
	var (
		assigned *entity.Order
		res      driverpkg.Resolution
		driverID uuid.UUID
	)

	cmd := pipeline.Command{
		Name:      "driver.assign",
		CacheKeys: []string{cache.KeyOrder(orderID), cache.KeyAvailableDrivers},
		Run: func(ctx context.Context, tx *gorm.DB) error {
			orders := s.orders.WithTx(tx)
			drivers := s.drivers.WithTx(tx)

			d, r, err := s.resolve.Resolve(ctx, tx, ref)
			if err != nil {
				return err
			}
			res = r
			driverID = d.ID

			if d.Status == entity.DriverRevoked {
				return errs.State("driver access has been revoked")
			}
			// A driver materialized for this assignment goes straight into
			// rotation.
			if r.Materialized {
				if err := d.Activate(); err != nil {
					return err
				}
			}

			won, err := orders.AssignDriverCAS(ctx, orderID, d.ID)
			if err != nil {
				return err
			}
			if !won {
				if _, gerr := orders.GetByID(ctx, orderID); gerr != nil {
					return gerr
				}
				return errs.Conflict("order is already assigned or no longer open")
			}

			if err := d.MarkBusy(); err != nil {
				return err
			}
			if err := drivers.SaveDriver(ctx, d); err != nil {
				return err
			}

			o, err := orders.GetByID(ctx, orderID)
			if err != nil {
				return err
			}
			if err := o.SetStatus(entity.OrderConfirmed); err != nil {
				return err
			}
			if err := orders.Save(ctx, o); err != nil {
				return err
			}

			// Push assignment settles every open bid on this order.
			if err := s.rejectPendingBids(ctx, tx, orderID, uuid.Nil); err != nil {
				return err
			}

			assigned = o
			return nil
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, driverpkg.Resolution{}, err
	}

	if s.notifier != nil {
		s.notifier.NotifyDriver(driverID, "order.assigned", assigned)
		s.notifier.NotifyCustomer(assigned.CustomerID, "order.status", assigned)
	}
	return assigned, res, nil
}

func (s *driverService) ApplyToOrder(ctx context.Context, driverID, orderID uuid.UUID) (*entity.OrderDriverApplication, error) {
	var created *entity.OrderDriverApplication
	cmd := pipeline.Command{
		Name: "driver.apply_to_order",
		Run: func(ctx context.Context, tx *gorm.DB) error {
			drivers := s.drivers.WithTx(tx)
			orders := s.orders.WithTx(tx)

			d, err := drivers.GetDriverByID(ctx, driverID)
			if err != nil {
				return err
			}
			if d.Status == entity.DriverRevoked {
				return errs.State("driver access has been revoked")
			}

			o, err := orders.GetByID(ctx, orderID)
			if err != nil {
				return err
			}
			if o.DriverID != nil || o.Status != entity.OrderRequested {
				return errs.State("order is not open for applications")
			}

			existing, err := drivers.ListOrderApplicationsByDriver(ctx, driverID)
			if err != nil {
				return err
			}
			for i := range existing {
				if existing[i].OrderID == orderID {
					return errs.Conflict("driver already applied to this order")
				}
			}

			created, err = drivers.StoreOrderApplication(ctx, entity.NewOrderDriverApplication(orderID, driverID, time.Now()))
			return err
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *driverService) ListOrderApplications(ctx context.Context, orderID uuid.UUID) ([]entity.OrderDriverApplication, error) {
	var apps []entity.OrderDriverApplication
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		apps, err = s.drivers.WithTx(db).ListPendingByOrder(ctx, orderID)
		return err
	})
	return apps, err
}

// AcceptOrderApplication settles a bidding round: the accepted driver claims
// the order, every other pending bid is rejected.
func (s *driverService) AcceptOrderApplication(ctx context.Context, applicationID uuid.UUID) (*entity.Order, error) {
	// Pre-read outside the transaction to learn which order key the command
	// will dirty.
	var orderID uuid.UUID
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		a, err := s.drivers.WithTx(db).GetOrderApplicationByID(ctx, applicationID)
		if err != nil {
			return err
		}
		orderID = a.OrderID
		return nil
	})
	if err != nil {
		return nil, err
	}

	var (
		assigned *entity.Order
		winner   uuid.UUID
	)

	cmd := pipeline.Command{
		Name:      "driver.accept_order_application",
		CacheKeys: []string{cache.KeyOrder(orderID), cache.KeyAvailableDrivers},
		Run: func(ctx context.Context, tx *gorm.DB) error {
			drivers := s.drivers.WithTx(tx)
			orders := s.orders.WithTx(tx)

			a, err := drivers.GetOrderApplicationByID(ctx, applicationID)
			if err != nil {
				return err
			}
			if err := a.Accept(); err != nil {
				return err
			}

			d, err := drivers.GetDriverByID(ctx, a.DriverID)
			if err != nil {
				return err
			}

			won, err := orders.AssignDriverCAS(ctx, a.OrderID, a.DriverID)
			if err != nil {
				return err
			}
			if !won {
				return errs.Conflict("order is already assigned or no longer open")
			}

			if err := d.MarkBusy(); err != nil {
				return err
			}
			if err := drivers.SaveDriver(ctx, d); err != nil {
				return err
			}
			if err := drivers.SaveOrderApplication(ctx, a); err != nil {
				return err
			}
			if err := s.rejectPendingBids(ctx, tx, a.OrderID, a.ID); err != nil {
				return err
			}

			o, err := orders.GetByID(ctx, a.OrderID)
			if err != nil {
				return err
			}
			if err := o.SetStatus(entity.OrderConfirmed); err != nil {
				return err
			}
			if err := orders.Save(ctx, o); err != nil {
				return err
			}

			assigned = o
			winner = a.DriverID
			return nil
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyDriver(winner, "order.assigned", assigned)
		s.notifier.NotifyCustomer(assigned.CustomerID, "order.status", assigned)
	}
	return assigned, nil
}

func (s *driverService) RejectOrderApplication(ctx context.Context, applicationID uuid.UUID) error {
	cmd := pipeline.Command{
		Name: "driver.reject_order_application",
		Run: func(ctx context.Context, tx *gorm.DB) error {
			drivers := s.drivers.WithTx(tx)
			a, err := drivers.GetOrderApplicationByID(ctx, applicationID)
			if err != nil {
				return err
			}
			if err := a.Reject(); err != nil {
				return err
			}
			return drivers.SaveOrderApplication(ctx, a)
		},
	}
	return s.pipe.Execute(ctx, cmd)
}

// rejectPendingBids rejects every pending bid on the order except keep.
func (s *driverService) rejectPendingBids(ctx context.Context, tx *gorm.DB, orderID, keep uuid.UUID) error {
	drivers := s.drivers.WithTx(tx)
	pending, err := drivers.ListPendingByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	for i := range pending {
		if pending[i].ID == keep {
			continue
		}
		if err := pending[i].Reject(); err != nil {
			return err
		}
		if err := drivers.SaveOrderApplication(ctx, &pending[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *driverService) UpdateStatus(ctx context.Context, driverID uuid.UUID, to entity.DriverStatus) (*entity.Driver, error) {
	var updated *entity.Driver
	cmd := pipeline.Command{
		Name:      "driver.update_status",
		CacheKeys: []string{cache.KeyAvailableDrivers},
		Run: func(ctx context.Context, tx *gorm.DB) error {
			drivers := s.drivers.WithTx(tx)
			d, err := drivers.GetDriverByID(ctx, driverID)
			if err != nil {
				return err
			}
			if err := d.UpdateStatus(to); err != nil {
				return err
			}
			if err := drivers.SaveDriver(ctx, d); err != nil {
				return err
			}
			updated = d
			return nil
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *driverService) UpdateLocation(ctx context.Context, driverID uuid.UUID, lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return errs.Validation("coordinates out of range")
	}
	cmd := pipeline.Command{
		Name: "driver.update_location",
		Run: func(ctx context.Context, tx *gorm.DB) error {
			drivers := s.drivers.WithTx(tx)
			d, err := drivers.GetDriverByID(ctx, driverID)
			if err != nil {
				return err
			}
			now := time.Now()
			d.Latitude = &lat
			d.Longitude = &lng
			d.LocationUpdatedAt = &now
			return drivers.SaveDriver(ctx, d)
		},
	}
	return s.pipe.Execute(ctx, cmd)
}

// Revoke bars the driver and returns any in-flight assignment to the open
// pool so another driver can pick it up.
func (s *driverService) Revoke(ctx context.Context, driverID uuid.UUID) error {
	// Pre-read outside the transaction to learn which order keys the
	// release will dirty.
	keys := []string{cache.KeyAvailableDrivers}
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		assigned, err := s.orders.WithTx(db).ListByDriver(ctx, driverID)
		if err != nil {
			return err
		}
		for i := range assigned {
			switch assigned[i].Status {
			case entity.OrderConfirmed, entity.OrderInCleaning:
				keys = append(keys, cache.KeyOrder(assigned[i].ID))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	var releasedOrders []uuid.UUID

	cmd := pipeline.Command{
		Name:      "driver.revoke",
		CacheKeys: keys,
		Run: func(ctx context.Context, tx *gorm.DB) error {
			drivers := s.drivers.WithTx(tx)
			orders := s.orders.WithTx(tx)

			d, err := drivers.GetDriverByID(ctx, driverID)
			if err != nil {
				return err
			}

			assigned, err := orders.ListByDriver(ctx, driverID)
			if err != nil {
				return err
			}
			for i := range assigned {
				switch assigned[i].Status {
				case entity.OrderConfirmed, entity.OrderInCleaning:
					if err := orders.ReleaseToPool(ctx, assigned[i].ID); err != nil {
						return err
					}
					releasedOrders = append(releasedOrders, assigned[i].ID)
				}
			}

			d.Revoke()
			return drivers.SaveDriver(ctx, d)
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return err
	}

	s.log.Info("driver revoked",
		zap.String("driver_id", driverID.String()),
		zap.Int("released_orders", len(releasedOrders)))
	return nil
}
