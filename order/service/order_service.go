package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/auth"
	"github.com/m-atef1999/Spotless-sub000/cache"
	cartpkg "github.com/m-atef1999/Spotless-sub000/cart"
	catalogpkg "github.com/m-atef1999/Spotless-sub000/catalog"
	driverpkg "github.com/m-atef1999/Spotless-sub000/driver"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
	orderpkg "github.com/m-atef1999/Spotless-sub000/order"
	"github.com/m-atef1999/Spotless-sub000/pipeline"
)

// orderService implements order.Service. Every mutation runs as one pipeline
// command so the order, its items, the cart, and driver state commit
// together.
type orderService struct {
	orders   orderpkg.Repository
	carts    cartpkg.Repository
	catalog  catalogpkg.Repository
	drivers  driverpkg.Repository
	pipe     *pipeline.Pipeline
	cache    cache.Store
	ttl      time.Duration
	notifier orderpkg.Notifier
	log      *zap.Logger
}

func NewOrderService(
	orders orderpkg.Repository,
	carts cartpkg.Repository,
	catalog catalogpkg.Repository,
	drivers driverpkg.Repository,
	pipe *pipeline.Pipeline,
	store cache.Store,
	ttl time.Duration,
	notifier orderpkg.Notifier,
	log *zap.Logger,
) orderpkg.Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &orderService{
		orders:   orders,
		carts:    carts,
		catalog:  catalog,
		drivers:  drivers,
		pipe:     pipe,
		cache:    store,
		ttl:      ttl,
		notifier: notifier,
		log:      log,
	}
}

func (s *orderService) Checkout(ctx context.Context, customerID uuid.UUID, req orderpkg.CheckoutRequest) (*entity.Order, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	var created *entity.Order
	cmd := pipeline.Command{
		Name:      "order.checkout",
		CacheKeys: []string{cache.KeyCart(customerID)},
		Run: func(ctx context.Context, tx *gorm.DB) error {
			carts := s.carts.WithTx(tx)

			c, err := carts.Get(ctx, customerID)
			if err != nil {
				if errs.IsKind(err, errs.KindNotFound) {
					return errs.Validation("cart is empty")
				}
				return err
			}
			if c.IsEmpty() {
				return errs.Validation("cart is empty")
			}

			lines := make([]line, 0, len(c.Items))
			for _, it := range c.Items {
				lines = append(lines, line{serviceID: it.ServiceID, quantity: it.Quantity})
			}

			created, err = s.createOrder(ctx, tx, customerID, req, lines)
			if err != nil {
				return err
			}
			return carts.Clear(ctx, c.ID)
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *orderService) BuyNow(ctx context.Context, customerID uuid.UUID, req orderpkg.BuyNowRequest) (*entity.Order, error) {
	if err := validateCheckout(req.CheckoutRequest); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, errs.Validation("quantity must be positive")
	}

	var created *entity.Order
	cmd := pipeline.Command{
		Name: "order.buy_now",
		Run: func(ctx context.Context, tx *gorm.DB) error {
			var err error
			created, err = s.createOrder(ctx, tx, customerID, req.CheckoutRequest,
				[]line{{serviceID: req.ServiceID, quantity: req.Quantity}})
			return err
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return created, nil
}

type line struct {
	serviceID uuid.UUID
	quantity  int
}

// createOrder prices the lines against the live catalog, snapshots them into
// order items, and persists the order in requested status. Runs inside the
// caller's transaction.
func (s *orderService) createOrder(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, req orderpkg.CheckoutRequest, lines []line) (*entity.Order, error) {
	catalog := s.catalog.WithTx(tx)

	if _, err := catalog.GetTimeSlotByID(ctx, req.TimeSlotID); err != nil {
		if errs.IsKind(err, errs.KindNotFound) {
			return nil, errs.Validation("unknown time slot")
		}
		return nil, err
	}

	o := &entity.Order{
		ID:              uuid.New(),
		CustomerID:      customerID,
		TimeSlotID:      req.TimeSlotID,
		ScheduledDate:   req.ScheduledDate,
		PaymentMethod:   req.PaymentMethod,
		PickupAddress:   req.PickupAddress,
		PickupLat:       req.PickupLat,
		PickupLng:       req.PickupLng,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryLat:     req.DeliveryLat,
		DeliveryLng:     req.DeliveryLng,
		Status:          entity.OrderRequested,
	}

	for _, ln := range lines {
		svc, err := catalog.GetServiceByID(ctx, ln.serviceID)
		if err != nil {
			if errs.IsKind(err, errs.KindNotFound) {
				return nil, errs.Validation("service is no longer available")
			}
			return nil, err
		}
		o.Items = append(o.Items, entity.OrderItem{
			ID:              uuid.New(),
			OrderID:         o.ID,
			ServiceID:       svc.ID,
			ServiceName:     svc.Name,
			UnitPriceCents:  svc.PriceCents,
			Quantity:        ln.quantity,
			DurationMinutes: svc.DurationMinutes,
		})
		o.TotalPriceCents += svc.PriceCents * int64(ln.quantity)
		o.TotalDurationMinutes += svc.DurationMinutes * ln.quantity
	}

	return s.orders.WithTx(tx).CreateOrder(ctx, o)
}

func validateCheckout(req orderpkg.CheckoutRequest) error {
	switch req.PaymentMethod {
	case entity.PaymentCash, entity.PaymentCard, entity.PaymentWallet:
	default:
		return errs.Validation("unsupported payment method")
	}
	today := time.Now().Truncate(24 * time.Hour)
	if req.ScheduledDate.Before(today) {
		return errs.Validation("scheduled date is in the past")
	}
	return nil
}

func (s *orderService) Get(ctx context.Context, p *auth.Principal, orderID uuid.UUID) (*entity.Order, error) {
	key := cache.KeyOrder(orderID)

	var o entity.Order
	if s.readCached(ctx, key, &o) {
		return authorizeRead(p, &o)
	}

	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		got, err := s.orders.WithTx(db).GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		o = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, key, &o)
	return authorizeRead(p, &o)
}

// authorizeRead lets the owning customer, the assigned driver, and admins
// see an order.
func authorizeRead(p *auth.Principal, o *entity.Order) (*entity.Order, error) {
	if p.AdminID != nil || p.Role == "admin" {
		return o, nil
	}
	if p.CustomerID != nil && *p.CustomerID == o.CustomerID {
		return o, nil
	}
	if p.DriverID != nil && o.DriverID != nil && *p.DriverID == *o.DriverID {
		return o, nil
	}
	return nil, errs.NotFound("order not found")
}

func (s *orderService) ListMine(ctx context.Context, customerID uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		orders, err = s.orders.WithTx(db).ListByCustomer(ctx, customerID)
		return err
	})
	return orders, err
}

func (s *orderService) ListForDriver(ctx context.Context, driverID uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		orders, err = s.orders.WithTx(db).ListByDriver(ctx, driverID)
		return err
	})
	return orders, err
}

// ListAvailable always hits the database. Drivers race for these orders;
// serving a stale feed would make every claim a conflict.
func (s *orderService) ListAvailable(ctx context.Context) ([]entity.Order, error) {
	var orders []entity.Order
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		orders, err = s.orders.WithTx(db).ListAvailable(ctx)
		return err
	})
	return orders, err
}

func (s *orderService) Cancel(ctx context.Context, customerID, orderID uuid.UUID) (*entity.Order, error) {
	var cancelled *entity.Order
	var releasedDriver *uuid.UUID

	cmd := pipeline.Command{
		Name:      "order.cancel",
		CacheKeys: []string{cache.KeyOrder(orderID)},
		Run: func(ctx context.Context, tx *gorm.DB) error {
			orders := s.orders.WithTx(tx)

			o, err := orders.GetByID(ctx, orderID)
			if err != nil {
				return err
			}
			if o.CustomerID != customerID {
				return errs.NotFound("order not found")
			}
			if !o.CanCancel() {
				return errs.Newf(errs.KindState, "order in status %s cannot be cancelled", o.Status)
			}
			if err := o.SetStatus(entity.OrderCancelled); err != nil {
				return err
			}

			if o.DriverID != nil {
				if err := s.releaseDriver(ctx, tx, *o.DriverID); err != nil {
					return err
				}
				releasedDriver = o.DriverID
			}

			// Outstanding bids on this order are dead now.
			drivers := s.drivers.WithTx(tx)
			pending, err := drivers.ListPendingByOrder(ctx, orderID)
			if err != nil {
				return err
			}
			for i := range pending {
				if err := pending[i].Reject(); err != nil {
					return err
				}
				if err := drivers.SaveOrderApplication(ctx, &pending[i]); err != nil {
					return err
				}
			}

			if err := orders.Save(ctx, o); err != nil {
				return err
			}
			cancelled = o
			return nil
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}

	if s.notifier != nil && releasedDriver != nil {
		s.notifier.NotifyDriver(*releasedDriver, "order.cancelled", cancelled)
	}
	return cancelled, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, driverID, orderID uuid.UUID, to entity.OrderStatus) (*entity.Order, error) {
	if to != entity.OrderInCleaning && to != entity.OrderDelivered {
		return nil, errs.Newf(errs.KindValidation, "drivers cannot set status %s", to)
	}

	var updated *entity.Order
	cmd := pipeline.Command{
		Name:      "order.update_status",
		CacheKeys: []string{cache.KeyOrder(orderID)},
		Run: func(ctx context.Context, tx *gorm.DB) error {
			orders := s.orders.WithTx(tx)

			o, err := orders.GetByID(ctx, orderID)
			if err != nil {
				return err
			}
			if o.DriverID == nil || *o.DriverID != driverID {
				return errs.Unauthorized("order is not assigned to this driver")
			}
			if err := o.SetStatus(to); err != nil {
				return err
			}
			if to == entity.OrderDelivered {
				if err := s.releaseDriver(ctx, tx, driverID); err != nil {
					return err
				}
			}
			if err := orders.Save(ctx, o); err != nil {
				return err
			}
			updated = o
			return nil
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyCustomer(updated.CustomerID, "order.status", updated)
	}
	return updated, nil
}

func (s *orderService) releaseDriver(ctx context.Context, tx *gorm.DB, driverID uuid.UUID) error {
	drivers := s.drivers.WithTx(tx)
	d, err := drivers.GetDriverByID(ctx, driverID)
	if err != nil {
		return err
	}
	d.Release()
	return drivers.SaveDriver(ctx, d)
}

func (s *orderService) readCached(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if err != cache.ErrMiss {
			s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.log.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *orderService) writeCached(ctx context.Context, key string, val any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
