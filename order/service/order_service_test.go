package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/auth"
	"github.com/m-atef1999/Spotless-sub000/cache"
	cartrepo "github.com/m-atef1999/Spotless-sub000/cart/repository"
	catalogrepo "github.com/m-atef1999/Spotless-sub000/catalog/repository"
	driverrepo "github.com/m-atef1999/Spotless-sub000/driver/repository"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
	orderpkg "github.com/m-atef1999/Spotless-sub000/order"
	orderrepo "github.com/m-atef1999/Spotless-sub000/order/repository"
	"github.com/m-atef1999/Spotless-sub000/pipeline"
)

type orderFixture struct {
	db    *gorm.DB
	store *cache.MemoryStore
	svc   orderpkg.Service

	customer uuid.UUID
	slot     *entity.TimeSlot
	cleaning *entity.Service
	ironing  *entity.Service
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.User{}, &entity.Customer{},
		&entity.Service{}, &entity.TimeSlot{},
		&entity.Cart{}, &entity.CartItem{},
		&entity.Order{}, &entity.OrderItem{},
		&entity.Driver{}, &entity.DriverApplication{}, &entity.OrderDriverApplication{},
	))

	store := cache.NewMemoryStore()
	pipe := pipeline.New(db, store, nil)

	u := entity.NewUser("cust@example.com", "customer")
	require.NoError(t, db.Create(u).Error)
	c := entity.NewCustomer(u.ID, "Cust", u.Email, "0100")
	require.NoError(t, db.Create(c).Error)

	slot := entity.NewTimeSlot("09:00 - 12:00", 9, 12)
	require.NoError(t, db.Create(slot).Error)
	cleaning := entity.NewService("Deep Cleaning", 5000, 90)
	require.NoError(t, db.Create(cleaning).Error)
	ironing := entity.NewService("Ironing", 2000, 30)
	require.NoError(t, db.Create(ironing).Error)

	svc := NewOrderService(
		orderrepo.NewGormOrderRepo(db),
		cartrepo.NewGormCartRepo(db),
		catalogrepo.NewGormCatalogRepo(db),
		driverrepo.NewGormDriverRepo(db),
		pipe, store, time.Minute, nil, nil,
	)
	return &orderFixture{
		db:       db,
		store:    store,
		svc:      svc,
		customer: c.ID,
		slot:     slot,
		cleaning: cleaning,
		ironing:  ironing,
	}
}

func (f *orderFixture) checkoutRequest() orderpkg.CheckoutRequest {
	return orderpkg.CheckoutRequest{
		TimeSlotID:      f.slot.ID,
		ScheduledDate:   time.Now().AddDate(0, 0, 1),
		PaymentMethod:   entity.PaymentCard,
		PickupAddress:   "12 Nile St",
		DeliveryAddress: "12 Nile St",
	}
}

func (f *orderFixture) fillCart(t *testing.T, serviceID uuid.UUID, qty int) {
	t.Helper()
	var cart entity.Cart
	err := f.db.First(&cart, "customer_id = ?", f.customer).Error
	if err != nil {
		c := entity.NewCart(f.customer)
		require.NoError(t, f.db.Create(c).Error)
		cart = *c
	}
	require.NoError(t, f.db.Create(entity.NewCartItem(cart.ID, serviceID, qty)).Error)
}

func (f *orderFixture) newDriver(t *testing.T, email string, status entity.DriverStatus) *entity.Driver {
	t.Helper()
	d := entity.NewDriver("Drv", email, "0111", "van")
	d.Status = status
	require.NoError(t, f.db.Create(d).Error)
	return d
}

func TestCheckoutSnapshotsPricesAndClearsCart(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.fillCart(t, f.cleaning.ID, 2)
	f.fillCart(t, f.ironing.ID, 1)

	o, err := f.svc.Checkout(ctx, f.customer, f.checkoutRequest())
	require.NoError(t, err)

	assert.Equal(t, entity.OrderRequested, o.Status)
	assert.Nil(t, o.DriverID)
	assert.EqualValues(t, 2*5000+2000, o.TotalPriceCents)
	assert.Equal(t, 2*90+30, o.TotalDurationMinutes)
	require.Len(t, o.Items, 2)
	for _, it := range o.Items {
		if it.ServiceID == f.cleaning.ID {
			assert.Equal(t, "Deep Cleaning", it.ServiceName)
			assert.EqualValues(t, 5000, it.UnitPriceCents)
			assert.Equal(t, 2, it.Quantity)
		}
	}

	// Cart is consumed atomically with order creation.
	var itemCount int64
	require.NoError(t, f.db.Model(&entity.CartItem{}).Count(&itemCount).Error)
	assert.EqualValues(t, 0, itemCount)

	// Later price edits must not touch the snapshot.
	require.NoError(t, f.db.Model(f.cleaning).Update("price_cents", 9999).Error)
	var persisted entity.Order
	require.NoError(t, f.db.Preload("Items").First(&persisted, "id = ?", o.ID).Error)
	assert.EqualValues(t, 2*5000+2000, persisted.TotalPriceCents)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Checkout(context.Background(), f.customer, f.checkoutRequest())
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestCheckoutUnknownTimeSlot(t *testing.T) {
	f := newOrderFixture(t)
	f.fillCart(t, f.cleaning.ID, 1)

	req := f.checkoutRequest()
	req.TimeSlotID = uuid.New()
	_, err := f.svc.Checkout(context.Background(), f.customer, req)
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	// The failed checkout must leave the cart intact.
	var itemCount int64
	require.NoError(t, f.db.Model(&entity.CartItem{}).Count(&itemCount).Error)
	assert.EqualValues(t, 1, itemCount)
}

func TestBuyNowBypassesCart(t *testing.T) {
	f := newOrderFixture(t)

	o, err := f.svc.BuyNow(context.Background(), f.customer, orderpkg.BuyNowRequest{
		ServiceID:       f.cleaning.ID,
		Quantity:        3,
		CheckoutRequest: f.checkoutRequest(),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3*5000, o.TotalPriceCents)
	require.Len(t, o.Items, 1)
}

func TestCancelReleasesDriverAndRejectsBids(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	assigned := f.newDriver(t, "busy@example.com", entity.DriverBusy)
	bidder := f.newDriver(t, "bidder@example.com", entity.DriverAvailable)

	f.fillCart(t, f.cleaning.ID, 1)
	o, err := f.svc.Checkout(ctx, f.customer, f.checkoutRequest())
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&entity.Order{}).Where("id = ?", o.ID).
		Updates(map[string]interface{}{"driver_id": assigned.ID, "status": entity.OrderConfirmed}).Error)
	bid := entity.NewOrderDriverApplication(o.ID, bidder.ID, time.Now())
	require.NoError(t, f.db.Create(bid).Error)

	cancelled, err := f.svc.Cancel(ctx, f.customer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCancelled, cancelled.Status)

	var d entity.Driver
	require.NoError(t, f.db.First(&d, "id = ?", assigned.ID).Error)
	assert.Equal(t, entity.DriverAvailable, d.Status, "cancel must release the assigned driver")

	var b entity.OrderDriverApplication
	require.NoError(t, f.db.First(&b, "id = ?", bid.ID).Error)
	assert.Equal(t, entity.OrderApplicationRejected, b.Status, "cancel must settle open bids")
}

func TestCancelSomeoneElsesOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.fillCart(t, f.cleaning.ID, 1)
	o, err := f.svc.Checkout(ctx, f.customer, f.checkoutRequest())
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, uuid.New(), o.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestDriverProgressionReleasesOnDelivery(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	d := f.newDriver(t, "drv@example.com", entity.DriverBusy)

	f.fillCart(t, f.cleaning.ID, 1)
	o, err := f.svc.Checkout(ctx, f.customer, f.checkoutRequest())
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&entity.Order{}).Where("id = ?", o.ID).
		Updates(map[string]interface{}{"driver_id": d.ID, "status": entity.OrderConfirmed}).Error)

	updated, err := f.svc.UpdateStatus(ctx, d.ID, o.ID, entity.OrderInCleaning)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderInCleaning, updated.Status)

	_, err = f.svc.UpdateStatus(ctx, d.ID, o.ID, entity.OrderInCleaning)
	require.NoError(t, err, "same-status write is idempotent")

	updated, err = f.svc.UpdateStatus(ctx, d.ID, o.ID, entity.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderDelivered, updated.Status)

	var fresh entity.Driver
	require.NoError(t, f.db.First(&fresh, "id = ?", d.ID).Error)
	assert.Equal(t, entity.DriverAvailable, fresh.Status, "delivery must release the driver")
}

func TestUpdateStatusByWrongDriver(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	d := f.newDriver(t, "drv@example.com", entity.DriverBusy)
	other := f.newDriver(t, "other@example.com", entity.DriverAvailable)

	f.fillCart(t, f.cleaning.ID, 1)
	o, err := f.svc.Checkout(ctx, f.customer, f.checkoutRequest())
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&entity.Order{}).Where("id = ?", o.ID).
		Updates(map[string]interface{}{"driver_id": d.ID, "status": entity.OrderConfirmed}).Error)

	_, err = f.svc.UpdateStatus(ctx, other.ID, o.ID, entity.OrderInCleaning)
	require.Error(t, err)
	assert.Equal(t, errs.KindUnauthorized, errs.KindOf(err))
}

func TestGetCachesAndAuthorizes(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.fillCart(t, f.cleaning.ID, 1)
	o, err := f.svc.Checkout(ctx, f.customer, f.checkoutRequest())
	require.NoError(t, err)

	owner := &auth.Principal{UserID: uuid.New(), Role: "customer", CustomerID: &f.customer}
	got, err := f.svc.Get(ctx, owner, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.True(t, f.store.Has(cache.KeyOrder(o.ID)), "read must populate the order cache")

	strangerID := uuid.New()
	stranger := &auth.Principal{UserID: uuid.New(), Role: "customer", CustomerID: &strangerID}
	_, err = f.svc.Get(ctx, stranger, o.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestListAvailableSkipsAssignedOrders(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.fillCart(t, f.cleaning.ID, 1)
	open, err := f.svc.Checkout(ctx, f.customer, f.checkoutRequest())
	require.NoError(t, err)

	f.fillCart(t, f.ironing.ID, 1)
	taken, err := f.svc.Checkout(ctx, f.customer, f.checkoutRequest())
	require.NoError(t, err)
	d := f.newDriver(t, "drv@example.com", entity.DriverBusy)
	require.NoError(t, f.db.Model(&entity.Order{}).Where("id = ?", taken.ID).
		Update("driver_id", d.ID).Error)

	orders, err := f.svc.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, open.ID, orders[0].ID)
}
