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

	"github.com/m-atef1999/Spotless-sub000/cache"
	customerrepo "github.com/m-atef1999/Spotless-sub000/customer/repository"
	driverpkg "github.com/m-atef1999/Spotless-sub000/driver"
	driverrepo "github.com/m-atef1999/Spotless-sub000/driver/repository"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
	orderrepo "github.com/m-atef1999/Spotless-sub000/order/repository"
	"github.com/m-atef1999/Spotless-sub000/pipeline"
)

const testCooldown = 30 * 24 * time.Hour

type driverFixture struct {
	db    *gorm.DB
	store *cache.MemoryStore
	svc   driverpkg.Service

	admin    uuid.UUID
	customer *entity.Customer
	user     *entity.User
}

func newDriverFixture(t *testing.T) *driverFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.User{}, &entity.Customer{},
		&entity.Service{}, &entity.TimeSlot{},
		&entity.Order{}, &entity.OrderItem{},
		&entity.Driver{}, &entity.DriverApplication{}, &entity.OrderDriverApplication{},
	))

	store := cache.NewMemoryStore()
	pipe := pipeline.New(db, store, nil)

	u := entity.NewUser("cust@example.com", "customer")
	require.NoError(t, db.Create(u).Error)
	c := entity.NewCustomer(u.ID, "Cust", u.Email, "0100")
	require.NoError(t, db.Create(c).Error)
	id := c.ID
	u.CustomerID = &id
	require.NoError(t, db.Save(u).Error)

	svc := NewDriverService(
		driverrepo.NewGormDriverRepo(db),
		orderrepo.NewGormOrderRepo(db),
		customerrepo.NewGormCustomerRepo(db),
		pipe, testCooldown, nil, nil,
	)
	return &driverFixture{db: db, store: store, svc: svc, admin: uuid.New(), customer: c, user: u}
}

func (f *driverFixture) newOpenOrder(t *testing.T) *entity.Order {
	t.Helper()
	o := &entity.Order{
		ID:              uuid.New(),
		CustomerID:      f.customer.ID,
		TimeSlotID:      uuid.New(),
		ScheduledDate:   time.Now().AddDate(0, 0, 1),
		PaymentMethod:   entity.PaymentCash,
		PickupAddress:   "a",
		DeliveryAddress: "b",
		Status:          entity.OrderRequested,
	}
	require.NoError(t, f.db.Create(o).Error)
	return o
}

func (f *driverFixture) newAvailableDriver(t *testing.T, email string) *entity.Driver {
	t.Helper()
	d := entity.NewDriver("Drv", email, "0111", "van")
	d.Status = entity.DriverAvailable
	require.NoError(t, f.db.Create(d).Error)
	return d
}

func TestSubmitApplicationCooldown(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	decided := time.Now().Add(-10 * 24 * time.Hour)
	prev := entity.NewDriverApplication(f.customer.ID, "van")
	require.NoError(t, prev.Reject(f.admin, "incomplete", decided))
	require.NoError(t, f.db.Create(prev).Error)

	_, err := f.svc.SubmitApplication(ctx, f.customer.ID, "van")
	require.Error(t, err)
	assert.Equal(t, errs.KindState, errs.KindOf(err), "rejection 10 days ago is inside the 30 day cooldown")

	// Age the decision past the cooldown; resubmission goes through.
	old := time.Now().Add(-40 * 24 * time.Hour)
	require.NoError(t, f.db.Model(prev).Updates(map[string]interface{}{
		"decided_at": old, "created_at": old,
	}).Error)

	a, err := f.svc.SubmitApplication(ctx, f.customer.ID, "van")
	require.NoError(t, err)
	assert.Equal(t, entity.ApplicationSubmitted, a.Status)
}

func TestSubmitApplicationWhilePending(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitApplication(ctx, f.customer.ID, "van")
	require.NoError(t, err)

	_, err = f.svc.SubmitApplication(ctx, f.customer.ID, "van")
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

func TestApproveApplicationMaterializesDriver(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	a, err := f.svc.SubmitApplication(ctx, f.customer.ID, "van")
	require.NoError(t, err)

	d, err := f.svc.ApproveApplication(ctx, f.admin, a.ID)
	require.NoError(t, err)
	assert.Equal(t, f.customer.Email, d.Email)
	require.NotNil(t, d.ApplicationID)
	assert.Equal(t, a.ID, *d.ApplicationID)

	var u entity.User
	require.NoError(t, f.db.First(&u, "id = ?", f.user.ID).Error)
	require.NotNil(t, u.DriverID, "approval must link the user to the driver profile")
	assert.Equal(t, d.ID, *u.DriverID)

	// A decided application cannot be approved twice.
	_, err = f.svc.ApproveApplication(ctx, f.admin, a.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindState, errs.KindOf(err))

	var count int64
	require.NoError(t, f.db.Model(&entity.Driver{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "materialization must not duplicate drivers")
}

func TestAssignDriverConflictOnSecondClaim(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	o := f.newOpenOrder(t)
	first := f.newAvailableDriver(t, "first@example.com")
	second := f.newAvailableDriver(t, "second@example.com")

	assigned, res, err := f.svc.AssignDriver(ctx, o.ID, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, first.ID, res.DriverID)
	assert.Equal(t, entity.OrderConfirmed, assigned.Status)

	_, _, err = f.svc.AssignDriver(ctx, o.ID, second.ID.String())
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))

	var d entity.Driver
	require.NoError(t, f.db.First(&d, "id = ?", first.ID).Error)
	assert.Equal(t, entity.DriverBusy, d.Status)
	var d2 entity.Driver
	require.NoError(t, f.db.First(&d2, "id = ?", second.ID).Error)
	assert.Equal(t, entity.DriverAvailable, d2.Status, "losing claim must not touch the driver")
}

func TestAssignDriverMaterializesFromApprovedApplication(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	// Approved application with no Driver row yet.
	a := entity.NewDriverApplication(f.customer.ID, "van")
	require.NoError(t, a.Approve(f.admin, time.Now()))
	require.NoError(t, f.db.Create(a).Error)

	o := f.newOpenOrder(t)
	assigned, res, err := f.svc.AssignDriver(ctx, o.ID, a.ID.String())
	require.NoError(t, err)
	assert.True(t, res.Materialized, "resolution must report the lazy materialization")
	require.NotNil(t, assigned.DriverID)
	assert.Equal(t, res.DriverID, *assigned.DriverID)

	var d entity.Driver
	require.NoError(t, f.db.First(&d, "id = ?", res.DriverID).Error)
	assert.Equal(t, entity.DriverBusy, d.Status)
	assert.Equal(t, f.customer.Email, d.Email)

	// Resolving the same person again finds the existing row; the claim
	// then fails because that driver is already busy.
	o2 := f.newOpenOrder(t)
	_, _, err = f.svc.AssignDriver(ctx, o2.ID, f.customer.Email)
	require.Error(t, err)
	assert.Equal(t, errs.KindState, errs.KindOf(err))

	var count int64
	require.NoError(t, f.db.Model(&entity.Driver{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAssignDriverByUserIDMaterializes(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	// The user only carries a customer link; the approved application has
	// no Driver row yet.
	a := entity.NewDriverApplication(f.customer.ID, "van")
	require.NoError(t, a.Approve(f.admin, time.Now()))
	require.NoError(t, f.db.Create(a).Error)

	o := f.newOpenOrder(t)
	assigned, res, err := f.svc.AssignDriver(ctx, o.ID, f.user.ID.String())
	require.NoError(t, err)
	assert.True(t, res.Materialized)
	assert.Equal(t, entity.OrderConfirmed, assigned.Status)

	var d entity.Driver
	require.NoError(t, f.db.First(&d, "id = ?", res.DriverID).Error)
	assert.Equal(t, entity.DriverBusy, d.Status)
	assert.Equal(t, f.customer.Email, d.Email)

	var u entity.User
	require.NoError(t, f.db.First(&u, "id = ?", f.user.ID).Error)
	require.NotNil(t, u.DriverID)
	assert.Equal(t, d.ID, *u.DriverID)

	// The same user id now resolves to the materialized row directly.
	o2 := f.newOpenOrder(t)
	_, _, err = f.svc.AssignDriver(ctx, o2.ID, f.user.ID.String())
	require.Error(t, err)
	assert.Equal(t, errs.KindState, errs.KindOf(err), "existing busy driver, not a second materialization")

	var count int64
	require.NoError(t, f.db.Model(&entity.Driver{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAssignDriverByEmail(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	d := f.newAvailableDriver(t, "roster@example.com")
	o := f.newOpenOrder(t)

	_, res, err := f.svc.AssignDriver(ctx, o.ID, "roster@example.com")
	require.NoError(t, err)
	assert.Equal(t, d.ID, res.DriverID)
	assert.False(t, res.Materialized)
}

func TestAssignDriverUnknownRef(t *testing.T) {
	f := newDriverFixture(t)
	o := f.newOpenOrder(t)

	_, _, err := f.svc.AssignDriver(context.Background(), o.ID, "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestAcceptOrderApplicationRejectsSiblings(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	o := f.newOpenOrder(t)
	d1 := f.newAvailableDriver(t, "d1@example.com")
	d2 := f.newAvailableDriver(t, "d2@example.com")
	d3 := f.newAvailableDriver(t, "d3@example.com")

	b1, err := f.svc.ApplyToOrder(ctx, d1.ID, o.ID)
	require.NoError(t, err)
	_, err = f.svc.ApplyToOrder(ctx, d2.ID, o.ID)
	require.NoError(t, err)
	_, err = f.svc.ApplyToOrder(ctx, d3.ID, o.ID)
	require.NoError(t, err)

	assigned, err := f.svc.AcceptOrderApplication(ctx, b1.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.DriverID)
	assert.Equal(t, d1.ID, *assigned.DriverID)
	assert.Equal(t, entity.OrderConfirmed, assigned.Status)

	var apps []entity.OrderDriverApplication
	require.NoError(t, f.db.Where("order_id = ?", o.ID).Find(&apps).Error)
	require.Len(t, apps, 3)
	for _, a := range apps {
		if a.ID == b1.ID {
			assert.Equal(t, entity.OrderApplicationAccepted, a.Status)
		} else {
			assert.Equal(t, entity.OrderApplicationRejected, a.Status)
		}
	}

	var winner entity.Driver
	require.NoError(t, f.db.First(&winner, "id = ?", d1.ID).Error)
	assert.Equal(t, entity.DriverBusy, winner.Status)
}

func TestApplyToOrderTwice(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	o := f.newOpenOrder(t)
	d := f.newAvailableDriver(t, "d1@example.com")

	_, err := f.svc.ApplyToOrder(ctx, d.ID, o.ID)
	require.NoError(t, err)
	_, err = f.svc.ApplyToOrder(ctx, d.ID, o.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

func TestApplyToAssignedOrder(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	o := f.newOpenOrder(t)
	d := f.newAvailableDriver(t, "d1@example.com")
	late := f.newAvailableDriver(t, "late@example.com")

	_, _, err := f.svc.AssignDriver(ctx, o.ID, d.ID.String())
	require.NoError(t, err)

	_, err = f.svc.ApplyToOrder(ctx, late.ID, o.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindState, errs.KindOf(err))
}

func TestRevokeReleasesAssignedOrders(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	o := f.newOpenOrder(t)
	d := f.newAvailableDriver(t, "d1@example.com")
	_, _, err := f.svc.AssignDriver(ctx, o.ID, d.ID.String())
	require.NoError(t, err)

	require.NoError(t, f.svc.Revoke(ctx, d.ID))

	var fresh entity.Driver
	require.NoError(t, f.db.First(&fresh, "id = ?", d.ID).Error)
	assert.Equal(t, entity.DriverRevoked, fresh.Status)

	var released entity.Order
	require.NoError(t, f.db.First(&released, "id = ?", o.ID).Error)
	assert.Equal(t, entity.OrderRequested, released.Status, "order goes back to the open pool")
	assert.Nil(t, released.DriverID)
}

func TestRevokeInvalidatesReleasedOrderCache(t *testing.T) {
	f := newDriverFixture(t)
	ctx := context.Background()

	o := f.newOpenOrder(t)
	d := f.newAvailableDriver(t, "d1@example.com")
	_, _, err := f.svc.AssignDriver(ctx, o.ID, d.ID.String())
	require.NoError(t, err)

	// Simulate a cached read of the assigned order.
	require.NoError(t, f.store.Set(ctx, cache.KeyOrder(o.ID), []byte("{}"), time.Minute))

	require.NoError(t, f.svc.Revoke(ctx, d.ID))

	assert.False(t, f.store.Has(cache.KeyOrder(o.ID)),
		"releasing the order must drop its cache entry")

	var released entity.Order
	require.NoError(t, f.db.First(&released, "id = ?", o.ID).Error)
	assert.Equal(t, entity.OrderRequested, released.Status)
}
