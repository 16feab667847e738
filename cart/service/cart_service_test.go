package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/cache"
	cartrepo "github.com/m-atef1999/Spotless-sub000/cart/repository"
	catalogrepo "github.com/m-atef1999/Spotless-sub000/catalog/repository"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
	"github.com/m-atef1999/Spotless-sub000/pipeline"
)

type cartFixture struct {
	db       *gorm.DB
	store    *cache.MemoryStore
	svc      *cartService
	customer uuid.UUID
	service  *entity.Service
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.User{}, &entity.Customer{},
		&entity.Service{}, &entity.TimeSlot{},
		&entity.Cart{}, &entity.CartItem{},
	))

	store := cache.NewMemoryStore()
	pipe := pipeline.New(db, store, nil)

	u := entity.NewUser("cust@example.com", "customer")
	require.NoError(t, db.Create(u).Error)
	c := entity.NewCustomer(u.ID, "Cust", u.Email, "0100")
	require.NoError(t, db.Create(c).Error)

	svcEntity := entity.NewService("Deep Cleaning", 5000, 90)
	require.NoError(t, db.Create(svcEntity).Error)

	svc := NewCartService(cartrepo.NewGormCartRepo(db), catalogrepo.NewGormCatalogRepo(db), pipe)
	return &cartFixture{
		db:       db,
		store:    store,
		svc:      svc.(*cartService),
		customer: c.ID,
		service:  svcEntity,
	}
}

func TestAddItemMergesQuantities(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	cart, err := f.svc.AddItem(ctx, f.customer, f.service.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	cart, err = f.svc.AddItem(ctx, f.customer, f.service.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "same service must merge into one line")
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItemUnknownService(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.svc.AddItem(context.Background(), f.customer, uuid.New(), 1)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.svc.AddItem(context.Background(), f.customer, f.service.ID, 0)
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestRemoveItemAndClear(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	other := entity.NewService("Ironing", 2000, 30)
	require.NoError(t, f.db.Create(other).Error)

	_, err := f.svc.AddItem(ctx, f.customer, f.service.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.customer, other.ID, 1)
	require.NoError(t, err)

	cart, err := f.svc.RemoveItem(ctx, f.customer, f.service.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, other.ID, cart.Items[0].ServiceID)

	_, err = f.svc.RemoveItem(ctx, f.customer, f.service.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	require.NoError(t, f.svc.Clear(ctx, f.customer))
	cart, err = f.svc.Get(ctx, f.customer)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestClearMissingCartIsNoOp(t *testing.T) {
	f := newCartFixture(t)
	require.NoError(t, f.svc.Clear(context.Background(), f.customer))
}
