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
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
	orderrepo "github.com/m-atef1999/Spotless-sub000/order/repository"
	paymentpkg "github.com/m-atef1999/Spotless-sub000/payment"
	paymentrepo "github.com/m-atef1999/Spotless-sub000/payment/repository"
	"github.com/m-atef1999/Spotless-sub000/pipeline"
)

const testSecret = "test-hmac-secret"

type paymentFixture struct {
	db       *gorm.DB
	svc      paymentpkg.Service
	customer *entity.Customer
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.User{}, &entity.Customer{},
		&entity.Order{}, &entity.OrderItem{},
		&entity.Payment{},
	))

	pipe := pipeline.New(db, cache.NewMemoryStore(), nil)

	u := entity.NewUser("cust@example.com", "customer")
	require.NoError(t, db.Create(u).Error)
	c := entity.NewCustomer(u.ID, "Cust", u.Email, "0100")
	require.NoError(t, db.Create(c).Error)

	svc := NewPaymentService(
		paymentrepo.NewGormPaymentRepo(db),
		orderrepo.NewGormOrderRepo(db),
		customerrepo.NewGormCustomerRepo(db),
		paymentpkg.NewSandboxGateway(""),
		pipe, testSecret, nil, nil,
	)
	return &paymentFixture{db: db, svc: svc, customer: c}
}

func (f *paymentFixture) newOrder(t *testing.T, method entity.PaymentMethod, totalCents int64) *entity.Order {
	t.Helper()
	o := &entity.Order{
		ID:              uuid.New(),
		CustomerID:      f.customer.ID,
		TimeSlotID:      uuid.New(),
		ScheduledDate:   time.Now().AddDate(0, 0, 1),
		PaymentMethod:   method,
		PickupAddress:   "a",
		DeliveryAddress: "b",
		TotalPriceCents: totalCents,
		Status:          entity.OrderRequested,
	}
	require.NoError(t, f.db.Create(o).Error)
	return o
}

func (f *paymentFixture) pendingCardPayment(t *testing.T, o *entity.Order) *entity.Payment {
	t.Helper()
	var orderID *uuid.UUID
	if o != nil {
		id := o.ID
		orderID = &id
	}
	amount := int64(5000)
	if o != nil {
		amount = o.TotalPriceCents
	}
	p := entity.NewPayment(orderID, f.customer.ID, "sbx-"+uuid.NewString(), amount, entity.PaymentCard)
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func signedWebhook(p *entity.Payment, success bool) (paymentpkg.WebhookPayload, string) {
	payload := paymentpkg.WebhookPayload{
		TransactionID: p.TransactionRef,
		AmountCents:   p.AmountCents,
		Currency:      "EGP",
		Success:       success,
		CreatedAt:     "2026-08-28T10:00:00Z",
	}
	return payload, paymentpkg.ComputeSignature(testSecret, payload)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	o := f.newOrder(t, entity.PaymentCard, 5000)
	p := f.pendingCardPayment(t, o)

	payload, _ := signedWebhook(p, true)
	_, err := f.svc.ProcessWebhook(ctx, payload, "deadbeef")
	require.Error(t, err)
	assert.Equal(t, errs.KindUnauthorized, errs.KindOf(err))

	var fresh entity.Payment
	require.NoError(t, f.db.First(&fresh, "id = ?", p.ID).Error)
	assert.Equal(t, entity.PaymentPending, fresh.Status, "rejected webhook must leave the payment pending")
}

func TestWebhookSuccessConfirmsOrder(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	o := f.newOrder(t, entity.PaymentCard, 5000)
	p := f.pendingCardPayment(t, o)

	payload, sig := signedWebhook(p, true)
	settled, err := f.svc.ProcessWebhook(ctx, payload, sig)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentSuccess, settled.Status)
	require.NotNil(t, settled.ProcessedAt)

	var fresh entity.Order
	require.NoError(t, f.db.First(&fresh, "id = ?", o.ID).Error)
	assert.Equal(t, entity.OrderConfirmed, fresh.Status)
}

func TestWebhookReplayIsNoOp(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	o := f.newOrder(t, entity.PaymentCard, 5000)
	p := f.pendingCardPayment(t, o)

	payload, sig := signedWebhook(p, true)
	first, err := f.svc.ProcessWebhook(ctx, payload, sig)
	require.NoError(t, err)

	// The gateway retries; the replay acknowledges without re-applying.
	second, err := f.svc.ProcessWebhook(ctx, payload, sig)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentSuccess, second.Status)
	assert.Equal(t, first.ProcessedAt.Unix(), second.ProcessedAt.Unix())

	// A contradictory replay is ignored the same way.
	failPayload, failSig := signedWebhook(p, false)
	third, err := f.svc.ProcessWebhook(ctx, failPayload, failSig)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentSuccess, third.Status)
}

func TestWebhookFailureMarksOrderPaymentFailed(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	o := f.newOrder(t, entity.PaymentCard, 5000)
	p := f.pendingCardPayment(t, o)

	payload, sig := signedWebhook(p, false)
	settled, err := f.svc.ProcessWebhook(ctx, payload, sig)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentFailed, settled.Status)

	var fresh entity.Order
	require.NoError(t, f.db.First(&fresh, "id = ?", o.ID).Error)
	assert.Equal(t, entity.OrderPaymentFailed, fresh.Status)
}

func TestWebhookTopUpCreditsWallet(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	p := f.pendingCardPayment(t, nil) // no order = top-up

	payload, sig := signedWebhook(p, true)
	_, err := f.svc.ProcessWebhook(ctx, payload, sig)
	require.NoError(t, err)

	var c entity.Customer
	require.NoError(t, f.db.First(&c, "id = ?", f.customer.ID).Error)
	assert.EqualValues(t, p.AmountCents, c.WalletBalanceCents)

	// Replay must not double-credit.
	_, err = f.svc.ProcessWebhook(ctx, payload, sig)
	require.NoError(t, err)
	require.NoError(t, f.db.First(&c, "id = ?", f.customer.ID).Error)
	assert.EqualValues(t, p.AmountCents, c.WalletBalanceCents)
}

func TestWebhookAmountMismatch(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	o := f.newOrder(t, entity.PaymentCard, 5000)
	p := f.pendingCardPayment(t, o)

	payload, _ := signedWebhook(p, true)
	payload.AmountCents = 1
	sig := paymentpkg.ComputeSignature(testSecret, payload)

	_, err := f.svc.ProcessWebhook(ctx, payload, sig)
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	var fresh entity.Payment
	require.NoError(t, f.db.First(&fresh, "id = ?", p.ID).Error)
	assert.Equal(t, entity.PaymentPending, fresh.Status)
}

func TestWebhookUnknownTransaction(t *testing.T) {
	f := newPaymentFixture(t)

	payload := paymentpkg.WebhookPayload{TransactionID: "sbx-unknown", AmountCents: 100, Success: true}
	sig := paymentpkg.ComputeSignature(testSecret, payload)
	_, err := f.svc.ProcessWebhook(context.Background(), payload, sig)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestWalletPaymentSettlesSynchronously(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(f.customer).Update("wallet_balance_cents", 10000).Error)
	o := f.newOrder(t, entity.PaymentWallet, 6000)

	res, err := f.svc.InitiateOrderPayment(ctx, f.customer.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentSuccess, res.Payment.Status)
	assert.Empty(t, res.PaymentURL)

	var c entity.Customer
	require.NoError(t, f.db.First(&c, "id = ?", f.customer.ID).Error)
	assert.EqualValues(t, 4000, c.WalletBalanceCents)

	var fresh entity.Order
	require.NoError(t, f.db.First(&fresh, "id = ?", o.ID).Error)
	assert.Equal(t, entity.OrderConfirmed, fresh.Status)
}

func TestWalletPaymentInsufficientBalance(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	o := f.newOrder(t, entity.PaymentWallet, 6000)

	_, err := f.svc.InitiateOrderPayment(ctx, f.customer.ID, o.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindState, errs.KindOf(err))

	// Nothing committed: no payment row, order untouched.
	var count int64
	require.NoError(t, f.db.Model(&entity.Payment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	var fresh entity.Order
	require.NoError(t, f.db.First(&fresh, "id = ?", o.ID).Error)
	assert.Equal(t, entity.OrderRequested, fresh.Status)
}

func TestInitiateCardPaymentReturnsGatewayURL(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	o := f.newOrder(t, entity.PaymentCard, 5000)
	res, err := f.svc.InitiateOrderPayment(ctx, f.customer.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPending, res.Payment.Status)
	assert.NotEmpty(t, res.PaymentURL)
	assert.NotEmpty(t, res.Payment.TransactionRef)
}

func TestInitiateCashPayment(t *testing.T) {
	f := newPaymentFixture(t)

	o := f.newOrder(t, entity.PaymentCash, 5000)
	_, err := f.svc.InitiateOrderPayment(context.Background(), f.customer.ID, o.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}
