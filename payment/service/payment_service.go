package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/cache"
	customerpkg "github.com/m-atef1999/Spotless-sub000/customer"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
	orderpkg "github.com/m-atef1999/Spotless-sub000/order"
	paymentpkg "github.com/m-atef1999/Spotless-sub000/payment"
	"github.com/m-atef1999/Spotless-sub000/pipeline"
)

const currency = "EGP"

// paymentService implements payment.Service. Gateway calls happen outside
// the transaction; only our own rows are written inside it.
type paymentService struct {
	payments  paymentpkg.Repository
	orders    orderpkg.Repository
	customers customerpkg.Repository
	gateway   paymentpkg.Gateway
	pipe      *pipeline.Pipeline
	secret    string
	notifier  orderpkg.Notifier
	log       *zap.Logger
}

func NewPaymentService(
	payments paymentpkg.Repository,
	orders orderpkg.Repository,
	customers customerpkg.Repository,
	gateway paymentpkg.Gateway,
	pipe *pipeline.Pipeline,
	hmacSecret string,
	notifier orderpkg.Notifier,
	log *zap.Logger,
) paymentpkg.Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &paymentService{
		payments:  payments,
		orders:    orders,
		customers: customers,
		gateway:   gateway,
		pipe:      pipe,
		secret:    hmacSecret,
		notifier:  notifier,
		log:       log,
	}
}

func (s *paymentService) InitiateOrderPayment(ctx context.Context, customerID, orderID uuid.UUID) (*paymentpkg.InitiateResponse, error) {
	// Peek at the order first; for card payments the gateway transaction
	// must be opened before we can record anything.
	var o *entity.Order
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		o, err = s.orders.WithTx(db).GetByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, errs.NotFound("order not found")
	}
	if o.Status != entity.OrderRequested && o.Status != entity.OrderPaymentFailed {
		return nil, errs.Newf(errs.KindState, "order in status %s is not awaiting payment", o.Status)
	}

	switch o.PaymentMethod {
	case entity.PaymentCash:
		return nil, errs.Validation("cash orders are settled on delivery")
	case entity.PaymentWallet:
		return s.payFromWallet(ctx, customerID, o)
	case entity.PaymentCard:
		return s.payByCard(ctx, customerID, o)
	default:
		return nil, errs.Validation("unsupported payment method")
	}
}

// payFromWallet settles synchronously: debit, payment record, and order
// confirmation commit together.
func (s *paymentService) payFromWallet(ctx context.Context, customerID uuid.UUID, o *entity.Order) (*paymentpkg.InitiateResponse, error) {
	var settled *entity.Payment
	cmd := pipeline.Command{
		Name:      "payment.wallet",
		CacheKeys: []string{cache.KeyOrder(o.ID)},
		Run: func(ctx context.Context, tx *gorm.DB) error {
			customers := s.customers.WithTx(tx)
			orders := s.orders.WithTx(tx)
			payments := s.payments.WithTx(tx)

			c, err := customers.GetCustomerByID(ctx, customerID)
			if err != nil {
				return err
			}
			if err := c.DebitWallet(o.TotalPriceCents); err != nil {
				return err
			}
			if err := customers.SaveCustomer(ctx, c); err != nil {
				return err
			}

			orderID := o.ID
			p := entity.NewPayment(&orderID, customerID, "wallet-"+uuid.NewString(), o.TotalPriceCents, entity.PaymentWallet)
			if err := p.MarkSuccess(time.Now()); err != nil {
				return err
			}
			if _, err := payments.StorePayment(ctx, p); err != nil {
				return err
			}

			fresh, err := orders.GetByID(ctx, orderID)
			if err != nil {
				return err
			}
			if err := fresh.SetStatus(entity.OrderConfirmed); err != nil {
				return err
			}
			if err := orders.Save(ctx, fresh); err != nil {
				return err
			}

			settled = p
			return nil
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyCustomer(customerID, "payment.settled", settled)
	}
	return &paymentpkg.InitiateResponse{Payment: settled}, nil
}

func (s *paymentService) payByCard(ctx context.Context, customerID uuid.UUID, o *entity.Order) (*paymentpkg.InitiateResponse, error) {
	res, err := s.gateway.CreateTransaction(ctx, o.TotalPriceCents, currency)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "gateway transaction failed", err)
	}

	orderID := o.ID
	p := entity.NewPayment(&orderID, customerID, res.TransactionRef, o.TotalPriceCents, entity.PaymentCard)

	cmd := pipeline.Command{
		Name: "payment.initiate_card",
		Run: func(ctx context.Context, tx *gorm.DB) error {
			_, err := s.payments.WithTx(tx).StorePayment(ctx, p)
			return err
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return &paymentpkg.InitiateResponse{Payment: p, PaymentURL: res.PaymentURL}, nil
}

func (s *paymentService) InitiateTopUp(ctx context.Context, customerID uuid.UUID, amountCents int64) (*paymentpkg.InitiateResponse, error) {
	if amountCents <= 0 {
		return nil, errs.Validation("top-up amount must be positive")
	}

	res, err := s.gateway.CreateTransaction(ctx, amountCents, currency)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "gateway transaction failed", err)
	}

	p := entity.NewPayment(nil, customerID, res.TransactionRef, amountCents, entity.PaymentCard)
	cmd := pipeline.Command{
		Name: "payment.initiate_topup",
		Run: func(ctx context.Context, tx *gorm.DB) error {
			if _, err := s.customers.WithTx(tx).GetCustomerByID(ctx, customerID); err != nil {
				return err
			}
			_, err := s.payments.WithTx(tx).StorePayment(ctx, p)
			return err
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return &paymentpkg.InitiateResponse{Payment: p, PaymentURL: res.PaymentURL}, nil
}

// ProcessWebhook reconciles a gateway callback. A bad signature is rejected
// before anything is read; a settled payment is acknowledged as-is; a
// database failure rolls everything back so the gateway's retry starts from
// pending again.
func (s *paymentService) ProcessWebhook(ctx context.Context, payload paymentpkg.WebhookPayload, signature string) (*entity.Payment, error) {
	if !paymentpkg.VerifySignature(s.secret, payload, signature) {
		return nil, errs.Unauthorized("invalid webhook signature")
	}

	// Pre-read to learn which order key the settlement will dirty.
	var dirtyOrder *uuid.UUID
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		p, err := s.payments.WithTx(db).GetByTransactionRef(ctx, payload.TransactionID)
		if err != nil {
			return err
		}
		dirtyOrder = p.OrderID
		return nil
	})
	if err != nil {
		return nil, err
	}

	var keys []string
	if dirtyOrder != nil {
		keys = append(keys, cache.KeyOrder(*dirtyOrder))
	}

	var settled *entity.Payment
	cmd := pipeline.Command{
		Name:      "payment.webhook",
		CacheKeys: keys,
		Run: func(ctx context.Context, tx *gorm.DB) error {
			payments := s.payments.WithTx(tx)

			p, err := payments.GetByTransactionRef(ctx, payload.TransactionID)
			if err != nil {
				return err
			}
			if p.IsTerminal() {
				// Replay. Acknowledge without touching anything.
				settled = p
				return nil
			}
			if payload.AmountCents != p.AmountCents {
				return errs.Newf(errs.KindValidation, "webhook amount %d does not match payment %d",
					payload.AmountCents, p.AmountCents)
			}

			now := time.Now()
			if payload.Success {
				if err := p.MarkSuccess(now); err != nil {
					return err
				}
				if err := s.applySuccess(ctx, tx, p); err != nil {
					return err
				}
			} else {
				if err := p.MarkFailed(now); err != nil {
					return err
				}
				if err := s.applyFailure(ctx, tx, p); err != nil {
					return err
				}
			}

			if err := payments.Save(ctx, p); err != nil {
				return err
			}
			settled = p
			return nil
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyCustomer(settled.CustomerID, "payment.settled", settled)
	}
	return settled, nil
}

func (s *paymentService) applySuccess(ctx context.Context, tx *gorm.DB, p *entity.Payment) error {
	if p.OrderID == nil {
		customers := s.customers.WithTx(tx)
		c, err := customers.GetCustomerByID(ctx, p.CustomerID)
		if err != nil {
			return err
		}
		c.CreditWallet(p.AmountCents)
		return customers.SaveCustomer(ctx, c)
	}

	orders := s.orders.WithTx(tx)
	o, err := orders.GetByID(ctx, *p.OrderID)
	if err != nil {
		return err
	}
	if !entity.CanTransition(o.Status, entity.OrderConfirmed) {
		// Paid after cancellation or delivery. Record the payment, leave
		// the order alone; support handles the refund.
		s.log.Warn("payment succeeded for non-confirmable order",
			zap.String("order_id", o.ID.String()),
			zap.String("status", string(o.Status)))
		return nil
	}
	if err := o.SetStatus(entity.OrderConfirmed); err != nil {
		return err
	}
	return orders.Save(ctx, o)
}

func (s *paymentService) applyFailure(ctx context.Context, tx *gorm.DB, p *entity.Payment) error {
	if p.OrderID == nil {
		return nil // failed top-up changes nothing
	}

	orders := s.orders.WithTx(tx)
	o, err := orders.GetByID(ctx, *p.OrderID)
	if err != nil {
		return err
	}
	if !entity.CanTransition(o.Status, entity.OrderPaymentFailed) {
		return nil
	}
	if err := o.SetStatus(entity.OrderPaymentFailed); err != nil {
		return err
	}
	return orders.Save(ctx, o)
}

func (s *paymentService) GetPayment(ctx context.Context, customerID, paymentID uuid.UUID) (*entity.Payment, error) {
	var p *entity.Payment
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		p, err = s.payments.WithTx(db).GetByID(ctx, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if p.CustomerID != customerID {
		return nil, errs.NotFound("payment not found")
	}
	return p, nil
}

func (s *paymentService) ListMine(ctx context.Context, customerID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		payments, err = s.payments.WithTx(db).ListByCustomer(ctx, customerID)
		return err
	})
	return payments, err
}
