package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/cache"
	cartpkg "github.com/m-atef1999/Spotless-sub000/cart"
	catalogpkg "github.com/m-atef1999/Spotless-sub000/catalog"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
	"github.com/m-atef1999/Spotless-sub000/pipeline"
)

// cartService implements cart.Service. Mutations run through the command
// pipeline; each declares the customer's cart cache key.
type cartService struct {
	repo    cartpkg.Repository
	catalog catalogpkg.Repository
	pipe    *pipeline.Pipeline
}

func NewCartService(repo cartpkg.Repository, catalog catalogpkg.Repository, pipe *pipeline.Pipeline) cartpkg.Service {
	return &cartService{repo: repo, catalog: catalog, pipe: pipe}
}

func (s *cartService) Get(ctx context.Context, customerID uuid.UUID) (*entity.Cart, error) {
	var c *entity.Cart
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		c, err = s.repo.WithTx(db).Get(ctx, customerID)
		return err
	})
	if err == nil {
		return c, nil
	}
	if !errs.IsKind(err, errs.KindNotFound) {
		return nil, err
	}

	// First access creates the empty cart.
	cmd := pipeline.Command{
		Name: "cart.create",
		Run: func(ctx context.Context, tx *gorm.DB) error {
			var err error
			c, err = s.repo.WithTx(tx).GetOrCreate(ctx, customerID)
			return err
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *cartService) AddItem(ctx context.Context, customerID, serviceID uuid.UUID, quantity int) (*entity.Cart, error) {
	if quantity <= 0 {
		return nil, errs.Validation("quantity must be positive")
	}

	var updated *entity.Cart
	cmd := pipeline.Command{
		Name:      "cart.add_item",
		CacheKeys: []string{cache.KeyCart(customerID)},
		Run: func(ctx context.Context, tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			// The service must exist and be active before it enters the cart;
			// the price itself is snapshotted later, at checkout.
			if _, err := s.catalog.WithTx(tx).GetServiceByID(ctx, serviceID); err != nil {
				return err
			}

			c, err := repo.GetOrCreate(ctx, customerID)
			if err != nil {
				return err
			}
			if err := repo.UpsertItem(ctx, c.ID, serviceID, quantity); err != nil {
				return err
			}

			updated, err = repo.Get(ctx, customerID)
			return err
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *cartService) RemoveItem(ctx context.Context, customerID, serviceID uuid.UUID) (*entity.Cart, error) {
	var updated *entity.Cart
	cmd := pipeline.Command{
		Name:      "cart.remove_item",
		CacheKeys: []string{cache.KeyCart(customerID)},
		Run: func(ctx context.Context, tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			c, err := repo.Get(ctx, customerID)
			if err != nil {
				return err
			}
			if err := repo.RemoveItem(ctx, c.ID, serviceID); err != nil {
				return err
			}
			updated, err = repo.Get(ctx, customerID)
			return err
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *cartService) Clear(ctx context.Context, customerID uuid.UUID) error {
	cmd := pipeline.Command{
		Name:      "cart.clear",
		CacheKeys: []string{cache.KeyCart(customerID)},
		Run: func(ctx context.Context, tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			c, err := repo.Get(ctx, customerID)
			if err != nil {
				if errs.IsKind(err, errs.KindNotFound) {
					return nil // nothing to clear
				}
				return err
			}
			return repo.Clear(ctx, c.ID)
		},
	}
	return s.pipe.Execute(ctx, cmd)
}
