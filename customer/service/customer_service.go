package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	customerpkg "github.com/m-atef1999/Spotless-sub000/customer"
	"github.com/m-atef1999/Spotless-sub000/entity"
	"github.com/m-atef1999/Spotless-sub000/errs"
	"github.com/m-atef1999/Spotless-sub000/pipeline"
)

// customerService implements customer.Service.
type customerService struct {
	repo customerpkg.Repository
	pipe *pipeline.Pipeline
}

func NewCustomerService(repo customerpkg.Repository, pipe *pipeline.Pipeline) customerpkg.Service {
	return &customerService{repo: repo, pipe: pipe}
}

// Register creates a base User with role "customer" and a Customer profile
// in one transaction.
func (s *customerService) Register(ctx context.Context, req customerpkg.RegisterCustomerRequest) (*entity.Customer, error) {
	if req.Name == "" || req.Email == "" {
		return nil, errs.Validation("name and email are required")
	}

	var created *entity.Customer
	cmd := pipeline.Command{
		Name: "customer.register",
		Run: func(ctx context.Context, tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			exists, err := repo.EmailExists(ctx, req.Email)
			if err != nil {
				return err
			}
			if exists {
				return errs.Conflict("customer with this email already exists")
			}

			u, err := repo.StoreUser(ctx, entity.NewUser(req.Email, "customer"))
			if err != nil {
				return err
			}

			c := entity.NewCustomer(u.ID, req.Name, req.Email, req.Phone)
			if _, err := repo.StoreCustomer(ctx, c); err != nil {
				return err
			}

			id := c.ID
			u.CustomerID = &id
			if err := repo.SaveUser(ctx, u); err != nil {
				return err
			}

			created = c
			return nil
		},
	}
	if err := s.pipe.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var c *entity.Customer
	err := s.pipe.Query(ctx, func(ctx context.Context, db *gorm.DB) error {
		var err error
		c, err = s.repo.WithTx(db).GetCustomerByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
