package app

import (
	"context"

	"github.com/rabiot125/Banking-Microservice/internal/domain"
	"github.com/rabiot125/Banking-Microservice/internal/logger"
	"github.com/rabiot125/Banking-Microservice/internal/store"
)

// CustomerService encapsulates customer use cases.
type CustomerService struct {
	repo store.CustomerRepository
	log  *logger.Logger
}

// NewCustomerService creates a CustomerService.
func NewCustomerService(repo store.CustomerRepository, log *logger.Logger) *CustomerService {
	return &CustomerService{repo: repo, log: log}
}

// CreateCustomerInput defines the required input for creating a customer.
type CreateCustomerInput struct {
	FirstName string
	LastName  string
	OtherName *string
}

func (s *CustomerService) ListCustomers(ctx context.Context, filter domain.CustomerFilter, page domain.PageRequest) (domain.Page[domain.Customer], error) {
	customers, total, err := s.repo.ListCustomers(ctx, filter, page)
	if err != nil {
		return domain.Page[domain.Customer]{}, err
	}
	return domain.NewPage(customers, page, total), nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *CustomerService) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error) {
	created, err := s.repo.CreateCustomer(ctx, &domain.Customer{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		OtherName: input.OtherName,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("customer created", "customer_id", created.ID)
	return created, nil
}

// UpdateCustomer applies a partial update. Unset fields keep their stored values.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, patch domain.CustomerPatch) (*domain.Customer, error) {
	updated, err := s.repo.UpdateCustomer(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.log.Info("customer updated", "customer_id", id)
	return updated, nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.log.Info("customer deleted", "customer_id", id)
	return nil
}
