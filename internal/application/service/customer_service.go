package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/salonpos-api/internal/infrastructure/repository"
	"github.com/sangkips/salonpos-api/pkg/apperror"
	"github.com/sangkips/salonpos-api/pkg/pagination"
)

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
	loyaltyRepo  repository.LoyaltyRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository, loyaltyRepo repository.LoyaltyRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, loyaltyRepo: loyaltyRepo}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name     string
	Email    *string
	Phone    *string
	Address  *string
	Birthday *time.Time
	Notes    *string
}

// CreateCustomer creates a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	salonID, ok := infraRepo.GetSalonID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Salon context required")
	}

	if err := s.ensurePhoneFree(ctx, input.Phone, uuid.Nil); err != nil {
		return nil, err
	}

	customer := &entity.Customer{
		SalonID:  salonID,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Address:  input.Address,
		Birthday: input.Birthday,
		Notes:    input.Notes,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// ensurePhoneFree rejects a phone number already used by another customer of the salon
func (s *CustomerService) ensurePhoneFree(ctx context.Context, phone *string, self uuid.UUID) error {
	if phone == nil || *phone == "" {
		return nil
	}
	existing, err := s.customerRepo.GetByPhone(ctx, *phone)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("A customer with this phone number already exists")
	}
	return nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists the salon's customers
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// UpdateCustomerInput represents the update customer input
type UpdateCustomerInput struct {
	ID       uuid.UUID
	Name     *string
	Email    *string
	Phone    *string
	Address  *string
	Birthday *time.Time
	Notes    *string
}

// UpdateCustomer updates a customer's profile. The loyalty balance is not editable here.
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != "" {
		customer.Name = *input.Name
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Phone != nil {
		if err := s.ensurePhoneFree(ctx, input.Phone, customer.ID); err != nil {
			return nil, err
		}
		customer.Phone = input.Phone
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.Birthday != nil {
		customer.Birthday = input.Birthday
	}
	if input.Notes != nil {
		customer.Notes = input.Notes
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// DeleteCustomer deletes a customer
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, id)
}

// LoyaltyHistory lists a customer's loyalty ledger, newest first
func (s *CustomerService) LoyaltyHistory(ctx context.Context, id uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.LoyaltyEntry], error) {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return nil, err
	}

	entries, total, err := s.loyaltyRepo.ListByCustomer(ctx, id, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(entries, pag), nil
}
