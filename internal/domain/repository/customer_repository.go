package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/pkg/pagination"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error)
	// AdjustPoints adds delta to the loyalty balance unless the result would be
	// negative. It returns the new balance and whether the change was applied.
	AdjustPoints(ctx context.Context, id uuid.UUID, delta int64) (balance int64, applied bool, err error)
}

// LoyaltyRepository stores the loyalty ledger
type LoyaltyRepository interface {
	Create(ctx context.Context, entry *entity.LoyaltyEntry) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params *pagination.PaginationParams) ([]entity.LoyaltyEntry, int64, error)
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]entity.LoyaltyEntry, error)
}
