package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salonpos-api/internal/domain/repository"
	"github.com/sangkips/salonpos-api/pkg/pagination"
)

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return conn(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := conn(ctx, r.db).Scopes(SalonScope(ctx)).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	var customer entity.Customer
	err := conn(ctx, r.db).Scopes(SalonScope(ctx)).First(&customer, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

// Update saves profile fields only. The points balance moves through AdjustPoints.
func (r *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return conn(ctx, r.db).Scopes(SalonScope(ctx)).Omit("loyalty_points", "salon_id", "created_at").Save(customer).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(SalonScope(ctx)).Delete(&entity.Customer{}, "id = ?", id).Error
}

func (r *customerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := conn(ctx, r.db).Model(&entity.Customer{}).Scopes(SalonScope(ctx))
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&customers).Error

	return customers, total, err
}

// AdjustPoints applies delta in a single conditional UPDATE so concurrent
// sales cannot drive the balance below zero.
func (r *customerRepository) AdjustPoints(ctx context.Context, id uuid.UUID, delta int64) (int64, bool, error) {
	db := conn(ctx, r.db)
	result := db.Model(&entity.Customer{}).
		Scopes(SalonScope(ctx)).
		Where("id = ? AND loyalty_points + ? >= 0", id, delta).
		Update("loyalty_points", gorm.Expr("loyalty_points + ?", delta))
	if result.Error != nil {
		return 0, false, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, false, nil
	}

	var balance int64
	err := db.Model(&entity.Customer{}).
		Scopes(SalonScope(ctx)).
		Where("id = ?", id).
		Pluck("loyalty_points", &balance).Error
	return balance, true, err
}

type loyaltyRepository struct {
	db *gorm.DB
}

// NewLoyaltyRepository creates a new loyalty ledger repository
func NewLoyaltyRepository(db *gorm.DB) domainRepo.LoyaltyRepository {
	return &loyaltyRepository{db: db}
}

func (r *loyaltyRepository) Create(ctx context.Context, entry *entity.LoyaltyEntry) error {
	return conn(ctx, r.db).Create(entry).Error
}

func (r *loyaltyRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, params *pagination.PaginationParams) ([]entity.LoyaltyEntry, int64, error) {
	var entries []entity.LoyaltyEntry
	var total int64

	query := conn(ctx, r.db).Model(&entity.LoyaltyEntry{}).
		Scopes(SalonScope(ctx)).
		Where("customer_id = ?", customerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC, id DESC").
		Find(&entries).Error

	return entries, total, err
}

func (r *loyaltyRepository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]entity.LoyaltyEntry, error) {
	var entries []entity.LoyaltyEntry
	err := conn(ctx, r.db).
		Scopes(SalonScope(ctx)).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
