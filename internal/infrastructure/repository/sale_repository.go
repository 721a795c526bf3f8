package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salonpos-api/internal/domain/repository"
)

var saleSortColumns = map[string]string{
	"sale_date":   "sale_date",
	"grand_total": "grand_total",
	"invoice_no":  "invoice_no",
	"created_at":  "created_at",
}

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return conn(ctx, r.db).Omit("User", "Customer").Create(sale).Error
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := conn(ctx, r.db).
		Scopes(SalonScope(ctx)).
		Preload("Customer").
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error) {
	var sale entity.Sale
	err := conn(ctx, r.db).Scopes(SalonScope(ctx)).First(&sale, "invoice_no = ?", invoiceNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := conn(ctx, r.db).
		Scopes(SalonScope(ctx)).
		Preload("Customer").
		Preload("User").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := conn(ctx, r.db).Model(&entity.Sale{}).Scopes(SalonScope(ctx))

	if params.Search != "" {
		query = query.Where("LOWER(invoice_no) LIKE ?", "%"+strings.ToLower(params.Search)+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}

	if params.StartDate != nil {
		query = query.Where("sale_date >= ?", params.StartDate.UTC())
	}

	if params.EndDate != nil {
		query = query.Where("sale_date < ?", params.EndDate.UTC())
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortOrder := params.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Order(orderClause(saleSortColumns, params.SortBy, sortOrder, "sale_date")).
		Find(&sales).Error

	return sales, total, err
}

func (r *saleRepository) MarkCancelled(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.Sale{}).
		Scopes(SalonScope(ctx)).
		Where("id = ? AND status = ?", id, enum.SaleStatusCompleted).
		Updates(map[string]interface{}{
			"status":        enum.SaleStatusCancelled,
			"cancelled_at":  at.UTC(),
			"cancel_reason": reason,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

type confectionRepository struct {
	db *gorm.DB
}

// NewConfectionRepository creates a new confection repository
func NewConfectionRepository(db *gorm.DB) domainRepo.ConfectionRepository {
	return &confectionRepository{db: db}
}

func (r *confectionRepository) Create(ctx context.Context, confection *entity.Confection) error {
	return conn(ctx, r.db).Omit("Product").Create(confection).Error
}

func (r *confectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Confection, error) {
	var confection entity.Confection
	err := conn(ctx, r.db).
		Scopes(SalonScope(ctx)).
		Preload("Product").
		Preload("Components").
		First(&confection, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &confection, err
}

func (r *confectionRepository) List(ctx context.Context, params *domainRepo.ConfectionFilterParams) ([]entity.Confection, int64, error) {
	var confections []entity.Confection
	var total int64

	query := conn(ctx, r.db).Model(&entity.Confection{}).Scopes(SalonScope(ctx))

	if params.ProductID != nil {
		query = query.Where("product_id = ?", *params.ProductID)
	}
	if params.StartDate != nil {
		query = query.Where("produced_at >= ?", params.StartDate.UTC())
	}
	if params.EndDate != nil {
		query = query.Where("produced_at < ?", params.EndDate.UTC())
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Product").
		Order("produced_at DESC").
		Find(&confections).Error

	return confections, total, err
}
