package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salonpos-api/internal/domain/repository"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) domainRepo.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) completed(ctx context.Context, from, to time.Time) *gorm.DB {
	return conn(ctx, r.db).Model(&entity.Sale{}).
		Scopes(SalonScope(ctx)).
		Where("status = ? AND sale_date >= ? AND sale_date < ?", enum.SaleStatusCompleted, from.UTC(), to.UTC())
}

func (r *reportRepository) SalesSummary(ctx context.Context, from, to time.Time) (*domainRepo.SalesSummaryResult, error) {
	var result domainRepo.SalesSummaryResult

	err := r.completed(ctx, from, to).Select(`
		COUNT(*) AS sale_count,
		COALESCE(SUM(subtotal), 0) AS subtotal,
		COALESCE(SUM(total_discount), 0) AS total_discount,
		COALESCE(SUM(line_discount_total), 0) AS line_discounts,
		COALESCE(SUM(grand_total), 0) AS grand_total,
		COALESCE(SUM(points_earned), 0) AS points_earned,
		COALESCE(SUM(points_redeemed), 0) AS points_redeemed,
		COALESCE(SUM(item_count), 0) AS item_count
	`).Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *reportRepository) PaymentBreakdown(ctx context.Context, from, to time.Time) ([]domainRepo.PaymentMethodResult, error) {
	results := []domainRepo.PaymentMethodResult{}

	salonID, ok := GetSalonID(ctx)
	if !ok {
		return results, nil
	}

	err := conn(ctx, r.db).Raw(`
		SELECT
			p.method AS method,
			COUNT(*) AS count,
			COALESCE(SUM(p.amount), 0) AS amount
		FROM sale_payments p
		JOIN sales s ON s.id = p.sale_id
		WHERE s.salon_id = ?
			AND s.status = ?
			AND s.deleted_at IS NULL
			AND s.sale_date >= ? AND s.sale_date < ?
		GROUP BY p.method
		ORDER BY p.method
	`, salonID, enum.SaleStatusCompleted, from.UTC(), to.UTC()).Scan(&results).Error
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *reportRepository) CompletedSales(ctx context.Context, from, to time.Time) ([]entity.Sale, error) {
	var sales []entity.Sale
	err := r.completed(ctx, from, to).Order("sale_date ASC").Find(&sales).Error
	return sales, err
}
