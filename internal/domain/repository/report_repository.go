package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
)

// SalesSummaryResult aggregates completed sales over a period
type SalesSummaryResult struct {
	SaleCount      int64
	Subtotal       decimal.Decimal
	TotalDiscount  decimal.Decimal
	LineDiscounts  decimal.Decimal
	GrandTotal     decimal.Decimal
	PointsEarned   int64
	PointsRedeemed int64
	ItemCount      int64
}

// PaymentMethodResult is the amount collected with one payment method
type PaymentMethodResult struct {
	Method enum.PaymentMethod
	Count  int64
	Amount decimal.Decimal
}

// ReportRepository runs read-only aggregate queries for the salon in ctx.
// Periods are half-open: from <= sale_date < to.
type ReportRepository interface {
	SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummaryResult, error)
	PaymentBreakdown(ctx context.Context, from, to time.Time) ([]PaymentMethodResult, error)
	// CompletedSales lists completed sales in the period without relations
	CompletedSales(ctx context.Context, from, to time.Time) ([]entity.Sale, error)
}
