package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	"github.com/sangkips/salonpos-api/internal/domain/pos"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	"github.com/sangkips/salonpos-api/pkg/pagination"
)

func TestSaleService_CreateSale(t *testing.T) {
	env := newTestEnv(t)
	braids := env.service(t, "Tresses", "SRV-TRS", 5000)
	oil := env.product(t, "Huile de coco", "PRD-OIL", 1200, 2500, 10, 3)
	mariama := env.customer(t, "Mariama", 250)

	sale, err := env.sales.CreateSale(env.ctx, &SaleInput{
		UserID:     env.cashier.ID,
		CustomerID: &mariama.ID,
		Lines: []SaleLineInput{
			{ItemID: braids.ID, Kind: enum.ItemKindService, Quantity: 1},
			{ItemID: oil.ID, Kind: enum.ItemKindProduct, Quantity: 2},
		},
		PointsRedeemed: 200,
		Payments:       []pos.Payment{cash(10000)},
	})
	require.NoError(t, err)

	assert.True(t, sale.Subtotal.Equal(dec(10000)))
	assert.True(t, sale.PointsDiscountAmount.Equal(dec(2000)))
	assert.True(t, sale.GrandTotal.Equal(dec(8000)))
	assert.True(t, sale.ChangeOwed.Equal(dec(2000)))
	assert.EqualValues(t, 8, sale.PointsEarned)
	assert.Equal(t, 3, sale.ItemCount)
	assert.Equal(t, enum.SaleStatusCompleted, sale.Status)
	assert.Regexp(t, `^VTE-`, sale.InvoiceNo)
	require.Len(t, sale.Lines, 2)
	assert.Equal(t, "Tresses", sale.Lines[0].Name)
	assert.Nil(t, sale.Lines[0].StockSource)
	require.NotNil(t, sale.Lines[1].StockSource)
	assert.Equal(t, enum.StockSourceForSale, *sale.Lines[1].StockSource)
	require.Len(t, sale.Payments, 1)

	product := env.stock(t, oil.ID)
	assert.Equal(t, 8, product.StockForSale)
	assert.Equal(t, 3, product.StockInternal)

	assert.EqualValues(t, 58, env.points(t, mariama))
	entries, err := env.loyaltyRepo.ListBySale(env.ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	byType := map[enum.LoyaltyEntryType]entity.LoyaltyEntry{}
	for _, e := range entries {
		byType[e.Type] = e
	}
	assert.EqualValues(t, -200, byType[enum.LoyaltyEntryRedeem].Points)
	assert.EqualValues(t, 8, byType[enum.LoyaltyEntryEarn].Points)
	assert.EqualValues(t, 58, byType[enum.LoyaltyEntryEarn].BalanceAfter)
}

func TestSaleService_CreateSale_WithoutCustomerEarnsNothing(t *testing.T) {
	env := newTestEnv(t)
	cut := env.service(t, "Coupe", "SRV-CUT", 4500)

	sale, err := env.sales.CreateSale(env.ctx, &SaleInput{
		UserID:   env.cashier.ID,
		Lines:    []SaleLineInput{{ItemID: cut.ID, Kind: enum.ItemKindService, Quantity: 1}},
		Payments: []pos.Payment{cash(5000)},
	})
	require.NoError(t, err)
	assert.Zero(t, sale.PointsEarned)
	assert.True(t, sale.ChangeOwed.Equal(dec(500)))
}

func TestSaleService_CreateSale_RedeemsPartialHundreds(t *testing.T) {
	env := newTestEnv(t)
	colour := env.service(t, "Coloration", "SRV-COL", 5000)
	khady := env.customer(t, "Khady", 150)

	sale, err := env.sales.CreateSale(env.ctx, &SaleInput{
		UserID:         env.cashier.ID,
		CustomerID:     &khady.ID,
		Lines:          []SaleLineInput{{ItemID: colour.ID, Kind: enum.ItemKindService, Quantity: 1}},
		PointsRedeemed: 150,
		Payments:       []pos.Payment{cash(3500)},
	})
	require.NoError(t, err)

	assert.True(t, sale.PointsDiscountAmount.Equal(dec(1500)))
	assert.True(t, sale.GrandTotal.Equal(dec(3500)))
	assert.EqualValues(t, 3, sale.PointsEarned)
	// 150 - 150 + 3
	assert.EqualValues(t, 3, env.points(t, khady))
}

func TestSaleService_CreateSale_PriceOverrideAndDiscount(t *testing.T) {
	env := newTestEnv(t)
	cut := env.service(t, "Coupe", "SRV-CUT", 4500)
	price := dec(4000)

	sale, err := env.sales.CreateSale(env.ctx, &SaleInput{
		UserID:   env.cashier.ID,
		Lines:    []SaleLineInput{{ItemID: cut.ID, Kind: enum.ItemKindService, Quantity: 2, UnitPrice: &price, Discount: dec(500)}},
		Discount: &pos.GlobalDiscount{Kind: enum.DiscountKindPercentage, Value: dec(10), Reason: " fidèle "},
		Payments: []pos.Payment{{Method: enum.PaymentMethodWave, Amount: dec(6750), Reference: "WV-123"}},
	})
	require.NoError(t, err)

	assert.True(t, sale.Lines[0].UnitPrice.Equal(dec(4000)))
	assert.True(t, sale.Subtotal.Equal(dec(7500)))
	assert.True(t, sale.GlobalDiscountAmount.Equal(dec(750)))
	assert.True(t, sale.GrandTotal.Equal(dec(6750)))
	require.NotNil(t, sale.DiscountReason)
	assert.Equal(t, "fidèle", *sale.DiscountReason)
	require.NotNil(t, sale.Payments[0].Reference)
	assert.Equal(t, "WV-123", *sale.Payments[0].Reference)
}

func TestSaleService_CreateSale_Rejections(t *testing.T) {
	env := newTestEnv(t)
	cut := env.service(t, "Coupe", "SRV-CUT", 4500)
	gel := env.product(t, "Gel", "PRD-GEL", 500, 1500, 1, 0)
	awa := env.customer(t, "Awa", 50)

	inactive := false
	dormant := env.service(t, "Défrisage", "SRV-DEF", 6000)
	_, err := env.catalog.UpdateService(env.ctx, dormant.ID, &ServiceInput{Active: &inactive})
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   *SaleInput
		message string
	}{
		{
			name:  "empty cart",
			input: &SaleInput{UserID: env.cashier.ID, Payments: []pos.Payment{cash(100)}},
		},
		{
			name: "short payment",
			input: &SaleInput{
				UserID:   env.cashier.ID,
				Lines:    []SaleLineInput{{ItemID: cut.ID, Kind: enum.ItemKindService, Quantity: 1}},
				Payments: []pos.Payment{cash(4000)},
			},
			message: "Payments are short by 500",
		},
		{
			name: "mobile money without reference",
			input: &SaleInput{
				UserID:   env.cashier.ID,
				Lines:    []SaleLineInput{{ItemID: cut.ID, Kind: enum.ItemKindService, Quantity: 1}},
				Payments: []pos.Payment{{Method: enum.PaymentMethodOrangeMoney, Amount: dec(4500)}},
			},
		},
		{
			name: "insufficient stock",
			input: &SaleInput{
				UserID:   env.cashier.ID,
				Lines:    []SaleLineInput{{ItemID: gel.ID, Kind: enum.ItemKindProduct, Quantity: 2}},
				Payments: []pos.Payment{cash(3000)},
			},
			message: "Insufficient stock for: Gel",
		},
		{
			name: "not enough points",
			input: &SaleInput{
				UserID:         env.cashier.ID,
				CustomerID:     &awa.ID,
				Lines:          []SaleLineInput{{ItemID: cut.ID, Kind: enum.ItemKindService, Quantity: 1}},
				PointsRedeemed: 100,
				Payments:       []pos.Payment{cash(4500)},
			},
		},
		{
			name: "points without customer",
			input: &SaleInput{
				UserID:         env.cashier.ID,
				Lines:          []SaleLineInput{{ItemID: cut.ID, Kind: enum.ItemKindService, Quantity: 1}},
				PointsRedeemed: 100,
				Payments:       []pos.Payment{cash(4500)},
			},
		},
		{
			name: "kind mismatch",
			input: &SaleInput{
				UserID:   env.cashier.ID,
				Lines:    []SaleLineInput{{ItemID: cut.ID, Kind: enum.ItemKindProduct, Quantity: 1}},
				Payments: []pos.Payment{cash(4500)},
			},
		},
		{
			name: "inactive service",
			input: &SaleInput{
				UserID:   env.cashier.ID,
				Lines:    []SaleLineInput{{ItemID: dormant.ID, Kind: enum.ItemKindService, Quantity: 1}},
				Payments: []pos.Payment{cash(6000)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.sales.CreateSale(env.ctx, tt.input)
			appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
			if tt.message != "" {
				assert.Equal(t, tt.message, appErr.Message)
			}
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&entity.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, 1, env.stock(t, gel.ID).StockForSale)
	assert.EqualValues(t, 50, env.points(t, awa))
}

func TestSaleService_Quote_HasNoSideEffects(t *testing.T) {
	env := newTestEnv(t)
	gel := env.product(t, "Gel", "PRD-GEL", 500, 1500, 4, 0)

	quote, err := env.sales.Quote(env.ctx, &SaleInput{
		UserID:   env.cashier.ID,
		Lines:    []SaleLineInput{{ItemID: gel.ID, Kind: enum.ItemKindProduct, Quantity: 3}},
		Payments: []pos.Payment{cash(2000)},
	})
	require.NoError(t, err)
	assert.True(t, quote.Totals.GrandTotal.Equal(dec(4500)))
	assert.False(t, quote.Payment.Valid)
	assert.True(t, quote.Payment.Shortfall.Equal(dec(2500)))
	assert.Equal(t, 4, env.stock(t, gel.ID).StockForSale)
}

func TestSaleService_CancelSale(t *testing.T) {
	env := newTestEnv(t)
	gel := env.product(t, "Gel", "PRD-GEL", 500, 1500, 5, 5)
	awa := env.customer(t, "Awa", 300)
	internal := enum.StockSourceInternalUse

	sale, err := env.sales.CreateSale(env.ctx, &SaleInput{
		UserID:     env.cashier.ID,
		CustomerID: &awa.ID,
		Lines: []SaleLineInput{
			{ItemID: gel.ID, Kind: enum.ItemKindProduct, Quantity: 2},
			{ItemID: gel.ID, Kind: enum.ItemKindProduct, Quantity: 1, StockSource: &internal},
		},
		PointsRedeemed: 100,
		Payments:       []pos.Payment{cash(5000)},
	})
	require.NoError(t, err)
	// 4500 - 1000 = 3500, earns 3
	assert.EqualValues(t, 203, env.points(t, awa))
	p := env.stock(t, gel.ID)
	assert.Equal(t, 3, p.StockForSale)
	assert.Equal(t, 4, p.StockInternal)

	cancelled, err := env.sales.CancelSale(env.ctx, sale.ID, "erreur de caisse")
	require.NoError(t, err)
	assert.True(t, cancelled.IsCancelled())
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "erreur de caisse", *cancelled.CancelReason)

	p = env.stock(t, gel.ID)
	assert.Equal(t, 5, p.StockForSale)
	assert.Equal(t, 5, p.StockInternal)
	assert.EqualValues(t, 300, env.points(t, awa))

	_, err = env.sales.CancelSale(env.ctx, sale.ID, "again")
	requireAppError(t, err, http.StatusBadRequest)
}

func TestSaleService_CancelSale_ClawsBackSpentPointsToZero(t *testing.T) {
	env := newTestEnv(t)
	cut := env.service(t, "Coupe", "SRV-CUT", 5000)
	awa := env.customer(t, "Awa", 0)

	sale, err := env.sales.CreateSale(env.ctx, &SaleInput{
		UserID:     env.cashier.ID,
		CustomerID: &awa.ID,
		Lines:      []SaleLineInput{{ItemID: cut.ID, Kind: enum.ItemKindService, Quantity: 1}},
		Payments:   []pos.Payment{cash(5000)},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 5, env.points(t, awa))

	// the customer spends three of the five points elsewhere
	_, _, err = env.customerRepo.AdjustPoints(env.ctx, awa.ID, -3)
	require.NoError(t, err)

	_, err = env.sales.CancelSale(env.ctx, sale.ID, "")
	require.NoError(t, err)
	assert.Zero(t, env.points(t, awa))
}

func TestSaleService_ListSales(t *testing.T) {
	env := newTestEnv(t)
	cut := env.service(t, "Coupe", "SRV-CUT", 5000)
	for i := 0; i < 3; i++ {
		_, err := env.sales.CreateSale(env.ctx, &SaleInput{
			UserID:   env.cashier.ID,
			Lines:    []SaleLineInput{{ItemID: cut.ID, Kind: enum.ItemKindService, Quantity: 1}},
			Payments: []pos.Payment{cash(5000)},
		})
		require.NoError(t, err)
	}

	result, err := env.sales.ListSales(env.ctx, &repository.SaleFilterParams{
		Pagination: &pagination.PaginationParams{Page: 1, PerPage: 2},
	})
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.EqualValues(t, 3, result.Pagination.Total)
}
