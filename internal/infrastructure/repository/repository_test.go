package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salonpos-api/internal/domain/repository"
	"github.com/sangkips/salonpos-api/internal/infrastructure/database"
	"github.com/sangkips/salonpos-api/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.NewSQLiteDB(dsn, false, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, zap.NewNop()))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// seedSalon creates a salon with one cashier and returns a ctx scoped to it
func seedSalon(t *testing.T, db *gorm.DB, name string) (context.Context, *entity.Salon, *entity.User) {
	t.Helper()
	salon := &entity.Salon{Name: name, Slug: strings.ToLower(strings.ReplaceAll(name, " ", "-")), Settings: entity.DefaultSalonSettings()}
	require.NoError(t, db.Create(salon).Error)
	user := &entity.User{SalonID: salon.ID, FirstName: "Fatou", LastName: "Sow", Email: salon.Slug + "@example.com", Role: entity.RoleCashier, Active: true}
	require.NoError(t, db.Create(user).Error)
	return WithSalon(context.Background(), salon.ID), salon, user
}

func seedProduct(t *testing.T, ctx context.Context, repo domainRepo.ProductRepository, salonID uuid.UUID, name string, forSale, internal int) *entity.Product {
	t.Helper()
	ref := strings.ToUpper(name[:3])
	p := &entity.Product{
		SalonID:       salonID,
		Name:          name,
		Reference:     &ref,
		BuyingPrice:   decimal.NewFromInt(1000),
		SellingPrice:  decimal.NewFromInt(2500),
		StockForSale:  forSale,
		StockInternal: internal,
		StockAlert:    2,
	}
	require.NoError(t, repo.Create(ctx, p))
	return p
}

func TestSalonScope_WithoutSalonMatchesNothing(t *testing.T) {
	db := newTestDB(t)
	ctx, salon, _ := seedSalon(t, db, "Salon Awa")
	repo := NewCustomerRepository(db)
	require.NoError(t, repo.Create(ctx, &entity.Customer{SalonID: salon.ID, Name: "Mariama"}))

	customers, total, err := repo.List(context.Background(), pagination.DefaultPagination(), "")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, customers)

	customers, total, err = repo.List(ctx, pagination.DefaultPagination(), "mari")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, customers, 1)
}

func TestSalonScope_IsolatesSalons(t *testing.T) {
	db := newTestDB(t)
	ctxA, salonA, _ := seedSalon(t, db, "Salon A")
	ctxB, _, _ := seedSalon(t, db, "Salon B")
	repo := NewProductRepository(db)
	p := seedProduct(t, ctxA, repo, salonA.ID, "Shampoing", 5, 1)

	got, err := repo.GetByID(ctxB, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByID(ctxA, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Shampoing", got.Name)
}

func TestCustomerRepository_AdjustPoints(t *testing.T) {
	db := newTestDB(t)
	ctx, salon, _ := seedSalon(t, db, "Salon Awa")
	repo := NewCustomerRepository(db)
	c := &entity.Customer{SalonID: salon.ID, Name: "Mariama"}
	require.NoError(t, repo.Create(ctx, c))

	balance, applied, err := repo.AdjustPoints(ctx, c.ID, 150)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.EqualValues(t, 150, balance)

	_, applied, err = repo.AdjustPoints(ctx, c.ID, -200)
	require.NoError(t, err)
	assert.False(t, applied, "balance must not go negative")

	balance, applied, err = repo.AdjustPoints(ctx, c.ID, -100)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.EqualValues(t, 50, balance)

	// profile updates leave the balance alone
	c.Name = "Mariama Ba"
	c.LoyaltyPoints = 9999
	require.NoError(t, repo.Update(ctx, c))
	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mariama Ba", got.Name)
	assert.EqualValues(t, 50, got.LoyaltyPoints)
}

func TestProductRepository_AtomicDecrementBatch(t *testing.T) {
	db := newTestDB(t)
	ctx, salon, _ := seedSalon(t, db, "Salon Awa")
	repo := NewProductRepository(db)
	gel := seedProduct(t, ctx, repo, salon.ID, "Gel coiffant", 5, 3)
	oil := seedProduct(t, ctx, repo, salon.ID, "Huile de coco", 1, 0)

	t.Run("applies every pool", func(t *testing.T) {
		failed, err := repo.AtomicDecrementBatch(ctx, []domainRepo.StockChange{
			{ProductID: gel.ID, Source: enum.StockSourceForSale, Quantity: 2},
			{ProductID: gel.ID, Source: enum.StockSourceForSale, Quantity: 1},
			{ProductID: gel.ID, Source: enum.StockSourceInternalUse, Quantity: 3},
		})
		require.NoError(t, err)
		assert.Empty(t, failed)

		got, err := repo.GetByID(ctx, gel.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.StockForSale)
		assert.Equal(t, 0, got.StockInternal)
	})

	t.Run("rolls back when one pool is short", func(t *testing.T) {
		failed, err := repo.AtomicDecrementBatch(ctx, []domainRepo.StockChange{
			{ProductID: gel.ID, Source: enum.StockSourceForSale, Quantity: 1},
			{ProductID: oil.ID, Source: enum.StockSourceForSale, Quantity: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{oil.ID}, failed)

		got, err := repo.GetByID(ctx, gel.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.StockForSale, "gel decrement must be rolled back")
	})

	t.Run("increment restores", func(t *testing.T) {
		require.NoError(t, repo.AtomicIncrementBatch(ctx, []domainRepo.StockChange{
			{ProductID: gel.ID, Source: enum.StockSourceInternalUse, Quantity: 4},
		}))
		got, err := repo.GetByID(ctx, gel.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.StockInternal)
	})
}

func TestProductRepository_LowStockAndList(t *testing.T) {
	db := newTestDB(t)
	ctx, salon, _ := seedSalon(t, db, "Salon Awa")
	repo := NewProductRepository(db)
	seedProduct(t, ctx, repo, salon.ID, "Gel coiffant", 10, 10)
	seedProduct(t, ctx, repo, salon.ID, "Huile de coco", 1, 10)

	low, err := repo.GetLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Huile de coco", low[0].Name)

	products, total, err := repo.List(ctx, &domainRepo.CatalogFilterParams{
		Pagination: pagination.DefaultPagination(),
		SortBy:     "name; DROP TABLE products",
		SortOrder:  "desc",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, products, 2)
	assert.Equal(t, "Huile de coco", products[0].Name)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	ctx, salon, _ := seedSalon(t, db, "Salon Awa")
	customers := NewCustomerRepository(db)
	tx := NewTransactor(db)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, customers.Create(ctx, &entity.Customer{SalonID: salon.ID, Name: "Ghost"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, total, err := customers.List(ctx, pagination.DefaultPagination(), "")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func newSale(salonID, userID uuid.UUID, invoice string, at time.Time, total int64, method enum.PaymentMethod) *entity.Sale {
	amount := decimal.NewFromInt(total)
	return &entity.Sale{
		SalonID:    salonID,
		UserID:     userID,
		InvoiceNo:  invoice,
		SaleDate:   at,
		Status:     enum.SaleStatusCompleted,
		Subtotal:   amount,
		GrandTotal: amount,
		TotalPaid:  amount,
		ItemCount:  1,
		Lines: []entity.SaleLine{{
			Position: 0, ItemID: uuid.New(), Kind: enum.ItemKindService, Name: "Coupe",
			Quantity: 1, UnitPrice: amount, Total: amount,
		}},
		Payments: []entity.SalePayment{{Method: method, Amount: amount}},
	}
}

func TestSaleRepository_CreateListCancel(t *testing.T) {
	db := newTestDB(t)
	ctx, salon, user := seedSalon(t, db, "Salon Awa")
	repo := NewSaleRepository(db)
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	s1 := newSale(salon.ID, user.ID, "VTE-0001", day, 5000, enum.PaymentMethodCash)
	s2 := newSale(salon.ID, user.ID, "VTE-0002", day.Add(2*time.Hour), 7000, enum.PaymentMethodWave)
	require.NoError(t, repo.Create(ctx, s1))
	require.NoError(t, repo.Create(ctx, s2))

	got, err := repo.GetWithDetails(ctx, s1.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Lines, 1)
	assert.Len(t, got.Payments, 1)
	assert.Equal(t, "Fatou", got.User.FirstName)

	sales, total, err := repo.List(ctx, &domainRepo.SaleFilterParams{Pagination: pagination.DefaultPagination()})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "VTE-0002", sales[0].InvoiceNo)

	ok, err := repo.MarkCancelled(ctx, s1.ID, "erreur de caisse", day.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkCancelled(ctx, s1.ID, "again", day.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	status := enum.SaleStatusCompleted
	sales, total, err = repo.List(ctx, &domainRepo.SaleFilterParams{Pagination: pagination.DefaultPagination(), Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, s2.ID, sales[0].ID)
}

func TestReportRepository_Aggregates(t *testing.T) {
	db := newTestDB(t)
	ctx, salon, user := seedSalon(t, db, "Salon Awa")
	sales := NewSaleRepository(db)
	reports := NewReportRepository(db)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, sales.Create(ctx, newSale(salon.ID, user.ID, "VTE-1", day.Add(9*time.Hour), 5000, enum.PaymentMethodCash)))
	require.NoError(t, sales.Create(ctx, newSale(salon.ID, user.ID, "VTE-2", day.Add(10*time.Hour), 3000, enum.PaymentMethodCash)))
	require.NoError(t, sales.Create(ctx, newSale(salon.ID, user.ID, "VTE-3", day.Add(11*time.Hour), 2000, enum.PaymentMethodOrangeMoney)))
	cancelled := newSale(salon.ID, user.ID, "VTE-4", day.Add(12*time.Hour), 9000, enum.PaymentMethodCash)
	require.NoError(t, sales.Create(ctx, cancelled))
	_, err := sales.MarkCancelled(ctx, cancelled.ID, "", day.Add(13*time.Hour))
	require.NoError(t, err)
	// next day, outside the period
	require.NoError(t, sales.Create(ctx, newSale(salon.ID, user.ID, "VTE-5", day.Add(25*time.Hour), 1000, enum.PaymentMethodCard)))

	summary, err := reports.SalesSummary(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.SaleCount)
	assert.True(t, decimal.NewFromInt(10000).Equal(summary.GrandTotal), summary.GrandTotal.String())
	assert.EqualValues(t, 3, summary.ItemCount)

	breakdown, err := reports.PaymentBreakdown(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	assert.Equal(t, enum.PaymentMethodCash, breakdown[0].Method)
	assert.EqualValues(t, 2, breakdown[0].Count)
	assert.True(t, decimal.NewFromInt(8000).Equal(breakdown[0].Amount))
	assert.Equal(t, enum.PaymentMethodOrangeMoney, breakdown[1].Method)

	rows, err := reports.CompletedSales(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	empty, err := reports.PaymentBreakdown(context.Background(), day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestIdempotencyRepository(t *testing.T) {
	db := newTestDB(t)
	ctx, _, user := seedSalon(t, db, "Salon Awa")
	repo := NewIdempotencyRepository(db)

	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{Key: "k1", UserID: user.ID, Endpoint: "POST /api/v1/sales", ResponseCode: 201, ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{Key: "k2", UserID: user.ID, Endpoint: "POST /api/v1/sales", ResponseCode: 201, ExpiresAt: time.Now().Add(-time.Hour)}))

	got, err := repo.GetByKey(ctx, "k1", user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.ResponseCode)

	assert.Equal(t, salonIDOf(t, ctx), got.SalonID)

	missing, err := repo.GetByKey(ctx, "k1", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	otherCtx, _, _ := seedSalon(t, db, "Salon Binta")
	hidden, err := repo.GetByKey(otherCtx, "k1", user.ID)
	require.NoError(t, err)
	assert.Nil(t, hidden, "keys are not visible from another salon")

	require.Error(t, repo.Create(context.Background(), &entity.IdempotencyKey{Key: "k3", UserID: user.ID, Endpoint: "POST /api/v1/sales", ResponseCode: 201, ExpiresAt: time.Now().Add(time.Hour)}))

	n, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, repo.Delete(ctx, got.ID))
	gone, err := repo.GetByKey(ctx, "k1", user.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func salonIDOf(t *testing.T, ctx context.Context) uuid.UUID {
	t.Helper()
	id, ok := GetSalonID(ctx)
	require.True(t, ok)
	return id
}
