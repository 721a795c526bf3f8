package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	"github.com/sangkips/salonpos-api/internal/domain/pos"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	"github.com/sangkips/salonpos-api/internal/infrastructure/database"
	infraRepo "github.com/sangkips/salonpos-api/internal/infrastructure/repository"
	"github.com/sangkips/salonpos-api/pkg/apperror"
)

// testEnv wires the services against an in-memory SQLite database with one salon
type testEnv struct {
	db      *gorm.DB
	ctx     context.Context
	salon   *entity.Salon
	cashier *entity.User

	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	loyaltyRepo  repository.LoyaltyRepository
	salonRepo    repository.SalonRepository

	catalog     *CatalogService
	customers   *CustomerService
	sales       *SaleService
	confections *ConfectionService
	salons      *SalonService
	reports     *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
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

	salon := &entity.Salon{Name: "Salon Awa", Slug: "salon-awa", Settings: entity.DefaultSalonSettings()}
	require.NoError(t, db.Create(salon).Error)
	cashier := &entity.User{SalonID: salon.ID, FirstName: "Fatou", LastName: "Sow", Email: "fatou@example.com", Role: entity.RoleCashier, Active: true}
	require.NoError(t, db.Create(cashier).Error)

	env := &testEnv{
		db:           db,
		ctx:          infraRepo.WithSalon(context.Background(), salon.ID),
		salon:        salon,
		cashier:      cashier,
		customerRepo: infraRepo.NewCustomerRepository(db),
		productRepo:  infraRepo.NewProductRepository(db),
		loyaltyRepo:  infraRepo.NewLoyaltyRepository(db),
		salonRepo:    infraRepo.NewSalonRepository(db),
	}
	tx := infraRepo.NewTransactor(db)
	serviceRepo := infraRepo.NewServiceRepository(db)

	env.catalog = NewCatalogService(serviceRepo, env.productRepo)
	env.customers = NewCustomerService(env.customerRepo, env.loyaltyRepo)
	env.sales = NewSaleService(tx, infraRepo.NewSaleRepository(db), serviceRepo, env.productRepo,
		env.customerRepo, env.loyaltyRepo, env.salonRepo, zap.NewNop())
	env.confections = NewConfectionService(tx, infraRepo.NewConfectionRepository(db), env.productRepo, zap.NewNop())
	env.salons = NewSalonService(env.salonRepo)
	env.reports = NewReportService(infraRepo.NewReportRepository(db), env.salons)
	return env
}

func (e *testEnv) service(t *testing.T, name, ref string, price int64) *entity.ServiceItem {
	t.Helper()
	p := decimal.NewFromInt(price)
	svc, err := e.catalog.CreateService(e.ctx, &ServiceInput{Name: &name, Reference: &ref, Price: &p})
	require.NoError(t, err)
	return svc
}

func (e *testEnv) product(t *testing.T, name, ref string, buying, selling int64, forSale, internal int) *entity.Product {
	t.Helper()
	b, s := decimal.NewFromInt(buying), decimal.NewFromInt(selling)
	alert := 1
	p, err := e.catalog.CreateProduct(e.ctx, &ProductInput{
		Name:          &name,
		Reference:     &ref,
		BuyingPrice:   &b,
		SellingPrice:  &s,
		StockForSale:  &forSale,
		StockInternal: &internal,
		StockAlert:    &alert,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) customer(t *testing.T, name string, points int64) *entity.Customer {
	t.Helper()
	c, err := e.customers.CreateCustomer(e.ctx, &CreateCustomerInput{Name: name})
	require.NoError(t, err)
	if points > 0 {
		_, _, err = e.customerRepo.AdjustPoints(e.ctx, c.ID, points)
		require.NoError(t, err)
	}
	return c
}

func (e *testEnv) stock(t *testing.T, id uuid.UUID) *entity.Product {
	t.Helper()
	var p entity.Product
	require.NoError(t, e.db.First(&p, "id = ?", id).Error)
	return &p
}

func (e *testEnv) points(t *testing.T, c *entity.Customer) int64 {
	t.Helper()
	got, err := e.customerRepo.GetByID(e.ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	return got.LoyaltyPoints
}

func cash(amount int64) pos.Payment {
	return pos.Payment{Method: enum.PaymentMethodCash, Amount: decimal.NewFromInt(amount)}
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func requireAppError(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}
