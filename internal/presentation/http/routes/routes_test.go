package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sangkips/salonpos-api/internal/application/service"
	"github.com/sangkips/salonpos-api/internal/config"
	"github.com/sangkips/salonpos-api/internal/infrastructure/database"
	"github.com/sangkips/salonpos-api/internal/infrastructure/repository"
	"github.com/sangkips/salonpos-api/internal/presentation/http/handler"
	"github.com/sangkips/salonpos-api/pkg/email"
	"github.com/sangkips/salonpos-api/pkg/oauth"
	"github.com/sangkips/salonpos-api/pkg/printer"
	"github.com/sangkips/salonpos-api/pkg/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type api struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.NewSQLiteDB(dsn, false, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, zap.NewNop()))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := zap.NewNop()
	cfg := &config.Config{App: config.AppConfig{Name: "salonpos-test", Env: "test"}}
	jwtManager := utils.NewJWTManager("test-secret", 15*time.Minute, time.Hour)

	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	salonRepo := repository.NewSalonRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	loyaltyRepo := repository.NewLoyaltyRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	salonService := service.NewSalonService(salonRepo)
	catalog := service.NewCatalogService(serviceRepo, productRepo)
	sales := service.NewSaleService(tx, repository.NewSaleRepository(db), serviceRepo, productRepo, customerRepo, loyaltyRepo, salonRepo, log)
	carts := service.NewCartService(service.DefaultCartConfig(), catalog, sales, customerRepo, log)
	receipts := service.NewReceiptService(printer.NewNullPrinter(), 32, sales, salonRepo, customerRepo, email.NewEmailService(email.EmailConfig{}), log)

	saleHandler := handler.NewSaleHandler(sales, receipts)
	h := &Handlers{
		Auth:       handler.NewAuthHandler(service.NewAuthService(userRepo, salonRepo, tx, jwtManager, oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{}), log), handler.OAuthRedirects{}),
		Salon:      handler.NewSalonHandler(salonService, service.NewStaffService(userRepo, log)),
		Customer:   handler.NewCustomerHandler(service.NewCustomerService(customerRepo, loyaltyRepo)),
		Catalog:    handler.NewCatalogHandler(catalog),
		Cart:       handler.NewCartHandler(carts, saleHandler),
		Sale:       saleHandler,
		Confection: handler.NewConfectionHandler(service.NewConfectionService(tx, repository.NewConfectionRepository(db), productRepo, log)),
		Report:     handler.NewReportHandler(service.NewReportService(repository.NewReportRepository(db), salonService)),
		Printer:    handler.NewPrinterHandler(receipts),
	}

	router := Setup(h, &Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Carts:           carts,
		Log:             log,
	})
	return &api{t: t, router: router}
}

func (a *api) do(method, path, token string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *api) decode(env envelope, v interface{}) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(env.Data, v))
}

// register creates a salon and returns the owner's access token
func (a *api) register(salon, mail string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"salon_name":       salon,
		"first_name":       "Awa",
		"last_name":        "Diop",
		"email":            mail,
		"password":         "secret123",
		"password_confirm": "secret123",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		AccessToken string `json:"access_token"`
	}
	a.decode(env, &out)
	require.NotEmpty(a.t, out.AccessToken)
	return out.AccessToken
}

type idResponse struct {
	ID string `json:"id"`
}

func TestHealth(t *testing.T) {
	a := newAPI(t)

	w, _ := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"open_carts":0`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newAPI(t)

	w, env := a.do(http.MethodGet, "/api/v1/carts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
}

func TestCartCheckoutFlow(t *testing.T) {
	a := newAPI(t)
	token := a.register("Salon Awa", "awa@example.com")

	w, _ := a.do(http.MethodPost, "/api/v1/services", token, gin.H{"name": "Tresses", "reference": "TR-01", "price": 10000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = a.do(http.MethodPost, "/api/v1/products", token, gin.H{
		"name": "Huile de coco", "reference": "HC-01", "buying_price": 1500, "selling_price": 2500,
		"stock_for_sale": 5, "stock_internal": 0, "stock_alert": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := a.do(http.MethodPost, "/api/v1/customers", token, gin.H{"name": "Mariama Ba", "phone": "+221770000001"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var customer idResponse
	a.decode(env, &customer)

	w, env = a.do(http.MethodPost, "/api/v1/carts", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cart idResponse
	a.decode(env, &cart)
	base := "/api/v1/carts/" + cart.ID

	w, _ = a.do(http.MethodPost, base+"/items", token, gin.H{"reference": "TR-01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, env = a.do(http.MethodPost, base+"/items", token, gin.H{"reference": "HC-01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var added struct {
		Index int `json:"index"`
	}
	a.decode(env, &added)
	assert.Equal(t, 1, added.Index)

	w, env = a.do(http.MethodPatch, fmt.Sprintf("%s/items/%d", base, added.Index), token, gin.H{"quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Applied bool `json:"applied"`
		Cart    struct {
			Totals struct {
				GrandTotal decimal.Decimal `json:"grand_total"`
			} `json:"totals"`
		} `json:"cart"`
	}
	a.decode(env, &updated)
	assert.True(t, updated.Applied)
	assert.True(t, updated.Cart.Totals.GrandTotal.Equal(decimal.NewFromInt(15000)), updated.Cart.Totals.GrandTotal.String())

	w, env = a.do(http.MethodPatch, base+"/items/9", token, gin.H{"quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	a.decode(env, &updated)
	assert.False(t, updated.Applied)

	w, _ = a.do(http.MethodPut, base+"/customer", token, gin.H{"customer_id": customer.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = a.do(http.MethodPost, base+"/payments/check", token, gin.H{"payments": []gin.H{{"method": "cash", "amount": 10000}}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var check struct {
		Valid     bool            `json:"valid"`
		Shortfall decimal.Decimal `json:"shortfall"`
	}
	a.decode(env, &check)
	assert.False(t, check.Valid)
	assert.True(t, check.Shortfall.Equal(decimal.NewFromInt(5000)))

	payments := gin.H{"payments": []gin.H{
		{"method": "cash", "amount": 10000},
		{"method": "wave", "amount": 6000, "reference": "WV-123"},
	}}
	w, env = a.do(http.MethodPost, base+"/checkout", token, payments, "Idempotency-Key", "checkout-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sale struct {
		ID           string          `json:"id"`
		InvoiceNo    string          `json:"invoice_no"`
		GrandTotal   decimal.Decimal `json:"grand_total"`
		ChangeOwed   decimal.Decimal `json:"change_owed"`
		PointsEarned int64           `json:"points_earned"`
	}
	a.decode(env, &sale)
	assert.NotEmpty(t, sale.InvoiceNo)
	assert.True(t, sale.GrandTotal.Equal(decimal.NewFromInt(15000)))
	assert.True(t, sale.ChangeOwed.Equal(decimal.NewFromInt(1000)))
	assert.Positive(t, sale.PointsEarned)

	// a retried checkout replays the stored sale instead of touching the closed cart
	w, env = a.do(http.MethodPost, base+"/checkout", token, payments, "Idempotency-Key", "checkout-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replayed"))
	var replayed struct {
		ID string `json:"id"`
	}
	a.decode(env, &replayed)
	assert.Equal(t, sale.ID, replayed.ID)

	w, _ = a.do(http.MethodGet, base, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = a.do(http.MethodGet, "/api/v1/sales/"+sale.ID+"/receipt", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), sale.InvoiceNo)

	w, env = a.do(http.MethodGet, "/api/v1/customers/"+customer.ID+"/loyalty", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), sale.ID)
}

func TestCreateSaleRequiresIdempotencyKey(t *testing.T) {
	a := newAPI(t)
	token := a.register("Salon Khady", "khady@example.com")

	w, _ := a.do(http.MethodPost, "/api/v1/sales", token, gin.H{"lines": []gin.H{}, "payments": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSaleRejectsKeyReuseWithDifferentBody(t *testing.T) {
	a := newAPI(t)
	token := a.register("Salon Ndeye", "ndeye@example.com")

	w, env := a.do(http.MethodPost, "/api/v1/services", token, gin.H{"name": "Brushing", "price": 3000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var svc idResponse
	a.decode(env, &svc)

	body := func(amount int) gin.H {
		return gin.H{
			"lines":    []gin.H{{"item_id": svc.ID, "kind": "service", "quantity": 1}},
			"payments": []gin.H{{"method": "cash", "amount": amount}},
		}
	}

	w, _ = a.do(http.MethodPost, "/api/v1/sales", token, body(3000), "Idempotency-Key", "sale-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = a.do(http.MethodPost, "/api/v1/sales", token, body(5000), "Idempotency-Key", "sale-1")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, env = a.do(http.MethodGet, "/api/v1/sales", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []idResponse `json:"items"`
	}
	a.decode(env, &list)
	assert.Len(t, list.Items, 1)
}

func TestQuoteDoesNotRecord(t *testing.T) {
	a := newAPI(t)
	token := a.register("Salon Binta", "binta@example.com")

	w, env := a.do(http.MethodPost, "/api/v1/services", token, gin.H{"name": "Coupe", "price": 4000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var svc idResponse
	a.decode(env, &svc)

	w, env = a.do(http.MethodPost, "/api/v1/sales/quote", token, gin.H{
		"lines":    []gin.H{{"item_id": svc.ID, "kind": "service", "quantity": 2, "discount": 500}},
		"discount": gin.H{"kind": "percentage", "value": 10},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var quote struct {
		Totals struct {
			GrandTotal decimal.Decimal `json:"grand_total"`
		} `json:"totals"`
	}
	a.decode(env, &quote)
	// (2 x 4000 - 500) less 10%
	assert.True(t, quote.Totals.GrandTotal.Equal(decimal.NewFromInt(6750)), quote.Totals.GrandTotal.String())

	w, env = a.do(http.MethodGet, "/api/v1/reports/sales", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report struct {
		Summary struct {
			SaleCount int64 `json:"sale_count"`
		} `json:"summary"`
	}
	a.decode(env, &report)
	assert.Zero(t, report.Summary.SaleCount)
}

func TestCashierCannotReachOwnerRoutes(t *testing.T) {
	a := newAPI(t)
	owner := a.register("Salon Coumba", "coumba@example.com")

	w, _ := a.do(http.MethodPost, "/api/v1/staff", owner, gin.H{
		"first_name": "Fatou", "last_name": "Sow", "email": "fatou@example.com", "password": "cashier123", "role": "cashier",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "fatou@example.com", "password": "cashier123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
	}
	a.decode(env, &login)
	cashier := login.AccessToken

	for _, path := range []string{"/api/v1/reports/sales", "/api/v1/staff", "/api/v1/confections"} {
		w, _ = a.do(http.MethodGet, path, cashier, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
	w, _ = a.do(http.MethodPost, "/api/v1/services", cashier, gin.H{"name": "Coupe", "price": 4000})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = a.do(http.MethodGet, "/api/v1/services", cashier, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = a.do(http.MethodPost, "/api/v1/carts", cashier, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCartsAreIsolatedBetweenSalons(t *testing.T) {
	a := newAPI(t)
	first := a.register("Salon Un", "un@example.com")
	second := a.register("Salon Deux", "deux@example.com")

	w, env := a.do(http.MethodPost, "/api/v1/carts", first, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var cart idResponse
	a.decode(env, &cart)

	w, _ = a.do(http.MethodGet, "/api/v1/carts/"+cart.ID, second, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = a.do(http.MethodGet, "/api/v1/carts/not-a-uuid", first, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportExportDownloadsWorkbook(t *testing.T) {
	a := newAPI(t)
	token := a.register("Salon Rama", "rama@example.com")

	w, _ := a.do(http.MethodGet, "/api/v1/reports/sales/export?from=2026-01-01&to=2026-01-31", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ventes_2026-01-01_2026-01-31.xlsx")
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w, _ = a.do(http.MethodGet, "/api/v1/reports/sales?from=2026-02-01&to=2026-01-01", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPrinterStatusWithoutPrinter(t *testing.T) {
	a := newAPI(t)
	token := a.register("Salon Sokhna", "sokhna@example.com")

	w, env := a.do(http.MethodGet, "/api/v1/printer/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status service.PrinterStatus
	a.decode(env, &status)
	assert.False(t, status.Configured)
	assert.Equal(t, "none", status.Type)
}
