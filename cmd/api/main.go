package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sangkips/salonpos-api/internal/application/service"
	"github.com/sangkips/salonpos-api/internal/config"
	"github.com/sangkips/salonpos-api/internal/infrastructure/database"
	"github.com/sangkips/salonpos-api/internal/infrastructure/repository"
	"github.com/sangkips/salonpos-api/internal/presentation/http/handler"
	"github.com/sangkips/salonpos-api/internal/presentation/http/middleware"
	"github.com/sangkips/salonpos-api/internal/presentation/http/routes"
	"github.com/sangkips/salonpos-api/pkg/email"
	"github.com/sangkips/salonpos-api/pkg/logger"
	"github.com/sangkips/salonpos-api/pkg/oauth"
	"github.com/sangkips/salonpos-api/pkg/printer"
	"github.com/sangkips/salonpos-api/pkg/utils"
)

const (
	shutdownTimeout       = 15 * time.Second
	idempotencyPurgeEvery = time.Hour
)

func main() {
	// Money goes over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Open(&cfg.Database, cfg.App.Debug, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db, zl); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	// Seed default data
	if err := database.SeedDefaultData(db, cfg.Seed, zl); err != nil {
		zl.Warn("failed to seed default data", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	salonRepo := repository.NewSalonRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	loyaltyRepo := repository.NewLoyaltyRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	confectionRepo := repository.NewConfectionRepository(db)
	reportRepo := repository.NewReportRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize email service
	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
	})

	// Initialize Google OAuth service
	googleOAuthService := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
	})

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
	)
	if err != nil {
		zl.Warn("failed to initialize printer", zap.Error(err))
		thermalPrinter = printer.NewNullPrinter()
	}
	defer func() { _ = thermalPrinter.Close() }()

	// Initialize services
	authService := service.NewAuthService(userRepo, salonRepo, tx, jwtManager, googleOAuthService, zl)
	salonService := service.NewSalonService(salonRepo)
	staffService := service.NewStaffService(userRepo, zl)
	catalogService := service.NewCatalogService(serviceRepo, productRepo)
	customerService := service.NewCustomerService(customerRepo, loyaltyRepo)
	saleService := service.NewSaleService(tx, saleRepo, serviceRepo, productRepo, customerRepo, loyaltyRepo, salonRepo, zl)
	cartService := service.NewCartService(service.CartConfig{
		SessionTTL:    cfg.Cart.SessionTTL,
		SweepInterval: cfg.Cart.SweepInterval,
		MaxSessions:   cfg.Cart.MaxSessions,
	}, catalogService, saleService, customerRepo, zl)
	confectionService := service.NewConfectionService(tx, confectionRepo, productRepo, zl)
	receiptService := service.NewReceiptService(thermalPrinter, cfg.Printer.CharWidth, saleService, salonRepo, customerRepo, emailService, zl)
	reportService := service.NewReportService(reportRepo, salonService)

	// Initialize handlers
	saleHandler := handler.NewSaleHandler(saleService, receiptService)
	handlers := &routes.Handlers{
		Auth: handler.NewAuthHandler(authService, handler.OAuthRedirects{
			Success: cfg.OAuth.FrontendSuccessURL,
			Error:   cfg.OAuth.FrontendErrorURL,
		}),
		Salon:      handler.NewSalonHandler(salonService, staffService),
		Customer:   handler.NewCustomerHandler(customerService),
		Catalog:    handler.NewCatalogHandler(catalogService),
		Cart:       handler.NewCartHandler(cartService, saleHandler),
		Sale:       saleHandler,
		Confection: handler.NewConfectionHandler(confectionService),
		Report:     handler.NewReportHandler(reportService),
		Printer:    handler.NewPrinterHandler(receiptService),
	}

	rateLimiter := middleware.NewSalonRateLimiter(middleware.RateLimiterConfigFor(cfg.RateLimit.Requests, cfg.RateLimit.Duration))

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Carts:           cartService,
		Log:             zl,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cartService.Run(ctx)
	go rateLimiter.Run(ctx)
	go middleware.PurgeExpiredKeys(ctx, idempotencyRepo, idempotencyPurgeEvery, zl)

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("starting server",
			zap.String("name", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down", zap.Int("open_carts", cartService.Count()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
