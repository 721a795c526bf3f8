package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sangkips/salonpos-api/internal/application/service"
	"github.com/sangkips/salonpos-api/internal/config"
	"github.com/sangkips/salonpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salonpos-api/internal/domain/repository"
	"github.com/sangkips/salonpos-api/internal/presentation/http/handler"
	"github.com/sangkips/salonpos-api/internal/presentation/http/middleware"
	"github.com/sangkips/salonpos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth       *handler.AuthHandler
	Salon      *handler.SalonHandler
	Customer   *handler.CustomerHandler
	Catalog    *handler.CatalogHandler
	Cart       *handler.CartHandler
	Sale       *handler.SaleHandler
	Confection *handler.ConfectionHandler
	Report     *handler.ReportHandler
	Printer    *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.SalonRateLimiter
	Carts           *service.CartService
	Log             *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		}
		if deps.Carts != nil {
			health["open_carts"] = deps.Carts.Count()
		}
		if deps.RateLimiter != nil {
			health["rate_limiter"] = deps.RateLimiter.Stats()
		}
		c.JSON(200, health)
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.RequireSalon())

		// Per-salon rate limiter
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile", h.Auth.UpdateProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	// Salon and staff
	registerSalonRoutes(protected, h)

	// Catalog
	registerCatalogRoutes(protected, h)

	// Customers
	registerCustomerRoutes(protected, h)

	// Carts
	registerCartRoutes(protected, h, deps)

	// Sales
	registerSaleRoutes(protected, h, deps)

	// Confections
	registerConfectionRoutes(protected, h)

	// Reports
	registerReportRoutes(protected, h)

	// Printer
	registerPrinterRoutes(protected, h)
}

func registerSalonRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/salon", h.Salon.GetCurrent)
	protected.PUT("/salon", middleware.RequireRole(entity.RoleOwner), h.Salon.Update)

	staff := protected.Group("/staff")
	staff.Use(middleware.RequirePermission(entity.PermissionManageStaff))
	{
		staff.GET("", h.Salon.ListStaff)
		staff.POST("", h.Salon.CreateStaff)
		staff.GET("/:id", h.Salon.GetStaff)
		staff.PUT("/:id", h.Salon.UpdateStaff)
	}
}

func registerCatalogRoutes(protected *gin.RouterGroup, h *Handlers) {
	view := middleware.RequirePermission(entity.PermissionViewCatalog)
	manage := middleware.RequirePermission(entity.PermissionManageCatalog)

	protected.GET("/catalog/lookup", view, h.Catalog.Lookup)

	services := protected.Group("/services")
	{
		services.GET("", view, h.Catalog.ListServices)
		services.POST("", manage, h.Catalog.CreateService)
		services.GET("/:id", view, h.Catalog.GetService)
		services.PUT("/:id", manage, h.Catalog.UpdateService)
		services.DELETE("/:id", manage, h.Catalog.DeleteService)
	}

	products := protected.Group("/products")
	{
		products.GET("", view, h.Catalog.ListProducts)
		products.POST("", manage, h.Catalog.CreateProduct)
		products.GET("/low-stock", view, h.Catalog.LowStock)
		products.GET("/:id", view, h.Catalog.GetProduct)
		products.PUT("/:id", manage, h.Catalog.UpdateProduct)
		products.DELETE("/:id", manage, h.Catalog.DeleteProduct)
		products.POST("/:id/restock", manage, h.Catalog.Restock)
	}
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	customers.Use(middleware.RequirePermission(entity.PermissionManageCustomers))
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", middleware.RequireRole(entity.RoleOwner), h.Customer.Delete)
		customers.GET("/:id/loyalty", h.Customer.Loyalty)
	}
}

func registerCartRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	carts := protected.Group("/carts")
	carts.Use(middleware.RequirePermission(entity.PermissionManageSales))
	{
		carts.GET("", h.Cart.List)
		carts.POST("", h.Cart.Open)
		carts.GET("/:id", h.Cart.Get)
		carts.DELETE("/:id", h.Cart.Cancel)
		carts.POST("/:id/items", h.Cart.AddItem)
		carts.PATCH("/:id/items/:index", h.Cart.UpdateLine)
		carts.DELETE("/:id/items/:index", h.Cart.RemoveLine)
		carts.POST("/:id/clear", h.Cart.Clear)
		carts.PUT("/:id/discount", h.Cart.SetDiscount)
		carts.DELETE("/:id/discount", h.Cart.RemoveDiscount)
		carts.PUT("/:id/points", h.Cart.SetPoints)
		carts.PUT("/:id/customer", h.Cart.SetCustomer)
		carts.POST("/:id/payments/check", h.Cart.CheckPayments)
		// Checkout accepts an optional key so a retried checkout replays the sale
		carts.POST("/:id/checkout", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			Log:  deps.Log,
		}, false), h.Cart.Checkout)
	}
}

func registerSaleRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	sales := protected.Group("/sales")
	sales.Use(middleware.RequirePermission(entity.PermissionManageSales))
	{
		sales.GET("", h.Sale.List)
		sales.POST("/quote", h.Sale.Quote)
		// Sale creation uses idempotency middleware to prevent duplicates
		sales.POST("", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			Log:  deps.Log,
		}, true), h.Sale.Create)
		sales.GET("/:id", h.Sale.Get)
		sales.GET("/:id/receipt", h.Sale.Receipt)
		sales.POST("/:id/print", h.Sale.Print)
		sales.POST("/:id/email", h.Sale.Email)
		sales.POST("/:id/cancel", middleware.RequireRole(entity.RoleOwner), h.Sale.Cancel)
	}
}

func registerConfectionRoutes(protected *gin.RouterGroup, h *Handlers) {
	confections := protected.Group("/confections")
	confections.Use(middleware.RequirePermission(entity.PermissionManageConfections))
	{
		confections.GET("", h.Confection.List)
		confections.POST("", h.Confection.Create)
		confections.POST("/preview", h.Confection.Preview)
		confections.GET("/:id", h.Confection.Get)
	}
}

func registerReportRoutes(protected *gin.RouterGroup, h *Handlers) {
	reports := protected.Group("/reports")
	reports.Use(middleware.RequirePermission(entity.PermissionViewReports))
	{
		reports.GET("/sales", h.Report.Sales)
		reports.GET("/sales/export", h.Report.Export)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printerGroup := protected.Group("/printer")
	printerGroup.Use(middleware.RequirePermission(entity.PermissionManageSales))
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
	}
}
