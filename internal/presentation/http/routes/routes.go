package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/storefront-admin/internal/config"
	domainRepo "github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/internal/infrastructure/database"
	"github.com/sangkips/storefront-admin/internal/presentation/http/handler"
	"github.com/sangkips/storefront-admin/internal/presentation/http/middleware"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/sangkips/storefront-admin/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Tenant    *handler.TenantHandler
	Product   *handler.ProductHandler
	Category  *handler.CategoryHandler
	Order     *handler.OrderHandler
	Customer  *handler.CustomerHandler
	Campaign  *handler.CampaignHandler
	Coupon    *handler.CouponHandler
	Event     *handler.EventHandler
	Dashboard *handler.DashboardHandler
	Settings  *handler.SettingsHandler
	User      *handler.UserHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	TenantRepo      domainRepo.TenantRepository
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.RateLimiter
	Clock           clock.Clock
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Authenticated routes that do not need a store
		account := v1.Group("")
		account.Use(middleware.AuthMiddleware(deps.JWTManager))
		registerAccountRoutes(account, h)

		// Store routes: authenticated, tenant resolved, rate limited per tenant
		store := v1.Group("")
		store.Use(middleware.AuthMiddleware(deps.JWTManager))
		store.Use(middleware.TenantMiddleware(deps.TenantRepo))
		store.Use(middleware.RequireTenant())
		store.Use(deps.RateLimiter.Middleware())
		registerStoreRoutes(store, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/reset-password", h.Auth.ResetPassword)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleLogin)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerAccountRoutes(account *gin.RouterGroup, h *Handlers) {
	// Auth/Profile routes
	account.POST("/auth/logout", h.Auth.Logout)
	account.POST("/auth/switch-tenant/:id", h.Auth.SwitchTenant)
	account.GET("/profile", h.Auth.GetProfile)
	account.PUT("/profile", h.Auth.UpdateProfile)
	account.PUT("/profile/password", h.Auth.ChangePassword)

	account.GET("/tenants", h.Tenant.ListTenants)
	account.POST("/tenants", h.Tenant.CreateTenant)

	// Users (Admin)
	users := account.Group("/users")
	users.Use(middleware.RequirePermission(database.PermManageUsers))
	{
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id/roles", h.User.UpdateRoles)
		users.DELETE("/:id", h.User.Delete)
	}
	account.GET("/roles", middleware.RequirePermission(database.PermManageUsers), h.User.ListRoles)
	account.GET("/permissions", middleware.RequirePermission(database.PermManageUsers), h.User.ListPermissions)

	// Super Admin routes
	admin := account.Group("/admin")
	admin.Use(middleware.RequireRole("super-admin"))
	{
		admin.POST("/tenants/assign-user", h.Tenant.AssignUserToTenant)
	}
}

func registerStoreRoutes(store *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotency := middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo, Clock: deps.Clock}

	// Current tenant
	tenants := store.Group("/tenants/current")
	{
		tenants.GET("", h.Tenant.GetCurrentTenant)
		tenants.GET("/members", h.Tenant.ListMembers)

		owners := tenants.Group("")
		owners.Use(middleware.RequireMemberRole("owner", "admin"))
		owners.PUT("", h.Tenant.UpdateTenant)
		owners.POST("/members", h.Tenant.InviteMember)
		owners.PUT("/members/:user_id", h.Tenant.UpdateMemberRole)
		owners.DELETE("/members/:user_id", h.Tenant.RemoveMember)
	}

	// Settings
	settings := store.Group("/settings")
	settings.Use(middleware.RequirePermission(database.PermManageSettings))
	{
		settings.GET("", h.Settings.GetSettings)
		settings.PUT("", h.Settings.UpdateSettings)
		settings.GET("/payment-methods", h.Settings.GetPaymentMethods)
		settings.PUT("/payment-methods", h.Settings.UpdatePaymentMethods)
	}

	// Dashboard
	store.GET("/dashboard", middleware.RequirePermission(database.PermViewDashboard), h.Dashboard.GetStats)

	products := store.Group("/products")
	products.Use(middleware.RequirePermission(database.PermManageProducts))
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.POST("/pricing/preview", h.Product.PreviewPricing)
		products.POST("/import", h.Product.Import)
		products.GET("/import/template", h.Product.ImportTemplate)
		products.GET("/low-stock", h.Product.GetLowStock)
		products.GET("/:slug", h.Product.Get)
		products.PUT("/:slug", h.Product.Update)
		products.DELETE("/:slug", h.Product.Delete)
		products.GET("/:slug/pricing", h.Product.GetPricing)
		products.GET("/:slug/price-history", h.Product.PriceHistory)
	}

	categories := store.Group("/categories")
	categories.Use(middleware.RequirePermission(database.PermManageCategories))
	{
		categories.GET("", h.Category.List)
		categories.POST("", h.Category.Create)
		categories.GET("/:id", h.Category.Get)
		categories.PUT("/:id", h.Category.Update)
		categories.DELETE("/:id", h.Category.Delete)
	}

	orders := store.Group("/orders")
	orders.Use(middleware.RequirePermission(database.PermManageOrders))
	{
		orders.GET("", h.Order.List)
		// Order creation uses idempotency middleware to prevent duplicates
		orders.POST("", middleware.IdempotencyRequired(idempotency), h.Order.Create)
		orders.GET("/:id", h.Order.Get)
		orders.PUT("/:id/status", middleware.Idempotency(idempotency), h.Order.UpdateStatus)
		orders.POST("/:id/cancel", middleware.Idempotency(idempotency), h.Order.Cancel)
	}

	customers := store.Group("/customers")
	customers.Use(middleware.RequirePermission(database.PermManageCustomers))
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
		customers.GET("/:id/points", h.Customer.ListPoints)
		customers.POST("/:id/points", middleware.Idempotency(idempotency), h.Customer.AdjustPoints)
	}

	campaigns := store.Group("/campaigns")
	campaigns.Use(middleware.RequirePermission(database.PermManageCampaigns))
	{
		campaigns.GET("", h.Campaign.List)
		campaigns.POST("", h.Campaign.Create)
		campaigns.GET("/conditions/schema", h.Campaign.ConditionSchema)
		campaigns.GET("/:id", h.Campaign.Get)
		campaigns.PUT("/:id", h.Campaign.Update)
		campaigns.DELETE("/:id", h.Campaign.Delete)
		campaigns.POST("/:id/activate", h.Campaign.Activate)
		campaigns.POST("/:id/pause", h.Campaign.Pause)
		campaigns.POST("/:id/end", h.Campaign.End)
		campaigns.POST("/:id/evaluate", h.Campaign.Evaluate)
	}

	coupons := store.Group("/coupons")
	coupons.Use(middleware.RequirePermission(database.PermManageCoupons))
	{
		coupons.GET("", h.Coupon.List)
		coupons.POST("", h.Coupon.Create)
		coupons.POST("/validate", h.Coupon.Validate)
		coupons.GET("/:id", h.Coupon.Get)
		coupons.PUT("/:id", h.Coupon.Update)
		coupons.DELETE("/:id", h.Coupon.Delete)
	}

	// Claiming needs order access only
	store.POST("/events/claim",
		middleware.RequirePermission(database.PermManageOrders),
		middleware.IdempotencyRequired(idempotency),
		h.Event.Claim,
	)

	events := store.Group("/events")
	events.Use(middleware.RequirePermission(database.PermManageEvents))
	{
		events.GET("", h.Event.List)
		events.POST("", h.Event.Create)
		events.GET("/:id", h.Event.Get)
		events.PUT("/:id", h.Event.Update)
		events.DELETE("/:id", h.Event.Delete)
		events.POST("/:id/rotate-token", h.Event.RotateToken)
		events.GET("/:id/qr", h.Event.QR)
	}
}
