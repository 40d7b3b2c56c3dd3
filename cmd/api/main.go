package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/storefront-admin/internal/application/service"
	"github.com/sangkips/storefront-admin/internal/config"
	"github.com/sangkips/storefront-admin/internal/domain/event"
	domainRepo "github.com/sangkips/storefront-admin/internal/domain/repository"
	"github.com/sangkips/storefront-admin/internal/infrastructure/cache"
	"github.com/sangkips/storefront-admin/internal/infrastructure/database"
	"github.com/sangkips/storefront-admin/internal/infrastructure/messaging"
	"github.com/sangkips/storefront-admin/internal/infrastructure/repository"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/request"
	"github.com/sangkips/storefront-admin/internal/presentation/http/handler"
	"github.com/sangkips/storefront-admin/internal/presentation/http/middleware"
	"github.com/sangkips/storefront-admin/internal/presentation/http/routes"
	"github.com/sangkips/storefront-admin/pkg/clock"
	"github.com/sangkips/storefront-admin/pkg/email"
	"github.com/sangkips/storefront-admin/pkg/oauth"
	"github.com/sangkips/storefront-admin/pkg/utils"
)

const janitorInterval = time.Hour

func main() {
	// Load configuration
	cfg := config.Load()
	config.SetupLogger(cfg.Log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := request.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Warn().Err(err).Msg("failed to seed default data")
	}

	// Redis is optional; without it reads go straight to postgres
	var store cache.Store = cache.Noop{}
	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, caching disabled")
		} else {
			defer client.Close()
			store = cache.NewRedisCache(client, cfg.Redis.CacheTTL)
		}
	}

	// Kafka is optional; without brokers loyalty events are logged
	var publisher event.Publisher = messaging.LogPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close kafka writer")
			}
		}()
		publisher = kafkaPublisher
	}

	clk := clock.Real()

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
		clk,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	settingsRepo := cache.NewSettingsRepository(repository.NewSettingsRepository(db), store)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	priceHistoryRepo := repository.NewPriceHistoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	campaignRepo := cache.NewCampaignRepository(repository.NewCampaignRepository(db), store)
	couponRepo := repository.NewCouponRepository(db)
	eventRepo := repository.NewEarningEventRepository(db)
	reportRepo := repository.NewReportRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	passwordResetRepo := repository.NewPasswordResetTokenRepository(db)

	// Initialize email service
	emailService := email.NewSMTPMailer(email.Config{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
		FrontendURL:  cfg.Email.FrontendURL,
	})

	// Initialize Google OAuth service
	googleOAuthService := oauth.NewGoogle(oauth.Config{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.GoogleRedirectURL,
		SuccessURL:   cfg.OAuth.FrontendSuccessURL,
		ErrorURL:     cfg.OAuth.FrontendErrorURL,
	})

	// Initialize services
	tenantService := service.NewTenantService(tenantRepo, userRepo)
	authService := service.NewAuthService(userRepo, roleRepo, tenantRepo, passwordResetRepo, tenantService, jwtManager, emailService, googleOAuthService, clk)
	productService := service.NewProductService(productRepo, categoryRepo, priceHistoryRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	customerService := service.NewCustomerService(customerRepo, publisher)
	campaignService := service.NewCampaignService(campaignRepo, clk)
	couponService := service.NewCouponService(couponRepo, customerRepo, clk)
	eventService := service.NewEventService(eventRepo, customerRepo, publisher, clk, cfg.Loyalty.ClaimBaseURL)
	orderService := service.NewOrderService(service.OrderDeps{
		Orders:    orderRepo,
		Products:  productRepo,
		Customers: customerRepo,
		Coupons:   couponRepo,
		Campaigns: campaignRepo,
		Settings:  settingsRepo,
		Alerter:   service.NewStockAlerter(tenantRepo, userRepo, emailService),
		Publisher: publisher,
		Clock:     clk,
	})
	dashboardService := service.NewDashboardService(reportRepo, productRepo, campaignRepo, clk)
	settingsService := service.NewSettingsService(settingsRepo)
	userService := service.NewUserService(userRepo, roleRepo, permissionRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService, googleOAuthService),
		Tenant:    handler.NewTenantHandler(tenantService),
		Product:   handler.NewProductHandler(productService, cfg.Storage.UploadMaxSize),
		Category:  handler.NewCategoryHandler(categoryService),
		Order:     handler.NewOrderHandler(orderService),
		Customer:  handler.NewCustomerHandler(customerService),
		Campaign:  handler.NewCampaignHandler(campaignService),
		Coupon:    handler.NewCouponHandler(couponService),
		Event:     handler.NewEventHandler(eventService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Settings:  handler.NewSettingsHandler(settingsService),
		User:      handler.NewUserHandler(userService),
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterFromWindow(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Close()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		TenantRepo:      tenantRepo,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Clock:           clk,
	})

	go runJanitor(ctx, clk, idempotencyRepo, passwordResetRepo)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("env", cfg.App.Env).Msgf("starting %s on port %s", cfg.App.Name, cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

// runJanitor deletes expired idempotency keys and reset tokens until ctx ends
func runJanitor(
	ctx context.Context,
	clk clock.Clock,
	idempotencyRepo domainRepo.IdempotencyRepository,
	passwordResetRepo domainRepo.PasswordResetTokenRepository,
) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := idempotencyRepo.DeleteExpired(ctx, clk.Now())
			if err != nil {
				log.Warn().Err(err).Msg("failed to delete expired idempotency keys")
			} else if n > 0 {
				log.Debug().Int64("count", n).Msg("deleted expired idempotency keys")
			}
			if n, err := passwordResetRepo.DeleteExpired(ctx, clk.Now()); err != nil {
				log.Warn().Err(err).Msg("failed to delete expired reset tokens")
			} else if n > 0 {
				log.Debug().Int64("count", n).Msg("deleted spent reset tokens")
			}
		}
	}
}
