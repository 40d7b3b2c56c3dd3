package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/storefront-admin/internal/config"
	"github.com/sangkips/storefront-admin/internal/domain/entity"
	"github.com/sangkips/storefront-admin/pkg/utils"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Permission names checked by the routes
const (
	PermViewDashboard    = "view-dashboard"
	PermManageProducts   = "manage-products"
	PermManageCategories = "manage-categories"
	PermManageOrders     = "manage-orders"
	PermManageCustomers  = "manage-customers"
	PermManageCampaigns  = "manage-campaigns"
	PermManageCoupons    = "manage-coupons"
	PermManageEvents     = "manage-events"
	PermManageSettings   = "manage-settings"
	PermManageUsers      = "manage-users"
	PermViewReports      = "view-reports"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.New(&log.Logger, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("connected to PostgreSQL")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("running database migrations")

	err := db.AutoMigrate(
		// Users and tenancy
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},
		&entity.PasswordResetToken{},
		&entity.Tenant{},
		&entity.TenantMembership{},

		// Catalog
		&entity.Category{},
		&entity.Product{},
		&entity.PriceHistory{},

		// CRM and sales
		&entity.Customer{},
		&entity.PointTransaction{},
		&entity.Order{},
		&entity.OrderItem{},

		// Loyalty
		&entity.Campaign{},
		&entity.Coupon{},
		&entity.CouponRedemption{},
		&entity.EarningEvent{},
		&entity.EventClaim{},

		// System
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("database migrations completed")
	return nil
}

// rolePermissions lists the permissions of each seeded role. A nil slice
// means every permission.
var rolePermissions = []struct {
	role        string
	permissions []string
}{
	{"super-admin", nil},
	{"admin", nil},
	{"staff", []string{
		PermViewDashboard,
		PermManageProducts,
		PermManageOrders,
		PermManageCustomers,
	}},
	{"user", []string{
		PermViewDashboard,
		PermManageProducts,
		PermManageCategories,
		PermManageOrders,
		PermManageCustomers,
		PermManageCampaigns,
		PermManageCoupons,
		PermManageEvents,
		PermManageSettings,
		PermViewReports,
	}},
}

// SeedDefaultData seeds roles, permissions and the optional super admin
func SeedDefaultData(db *gorm.DB) error {
	log.Info().Msg("seeding default data")

	names := []string{
		PermViewDashboard, PermManageProducts, PermManageCategories, PermManageOrders,
		PermManageCustomers, PermManageCampaigns, PermManageCoupons, PermManageEvents,
		PermManageSettings, PermManageUsers, PermViewReports,
	}
	for _, name := range names {
		perm := entity.Permission{Name: name, GuardName: "web"}
		if err := db.Where("name = ?", name).FirstOrCreate(&perm).Error; err != nil {
			log.Warn().Err(err).Str("permission", name).Msg("failed to create permission")
		}
	}

	var allPermissions []entity.Permission
	if err := db.Find(&allPermissions).Error; err != nil {
		return fmt.Errorf("failed to load permissions: %w", err)
	}
	byName := make(map[string]entity.Permission, len(allPermissions))
	for _, p := range allPermissions {
		byName[p.Name] = p
	}

	for _, rp := range rolePermissions {
		perms := allPermissions
		if rp.permissions != nil {
			perms = make([]entity.Permission, 0, len(rp.permissions))
			for _, name := range rp.permissions {
				if p, ok := byName[name]; ok {
					perms = append(perms, p)
				}
			}
		}

		var role entity.Role
		if err := db.Where("name = ?", rp.role).First(&role).Error; err != nil {
			role = entity.Role{Name: rp.role, GuardName: "web", Permissions: perms}
			if err := db.Create(&role).Error; err != nil {
				log.Warn().Err(err).Str("role", rp.role).Msg("failed to create role")
			}
			continue
		}
		// Roles created by older releases pick up new permissions
		if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			log.Warn().Err(err).Str("role", rp.role).Msg("failed to sync role permissions")
		}
	}

	seedSuperAdmin(db)

	log.Info().Msg("default data seeding completed")
	return nil
}

func seedSuperAdmin(db *gorm.DB) {
	adminEmail := viper.GetString("ADMIN_EMAIL")
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		return
	}

	var existing entity.User
	if err := db.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		log.Info().Str("email", adminEmail).Msg("super admin user already exists")
		return
	}

	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		log.Warn().Err(err).Msg("failed to hash admin password")
		return
	}

	var saRole entity.Role
	if err := db.Where("name = ?", "super-admin").First(&saRole).Error; err != nil {
		log.Warn().Err(err).Msg("super-admin role missing")
		return
	}

	adminName := viper.GetString("ADMIN_NAME")
	if adminName == "" {
		adminName = "Super Admin"
	}
	firstName, lastName, _ := strings.Cut(adminName, " ")

	adminUser := entity.User{
		ID:        uuid.New(),
		FirstName: firstName,
		LastName:  lastName,
		Username:  strings.Split(adminEmail, "@")[0],
		Email:     adminEmail,
		Password:  hashed,
		Roles:     []entity.Role{saRole},
	}
	if err := db.Create(&adminUser).Error; err != nil {
		log.Warn().Err(err).Msg("failed to create super admin user")
		return
	}
	log.Info().Str("email", adminEmail).Msg("super admin user created")
}
