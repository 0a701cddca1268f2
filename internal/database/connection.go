// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zapcatalog/zapcatalog-backend/internal/config"
	"github.com/zapcatalog/zapcatalog-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

// Migrate creates the schema. AutoMigrate covers the tables, the raw SQL
// below covers the composite and partial indexes the hot queries depend on.
func Migrate(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.OwnerSetting{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.Notification{},
		&models.ManualContact{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Order listing: non-terminal partition first, newest first within it
		"CREATE INDEX IF NOT EXISTS idx_orders_company_status_created ON orders(company_id, status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id) WHERE customer_id IS NOT NULL",

		// Catalog reads
		"CREATE INDEX IF NOT EXISTS idx_products_company_active ON products(company_id, active)",
		"CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id) WHERE category_id IS NOT NULL",

		// Notification reconnect poll: unread new-order rows per company
		"CREATE INDEX IF NOT EXISTS idx_notifications_company_unread ON notifications(company_id, created_at DESC) WHERE read = false",

		// Contact registry recency sort
		"CREATE INDEX IF NOT EXISTS idx_manual_contacts_company_created ON manual_contacts(company_id, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// SeedDemoData creates a demo company for local development.
func SeedDemoData(db *gorm.DB) error {
	var count int64
	db.Model(&models.Company{}).Where("slug = ?", "demo-store").Count(&count)
	if count > 0 {
		return nil
	}

	owner := &models.User{
		Name:     "Demo Owner",
		Email:    "owner@demo.zapcatalog.dev",
		UserType: models.UserTypeOwner,
		Status:   models.UserStatusActive,
	}
	if err := owner.SetPassword("Demo1234"); err != nil {
		return fmt.Errorf("failed to set demo password: %w", err)
	}
	if err := db.Create(owner).Error; err != nil {
		return fmt.Errorf("failed to create demo owner: %w", err)
	}

	company := &models.Company{
		OwnerID:        owner.ID,
		Name:           "Demo Store",
		Slug:           "demo-store",
		WhatsAppNumber: "5511999990000",
		Locale:         "pt-BR",
		Currency:       "BRL",
	}
	if err := db.Create(company).Error; err != nil {
		return fmt.Errorf("failed to create demo company: %w", err)
	}

	products := []models.Product{
		{CompanyID: company.ID, Name: "Espresso Blend 250g", Price: decimal.NewFromFloat(34.90), Stock: 12, Active: true},
		{CompanyID: company.ID, Name: "Cold Brew Bottle", Price: decimal.NewFromFloat(18.00), Stock: models.StockUnlimited, Active: true},
	}
	if err := db.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to create demo products: %w", err)
	}

	logrus.Info("Demo data seeded")
	return nil
}
