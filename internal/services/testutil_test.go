// internal/services/testutil_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zapcatalog/zapcatalog-backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One named in-memory database per test; shared cache keeps every
	// pooled connection on the same database.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
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
	require.NoError(t, err)

	return db
}

func seedOwner(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	owner := &models.User{
		Name:     "Test Owner",
		Email:    email,
		UserType: models.UserTypeOwner,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, owner.SetPassword("Password123"))
	require.NoError(t, db.Create(owner).Error)
	return owner
}

func seedCompany(t *testing.T, db *gorm.DB, owner *models.User, slug string) *models.Company {
	t.Helper()

	company := &models.Company{
		OwnerID:        owner.ID,
		Name:           "Acme Snacks",
		Slug:           slug,
		WhatsAppNumber: "+5511999990000",
		Locale:         "pt-BR",
		Currency:       "BRL",
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

func seedCustomer(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	customer := &models.User{
		Name:     "Test Customer",
		Email:    email,
		Phone:    "+5511888880000",
		UserType: models.UserTypeCustomer,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, customer.SetPassword("Password123"))
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func seedProduct(t *testing.T, db *gorm.DB, companyID uuid.UUID, name string, price string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		CompanyID: companyID,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Active:    true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}
