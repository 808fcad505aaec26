package testutil

import (
	"fmt"
	"testing"

	"github.com/glassline/erp-api/internal/database"
	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with the schema
// migrated. Each call gets its own database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open sqlite test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// NewLogger returns a no-op logger for tests
func NewLogger() *zap.Logger {
	return zap.NewNop()
}

// CreateTestOrganization inserts an organization without pricing floors
func CreateTestOrganization(t *testing.T, db *gorm.DB, name string) *domain.Organization {
	t.Helper()
	org := &domain.Organization{
		Name:           name,
		StateCode:      "27",
		MinCharge:      decimal.Zero,
		WastagePercent: decimal.Zero,
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

// CreateTestProcess inserts an active process for an organization
func CreateTestProcess(t *testing.T, db *gorm.DB, organizationID uuid.UUID, name, rule string, rate float64) *domain.Process {
	t.Helper()
	process := &domain.Process{
		OrganizationID: organizationID,
		Name:           name,
		PricingRule:    pricing.PricingRule(rule),
		Rate:           decimal.NewFromFloat(rate),
		IsActive:       true,
	}
	require.NoError(t, db.Create(process).Error)
	return process
}

// CreateTestQuoteNumbers inserts bare quotes carrying the given numbers
func CreateTestQuoteNumbers(t *testing.T, db *gorm.DB, organizationID uuid.UUID, numbers ...string) {
	t.Helper()
	for _, n := range numbers {
		q := &domain.Quote{
			OrganizationID: organizationID,
			Number:         n,
			CustomerName:   "Test Customer",
			Status:         domain.QuoteStatusOpen,
			TaxMode:        pricing.TaxIntra,
		}
		require.NoError(t, db.Create(q).Error)
	}
}

// CreateTestOrderNumbers inserts bare orders carrying the given numbers
func CreateTestOrderNumbers(t *testing.T, db *gorm.DB, organizationID uuid.UUID, numbers ...string) {
	t.Helper()
	for _, n := range numbers {
		o := &domain.Order{
			OrganizationID: organizationID,
			Number:         n,
			CustomerName:   "Test Customer",
			Status:         domain.OrderStatusOpen,
			TaxMode:        pricing.TaxIntra,
		}
		require.NoError(t, db.Create(o).Error)
	}
}

// CreateTestInvoiceNumbers inserts bare invoices carrying the given numbers
func CreateTestInvoiceNumbers(t *testing.T, db *gorm.DB, organizationID uuid.UUID, numbers ...string) {
	t.Helper()
	for _, n := range numbers {
		inv := &domain.Invoice{
			OrganizationID: organizationID,
			Number:         n,
			CustomerName:   "Test Customer",
			TaxMode:        pricing.TaxIntra,
		}
		require.NoError(t, db.Create(inv).Error)
	}
}
