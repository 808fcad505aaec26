package repository

import (
	"context"
	"time"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaxRateRepository struct {
	db *gorm.DB
}

func NewTaxRateRepository(db *gorm.DB) *TaxRateRepository {
	return &TaxRateRepository{db: db}
}

func (r *TaxRateRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]domain.TaxRate, error) {
	var rates []domain.TaxRate
	err := r.db.WithContext(ctx).
		Scopes(ForOrganization(organizationID)).
		Order("tax_type ASC").
		Find(&rates).Error
	return rates, err
}

// Upsert stores the percentage for each given tax type in one transaction
func (r *TaxRateRepository) Upsert(ctx context.Context, organizationID uuid.UUID, percents map[domain.TaxType]decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for taxType, percent := range percents {
			rate := domain.TaxRate{
				OrganizationID: organizationID,
				TaxType:        taxType,
				Percent:        percent,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "organization_id"}, {Name: "tax_type"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"percent":    percent,
					"updated_at": time.Now(),
				}),
			}).Create(&rate).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
