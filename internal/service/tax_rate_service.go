package service

import (
	"context"
	"fmt"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/mapper"
	"github.com/glassline/erp-api/internal/pricing"
	"github.com/glassline/erp-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TaxRateService manages the GST percentages of an organization. Tax types an
// organization has not configured fall back to the service defaults.
type TaxRateService struct {
	repo     *repository.TaxRateRepository
	defaults pricing.TaxRates
	logger   *zap.Logger
}

// NewTaxRateService creates a new TaxRateService
func NewTaxRateService(repo *repository.TaxRateRepository, defaults pricing.TaxRates, logger *zap.Logger) *TaxRateService {
	return &TaxRateService{
		repo:     repo,
		defaults: defaults,
		logger:   logger,
	}
}

// Rates returns the effective rates used for pricing
func (s *TaxRateService) Rates(ctx context.Context, organizationID uuid.UUID) (pricing.TaxRates, error) {
	rates := s.defaults

	stored, err := s.repo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return rates, fmt.Errorf("failed to load tax rates: %w", err)
	}
	for _, r := range stored {
		switch r.TaxType {
		case domain.TaxTypeCGST:
			rates.CGST = r.Percent
		case domain.TaxTypeSGST:
			rates.SGST = r.Percent
		case domain.TaxTypeIGST:
			rates.IGST = r.Percent
		}
	}
	return rates, nil
}

// List returns the effective rates as a DTO
func (s *TaxRateService) List(ctx context.Context, organizationID uuid.UUID) (*domain.TaxRatesDTO, error) {
	rates, err := s.Rates(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToTaxRatesDTO(rates)
	return &dto, nil
}

// Upsert stores all three rates
func (s *TaxRateService) Upsert(ctx context.Context, organizationID uuid.UUID, req *domain.UpdateTaxRatesRequest) (*domain.TaxRatesDTO, error) {
	for _, p := range []float64{req.CGST, req.SGST, req.IGST} {
		if p < 0 || p > 100 {
			return nil, fmt.Errorf("%w: tax percent must be between 0 and 100", ErrInvalidInput)
		}
	}

	percents := map[domain.TaxType]decimal.Decimal{
		domain.TaxTypeCGST: decimal.NewFromFloat(req.CGST),
		domain.TaxTypeSGST: decimal.NewFromFloat(req.SGST),
		domain.TaxTypeIGST: decimal.NewFromFloat(req.IGST),
	}
	if err := s.repo.Upsert(ctx, organizationID, percents); err != nil {
		return nil, fmt.Errorf("failed to save tax rates: %w", err)
	}

	s.logger.Info("tax rates updated",
		zap.String("organizationID", organizationID.String()),
		zap.Float64("cgst", req.CGST),
		zap.Float64("sgst", req.SGST),
		zap.Float64("igst", req.IGST))

	return s.List(ctx, organizationID)
}
