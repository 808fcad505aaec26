package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/mapper"
	"github.com/glassline/erp-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrganizationService manages the pricing settings of a tenant
type OrganizationService struct {
	repo   *repository.OrganizationRepository
	logger *zap.Logger
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(repo *repository.OrganizationRepository, logger *zap.Logger) *OrganizationService {
	return &OrganizationService{repo: repo, logger: logger}
}

// Get returns the organization or ErrNotFound
func (s *OrganizationService) Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// GetPricingSettings returns min charge, wastage and state code
func (s *OrganizationService) GetPricingSettings(ctx context.Context, id uuid.UUID) (*domain.OrganizationPricingDTO, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToOrganizationPricingDTO(org)
	return &dto, nil
}

// UpdatePricingSettings replaces min charge, wastage and state code
func (s *OrganizationService) UpdatePricingSettings(ctx context.Context, id uuid.UUID, req *domain.UpdateOrganizationPricingRequest) (*domain.OrganizationPricingDTO, error) {
	if req.MinCharge < 0 || req.WastagePercent < 0 || req.WastagePercent > 100 {
		return nil, fmt.Errorf("%w: min charge and wastage must be non-negative, wastage at most 100", ErrInvalidInput)
	}

	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	org.StateCode = req.StateCode
	org.MinCharge = decimal.NewFromFloat(req.MinCharge)
	org.WastagePercent = decimal.NewFromFloat(req.WastagePercent)

	if err := s.repo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	s.logger.Info("organization pricing updated",
		zap.String("organizationID", id.String()),
		zap.String("minCharge", org.MinCharge.String()),
		zap.String("wastagePercent", org.WastagePercent.String()))

	dto := mapper.ToOrganizationPricingDTO(org)
	return &dto, nil
}
