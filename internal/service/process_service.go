package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/mapper"
	"github.com/glassline/erp-api/internal/pricing"
	"github.com/glassline/erp-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProcessService manages the fabrication processes an organization prices
type ProcessService struct {
	repo   *repository.ProcessRepository
	logger *zap.Logger
}

// NewProcessService creates a new ProcessService
func NewProcessService(repo *repository.ProcessRepository, logger *zap.Logger) *ProcessService {
	return &ProcessService{repo: repo, logger: logger}
}

// List returns all processes, or only active ones
func (s *ProcessService) List(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]domain.ProcessDTO, error) {
	processes, err := s.repo.List(ctx, organizationID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	dtos := make([]domain.ProcessDTO, len(processes))
	for i := range processes {
		dtos[i] = mapper.ToProcessDTO(&processes[i])
	}
	return dtos, nil
}

// Create adds an active process
func (s *ProcessService) Create(ctx context.Context, organizationID uuid.UUID, req *domain.CreateProcessRequest) (*domain.ProcessDTO, error) {
	rule, err := validateProcess(req.Name, req.PricingRule, req.Rate)
	if err != nil {
		return nil, err
	}

	process := &domain.Process{
		OrganizationID: organizationID,
		Name:           req.Name,
		PricingRule:    rule,
		Rate:           decimal.NewFromFloat(req.Rate),
		Unit:           req.Unit,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, process); err != nil {
		return nil, fmt.Errorf("failed to create process: %w", err)
	}

	s.logger.Info("process created",
		zap.String("organizationID", organizationID.String()),
		zap.String("processID", process.ID.String()),
		zap.String("rule", string(rule)))

	dto := mapper.ToProcessDTO(process)
	return &dto, nil
}

// Update replaces a process definition. IsActive is left unchanged when nil.
func (s *ProcessService) Update(ctx context.Context, organizationID, id uuid.UUID, req *domain.UpdateProcessRequest) (*domain.ProcessDTO, error) {
	rule, err := validateProcess(req.Name, req.PricingRule, req.Rate)
	if err != nil {
		return nil, err
	}

	process, err := s.repo.GetByID(ctx, organizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get process: %w", err)
	}

	process.Name = req.Name
	process.PricingRule = rule
	process.Rate = decimal.NewFromFloat(req.Rate)
	process.Unit = req.Unit
	if req.IsActive != nil {
		process.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, process); err != nil {
		return nil, fmt.Errorf("failed to update process: %w", err)
	}

	dto := mapper.ToProcessDTO(process)
	return &dto, nil
}

func validateProcess(name, rule string, rate float64) (pricing.PricingRule, error) {
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	parsed, ok := pricing.ParsePricingRule(rule)
	if !ok {
		return "", fmt.Errorf("%w: unknown pricing rule %q", ErrInvalidInput, rule)
	}
	if rate < 0 {
		return "", fmt.Errorf("%w: rate must not be negative", ErrInvalidInput)
	}
	return parsed, nil
}
