package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/logger"
	"github.com/glassline/erp-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NumberSequenceService issues and repairs document numbers. Each organization
// has one counter per document type; numbers are scoped to the calendar year.
//
// Format: {LETTERS}{YEAR}-{SEQUENCE}
// Example: Q2024-0008, O2024-0012, INV2024-0003
type NumberSequenceService struct {
	repo    *repository.NumberSequenceRepository
	orgRepo *repository.OrganizationRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	orgRepo *repository.OrganizationRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:    repo,
		orgRepo: orgRepo,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the clock used to pick the numbering year
func (s *NumberSequenceService) WithClock(now func() time.Time) *NumberSequenceService {
	s.now = now
	return s
}

// NextNumber issues the next document number of the given type,
// e.g. "Q2024-0008", together with its counter value.
func (s *NumberSequenceService) NextNumber(ctx context.Context, organizationID uuid.UUID, docType domain.DocType) (string, int, error) {
	if !docType.IsValid() {
		return "", 0, fmt.Errorf("%w: %s", ErrInvalidDocType, docType)
	}

	year := s.now().Year()
	log := logger.WithSequence(s.logger, organizationID, string(docType), year)

	seq, err := s.repo.NextNumber(ctx, organizationID, docType, year)
	if err != nil {
		log.Error("failed to get next sequence number", zap.Error(err))
		return "", 0, fmt.Errorf("failed to generate %s number: %w", docType, err)
	}

	number := domain.FormatDocumentNumber(docType, year, seq)

	log.Info("generated number",
		zap.String("number", number),
		zap.Int("sequence", seq))

	return number, seq, nil
}

// Repair recomputes the counter of one document type from the highest
// number already issued this year and returns the stored next number.
func (s *NumberSequenceService) Repair(ctx context.Context, organizationID uuid.UUID, docType domain.DocType) (int, error) {
	outcome, err := s.repair(ctx, organizationID, docType)
	if err != nil {
		return 0, err
	}
	return outcome.NextNumber, nil
}

func (s *NumberSequenceService) repair(ctx context.Context, organizationID uuid.UUID, docType domain.DocType) (*repository.RepairOutcome, error) {
	if !docType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocType, docType)
	}

	year := s.now().Year()
	log := logger.WithSequence(s.logger, organizationID, string(docType), year)

	outcome, err := s.repo.Repair(ctx, organizationID, docType, year)
	if err != nil {
		log.Error("failed to repair number sequence", zap.Error(err))
		return nil, fmt.Errorf("failed to repair %s sequence: %w", docType, err)
	}

	if len(outcome.Skipped) > 0 {
		log.Warn("skipped malformed document numbers during repair",
			zap.Strings("numbers", outcome.Skipped))
	}

	log.Info("repaired number sequence",
		zap.Int("scanned", outcome.Scanned),
		zap.Int("highest", outcome.Highest),
		zap.Int("nextNumber", outcome.NextNumber))

	return outcome, nil
}

// RepairAll repairs QUOTE, ORDER and INVOICE in turn. Each type commits on
// its own; a failure is recorded in its result and the remaining types still run.
func (s *NumberSequenceService) RepairAll(ctx context.Context, organizationID uuid.UUID) []domain.SequenceRepairResult {
	docTypes := domain.AllDocTypes()
	results := make([]domain.SequenceRepairResult, 0, len(docTypes))

	for _, docType := range docTypes {
		outcome, err := s.repair(ctx, organizationID, docType)
		if err != nil {
			results = append(results, domain.SequenceRepairResult{
				DocType: docType,
				Status:  domain.SequenceFailed,
				Error:   err.Error(),
			})
			continue
		}
		results = append(results, domain.SequenceRepairResult{
			DocType:    docType,
			NextNumber: outcome.NextNumber,
			Status:     domain.SequenceRepaired,
			Skipped:    len(outcome.Skipped),
		})
	}

	return results
}

// RepairAllOrganizations runs RepairAll for every organization. It only
// fails when the organization list cannot be read.
func (s *NumberSequenceService) RepairAllOrganizations(ctx context.Context) (map[uuid.UUID][]domain.SequenceRepairResult, error) {
	ids, err := s.orgRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	all := make(map[uuid.UUID][]domain.SequenceRepairResult, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			return all, ctx.Err()
		}
		all[id] = s.RepairAll(ctx, id)
	}
	return all, nil
}

// Get returns the current sequence for one document type
func (s *NumberSequenceService) Get(ctx context.Context, organizationID uuid.UUID, docType domain.DocType) (*domain.NumberSequence, error) {
	if !docType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocType, docType)
	}
	seq, err := s.repo.Get(ctx, organizationID, docType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get number sequence: %w", err)
	}
	return seq, nil
}

// List returns the stored sequences of an organization
func (s *NumberSequenceService) List(ctx context.Context, organizationID uuid.UUID) ([]domain.NumberSequence, error) {
	sequences, err := s.repo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list number sequences: %w", err)
	}
	return sequences, nil
}
