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

// QuoteService prices and stores quotes. Lines are priced with the
// organization's min charge, wastage, processes and tax rates.
type QuoteService struct {
	quoteRepo   *repository.QuoteRepository
	orgRepo     *repository.OrganizationRepository
	processRepo *repository.ProcessRepository
	taxRates    *TaxRateService
	numbers     *NumberSequenceService
	logger      *zap.Logger
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	orgRepo *repository.OrganizationRepository,
	processRepo *repository.ProcessRepository,
	taxRates *TaxRateService,
	numbers *NumberSequenceService,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:   quoteRepo,
		orgRepo:     orgRepo,
		processRepo: processRepo,
		taxRates:    taxRates,
		numbers:     numbers,
		logger:      logger,
	}
}

// pricedQuote is a quote request after pricing
type pricedQuote struct {
	mode   pricing.TaxMode
	inputs []pricing.LineInput
	lines  []pricing.LineResult
	totals pricing.Totals
}

// Price computes line results and totals without storing anything
func (s *QuoteService) Price(ctx context.Context, organizationID uuid.UUID, req *domain.CreateQuoteRequest) (*domain.QuotePreviewDTO, error) {
	priced, err := s.price(ctx, organizationID, req)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToQuotePreviewDTO(priced.lines, priced.totals)
	return &dto, nil
}

// Create prices the request, issues a quote number and stores the quote with its items
func (s *QuoteService) Create(ctx context.Context, organizationID uuid.UUID, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	if req.CustomerName == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}

	priced, err := s.price(ctx, organizationID, req)
	if err != nil {
		return nil, err
	}

	number, _, err := s.numbers.NextNumber(ctx, organizationID, domain.DocTypeQuote)
	if err != nil {
		return nil, err
	}

	quote := &domain.Quote{
		OrganizationID: organizationID,
		Number:         number,
		CustomerName:   req.CustomerName,
		Status:         domain.QuoteStatusOpen,
		TaxMode:        priced.mode,
		Subtotal:       priced.totals.Subtotal,
		CGST:           priced.totals.Tax.CGST,
		SGST:           priced.totals.Tax.SGST,
		IGST:           priced.totals.Tax.IGST,
		TaxTotal:       priced.totals.Tax.Tax,
		GrandTotal:     priced.totals.GrandTotal,
		Items:          make([]domain.QuoteItem, len(req.Lines)),
	}
	for i, line := range req.Lines {
		in := priced.inputs[i]
		res := priced.lines[i]
		quote.Items[i] = domain.QuoteItem{
			Position:    i + 1,
			Description: line.Description,
			LengthMM:    in.LengthMM,
			WidthMM:     in.WidthMM,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			AreaSqm:     res.AreaSqm,
			ProcessCost: res.ProcessCost,
			LineTotal:   res.LineTotal,
		}
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Warn("quote number already in use, sequence needs repair",
				zap.String("organizationID", organizationID.String()),
				zap.String("number", number))
			return nil, fmt.Errorf("%w: quote number %s already exists", ErrConflict, number)
		}
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.logger.Info("quote created",
		zap.String("organizationID", organizationID.String()),
		zap.String("quoteID", quote.ID.String()),
		zap.String("number", quote.Number),
		zap.String("grandTotal", quote.GrandTotal.String()))

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// GetByID returns a quote with its items
func (s *QuoteService) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, organizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// List returns a page of quotes, newest first
func (s *QuoteService) List(ctx context.Context, organizationID uuid.UUID, page, pageSize int) (*domain.PaginatedResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)

	quotes, total, err := s.quoteRepo.List(ctx, organizationID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = mapper.ToQuoteDTO(&quotes[i])
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *QuoteService) price(ctx context.Context, organizationID uuid.UUID, req *domain.CreateQuoteRequest) (*pricedQuote, error) {
	mode, ok := pricing.ParseTaxMode(req.TaxMode)
	if !ok {
		return nil, fmt.Errorf("%w: tax mode must be INTRA or INTER", ErrInvalidInput)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: at least one line is required", ErrInvalidInput)
	}

	org, err := s.orgRepo.GetByID(ctx, organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	processes, err := s.loadProcesses(ctx, organizationID, req.Lines)
	if err != nil {
		return nil, err
	}

	rates, err := s.taxRates.Rates(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	priced := &pricedQuote{
		mode:   mode,
		inputs: make([]pricing.LineInput, len(req.Lines)),
		lines:  make([]pricing.LineResult, len(req.Lines)),
	}
	for i, line := range req.Lines {
		if line.Quantity <= 0 || line.LengthMM <= 0 || line.WidthMM <= 0 || line.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: line %d needs positive quantity and dimensions", ErrInvalidInput, i+1)
		}
		if line.Edges < 0 {
			return nil, fmt.Errorf("%w: line %d has a negative edge count", ErrInvalidInput, i+1)
		}

		lineProcesses := make([]pricing.ProcessRate, 0, len(line.ProcessIDs))
		for _, id := range line.ProcessIDs {
			lineProcesses = append(lineProcesses, processes[id].ToRate())
		}

		in := pricing.LineInput{
			UnitPrice:      decimal.NewFromFloat(line.UnitPrice),
			LengthMM:       decimal.NewFromFloat(line.LengthMM),
			WidthMM:        decimal.NewFromFloat(line.WidthMM),
			Quantity:       line.Quantity,
			Processes:      lineProcesses,
			MinCharge:      org.MinCharge,
			WastagePercent: org.WastagePercent,
			Edges:          line.Edges,
		}
		priced.inputs[i] = in
		priced.lines[i] = pricing.ComputeLine(in)
	}

	priced.totals = pricing.ComputeTotals(priced.lines, mode, rates)
	return priced, nil
}

// loadProcesses fetches every process referenced by the lines. Unknown or
// inactive processes are rejected.
func (s *QuoteService) loadProcesses(ctx context.Context, organizationID uuid.UUID, lines []domain.QuoteLineRequest) (map[uuid.UUID]*domain.Process, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, line := range lines {
		for _, id := range line.ProcessIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	found, err := s.processRepo.ListByIDs(ctx, organizationID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load processes: %w", err)
	}

	byID := make(map[uuid.UUID]*domain.Process, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: unknown or inactive process %s", ErrInvalidInput, id)
		}
	}
	return byID, nil
}
