package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/mapper"
	"github.com/glassline/erp-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderService turns quotes into orders
type OrderService struct {
	orderRepo *repository.OrderRepository
	quoteRepo *repository.QuoteRepository
	numbers   *NumberSequenceService
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo *repository.OrderRepository,
	quoteRepo *repository.QuoteRepository,
	numbers *NumberSequenceService,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		quoteRepo: quoteRepo,
		numbers:   numbers,
		logger:    logger,
	}
}

// CreateFromQuote confirms an open quote as an order with the quote's totals.
// A quote can be converted once.
func (s *OrderService) CreateFromQuote(ctx context.Context, organizationID, quoteID uuid.UUID) (*domain.OrderDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, organizationID, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	if quote.Status != domain.QuoteStatusOpen {
		return nil, fmt.Errorf("%w: quote %s is already converted", ErrConflict, quote.Number)
	}

	number, _, err := s.numbers.NextNumber(ctx, organizationID, domain.DocTypeOrder)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		OrganizationID: organizationID,
		Number:         number,
		QuoteID:        &quote.ID,
		CustomerName:   quote.CustomerName,
		Status:         domain.OrderStatusOpen,
		TaxMode:        quote.TaxMode,
		Subtotal:       quote.Subtotal,
		TaxTotal:       quote.TaxTotal,
		GrandTotal:     quote.GrandTotal,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: order number %s already exists", ErrConflict, number)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.quoteRepo.UpdateStatus(ctx, quote.ID, domain.QuoteStatusConverted); err != nil {
		s.logger.Error("failed to mark quote as converted",
			zap.String("quoteID", quote.ID.String()),
			zap.String("orderID", order.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("order created from quote",
		zap.String("organizationID", organizationID.String()),
		zap.String("quoteNumber", quote.Number),
		zap.String("orderNumber", order.Number))

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}
