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
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceService bills orders
type InvoiceService struct {
	invoiceRepo *repository.InvoiceRepository
	orderRepo   *repository.OrderRepository
	taxRates    *TaxRateService
	numbers     *NumberSequenceService
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	orderRepo *repository.OrderRepository,
	taxRates *TaxRateService,
	numbers *NumberSequenceService,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		taxRates:    taxRates,
		numbers:     numbers,
		logger:      logger,
	}
}

// CreateFromOrder invoices an open order. The GST split is recomputed from
// the order subtotal with the organization's current rates.
func (s *InvoiceService) CreateFromOrder(ctx context.Context, organizationID, orderID uuid.UUID) (*domain.InvoiceDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, organizationID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.Status != domain.OrderStatusOpen {
		return nil, fmt.Errorf("%w: order %s is already invoiced", ErrConflict, order.Number)
	}

	rates, err := s.taxRates.Rates(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	split := pricing.ComputeTaxSplitWithRates(order.Subtotal, order.TaxMode, rates)

	number, _, err := s.numbers.NextNumber(ctx, organizationID, domain.DocTypeInvoice)
	if err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		OrganizationID: organizationID,
		Number:         number,
		OrderID:        &order.ID,
		CustomerName:   order.CustomerName,
		TaxMode:        order.TaxMode,
		Subtotal:       order.Subtotal,
		CGST:           split.CGST,
		SGST:           split.SGST,
		IGST:           split.IGST,
		TaxTotal:       split.Tax,
		GrandTotal:     pricing.Round2(order.Subtotal.Add(split.Tax)),
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: invoice number %s already exists", ErrConflict, number)
		}
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusInvoiced); err != nil {
		s.logger.Error("failed to mark order as invoiced",
			zap.String("orderID", order.ID.String()),
			zap.String("invoiceID", invoice.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("invoice created from order",
		zap.String("organizationID", organizationID.String()),
		zap.String("orderNumber", order.Number),
		zap.String("invoiceNumber", invoice.Number))

	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}
