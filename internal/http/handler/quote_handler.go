package handler

import (
	"net/http"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/service"
	"go.uber.org/zap"
)

// QuoteHandler serves quotes and their conversion to orders and invoices
type QuoteHandler struct {
	quoteService   *service.QuoteService
	orderService   *service.OrderService
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewQuoteHandler(
	quoteService *service.QuoteService,
	orderService *service.OrderService,
	invoiceService *service.InvoiceService,
	logger *zap.Logger,
) *QuoteHandler {
	return &QuoteHandler{
		quoteService:   quoteService,
		orderService:   orderService,
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// @Summary List quotes
// @Tags Quotes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "pageSize", 20)

	result, err := h.quoteService.List(r.Context(), orgID, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Create quote
// @Description Prices the lines and stores the quote with the next quote number, e.g. Q2024-0001.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body domain.CreateQuoteRequest true "Quote data"
// @Success 201 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError "Validation error or unknown process"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.CreateQuoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	quote, err := h.quoteService.Create(r.Context(), orgID, &req)
	if err != nil {
		h.logger.Error("failed to create quote", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, quote)
}

// @Summary Get quote
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError "Invalid quote ID"
// @Failure 404 {object} domain.APIError "Quote not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), orgID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// @Summary Convert quote to order
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 201 {object} domain.OrderDTO
// @Failure 404 {object} domain.APIError "Quote not found"
// @Failure 409 {object} domain.APIError "Quote already converted"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/order [post]
func (h *QuoteHandler) ConvertToOrder(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orderService.CreateFromQuote(r.Context(), orgID, id)
	if err != nil {
		h.logger.Error("failed to convert quote to order", zap.String("quoteID", id.String()), zap.Error(err))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// @Summary Invoice order
// @Description Issues an invoice for the order with GST computed from the organization's rates.
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 201 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.APIError "Order not found"
// @Failure 409 {object} domain.APIError "Order already invoiced"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders/{id}/invoice [post]
func (h *QuoteHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.CreateFromOrder(r.Context(), orgID, id)
	if err != nil {
		h.logger.Error("failed to invoice order", zap.String("orderID", id.String()), zap.Error(err))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, invoice)
}
