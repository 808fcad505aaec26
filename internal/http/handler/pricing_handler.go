package handler

import (
	"net/http"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/mapper"
	"github.com/glassline/erp-api/internal/pricing"
	"github.com/glassline/erp-api/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PricingHandler exposes the pricing engine. Line and tax calculations are
// stateless; quote previews use the caller's organization settings.
type PricingHandler struct {
	quoteService   *service.QuoteService
	taxRateService *service.TaxRateService
	logger         *zap.Logger
}

func NewPricingHandler(quoteService *service.QuoteService, taxRateService *service.TaxRateService, logger *zap.Logger) *PricingHandler {
	return &PricingHandler{
		quoteService:   quoteService,
		taxRateService: taxRateService,
		logger:         logger,
	}
}

// @Summary Price a glass line
// @Description Computes area, process cost and line total for one line. Nothing is stored.
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body domain.PriceLineRequest true "Line dimensions, rate and processes"
// @Success 200 {object} domain.LineResultDTO
// @Failure 400 {object} domain.APIError "Validation error"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /pricing/line [post]
func (h *PricingHandler) PriceLine(w http.ResponseWriter, r *http.Request) {
	var req domain.PriceLineRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	processes := make([]pricing.ProcessRate, 0, len(req.Processes))
	for _, p := range req.Processes {
		rule, _ := pricing.ParsePricingRule(p.PricingRule)
		processes = append(processes, pricing.ProcessRate{
			Rule: rule,
			Rate: decimal.NewFromFloat(p.Rate),
			Unit: p.Unit,
		})
	}

	result := pricing.ComputeLine(pricing.LineInput{
		UnitPrice:      decimal.NewFromFloat(req.UnitPrice),
		LengthMM:       decimal.NewFromFloat(req.LengthMM),
		WidthMM:        decimal.NewFromFloat(req.WidthMM),
		Quantity:       req.Quantity,
		Processes:      processes,
		MinCharge:      decimal.NewFromFloat(req.MinCharge),
		WastagePercent: decimal.NewFromFloat(req.WastagePercent),
		Edges:          req.Edges,
	})

	respondJSON(w, http.StatusOK, mapper.ToLineResultDTO(result))
}

// @Summary Split GST
// @Description Splits tax on a subtotal into CGST/SGST or IGST using the organization's GST rates.
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body domain.TaxSplitRequest true "Subtotal and tax mode"
// @Success 200 {object} domain.TaxSplitDTO
// @Failure 400 {object} domain.APIError "Validation error"
// @Failure 401 {object} domain.APIError "No organization context"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /pricing/tax [post]
func (h *PricingHandler) SplitTax(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.TaxSplitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	mode, _ := pricing.ParseTaxMode(req.Mode)

	rates, err := h.taxRateService.Rates(r.Context(), orgID)
	if err != nil {
		h.logger.Error("failed to load tax rates", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	split := pricing.ComputeTaxSplitWithRates(decimal.NewFromFloat(req.Subtotal), mode, rates)
	respondJSON(w, http.StatusOK, mapper.ToTaxSplitDTO(split))
}

// @Summary Preview quote totals
// @Description Prices every line with the organization's processes and settings without saving a quote.
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body domain.CreateQuoteRequest true "Quote lines"
// @Success 200 {object} domain.QuotePreviewDTO
// @Failure 400 {object} domain.APIError "Validation error or unknown process"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /pricing/quote [post]
func (h *PricingHandler) PriceQuote(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.CreateQuoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	preview, err := h.quoteService.Price(r.Context(), orgID, &req)
	if err != nil {
		h.logger.Error("failed to price quote", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, preview)
}
