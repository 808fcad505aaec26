package mapper

import (
	"time"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/pricing"
	"github.com/shopspring/decimal"
)

const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// money converts an already rounded decimal for JSON output
func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// ToLineResultDTO converts a pricing result
func ToLineResultDTO(r pricing.LineResult) domain.LineResultDTO {
	return domain.LineResultDTO{
		AreaSqm:     money(r.AreaSqm),
		ProcessCost: money(r.ProcessCost),
		LineTotal:   money(r.LineTotal),
	}
}

// ToTaxSplitDTO converts a GST split
func ToTaxSplitDTO(s pricing.TaxSplit) domain.TaxSplitDTO {
	return domain.TaxSplitDTO{
		Mode: string(s.Mode),
		Tax:  money(s.Tax),
		CGST: money(s.CGST),
		SGST: money(s.SGST),
		IGST: money(s.IGST),
	}
}

// ToQuotePreviewDTO converts priced lines and totals of an unsaved quote
func ToQuotePreviewDTO(lines []pricing.LineResult, totals pricing.Totals) domain.QuotePreviewDTO {
	dtos := make([]domain.LineResultDTO, len(lines))
	for i, l := range lines {
		dtos[i] = ToLineResultDTO(l)
	}
	return domain.QuotePreviewDTO{
		Lines:      dtos,
		Subtotal:   money(totals.Subtotal),
		Tax:        ToTaxSplitDTO(totals.Tax),
		GrandTotal: money(totals.GrandTotal),
	}
}

// ToQuoteItemDTO converts QuoteItem to QuoteItemDTO
func ToQuoteItemDTO(item *domain.QuoteItem) domain.QuoteItemDTO {
	return domain.QuoteItemDTO{
		ID:          item.ID,
		Position:    item.Position,
		Description: item.Description,
		LengthMM:    item.LengthMM.InexactFloat64(),
		WidthMM:     item.WidthMM.InexactFloat64(),
		Quantity:    item.Quantity,
		UnitPrice:   money(item.UnitPrice),
		AreaSqm:     money(item.AreaSqm),
		ProcessCost: money(item.ProcessCost),
		LineTotal:   money(item.LineTotal),
	}
}

// ToQuoteDTO converts Quote to QuoteDTO, including items when loaded
func ToQuoteDTO(quote *domain.Quote) domain.QuoteDTO {
	dto := domain.QuoteDTO{
		ID:           quote.ID,
		Number:       quote.Number,
		CustomerName: quote.CustomerName,
		Status:       string(quote.Status),
		Subtotal:     money(quote.Subtotal),
		Tax: domain.TaxSplitDTO{
			Mode: string(quote.TaxMode),
			Tax:  money(quote.TaxTotal),
			CGST: money(quote.CGST),
			SGST: money(quote.SGST),
			IGST: money(quote.IGST),
		},
		GrandTotal: money(quote.GrandTotal),
		CreatedAt:  formatTime(quote.CreatedAt),
	}
	if len(quote.Items) > 0 {
		dto.Items = make([]domain.QuoteItemDTO, len(quote.Items))
		for i := range quote.Items {
			dto.Items[i] = ToQuoteItemDTO(&quote.Items[i])
		}
	}
	return dto
}

// ToOrderDTO converts Order to OrderDTO
func ToOrderDTO(order *domain.Order) domain.OrderDTO {
	return domain.OrderDTO{
		ID:           order.ID,
		Number:       order.Number,
		QuoteID:      order.QuoteID,
		CustomerName: order.CustomerName,
		Status:       string(order.Status),
		TaxMode:      string(order.TaxMode),
		Subtotal:     money(order.Subtotal),
		TaxTotal:     money(order.TaxTotal),
		GrandTotal:   money(order.GrandTotal),
		CreatedAt:    formatTime(order.CreatedAt),
	}
}

// ToInvoiceDTO converts Invoice to InvoiceDTO
func ToInvoiceDTO(invoice *domain.Invoice) domain.InvoiceDTO {
	return domain.InvoiceDTO{
		ID:           invoice.ID,
		Number:       invoice.Number,
		OrderID:      invoice.OrderID,
		CustomerName: invoice.CustomerName,
		Subtotal:     money(invoice.Subtotal),
		Tax: domain.TaxSplitDTO{
			Mode: string(invoice.TaxMode),
			Tax:  money(invoice.TaxTotal),
			CGST: money(invoice.CGST),
			SGST: money(invoice.SGST),
			IGST: money(invoice.IGST),
		},
		GrandTotal: money(invoice.GrandTotal),
		CreatedAt:  formatTime(invoice.CreatedAt),
	}
}

// ToProcessDTO converts Process to ProcessDTO
func ToProcessDTO(process *domain.Process) domain.ProcessDTO {
	return domain.ProcessDTO{
		ID:          process.ID,
		Name:        process.Name,
		PricingRule: string(process.PricingRule),
		Rate:        money(process.Rate),
		Unit:        process.Unit,
		IsActive:    process.IsActive,
	}
}

// ToTaxRatesDTO converts effective tax rates
func ToTaxRatesDTO(rates pricing.TaxRates) domain.TaxRatesDTO {
	return domain.TaxRatesDTO{
		CGST: rates.CGST.InexactFloat64(),
		SGST: rates.SGST.InexactFloat64(),
		IGST: rates.IGST.InexactFloat64(),
	}
}

// ToOrganizationPricingDTO converts the pricing settings of an organization
func ToOrganizationPricingDTO(org *domain.Organization) domain.OrganizationPricingDTO {
	return domain.OrganizationPricingDTO{
		OrganizationID: org.ID,
		Name:           org.Name,
		StateCode:      org.StateCode,
		MinCharge:      money(org.MinCharge),
		WastagePercent: org.WastagePercent.InexactFloat64(),
	}
}

// ToNumberSequenceDTO converts NumberSequence to NumberSequenceDTO
func ToNumberSequenceDTO(seq *domain.NumberSequence) domain.NumberSequenceDTO {
	return domain.NumberSequenceDTO{
		DocType:    string(seq.DocType),
		Pattern:    seq.Pattern,
		NextNumber: seq.NextNumber,
		Year:       seq.Year,
		UpdatedAt:  formatTime(seq.UpdatedAt),
	}
}
