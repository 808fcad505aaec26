package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TaxMode is the GST scope of a transaction.
type TaxMode string

const (
	// TaxIntra is an intra-state supply, taxed as CGST + SGST.
	TaxIntra TaxMode = "INTRA"
	// TaxInter is an inter-state supply, taxed as IGST.
	TaxInter TaxMode = "INTER"
)

// ParseTaxMode normalizes a tax mode. The second return value is false for
// anything other than INTRA or INTER.
func ParseTaxMode(s string) (TaxMode, bool) {
	switch m := TaxMode(strings.ToUpper(strings.TrimSpace(s))); m {
	case TaxIntra, TaxInter:
		return m, true
	default:
		return "", false
	}
}

// TaxRates are GST percentages. CGST + SGST applies to intra-state supplies,
// IGST to inter-state ones.
type TaxRates struct {
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
}

// DefaultTaxRates is the standard 18% slab: 9% + 9% or 18% IGST.
func DefaultTaxRates() TaxRates {
	return TaxRates{
		CGST: decimal.NewFromInt(9),
		SGST: decimal.NewFromInt(9),
		IGST: decimal.NewFromInt(18),
	}
}

// TaxSplit is the GST on a subtotal. Only the components matching Mode are
// non-zero.
type TaxSplit struct {
	Mode TaxMode         `json:"mode"`
	Tax  decimal.Decimal `json:"tax"`
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
}

// ComputeTaxSplit applies DefaultTaxRates to subtotal.
func ComputeTaxSplit(subtotal decimal.Decimal, mode TaxMode) TaxSplit {
	return ComputeTaxSplitWithRates(subtotal, mode, DefaultTaxRates())
}

// ComputeTaxSplitWithRates computes GST on subtotal using the given rates.
//
// For INTRA the CGST and SGST halves are each rounded on their own, so
// CGST+SGST may differ from Tax by one paisa. Downstream invoice formatting
// relies on this, so SGST is never derived as Tax-CGST. Any mode other than
// INTRA is charged as IGST.
func ComputeTaxSplitWithRates(subtotal decimal.Decimal, mode TaxMode, rates TaxRates) TaxSplit {
	if mode == TaxIntra {
		cgst := subtotal.Mul(rates.CGST).Div(hundred)
		sgst := subtotal.Mul(rates.SGST).Div(hundred)
		return TaxSplit{
			Mode: TaxIntra,
			Tax:  Round2(cgst.Add(sgst)),
			CGST: Round2(cgst),
			SGST: Round2(sgst),
			IGST: decimal.Zero,
		}
	}

	igst := Round2(subtotal.Mul(rates.IGST).Div(hundred))
	return TaxSplit{
		Mode: TaxInter,
		Tax:  igst,
		CGST: decimal.Zero,
		SGST: decimal.Zero,
		IGST: igst,
	}
}

// Totals rolls priced lines up into a document total.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        TaxSplit        `json:"tax"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// ComputeTotals sums line totals, applies GST and returns the grand total.
func ComputeTotals(lines []LineResult, mode TaxMode, rates TaxRates) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
	}
	subtotal = Round2(subtotal)

	split := ComputeTaxSplitWithRates(subtotal, mode, rates)
	return Totals{
		Subtotal:   subtotal,
		Tax:        split,
		GrandTotal: Round2(subtotal.Add(split.Tax)),
	}
}
