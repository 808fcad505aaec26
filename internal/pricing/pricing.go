// Package pricing computes line-item totals, process surcharges and GST splits
// for glass fabrication quotes.
//
// All functions are pure: they touch no shared state and never fail. Input
// validation (positive dimensions, quantity > 0, non-negative rates) is the
// caller's responsibility; out-of-domain input yields well-defined but
// meaningless results such as zero or negative totals.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PricingRule determines how a process surcharge scales with the item.
type PricingRule string

const (
	RulePerArea PricingRule = "PER_AREA"
	RulePerEdge PricingRule = "PER_EDGE"
	RuleFlat    PricingRule = "FLAT"
)

// DefaultEdgeCount is the number of edges billed for PER_EDGE processes when
// the item does not carry its own edge count. Every item is assumed to be a
// rectangular panel.
const DefaultEdgeCount = 4

var (
	mmPerSquareMeter = decimal.NewFromInt(1_000_000)
	hundred          = decimal.NewFromInt(100)
)

// ProcessRate is a priced fabrication process (toughening, polishing, holes...).
type ProcessRate struct {
	Rule PricingRule     `json:"pricingRule"`
	Rate decimal.Decimal `json:"rate"`
	// Unit is a display label only ("sqm", "rft", "job").
	Unit string `json:"unit,omitempty"`
}

// LineInput holds everything needed to price one line item.
type LineInput struct {
	UnitPrice      decimal.Decimal // currency per m²
	LengthMM       decimal.Decimal
	WidthMM        decimal.Decimal
	Quantity       int
	Processes      []ProcessRate
	MinCharge      decimal.Decimal
	WastagePercent decimal.Decimal
	// Edges overrides DefaultEdgeCount for PER_EDGE processes when > 0.
	Edges int
}

// LineResult is the priced outcome of a line. Each field is rounded half-up to
// two decimals on its own.
type LineResult struct {
	AreaSqm     decimal.Decimal `json:"areaSqm"`
	ProcessCost decimal.Decimal `json:"processCost"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

var half = decimal.NewFromFloat(0.5)

// Round2 rounds half-up to two decimal places. Ties go toward positive
// infinity, so -0.125 becomes -0.12.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Shift(2).Add(half).Floor().Shift(-2)
}

// ParsePricingRule normalizes a rule name. The second return value is false
// for unknown rules.
func ParsePricingRule(s string) (PricingRule, bool) {
	switch r := PricingRule(strings.ToUpper(strings.TrimSpace(s))); r {
	case RulePerArea, RulePerEdge, RuleFlat:
		return r, true
	default:
		return "", false
	}
}

// Area converts millimeter dimensions to square meters. The result is not
// rounded.
func Area(lengthMM, widthMM decimal.Decimal) decimal.Decimal {
	return lengthMM.Mul(widthMM).Div(mmPerSquareMeter)
}

// ProcessCost sums the surcharges of all processes for qty items of the given
// area, billing DefaultEdgeCount edges per item. The sum is rounded to two
// decimals.
func ProcessCost(processes []ProcessRate, areaSqm decimal.Decimal, qty int) decimal.Decimal {
	return ProcessCostForEdges(processes, areaSqm, qty, DefaultEdgeCount)
}

// ProcessCostForEdges is ProcessCost with an explicit edge count. A
// non-positive edge count falls back to DefaultEdgeCount. Processes with an
// unknown rule contribute nothing.
func ProcessCostForEdges(processes []ProcessRate, areaSqm decimal.Decimal, qty, edges int) decimal.Decimal {
	if edges <= 0 {
		edges = DefaultEdgeCount
	}
	q := decimal.NewFromInt(int64(qty))
	e := decimal.NewFromInt(int64(edges))

	total := decimal.Zero
	for _, p := range processes {
		switch p.Rule {
		case RulePerArea:
			total = total.Add(p.Rate.Mul(areaSqm).Mul(q))
		case RulePerEdge:
			total = total.Add(p.Rate.Mul(e).Mul(q))
		case RuleFlat:
			total = total.Add(p.Rate.Mul(q))
		}
	}
	return Round2(total)
}

// ComputeLine prices a single line item.
//
// Material cost is charged on the wastage-inflated area while process
// surcharges use the plain area. The total never drops below MinCharge.
func ComputeLine(in LineInput) LineResult {
	area := Area(in.LengthMM, in.WidthMM)
	billable := area.Mul(decimal.NewFromInt(1).Add(in.WastagePercent.Div(hundred)))

	baseCost := in.UnitPrice.Mul(billable).Mul(decimal.NewFromInt(int64(in.Quantity)))
	processCost := ProcessCostForEdges(in.Processes, area, in.Quantity, in.Edges)

	total := baseCost.Add(processCost)
	if total.LessThan(in.MinCharge) {
		total = in.MinCharge
	}

	return LineResult{
		AreaSqm:     Round2(area),
		ProcessCost: processCost,
		LineTotal:   Round2(total),
	}
}
