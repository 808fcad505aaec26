package pricing_test

import (
	"testing"

	"github.com/glassline/erp-api/internal/pricing"
	"github.com/stretchr/testify/assert"
)

func TestComputeTaxSplit(t *testing.T) {
	t.Run("intra state", func(t *testing.T) {
		got := pricing.ComputeTaxSplit(d("1000"), pricing.TaxIntra)
		assert.Equal(t, pricing.TaxIntra, got.Mode)
		assertDecimal(t, "180", got.Tax)
		assertDecimal(t, "90", got.CGST)
		assertDecimal(t, "90", got.SGST)
		assertDecimal(t, "0", got.IGST)
	})

	t.Run("inter state", func(t *testing.T) {
		got := pricing.ComputeTaxSplit(d("1000"), pricing.TaxInter)
		assert.Equal(t, pricing.TaxInter, got.Mode)
		assertDecimal(t, "180", got.Tax)
		assertDecimal(t, "0", got.CGST)
		assertDecimal(t, "0", got.SGST)
		assertDecimal(t, "180", got.IGST)
	})

	t.Run("halves rounded independently", func(t *testing.T) {
		// 0.25 * 18% = 0.045 -> 0.05, each half 0.0225 -> 0.02
		got := pricing.ComputeTaxSplit(d("0.25"), pricing.TaxIntra)
		assertDecimal(t, "0.05", got.Tax)
		assertDecimal(t, "0.02", got.CGST)
		assertDecimal(t, "0.02", got.SGST)
		assert.False(t, got.CGST.Add(got.SGST).Equal(got.Tax))
	})

	t.Run("unknown mode charged as igst", func(t *testing.T) {
		got := pricing.ComputeTaxSplit(d("100"), pricing.TaxMode("EXPORT"))
		assert.Equal(t, pricing.TaxInter, got.Mode)
		assertDecimal(t, "18", got.IGST)
	})
}

func TestComputeTaxSplitWithRates(t *testing.T) {
	rates := pricing.TaxRates{CGST: d("6"), SGST: d("6"), IGST: d("12")}

	intra := pricing.ComputeTaxSplitWithRates(d("1000"), pricing.TaxIntra, rates)
	assertDecimal(t, "120", intra.Tax)
	assertDecimal(t, "60", intra.CGST)
	assertDecimal(t, "60", intra.SGST)

	inter := pricing.ComputeTaxSplitWithRates(d("1000"), pricing.TaxInter, rates)
	assertDecimal(t, "120", inter.Tax)
	assertDecimal(t, "120", inter.IGST)
}

func TestComputeTotals(t *testing.T) {
	lines := []pricing.LineResult{
		{LineTotal: d("1500.00")},
		{LineTotal: d("110.00")},
	}
	got := pricing.ComputeTotals(lines, pricing.TaxIntra, pricing.DefaultTaxRates())
	assertDecimal(t, "1610", got.Subtotal)
	assertDecimal(t, "289.8", got.Tax.Tax)
	assertDecimal(t, "144.9", got.Tax.CGST)
	assertDecimal(t, "1899.8", got.GrandTotal)

	empty := pricing.ComputeTotals(nil, pricing.TaxInter, pricing.DefaultTaxRates())
	assertDecimal(t, "0", empty.GrandTotal)
}

func TestParseTaxMode(t *testing.T) {
	m, ok := pricing.ParseTaxMode("intra")
	assert.True(t, ok)
	assert.Equal(t, pricing.TaxIntra, m)

	_, ok = pricing.ParseTaxMode("")
	assert.False(t, ok)
}
