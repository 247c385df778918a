package calculation

import (
	"github.com/mtax/declaration-engine/internal/domain"
	money "github.com/mtax/declaration-engine/pkg/decimal"
	"github.com/shopspring/decimal"
)

// TAX CALCULATION ASSUMPTIONS:
//
// 1. Brackets are evaluated in ascending order. Each bracket taxes the slice of the
//    base in [previous upper bound, upper bound) at its own rate.
//
// 2. The final bracket is always unbounded, even when a legacy schedule stores a
//    large sentinel limit (e.g. 999999999) on it.
//
// 3. Amounts are rounded to cents half away from zero. The total is the rounded
//    exact sum; per-bracket taxes and bases are rounded individually and any
//    residual cent is carried by the highest bracket that received a positive base,
//    so the breakdown sums to the total tax and to the tax base.

// ProgressiveTaxCalculator applies a progressive bracket schedule to a tax base
type ProgressiveTaxCalculator struct {
	Brackets []domain.TaxBracket
}

// NewProgressiveTaxCalculator creates a calculator for the brackets of a tax setting
func NewProgressiveTaxCalculator(setting domain.TaxSetting) *ProgressiveTaxCalculator {
	return &ProgressiveTaxCalculator{Brackets: setting.Brackets}
}

// CalculateTax returns the tax owed on taxBase together with one BracketTax per
// configured bracket.
func (ptc *ProgressiveTaxCalculator) CalculateTax(taxBase decimal.Decimal) (decimal.Decimal, []domain.BracketTax) {
	breakdown := make([]domain.BracketTax, 0, len(ptc.Brackets))
	if len(ptc.Brackets) == 0 {
		return decimal.Zero, breakdown
	}

	last := len(ptc.Brackets) - 1
	lower := decimal.Zero
	exact := decimal.Zero
	highestTaxed := -1

	for i, bracket := range ptc.Brackets {
		incomeInBracket := decimal.Zero
		if taxBase.GreaterThan(lower) {
			upper := taxBase
			if i < last && bracket.UpperBound != nil {
				upper = decimal.Min(taxBase, *bracket.UpperBound)
			}
			incomeInBracket = upper.Sub(lower)
		}

		tax := incomeInBracket.Mul(bracket.Rate)
		exact = exact.Add(tax)
		if incomeInBracket.IsPositive() {
			highestTaxed = i
		}

		breakdown = append(breakdown, domain.BracketTax{
			Rate: bracket.Rate,
			Base: money.Cents(incomeInBracket),
			Tax:  money.Cents(tax),
		})

		if bracket.UpperBound != nil {
			lower = *bracket.UpperBound
		}
	}

	totalTax := money.Cents(exact)
	if highestTaxed >= 0 {
		taxSum, baseSum := decimal.Zero, decimal.Zero
		for _, bt := range breakdown {
			taxSum = taxSum.Add(bt.Tax)
			baseSum = baseSum.Add(bt.Base)
		}
		top := &breakdown[highestTaxed]
		top.Tax = top.Tax.Add(totalTax.Sub(taxSum))
		top.Base = top.Base.Add(money.Cents(taxBase).Sub(baseSum))
	}

	return totalTax, breakdown
}

// MarginalRate returns the rate of the bracket the last unit of taxBase falls in.
func (ptc *ProgressiveTaxCalculator) MarginalRate(taxBase decimal.Decimal) decimal.Decimal {
	if len(ptc.Brackets) == 0 || !taxBase.IsPositive() {
		return decimal.Zero
	}
	last := len(ptc.Brackets) - 1
	for i, bracket := range ptc.Brackets {
		if i == last || bracket.UpperBound == nil || taxBase.LessThanOrEqual(*bracket.UpperBound) {
			return bracket.Rate
		}
	}
	return ptc.Brackets[last].Rate
}

// EffectiveRate returns tax as a share of the base, or zero for an empty base.
func EffectiveRate(tax, taxBase decimal.Decimal) decimal.Decimal {
	if !taxBase.IsPositive() {
		return decimal.Zero
	}
	return tax.Div(taxBase).Round(4)
}
