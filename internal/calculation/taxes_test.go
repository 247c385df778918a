package calculation

import (
	"testing"

	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upper(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func twoBracketSetting() domain.TaxSetting {
	return domain.TaxSetting{
		Year:             2025,
		ExemptionAmount:  decimal.NewFromInt(10000),
		DeclarationLimit: decimal.NewFromInt(330000),
		LumpSumRate:      decimal.RequireFromString("0.15"),
		WithholdingRate:  decimal.RequireFromString("0.20"),
		Brackets: []domain.TaxBracket{
			{Rate: decimal.RequireFromString("0.15"), UpperBound: upper("50000")},
			{Rate: decimal.RequireFromString("0.20")},
		},
	}
}

func defaultBrackets() []domain.TaxBracket {
	return []domain.TaxBracket{
		{Rate: decimal.RequireFromString("0.15"), UpperBound: upper("158000")},
		{Rate: decimal.RequireFromString("0.20"), UpperBound: upper("380000")},
		{Rate: decimal.RequireFromString("0.27"), UpperBound: upper("800000")},
		{Rate: decimal.RequireFromString("0.35"), UpperBound: upper("1900000")},
		{Rate: decimal.RequireFromString("0.40"), UpperBound: upper("999999999")},
	}
}

// TestProgressiveTaxCalculation tests bracket application over several bases
func TestProgressiveTaxCalculation(t *testing.T) {
	calculator := &ProgressiveTaxCalculator{Brackets: defaultBrackets()}

	tests := []struct {
		name        string
		taxBase     decimal.Decimal
		expectedTax decimal.Decimal
		description string
	}{
		{
			name:        "Zero base",
			taxBase:     decimal.Zero,
			expectedTax: decimal.Zero,
			description: "Nothing to tax",
		},
		{
			name:        "First bracket only",
			taxBase:     decimal.NewFromInt(100000),
			expectedTax: decimal.NewFromInt(15000), // 100000 * 0.15
			description: "Base below the first bound",
		},
		{
			name:        "Exactly on first bound",
			taxBase:     decimal.NewFromInt(158000),
			expectedTax: decimal.NewFromInt(23700), // 158000 * 0.15
			description: "Upper bound belongs to the lower bracket",
		},
		{
			name:        "Two brackets",
			taxBase:     decimal.NewFromInt(200000),
			expectedTax: decimal.NewFromInt(32100), // 23700 + 42000*0.20
			description: "Base spanning two brackets",
		},
		{
			name:        "All brackets",
			taxBase:     decimal.NewFromInt(2000000),
			expectedTax: decimal.NewFromInt(606500), // 23700 + 44400 + 113400 + 385000 + 100000*0.40
			description: "Base reaching the top bracket",
		},
		{
			name:        "Above legacy sentinel limit",
			taxBase:     decimal.NewFromInt(1000000999),
			expectedTax: decimal.NewFromInt(566500).Add(decimal.NewFromInt(998100999).Mul(decimal.RequireFromString("0.40"))),
			description: "The final bracket is unbounded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, breakdown := calculator.CalculateTax(tt.taxBase)
			assert.True(t, tt.expectedTax.Equal(tax), "%s: expected %s, got %s", tt.description, tt.expectedTax, tax)
			require.Len(t, breakdown, len(calculator.Brackets))

			sumTax := decimal.Zero
			sumBase := decimal.Zero
			for _, bt := range breakdown {
				sumTax = sumTax.Add(bt.Tax)
				sumBase = sumBase.Add(bt.Base)
			}
			assert.True(t, sumTax.Equal(tax), "breakdown tax %s should equal total %s", sumTax, tax)
			assert.True(t, sumBase.Equal(tt.taxBase), "breakdown base %s should equal tax base %s", sumBase, tt.taxBase)
		})
	}
}

func TestProgressiveTaxCalculation_Breakdown(t *testing.T) {
	calculator := NewProgressiveTaxCalculator(twoBracketSetting())

	tax, breakdown := calculator.CalculateTax(decimal.NewFromInt(75000))
	assert.True(t, tax.Equal(decimal.NewFromInt(12500)))
	require.Len(t, breakdown, 2)

	assert.True(t, breakdown[0].Rate.Equal(decimal.RequireFromString("0.15")))
	assert.True(t, breakdown[0].Base.Equal(decimal.NewFromInt(50000)))
	assert.True(t, breakdown[0].Tax.Equal(decimal.NewFromInt(7500)))
	assert.True(t, breakdown[1].Base.Equal(decimal.NewFromInt(25000)))
	assert.True(t, breakdown[1].Tax.Equal(decimal.NewFromInt(5000)))
}

func TestProgressiveTaxCalculation_UnusedBracketsAreZero(t *testing.T) {
	calculator := &ProgressiveTaxCalculator{Brackets: defaultBrackets()}

	_, breakdown := calculator.CalculateTax(decimal.NewFromInt(1000))
	require.Len(t, breakdown, 5)
	assert.True(t, breakdown[0].Base.Equal(decimal.NewFromInt(1000)))
	for _, bt := range breakdown[1:] {
		assert.True(t, bt.Base.IsZero())
		assert.True(t, bt.Tax.IsZero())
	}
}

// TestProgressiveTaxCalculation_RoundingReconciliation tests that per-bracket
// rounding drift is absorbed by the highest taxed bracket
func TestProgressiveTaxCalculation_RoundingReconciliation(t *testing.T) {
	calculator := &ProgressiveTaxCalculator{Brackets: []domain.TaxBracket{
		{Rate: decimal.RequireFromString("0.5"), UpperBound: upper("0.01")},
		{Rate: decimal.RequireFromString("0.5"), UpperBound: upper("0.02")},
		{Rate: decimal.RequireFromString("0.5")},
	}}

	// Each slice is 0.01 * 0.5 = 0.005, rounded to 0.01 individually, while the
	// exact total 0.015 rounds to 0.02.
	tax, breakdown := calculator.CalculateTax(decimal.RequireFromString("0.03"))
	assert.True(t, tax.Equal(decimal.RequireFromString("0.02")), "got %s", tax)
	require.Len(t, breakdown, 3)
	assert.True(t, breakdown[0].Tax.Equal(decimal.RequireFromString("0.01")))
	assert.True(t, breakdown[1].Tax.Equal(decimal.RequireFromString("0.01")))
	assert.True(t, breakdown[2].Tax.IsZero(), "residual goes to the last taxed bracket, got %s", breakdown[2].Tax)
}

func TestProgressiveTaxCalculation_BaseReconciliation(t *testing.T) {
	calculator := &ProgressiveTaxCalculator{Brackets: []domain.TaxBracket{
		{Rate: decimal.RequireFromString("0.10"), UpperBound: upper("0.333")},
		{Rate: decimal.RequireFromString("0.20"), UpperBound: upper("0.667")},
		{Rate: decimal.RequireFromString("0.30")},
	}}

	// Slices 0.333, 0.334 and 0.333 each round to 0.33.
	tax, breakdown := calculator.CalculateTax(decimal.NewFromInt(1))
	require.Len(t, breakdown, 3)

	baseSum, taxSum := decimal.Zero, decimal.Zero
	for _, b := range breakdown {
		baseSum = baseSum.Add(b.Base)
		taxSum = taxSum.Add(b.Tax)
	}
	assert.True(t, baseSum.Equal(decimal.NewFromInt(1)), "bases sum to %s", baseSum)
	assert.True(t, taxSum.Equal(tax), "taxes sum to %s, total %s", taxSum, tax)
	assert.True(t, breakdown[2].Base.Equal(decimal.RequireFromString("0.34")), "got %s", breakdown[2].Base)
}

func TestMarginalAndEffectiveRate(t *testing.T) {
	calculator := &ProgressiveTaxCalculator{Brackets: defaultBrackets()}

	assert.True(t, calculator.MarginalRate(decimal.Zero).IsZero())
	assert.True(t, calculator.MarginalRate(decimal.NewFromInt(158000)).Equal(decimal.RequireFromString("0.15")))
	assert.True(t, calculator.MarginalRate(decimal.NewFromInt(158001)).Equal(decimal.RequireFromString("0.20")))
	assert.True(t, calculator.MarginalRate(decimal.NewFromInt(5000000000)).Equal(decimal.RequireFromString("0.40")))

	assert.True(t, EffectiveRate(decimal.NewFromInt(12500), decimal.NewFromInt(75000)).Equal(decimal.RequireFromString("0.1667")))
	assert.True(t, EffectiveRate(decimal.NewFromInt(1), decimal.Zero).IsZero())
}
