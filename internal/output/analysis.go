package output

import (
	"github.com/mtax/declaration-engine/internal/calculation"
	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// Analysis holds the derived figures shown next to a declaration.
type Analysis struct {
	EffectiveRate decimal.Decimal `json:"effective_rate" yaml:"effective_rate"`
	MarginalRate  decimal.Decimal `json:"marginal_rate" yaml:"marginal_rate"`
	IsRefund      bool            `json:"is_refund" yaml:"is_refund"`
	// Balance is the amount owed or refunded, always non-negative.
	Balance decimal.Decimal `json:"balance" yaml:"balance"`
}

// AnalyzeDeclaration derives effective and marginal rates from the breakdown.
func AnalyzeDeclaration(d *domain.Declaration) Analysis {
	marginal := decimal.Zero
	for _, b := range d.TaxBreakdown {
		if b.Base.IsPositive() {
			marginal = b.Rate
		}
	}
	return Analysis{
		EffectiveRate: calculation.EffectiveRate(d.CalculatedTax, d.TaxBase),
		MarginalRate:  marginal,
		IsRefund:      d.IsRefund(),
		Balance:       d.NetTaxToPay.Abs(),
	}
}
