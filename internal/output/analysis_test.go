package output

import (
	"testing"

	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/shopspring/decimal"
)

func TestAnalyzeDeclaration_Refund(t *testing.T) {
	a := AnalyzeDeclaration(buildTestDeclaration())
	if !a.IsRefund {
		t.Fatalf("expected refund")
	}
	if !a.Balance.Equal(decimal.NewFromInt(7500)) {
		t.Fatalf("balance = %s, want 7500", a.Balance)
	}
	if !a.EffectiveRate.Equal(dec("0.1667")) {
		t.Fatalf("effective rate = %s, want 0.1667", a.EffectiveRate)
	}
	if !a.MarginalRate.Equal(dec("0.20")) {
		t.Fatalf("marginal rate = %s, want 0.20", a.MarginalRate)
	}
}

func TestAnalyzeDeclaration_MarginalSkipsEmptyBrackets(t *testing.T) {
	d := &domain.Declaration{
		TaxBase:       dec("40000"),
		CalculatedTax: dec("6000"),
		NetTaxToPay:   dec("100"),
		TaxBreakdown: []domain.BracketTax{
			{Rate: dec("0.15"), Base: dec("40000"), Tax: dec("6000")},
			{Rate: dec("0.20"), Base: dec("0"), Tax: dec("0")},
		},
	}
	a := AnalyzeDeclaration(d)
	if a.IsRefund {
		t.Fatalf("positive net tax is not a refund")
	}
	if !a.MarginalRate.Equal(dec("0.15")) {
		t.Fatalf("marginal rate = %s, want 0.15", a.MarginalRate)
	}
}

func TestAnalyzeDeclaration_ZeroBase(t *testing.T) {
	a := AnalyzeDeclaration(&domain.Declaration{})
	if !a.EffectiveRate.IsZero() || !a.MarginalRate.IsZero() {
		t.Fatalf("expected zero rates for an empty declaration, got %+v", a)
	}
}
