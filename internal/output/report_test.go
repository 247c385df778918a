package output_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	stddec "github.com/shopspring/decimal"

	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/mtax/declaration-engine/internal/output"
)

func TestFormatters(t *testing.T) {
	if got := output.FormatCurrency(stddec.NewFromFloat(1234567.891)); got != "1,234,567.89 TL" {
		t.Fatalf("FormatCurrency = %q", got)
	}
	if got := output.FormatPercentage(stddec.NewFromFloat(0.1234)); got != "12.34%" {
		t.Fatalf("FormatPercentage = %q", got)
	}
}

func TestNewReport_AssumptionsFromSetting(t *testing.T) {
	limit := stddec.NewFromInt(158000)
	setting := &domain.TaxSetting{
		Year:             2025,
		ExemptionAmount:  stddec.NewFromInt(47000),
		DeclarationLimit: stddec.NewFromInt(330000),
		LumpSumRate:      stddec.RequireFromString("0.15"),
		WithholdingRate:  stddec.RequireFromString("0.20"),
		Brackets: []domain.TaxBracket{
			{Rate: stddec.RequireFromString("0.15"), UpperBound: &limit},
			{Rate: stddec.RequireFromString("0.20")},
		},
	}
	report := output.NewReport(&domain.Declaration{TaxpayerID: 1, Year: 2025}, setting)
	joined := strings.Join(report.Assumptions, "\n")
	for _, want := range []string{"Tax year 2025", "47,000.00 TL", "15.00%", "330,000.00 TL", "2 progressive brackets"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in assumptions:\n%s", want, joined)
		}
	}

	plain := output.NewReport(&domain.Declaration{TaxpayerID: 1, Year: 2025}, nil)
	if len(plain.Assumptions) != len(output.DefaultAssumptions) {
		t.Fatalf("expected default assumptions without a setting")
	}
}

func TestGenerateReport_WritesFiles(t *testing.T) {
	d := &domain.Declaration{
		TaxpayerID:     7,
		Year:           2025,
		ExpenseMethod:  domain.Actual,
		Status:         domain.StatusDraft,
		TotalIncome:    stddec.NewFromInt(0),
		NetTaxToPay:    stddec.NewFromInt(0),
		CalculatedTax:  stddec.NewFromInt(0),
		WithholdingTax: stddec.NewFromInt(0),
	}
	report := output.NewReport(d, nil)
	dir := t.TempDir()

	for format, ext := range map[string]string{"json": ".json", "csv": ".csv", "verbose": ".txt", "html": ".html"} {
		path, err := output.GenerateReport(report, format, dir)
		if err != nil {
			t.Fatalf("GenerateReport %s error: %v", format, err)
		}
		if filepath.Ext(path) != ext {
			t.Fatalf("GenerateReport %s wrote %s, want extension %s", format, path, ext)
		}
		if !strings.HasPrefix(filepath.Base(path), "declaration_7_2025_") {
			t.Fatalf("unexpected file name %s", path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("report file missing: %v", err)
		}
	}

	if _, err := output.GenerateReport(report, "xml", dir); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestGenerateReport_NamedAfterTaxpayer(t *testing.T) {
	report := output.NewReport(&domain.Declaration{TaxpayerID: 3, Year: 2025, TotalIncome: stddec.Zero}, nil)
	report.TaxpayerName = "Ayşe Yılmaz"

	path, err := output.GenerateReport(report, "pdf", t.TempDir())
	if err != nil {
		t.Fatalf("GenerateReport pdf error: %v", err)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "declaration_3_2025_ayse-yilmaz_") || filepath.Ext(base) != ".pdf" {
		t.Fatalf("unexpected file name %s", base)
	}
}
