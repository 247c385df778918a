package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mtax/declaration-engine/internal/domain"
)

// ConsoleFormatter renders the detailed console report.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string      { return "console" }
func (c ConsoleFormatter) Extension() string { return "txt" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	d := report.Declaration

	fmt.Fprintln(&buf, "TAX DECLARATION")
	fmt.Fprintln(&buf, strings.Repeat("=", 60))
	if report.TaxpayerName != "" {
		fmt.Fprintf(&buf, "%-26s %s (#%d)\n", "Taxpayer:", report.TaxpayerName, d.TaxpayerID)
	} else {
		fmt.Fprintf(&buf, "%-26s #%d\n", "Taxpayer:", d.TaxpayerID)
	}
	fmt.Fprintf(&buf, "%-26s %d\n", "Year:", d.Year)
	fmt.Fprintf(&buf, "%-26s %s\n", "Expense method:", methodLabel(d.ExpenseMethod))
	fmt.Fprintf(&buf, "%-26s %s\n", "Status:", d.Status)
	if d.Name != "" {
		fmt.Fprintf(&buf, "%-26s %s\n", "Name:", d.Name)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "TAX BASE")
	fmt.Fprintln(&buf, strings.Repeat("-", 60))
	writeAmount(&buf, "Total income", FormatCurrency(d.TotalIncome))
	writeAmount(&buf, "Exemption applied", FormatCurrency(d.ExemptionApplied.Neg()))
	writeAmount(&buf, "Expenses", FormatCurrency(d.ExpenseAmount.Neg()))
	writeAmount(&buf, "Special deductions", FormatCurrency(d.DeductionsAmount.Neg()))
	writeAmount(&buf, "Tax base", FormatCurrency(d.TaxBase))
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "BRACKET BREAKDOWN")
	fmt.Fprintln(&buf, strings.Repeat("-", 60))
	for _, b := range d.TaxBreakdown {
		if b.Base.IsZero() {
			continue
		}
		fmt.Fprintf(&buf, "  %8s of %20s = %20s\n", FormatPercentage(b.Rate), FormatCurrency(b.Base), FormatCurrency(b.Tax))
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "RESULT")
	fmt.Fprintln(&buf, strings.Repeat("-", 60))
	writeAmount(&buf, "Calculated tax", FormatCurrency(d.CalculatedTax))
	writeAmount(&buf, "Withholding tax", FormatCurrency(d.WithholdingTax.Neg()))
	if report.Analysis.IsRefund {
		writeAmount(&buf, "Refund due", FormatCurrency(report.Analysis.Balance))
	} else {
		writeAmount(&buf, "Net tax to pay", FormatCurrency(report.Analysis.Balance))
	}
	writeAmount(&buf, "Effective rate", FormatPercentage(report.Analysis.EffectiveRate))
	writeAmount(&buf, "Marginal rate", FormatPercentage(report.Analysis.MarginalRate))
	writeAmount(&buf, "Declaration required", yesNo(d.DeclarationRequired))

	if len(report.Suggestions) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "SUGGESTED SPECIAL DEDUCTIONS")
		fmt.Fprintln(&buf, strings.Repeat("-", 60))
		for _, s := range report.Suggestions {
			writeAmount(&buf, s.Name, FormatCurrency(s.Amount))
		}
	}

	if len(report.Assumptions) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
		for _, a := range report.Assumptions {
			fmt.Fprintf(&buf, "• %s\n", a)
		}
	}
	return buf.Bytes(), nil
}

// ConsoleLiteFormatter prints a two line summary.
type ConsoleLiteFormatter struct{}

func (c ConsoleLiteFormatter) Name() string      { return "console-lite" }
func (c ConsoleLiteFormatter) Extension() string { return "txt" }

func (c ConsoleLiteFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	d := report.Declaration
	fmt.Fprintf(&buf, "DECLARATION %d taxpayer #%d (%s)\n", d.Year, d.TaxpayerID, d.ExpenseMethod)
	outcome := "NetTax"
	if report.Analysis.IsRefund {
		outcome = "Refund"
	}
	fmt.Fprintf(&buf, "Income=%s Base=%s Tax=%s Withholding=%s %s=%s\n",
		FormatCurrency(d.TotalIncome),
		FormatCurrency(d.TaxBase),
		FormatCurrency(d.CalculatedTax),
		FormatCurrency(d.WithholdingTax),
		outcome,
		FormatCurrency(report.Analysis.Balance),
	)
	return buf.Bytes(), nil
}

func writeAmount(buf *bytes.Buffer, label, value string) {
	fmt.Fprintf(buf, "%-26s %24s\n", label+":", value)
}

func methodLabel(m domain.ExpenseMethod) string {
	switch m {
	case domain.LumpSum:
		return "lump sum"
	case domain.Actual:
		return "actual expenses"
	default:
		return string(m)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
