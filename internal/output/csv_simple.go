package output

import (
	"bytes"
	"encoding/csv"
)

// CSVSummarizer writes the declaration as a header and a single row.
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string      { return "csv" }
func (c CSVSummarizer) Extension() string { return "csv" }

func (c CSVSummarizer) Format(report *Report) ([]byte, error) {
	d := report.Declaration
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"taxpayer_id", "year", "expense_method", "status", "total_income", "exemption_applied", "expense_amount", "deductions_amount", "tax_base", "calculated_tax", "withholding_tax", "net_tax_to_pay", "declaration_required"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	row := []string{
		int64ToString(d.TaxpayerID),
		intToString(d.Year),
		string(d.ExpenseMethod),
		string(d.Status),
		d.TotalIncome.StringFixed(2),
		d.ExemptionApplied.StringFixed(2),
		d.ExpenseAmount.StringFixed(2),
		d.DeductionsAmount.StringFixed(2),
		d.TaxBase.StringFixed(2),
		d.CalculatedTax.StringFixed(2),
		d.WithholdingTax.StringFixed(2),
		d.NetTaxToPay.StringFixed(2),
		boolToString(d.DeclarationRequired),
	}
	if err := w.Write(row); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
