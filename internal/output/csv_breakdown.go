package output

import (
	"bytes"
	"encoding/csv"
)

// CSVBreakdownExporter writes one row per tax bracket.
type CSVBreakdownExporter struct{}

func (c CSVBreakdownExporter) Name() string      { return "detailed-csv" }
func (c CSVBreakdownExporter) Extension() string { return "csv" }

func (c CSVBreakdownExporter) Format(report *Report) ([]byte, error) {
	d := report.Declaration
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"bracket", "rate", "base", "tax"}); err != nil {
		return nil, err
	}
	for i, b := range d.TaxBreakdown {
		row := []string{intToString(i + 1), b.Rate.String(), b.Base.StringFixed(2), b.Tax.StringFixed(2)}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	if err := w.Write([]string{"total", "", d.TaxBase.StringFixed(2), d.CalculatedTax.StringFixed(2)}); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
