package output

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// PDFFormatter renders a printable one-page declaration.
type PDFFormatter struct{}

func (p PDFFormatter) Name() string      { return "pdf" }
func (p PDFFormatter) Extension() string { return "pdf" }

var (
	pdfLabel  = props.Text{Size: 9}
	pdfAmount = props.Text{Size: 9, Align: align.Right}
)

func (p PDFFormatter) Format(report *Report) ([]byte, error) {
	d := report.Declaration

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(8, "Tax Declaration", props.Text{Size: 18, Style: fontstyle.Bold}),
		text.NewCol(4, fmt.Sprintf("%d / %s", d.Year, d.Status), props.Text{Size: 12, Align: align.Right, Top: 3}),
	)

	taxpayer := fmt.Sprintf("Taxpayer #%d", d.TaxpayerID)
	if report.TaxpayerName != "" {
		taxpayer = fmt.Sprintf("%s (#%d)", report.TaxpayerName, d.TaxpayerID)
	}
	m.AddRow(14,
		col.New(8).Add(
			text.New(taxpayer, props.Text{Style: fontstyle.Bold}),
			text.New("Expense method: "+string(d.ExpenseMethod), props.Text{Top: 5, Size: 9}),
		),
		col.New(4).Add(
			text.New("Declaration required: "+yesNo(d.DeclarationRequired), props.Text{Size: 9, Align: align.Right}),
		),
	)

	lines := []struct {
		label string
		value decimal.Decimal
	}{
		{"Total income", d.TotalIncome},
		{"Exemption applied", d.ExemptionApplied.Neg()},
		{"Expense amount", d.ExpenseAmount.Neg()},
		{"Special deductions", d.DeductionsAmount.Neg()},
		{"Tax base", d.TaxBase},
		{"Calculated tax", d.CalculatedTax},
		{"Withholding tax", d.WithholdingTax.Neg()},
	}
	for _, l := range lines {
		m.AddRow(7,
			text.NewCol(8, l.label, pdfLabel),
			text.NewCol(4, FormatCurrency(l.value), pdfAmount),
		)
	}

	balanceLabel := "Net tax to pay"
	if report.Analysis.IsRefund {
		balanceLabel = "Refund due"
	}
	m.AddRow(10,
		text.NewCol(8, balanceLabel, props.Text{Size: 11, Style: fontstyle.Bold, Top: 2}),
		text.NewCol(4, FormatCurrency(report.Analysis.Balance), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Top: 2}),
	)

	if len(d.TaxBreakdown) > 0 {
		m.AddRow(12,
			text.NewCol(4, "Rate", props.Text{Size: 9, Style: fontstyle.Bold, Top: 5}),
			text.NewCol(4, "Base", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Top: 5}),
			text.NewCol(4, "Tax", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Top: 5}),
		)
		for _, b := range d.TaxBreakdown {
			m.AddRow(7,
				text.NewCol(4, FormatPercentage(b.Rate), pdfLabel),
				text.NewCol(4, FormatCurrency(b.Base), pdfAmount),
				text.NewCol(4, FormatCurrency(b.Tax), pdfAmount),
			)
		}
	}

	m.AddRow(10,
		text.NewCol(6, "Effective rate: "+FormatPercentage(report.Analysis.EffectiveRate), props.Text{Size: 9, Top: 3}),
		text.NewCol(6, "Marginal rate: "+FormatPercentage(report.Analysis.MarginalRate), props.Text{Size: 9, Align: align.Right, Top: 3}),
	)

	if len(report.Assumptions) > 0 {
		m.AddRow(10, text.NewCol(12, "Assumptions", props.Text{Size: 9, Style: fontstyle.Bold, Top: 4}))
		for _, a := range report.Assumptions {
			m.AddRow(5, text.NewCol(12, "- "+a, props.Text{Size: 8}))
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
