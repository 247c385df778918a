package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseMethod selects how the expense amount of a declaration is determined.
type ExpenseMethod string

const (
	LumpSum ExpenseMethod = "lump_sum"
	Actual  ExpenseMethod = "actual"
)

// Valid reports whether m is a supported expense method.
func (m ExpenseMethod) Valid() bool {
	return m == LumpSum || m == Actual
}

// DeclarationStatus is the review state of a saved declaration.
type DeclarationStatus string

const (
	StatusDraft DeclarationStatus = "draft"
	StatusFinal DeclarationStatus = "final"
)

func (s DeclarationStatus) Valid() bool {
	return s == StatusDraft || s == StatusFinal
}

// SpecialDeduction is a named amount subtracted from the tax base.
type SpecialDeduction struct {
	Name   string          `yaml:"name" json:"name"`
	Amount decimal.Decimal `yaml:"amount" json:"amount"`
}

// CalculateRequest asks for a declaration of one taxpayer and year.
type CalculateRequest struct {
	TaxpayerID      int64              `json:"taxpayer_id"`
	Year            int                `json:"year"`
	Method          ExpenseMethod      `json:"method"`
	OtherDeductions []SpecialDeduction `json:"other_deductions"`
}

// Validate rejects requests that cannot be calculated.
func (r CalculateRequest) Validate() error {
	if r.TaxpayerID <= 0 {
		return fmt.Errorf("%w: taxpayer_id must be positive", ErrInvalidRequest)
	}
	if r.Year <= 0 {
		return fmt.Errorf("%w: year must be positive", ErrInvalidRequest)
	}
	if !r.Method.Valid() {
		return fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidMethod, r.Method, LumpSum, Actual)
	}
	for i, d := range r.OtherDeductions {
		if d.Amount.IsNegative() {
			return fmt.Errorf("%w: deduction %d (%s) has negative amount %s", ErrInvalidDeduction, i+1, d.Name, d.Amount)
		}
	}
	return nil
}

// BracketTax is the share of the tax base that fell into one bracket.
type BracketTax struct {
	Rate decimal.Decimal `json:"rate" yaml:"rate"`
	Base decimal.Decimal `json:"base" yaml:"base"`
	Tax  decimal.Decimal `json:"tax" yaml:"tax"`
}

// Declaration is the computed tax position of a taxpayer for one year.
type Declaration struct {
	ID                  int64             `json:"id,omitempty" yaml:"id,omitempty"`
	TaxpayerID          int64             `json:"taxpayer_id" yaml:"taxpayer_id"`
	Year                int               `json:"year" yaml:"year"`
	Name                string            `json:"name,omitempty" yaml:"name,omitempty"`
	ExpenseMethod       ExpenseMethod     `json:"expense_method" yaml:"expense_method"`
	TotalIncome         decimal.Decimal   `json:"total_income" yaml:"total_income"`
	ExemptionApplied    decimal.Decimal   `json:"exemption_applied" yaml:"exemption_applied"`
	ExpenseAmount       decimal.Decimal   `json:"expense_amount" yaml:"expense_amount"`
	DeductionsAmount    decimal.Decimal   `json:"deductions_amount" yaml:"deductions_amount"`
	TaxBase             decimal.Decimal   `json:"tax_base" yaml:"tax_base"`
	CalculatedTax       decimal.Decimal   `json:"calculated_tax" yaml:"calculated_tax"`
	WithholdingTax      decimal.Decimal   `json:"withholding_tax" yaml:"withholding_tax"`
	NetTaxToPay         decimal.Decimal   `json:"net_tax_to_pay" yaml:"net_tax_to_pay"`
	Status              DeclarationStatus `json:"status" yaml:"status"`
	TaxBreakdown        []BracketTax      `json:"tax_breakdown" yaml:"tax_breakdown"`
	DeclarationRequired bool              `json:"declaration_required" yaml:"declaration_required"`
	CreatedAt           *time.Time        `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// IsRefund reports whether withholding exceeded the calculated tax.
func (d Declaration) IsRefund() bool {
	return d.NetTaxToPay.IsNegative()
}

// Validate checks a declaration submitted for saving: known method and status,
// non-negative components, both balance identities and a breakdown consistent
// with them.
func (d Declaration) Validate() error {
	if d.TaxpayerID <= 0 || d.Year <= 0 {
		return fmt.Errorf("%w: taxpayer_id and year must be positive", ErrInvalidRequest)
	}
	if !d.ExpenseMethod.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, d.ExpenseMethod)
	}
	if !d.Status.Valid() {
		return fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidStatus, d.Status, StatusDraft, StatusFinal)
	}

	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"total_income", d.TotalIncome},
		{"exemption_applied", d.ExemptionApplied},
		{"expense_amount", d.ExpenseAmount},
		{"deductions_amount", d.DeductionsAmount},
		{"tax_base", d.TaxBase},
		{"calculated_tax", d.CalculatedTax},
		{"withholding_tax", d.WithholdingTax},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return fmt.Errorf("%w: %s cannot be negative", ErrInvalidRequest, a.name)
		}
	}

	base := d.TotalIncome.Sub(d.ExemptionApplied).Sub(d.ExpenseAmount).Sub(d.DeductionsAmount)
	if base.IsNegative() {
		base = decimal.Zero
	}
	if !base.Equal(d.TaxBase) {
		return fmt.Errorf("%w: tax_base %s does not match components (%s)", ErrInvalidRequest, d.TaxBase, base)
	}
	if net := d.CalculatedTax.Sub(d.WithholdingTax); !net.Equal(d.NetTaxToPay) {
		return fmt.Errorf("%w: net_tax_to_pay %s does not match calculated_tax - withholding_tax (%s)", ErrInvalidRequest, d.NetTaxToPay, net)
	}
	return d.validateBreakdown()
}

// validateBreakdown checks that a submitted breakdown has non-negative slices whose
// taxes add up to calculated_tax and whose bases add up to tax_base. A declaration
// without a breakdown carries only its headline figures.
func (d Declaration) validateBreakdown() error {
	if len(d.TaxBreakdown) == 0 {
		return nil
	}
	taxSum, baseSum := decimal.Zero, decimal.Zero
	for i, b := range d.TaxBreakdown {
		if b.Base.IsNegative() || b.Tax.IsNegative() || b.Rate.IsNegative() {
			return fmt.Errorf("%w: tax_breakdown[%d] cannot be negative", ErrInvalidRequest, i)
		}
		taxSum = taxSum.Add(b.Tax)
		baseSum = baseSum.Add(b.Base)
	}
	if !taxSum.Equal(d.CalculatedTax) {
		return fmt.Errorf("%w: tax_breakdown sums to %s, calculated_tax is %s", ErrInvalidRequest, taxSum, d.CalculatedTax)
	}
	if !baseSum.Equal(d.TaxBase) {
		return fmt.Errorf("%w: tax_breakdown bases sum to %s, tax_base is %s", ErrInvalidRequest, baseSum, d.TaxBase)
	}
	return nil
}

// TransactionSummary aggregates a taxpayer's ledger for one year.
type TransactionSummary struct {
	TotalIncome   decimal.Decimal `json:"total_income" yaml:"total_income"`
	TotalExpense  decimal.Decimal `json:"total_expense" yaml:"total_expense"`
	TaxableIncome decimal.Decimal `json:"taxable_income" yaml:"taxable_income"`
	NetIncome     decimal.Decimal `json:"net_income" yaml:"net_income"`
}
