package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType gives the sign of a transaction or source in summaries.
type TransactionType int

const (
	Expense TransactionType = -1
	Income  TransactionType = 1
)

// Valid reports whether t is income or expense.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string {
	switch t {
	case Income:
		return "income"
	case Expense:
		return "expense"
	default:
		return fmt.Sprintf("TransactionType(%d)", int(t))
	}
}

// DeductionType marks sources whose expenses are claimed as special deductions.
type DeductionType int

const (
	DeductionNone    DeductionType = 0
	DeductionSpecial DeductionType = 1
)

// Taxpayer is the person or business a declaration is filed for.
type Taxpayer struct {
	ID       int64  `yaml:"id" json:"id"`
	FullName string `yaml:"full_name" json:"full_name"`
}

// Source is a named origin or destination of money (employer, rent, doctor, ...).
type Source struct {
	ID              int64            `yaml:"id" json:"id"`
	Name            string           `yaml:"name" json:"name"`
	TaxpayerID      int64            `yaml:"taxpayer_id" json:"taxpayer_id"`
	Type            TransactionType  `yaml:"type" json:"type"`
	IsNet           bool             `yaml:"is_net" json:"is_net"`
	SharePercentage decimal.Decimal  `yaml:"share_percentage" json:"share_percentage"`
	DeductionType   DeductionType    `yaml:"deduction_type" json:"deduction_type"`
	DefaultAmount   *decimal.Decimal `yaml:"default_amount,omitempty" json:"default_amount,omitempty"`
	Detail          string           `yaml:"detail,omitempty" json:"detail,omitempty"`
}

// IsSpecialDeduction reports whether expenses booked to this source are claimed
// through other_deductions instead of the actual expense total.
func (s Source) IsSpecialDeduction() bool {
	return s.DeductionType == DeductionSpecial
}

// Validate checks the source invariants.
func (s Source) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: source %d has no name", ErrInvalidRequest, s.ID)
	}
	if !s.Type.Valid() {
		return fmt.Errorf("%w: source %q has invalid type %d", ErrInvalidRequest, s.Name, int(s.Type))
	}
	if s.SharePercentage.IsNegative() || s.SharePercentage.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: source %q share_percentage must be within [0, 1]", ErrInvalidRequest, s.Name)
	}
	if s.DeductionType != DeductionNone && s.DeductionType != DeductionSpecial {
		return fmt.Errorf("%w: source %q has invalid deduction_type %d", ErrInvalidRequest, s.Name, int(s.DeductionType))
	}
	return nil
}

// PaymentMethod records how a transaction was settled.
type PaymentMethod struct {
	ID         int64  `yaml:"id" json:"id"`
	MethodName string `yaml:"method_name" json:"method_name"`
}

// Transaction is a single income or expense entry in the ledger.
type Transaction struct {
	ID              int64           `yaml:"id" json:"id"`
	TaxpayerID      int64           `yaml:"taxpayer_id" json:"taxpayer_id"`
	TransactionDate time.Time       `yaml:"transaction_date" json:"transaction_date"`
	Year            int             `yaml:"year" json:"year"`
	Month           *int            `yaml:"month,omitempty" json:"month,omitempty"`
	Day             *int            `yaml:"day,omitempty" json:"day,omitempty"`
	Type            TransactionType `yaml:"type" json:"type"`
	SourceID        int64           `yaml:"source_id" json:"source_id"`
	PaymentMethodID int64           `yaml:"payment_method_id" json:"payment_method_id"`
	Amount          decimal.Decimal `yaml:"amount" json:"amount"`
	Description     string          `yaml:"description,omitempty" json:"description,omitempty"`
	IsTaxable       bool            `yaml:"is_taxable" json:"is_taxable"`
	TaxItemCode     string          `yaml:"tax_item_code,omitempty" json:"tax_item_code,omitempty"`
}

// SignedAmount returns the amount with the transaction's sign applied.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Validate checks the transaction invariants.
func (t Transaction) Validate() error {
	if t.TaxpayerID <= 0 {
		return fmt.Errorf("%w: transaction %d has no taxpayer", ErrInvalidRequest, t.ID)
	}
	if t.Year <= 0 {
		return fmt.Errorf("%w: transaction %d has invalid year %d", ErrInvalidRequest, t.ID, t.Year)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: transaction %d has invalid type %d", ErrInvalidRequest, t.ID, int(t.Type))
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: transaction %d has negative amount %s", ErrInvalidRequest, t.ID, t.Amount)
	}
	if t.Month != nil && (*t.Month < 1 || *t.Month > 12) {
		return fmt.Errorf("%w: transaction %d has invalid month %d", ErrInvalidRequest, t.ID, *t.Month)
	}
	if t.Day != nil && (*t.Day < 1 || *t.Day > 31) {
		return fmt.Errorf("%w: transaction %d has invalid day %d", ErrInvalidRequest, t.ID, *t.Day)
	}
	return nil
}

// Ledger is a complete snapshot of the bookkeeping data, as loaded from a ledger file
// or imported into storage.
type Ledger struct {
	Taxpayers      []Taxpayer      `yaml:"taxpayers" json:"taxpayers"`
	Sources        []Source        `yaml:"sources" json:"sources"`
	PaymentMethods []PaymentMethod `yaml:"payment_methods" json:"payment_methods"`
	Transactions   []Transaction   `yaml:"transactions" json:"transactions"`
	TaxSettings    []TaxSetting    `yaml:"tax_settings" json:"tax_settings"`
}
