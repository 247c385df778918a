package calculation

import (
	"fmt"

	"github.com/mtax/declaration-engine/internal/domain"
	money "github.com/mtax/declaration-engine/pkg/decimal"
)

// Snapshot is a consistent read of everything a declaration depends on for one
// taxpayer and year.
type Snapshot struct {
	Setting      *domain.TaxSetting
	Transactions []domain.Transaction
	Sources      map[int64]domain.Source
}

// NewSnapshot indexes sources by id.
func NewSnapshot(setting *domain.TaxSetting, transactions []domain.Transaction, sources []domain.Source) Snapshot {
	byID := make(map[int64]domain.Source, len(sources))
	for _, s := range sources {
		byID[s.ID] = s
	}
	return Snapshot{Setting: setting, Transactions: transactions, Sources: byID}
}

// ledgerTotals are the raw (unrounded) sums a declaration is built from.
type ledgerTotals struct {
	income        money.Money
	actualExpense money.Money
}

func sumTaxable(snap Snapshot, taxpayerID int64, year int) (ledgerTotals, error) {
	totals := ledgerTotals{income: money.Zero(), actualExpense: money.Zero()}
	for _, tx := range snap.Transactions {
		if tx.TaxpayerID != taxpayerID || tx.Year != year || !tx.IsTaxable {
			continue
		}
		if tx.Amount.IsNegative() {
			return ledgerTotals{}, fmt.Errorf("%w: transaction %d has negative amount %s", domain.ErrInvalidRequest, tx.ID, tx.Amount)
		}
		switch tx.Type {
		case domain.Income:
			totals.income = totals.income.Add(money.NewMoneyFromDecimal(tx.Amount))
		case domain.Expense:
			// Claimed through other_deductions instead.
			if src, ok := snap.Sources[tx.SourceID]; ok && src.IsSpecialDeduction() {
				continue
			}
			totals.actualExpense = totals.actualExpense.Add(money.NewMoneyFromDecimal(tx.Amount))
		}
	}
	return totals, nil
}

// Compute turns a snapshot and a request into a draft declaration. It does not
// read or write any storage.
func Compute(snap Snapshot, req domain.CalculateRequest) (*domain.Declaration, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if snap.Setting == nil {
		return nil, fmt.Errorf("%w: year %d", domain.ErrSettingsNotFound, req.Year)
	}
	setting := *snap.Setting
	if err := setting.Validate(); err != nil {
		return nil, err
	}

	totals, err := sumTaxable(snap, req.TaxpayerID, req.Year)
	if err != nil {
		return nil, err
	}

	totalIncome := totals.income.Round()

	var expense money.Money
	switch req.Method {
	case domain.LumpSum:
		expense = totalIncome.Mul(setting.LumpSumRate).Round()
	case domain.Actual:
		expense = totals.actualExpense.Round()
	}

	exemption := money.Min(money.NewMoneyFromDecimal(setting.ExemptionAmount), totalIncome).Round()

	amounts := make([]money.Money, 0, len(req.OtherDeductions))
	for _, d := range req.OtherDeductions {
		amounts = append(amounts, money.NewMoneyFromDecimal(d.Amount))
	}
	deductions := money.Sum(amounts...).Round()

	taxBase := totalIncome.Sub(exemption).Sub(expense).Sub(deductions).NonNegative()

	calculatedTax, breakdown := NewProgressiveTaxCalculator(setting).CalculateTax(taxBase.Decimal)
	withholding := totalIncome.Mul(setting.WithholdingRate).Round()

	return &domain.Declaration{
		TaxpayerID:          req.TaxpayerID,
		Year:                req.Year,
		ExpenseMethod:       req.Method,
		TotalIncome:         totalIncome.Decimal,
		ExemptionApplied:    exemption.Decimal,
		ExpenseAmount:       expense.Decimal,
		DeductionsAmount:    deductions.Decimal,
		TaxBase:             taxBase.Decimal,
		CalculatedTax:       calculatedTax,
		WithholdingTax:      withholding.Decimal,
		NetTaxToPay:         calculatedTax.Sub(withholding.Decimal),
		Status:              domain.StatusDraft,
		TaxBreakdown:        breakdown,
		DeclarationRequired: setting.DeclarationLimit.IsPositive() && totalIncome.GreaterThan(setting.DeclarationLimit),
	}, nil
}
