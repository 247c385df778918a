package calculation

import (
	"sort"

	"github.com/mtax/declaration-engine/internal/domain"
	money "github.com/mtax/declaration-engine/pkg/decimal"
	"github.com/shopspring/decimal"
)

// SuggestSpecialDeductions totals taxable expenses booked to special-deduction
// sources, one entry per source name, ordered by name. The result is meant to
// pre-fill CalculateRequest.OtherDeductions.
func SuggestSpecialDeductions(transactions []domain.Transaction, sources map[int64]domain.Source) []domain.SpecialDeduction {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if !tx.IsTaxable || tx.Type != domain.Expense {
			continue
		}
		src, ok := sources[tx.SourceID]
		if !ok || !src.IsSpecialDeduction() {
			continue
		}
		totals[src.Name] = totals[src.Name].Add(tx.Amount)
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	suggestions := make([]domain.SpecialDeduction, 0, len(names))
	for _, name := range names {
		suggestions = append(suggestions, domain.SpecialDeduction{Name: name, Amount: money.Cents(totals[name])})
	}
	return suggestions
}

// Summarize builds the dashboard totals for a set of transactions.
func Summarize(transactions []domain.Transaction) domain.TransactionSummary {
	var income, expense, taxable decimal.Decimal
	for _, tx := range transactions {
		switch tx.Type {
		case domain.Income:
			income = income.Add(tx.Amount)
			if tx.IsTaxable {
				taxable = taxable.Add(tx.Amount)
			}
		case domain.Expense:
			expense = expense.Add(tx.Amount)
		}
	}
	income = money.Cents(income)
	expense = money.Cents(expense)
	return domain.TransactionSummary{
		TotalIncome:   income,
		TotalExpense:  expense,
		TaxableIncome: money.Cents(taxable),
		NetIncome:     income.Sub(expense),
	}
}
