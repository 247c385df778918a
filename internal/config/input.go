package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/mtax/declaration-engine/pkg/dateutil"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of ledger files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a ledger from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Ledger, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes, normalizes and validates ledger YAML.
func (ip *InputParser) Parse(data []byte) (*domain.Ledger, error) {
	var ledger domain.Ledger
	if err := yaml.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ip.NormalizeDates(&ledger)

	if err := ip.ValidateLedger(&ledger); err != nil {
		return nil, fmt.Errorf("ledger validation failed: %w", err)
	}

	return &ledger, nil
}

// NormalizeDates reconciles transaction_date with year/month/day. A dated entry
// fills in missing year, month and day; an undated one gets a date built from
// its year with mid-year defaults for the missing parts.
func (ip *InputParser) NormalizeDates(ledger *domain.Ledger) {
	for i := range ledger.Transactions {
		tx := &ledger.Transactions[i]
		if !tx.TransactionDate.IsZero() {
			if tx.Year == 0 {
				tx.Year = tx.TransactionDate.Year()
			}
			if tx.Month == nil {
				m := int(tx.TransactionDate.Month())
				tx.Month = &m
			}
			if tx.Day == nil {
				d := tx.TransactionDate.Day()
				tx.Day = &d
			}
			continue
		}
		if tx.Year > 0 {
			tx.TransactionDate = dateutil.TransactionDate(tx.Year, tx.Month, tx.Day)
		}
	}
}

// ValidateLedger validates the loaded ledger as a whole
func (ip *InputParser) ValidateLedger(ledger *domain.Ledger) error {
	if len(ledger.Taxpayers) == 0 {
		return fmt.Errorf("no taxpayers provided")
	}

	taxpayers := make(map[int64]bool, len(ledger.Taxpayers))
	for _, tp := range ledger.Taxpayers {
		if tp.ID <= 0 {
			return fmt.Errorf("taxpayer %q must have a positive id", tp.FullName)
		}
		if taxpayers[tp.ID] {
			return fmt.Errorf("duplicate taxpayer id %d", tp.ID)
		}
		if tp.FullName == "" {
			return fmt.Errorf("taxpayer %d must have a name", tp.ID)
		}
		taxpayers[tp.ID] = true
	}

	sources := make(map[int64]domain.Source, len(ledger.Sources))
	for _, src := range ledger.Sources {
		if _, dup := sources[src.ID]; dup {
			return fmt.Errorf("duplicate source id %d", src.ID)
		}
		if !taxpayers[src.TaxpayerID] {
			return fmt.Errorf("source %q references unknown taxpayer %d", src.Name, src.TaxpayerID)
		}
		if err := src.Validate(); err != nil {
			return err
		}
		sources[src.ID] = src
	}

	methods := make(map[int64]bool, len(ledger.PaymentMethods))
	for _, pm := range ledger.PaymentMethods {
		if methods[pm.ID] {
			return fmt.Errorf("duplicate payment method id %d", pm.ID)
		}
		methods[pm.ID] = true
	}

	for _, tx := range ledger.Transactions {
		if err := ip.validateTransaction(tx, taxpayers, sources, methods); err != nil {
			return fmt.Errorf("transaction %d validation failed: %w", tx.ID, err)
		}
	}

	years := make(map[int]bool, len(ledger.TaxSettings))
	for _, s := range ledger.TaxSettings {
		if years[s.Year] {
			return fmt.Errorf("duplicate tax settings for year %d", s.Year)
		}
		if err := s.Validate(); err != nil {
			return err
		}
		years[s.Year] = true
	}

	return nil
}

func (ip *InputParser) validateTransaction(tx domain.Transaction, taxpayers map[int64]bool, sources map[int64]domain.Source, methods map[int64]bool) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if !taxpayers[tx.TaxpayerID] {
		return fmt.Errorf("unknown taxpayer %d", tx.TaxpayerID)
	}
	src, ok := sources[tx.SourceID]
	if !ok {
		return fmt.Errorf("unknown source %d", tx.SourceID)
	}
	if src.TaxpayerID != tx.TaxpayerID {
		return fmt.Errorf("source %q belongs to taxpayer %d", src.Name, src.TaxpayerID)
	}
	if tx.PaymentMethodID != 0 && !methods[tx.PaymentMethodID] {
		return fmt.Errorf("unknown payment method %d", tx.PaymentMethodID)
	}
	if !tx.TransactionDate.IsZero() && tx.TransactionDate.Year() != tx.Year {
		return fmt.Errorf("transaction_date %s is outside year %d", dateutil.FormatDate(tx.TransactionDate), tx.Year)
	}
	return nil
}

// CreateExampleLedger creates an example ledger for one taxpayer
func (ip *InputParser) CreateExampleLedger(year int) *domain.Ledger {
	date := func(month, day int) time.Time {
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	}
	month := func(m int) *int { return &m }
	one := decimal.NewFromInt(1)
	defaults, _ := DefaultTaxSetting(year)

	ledger := &domain.Ledger{
		Taxpayers: []domain.Taxpayer{{ID: 1, FullName: "Ayşe Yılmaz"}},
		Sources: []domain.Source{
			{ID: 1, Name: "Consulting", TaxpayerID: 1, Type: domain.Income, SharePercentage: one},
			{ID: 2, Name: "Office Rent", TaxpayerID: 1, Type: domain.Expense, SharePercentage: one},
			{ID: 3, Name: "Health", TaxpayerID: 1, Type: domain.Expense, SharePercentage: one, DeductionType: domain.DeductionSpecial},
			{ID: 4, Name: "Education", TaxpayerID: 1, Type: domain.Expense, SharePercentage: one, DeductionType: domain.DeductionSpecial},
		},
		PaymentMethods: []domain.PaymentMethod{
			{ID: 1, MethodName: "Bank Transfer"},
			{ID: 2, MethodName: "Credit Card"},
		},
		Transactions: []domain.Transaction{
			{ID: 1, TaxpayerID: 1, TransactionDate: date(2, 28), Year: year, Month: month(2), Type: domain.Income, SourceID: 1, PaymentMethodID: 1, Amount: decimal.NewFromInt(180000), IsTaxable: true, Description: "Q1 invoices"},
			{ID: 2, TaxpayerID: 1, TransactionDate: date(8, 31), Year: year, Month: month(8), Type: domain.Income, SourceID: 1, PaymentMethodID: 1, Amount: decimal.NewFromInt(240000), IsTaxable: true, Description: "Q2-Q3 invoices"},
			{ID: 3, TaxpayerID: 1, TransactionDate: date(6, 15), Year: year, Type: domain.Expense, SourceID: 2, PaymentMethodID: 1, Amount: decimal.NewFromInt(72000), IsTaxable: true, Description: "Office rent"},
			{ID: 4, TaxpayerID: 1, TransactionDate: date(3, 12), Year: year, Month: month(3), Type: domain.Expense, SourceID: 3, PaymentMethodID: 2, Amount: decimal.NewFromInt(4500), IsTaxable: true, Description: "Dental treatment"},
			{ID: 5, TaxpayerID: 1, TransactionDate: date(9, 1), Year: year, Month: month(9), Type: domain.Expense, SourceID: 4, PaymentMethodID: 2, Amount: decimal.NewFromInt(6000), IsTaxable: true, Description: "Language course"},
		},
	}
	if defaults != nil {
		ledger.TaxSettings = []domain.TaxSetting{*defaults}
	}
	return ledger
}
