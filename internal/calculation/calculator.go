package calculation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mtax/declaration-engine/internal/domain"
)

// TransactionQuery reads the ledger of a taxpayer.
type TransactionQuery interface {
	// TaxableTransactions returns the taxable transactions of taxpayerID in year.
	TaxableTransactions(ctx context.Context, taxpayerID int64, year int) ([]domain.Transaction, error)
	// Sources returns all sources owned by taxpayerID.
	Sources(ctx context.Context, taxpayerID int64) ([]domain.Source, error)
}

// SettingsLookup resolves the tax setting of a year. It returns
// domain.ErrSettingsNotFound when the year has none.
type SettingsLookup interface {
	TaxSetting(ctx context.Context, year int) (*domain.TaxSetting, error)
}

// Recorder receives one observation per calculation attempt.
type Recorder interface {
	ObserveCalculation(method domain.ExpenseMethod, outcome string, elapsed time.Duration)
}

// Calculation outcomes reported to the Recorder.
const (
	OutcomeOK               = "ok"
	OutcomeInvalidInput     = "invalid_input"
	OutcomeSettingsNotFound = "settings_not_found"
	OutcomeError            = "error"
)

// Calculator computes declarations from the ledger and tax settings it is wired to
type Calculator struct {
	Transactions TransactionQuery
	Settings     SettingsLookup
	Recorder     Recorder // optional
	Logger       Logger
}

// NewCalculator creates a calculator over the given collaborators
func NewCalculator(transactions TransactionQuery, settings SettingsLookup) *Calculator {
	return &Calculator{
		Transactions: transactions,
		Settings:     settings,
		Logger:       NopLogger{},
	}
}

// SetLogger sets the logger for the calculator. If nil is provided, a no-op logger is used.
func (c *Calculator) SetLogger(l Logger) {
	if l == nil {
		c.Logger = NopLogger{}
		return
	}
	c.Logger = l
}

// Calculate produces a draft declaration for the request. Nothing is persisted.
func (c *Calculator) Calculate(ctx context.Context, req domain.CalculateRequest) (*domain.Declaration, error) {
	return c.CalculateWithFallback(ctx, req, nil)
}

// CalculateWithFallback behaves like Calculate, except that when no tax setting
// exists for the year and fallback is non-nil, fallback is used in its place.
func (c *Calculator) CalculateWithFallback(ctx context.Context, req domain.CalculateRequest, fallback *domain.TaxSetting) (*domain.Declaration, error) {
	start := time.Now()
	decl, err := c.calculate(ctx, req, fallback)
	c.observe(req.Method, err, time.Since(start))
	if err != nil {
		c.Logger.Warnf("declaration calculation failed for taxpayer %d year %d: %v", req.TaxpayerID, req.Year, err)
		return nil, err
	}

	c.Logger.Infof("calculated declaration for taxpayer %d year %d (%s): tax base %s, net tax %s",
		req.TaxpayerID, req.Year, req.Method, decl.TaxBase.StringFixed(2), decl.NetTaxToPay.StringFixed(2))
	return decl, nil
}

func (c *Calculator) calculate(ctx context.Context, req domain.CalculateRequest, fallback *domain.TaxSetting) (*domain.Declaration, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setting, err := c.taxSetting(ctx, req.Year, fallback)
	if err != nil {
		return nil, err
	}

	snap, err := c.snapshot(ctx, req.TaxpayerID, req.Year)
	if err != nil {
		return nil, err
	}
	snap.Setting = setting

	c.Logger.Debugf("computing declaration from %d taxable transactions and %d brackets",
		len(snap.Transactions), len(setting.Brackets))
	return Compute(snap, req)
}

func (c *Calculator) taxSetting(ctx context.Context, year int, fallback *domain.TaxSetting) (*domain.TaxSetting, error) {
	setting, err := c.Settings.TaxSetting(ctx, year)
	switch {
	case err == nil && setting != nil:
		return setting, nil
	case err != nil && !errors.Is(err, domain.ErrSettingsNotFound):
		return nil, fmt.Errorf("failed to load tax settings for %d: %w", year, err)
	case fallback == nil:
		return nil, fmt.Errorf("%w: year %d", domain.ErrSettingsNotFound, year)
	}

	c.Logger.Warnf("no tax settings stored for %d, using supplied defaults", year)
	fb := fallback.WithYear(year)
	return &fb, nil
}

func (c *Calculator) snapshot(ctx context.Context, taxpayerID int64, year int) (Snapshot, error) {
	transactions, err := c.Transactions.TaxableTransactions(ctx, taxpayerID, year)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load transactions: %w", err)
	}
	sources, err := c.Transactions.Sources(ctx, taxpayerID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load sources: %w", err)
	}
	return NewSnapshot(nil, transactions, sources), nil
}

// SuggestDeductions returns the special deduction suggestions for a taxpayer and year.
func (c *Calculator) SuggestDeductions(ctx context.Context, taxpayerID int64, year int) ([]domain.SpecialDeduction, error) {
	if taxpayerID <= 0 || year <= 0 {
		return nil, fmt.Errorf("%w: taxpayer_id and year must be positive", domain.ErrInvalidRequest)
	}
	snap, err := c.snapshot(ctx, taxpayerID, year)
	if err != nil {
		return nil, err
	}
	suggestions := SuggestSpecialDeductions(snap.Transactions, snap.Sources)
	c.Logger.Debugf("found %d special deduction suggestions for taxpayer %d year %d", len(suggestions), taxpayerID, year)
	return suggestions, nil
}

func (c *Calculator) observe(method domain.ExpenseMethod, err error, elapsed time.Duration) {
	if c.Recorder == nil {
		return
	}
	c.Recorder.ObserveCalculation(method, Outcome(err), elapsed)
}

// Outcome classifies a calculation error for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrSettingsNotFound):
		return OutcomeSettingsNotFound
	case errors.Is(err, domain.ErrInvalidMethod),
		errors.Is(err, domain.ErrInvalidDeduction),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidSettings):
		return OutcomeInvalidInput
	default:
		return OutcomeError
	}
}
