package calculation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	transactions []domain.Transaction
	sources      []domain.Source
	err          error
	calls        int
}

func (f *fakeLedger) TaxableTransactions(_ context.Context, taxpayerID int64, year int) ([]domain.Transaction, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Transaction
	for _, t := range f.transactions {
		if t.TaxpayerID == taxpayerID && t.Year == year && t.IsTaxable {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeLedger) Sources(_ context.Context, taxpayerID int64) ([]domain.Source, error) {
	return f.sources, nil
}

type fakeSettings map[int]domain.TaxSetting

func (f fakeSettings) TaxSetting(_ context.Context, year int) (*domain.TaxSetting, error) {
	s, ok := f[year]
	if !ok {
		return nil, fmt.Errorf("year %d: %w", year, domain.ErrSettingsNotFound)
	}
	return &s, nil
}

type brokenSettings struct{}

func (brokenSettings) TaxSetting(context.Context, int) (*domain.TaxSetting, error) {
	return nil, errors.New("database is locked")
}

type recordedCall struct {
	method  domain.ExpenseMethod
	outcome string
}

type fakeRecorder struct {
	calls []recordedCall
}

func (r *fakeRecorder) ObserveCalculation(method domain.ExpenseMethod, outcome string, _ time.Duration) {
	r.calls = append(r.calls, recordedCall{method: method, outcome: outcome})
}

type captureLogger struct {
	NopLogger
	warnings []string
}

func (l *captureLogger) Warnf(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func newTestCalculator(settings SettingsLookup) (*Calculator, *fakeLedger, *fakeRecorder) {
	ledger := &fakeLedger{transactions: testSnapshot().Transactions, sources: testSources()}
	recorder := &fakeRecorder{}
	calc := NewCalculator(ledger, settings)
	calc.Recorder = recorder
	return calc, ledger, recorder
}

func TestCalculator_Calculate(t *testing.T) {
	calc, _, recorder := newTestCalculator(fakeSettings{2025: twoBracketSetting()})

	d, err := calc.Calculate(context.Background(), domain.CalculateRequest{TaxpayerID: 1, Year: 2025, Method: domain.LumpSum})
	require.NoError(t, err)
	assert.True(t, d.CalculatedTax.Equal(decimal.NewFromInt(12500)))
	assert.Equal(t, domain.StatusDraft, d.Status)

	require.Len(t, recorder.calls, 1)
	assert.Equal(t, recordedCall{method: domain.LumpSum, outcome: OutcomeOK}, recorder.calls[0])
}

func TestCalculator_SettingsNotFound(t *testing.T) {
	calc, _, recorder := newTestCalculator(fakeSettings{})

	_, err := calc.Calculate(context.Background(), domain.CalculateRequest{TaxpayerID: 1, Year: 2025, Method: domain.LumpSum})
	assert.ErrorIs(t, err, domain.ErrSettingsNotFound)
	require.Len(t, recorder.calls, 1)
	assert.Equal(t, OutcomeSettingsNotFound, recorder.calls[0].outcome)
}

func TestCalculator_FallbackOnlyWhenExplicit(t *testing.T) {
	fallback := twoBracketSetting()
	fallback.Year = 1999

	t.Run("used when settings are missing", func(t *testing.T) {
		calc, _, _ := newTestCalculator(fakeSettings{})
		logger := &captureLogger{}
		calc.SetLogger(logger)

		d, err := calc.CalculateWithFallback(context.Background(), domain.CalculateRequest{TaxpayerID: 1, Year: 2025, Method: domain.LumpSum}, &fallback)
		require.NoError(t, err)
		assert.Equal(t, 2025, d.Year)
		assert.True(t, d.CalculatedTax.Equal(decimal.NewFromInt(12500)))
		assert.NotEmpty(t, logger.warnings)
		assert.Equal(t, 1999, fallback.Year, "fallback must not be mutated")
	})

	t.Run("ignored when settings exist", func(t *testing.T) {
		stored := twoBracketSetting()
		stored.ExemptionAmount = decimal.Zero
		calc, _, _ := newTestCalculator(fakeSettings{2025: stored})

		d, err := calc.CalculateWithFallback(context.Background(), domain.CalculateRequest{TaxpayerID: 1, Year: 2025, Method: domain.LumpSum}, &fallback)
		require.NoError(t, err)
		assert.True(t, d.ExemptionApplied.IsZero())
	})

	t.Run("not used for other lookup failures", func(t *testing.T) {
		calc, _, _ := newTestCalculator(brokenSettings{})

		_, err := calc.CalculateWithFallback(context.Background(), domain.CalculateRequest{TaxpayerID: 1, Year: 2025, Method: domain.LumpSum}, &fallback)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrSettingsNotFound)
		assert.Contains(t, err.Error(), "database is locked")
	})
}

func TestCalculator_InvalidInputRejectedBeforeReads(t *testing.T) {
	calc, ledger, recorder := newTestCalculator(fakeSettings{2025: twoBracketSetting()})

	_, err := calc.Calculate(context.Background(), domain.CalculateRequest{TaxpayerID: 1, Year: 2025, Method: "guess"})
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)
	assert.Equal(t, 0, ledger.calls)
	require.Len(t, recorder.calls, 1)
	assert.Equal(t, OutcomeInvalidInput, recorder.calls[0].outcome)
}

func TestCalculator_LedgerFailure(t *testing.T) {
	calc, ledger, recorder := newTestCalculator(fakeSettings{2025: twoBracketSetting()})
	ledger.err = errors.New("connection reset")

	_, err := calc.Calculate(context.Background(), domain.CalculateRequest{TaxpayerID: 1, Year: 2025, Method: domain.Actual})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load transactions")
	assert.Equal(t, OutcomeError, recorder.calls[0].outcome)
}

func TestCalculator_SuggestDeductions(t *testing.T) {
	calc, _, _ := newTestCalculator(fakeSettings{})

	suggestions, err := calc.SuggestDeductions(context.Background(), 1, 2025)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Clinic", suggestions[0].Name)
	assert.True(t, suggestions[0].Amount.Equal(decimal.NewFromInt(1800)))

	_, err = calc.SuggestDeductions(context.Background(), 0, 2025)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestCalculator_SetLoggerNil(t *testing.T) {
	calc := NewCalculator(&fakeLedger{}, fakeSettings{})
	calc.SetLogger(nil)
	assert.IsType(t, NopLogger{}, calc.Logger)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeOK, Outcome(nil))
	assert.Equal(t, OutcomeSettingsNotFound, Outcome(fmt.Errorf("wrap: %w", domain.ErrSettingsNotFound)))
	assert.Equal(t, OutcomeInvalidInput, Outcome(domain.ErrInvalidDeduction))
	assert.Equal(t, OutcomeInvalidInput, Outcome(domain.ErrInvalidSettings))
	assert.Equal(t, OutcomeError, Outcome(errors.New("boom")))
}
