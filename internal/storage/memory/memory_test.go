package memory

import (
	"context"
	"testing"

	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledger() *domain.Ledger {
	return &domain.Ledger{
		Taxpayers: []domain.Taxpayer{{ID: 1, FullName: "A"}, {ID: 2, FullName: "B"}},
		Sources: []domain.Source{
			{ID: 1, Name: "Consulting", TaxpayerID: 1, Type: domain.Income},
			{ID: 2, Name: "Salary", TaxpayerID: 2, Type: domain.Income},
		},
		Transactions: []domain.Transaction{
			{ID: 1, TaxpayerID: 1, Year: 2025, Type: domain.Income, SourceID: 1, Amount: decimal.NewFromInt(100), IsTaxable: true},
			{ID: 2, TaxpayerID: 1, Year: 2025, Type: domain.Income, SourceID: 1, Amount: decimal.NewFromInt(50)},
			{ID: 3, TaxpayerID: 1, Year: 2024, Type: domain.Income, SourceID: 1, Amount: decimal.NewFromInt(70), IsTaxable: true},
			{ID: 4, TaxpayerID: 2, Year: 2025, Type: domain.Income, SourceID: 2, Amount: decimal.NewFromInt(10), IsTaxable: true},
		},
	}
}

func TestStore_Queries(t *testing.T) {
	ctx := context.Background()
	s := New(ledger())

	taxable, err := s.TaxableTransactions(ctx, 1, 2025)
	require.NoError(t, err)
	require.Len(t, taxable, 1)
	assert.Equal(t, int64(1), taxable[0].ID)

	all, err := s.Transactions(ctx, 1, 2025)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sources, err := s.Sources(ctx, 2)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Salary", sources[0].Name)
}

func TestStore_TaxSettings(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	_, err := s.TaxSetting(ctx, 2025)
	assert.ErrorIs(t, err, domain.ErrSettingsNotFound)

	setting := domain.TaxSetting{
		Year:            2025,
		LumpSumRate:     decimal.RequireFromString("0.15"),
		WithholdingRate: decimal.RequireFromString("0.2"),
		Brackets:        []domain.TaxBracket{{Rate: decimal.RequireFromString("0.15")}},
	}
	require.NoError(t, s.SaveTaxSetting(ctx, setting))

	got, err := s.TaxSetting(ctx, 2025)
	require.NoError(t, err)
	got.Brackets[0].Rate = decimal.NewFromInt(1)

	again, err := s.TaxSetting(ctx, 2025)
	require.NoError(t, err)
	assert.True(t, again.Brackets[0].Rate.Equal(decimal.RequireFromString("0.15")), "callers get a copy")

	setting.Brackets = nil
	assert.ErrorIs(t, s.SaveTaxSetting(ctx, setting), domain.ErrInvalidSettings)
}

func TestStore_Declarations(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	d := domain.Declaration{
		TaxpayerID:    1,
		Year:          2025,
		ExpenseMethod: domain.Actual,
		Status:        domain.StatusDraft,
	}
	first, err := s.SaveDeclaration(ctx, d)
	require.NoError(t, err)
	d.Status = domain.StatusFinal
	second, err := s.SaveDeclaration(ctx, d)
	require.NoError(t, err)

	history, err := s.ListDeclarations(ctx, 1, 2025)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, domain.StatusDraft, history[1].Status)

	got, err := s.Declaration(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, got.Status)

	_, err = s.Declaration(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DeclarationsAreDetached(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	breakdown := []domain.BracketTax{{Rate: decimal.RequireFromString("0.15")}}
	saved, err := s.SaveDeclaration(ctx, domain.Declaration{
		TaxpayerID:    1,
		Year:          2025,
		ExpenseMethod: domain.LumpSum,
		Status:        domain.StatusFinal,
		TaxBreakdown:  breakdown,
	})
	require.NoError(t, err)

	created := *saved.CreatedAt
	breakdown[0].Tax = decimal.NewFromInt(1)
	saved.TaxBreakdown[0].Tax = decimal.NewFromInt(2)
	*saved.CreatedAt = saved.CreatedAt.AddDate(-1, 0, 0)

	got, err := s.Declaration(ctx, saved.ID)
	require.NoError(t, err)
	got.TaxBreakdown[0].Tax = decimal.NewFromInt(3)

	history, err := s.ListDeclarations(ctx, 1, 2025)
	require.NoError(t, err)
	require.Len(t, history, 1)
	history[0].TaxBreakdown[0].Tax = decimal.NewFromInt(4)

	again, err := s.Declaration(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, again.TaxBreakdown[0].Tax.IsZero(), "stored breakdown changed to %s", again.TaxBreakdown[0].Tax)
	assert.True(t, again.CreatedAt.Equal(created), "stored created_at changed to %s", again.CreatedAt)
}
