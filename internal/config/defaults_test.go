package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTaxSetting(t *testing.T) {
	setting, err := DefaultTaxSetting(2026)
	require.NoError(t, err)

	assert.Equal(t, 2026, setting.Year)
	assert.True(t, setting.ExemptionAmount.Equal(decimal.NewFromInt(47000)))
	assert.True(t, setting.DeclarationLimit.Equal(decimal.NewFromInt(330000)))
	assert.True(t, setting.LumpSumRate.Equal(decimal.RequireFromString("0.15")))
	assert.True(t, setting.WithholdingRate.Equal(decimal.RequireFromString("0.20")))

	require.Len(t, setting.Brackets, 5)
	assert.True(t, setting.Brackets[0].UpperBound.Equal(decimal.NewFromInt(158000)))
	assert.True(t, setting.Brackets[3].UpperBound.Equal(decimal.NewFromInt(1900000)))
	assert.Nil(t, setting.Brackets[4].UpperBound)
	assert.True(t, setting.Brackets[4].Rate.Equal(decimal.RequireFromString("0.40")))
}

func TestDefaultTaxSetting_IndependentCopies(t *testing.T) {
	a, err := DefaultTaxSetting(2025)
	require.NoError(t, err)
	b, err := DefaultTaxSetting(2025)
	require.NoError(t, err)

	a.Brackets[0].Rate = decimal.NewFromInt(1)
	assert.True(t, b.Brackets[0].Rate.Equal(decimal.RequireFromString("0.15")))
}
