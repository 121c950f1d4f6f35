package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("12.34")
	require.NoError(t, err)
	assert.Equal(t, "12.34", d.String())

	_, err = ParseAmount("not-a-number")
	assert.Error(t, err)
}

func TestNullAmount(t *testing.T) {
	// Absent stays null, never zero.
	d, err := NullAmount(nil)
	require.NoError(t, err)
	assert.False(t, d.Valid)

	empty := ""
	d, err = NullAmount(&empty)
	require.NoError(t, err)
	assert.False(t, d.Valid)

	price := "19.99"
	d, err = NullAmount(&price)
	require.NoError(t, err)
	require.True(t, d.Valid)
	assert.Equal(t, "19.99", d.Decimal.String())

	bad := "NaN€"
	_, err = NullAmount(&bad)
	assert.Error(t, err)
}

func TestZeroIfNull(t *testing.T) {
	assert.True(t, ZeroIfNull(decimal.NullDecimal{}).IsZero())

	ten := decimal.NullDecimal{Decimal: decimal.NewFromInt(10), Valid: true}
	assert.Equal(t, "10", ZeroIfNull(ten).String())
}
