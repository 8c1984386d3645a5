package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCardStatus(t *testing.T) {
	for _, in := range []string{"ACTIVE", "active", " Active "} {
		got, err := ParseCardStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, StatusActive, got)
	}

	_, err := ParseCardStatus("FROZEN")
	assert.Error(t, err)
	_, err = ParseCardStatus("")
	assert.Error(t, err)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusActive.CanTransitionTo(StatusBlocked))
	assert.True(t, StatusBlocked.CanTransitionTo(StatusActive))
	assert.True(t, StatusActive.CanTransitionTo(StatusExpired))
	assert.True(t, StatusBlocked.CanTransitionTo(StatusExpired))

	// EXPIRED is terminal.
	assert.False(t, StatusExpired.CanTransitionTo(StatusActive))
	assert.False(t, StatusExpired.CanTransitionTo(StatusBlocked))
	assert.False(t, StatusExpired.CanTransitionTo(StatusExpired))

	assert.False(t, StatusActive.CanTransitionTo(StatusActive))
}

func TestStatusUsable(t *testing.T) {
	assert.True(t, StatusActive.Usable())
	assert.False(t, StatusBlocked.Usable())
	assert.False(t, StatusExpired.Usable())
}

func TestValidateCardNumber(t *testing.T) {
	assert.NoError(t, ValidateCardNumber("1111111111111111"))
	assert.Error(t, ValidateCardNumber("111111111111111"))   // 15 digits
	assert.Error(t, ValidateCardNumber("11111111111111111")) // 17 digits
	assert.Error(t, ValidateCardNumber("1111-1111-1111-11"))
	assert.Error(t, ValidateCardNumber(""))
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "****4444", MaskCardNumber("1111222233334444"))
	assert.Equal(t, "****5678", MaskCardNumber("12345678"))
	assert.Equal(t, "****", MaskCardNumber("1234567"))
	assert.Equal(t, "****", MaskCardNumber(""))
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("30.00")
	require.NoError(t, err)
	assert.Equal(t, "30.00", FormatAmount(d))

	d, err = ParseAmount("0.1")
	require.NoError(t, err)
	assert.Equal(t, "0.10", FormatAmount(d))

	_, err = ParseAmount("1.005")
	assert.Error(t, err)
	_, err = ParseAmount("ten")
	assert.Error(t, err)
}

func TestCentPrecision(t *testing.T) {
	assert.True(t, CentPrecision(decimal.RequireFromString("10")))
	assert.True(t, CentPrecision(decimal.RequireFromString("10.5")))
	assert.True(t, CentPrecision(decimal.RequireFromString("10.50")))
	assert.False(t, CentPrecision(decimal.RequireFromString("0.005")))
	assert.False(t, CentPrecision(decimal.RequireFromString("10.001")))
}
