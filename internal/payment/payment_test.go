package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedYear(year int) *Validator {
	return &Validator{Now: func() time.Time { return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC) }}
}

func TestCardNumberValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"4111111111111111", true},
		{"4111 1111 1111 1111", true},
		{"4111-1111-1111-1111", true},
		{"411111111111111", false},
		{"41111111111111111", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CardNumberValid(tt.in), tt.in)
	}
}

func TestExpiryValid(t *testing.T) {
	v := fixedYear(2026)
	tests := []struct {
		in   string
		want bool
	}{
		{"12/26", true},
		{"01/20", true},
		{"0125", true},
		{" 05 / 24 ", true},
		{"12/27", false},
		{"13/25", false},
		{"00/25", false},
		{"1/25", false},
		{"12-25", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, v.ExpiryValid(tt.in), tt.in)
	}
}

func TestCVCAndHolder(t *testing.T) {
	assert.True(t, CVCValid("123"))
	assert.True(t, CVCValid("1234"))
	assert.False(t, CVCValid("12"))
	assert.False(t, CVCValid("12345"))

	assert.True(t, HolderValid("Ada Lovelace"))
	assert.False(t, HolderValid("   "))
}

func TestValidate_JoinsFailures(t *testing.T) {
	v := fixedYear(2026)

	require.NoError(t, v.Validate(Card{Number: "4111111111111111", Expiry: "10/25", CVC: "123", Holder: "Ada"}))

	err := v.Validate(Card{Number: "4111", Expiry: "10/25", CVC: "1", Holder: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCardNumber)
	assert.ErrorIs(t, err, ErrCVC)
	assert.ErrorIs(t, err, ErrHolder)
	assert.NotErrorIs(t, err, ErrExpiry)
}

func TestValidator_NilClockUsesNow(t *testing.T) {
	var v Validator
	yy := time.Now().Year() % 100
	assert.True(t, v.ExpiryValid("01/"+twoDigits(yy)))
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
