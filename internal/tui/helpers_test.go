package tui

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"0", "EUR", "0.00 EUR"},
		{"1234.5", "EUR", "1,234.50 EUR"},
		{"1234567.891", "USD", "1,234,567.89 USD"},
		{"-42", "", "-42.00"},
		{"999.999", "", "1,000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMoney(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}

func TestTruncateStr(t *testing.T) {
	assert.Equal(t, "short", truncateStr("short", 10))
	assert.Equal(t, "Atelier...", truncateStr("Atelier Nord Design", 10))
	assert.Equal(t, "Café", truncateStr("Café", 4))
	assert.Equal(t, "Ca", truncateStr("Café", 2))
}

func TestBar(t *testing.T) {
	max := decimal.NewFromInt(100)

	assert.Equal(t, "", bar(decimal.Zero, max, 10))
	assert.Equal(t, "", bar(decimal.NewFromInt(5), decimal.Zero, 10))
	assert.Equal(t, "█████", bar(decimal.NewFromInt(50), max, 10))
	assert.Equal(t, "█", bar(decimal.NewFromInt(1), max, 10), "non-zero values always show")
	assert.Equal(t, "██████████", bar(decimal.NewFromInt(250), max, 10))
}
