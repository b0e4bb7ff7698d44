package finance

import (
	"testing"
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyRevenue_CurrentYearStopsAtToday(t *testing.T) {
	invoices := []*domain.Invoice{
		invoice("100", withStatus(domain.InvoiceStatusPaid), withPaid("100"), issued(domain.Date(2026, 1, 15))),
		invoice("250", withStatus(domain.InvoiceStatusPaid), withPaid("250"), issued(domain.Date(2026, 3, 2))),
		invoice("50", withStatus(domain.InvoiceStatusPaid), withPaid("50"), issued(domain.Date(2026, 3, 28))),
		invoice("999", withStatus(domain.InvoiceStatusSent), issued(domain.Date(2026, 2, 1))),
		invoice("999", withStatus(domain.InvoiceStatusPaid), withPaid("999"), issued(domain.Date(2025, 2, 1))),
	}

	series := MonthlyRevenue(invoices, 2026, domain.Date(2026, 4, 10))

	require.Len(t, series, 4)
	assert.Equal(t, time.January, series[0].Month)
	assert.Equal(t, "100", series[0].Amount.String())
	assert.True(t, series[1].Amount.IsZero(), "empty months are kept as zero")
	assert.Equal(t, "300", series[2].Amount.String())
	assert.Equal(t, 2, series[2].Count)
	assert.True(t, series[3].Amount.IsZero())
}

func TestMonthlyRevenue_PastAndFutureYears(t *testing.T) {
	today := domain.Date(2026, 4, 10)
	assert.Len(t, MonthlyRevenue(nil, 2025, today), 12)
	assert.Empty(t, MonthlyRevenue(nil, 2027, today))
}

func TestSummarizeTax(t *testing.T) {
	invoices := []*domain.Invoice{
		invoice("0", withTax("500", "0", "0.2"), withStatus(domain.InvoiceStatusPaid), issued(domain.Date(2026, 5, 3))),
		invoice("0", withTax("100", "10", "0.2"), withStatus(domain.InvoiceStatusPaid), issued(domain.Date(2026, 5, 31))),
		invoice("0", withTax("700", "0", "0.2"), withStatus(domain.InvoiceStatusSent), issued(domain.Date(2026, 5, 10))),
		invoice("0", withTax("700", "0", "0.2"), withStatus(domain.InvoiceStatusPaid), issued(domain.Date(2026, 6, 1))),
	}

	s := SummarizeTax(invoices, time.May, 2026)

	assert.Equal(t, 2, s.Count)
	assert.Equal(t, "708", s.GrossRevenue.String())
	assert.Equal(t, "118", s.TVACollected.String())
	assert.Equal(t, "590", s.NetRevenue.String())
	assert.Equal(t, "2026-05", s.Period())
}

func TestTotalRevenue_HalfOpenRange(t *testing.T) {
	invoices := []*domain.Invoice{
		invoice("100", withStatus(domain.InvoiceStatusPaid), issued(domain.Date(2026, 1, 1))),
		invoice("200", withStatus(domain.InvoiceStatusPaid), issued(domain.Date(2026, 1, 31))),
		invoice("400", withStatus(domain.InvoiceStatusPaid), issued(domain.Date(2026, 2, 1))),
		invoice("800", withStatus(domain.InvoiceStatusOverdue), issued(domain.Date(2026, 1, 10))),
	}
	end := domain.Date(2026, 2, 1)

	assert.Equal(t, "300", TotalRevenue(invoices, domain.Date(2026, 1, 1), &end).String())
	assert.Equal(t, "700", TotalRevenue(invoices, domain.Date(2026, 1, 1), nil).String())
	assert.True(t, TotalRevenue(invoices, domain.Date(2027, 1, 1), nil).IsZero())
}

func TestRevenueBreakdown(t *testing.T) {
	invoices := []*domain.Invoice{
		invoice("0", withTax("1000", "100", "0.1"), withStatus(domain.InvoiceStatusPaid), issued(domain.Date(2026, 2, 1))),
	}

	b := RevenueBreakdown(invoices, domain.Date(2026, 1, 1), nil)

	assert.Equal(t, "1090", b.Basis.String())
	assert.Equal(t, "900", b.Net.Amount.String())
	assert.Equal(t, "90", b.Tax.Amount.String())
	assert.Equal(t, "100", b.Discounts.Amount.String())
	assert.Equal(t, "82.6", b.Net.Percent.String())
	assert.Equal(t, "8.3", b.Tax.Percent.String())
	assert.Equal(t, "9.2", b.Discounts.Percent.String())
	assert.Len(t, b.Lines(), 3)
}

func TestRevenueBreakdown_Empty(t *testing.T) {
	b := RevenueBreakdown(nil, domain.Date(2026, 1, 1), nil)
	assert.True(t, b.Basis.IsZero())
	assert.True(t, b.Net.Percent.IsZero())
}

func TestConverter(t *testing.T) {
	c, err := NewConverter(map[string]decimal.Decimal{
		"EUR": dec("1"),
		"usd": dec("1.08"),
		"GBP": dec("0.85"),
	})
	require.NoError(t, err)

	got, err := c.Convert(dec("100"), "EUR", "USD")
	require.NoError(t, err)
	assert.Equal(t, "108", got.String())

	got, err = c.Convert(dec("100"), "USD", "GBP")
	require.NoError(t, err)
	assert.Equal(t, "78.7", got.String())

	got, err = c.Convert(dec("12.34"), "XYZ", "XYZ")
	require.NoError(t, err)
	assert.Equal(t, "12.34", got.String())

	_, err = c.Convert(dec("1"), "EUR", "JPY")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestNewConverter_RejectsZeroRate(t *testing.T) {
	_, err := NewConverter(map[string]decimal.Decimal{"EUR": decimal.Zero})
	assert.Error(t, err)
}
