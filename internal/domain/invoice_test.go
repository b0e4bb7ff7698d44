package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoice_ComputesTotals(t *testing.T) {
	inv := NewInvoice("INV-2026-002", testStudio, testClient,
		InvoiceAmounts{Subtotal: dec("500"), Discount: dec("50"), TaxRate: dec("0.2")},
		Date(2026, 3, 1), Date(2026, 3, 31), t0)

	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.True(t, inv.TaxAmount.Equal(dec("90")), "tax = (500-50)*0.2")
	assert.True(t, inv.TotalAmount.Equal(dec("540")))
	assert.True(t, inv.PaidAmount.IsZero())
	assert.NotEqual(t, uuid.Nil, inv.ID)
	require.NoError(t, inv.Validate())
}

func TestNewInvoice_RoundsTaxToCents(t *testing.T) {
	inv := NewInvoice("INV-2026-003", testStudio, testClient,
		InvoiceAmounts{Subtotal: dec("99.99"), TaxRate: dec("0.0825")},
		Date(2026, 3, 1), Date(2026, 3, 31), t0)

	assert.Equal(t, "8.25", inv.TaxAmount.StringFixed(2))
	assert.Equal(t, "108.24", inv.TotalAmount.StringFixed(2))
	require.NoError(t, inv.Validate())
}

func TestNewInvoice_DropsClockFromDates(t *testing.T) {
	issue := time.Date(2026, 4, 10, 23, 15, 0, 0, time.UTC)
	inv := NewInvoice("INV-2026-004", testStudio, testClient, InvoiceAmounts{Subtotal: dec("10")}, issue, issue, t0)

	assert.Equal(t, Date(2026, 4, 10), inv.IssueDate)
}

func TestInvoiceValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Invoice)
	}{
		{"missing number", func(i *Invoice) { i.InvoiceNumber = "" }},
		{"missing client", func(i *Invoice) { i.ClientID = uuid.Nil }},
		{"missing studio", func(i *Invoice) { i.StudioID = uuid.Nil }},
		{"unknown status", func(i *Invoice) { i.Status = "archived" }},
		{"due before issue", func(i *Invoice) { i.DueDate = i.IssueDate.AddDate(0, 0, -1) }},
		{"negative paid", func(i *Invoice) { i.PaidAmount = dec("-1") }},
		{"paid above total", func(i *Invoice) { i.PaidAmount = i.TotalAmount.Add(dec("0.01")) }},
		{"total mismatch", func(i *Invoice) { i.TotalAmount = i.TotalAmount.Add(dec("1")) }},
		{"discount above subtotal", func(i *Invoice) {
			i.DiscountAmount = i.Subtotal.Add(dec("1"))
			i.CalculateTotals()
		}},
		{"tax rate above one", func(i *Invoice) { i.TaxRate = dec("1.5") }},
		{"updated before created", func(i *Invoice) { i.UpdatedAt = i.CreatedAt.Add(-time.Second) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := newTestInvoice(t, "100", InvoiceStatusDraft)
			tt.mutate(inv)
			assert.Error(t, inv.Validate())
		})
	}
}

func TestApplyUpdate_RecomputesTotals(t *testing.T) {
	inv := newTestInvoice(t, "100", InvoiceStatusDraft)
	subtotal := dec("200")
	rate := dec("0.1")
	notes := "two sessions"

	err := inv.ApplyUpdate(InvoiceUpdate{Subtotal: &subtotal, TaxRate: &rate, Notes: &notes}, t0.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "20.00", inv.TaxAmount.StringFixed(2))
	assert.Equal(t, "220.00", inv.TotalAmount.StringFixed(2))
	assert.Equal(t, "two sessions", inv.Notes)
	assert.Equal(t, t0.Add(time.Hour), inv.UpdatedAt)
}

func TestApplyUpdate_RejectsNonDraft(t *testing.T) {
	inv := newTestInvoice(t, "100", InvoiceStatusSent)
	subtotal := dec("1")

	err := inv.ApplyUpdate(InvoiceUpdate{Subtotal: &subtotal}, t0)
	assert.ErrorIs(t, err, ErrInvoiceNotEditable)
	assert.Equal(t, "100.00", inv.Subtotal.StringFixed(2))
}

func TestApplyUpdate_InvalidLeavesInvoiceUnchanged(t *testing.T) {
	inv := newTestInvoice(t, "100", InvoiceStatusDraft)
	before := *inv
	discount := dec("150")

	err := inv.ApplyUpdate(InvoiceUpdate{Discount: &discount}, t0.Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, before.TotalAmount, inv.TotalAmount)
	assert.Equal(t, before.UpdatedAt, inv.UpdatedAt)
}

func TestIsOutstanding(t *testing.T) {
	for _, st := range InvoiceStatuses {
		inv := newTestInvoice(t, "100", st)
		want := st == InvoiceStatusSent || st == InvoiceStatusOverdue
		assert.Equal(t, want, inv.IsOutstanding(), st)
	}

	inv := newTestInvoice(t, "100", InvoiceStatusSent)
	inv.PaidAmount = inv.TotalAmount
	assert.False(t, inv.IsOutstanding())
	assert.True(t, inv.Outstanding().Equal(decimal.Zero))
}

func TestParseInvoiceStatus(t *testing.T) {
	st, err := ParseInvoiceStatus(" Overdue ")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusOverdue, st)

	_, err = ParseInvoiceStatus("finalized")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 50, DaysBetween(Date(2026, 1, 1), Date(2026, 2, 20)))
	assert.Equal(t, -1, DaysBetween(Date(2026, 1, 2), Date(2026, 1, 1)))
	late := time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysBetween(late, Date(2026, 1, 1)))
}
