package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	testStudio = uuid.MustParse("6f1c2d7e-0000-4000-8000-000000000001")
	testClient = uuid.MustParse("6f1c2d7e-0000-4000-8000-000000000002")
	t0         = time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newTestInvoice(t *testing.T, total string, status InvoiceStatus) *Invoice {
	t.Helper()
	inv := NewInvoice("INV-2026-001", testStudio, testClient,
		InvoiceAmounts{Subtotal: dec(total), Discount: decimal.Zero, TaxRate: decimal.Zero},
		Date(2026, 1, 5), Date(2026, 2, 4), t0)
	inv.Status = status
	return inv
}
