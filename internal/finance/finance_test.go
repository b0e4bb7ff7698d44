package finance

import (
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	studioID = uuid.MustParse("0c0ffee0-0000-4000-8000-000000000001")
	clientID = uuid.MustParse("0c0ffee0-0000-4000-8000-000000000002")
	created  = time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type invoiceOpt func(*domain.Invoice)

func withStatus(s domain.InvoiceStatus) invoiceOpt {
	return func(i *domain.Invoice) { i.Status = s }
}

func withPaid(s string) invoiceOpt {
	return func(i *domain.Invoice) { i.PaidAmount = dec(s) }
}

func withDue(d time.Time) invoiceOpt {
	return func(i *domain.Invoice) { i.DueDate = d }
}

func issued(d time.Time) invoiceOpt {
	return func(i *domain.Invoice) {
		i.IssueDate = d
		if i.DueDate.Before(d) {
			i.DueDate = d
		}
	}
}

func withTax(subtotal, discount, rate string) invoiceOpt {
	return func(i *domain.Invoice) {
		i.Subtotal = dec(subtotal)
		i.DiscountAmount = dec(discount)
		i.TaxRate = dec(rate)
		i.CalculateTotals()
	}
}

func invoice(total string, opts ...invoiceOpt) *domain.Invoice {
	inv := domain.NewInvoice("INV-2026-001", studioID, clientID,
		domain.InvoiceAmounts{Subtotal: dec(total)},
		domain.Date(2025, 12, 1), domain.Date(2025, 12, 31), created)
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}
