package finance

import (
	"github.com/andy/studioledger/internal/domain"
	"github.com/shopspring/decimal"
)

type ReconciliationCategory string

const (
	ReconMatched   ReconciliationCategory = "matched"
	ReconPartial   ReconciliationCategory = "partial"
	ReconUnmatched ReconciliationCategory = "unmatched"
)

var ReconciliationCategories = []ReconciliationCategory{ReconMatched, ReconPartial, ReconUnmatched}

type CategoryTotal struct {
	Count   int
	Amount  decimal.Decimal
	Percent int
}

// ReconciliationReport shows how far payments account for billed invoices.
// Matched and unmatched amounts are invoiced totals; partial is cash received.
type ReconciliationReport struct {
	Categories map[ReconciliationCategory]*CategoryTotal
	Qualifying int
	// Unclassified counts qualifying invoices that fit no category. It is
	// zero for any record set that satisfies the invoice invariants.
	Unclassified int
}

// Category returns the totals for c, never nil.
func (r ReconciliationReport) Category(c ReconciliationCategory) CategoryTotal {
	if ct, ok := r.Categories[c]; ok && ct != nil {
		return *ct
	}
	return CategoryTotal{Amount: decimal.Zero}
}

// Classify places a single invoice. ok is false for drafts, cancelled
// invoices and anything that fits no category.
func Classify(inv *domain.Invoice) (ReconciliationCategory, bool) {
	if inv.Status == domain.InvoiceStatusDraft || inv.Status == domain.InvoiceStatusCancelled {
		return "", false
	}
	switch {
	case inv.Status == domain.InvoiceStatusPaid && inv.PaidAmount.GreaterThanOrEqual(inv.TotalAmount):
		return ReconMatched, true
	case inv.PaidAmount.IsPositive() && inv.PaidAmount.LessThan(inv.TotalAmount):
		return ReconPartial, true
	case inv.PaidAmount.IsZero() && inv.Status != domain.InvoiceStatusPaid:
		return ReconUnmatched, true
	}
	return "", false
}

// Reconcile categorizes every invoice that has left draft and was not
// cancelled.
func Reconcile(invoices []*domain.Invoice) ReconciliationReport {
	report := ReconciliationReport{
		Categories: make(map[ReconciliationCategory]*CategoryTotal, len(ReconciliationCategories)),
	}
	for _, c := range ReconciliationCategories {
		report.Categories[c] = &CategoryTotal{Amount: decimal.Zero}
	}

	for _, inv := range invoices {
		if inv.Status == domain.InvoiceStatusDraft || inv.Status == domain.InvoiceStatusCancelled {
			continue
		}
		report.Qualifying++

		cat, ok := Classify(inv)
		if !ok {
			report.Unclassified++
			continue
		}
		ct := report.Categories[cat]
		ct.Count++
		if cat == ReconPartial {
			ct.Amount = ct.Amount.Add(inv.PaidAmount)
		} else {
			ct.Amount = ct.Amount.Add(inv.TotalAmount)
		}
	}

	denom := decimal.NewFromInt(int64(max(report.Qualifying, 1)))
	hundred := decimal.NewFromInt(100)
	for _, ct := range report.Categories {
		ct.Percent = int(decimal.NewFromInt(int64(ct.Count)).Mul(hundred).Div(denom).Round(0).IntPart())
	}

	return report
}
