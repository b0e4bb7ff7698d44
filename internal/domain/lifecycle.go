package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lifecycle operations. Each one checks the current status first and leaves
// the invoice untouched when it refuses.
//
//	draft -> sent -> overdue
//	draft | sent | overdue -> paid
//	draft | sent | overdue -> cancelled
//
// paid and cancelled are terminal. None of these read the clock; now is the
// caller's notion of the current instant.

// MarkSent moves a draft to sent. A draft with nothing to collect cannot
// be sent; it would sit fully paid in sent forever.
func (i *Invoice) MarkSent(now time.Time) error {
	if i.Status != InvoiceStatusDraft {
		return &TransitionError{Op: "send", From: i.Status}
	}
	if !i.TotalAmount.IsPositive() {
		return &AmountError{Reason: "cannot send an invoice with a total of", Limit: i.TotalAmount}
	}
	i.transition(InvoiceStatusSent, now)
	return nil
}

// MarkPaid settles the invoice. A nil amount means the full total.
func (i *Invoice) MarkPaid(amount *decimal.Decimal, now time.Time) error {
	target, err := i.settlementTarget(amount)
	if err != nil {
		return err
	}
	i.PaidAmount = target
	i.transition(InvoiceStatusPaid, now)
	return nil
}

// settlementTarget validates a MarkPaid request and returns the paid amount
// the invoice would end up with.
func (i *Invoice) settlementTarget(amount *decimal.Decimal) (decimal.Decimal, error) {
	if i.Status.Terminal() {
		return decimal.Zero, &TransitionError{Op: "mark paid", From: i.Status}
	}
	if amount == nil {
		return i.TotalAmount, nil
	}

	target := RoundMoney(*amount)
	switch {
	case target.IsNegative():
		return decimal.Zero, &AmountError{Reason: "paid amount cannot be below", Limit: decimal.Zero}
	case target.GreaterThan(i.TotalAmount):
		return decimal.Zero, &AmountError{Reason: "paid amount exceeds invoice total of", Limit: i.TotalAmount}
	case target.LessThan(i.PaidAmount):
		return decimal.Zero, &AmountError{Reason: "paid amount is below payments already received of", Limit: i.PaidAmount}
	}
	return target, nil
}

// MarkOverdue moves a sent invoice to overdue. Whether the due date has
// passed is the caller's decision.
func (i *Invoice) MarkOverdue(now time.Time) error {
	if i.Status != InvoiceStatusSent {
		return &TransitionError{Op: "mark overdue", From: i.Status}
	}
	i.transition(InvoiceStatusOverdue, now)
	return nil
}

// Cancel voids the invoice. Payments already received stay on record.
func (i *Invoice) Cancel(now time.Time) error {
	if i.Status.Terminal() {
		return &TransitionError{Op: "cancel", From: i.Status}
	}
	i.transition(InvoiceStatusCancelled, now)
	return nil
}

// CheckDeletable returns ErrIllegalDelete unless the invoice is a draft.
func (i *Invoice) CheckDeletable() error {
	if i.Status != InvoiceStatusDraft {
		return ErrIllegalDelete
	}
	return nil
}

func (i *Invoice) transition(to InvoiceStatus, now time.Time) {
	i.Status = to
	i.UpdatedAt = touch(i.UpdatedAt, now)
}
