package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequest describes money received from a client.
type PaymentRequest struct {
	Amount    decimal.Decimal
	Method    PaymentMethod
	Reference string
	Notes     string
}

// RecordPayment applies a payment to a sent or overdue invoice and returns
// the payment to persist alongside it. When the payment clears the balance
// the invoice moves to paid in the same call. On error nothing changes.
func RecordPayment(inv *Invoice, req PaymentRequest, now time.Time) (*Payment, error) {
	if inv.Status != InvoiceStatusSent && inv.Status != InvoiceStatusOverdue {
		return nil, fmt.Errorf("%w: invoice %s is %s", ErrInvalidState, inv.InvoiceNumber, inv.Status)
	}

	amount := RoundMoney(req.Amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidAmount)
	}
	remaining := inv.Outstanding()
	if amount.GreaterThan(remaining) {
		return nil, exceedsBalance(remaining)
	}

	method := req.Method
	if method == "" {
		method = PaymentMethodOther
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidPayment, method)
	}

	payment := &Payment{
		ID:        uuid.New(),
		InvoiceID: inv.ID,
		Amount:    amount,
		Method:    method,
		Reference: strings.TrimSpace(req.Reference),
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: now,
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.UpdatedAt = touch(inv.UpdatedAt, now)
	inv.Payments = append(inv.Payments, payment)

	if inv.PaidAmount.Equal(inv.TotalAmount) {
		// Status was checked above, so this cannot fail.
		_ = inv.MarkPaid(nil, now)
	}

	return payment, nil
}

// Settle is MarkPaid with bookkeeping: the difference between what has been
// received and the settled amount is recorded as a payment, so the payment
// history always adds up to the paid amount. The returned payment is nil when
// nothing new was received.
func Settle(inv *Invoice, amount *decimal.Decimal, method PaymentMethod, now time.Time) (*Payment, error) {
	target, err := inv.settlementTarget(amount)
	if err != nil {
		return nil, err
	}
	if method == "" {
		method = PaymentMethodOther
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidPayment, method)
	}

	var payment *Payment
	if delta := target.Sub(inv.PaidAmount); delta.IsPositive() {
		payment = &Payment{
			ID:        uuid.New(),
			InvoiceID: inv.ID,
			Amount:    delta,
			Method:    method,
			Reference: "settlement",
			CreatedAt: now,
		}
		inv.Payments = append(inv.Payments, payment)
	}

	if err := inv.MarkPaid(&target, now); err != nil {
		return nil, err
	}
	return payment, nil
}

// LedgerBalanced reports whether the invoice's loaded payments add up to its
// paid amount.
func LedgerBalanced(inv *Invoice) bool {
	return SumPayments(inv.Payments).Equal(inv.PaidAmount)
}
