package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodOther        PaymentMethod = "other"
)

var PaymentMethods = []PaymentMethod{
	PaymentMethodCard,
	PaymentMethodBankTransfer,
	PaymentMethodCash,
	PaymentMethodCheck,
	PaymentMethodOther,
}

// ParsePaymentMethod accepts a method name in any case. An empty string
// means "other".
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PaymentMethodOther, nil
	}
	m := PaymentMethod(strings.ReplaceAll(s, "-", "_"))
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown payment method %q", ErrInvalidPayment, s)
	}
	return m, nil
}

func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// Payment is an amount received against one invoice. Payments are only
// created by the ledger and never edited afterwards.
type Payment struct {
	ID        uuid.UUID
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	Method    PaymentMethod
	Reference string
	Notes     string
	CreatedAt time.Time
}

// Validate returns an error if the payment is invalid
func (p *Payment) Validate() error {
	if p.InvoiceID == uuid.Nil {
		return errors.New("invoice ID is required")
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", ErrInvalidAmount)
	}
	if !p.Method.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidPayment, p.Method)
	}
	return nil
}

// SumPayments adds up payment amounts.
func SumPayments(payments []*Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
