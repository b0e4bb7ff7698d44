package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidState       = errors.New("invoice is not payable in its current status")
	ErrIllegalDelete      = errors.New("only draft invoices can be deleted")
	ErrInvalidPayment     = errors.New("invalid payment")
	ErrInvoiceNotEditable = errors.New("invoice cannot be edited once it has left draft")
)

// TransitionError reports a lifecycle operation attempted from a status that
// does not allow it.
type TransitionError struct {
	Op   string
	From InvoiceStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s an invoice that is %s", e.Op, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// AmountError carries the figure that made an amount unacceptable so the
// caller can show it to the user.
type AmountError struct {
	Reason string
	Limit  decimal.Decimal
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("%s %s", e.Reason, e.Limit.StringFixed(2))
}

func (e *AmountError) Unwrap() error { return ErrInvalidAmount }

func exceedsBalance(remaining decimal.Decimal) error {
	return &AmountError{Reason: "payment exceeds remaining balance of", Limit: remaining}
}
