package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceStatuses lists every status in lifecycle order.
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusOverdue,
	InvoiceStatusPaid,
	InvoiceStatusCancelled,
}

// ParseInvoiceStatus accepts a status name in any case.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	st := InvoiceStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown invoice status %q", s)
	}
	return st, nil
}

func (s InvoiceStatus) Valid() bool {
	for _, known := range InvoiceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s InvoiceStatus) Terminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

type Invoice struct {
	ID            uuid.UUID
	InvoiceNumber string
	StudioID      uuid.UUID
	ClientID      uuid.UUID
	IssueDate     time.Time
	DueDate       time.Time

	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	PaidAmount     decimal.Decimal

	Status    InvoiceStatus
	Notes     string
	Terms     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Related data (populated by repository)
	Client   *Client
	Payments []*Payment
}

// InvoiceAmounts are the figures a draft is priced from.
type InvoiceAmounts struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	TaxRate  decimal.Decimal
}

// NewInvoice creates a new draft invoice with computed tax and total.
func NewInvoice(number string, studioID, clientID uuid.UUID, amounts InvoiceAmounts, issueDate, dueDate, now time.Time) *Invoice {
	inv := &Invoice{
		ID:            uuid.New(),
		InvoiceNumber: strings.TrimSpace(number),
		StudioID:      studioID,
		ClientID:      clientID,
		IssueDate:     CivilDate(issueDate),
		DueDate:       CivilDate(dueDate),
		Status:        InvoiceStatusDraft,
		PaidAmount:    decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
		Payments:      make([]*Payment, 0),
	}
	inv.applyAmounts(amounts)
	return inv
}

func (i *Invoice) applyAmounts(a InvoiceAmounts) {
	i.Subtotal = RoundMoney(a.Subtotal)
	i.DiscountAmount = RoundMoney(a.Discount)
	i.TaxRate = a.TaxRate
	i.CalculateTotals()
}

// CalculateTotals derives tax and total from subtotal, discount and rate.
func (i *Invoice) CalculateTotals() {
	taxable := i.Subtotal.Sub(i.DiscountAmount)
	i.TaxAmount = RoundMoney(taxable.Mul(i.TaxRate))
	i.TotalAmount = taxable.Add(i.TaxAmount)
}

// CanEdit returns true if the invoice can be modified
func (i *Invoice) CanEdit() bool {
	return i.Status == InvoiceStatusDraft
}

// Outstanding is what the client still owes.
func (i *Invoice) Outstanding() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

// IsOutstanding reports whether the invoice is out with the client and not
// fully paid.
func (i *Invoice) IsOutstanding() bool {
	if i.Status != InvoiceStatusSent && i.Status != InvoiceStatusOverdue {
		return false
	}
	return i.PaidAmount.LessThan(i.TotalAmount)
}

// IsPastDue reports whether today is after the due date.
func (i *Invoice) IsPastDue(today time.Time) bool {
	return CivilDate(today).After(i.DueDate)
}

// Validate returns an error if the invoice is invalid
func (i *Invoice) Validate() error {
	if i.InvoiceNumber == "" {
		return errors.New("invoice number is required")
	}
	if i.StudioID == uuid.Nil {
		return errors.New("studio ID is required")
	}
	if i.ClientID == uuid.Nil {
		return errors.New("client ID is required")
	}
	if !i.Status.Valid() {
		return fmt.Errorf("unknown invoice status %q", i.Status)
	}
	if i.IssueDate.IsZero() || i.DueDate.IsZero() {
		return errors.New("issue date and due date are required")
	}
	if i.DueDate.Before(i.IssueDate) {
		return errors.New("due date must not be before issue date")
	}
	for name, v := range map[string]decimal.Decimal{
		"subtotal":        i.Subtotal,
		"discount amount": i.DiscountAmount,
		"tax amount":      i.TaxAmount,
		"total amount":    i.TotalAmount,
		"paid amount":     i.PaidAmount,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	if i.TaxRate.IsNegative() || i.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return errors.New("tax rate must be between 0 and 1")
	}
	if i.DiscountAmount.GreaterThan(i.Subtotal) {
		return errors.New("discount cannot exceed subtotal")
	}
	if !i.TotalAmount.Equal(i.Subtotal.Sub(i.DiscountAmount).Add(i.TaxAmount)) {
		return errors.New("total must equal subtotal minus discount plus tax")
	}
	if i.PaidAmount.GreaterThan(i.TotalAmount) {
		return errors.New("paid amount cannot exceed total")
	}
	if i.UpdatedAt.Before(i.CreatedAt) {
		return errors.New("updated_at cannot precede created_at")
	}
	return nil
}

// InvoiceUpdate is a partial edit of a draft. Nil fields are left alone.
type InvoiceUpdate struct {
	ClientID  *uuid.UUID
	IssueDate *time.Time
	DueDate   *time.Time
	Subtotal  *decimal.Decimal
	Discount  *decimal.Decimal
	TaxRate   *decimal.Decimal
	Notes     *string
	Terms     *string
}

// IsEmpty reports whether the update would change nothing.
func (u InvoiceUpdate) IsEmpty() bool {
	return u.ClientID == nil && u.IssueDate == nil && u.DueDate == nil &&
		u.Subtotal == nil && u.Discount == nil && u.TaxRate == nil &&
		u.Notes == nil && u.Terms == nil
}

// ApplyUpdate edits a draft in place. The invoice is left untouched when the
// update is rejected.
func (i *Invoice) ApplyUpdate(u InvoiceUpdate, now time.Time) error {
	if !i.CanEdit() {
		return ErrInvoiceNotEditable
	}

	next := *i
	if u.ClientID != nil {
		next.ClientID = *u.ClientID
		next.Client = nil
	}
	if u.IssueDate != nil {
		next.IssueDate = CivilDate(*u.IssueDate)
	}
	if u.DueDate != nil {
		next.DueDate = CivilDate(*u.DueDate)
	}
	amounts := InvoiceAmounts{Subtotal: next.Subtotal, Discount: next.DiscountAmount, TaxRate: next.TaxRate}
	if u.Subtotal != nil {
		amounts.Subtotal = *u.Subtotal
	}
	if u.Discount != nil {
		amounts.Discount = *u.Discount
	}
	if u.TaxRate != nil {
		amounts.TaxRate = *u.TaxRate
	}
	next.applyAmounts(amounts)
	if u.Notes != nil {
		next.Notes = *u.Notes
	}
	if u.Terms != nil {
		next.Terms = *u.Terms
	}
	next.UpdatedAt = touch(next.UpdatedAt, now)

	if err := next.Validate(); err != nil {
		return err
	}
	*i = next
	return nil
}
