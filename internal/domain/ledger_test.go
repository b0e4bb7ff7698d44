package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario: two partial payments, the second clears the balance.
func TestRecordPayment_PartialThenFull(t *testing.T) {
	inv := newTestInvoice(t, "450", InvoiceStatusSent)

	p1, err := RecordPayment(inv, PaymentRequest{Amount: dec("320"), Method: PaymentMethodCard}, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "320", p1.Amount.String())
	assert.Equal(t, inv.ID, p1.InvoiceID)
	assert.Equal(t, "320", inv.PaidAmount.String())
	assert.Equal(t, InvoiceStatusSent, inv.Status)

	_, err = RecordPayment(inv, PaymentRequest{Amount: dec("130"), Method: PaymentMethodCash}, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "450", inv.PaidAmount.String())
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.Len(t, inv.Payments, 2)
	assert.True(t, LedgerBalanced(inv))
}

// Scenario: an over-payment is refused and nothing changes.
func TestRecordPayment_OverPayment(t *testing.T) {
	inv := newTestInvoice(t, "450", InvoiceStatusSent)
	before := *inv

	p, err := RecordPayment(inv, PaymentRequest{Amount: dec("500")}, t0)
	assert.Nil(t, p)
	require.ErrorIs(t, err, ErrInvalidAmount)
	assert.EqualError(t, err, "payment exceeds remaining balance of 450.00")
	assert.Equal(t, before, *inv)
}

func TestRecordPayment_NonPositive(t *testing.T) {
	inv := newTestInvoice(t, "450", InvoiceStatusOverdue)
	for _, amt := range []string{"0", "-5", "0.001"} {
		_, err := RecordPayment(inv, PaymentRequest{Amount: dec(amt)}, t0)
		assert.ErrorIs(t, err, ErrInvalidAmount, amt)
	}
	assert.True(t, inv.PaidAmount.IsZero())
}

func TestRecordPayment_StatusChecked(t *testing.T) {
	for _, st := range []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusPaid, InvoiceStatusCancelled} {
		inv := newTestInvoice(t, "100", st)
		_, err := RecordPayment(inv, PaymentRequest{Amount: dec("10")}, t0)
		assert.ErrorIs(t, err, ErrInvalidState, st)
	}
}

func TestRecordPayment_StateCheckedBeforeAmount(t *testing.T) {
	inv := newTestInvoice(t, "100", InvoiceStatusDraft)
	_, err := RecordPayment(inv, PaymentRequest{Amount: dec("1000")}, t0)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRecordPayment_UnknownMethod(t *testing.T) {
	inv := newTestInvoice(t, "100", InvoiceStatusSent)
	_, err := RecordPayment(inv, PaymentRequest{Amount: dec("10"), Method: "crypto"}, t0)
	assert.ErrorIs(t, err, ErrInvalidPayment)
	assert.True(t, inv.PaidAmount.IsZero())
}

func TestRecordPayment_OverdueAutoPaid(t *testing.T) {
	inv := newTestInvoice(t, "80", InvoiceStatusOverdue)
	_, err := RecordPayment(inv, PaymentRequest{Amount: dec("80"), Method: PaymentMethodBankTransfer}, t0)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
}

func TestSettle_RecordsDifference(t *testing.T) {
	inv := newTestInvoice(t, "450", InvoiceStatusSent)
	_, err := RecordPayment(inv, PaymentRequest{Amount: dec("100")}, t0)
	require.NoError(t, err)

	p, err := Settle(inv, nil, PaymentMethodCash, t0.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "350", p.Amount.String())
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, LedgerBalanced(inv))
}

func TestSettle_NothingOwed(t *testing.T) {
	inv := newTestInvoice(t, "450", InvoiceStatusSent)
	_, err := RecordPayment(inv, PaymentRequest{Amount: dec("200")}, t0)
	require.NoError(t, err)

	p, err := Settle(inv, decPtr("200"), "", t0)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, LedgerBalanced(inv))
}

func TestSettle_Refused(t *testing.T) {
	inv := newTestInvoice(t, "450", InvoiceStatusPaid)
	_, err := Settle(inv, nil, PaymentMethodCash, t0)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, inv.Payments)
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod("Bank-Transfer")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodBankTransfer, m)

	m, err = ParsePaymentMethod("")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodOther, m)

	_, err = ParsePaymentMethod("iou")
	assert.ErrorIs(t, err, ErrInvalidPayment)
}
