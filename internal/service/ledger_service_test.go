package service

import (
	"context"
	"testing"

	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPayment_PartialThenFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.sent(t, "500")

	after, p1, err := f.ledger.RecordPayment(ctx, inv.ID, domain.PaymentRequest{
		Amount:    dec("200"),
		Method:    domain.PaymentMethodBankTransfer,
		Reference: "WIRE-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, after.Status)
	assert.True(t, dec("200").Equal(after.PaidAmount))
	assert.Equal(t, "WIRE-1", p1.Reference)

	after, _, err = f.ledger.RecordPayment(ctx, inv.ID, domain.PaymentRequest{Amount: dec("300")})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, after.Status)
	assert.True(t, dec("500").Equal(f.stored(inv.ID).PaidAmount))

	payments, err := f.ledger.ListPayments(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, domain.PaymentMethodOther, payments[1].Method)
	assert.NoError(t, f.ledger.Verify(ctx, inv.ID))
}

func TestRecordPayment_OverPaymentRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.sent(t, "100")

	_, _, err := f.ledger.RecordPayment(ctx, inv.ID, domain.PaymentRequest{Amount: dec("70")})
	require.NoError(t, err)

	_, _, err = f.ledger.RecordPayment(ctx, inv.ID, domain.PaymentRequest{Amount: dec("50")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Contains(t, err.Error(), "30.00")

	assert.True(t, dec("70").Equal(f.stored(inv.ID).PaidAmount))
	assert.Len(t, f.store.payments[inv.ID], 1)
}

func TestRecordPayment_RequiresSentOrOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := f.draft(t, "100")
	_, _, err := f.ledger.RecordPayment(ctx, draft.ID, domain.PaymentRequest{Amount: dec("10")})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	overdue := f.sent(t, "100")
	_, err = f.invoices.MarkOverdue(ctx, overdue.ID)
	require.NoError(t, err)
	after, _, err := f.ledger.RecordPayment(ctx, overdue.ID, domain.PaymentRequest{Amount: dec("100")})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, after.Status)
}

func TestRecordPayment_ConcurrentWriterLoses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.sent(t, "100")

	// Another writer settles 80 between our read and our write.
	f.store.beforeApply = func() {
		f.store.beforeApply = nil
		f.store.invoices[inv.ID].PaidAmount = dec("80")
	}

	_, _, err := f.ledger.RecordPayment(ctx, inv.ID, domain.PaymentRequest{Amount: dec("50")})
	assert.ErrorIs(t, err, repository.ErrConcurrentUpdate)
	assert.True(t, dec("80").Equal(f.stored(inv.ID).PaidAmount))
	assert.Empty(t, f.store.payments[inv.ID])
}

func TestVerify_DetectsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.sent(t, "100")

	_, _, err := f.ledger.RecordPayment(ctx, inv.ID, domain.PaymentRequest{Amount: dec("25")})
	require.NoError(t, err)
	require.NoError(t, f.ledger.Verify(ctx, inv.ID))

	f.store.invoices[inv.ID].PaidAmount = dec("30")
	err = f.ledger.Verify(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrLedgerMismatch)
}

func TestLedger_UnknownInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.ledger.RecordPayment(ctx, uuid.New(), domain.PaymentRequest{Amount: dec("1")})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.ledger.ListPayments(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
