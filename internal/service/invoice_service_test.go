package service

import (
	"context"
	"testing"
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/export"
	"github.com/andy/studioledger/internal/logger"
	"github.com/andy/studioledger/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testStudio = uuid.MustParse("6f1c2a4e-0d7b-4c61-9a53-2f8e1b7d4c10")
	t0         = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

func init() {
	logger.Disable()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type fixture struct {
	store    *memStore
	client   *domain.Client
	invoices InvoiceService
	ledger   LedgerService
	reports  ReportService
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: newMemStore(), now: t0}
	clock := func() time.Time { return f.now }

	clientRepo := &mockClientRepo{s: f.store}
	invoiceRepo := &mockInvoiceRepo{s: f.store}
	paymentRepo := &mockPaymentRepo{s: f.store}

	f.client = domain.NewClient(testStudio, "Atelier Nord", "billing@atelier.example", t0)
	require.NoError(t, clientRepo.Create(context.Background(), f.client))

	f.invoices = NewInvoiceService(testStudio, InvoiceDefaults{
		NumberPrefix: "INV",
		DueDays:      30,
		TaxRate:      dec("0.2"),
	}, invoiceRepo, paymentRepo, clientRepo, clock)
	f.ledger = NewLedgerService(testStudio, invoiceRepo, paymentRepo, clock)

	reports, err := NewReportService(testStudio, ReportSettings{
		LedgerCurrency:  "EUR",
		DisplayCurrency: "USD",
		Rates:           map[string]decimal.Decimal{"EUR": dec("1"), "USD": dec("1.1")},
		Delimiter:       ';',
		Issuer:          export.Issuer{Name: "Studio"},
		PDFDir:          t.TempDir(),
	}, invoiceRepo, paymentRepo, clientRepo)
	require.NoError(t, err)
	f.reports = reports
	return f
}

// draft creates a draft with no tax so totals equal the subtotal.
func (f *fixture) draft(t *testing.T, subtotal string) *domain.Invoice {
	t.Helper()
	inv, err := f.invoices.CreateDraft(context.Background(), NewInvoiceParams{
		ClientID: f.client.ID,
		Subtotal: dec(subtotal),
		TaxRate:  decPtr("0"),
	})
	require.NoError(t, err)
	return inv
}

func (f *fixture) sent(t *testing.T, subtotal string) *domain.Invoice {
	t.Helper()
	inv, err := f.invoices.MarkSent(context.Background(), f.draft(t, subtotal).ID)
	require.NoError(t, err)
	return inv
}

func (f *fixture) stored(id uuid.UUID) *domain.Invoice {
	return f.store.invoices[id]
}

func TestCreateDraft_AppliesDefaults(t *testing.T) {
	f := newFixture(t)

	inv, err := f.invoices.CreateDraft(context.Background(), NewInvoiceParams{
		ClientID: f.client.ID,
		Subtotal: dec("100"),
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-001", inv.InvoiceNumber)
	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	assert.Equal(t, domain.Date(2026, 3, 1), inv.IssueDate)
	assert.Equal(t, domain.Date(2026, 3, 31), inv.DueDate)
	assert.True(t, dec("20").Equal(inv.TaxAmount))
	assert.True(t, dec("120").Equal(inv.TotalAmount))
	assert.Equal(t, "Atelier Nord", inv.Client.Name)

	second := f.draft(t, "50")
	assert.Equal(t, "INV-2026-002", second.InvoiceNumber)
}

func TestCreateDraft_UnknownClient(t *testing.T) {
	f := newFixture(t)

	_, err := f.invoices.CreateDraft(context.Background(), NewInvoiceParams{
		ClientID: uuid.New(),
		Subtotal: dec("100"),
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, f.store.invoices)
}

func TestCreateDraft_ArchivedClient(t *testing.T) {
	f := newFixture(t)
	f.store.clients[f.client.ID].IsArchived = true

	_, err := f.invoices.CreateDraft(context.Background(), NewInvoiceParams{
		ClientID: f.client.ID,
		Subtotal: dec("100"),
	})
	assert.Error(t, err)
}

func TestUpdateDraft(t *testing.T) {
	f := newFixture(t)
	inv := f.draft(t, "100")

	notes := "Spring campaign"
	updated, err := f.invoices.UpdateDraft(context.Background(), inv.ID, domain.InvoiceUpdate{
		Subtotal: decPtr("200"),
		Discount: decPtr("20"),
		Notes:    &notes,
	})
	require.NoError(t, err)
	assert.True(t, dec("180").Equal(updated.TotalAmount))
	assert.True(t, dec("180").Equal(f.stored(inv.ID).TotalAmount))
	assert.Equal(t, notes, f.stored(inv.ID).Notes)
}

func TestUpdateDraft_OnlyDrafts(t *testing.T) {
	f := newFixture(t)
	inv := f.sent(t, "100")

	_, err := f.invoices.UpdateDraft(context.Background(), inv.ID, domain.InvoiceUpdate{Subtotal: decPtr("1")})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotEditable)
	assert.True(t, dec("100").Equal(f.stored(inv.ID).TotalAmount))
}

func TestLifecycle_RejectedTransitionLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.sent(t, "100")

	_, _, err := f.invoices.MarkPaid(ctx, inv.ID, nil, domain.PaymentMethodBankTransfer)
	require.NoError(t, err)

	_, err = f.invoices.Cancel(ctx, inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.invoices.MarkOverdue(ctx, inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.invoices.MarkSent(ctx, inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored := f.stored(inv.ID)
	assert.Equal(t, domain.InvoiceStatusPaid, stored.Status)
	assert.True(t, dec("100").Equal(stored.PaidAmount))
}

func TestMarkPaid_RecordsSettlementPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.sent(t, "100")

	_, _, err := f.ledger.RecordPayment(ctx, inv.ID, domain.PaymentRequest{Amount: dec("30")})
	require.NoError(t, err)

	paid, payment, err := f.invoices.MarkPaid(ctx, inv.ID, nil, domain.PaymentMethodCash)
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.True(t, dec("70").Equal(payment.Amount))
	assert.Equal(t, "settlement", payment.Reference)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)

	assert.NoError(t, f.ledger.Verify(ctx, inv.ID))
	payments, err := f.ledger.ListPayments(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestMarkPaid_ExplicitAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.sent(t, "100")

	paid, _, err := f.invoices.MarkPaid(ctx, inv.ID, decPtr("60"), domain.PaymentMethodBankTransfer)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	assert.True(t, dec("60").Equal(paid.PaidAmount))
	assert.NoError(t, f.ledger.Verify(ctx, inv.ID))

	_, _, err = f.invoices.MarkPaid(ctx, f.sent(t, "100").ID, decPtr("150"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCancel_KeepsPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.sent(t, "100")

	_, _, err := f.ledger.RecordPayment(ctx, inv.ID, domain.PaymentRequest{Amount: dec("40")})
	require.NoError(t, err)

	cancelled, err := f.invoices.Cancel(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusCancelled, cancelled.Status)
	assert.True(t, dec("40").Equal(f.stored(inv.ID).PaidAmount))
	assert.Len(t, f.store.payments[inv.ID], 1)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := f.draft(t, "100")
	require.NoError(t, f.invoices.Delete(ctx, draft.ID))
	assert.NotContains(t, f.store.invoices, draft.ID)

	sent := f.sent(t, "100")
	assert.ErrorIs(t, f.invoices.Delete(ctx, sent.ID), domain.ErrIllegalDelete)
	assert.Contains(t, f.store.invoices, sent.ID)

	assert.ErrorIs(t, f.invoices.Delete(ctx, uuid.New()), repository.ErrNotFound)
}

func TestCheckOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	late := f.sent(t, "100") // due 2026-03-31
	f.draft(t, "100")        // drafts are never swept
	paid := f.sent(t, "100") // settled before the sweep
	_, _, err := f.invoices.MarkPaid(ctx, paid.ID, nil, "")
	require.NoError(t, err)

	moved, err := f.invoices.CheckOverdue(ctx, domain.Date(2026, 3, 31))
	require.NoError(t, err)
	assert.Empty(t, moved, "due today is not overdue")

	moved, err = f.invoices.CheckOverdue(ctx, domain.Date(2026, 4, 1))
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, late.ID, moved[0].ID)
	assert.Equal(t, domain.InvoiceStatusOverdue, f.stored(late.ID).Status)

	moved, err = f.invoices.CheckOverdue(ctx, domain.Date(2026, 4, 1))
	require.NoError(t, err)
	assert.Empty(t, moved)
}

func TestGetInvoice_OtherStudio(t *testing.T) {
	f := newFixture(t)
	inv := f.draft(t, "100")
	f.store.invoices[inv.ID].StudioID = uuid.New()

	_, err := f.invoices.GetInvoice(context.Background(), inv.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFindInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.sent(t, "100")
	_, _, err := f.ledger.RecordPayment(ctx, inv.ID, domain.PaymentRequest{Amount: dec("10")})
	require.NoError(t, err)

	byNumber, err := f.invoices.FindInvoice(ctx, "inv-2026-001")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byNumber.ID)
	assert.Len(t, byNumber.Payments, 1)
	require.NotNil(t, byNumber.Client)

	byID, err := f.invoices.FindInvoice(ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, byID.InvoiceNumber)

	_, err = f.invoices.FindInvoice(ctx, "INV-2026-999")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListInvoices_ScopedToStudio(t *testing.T) {
	f := newFixture(t)
	f.draft(t, "100")
	other := f.draft(t, "100")
	f.store.invoices[other.ID].StudioID = uuid.New()

	list, err := f.invoices.ListInvoices(context.Background(), repository.InvoiceFilter{StudioID: uuid.New()})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Atelier Nord", list[0].Client.Name)
}

func TestZeroTotalDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := f.draft(t, "0")
	_, err := f.invoices.MarkSent(ctx, inv.ID)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	stored, err := f.invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusDraft, stored.Status)

	paid, payment, err := f.invoices.MarkPaid(ctx, inv.ID, nil, domain.PaymentMethodCash)
	require.NoError(t, err)
	assert.Nil(t, payment)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
}
