package service

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/finance"
	"github.com/andy/studioledger/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) sentDue(t *testing.T, subtotal string, issue, due time.Time) *domain.Invoice {
	t.Helper()
	ctx := context.Background()
	inv, err := f.invoices.CreateDraft(ctx, NewInvoiceParams{
		ClientID:  f.client.ID,
		Subtotal:  dec(subtotal),
		TaxRate:   decPtr("0"),
		IssueDate: issue,
		DueDate:   &due,
	})
	require.NoError(t, err)
	inv, err = f.invoices.MarkSent(ctx, inv.ID)
	require.NoError(t, err)
	return inv
}

func TestReportAging_FiftyDaysOverdue(t *testing.T) {
	f := newFixture(t)
	inv := f.sentDue(t, "1000", domain.Date(2025, 12, 1), domain.Date(2026, 1, 1))

	report, err := f.reports.Aging(context.Background(), domain.Date(2026, 2, 20))
	require.NoError(t, err)

	bucket := report.Bucket(finance.Aging31To60)
	assert.Equal(t, 1, bucket.Count)
	assert.True(t, dec("1000").Equal(bucket.Amount))
	assert.Contains(t, bucket.InvoiceIDs, inv.ID)
	assert.True(t, dec("1000").Equal(report.Total))
}

func TestReportReconciliation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	paid := f.sent(t, "100")
	_, _, err := f.invoices.MarkPaid(ctx, paid.ID, nil, "")
	require.NoError(t, err)

	partial := f.sent(t, "100")
	_, _, err = f.ledger.RecordPayment(ctx, partial.ID, domain.PaymentRequest{Amount: dec("40")})
	require.NoError(t, err)

	short := f.sent(t, "100")
	_, _, err = f.invoices.MarkPaid(ctx, short.ID, decPtr("60"), "")
	require.NoError(t, err)

	f.sent(t, "100")
	f.draft(t, "100")

	report, err := f.reports.Reconciliation(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Qualifying)
	assert.Equal(t, 1, report.Category(finance.ReconMatched).Count)
	assert.Equal(t, 2, report.Category(finance.ReconPartial).Count)
	assert.True(t, dec("100").Equal(report.Category(finance.ReconPartial).Amount))
	assert.Equal(t, 25, report.Category(finance.ReconUnmatched).Percent)
}

func TestReportOutstandingTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := f.sent(t, "300")
	_, _, err := f.ledger.RecordPayment(ctx, inv.ID, domain.PaymentRequest{Amount: dec("120")})
	require.NoError(t, err)
	f.sent(t, "50")
	f.draft(t, "999")

	total, err := f.reports.OutstandingTotal(ctx)
	require.NoError(t, err)
	assert.True(t, dec("230").Equal(total), total.String())
}

func TestReportRevenue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	jan := f.sentDue(t, "100", domain.Date(2026, 1, 15), domain.Date(2026, 2, 15))
	feb := f.sentDue(t, "250", domain.Date(2026, 2, 3), domain.Date(2026, 3, 3))
	f.sentDue(t, "400", domain.Date(2026, 2, 10), domain.Date(2026, 3, 10))
	for _, inv := range []*domain.Invoice{jan, feb} {
		_, _, err := f.invoices.MarkPaid(ctx, inv.ID, nil, "")
		require.NoError(t, err)
	}

	months, err := f.reports.MonthlyRevenue(ctx, 2026, domain.Date(2026, 3, 1))
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.True(t, dec("100").Equal(months[0].Amount))
	assert.True(t, dec("250").Equal(months[1].Amount))
	assert.True(t, months[2].Amount.IsZero())

	tax, err := f.reports.TaxSummary(ctx, time.February, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, tax.Count)
	assert.True(t, dec("250").Equal(tax.GrossRevenue))

	end := domain.Date(2026, 2, 3)
	total, err := f.reports.TotalRevenue(ctx, domain.Date(2026, 1, 1), &end)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(total), "end of range is exclusive")

	breakdown, err := f.reports.Breakdown(ctx, domain.Date(2026, 1, 1), nil)
	require.NoError(t, err)
	assert.True(t, dec("350").Equal(breakdown.Net.Amount))
}

func TestReportConvert(t *testing.T) {
	f := newFixture(t)

	amount, currency, err := f.reports.Convert(dec("100"), "")
	require.NoError(t, err)
	assert.Equal(t, "USD", currency)
	assert.True(t, dec("110").Equal(amount))

	amount, currency, err = f.reports.Convert(dec("100"), "eur")
	require.NoError(t, err)
	assert.Equal(t, "EUR", currency)
	assert.True(t, dec("100").Equal(amount))

	_, _, err = f.reports.Convert(dec("100"), "GBP")
	assert.ErrorIs(t, err, finance.ErrUnknownCurrency)
}

func TestNewReportService_RejectsBadSettings(t *testing.T) {
	s := newMemStore()
	_, err := NewReportService(testStudio, ReportSettings{
		LedgerCurrency: "EUR",
		Rates:          map[string]decimal.Decimal{"EUR": decimal.Zero},
	}, &mockInvoiceRepo{s: s}, &mockPaymentRepo{s: s}, &mockClientRepo{s: s})
	assert.Error(t, err)

	_, err = NewReportService(testStudio, ReportSettings{
		LedgerCurrency: "EUR",
		Delimiter:      '"',
	}, &mockInvoiceRepo{s: s}, &mockPaymentRepo{s: s}, &mockClientRepo{s: s})
	assert.Error(t, err)
}

func TestReportExportCSV(t *testing.T) {
	f := newFixture(t)
	inv := f.sent(t, "100")

	var buf bytes.Buffer
	require.NoError(t, f.reports.ExportCSV(context.Background(), &buf, time.March, 2026, domain.Date(2026, 3, 10)))

	out := buf.String()
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\xEF\xBB\xBF")))
	assert.Contains(t, out, inv.InvoiceNumber+";Atelier Nord;sent;")
	assert.Contains(t, out, "\r\n")
}

func TestReportExportInvoicePDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.sent(t, "100")
	_, _, err := f.ledger.RecordPayment(ctx, inv.ID, domain.PaymentRequest{Amount: dec("40")})
	require.NoError(t, err)

	path, err := f.reports.ExportInvoicePDF(ctx, inv.ID)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = f.reports.ExportInvoicePDF(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
