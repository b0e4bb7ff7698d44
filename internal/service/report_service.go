package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/export"
	"github.com/andy/studioledger/internal/finance"
	"github.com/andy/studioledger/internal/logger"
	"github.com/andy/studioledger/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ReportSettings configures how reports are converted and written.
type ReportSettings struct {
	LedgerCurrency  string
	DisplayCurrency string
	Rates           map[string]decimal.Decimal
	Delimiter       rune
	Issuer          export.Issuer
	PDFDir          string
}

// ReportService provides aggregations and exports over the studio's invoices
type ReportService interface {
	// Receivables
	Aging(ctx context.Context, today time.Time) (finance.AgingReport, error)
	Reconciliation(ctx context.Context) (finance.ReconciliationReport, error)
	OutstandingTotal(ctx context.Context) (decimal.Decimal, error)

	// Revenue
	MonthlyRevenue(ctx context.Context, year int, today time.Time) ([]finance.MonthRevenue, error)
	TaxSummary(ctx context.Context, month time.Month, year int) (finance.TaxSummary, error)
	TotalRevenue(ctx context.Context, start time.Time, end *time.Time) (decimal.Decimal, error)
	Breakdown(ctx context.Context, start time.Time, end *time.Time) (finance.Breakdown, error)

	// Exports
	ExportCSV(ctx context.Context, w io.Writer, month time.Month, year int, today time.Time) error
	ExportInvoicePDF(ctx context.Context, invoiceID uuid.UUID) (string, error)

	// Convert turns a ledger amount into target; empty target means the
	// configured display currency.
	Convert(amount decimal.Decimal, target string) (decimal.Decimal, string, error)
	LedgerCurrency() string
}

type reportService struct {
	studioID    uuid.UUID
	settings    ReportSettings
	converter   *finance.Converter
	exporter    *export.CSVExporter
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	clientRepo  repository.ClientRepository
	log         zerolog.Logger
}

// NewReportService creates a new report service
func NewReportService(
	studioID uuid.UUID,
	settings ReportSettings,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	clientRepo repository.ClientRepository,
) (ReportService, error) {
	settings.LedgerCurrency = strings.ToUpper(settings.LedgerCurrency)
	settings.DisplayCurrency = strings.ToUpper(settings.DisplayCurrency)
	if settings.DisplayCurrency == "" {
		settings.DisplayCurrency = settings.LedgerCurrency
	}

	converter, err := finance.NewConverter(settings.Rates)
	if err != nil {
		return nil, fmt.Errorf("currency rates: %w", err)
	}
	exporter, err := export.NewCSVExporter(settings.Delimiter)
	if err != nil {
		return nil, err
	}
	if settings.Issuer.Currency == "" {
		settings.Issuer.Currency = settings.LedgerCurrency
	}

	return &reportService{
		studioID:    studioID,
		settings:    settings,
		converter:   converter,
		exporter:    exporter,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		clientRepo:  clientRepo,
		log:         logger.WithComponent("reports"),
	}, nil
}

func (s *reportService) invoices(ctx context.Context) ([]*domain.Invoice, error) {
	invoices, err := s.invoiceRepo.List(ctx, repository.InvoiceFilter{StudioID: s.studioID})
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	return invoices, nil
}

func (s *reportService) Aging(ctx context.Context, today time.Time) (finance.AgingReport, error) {
	invoices, err := s.invoices(ctx)
	if err != nil {
		return finance.AgingReport{}, err
	}
	return finance.Age(invoices, today), nil
}

func (s *reportService) Reconciliation(ctx context.Context) (finance.ReconciliationReport, error) {
	invoices, err := s.invoices(ctx)
	if err != nil {
		return finance.ReconciliationReport{}, err
	}
	report := finance.Reconcile(invoices)
	if report.Unclassified > 0 {
		s.log.Warn().Int("count", report.Unclassified).Msg("invoices fit no reconciliation category")
	}
	return report, nil
}

func (s *reportService) OutstandingTotal(ctx context.Context) (decimal.Decimal, error) {
	invoices, err := s.invoices(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, inv := range invoices {
		if inv.IsOutstanding() {
			total = total.Add(inv.Outstanding())
		}
	}
	return total, nil
}

func (s *reportService) MonthlyRevenue(ctx context.Context, year int, today time.Time) ([]finance.MonthRevenue, error) {
	invoices, err := s.invoices(ctx)
	if err != nil {
		return nil, err
	}
	return finance.MonthlyRevenue(invoices, year, today), nil
}

func (s *reportService) TaxSummary(ctx context.Context, month time.Month, year int) (finance.TaxSummary, error) {
	invoices, err := s.invoices(ctx)
	if err != nil {
		return finance.TaxSummary{}, err
	}
	return finance.SummarizeTax(invoices, month, year), nil
}

func (s *reportService) TotalRevenue(ctx context.Context, start time.Time, end *time.Time) (decimal.Decimal, error) {
	invoices, err := s.invoices(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return finance.TotalRevenue(invoices, start, end), nil
}

func (s *reportService) Breakdown(ctx context.Context, start time.Time, end *time.Time) (finance.Breakdown, error) {
	invoices, err := s.invoices(ctx)
	if err != nil {
		return finance.Breakdown{}, err
	}
	return finance.RevenueBreakdown(invoices, start, end), nil
}

func (s *reportService) ExportCSV(ctx context.Context, w io.Writer, month time.Month, year int, today time.Time) error {
	invoices, err := s.invoices(ctx)
	if err != nil {
		return err
	}
	attachClients(ctx, s.clientRepo, invoices)

	report := export.Report{
		Invoices:       invoices,
		Tax:            finance.SummarizeTax(invoices, month, year),
		Aging:          finance.Age(invoices, today),
		Reconciliation: finance.Reconcile(invoices),
	}
	if err := s.exporter.Write(w, report); err != nil {
		return err
	}

	s.log.Info().
		Int("invoices", len(invoices)).
		Str("period", report.Tax.Period()).
		Msg("csv report exported")
	return nil
}

func (s *reportService) ExportInvoicePDF(ctx context.Context, invoiceID uuid.UUID) (string, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if invoice.StudioID != s.studioID {
		return "", fmt.Errorf("invoice %s: %w", invoiceID, repository.ErrNotFound)
	}
	if invoice.Client, err = s.clientRepo.GetByID(ctx, invoice.ClientID); err != nil {
		return "", err
	}
	if invoice.Payments, err = s.paymentRepo.ListByInvoice(ctx, invoice.ID); err != nil {
		return "", err
	}

	path, err := export.InvoicePDF(invoice, s.settings.Issuer, s.settings.PDFDir)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("invoice_number", invoice.InvoiceNumber).Str("path", path).Msg("invoice pdf written")
	return path, nil
}

func (s *reportService) Convert(amount decimal.Decimal, target string) (decimal.Decimal, string, error) {
	if target == "" {
		target = s.settings.DisplayCurrency
	}
	target = strings.ToUpper(target)
	converted, err := s.converter.Convert(amount, s.settings.LedgerCurrency, target)
	if err != nil {
		return decimal.Zero, "", err
	}
	return converted, target, nil
}

func (s *reportService) LedgerCurrency() string {
	return s.settings.LedgerCurrency
}
