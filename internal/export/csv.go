// Package export renders invoices and their aggregates into files meant for
// people: a spreadsheet-ready CSV report and a printable invoice PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/finance"
	"golang.org/x/text/encoding/unicode"
)

var ErrInvalidDelimiter = errors.New("invalid CSV delimiter")

// Report is everything that goes into one CSV export.
type Report struct {
	Invoices       []*domain.Invoice
	Tax            finance.TaxSummary
	Aging          finance.AgingReport
	Reconciliation finance.ReconciliationReport
}

// CSVExporter writes reports as UTF-8 with a byte order mark and CRLF record
// terminators, which is what spreadsheet tools expect when opening a file
// directly. Field contents are written byte for byte.
type CSVExporter struct {
	delimiter rune
}

// NewCSVExporter returns an exporter using the given field delimiter.
func NewCSVExporter(delimiter rune) (*CSVExporter, error) {
	switch {
	case delimiter == 0:
		delimiter = ','
	case delimiter == '"', delimiter == '\r', delimiter == '\n',
		delimiter == utf8.RuneError, !utf8.ValidRune(delimiter):
		return nil, fmt.Errorf("%w: %q", ErrInvalidDelimiter, delimiter)
	}
	return &CSVExporter{delimiter: delimiter}, nil
}

var invoiceHeader = []string{
	"Invoice Number", "Client", "Status", "Issue Date", "Due Date",
	"Subtotal", "Discount", "Tax", "Total", "Paid", "Remaining", "Notes",
}

// Write serializes the report. Free text is quoted as needed so that
// delimiters, quotes and line breaks survive a round trip.
func (e *CSVExporter) Write(w io.Writer, r Report) error {
	bom := unicode.UTF8BOM.NewEncoder().Writer(w)

	records := make([][]string, 0, len(r.Invoices)+24)
	records = append(records, invoiceHeader)
	for _, inv := range r.Invoices {
		records = append(records, invoiceRecord(inv))
	}

	records = append(records,
		[]string{},
		[]string{"Tax Summary"},
		[]string{"Period", "Gross Revenue", "TVA Collected", "Net Revenue"},
		[]string{r.Tax.Period(), money(r.Tax.GrossRevenue), money(r.Tax.TVACollected), money(r.Tax.NetRevenue)},
	)

	records = append(records,
		[]string{},
		[]string{"Aging"},
		[]string{"Bucket", "Count", "Amount"},
	)
	for _, b := range finance.AgingBuckets {
		bt := r.Aging.Bucket(b)
		records = append(records, []string{b.Label(), strconv.Itoa(bt.Count), money(bt.Amount)})
	}
	records = append(records, []string{"Total", strconv.Itoa(r.Aging.Count()), money(r.Aging.Total)})

	records = append(records,
		[]string{},
		[]string{"Reconciliation"},
		[]string{"Category", "Count", "Amount", "Percent"},
	)
	for _, c := range finance.ReconciliationCategories {
		ct := r.Reconciliation.Category(c)
		records = append(records, []string{string(c), strconv.Itoa(ct.Count), money(ct.Amount), strconv.Itoa(ct.Percent) + "%"})
	}

	if err := e.writeRecords(bom, records); err != nil {
		return fmt.Errorf("csv: write report: %w", err)
	}
	if c, ok := bom.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("csv: flush report: %w", err)
		}
	}
	return nil
}

// writeRecords quotes each record with encoding/csv and ends it with CRLF.
// csv.Writer's own UseCRLF would also rewrite line breaks inside quoted
// fields, so records are terminated here instead.
func (e *CSVExporter) writeRecords(w io.Writer, records [][]string) error {
	var line bytes.Buffer
	cw := csv.NewWriter(&line)
	cw.Comma = e.delimiter

	for _, rec := range records {
		line.Reset()
		if err := cw.Write(rec); err != nil {
			return err
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		b := bytes.TrimSuffix(line.Bytes(), []byte("\n"))
		if _, err := w.Write(append(b, '\r', '\n')); err != nil {
			return err
		}
	}
	return nil
}

func invoiceRecord(inv *domain.Invoice) []string {
	client := inv.ClientID.String()
	if inv.Client != nil {
		client = inv.Client.Name
	}
	return []string{
		inv.InvoiceNumber,
		client,
		string(inv.Status),
		inv.IssueDate.Format(domain.DateLayout),
		inv.DueDate.Format(domain.DateLayout),
		money(inv.Subtotal),
		money(inv.DiscountAmount),
		money(inv.TaxAmount),
		money(inv.TotalAmount),
		money(inv.PaidAmount),
		money(inv.Outstanding()),
		inv.Notes,
	}
}
