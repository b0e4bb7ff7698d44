package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andy/studioledger/internal/domain"
	"github.com/go-pdf/fpdf"
)

// Issuer is the studio printed in the invoice header.
type Issuer struct {
	Name     string
	Email    string
	Address  string
	Currency string
}

// InvoicePDF renders inv, with its client and payments if loaded, to
// dir/<invoice number>.pdf and returns the path written.
func InvoicePDF(inv *domain.Invoice, issuer Issuer, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("pdf: create output dir: %w", err)
	}
	path := filepath.Join(dir, pdfFileName(inv.InvoiceNumber))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(inv.InvoiceNumber, true)
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW/2, 9, tr(orDefault(issuer.Name, "Studio")), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 9, "INVOICE", "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range strings.Split(issuer.Address, "\n") {
		if strings.TrimSpace(line) != "" {
			pdf.CellFormat(contentW, 4.5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	if issuer.Email != "" {
		pdf.CellFormat(contentW, 4.5, tr(issuer.Email), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Invoice info
	client := inv.ClientID.String()
	if inv.Client != nil {
		client = inv.Client.Name
	}
	info := [][2]string{
		{"Invoice", inv.InvoiceNumber},
		{"Bill to", client},
		{"Issued", inv.IssueDate.Format(domain.DateLayout)},
		{"Due", inv.DueDate.Format(domain.DateLayout)},
		{"Status", strings.ToUpper(string(inv.Status))},
	}
	for _, kv := range info {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 6, kv[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(contentW-30, 6, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
	pdf.Line(left, pdf.GetY(), pageW-right, pdf.GetY())
	pdf.Ln(4)

	// Totals
	labelW := contentW * 0.7
	amountW := contentW - labelW
	row := func(label, amount string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(amountW, 6, amount, "", 1, "R", false, 0, "")
	}
	cur := issuer.Currency
	row("Subtotal", withCurrency(money(inv.Subtotal), cur), false)
	if !inv.DiscountAmount.IsZero() {
		row("Discount", "-"+withCurrency(money(inv.DiscountAmount), cur), false)
	}
	row(fmt.Sprintf("Tax (%s%%)", inv.TaxRate.Shift(2).StringFixed(2)), withCurrency(money(inv.TaxAmount), cur), false)
	row("Total", withCurrency(money(inv.TotalAmount), cur), true)

	// Payments
	if len(inv.Payments) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW*0.25, 6, "Date", "B", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.2, 6, "Method", "B", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.3, 6, "Reference", "B", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.25, 6, "Amount", "B", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, p := range inv.Payments {
			pdf.CellFormat(contentW*0.25, 5, p.CreatedAt.Format(domain.DateLayout), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.2, 5, strings.ReplaceAll(string(p.Method), "_", " "), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.3, 5, tr(truncate(p.Reference, 30)), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.25, 5, withCurrency(money(p.Amount), cur), "", 1, "R", false, 0, "")
		}
	}

	pdf.Ln(4)
	row("Paid", withCurrency(money(inv.PaidAmount), cur), false)
	row("Balance due", withCurrency(money(inv.Outstanding()), cur), true)

	// Notes and terms
	for _, block := range [][2]string{{"Notes", inv.Notes}, {"Terms", inv.Terms}} {
		if strings.TrimSpace(block[1]) == "" {
			continue
		}
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, block[0], "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW, 4.5, tr(block[1]), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return path, nil
}

func pdfFileName(number string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, number)
	return safe + ".pdf"
}

func withCurrency(amount, currency string) string {
	if currency == "" {
		return amount
	}
	return amount + " " + currency
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
