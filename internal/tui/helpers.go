package tui

import (
	"strings"

	"github.com/andy/studioledger/internal/app"
	"github.com/andy/studioledger/internal/domain"
	"github.com/shopspring/decimal"
)

// formatMoney formats an amount as "1,234.56 EUR" with comma separators
func formatMoney(amount decimal.Decimal, currency string) string {
	negative := amount.IsNegative()
	s := amount.Abs().StringFixed(2)

	// Split at decimal point
	dotPos := len(s) - 3
	intPart := s[:dotPos]
	decPart := s[dotPos:]

	// Add commas to integer part
	result := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}

	out := string(result) + decPart
	if negative {
		out = "-" + out
	}
	if currency != "" {
		out += " " + currency
	}
	return out
}

// truncateStr truncates a string to maxLen runes with ellipsis
func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// bar renders value as a block bar scaled so that max fills width
func bar(value, max decimal.Decimal, width int) string {
	if !max.IsPositive() || !value.IsPositive() {
		return ""
	}
	n := int(value.Mul(decimal.NewFromInt(int64(width))).Div(max).IntPart())
	if n == 0 {
		n = 1
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}

// displayMoney converts a ledger amount to the display currency. Rates are
// validated at startup, so a failed conversion falls back to the ledger
// currency rather than hiding the figure.
func displayMoney(a *app.App, amount decimal.Decimal) string {
	converted, currency, err := a.ReportService.Convert(amount, "")
	if err != nil {
		return formatMoney(amount, a.ReportService.LedgerCurrency())
	}
	return formatMoney(converted, currency)
}

// ledgerMoney formats an amount in the currency invoices are issued in
func ledgerMoney(a *app.App, amount decimal.Decimal) string {
	return formatMoney(amount, a.ReportService.LedgerCurrency())
}

// clientName returns the invoice's client name when loaded
func clientName(inv *domain.Invoice) string {
	if inv.Client != nil {
		return inv.Client.Name
	}
	return "Unknown"
}
