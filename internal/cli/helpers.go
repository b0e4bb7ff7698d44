package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// resolveClient resolves a client by ID, name or the ID prefix shown by
// clients list
func resolveClient(ctx context.Context, idOrName string) (*domain.Client, error) {
	// Try to parse as ID first
	if id, err := uuid.Parse(idOrName); err == nil {
		client, err := appInstance.ClientRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if client.StudioID != appInstance.StudioID {
			return nil, fmt.Errorf("client with ID %s not found", id)
		}
		return client, nil
	}

	// Try to find by name
	client, err := appInstance.ClientRepo.GetByName(ctx, appInstance.StudioID, idOrName)
	if !errors.Is(err, repository.ErrNotFound) {
		return client, err
	}

	clients, err := appInstance.ClientRepo.List(ctx, appInstance.StudioID, true)
	if err != nil {
		return nil, err
	}
	return matchClientPrefix(clients, idOrName)
}

// matchClientPrefix finds the one client whose ID starts with prefix
func matchClientPrefix(clients []*domain.Client, prefix string) (*domain.Client, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if len(prefix) < 4 {
		return nil, fmt.Errorf("client '%s' not found", prefix)
	}

	var found *domain.Client
	for _, c := range clients {
		if !strings.HasPrefix(c.ID.String(), prefix) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("client id prefix '%s' is ambiguous", prefix)
		}
		found = c
	}
	if found == nil {
		return nil, fmt.Errorf("client '%s' not found", prefix)
	}
	return found, nil
}

// resolveInvoice resolves an invoice by number or ID
func resolveInvoice(ctx context.Context, ref string) (*domain.Invoice, error) {
	invoice, err := appInstance.InvoiceService.FindInvoice(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("invoice '%s' not found", ref)
	}
	return invoice, err
}

// parseDate parses a date string in various formats
func parseDate(s string) (time.Time, error) {
	today := domain.CivilDate(appInstance.Now())
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	default:
		t, err := domain.ParseDate(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("expected format: YYYY-MM-DD, 'today', 'yesterday' or 'tomorrow'")
		}
		return t, nil
	}
}

// parseMoney parses a non-negative amount such as "1250" or "99.90"
func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount cannot be negative: %s", s)
	}
	return d, nil
}

// parseTaxRate accepts a fraction ("0.2") or a percentage ("20%")
func parseTaxRate(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid tax rate %q", s)
	}
	if percent {
		d = d.Shift(-2)
	}
	return d, nil
}

// todayFlag reads --today, falling back to the app clock
func todayFlag(cmd *cobra.Command) (time.Time, error) {
	s, _ := cmd.Flags().GetString("today")
	if s == "" {
		return domain.CivilDate(appInstance.Now()), nil
	}
	return parseDate(s)
}

// ledgerAmount formats an amount in the currency invoices are issued in
func ledgerAmount(d decimal.Decimal) string {
	return d.StringFixed(2) + " " + appInstance.ReportService.LedgerCurrency()
}

// displayer converts ledger amounts into the currency chosen for a report.
type displayer struct {
	currency string
}

func newDisplayer(cmd *cobra.Command) (*displayer, error) {
	currency, _ := cmd.Flags().GetString("currency")
	// Converting zero validates the currency once
	_, target, err := appInstance.ReportService.Convert(decimal.Zero, currency)
	if err != nil {
		return nil, err
	}
	return &displayer{currency: target}, nil
}

func (d *displayer) amount(v decimal.Decimal) string {
	converted, _, err := appInstance.ReportService.Convert(v, d.currency)
	if err != nil {
		return "n/a"
	}
	return converted.StringFixed(2) + " " + d.currency
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func clientName(inv *domain.Invoice) string {
	if inv.Client != nil {
		return inv.Client.Name
	}
	return inv.ClientID.String()[:8]
}
