package repository

import (
	"fmt"
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// timeLayout is the RFC3339 format for storing times in SQLite
const timeLayout = time.RFC3339Nano

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// parseTime parses a time string in RFC3339 format
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// formatTime renders t in UTC for storage
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// formatMoney stores amounts with exactly two decimals so that text
// comparison in guarded updates matches numeric equality.
func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return d, nil
}

func parseUUID(field, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return id, nil
}
