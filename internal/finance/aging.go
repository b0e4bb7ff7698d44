// Package finance derives receivables and revenue figures from invoice
// records. Every function here is pure: the same records and reference date
// always give the same result.
package finance

import (
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AgingBucket string

const (
	AgingCurrent AgingBucket = "current"
	Aging31To60  AgingBucket = "days31_60"
	Aging61To90  AgingBucket = "days61_90"
	Aging90Plus  AgingBucket = "days90plus"
)

// AgingBuckets lists buckets from youngest to oldest.
var AgingBuckets = []AgingBucket{AgingCurrent, Aging31To60, Aging61To90, Aging90Plus}

// Label is the human name of the bucket.
func (b AgingBucket) Label() string {
	switch b {
	case AgingCurrent:
		return "0-30 days"
	case Aging31To60:
		return "31-60 days"
	case Aging61To90:
		return "61-90 days"
	case Aging90Plus:
		return "90+ days"
	}
	return string(b)
}

// BucketFor places a days-overdue figure. Bounds are inclusive on the younger
// bucket: 30 is current, 31 is days31_60.
func BucketFor(daysOverdue int) AgingBucket {
	switch {
	case daysOverdue <= 30:
		return AgingCurrent
	case daysOverdue <= 60:
		return Aging31To60
	case daysOverdue <= 90:
		return Aging61To90
	default:
		return Aging90Plus
	}
}

// DaysOverdue counts whole days past the due date, never negative.
func DaysOverdue(inv *domain.Invoice, today time.Time) int {
	days := domain.DaysBetween(inv.DueDate, today)
	if days < 0 {
		return 0
	}
	return days
}

type BucketTotal struct {
	Amount     decimal.Decimal
	Count      int
	InvoiceIDs []uuid.UUID
}

// AgingReport partitions outstanding invoices by how overdue they are.
type AgingReport struct {
	AsOf    time.Time
	Buckets map[AgingBucket]*BucketTotal
	Total   decimal.Decimal
}

// Bucket returns the totals for b, never nil.
func (r AgingReport) Bucket(b AgingBucket) BucketTotal {
	if bt, ok := r.Buckets[b]; ok && bt != nil {
		return *bt
	}
	return BucketTotal{Amount: decimal.Zero}
}

// Count is the number of invoices across all buckets.
func (r AgingReport) Count() int {
	n := 0
	for _, bt := range r.Buckets {
		n += bt.Count
	}
	return n
}

// Age buckets every outstanding invoice by days past due as of today.
func Age(invoices []*domain.Invoice, today time.Time) AgingReport {
	report := AgingReport{
		AsOf:    domain.CivilDate(today),
		Buckets: make(map[AgingBucket]*BucketTotal, len(AgingBuckets)),
		Total:   decimal.Zero,
	}
	for _, b := range AgingBuckets {
		report.Buckets[b] = &BucketTotal{Amount: decimal.Zero, InvoiceIDs: make([]uuid.UUID, 0)}
	}

	for _, inv := range invoices {
		if !inv.IsOutstanding() {
			continue
		}
		outstanding := inv.Outstanding()
		bt := report.Buckets[BucketFor(DaysOverdue(inv, today))]
		bt.Amount = bt.Amount.Add(outstanding)
		bt.Count++
		bt.InvoiceIDs = append(bt.InvoiceIDs, inv.ID)
		report.Total = report.Total.Add(outstanding)
	}

	return report
}
