package finance

import (
	"time"

	"github.com/andy/studioledger/internal/domain"
	"github.com/shopspring/decimal"
)

type MonthRevenue struct {
	Month  time.Month
	Amount decimal.Decimal
	Count  int
}

// MonthlyRevenue sums paid invoice totals by issue month for year. The series
// runs from January to today's month for the current year, covers all twelve
// months for past years and is empty for future years. Months without
// revenue are included as zero.
func MonthlyRevenue(invoices []*domain.Invoice, year int, today time.Time) []MonthRevenue {
	last := time.December
	switch {
	case year > today.Year():
		return []MonthRevenue{}
	case year == today.Year():
		last = today.Month()
	}

	series := make([]MonthRevenue, int(last))
	for m := time.January; m <= last; m++ {
		series[m-1] = MonthRevenue{Month: m, Amount: decimal.Zero}
	}

	for _, inv := range invoices {
		if inv.Status != domain.InvoiceStatusPaid || inv.IssueDate.Year() != year {
			continue
		}
		m := inv.IssueDate.Month()
		if m > last {
			continue
		}
		series[m-1].Amount = series[m-1].Amount.Add(inv.TotalAmount)
		series[m-1].Count++
	}

	return series
}

// TaxSummary splits one month of paid billing into tax and net.
type TaxSummary struct {
	Year         int
	Month        time.Month
	GrossRevenue decimal.Decimal
	TVACollected decimal.Decimal
	NetRevenue   decimal.Decimal
	Count        int
}

// Period renders the summarized month as YYYY-MM.
func (t TaxSummary) Period() string {
	return domain.Date(t.Year, t.Month, 1).Format("2006-01")
}

// SummarizeTax totals paid invoices issued in the given month.
func SummarizeTax(invoices []*domain.Invoice, month time.Month, year int) TaxSummary {
	s := TaxSummary{
		Year:         year,
		Month:        month,
		GrossRevenue: decimal.Zero,
		TVACollected: decimal.Zero,
	}
	for _, inv := range invoices {
		if inv.Status != domain.InvoiceStatusPaid {
			continue
		}
		if inv.IssueDate.Year() != year || inv.IssueDate.Month() != month {
			continue
		}
		s.GrossRevenue = s.GrossRevenue.Add(inv.TotalAmount)
		s.TVACollected = s.TVACollected.Add(inv.TaxAmount)
		s.Count++
	}
	s.NetRevenue = s.GrossRevenue.Sub(s.TVACollected)
	return s
}

// TotalRevenue sums paid invoice totals issued in [start, end). A nil end
// leaves the range open.
func TotalRevenue(invoices []*domain.Invoice, start time.Time, end *time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invoices {
		if inv.Status == domain.InvoiceStatusPaid && inRange(inv.IssueDate, start, end) {
			total = total.Add(inv.TotalAmount)
		}
	}
	return total
}

func inRange(d, start time.Time, end *time.Time) bool {
	d = domain.CivilDate(d)
	if d.Before(domain.CivilDate(start)) {
		return false
	}
	return end == nil || d.Before(domain.CivilDate(*end))
}

type BreakdownLine struct {
	Label   string
	Amount  decimal.Decimal
	Percent decimal.Decimal
}

// Breakdown shows where billed value went: what the studio kept, what it
// collected on behalf of the tax authority and what it gave away as discount.
// The three lines add up to Basis.
type Breakdown struct {
	Basis     decimal.Decimal
	Net       BreakdownLine
	Tax       BreakdownLine
	Discounts BreakdownLine
}

// Lines returns the breakdown rows in display order.
func (b Breakdown) Lines() []BreakdownLine {
	return []BreakdownLine{b.Net, b.Tax, b.Discounts}
}

// RevenueBreakdown splits paid billing issued in [start, end) into net
// revenue, tax and discounts. Percentages are of the pre-discount billed
// amount and rounded to one decimal place.
func RevenueBreakdown(invoices []*domain.Invoice, start time.Time, end *time.Time) Breakdown {
	net, tax, discount := decimal.Zero, decimal.Zero, decimal.Zero
	for _, inv := range invoices {
		if inv.Status != domain.InvoiceStatusPaid || !inRange(inv.IssueDate, start, end) {
			continue
		}
		net = net.Add(inv.Subtotal.Sub(inv.DiscountAmount))
		tax = tax.Add(inv.TaxAmount)
		discount = discount.Add(inv.DiscountAmount)
	}

	basis := net.Add(tax).Add(discount)
	share := func(v decimal.Decimal) decimal.Decimal {
		if basis.IsZero() {
			return decimal.Zero
		}
		return v.Mul(decimal.NewFromInt(100)).Div(basis).Round(1)
	}

	return Breakdown{
		Basis:     basis,
		Net:       BreakdownLine{Label: "Net revenue", Amount: net, Percent: share(net)},
		Tax:       BreakdownLine{Label: "Tax collected", Amount: tax, Percent: share(tax)},
		Discounts: BreakdownLine{Label: "Discounts", Amount: discount, Percent: share(discount)},
	}
}
