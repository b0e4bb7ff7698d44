package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andy/studioledger/internal/app"
	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/finance"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

// ReportsModel displays revenue by month, the monthly tax summary and the
// yearly billing breakdown
type ReportsModel struct {
	app         *app.App
	today       time.Time
	revenueYear int
	taxMonth    time.Month
	taxYear     int

	monthly   []finance.MonthRevenue
	yearTotal decimal.Decimal
	tax       finance.TaxSummary
	breakdown finance.Breakdown

	loading   bool
	err       error
	statusMsg string
}

type reportsDataMsg struct {
	monthly   []finance.MonthRevenue
	yearTotal decimal.Decimal
	tax       finance.TaxSummary
	breakdown finance.Breakdown
	err       error
}

type reportExportedMsg struct {
	path string
	err  error
}

// NewReportsModel creates a new reports screen model
func NewReportsModel(a *app.App) tea.Model {
	today := domain.CivilDate(a.Now())
	return &ReportsModel{
		app:         a,
		today:       today,
		revenueYear: today.Year(),
		taxMonth:    today.Month(),
		taxYear:     today.Year(),
		loading:     true,
	}
}

func (m *ReportsModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *ReportsModel) loadData() tea.Cmd {
	a := m.app
	today := m.today
	year := m.revenueYear
	taxMonth, taxYear := m.taxMonth, m.taxYear

	return func() tea.Msg {
		ctx := context.Background()
		var msg reportsDataMsg
		var err error

		if msg.monthly, err = a.ReportService.MonthlyRevenue(ctx, year, today); err != nil {
			msg.err = err
			return msg
		}

		start := domain.Date(year, time.January, 1)
		end := start.AddDate(1, 0, 0)
		if msg.yearTotal, err = a.ReportService.TotalRevenue(ctx, start, &end); err != nil {
			msg.err = err
			return msg
		}
		if msg.breakdown, err = a.ReportService.Breakdown(ctx, start, &end); err != nil {
			msg.err = err
			return msg
		}
		if msg.tax, err = a.ReportService.TaxSummary(ctx, taxMonth, taxYear); err != nil {
			msg.err = err
			return msg
		}

		return msg
	}
}

// exportCSV writes the selected month's report into the export directory
func (m *ReportsModel) exportCSV() tea.Cmd {
	a := m.app
	month, year, today := m.taxMonth, m.taxYear, m.today
	return func() tea.Msg {
		path := filepath.Join(a.Config.Export.Dir, fmt.Sprintf("report-%d-%02d.csv", year, month))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return reportExportedMsg{err: err}
		}
		f, err := os.Create(path)
		if err != nil {
			return reportExportedMsg{err: err}
		}
		if err := a.ReportService.ExportCSV(context.Background(), f, month, year, today); err != nil {
			f.Close()
			return reportExportedMsg{err: err}
		}
		if err := f.Close(); err != nil {
			return reportExportedMsg{err: err}
		}
		return reportExportedMsg{path: path}
	}
}

func (m *ReportsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		m.today = domain.CivilDate(m.app.Now())
		return m, m.loadData()

	case reportsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.monthly = msg.monthly
			m.yearTotal = msg.yearTotal
			m.tax = msg.tax
			m.breakdown = msg.breakdown
		}
		return m, nil

	case reportExportedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Report written to %s", msg.path)
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		m.statusMsg = ""

		switch {
		case key.Matches(msg, DefaultKeyMap.PrevYear):
			m.revenueYear--
			m.loading = true
			return m, m.loadData()

		case key.Matches(msg, DefaultKeyMap.NextYear):
			if m.revenueYear < m.today.Year() {
				m.revenueYear++
				m.loading = true
				return m, m.loadData()
			}

		case key.Matches(msg, DefaultKeyMap.PrevMonth), key.Matches(msg, DefaultKeyMap.Left):
			first := domain.Date(m.taxYear, m.taxMonth, 1).AddDate(0, -1, 0)
			m.taxMonth, m.taxYear = first.Month(), first.Year()
			m.loading = true
			return m, m.loadData()

		case key.Matches(msg, DefaultKeyMap.NextMonth), key.Matches(msg, DefaultKeyMap.Right):
			next := domain.Date(m.taxYear, m.taxMonth, 1).AddDate(0, 1, 0)
			if !next.After(m.today) {
				m.taxMonth, m.taxYear = next.Month(), next.Year()
				m.loading = true
				return m, m.loadData()
			}

		case key.Matches(msg, DefaultKeyMap.Edit):
			return m, m.exportCSV()
		}
	}

	return m, nil
}

func (m *ReportsModel) View() string {
	if m.loading {
		return titleStyle.Render("Reports") + "\n\n  Loading..."
	}

	if m.err != nil {
		return titleStyle.Render("Reports") + "\n\n" +
			errorStyle.Render(fmt.Sprintf("  Error: %v", m.err))
	}

	s := titleStyle.Render("Reports") + "\n\n"
	if m.statusMsg != "" {
		s += successStyle.Render("  "+m.statusMsg) + "\n\n"
	}

	s += m.renderMonthlyRevenue() + "\n"
	s += m.renderTax() + "\n"
	s += m.renderBreakdown()

	s += "\n" + helpStyle.Render("  [/]: prev/next year  </> or h/l: prev/next tax month  e: export month to CSV")

	return s
}

func (m *ReportsModel) renderMonthlyRevenue() string {
	s := sectionStyle.Render(fmt.Sprintf("  Paid Revenue by Month (%d)", m.revenueYear)) + "\n"

	if len(m.monthly) == 0 {
		return s + subtitleStyle.Render("    No revenue recorded") + "\n"
	}

	peak := decimal.Zero
	for _, mr := range m.monthly {
		if mr.Amount.GreaterThan(peak) {
			peak = mr.Amount
		}
	}

	for _, mr := range m.monthly {
		s += fmt.Sprintf("    %-4s %s %3d  %s\n",
			mr.Month.String()[:3],
			barStyle.Render(fmt.Sprintf("%-25s", bar(mr.Amount, peak, 25))),
			mr.Count,
			displayMoney(m.app, mr.Amount),
		)
	}
	s += "    " + sectionStyle.Render(fmt.Sprintf("%-4s %-25s %3s  %s", "Year", "", "", displayMoney(m.app, m.yearTotal))) + "\n"

	return s
}

func (m *ReportsModel) renderTax() string {
	t := m.tax
	s := sectionStyle.Render(fmt.Sprintf("  Tax Summary %s", t.Period())) + "\n"
	if t.Count == 0 {
		return s + subtitleStyle.Render("    No paid invoices this month") + "\n"
	}

	s += fmt.Sprintf("    Gross revenue:  %s\n", displayMoney(m.app, t.GrossRevenue))
	s += fmt.Sprintf("    TVA collected:  %s\n", displayMoney(m.app, t.TVACollected))
	s += fmt.Sprintf("    Net revenue:    %s\n", displayMoney(m.app, t.NetRevenue))
	s += subtitleStyle.Render(fmt.Sprintf("    %d paid invoice(s)", t.Count)) + "\n"
	return s
}

func (m *ReportsModel) renderBreakdown() string {
	s := sectionStyle.Render(fmt.Sprintf("  Billing Breakdown (%d)", m.revenueYear)) + "\n"
	if m.breakdown.Basis.IsZero() {
		return s + subtitleStyle.Render("    Nothing billed") + "\n"
	}

	for _, line := range m.breakdown.Lines() {
		s += fmt.Sprintf("    %-14s %6s%%  %s\n", line.Label+":", line.Percent.StringFixed(1), displayMoney(m.app, line.Amount))
	}
	return s
}
