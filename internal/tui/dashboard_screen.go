package tui

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/andy/studioledger/internal/app"
	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/finance"
	"github.com/andy/studioledger/internal/repository"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

// DashboardModel represents the dashboard home screen
type DashboardModel struct {
	app *app.App

	// Data
	today          time.Time
	outstanding    decimal.Decimal
	monthRevenue   decimal.Decimal
	aging          finance.AgingReport
	reconciliation finance.ReconciliationReport
	pastDue        []*domain.Invoice

	loading bool
	err     error
}

type dashboardDataMsg struct {
	today          time.Time
	outstanding    decimal.Decimal
	monthRevenue   decimal.Decimal
	aging          finance.AgingReport
	reconciliation finance.ReconciliationReport
	pastDue        []*domain.Invoice
	err            error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(a *app.App) tea.Model {
	return &DashboardModel{
		app:     a,
		loading: true,
	}
}

func (m *DashboardModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *DashboardModel) loadData() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx := context.Background()
		today := domain.CivilDate(a.Now())
		msg := dashboardDataMsg{today: today}

		var err error
		if msg.outstanding, err = a.ReportService.OutstandingTotal(ctx); err != nil {
			msg.err = fmt.Errorf("outstanding: %w", err)
			return msg
		}
		if msg.aging, err = a.ReportService.Aging(ctx, today); err != nil {
			msg.err = fmt.Errorf("aging: %w", err)
			return msg
		}
		if msg.reconciliation, err = a.ReportService.Reconciliation(ctx); err != nil {
			msg.err = fmt.Errorf("reconciliation: %w", err)
			return msg
		}

		monthStart := domain.Date(today.Year(), today.Month(), 1)
		monthEnd := monthStart.AddDate(0, 1, 0)
		if msg.monthRevenue, err = a.ReportService.TotalRevenue(ctx, monthStart, &monthEnd); err != nil {
			msg.err = fmt.Errorf("revenue: %w", err)
			return msg
		}

		open, err := a.InvoiceService.ListInvoices(ctx, repository.InvoiceFilter{
			Statuses: []domain.InvoiceStatus{domain.InvoiceStatusSent, domain.InvoiceStatusOverdue},
		})
		if err != nil {
			msg.err = fmt.Errorf("open invoices: %w", err)
			return msg
		}
		for _, inv := range open {
			if inv.IsPastDue(today) {
				msg.pastDue = append(msg.pastDue, inv)
			}
		}
		// Oldest due date first
		sort.Slice(msg.pastDue, func(i, j int) bool {
			return msg.pastDue[i].DueDate.Before(msg.pastDue[j].DueDate)
		})

		return msg
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.today = msg.today
		m.outstanding = msg.outstanding
		m.monthRevenue = msg.monthRevenue
		m.aging = msg.aging
		m.reconciliation = msg.reconciliation
		m.pastDue = msg.pastDue
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *DashboardModel) View() string {
	if m.loading {
		return "Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	var s string

	s += fmt.Sprintf("  Outstanding:  %-22s  Paid this month:  %s\n",
		displayMoney(m.app, m.outstanding),
		displayMoney(m.app, m.monthRevenue),
	)
	s += subtitleStyle.Render(fmt.Sprintf("  As of %s", m.today.Format("Mon Jan 2, 2006"))) + "\n\n"

	s += m.renderAging() + "\n"
	s += m.renderReconciliation() + "\n"
	s += m.renderPastDue()

	return s
}

func (m *DashboardModel) renderAging() string {
	s := sectionStyle.Render("  Aging") + "\n"
	if m.aging.Count() == 0 {
		return s + subtitleStyle.Render("  Nothing outstanding") + "\n"
	}

	for i, b := range finance.AgingBuckets {
		bt := m.aging.Bucket(b)
		style := bucketStyles[i%len(bucketStyles)]
		s += fmt.Sprintf("  %-12s %3d  %-20s %s\n",
			b.Label(),
			bt.Count,
			style.Render(fmt.Sprintf("%-20s", bar(bt.Amount, m.aging.Total, 20))),
			displayMoney(m.app, bt.Amount),
		)
	}
	return s
}

func (m *DashboardModel) renderReconciliation() string {
	s := sectionStyle.Render("  Reconciliation") + "\n"
	r := m.reconciliation
	if r.Qualifying == 0 {
		return s + subtitleStyle.Render("  No sent invoices yet") + "\n"
	}

	for _, c := range finance.ReconciliationCategories {
		ct := r.Category(c)
		s += fmt.Sprintf("  %-12s %3d  %3d%%  %s\n", c, ct.Count, ct.Percent, displayMoney(m.app, ct.Amount))
	}
	if r.Unclassified > 0 {
		s += errorStyle.Render(fmt.Sprintf("  %d invoice(s) fit no category", r.Unclassified)) + "\n"
	}
	return s
}

func (m *DashboardModel) renderPastDue() string {
	header := sectionStyle.Render("  Past Due") + "\n"
	if len(m.pastDue) == 0 {
		return header + successStyle.Render("  All invoices are within terms") + "\n"
	}

	s := header
	limit := 8
	if len(m.pastDue) < limit {
		limit = len(m.pastDue)
	}

	for _, inv := range m.pastDue[:limit] {
		days := finance.DaysOverdue(inv, m.today)
		s += fmt.Sprintf("  %-14s %-20s %4dd  %s\n",
			inv.InvoiceNumber,
			truncateStr(clientName(inv), 20),
			days,
			ledgerMoney(m.app, inv.Outstanding()),
		)
	}
	if extra := len(m.pastDue) - limit; extra > 0 {
		s += subtitleStyle.Render(fmt.Sprintf("  ...and %d more", extra)) + "\n"
	}

	return s
}
