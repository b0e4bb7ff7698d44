package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/studioledger/internal/app"
	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/repository"
	"github.com/andy/studioledger/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type invoiceViewMode int

const (
	invoiceViewList       invoiceViewMode = iota
	invoiceViewDetail                     // Viewing a single invoice
	invoiceViewConfirm                    // Waiting for y/n on a destructive action
	invoiceViewPayment                    // Recording a payment
	invoiceViewNewClient                  // New draft, step 1: pick client
	invoiceViewNewAmounts                 // New draft, step 2: amounts
)

// payment form field indices
const (
	payFieldAmount = iota
	payFieldMethod
	payFieldReference
	payFieldCount
)

// draft form field indices
const (
	draftFieldSubtotal = iota
	draftFieldDiscount
	draftFieldTaxRate
	draftFieldNotes
	draftFieldCount
)

// statusFilters is the cycle behind the 't' key; nil shows every status.
var statusFilters = []*domain.InvoiceStatus{
	nil,
	statusPtr(domain.InvoiceStatusDraft),
	statusPtr(domain.InvoiceStatusSent),
	statusPtr(domain.InvoiceStatusOverdue),
	statusPtr(domain.InvoiceStatusPaid),
	statusPtr(domain.InvoiceStatusCancelled),
}

func statusPtr(s domain.InvoiceStatus) *domain.InvoiceStatus { return &s }

// InvoicesModel lists invoices and drives their lifecycle
type InvoicesModel struct {
	app       *app.App
	mode      invoiceViewMode
	invoices  []*domain.Invoice
	cursor    int
	filterIdx int
	selected  *domain.Invoice
	loading   bool
	err       error
	statusMsg string

	// Pending destructive action
	confirmPrompt string
	confirmAction tea.Cmd

	// Shared by the payment and draft forms
	fields     []textinput.Model
	fieldFocus int
	formReturn invoiceViewMode // where esc leaves the payment form

	// New draft state
	draftClients []*domain.Client
	draftCursor  int
	draftClient  *domain.Client
}

// IsCapturingInput returns true while a form owns the keyboard
func (m *InvoicesModel) IsCapturingInput() bool {
	return m.mode == invoiceViewPayment || m.mode == invoiceViewNewAmounts
}

type invoicesDataMsg struct {
	invoices []*domain.Invoice
	err      error
}

type invoiceDetailMsg struct {
	invoice *domain.Invoice
	err     error
}

// invoiceActionMsg reports the outcome of a lifecycle action
type invoiceActionMsg struct {
	invoice *domain.Invoice // nil when the invoice no longer exists
	status  string
	err     error
}

type draftClientsMsg struct {
	clients []*domain.Client
	err     error
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App) tea.Model {
	return &InvoicesModel{
		app:     a,
		mode:    invoiceViewList,
		loading: true,
	}
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	a := m.app
	var filter repository.InvoiceFilter
	if st := statusFilters[m.filterIdx]; st != nil {
		filter.Statuses = []domain.InvoiceStatus{*st}
	}
	return func() tea.Msg {
		invoices, err := a.InvoiceService.ListInvoices(context.Background(), filter)
		return invoicesDataMsg{invoices: invoices, err: err}
	}
}

func (m *InvoicesModel) loadDetail(id uuid.UUID) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		invoice, err := a.InvoiceService.GetInvoice(context.Background(), id)
		return invoiceDetailMsg{invoice: invoice, err: err}
	}
}

func (m *InvoicesModel) loadDraftClients() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		clients, err := a.ClientRepo.List(context.Background(), a.StudioID, false)
		if err != nil {
			return draftClientsMsg{err: err}
		}
		return draftClientsMsg{clients: clients}
	}
}

// act wraps a lifecycle call so its result lands as an invoiceActionMsg
func (m *InvoicesModel) act(inv *domain.Invoice, done string, fn func(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)) tea.Cmd {
	return func() tea.Msg {
		updated, err := fn(context.Background(), inv.ID)
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{invoice: updated, status: fmt.Sprintf("%s %s", updated.InvoiceNumber, done)}
	}
}

func (m *InvoicesModel) markPaid(inv *domain.Invoice) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		updated, payment, err := a.InvoiceService.MarkPaid(context.Background(), inv.ID, nil, domain.PaymentMethodBankTransfer)
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		status := fmt.Sprintf("%s marked paid", updated.InvoiceNumber)
		if payment != nil {
			status += fmt.Sprintf(" (%s settled)", ledgerMoney(a, payment.Amount))
		}
		return invoiceActionMsg{invoice: updated, status: status}
	}
}

func (m *InvoicesModel) deleteInvoice(inv *domain.Invoice) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		if err := a.InvoiceService.Delete(context.Background(), inv.ID); err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{status: fmt.Sprintf("%s deleted", inv.InvoiceNumber)}
	}
}

func (m *InvoicesModel) exportPDF(inv *domain.Invoice) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		path, err := a.ReportService.ExportInvoicePDF(context.Background(), inv.ID)
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{invoice: inv, status: fmt.Sprintf("PDF written to %s", path)}
	}
}

func (m *InvoicesModel) checkOverdue() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		moved, err := a.InvoiceService.CheckOverdue(context.Background(), domain.CivilDate(a.Now()))
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{status: fmt.Sprintf("%d invoice(s) marked overdue", len(moved))}
	}
}

func (m *InvoicesModel) recordPayment() tea.Cmd {
	a := m.app
	inv := m.selected
	amountStr := m.fields[payFieldAmount].Value()
	methodStr := m.fields[payFieldMethod].Value()
	reference := strings.TrimSpace(m.fields[payFieldReference].Value())

	return func() tea.Msg {
		amount, err := decimal.NewFromString(strings.TrimSpace(amountStr))
		if err != nil {
			return invoiceActionMsg{err: fmt.Errorf("invalid amount %q", amountStr)}
		}
		method, err := domain.ParsePaymentMethod(methodStr)
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		updated, payment, err := a.LedgerService.RecordPayment(context.Background(), inv.ID, domain.PaymentRequest{
			Amount:    amount,
			Method:    method,
			Reference: reference,
		})
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{
			invoice: updated,
			status:  fmt.Sprintf("Recorded %s on %s", ledgerMoney(a, payment.Amount), updated.InvoiceNumber),
		}
	}
}

func (m *InvoicesModel) createDraft() tea.Cmd {
	a := m.app
	client := m.draftClient
	subtotalStr := m.fields[draftFieldSubtotal].Value()
	discountStr := m.fields[draftFieldDiscount].Value()
	taxStr := m.fields[draftFieldTaxRate].Value()
	notes := strings.TrimSpace(m.fields[draftFieldNotes].Value())

	return func() tea.Msg {
		subtotal, err := decimal.NewFromString(strings.TrimSpace(subtotalStr))
		if err != nil {
			return invoiceActionMsg{err: fmt.Errorf("invalid amount %q", subtotalStr)}
		}
		discount := decimal.Zero
		if s := strings.TrimSpace(discountStr); s != "" {
			if discount, err = decimal.NewFromString(s); err != nil {
				return invoiceActionMsg{err: fmt.Errorf("invalid discount %q", discountStr)}
			}
		}
		params := service.NewInvoiceParams{
			ClientID: client.ID,
			Subtotal: subtotal,
			Discount: discount,
			Notes:    notes,
		}
		if s := strings.TrimSpace(taxStr); s != "" {
			percent, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
			if err != nil {
				return invoiceActionMsg{err: fmt.Errorf("invalid tax rate %q", taxStr)}
			}
			rate := percent.Shift(-2)
			params.TaxRate = &rate
		}

		inv, err := a.InvoiceService.CreateDraft(context.Background(), params)
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		inv.Client = client
		return invoiceActionMsg{invoice: inv, status: fmt.Sprintf("Draft %s created", inv.InvoiceNumber)}
	}
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadInvoices()

	case invoicesDataMsg:
		m.loading = false
		m.err = msg.err
		m.invoices = msg.invoices
		if m.cursor >= len(m.invoices) {
			m.cursor = max(0, len(m.invoices)-1)
		}
		return m, nil

	case invoiceDetailMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.selected = msg.invoice
		m.mode = invoiceViewDetail
		return m, nil

	case draftClientsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if len(msg.clients) == 0 {
			m.err = fmt.Errorf("no active clients; add one first")
			return m, nil
		}
		m.draftClients = msg.clients
		m.draftCursor = 0
		m.mode = invoiceViewNewClient
		return m, nil

	case invoiceActionMsg:
		m.loading = false
		if msg.err != nil {
			// Forms stay open so the input can be corrected
			m.err = msg.err
			if m.mode == invoiceViewConfirm {
				m.mode = m.returnMode()
			}
			return m, nil
		}
		m.err = nil
		m.statusMsg = msg.status
		sameInvoice := msg.invoice != nil && m.selected != nil && msg.invoice.ID == m.selected.ID
		if sameInvoice || (msg.invoice != nil && m.mode == invoiceViewNewAmounts) {
			m.loading = true
			return m, tea.Batch(m.loadDetail(msg.invoice.ID), m.loadInvoices())
		}
		m.mode = invoiceViewList
		m.selected = nil
		return m, m.loadInvoices()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch m.mode {
		case invoiceViewList:
			return m.updateList(msg)
		case invoiceViewDetail:
			return m.updateDetail(msg)
		case invoiceViewConfirm:
			return m.updateConfirm(msg)
		case invoiceViewPayment:
			return m.updateForm(msg, payFieldCount, m.recordPayment)
		case invoiceViewNewClient:
			return m.updateNewClient(msg)
		case invoiceViewNewAmounts:
			return m.updateForm(msg, draftFieldCount, m.createDraft)
		}
	}

	// Forward non-key messages to the focused input (cursor blink, etc.)
	if m.IsCapturingInput() {
		var cmd tea.Cmd
		m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
		return m, cmd
	}

	return m, nil
}

// current returns the invoice actions apply to
func (m *InvoicesModel) current() *domain.Invoice {
	if m.mode == invoiceViewDetail {
		return m.selected
	}
	if m.cursor < len(m.invoices) {
		return m.invoices[m.cursor]
	}
	return nil
}

func (m *InvoicesModel) returnMode() invoiceViewMode {
	if m.selected != nil {
		return invoiceViewDetail
	}
	return invoiceViewList
}

// updateActions handles the lifecycle keys shared by list and detail views
func (m *InvoicesModel) updateActions(msg tea.KeyMsg) (tea.Cmd, bool) {
	inv := m.current()
	if inv == nil {
		return nil, false
	}
	svc := m.app.InvoiceService

	switch {
	case key.Matches(msg, DefaultKeyMap.Send):
		return m.act(inv, "sent", svc.MarkSent), true
	case key.Matches(msg, DefaultKeyMap.Overdue):
		return m.act(inv, "marked overdue", svc.MarkOverdue), true
	case key.Matches(msg, DefaultKeyMap.Pay):
		m.confirm(fmt.Sprintf("Settle the remaining %s on %s?", ledgerMoney(m.app, inv.Outstanding()), inv.InvoiceNumber), m.markPaid(inv))
		return nil, true
	case key.Matches(msg, DefaultKeyMap.Cancel):
		m.confirm(fmt.Sprintf("Cancel %s? This cannot be undone.", inv.InvoiceNumber), m.act(inv, "cancelled", svc.Cancel))
		return nil, true
	case key.Matches(msg, DefaultKeyMap.Delete):
		m.confirm(fmt.Sprintf("Delete draft %s?", inv.InvoiceNumber), m.deleteInvoice(inv))
		return nil, true
	case key.Matches(msg, DefaultKeyMap.Record):
		m.formReturn = m.mode
		m.selected = inv
		m.initPaymentForm(inv)
		m.mode = invoiceViewPayment
		return m.fields[m.fieldFocus].Focus(), true
	case key.Matches(msg, DefaultKeyMap.PDF):
		return m.exportPDF(inv), true
	}
	return nil, false
}

func (m *InvoicesModel) confirm(prompt string, action tea.Cmd) {
	m.confirmPrompt = prompt
	m.confirmAction = action
	m.mode = invoiceViewConfirm
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	if cmd, handled := m.updateActions(msg); handled {
		m.statusMsg = ""
		return m, cmd
	}

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		if len(m.invoices) > 0 {
			m.loading = true
			return m, m.loadDetail(m.invoices[m.cursor].ID)
		}
	case key.Matches(msg, DefaultKeyMap.New):
		m.loading = true
		m.statusMsg = ""
		return m, m.loadDraftClients()
	case msg.String() == "t":
		m.filterIdx = (m.filterIdx + 1) % len(statusFilters)
		m.cursor = 0
		m.loading = true
		return m, m.loadInvoices()
	case msg.String() == "c":
		m.loading = true
		return m, m.checkOverdue()
	}

	return m, nil
}

func (m *InvoicesModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, DefaultKeyMap.Back) {
		m.mode = invoiceViewList
		m.selected = nil
		m.statusMsg = ""
		m.err = nil
		return m, nil
	}
	if cmd, handled := m.updateActions(msg); handled {
		m.err = nil
		m.statusMsg = ""
		return m, cmd
	}
	return m, nil
}

func (m *InvoicesModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		action := m.confirmAction
		m.confirmAction = nil
		m.loading = true
		return m, action
	case "n", "N", "esc":
		m.confirmAction = nil
		m.mode = m.returnMode()
	}
	return m, nil
}

func (m *InvoicesModel) updateNewClient(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = invoiceViewList
		m.draftClients = nil
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.draftCursor > 0 {
			m.draftCursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.draftCursor < len(m.draftClients)-1 {
			m.draftCursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		if len(m.draftClients) > 0 {
			m.draftClient = m.draftClients[m.draftCursor]
			m.initDraftForm()
			m.mode = invoiceViewNewAmounts
			return m, m.fields[m.fieldFocus].Focus()
		}
	}
	return m, nil
}

// updateForm drives either text form; submit runs on enter in the last field or ctrl+s
func (m *InvoicesModel) updateForm(msg tea.KeyMsg, count int, submit func() tea.Cmd) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.err = nil
		switch {
		case m.mode == invoiceViewNewAmounts:
			m.mode = invoiceViewNewClient
		case m.formReturn == invoiceViewList:
			m.mode = invoiceViewList
			m.selected = nil
		default:
			m.mode = invoiceViewDetail
		}
		return m, nil
	case "tab", "down":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus + 1) % count
		return m, m.fields[m.fieldFocus].Focus()
	case "shift+tab", "up":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus - 1 + count) % count
		return m, m.fields[m.fieldFocus].Focus()
	case "enter":
		if m.fieldFocus == count-1 {
			return m, submit()
		}
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus++
		return m, m.fields[m.fieldFocus].Focus()
	case "ctrl+s":
		return m, submit()
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func newField(placeholder string, limit, width int) textinput.Model {
	f := textinput.New()
	f.Placeholder = placeholder
	f.CharLimit = limit
	f.Width = width
	return f
}

func (m *InvoicesModel) initPaymentForm(inv *domain.Invoice) {
	m.fields = make([]textinput.Model, payFieldCount)
	m.fields[payFieldAmount] = newField("0.00", 20, 20)
	m.fields[payFieldAmount].SetValue(inv.Outstanding().StringFixed(2))
	m.fields[payFieldMethod] = newField("card, bank_transfer, cash, check, other", 20, 40)
	m.fields[payFieldMethod].SetValue(string(domain.PaymentMethodBankTransfer))
	m.fields[payFieldReference] = newField("Bank or processor reference", 100, 40)
	m.fieldFocus = payFieldAmount
}

func (m *InvoicesModel) initDraftForm() {
	m.fields = make([]textinput.Model, draftFieldCount)
	m.fields[draftFieldSubtotal] = newField("0.00", 20, 20)
	m.fields[draftFieldDiscount] = newField("0.00", 20, 20)
	m.fields[draftFieldTaxRate] = newField("20", 10, 10)
	m.fields[draftFieldTaxRate].SetValue(m.app.Config.TaxRate().Shift(2).String())
	m.fields[draftFieldNotes] = newField("Optional notes", 200, 50)
	m.fieldFocus = draftFieldSubtotal
}

func (m *InvoicesModel) View() string {
	if m.loading {
		return "Loading..."
	}

	switch m.mode {
	case invoiceViewDetail:
		return m.viewDetail()
	case invoiceViewConfirm:
		return m.viewConfirm()
	case invoiceViewPayment:
		return m.viewPaymentForm()
	case invoiceViewNewClient:
		return m.viewNewClient()
	case invoiceViewNewAmounts:
		return m.viewDraftForm()
	default:
		return m.viewList()
	}
}

func (m *InvoicesModel) viewMessages() string {
	var s string
	if m.statusMsg != "" {
		s += successStyle.Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}
	return s
}

func (m *InvoicesModel) viewList() string {
	title := "Invoices"
	if st := statusFilters[m.filterIdx]; st != nil {
		title += subtitleStyle.Render(fmt.Sprintf("  (%s only)", *st))
	}
	s := titleStyle.Render(title) + "\n\n"
	s += m.viewMessages()

	if len(m.invoices) == 0 && m.err == nil {
		s += subtitleStyle.Render("  No invoices. Press 'n' to create a draft.") + "\n"
		s += "\n" + helpStyle.Render("  n: new draft  t: filter status")
		return s
	}

	s += subtitleStyle.Render(fmt.Sprintf(
		"  %-14s  %-20s  %-10s  %16s  %16s  %s",
		"Number", "Client", "Due", "Total", "Paid", "Status",
	)) + "\n"

	for i, inv := range m.invoices {
		line := fmt.Sprintf("  %-14s  %-20s  %-10s  %16s  %16s  %s",
			inv.InvoiceNumber,
			truncateStr(clientName(inv), 20),
			inv.DueDate.Format(domain.DateLayout),
			formatMoney(inv.TotalAmount, ""),
			formatMoney(inv.PaidAmount, ""),
			statusBadge(inv.Status),
		)

		if i == m.cursor {
			s += selectedStyle.Render(line) + "\n"
		} else {
			s += line + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: detail  n: new  s: send  r: record  p: paid  o: overdue  x: cancel  d: delete  f: pdf")
	s += "\n" + helpStyle.Render("  t: filter status  c: check overdue")

	return s
}

func (m *InvoicesModel) viewDetail() string {
	inv := m.selected
	if inv == nil {
		return "No invoice selected"
	}
	a := m.app

	s := titleStyle.Render(fmt.Sprintf("Invoice %s", inv.InvoiceNumber)) + "  " + statusBadge(inv.Status) + "\n\n"
	s += m.viewMessages()

	s += fmt.Sprintf("  Client:    %s\n", clientName(inv))
	s += fmt.Sprintf("  Issued:    %s\n", inv.IssueDate.Format("Jan 02, 2006"))
	s += fmt.Sprintf("  Due:       %s\n", inv.DueDate.Format("Jan 02, 2006"))
	if inv.Notes != "" {
		s += fmt.Sprintf("  Notes:     %s\n", truncateStr(inv.Notes, 60))
	}
	s += "\n"

	s += fmt.Sprintf("  Subtotal:  %20s\n", ledgerMoney(a, inv.Subtotal))
	if !inv.DiscountAmount.IsZero() {
		s += fmt.Sprintf("  Discount:  %20s\n", ledgerMoney(a, inv.DiscountAmount.Neg()))
	}
	s += fmt.Sprintf("  Tax (%s%%): %19s\n", inv.TaxRate.Shift(2).String(), ledgerMoney(a, inv.TaxAmount))
	s += sectionStyle.Render(fmt.Sprintf("  Total:     %20s", ledgerMoney(a, inv.TotalAmount))) + "\n"
	s += fmt.Sprintf("  Paid:      %20s\n", ledgerMoney(a, inv.PaidAmount))
	if inv.IsOutstanding() {
		s += lipgloss.NewStyle().Foreground(warningColor).Render(
			fmt.Sprintf("  Remaining: %20s", ledgerMoney(a, inv.Outstanding()))) + "\n"
	}
	s += "\n"

	if len(inv.Payments) == 0 {
		s += subtitleStyle.Render("  No payments recorded") + "\n"
	} else {
		s += subtitleStyle.Render(fmt.Sprintf("  %-17s  %-14s  %-20s  %16s", "Received", "Method", "Reference", "Amount")) + "\n"
		for _, p := range inv.Payments {
			s += fmt.Sprintf("  %-17s  %-14s  %-20s  %16s\n",
				p.CreatedAt.Local().Format("2006-01-02 15:04"),
				p.Method,
				truncateStr(p.Reference, 20),
				formatMoney(p.Amount, ""),
			)
		}
	}

	s += "\n" + helpStyle.Render("  s: send  r: record payment  p: mark paid  o: overdue  x: cancel  d: delete  f: pdf  esc: back")

	return s
}

func (m *InvoicesModel) viewConfirm() string {
	s := titleStyle.Render("Confirm") + "\n\n"
	s += lipgloss.NewStyle().Foreground(warningColor).Render("  "+m.confirmPrompt) + "\n\n"
	s += helpStyle.Render("  y: yes  n/esc: no")
	return s
}

func (m *InvoicesModel) viewForm(title string, labels []string, help string) string {
	s := titleStyle.Render(title) + "\n\n"

	for i, label := range labels {
		indicator := "  "
		labelStyle := subtitleStyle
		if i == m.fieldFocus {
			indicator = "> "
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), m.fields[i].View())
	}

	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")
	if help != "" {
		s += "\n" + subtitleStyle.Render("  "+help)
	}
	return s
}

func (m *InvoicesModel) viewPaymentForm() string {
	inv := m.selected
	title := fmt.Sprintf("Record Payment - %s", inv.InvoiceNumber)
	help := fmt.Sprintf("Remaining %s. Payments cannot exceed it.", ledgerMoney(m.app, inv.Outstanding()))
	return m.viewForm(title, []string{"Amount:", "Method:", "Reference:"}, help)
}

func (m *InvoicesModel) viewDraftForm() string {
	title := fmt.Sprintf("New Draft - %s", m.draftClient.Name)
	help := fmt.Sprintf("Amounts in %s. Numbers and due dates come from settings.", m.app.ReportService.LedgerCurrency())
	return m.viewForm(title, []string{"Amount (before tax):", "Discount:", "Tax rate (%):", "Notes:"}, help)
}

func (m *InvoicesModel) viewNewClient() string {
	s := titleStyle.Render("New Draft - Select Client") + "\n\n"

	for i, client := range m.draftClients {
		line := "  " + client.Name
		if i == m.draftCursor {
			s += lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Render("> "+client.Name) + "\n"
		} else {
			s += line + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: select  esc: cancel")
	return s
}
