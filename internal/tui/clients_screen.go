package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/studioledger/internal/app"
	"github.com/andy/studioledger/internal/domain"
	"github.com/andy/studioledger/internal/repository"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// clientMode represents the current screen mode
type clientMode int

const (
	clientModeList clientMode = iota
	clientModeNew
	clientModeEdit
)

// form field indices
const (
	fieldName = iota
	fieldEmail
	fieldNotes
	fieldCount
)

// ClientsModel displays a navigable list of clients with create/edit forms
type ClientsModel struct {
	app          *app.App
	clients      []*domain.Client
	cursor       int
	showArchived bool
	openStats    map[uuid.UUID]*clientOpenStats
	loading      bool
	err          error
	statusMsg    string

	// Form state
	mode          clientMode
	fields        []textinput.Model
	fieldFocus    int
	editingID     uuid.UUID // uuid.Nil for new client
	autoNewClient bool      // open new client form after data loads
}

// clientOpenStats summarizes a client's sent and overdue invoices
type clientOpenStats struct {
	count       int
	outstanding decimal.Decimal
}

type clientsDataMsg struct {
	clients   []*domain.Client
	openStats map[uuid.UUID]*clientOpenStats
	err       error
}

type clientSavedMsg struct {
	name string
	err  error
}

// NewClientsModel creates a new clients screen model
func NewClientsModel(a *app.App) tea.Model {
	return &ClientsModel{
		app:       a,
		openStats: make(map[uuid.UUID]*clientOpenStats),
		loading:   true,
	}
}

// IsCapturingInput returns true when the form is active
func (m *ClientsModel) IsCapturingInput() bool {
	return m.mode == clientModeNew || m.mode == clientModeEdit
}

func (m *ClientsModel) Init() tea.Cmd {
	return m.loadClients()
}

func (m *ClientsModel) loadClients() tea.Cmd {
	a := m.app
	showArchived := m.showArchived
	return func() tea.Msg {
		ctx := context.Background()

		clients, err := a.ClientRepo.List(ctx, a.StudioID, showArchived)
		if err != nil {
			return clientsDataMsg{err: err}
		}

		open, err := a.InvoiceService.ListInvoices(ctx, repository.InvoiceFilter{
			Statuses: []domain.InvoiceStatus{domain.InvoiceStatusSent, domain.InvoiceStatusOverdue},
		})
		if err != nil {
			return clientsDataMsg{err: err}
		}

		stats := make(map[uuid.UUID]*clientOpenStats)
		for _, inv := range open {
			cs, ok := stats[inv.ClientID]
			if !ok {
				cs = &clientOpenStats{}
				stats[inv.ClientID] = cs
			}
			cs.count++
			cs.outstanding = cs.outstanding.Add(inv.Outstanding())
		}

		return clientsDataMsg{
			clients:   clients,
			openStats: stats,
		}
	}
}

func (m *ClientsModel) initForm(editing *domain.Client) {
	m.fields = make([]textinput.Model, fieldCount)

	m.fields[fieldName] = textinput.New()
	m.fields[fieldName].Placeholder = "Client name"
	m.fields[fieldName].CharLimit = 100
	m.fields[fieldName].Width = 40

	m.fields[fieldEmail] = textinput.New()
	m.fields[fieldEmail].Placeholder = "billing@example.com"
	m.fields[fieldEmail].CharLimit = 100
	m.fields[fieldEmail].Width = 40

	m.fields[fieldNotes] = textinput.New()
	m.fields[fieldNotes].Placeholder = "Optional notes"
	m.fields[fieldNotes].CharLimit = 200
	m.fields[fieldNotes].Width = 50

	if editing != nil {
		m.fields[fieldName].SetValue(editing.Name)
		m.fields[fieldEmail].SetValue(editing.Email)
		m.fields[fieldNotes].SetValue(editing.Notes)
		m.editingID = editing.ID
	} else {
		m.editingID = uuid.Nil
	}

	m.fieldFocus = fieldName
	m.fields[fieldName].Focus()
}

func (m *ClientsModel) saveClient() tea.Cmd {
	a := m.app
	editingID := m.editingID
	name := strings.TrimSpace(m.fields[fieldName].Value())
	email := strings.TrimSpace(m.fields[fieldEmail].Value())
	notes := strings.TrimSpace(m.fields[fieldNotes].Value())

	return func() tea.Msg {
		ctx := context.Background()

		if name == "" {
			return clientSavedMsg{err: fmt.Errorf("name is required")}
		}

		if editingID != uuid.Nil {
			client, err := a.ClientRepo.GetByID(ctx, editingID)
			if err != nil {
				return clientSavedMsg{err: err}
			}
			client.Name = name
			client.Email = email
			client.Notes = notes
			client.UpdatedAt = a.Now()
			if err := a.ClientRepo.Update(ctx, client); err != nil {
				return clientSavedMsg{err: err}
			}
			return clientSavedMsg{name: name}
		}

		client := domain.NewClient(a.StudioID, name, email, a.Now())
		client.Notes = notes
		if err := a.ClientRepo.Create(ctx, client); err != nil {
			return clientSavedMsg{err: err}
		}
		return clientSavedMsg{name: name}
	}
}

func (m *ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle OpenNewClientFormMsg at the top so it works regardless of mode
	if _, ok := msg.(OpenNewClientFormMsg); ok {
		if m.loading {
			// Data hasn't loaded yet; open the form when it does
			m.autoNewClient = true
			return m, nil
		}
		m.mode = clientModeNew
		m.initForm(nil)
		return m, m.fields[fieldName].Focus()
	}

	if m.mode == clientModeNew || m.mode == clientModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadClients()

	case clientsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.clients = msg.clients
			m.openStats = msg.openStats
			if m.cursor >= len(m.clients) {
				m.cursor = max(0, len(m.clients)-1)
			}
		}
		if m.autoNewClient {
			m.autoNewClient = false
			m.mode = clientModeNew
			m.initForm(nil)
			return m, m.fields[fieldName].Focus()
		}
		return m, nil

	case clientSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.name)
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.clients)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.New):
			m.mode = clientModeNew
			m.initForm(nil)
			return m, m.fields[fieldName].Focus()
		case key.Matches(msg, DefaultKeyMap.Select):
			if len(m.clients) > 0 && m.cursor < len(m.clients) {
				m.mode = clientModeEdit
				m.initForm(m.clients[m.cursor])
				return m, m.fields[fieldName].Focus()
			}
		case msg.String() == "a":
			if len(m.clients) > 0 && m.cursor < len(m.clients) {
				return m, m.toggleArchive(m.clients[m.cursor])
			}
		case msg.String() == "h":
			m.showArchived = !m.showArchived
			m.cursor = 0
			m.loading = true
			return m, m.loadClients()
		}
	}

	return m, nil
}

func (m *ClientsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = clientModeList
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.name)
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = clientModeList
			m.err = nil
			return m, nil

		case "tab", "down":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % fieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "shift+tab", "up":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + fieldCount) % fieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "enter":
			if m.fieldFocus == fieldCount-1 {
				return m, m.saveClient()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case "ctrl+s":
			return m, m.saveClient()
		}
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

// toggleArchive archives an active client or restores an archived one.
// Archived clients keep their invoices but cannot be billed again.
func (m *ClientsModel) toggleArchive(client *domain.Client) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx := context.Background()

		if client.IsArchived {
			restored := *client
			restored.IsArchived = false
			restored.UpdatedAt = a.Now()
			if err := a.ClientRepo.Update(ctx, &restored); err != nil {
				return clientSavedMsg{err: err}
			}
		} else if err := a.ClientRepo.Archive(ctx, client.ID); err != nil {
			return clientSavedMsg{err: err}
		}

		return clientSavedMsg{name: client.Name}
	}
}

func (m *ClientsModel) View() string {
	if m.mode == clientModeNew || m.mode == clientModeEdit {
		return m.viewForm()
	}
	return m.viewList()
}

func (m *ClientsModel) viewForm() string {
	var s string

	if m.mode == clientModeNew {
		if len(m.clients) == 0 {
			s += titleStyle.Render("Welcome to studioledger!") + "\n"
			s += subtitleStyle.Render("  Add your first client to start invoicing.") + "\n\n"
		} else {
			s += titleStyle.Render("New Client") + "\n\n"
		}
	} else {
		s += titleStyle.Render("Edit Client") + "\n\n"
	}

	labels := []string{"Name:", "Email:", "Notes:"}
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

	return s
}

func (m *ClientsModel) viewList() string {
	if m.loading {
		return "Loading clients..."
	}

	var s string

	header := "Clients"
	if m.showArchived {
		header += subtitleStyle.Render("  (showing archived)")
	}
	s += titleStyle.Render(header) + "\n\n"

	if m.statusMsg != "" {
		s += successStyle.Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	if len(m.clients) == 0 {
		s += subtitleStyle.Render("  No clients yet. Press 'n' to add one.") + "\n"
		s += subtitleStyle.Render("  Press 'h' to toggle archived clients") + "\n"
		return s
	}

	for i, client := range m.clients {
		s += m.renderClient(i, client) + "\n"
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  a: archive/unarchive  h: toggle archived")

	return s
}

func (m *ClientsModel) renderClient(index int, client *domain.Client) string {
	selected := index == m.cursor

	name := client.Name
	if client.IsArchived {
		name += " (archived)"
	}

	open := "Nothing outstanding"
	if stats := m.openStats[client.ID]; stats != nil && stats.count > 0 {
		open = fmt.Sprintf("%d open invoice(s)  %s", stats.count, ledgerMoney(m.app, stats.outstanding))
	}

	contact := client.Email
	if contact == "" && client.Notes != "" {
		contact = truncateStr(client.Notes, 40)
	}

	indicator := "  "
	if selected {
		indicator = "> "
	}

	line1 := indicator + name
	line2 := "    " + open
	var line3 string
	if contact != "" {
		line3 = "    " + contact
	}

	nameStyle := lipgloss.NewStyle()
	detailStyle := subtitleStyle
	if client.IsArchived {
		nameStyle = nameStyle.Foreground(mutedColor)
		detailStyle = lipgloss.NewStyle().Foreground(mutedColor)
	}
	if selected {
		nameStyle = nameStyle.Bold(true).Foreground(primaryColor)
	}

	result := nameStyle.Render(line1) + "\n" + detailStyle.Render(line2)
	if line3 != "" {
		result += "\n" + detailStyle.Render(line3)
	}

	return result
}
