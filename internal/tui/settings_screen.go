package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andy/studioledger/internal/app"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeEdit
)

// settings form field indices
const (
	settingsFieldStudioName = iota
	settingsFieldStudioEmail
	settingsFieldStudioAddress
	settingsFieldPrefix
	settingsFieldDueDays
	settingsFieldTaxRate
	settingsFieldDisplayCurrency
	settingsFieldExportDir
	settingsFieldCount
)

var settingsLabels = []string{
	"Studio Name:",
	"Studio Email:",
	"Studio Address:",
	"Number Prefix:",
	"Default Due Days:",
	"Tax Rate (%):",
	"Display Currency:",
	"Export Directory:",
}

type settingsSavedMsg struct {
	err error
}

// SettingsModel shows and edits the studio and invoicing settings. Saved
// values are written to the config file and used from the next start.
type SettingsModel struct {
	app        *app.App
	mode       settingsMode
	fields     []textinput.Model
	fieldFocus int
	err        error
	statusMsg  string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{
		app:  a,
		mode: settingsModeView,
	}
}

// IsCapturingInput returns true when the edit form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode == settingsModeEdit
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func (m *SettingsModel) initForm() {
	cfg := m.app.Config
	values := []string{
		cfg.Studio.Name,
		cfg.Studio.Email,
		cfg.Studio.Address,
		cfg.Invoice.NumberPrefix,
		strconv.Itoa(cfg.Invoice.DefaultDueDays),
		cfg.TaxRate().Shift(2).String(),
		cfg.Currency.Display,
		cfg.Export.Dir,
	}
	widths := []int{40, 40, 60, 20, 10, 10, 10, 60}

	m.fields = make([]textinput.Model, settingsFieldCount)
	for i := range m.fields {
		m.fields[i] = textinput.New()
		m.fields[i].CharLimit = 256
		m.fields[i].Width = widths[i]
		m.fields[i].SetValue(values[i])
	}

	m.fieldFocus = settingsFieldStudioName
	m.fields[m.fieldFocus].Focus()
}

func (m *SettingsModel) saveSettings() tea.Cmd {
	a := m.app
	values := make([]string, settingsFieldCount)
	for i, f := range m.fields {
		values[i] = strings.TrimSpace(f.Value())
	}

	return func() tea.Msg {
		dueDays, err := strconv.Atoi(values[settingsFieldDueDays])
		if err != nil || dueDays <= 0 {
			return settingsSavedMsg{err: fmt.Errorf("due days must be a positive number")}
		}

		taxPercent, err := strconv.ParseFloat(strings.TrimSuffix(values[settingsFieldTaxRate], "%"), 64)
		if err != nil {
			return settingsSavedMsg{err: fmt.Errorf("tax rate must be a number")}
		}

		display := strings.ToUpper(values[settingsFieldDisplayCurrency])
		if _, ok := a.Config.Currency.Rates[display]; !ok {
			return settingsSavedMsg{err: fmt.Errorf("no exchange rate configured for %s", display)}
		}

		next := *a.Config
		next.Studio.Name = values[settingsFieldStudioName]
		next.Studio.Email = values[settingsFieldStudioEmail]
		next.Studio.Address = values[settingsFieldStudioAddress]
		next.Invoice.NumberPrefix = values[settingsFieldPrefix]
		next.Invoice.DefaultDueDays = dueDays
		next.Invoice.DefaultTaxRate = taxPercent / 100
		next.Currency.Display = display
		next.Export.Dir = values[settingsFieldExportDir]

		if err := next.Validate(); err != nil {
			return settingsSavedMsg{err: err}
		}

		*a.Config = next
		if err := a.SaveConfig(); err != nil {
			return settingsSavedMsg{err: fmt.Errorf("failed to save config: %w", err)}
		}

		return settingsSavedMsg{}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == settingsModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		if msg.String() == "enter" {
			m.mode = settingsModeEdit
			m.statusMsg = ""
			m.initForm()
			return m, m.fields[m.fieldFocus].Focus()
		}
	}

	return m, nil
}

func (m *SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = settingsModeView
		m.statusMsg = "Settings saved. Restart studioledger to apply them."
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = settingsModeView
			m.err = nil
			return m, nil

		case "tab", "down":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "shift+tab", "up":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + settingsFieldCount) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "enter":
			if m.fieldFocus == settingsFieldCount-1 {
				return m, m.saveSettings()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case "ctrl+s":
			return m, m.saveSettings()
		}
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *SettingsModel) View() string {
	if m.mode == settingsModeEdit {
		return m.viewForm()
	}
	return m.viewSettings()
}

func (m *SettingsModel) viewSettings() string {
	var s string
	s += titleStyle.Render("Settings") + "\n\n"

	if m.statusMsg != "" {
		s += successStyle.Render("  "+m.statusMsg) + "\n\n"
	}

	cfg := m.app.Config
	labelStyle := lipgloss.NewStyle().Bold(true).Width(22)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)
	row := func(label, value string) string {
		if value == "" {
			value = subtitleStyle.Render("(not set)")
		} else {
			value = valueStyle.Render(value)
		}
		return fmt.Sprintf("  %s %s\n", labelStyle.Render(label), value)
	}

	s += subtitleStyle.Render("  Studio") + "\n\n"
	s += row("Name:", cfg.Studio.Name)
	s += row("Email:", cfg.Studio.Email)
	s += row("Address:", cfg.Studio.Address)
	s += row("Studio ID:", cfg.Studio.ID)

	s += "\n" + subtitleStyle.Render("  Invoicing") + "\n\n"
	s += row("Number Prefix:", cfg.Invoice.NumberPrefix)
	s += row("Default Due Days:", strconv.Itoa(cfg.Invoice.DefaultDueDays))
	s += row("Tax Rate:", cfg.TaxRate().Shift(2).String()+"%")
	s += row("Ledger Currency:", cfg.Currency.Ledger)
	s += row("Display Currency:", cfg.Currency.Display)

	s += "\n" + subtitleStyle.Render("  Files") + "\n\n"
	s += row("PDF Directory:", cfg.Invoice.OutputDir)
	s += row("Export Directory:", cfg.Export.Dir)
	s += row("Database:", cfg.Database.Path)

	s += "\n" + helpStyle.Render("  enter: edit settings")

	return s
}

func (m *SettingsModel) viewForm() string {
	var s string
	s += titleStyle.Render("Edit Settings") + "\n\n"

	for i, label := range settingsLabels {
		indicator := "  "
		labelStyle := subtitleStyle
		if i == m.fieldFocus {
			indicator = "> "
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n", indicator, labelStyle.Render(label), m.fields[i].View())
	}

	if m.err != nil {
		s += "\n" + errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	s += "\n" + helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")

	return s
}
