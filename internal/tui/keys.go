package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Navigation (upper case so screens keep the lower case letters)
	Dashboard key.Binding
	Clients   key.Binding
	Invoices  key.Binding
	Reports   key.Binding
	Settings  key.Binding

	// Actions
	Select  key.Binding
	New     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Send    key.Binding
	Pay     key.Binding
	Record  key.Binding
	Overdue key.Binding
	Cancel  key.Binding
	PDF     key.Binding

	// Movement
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	PrevYear  key.Binding
	NextYear  key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Dashboard: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "dashboard")),
	Clients:   key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clients")),
	Invoices:  key.NewBinding(key.WithKeys("I"), key.WithHelp("I", "invoices")),
	Reports:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reports")),
	Settings:  key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
	Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Send:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "send")),
	Pay:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "mark paid")),
	Record:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record payment")),
	Overdue:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "mark overdue")),
	Cancel:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cancel")),
	PDF:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "pdf")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	PrevYear:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous year")),
	NextYear:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next year")),
	PrevMonth: key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "previous month")),
	NextMonth: key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "next month")),
}
