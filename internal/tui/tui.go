// Package tui is the interactive rendering layer over state.Store. All
// network operations run as bubbletea commands; state is only mutated from
// the single event loop, so the store needs no locking.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/equipctl/equipctl/internal/client"
	"github.com/equipctl/equipctl/internal/model"
	"github.com/equipctl/equipctl/internal/state"
)

const (
	focusName = iota
	focusType
	focusLocation
	focusStatus
	focusTable
	focusCount
)

const tableHeight = 10

type styles struct {
	title, label, focused, help, success, error, confirm lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		focused: lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		help:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		confirm: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	}
}

// Operation results delivered back into the event loop.
type listDoneMsg struct {
	items []model.Equipment
	err   error
}

type createDoneMsg struct {
	message string
	err     error
}

type removeDoneMsg struct {
	message string
	err     error
}

type Model struct {
	store  *state.Store
	client *client.Client

	inputs    []textinput.Model
	statusIdx int // index into model.Statuses, -1 when unset
	focus     int

	tbl     table.Model
	spinner spinner.Model
	styles  styles

	confirming bool
	pendingID  string
	quitting   bool
}

// New builds the initial model with the first list fetch already marked
// outstanding; Init issues the request.
func New(c *client.Client) *Model {
	inputs := make([]textinput.Model, 3)
	for i, placeholder := range []string{"Nombre", "Tipo", "Ubicación"} {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 64
		ti.Width = 28
		inputs[i] = ti
	}
	inputs[focusName].Focus()

	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Nombre", Width: 20},
			{Title: "Tipo", Width: 14},
			{Title: "Ubicación", Width: 18},
			{Title: "Estado", Width: 14},
		}),
		table.WithHeight(tableHeight),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	ts.Selected = ts.Selected.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	tbl.SetStyles(ts)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))

	store := state.New()
	store.BeginList()

	return &Model{
		store:     store,
		client:    c,
		inputs:    inputs,
		statusIdx: -1,
		tbl:       tbl,
		spinner:   sp,
		styles:    newStyles(),
	}
}

// Store exposes the state container, used by tests to assert transitions.
func (m *Model) Store() *state.Store {
	return m.store
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listCmd())
}

func (m *Model) listCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.client.List(context.Background())
		return listDoneMsg{items: items, err: err}
	}
}

func (m *Model) createCmd(draft model.Draft) tea.Cmd {
	return func() tea.Msg {
		msg, err := m.client.Create(context.Background(), draft)
		return createDoneMsg{message: msg, err: err}
	}
}

func (m *Model) removeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		msg, err := m.client.Remove(context.Background(), id)
		return removeDoneMsg{message: msg, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listDoneMsg:
		if msg.err != nil {
			m.store.ListFailed(msg.err.Error())
		} else {
			m.store.ListSucceeded(msg.items)
		}
		m.syncTable()
		return m, nil

	case createDoneMsg:
		if msg.err != nil {
			m.store.CreateFailed(msg.err.Error())
			return m, nil
		}
		m.store.CreateSucceeded(msg.message)
		m.resetForm()
		// Resynchronize with server truth.
		m.store.BeginList()
		return m, m.listCmd()

	case removeDoneMsg:
		if msg.err != nil {
			m.store.RemoveFailed(msg.err.Error())
			return m, nil
		}
		m.store.RemoveSucceeded(msg.message)
		m.syncTable()
		m.store.BeginList()
		return m, m.listCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirming {
		return m.handleConfirmKey(msg)
	}

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyTab:
		m.setFocus((m.focus + 1) % focusCount)
		return m, textinput.Blink

	case tea.KeyShiftTab:
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, textinput.Blink

	case tea.KeyEnter:
		if m.focus != focusTable {
			return m.submitDraft()
		}
		return m, nil
	}

	if m.focus == focusStatus {
		switch msg.String() {
		case "left", "h":
			m.cycleStatus(-1)
			return m, nil
		case "right", "l", " ":
			m.cycleStatus(1)
			return m, nil
		}
	}

	if m.focus == focusTable {
		switch msg.String() {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.store.BeginList()
			return m, tea.Batch(m.spinner.Tick, m.listCmd())
		case "d", "delete", "backspace":
			return m.requestRemove()
		}
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd
	}

	if m.focus >= focusName && m.focus <= focusLocation {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleConfirmKey resolves the destructive-action confirmation. Anything
// but an explicit yes declines and leaves every piece of state untouched.
func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.pendingID
	m.confirming = false
	m.pendingID = ""

	switch msg.String() {
	case "y", "Y":
		if err := m.store.BeginRemove(id); err != nil {
			return m, nil
		}
		return m, tea.Batch(m.spinner.Tick, m.removeCmd(id))
	default:
		return m, nil
	}
}

// requestRemove opens the confirmation prompt for the selected row. While
// a delete is outstanding every delete affordance stays disabled.
func (m *Model) requestRemove() (tea.Model, tea.Cmd) {
	if !m.store.CanRemove() {
		return m, nil
	}
	row := m.tbl.SelectedRow()
	if row == nil {
		return m, nil
	}
	m.confirming = true
	m.pendingID = row[0]
	return m, nil
}

func (m *Model) submitDraft() (tea.Model, tea.Cmd) {
	m.store.Draft = model.Draft{
		Name:     m.inputs[focusName].Value(),
		Type:     m.inputs[focusType].Value(),
		Location: m.inputs[focusLocation].Value(),
		Status:   m.status(),
	}
	if err := m.store.BeginCreate(); err != nil {
		// Validation failed; no network request is issued.
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, m.createCmd(m.store.Draft))
}

func (m *Model) setFocus(focus int) {
	m.focus = focus
	for i := range m.inputs {
		if i == focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	if focus == focusTable {
		m.tbl.Focus()
	} else {
		m.tbl.Blur()
	}
}

func (m *Model) cycleStatus(dir int) {
	statuses := model.Statuses()
	m.statusIdx = ((m.statusIdx+dir)%len(statuses) + len(statuses)) % len(statuses)
}

func (m *Model) status() string {
	if m.statusIdx < 0 {
		return ""
	}
	return model.Statuses()[m.statusIdx]
}

func (m *Model) resetForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.statusIdx = -1
}

func (m *Model) syncTable() {
	rows := make([]table.Row, 0, len(m.store.Records))
	for _, rec := range m.store.Records {
		rows = append(rows, table.Row{rec.ID.String(), rec.Name, rec.Type, rec.Location, rec.Status})
	}
	m.tbl.SetRows(rows)
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render("Inventario de equipos"))
	b.WriteString("\n\n")

	if m.confirming {
		b.WriteString(m.styles.confirm.Render("¿Eliminar el equipo " + m.pendingID + "? (y/N)"))
		b.WriteString("\n\n")
	}

	if m.store.Busy() {
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.help.Render(" cargando..."))
		b.WriteString("\n")
	}
	if m.store.ErrorMessage != "" {
		b.WriteString(m.styles.error.Render(m.store.ErrorMessage))
		b.WriteString("\n")
	}
	if m.store.SuccessMessage != "" {
		b.WriteString(m.styles.success.Render(m.store.SuccessMessage))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.tbl.View())
	b.WriteString("\n\n")
	b.WriteString(m.viewForm())
	b.WriteString("\n")

	help := "Tab → campo | Enter → guardar | d → eliminar | r → recargar | q/Esc → salir"
	if !m.store.CanRemove() {
		help = "Eliminando... las acciones de borrado están deshabilitadas"
	}
	b.WriteString(m.styles.help.Render(help))
	b.WriteString("\n")

	return b.String()
}

func (m *Model) viewForm() string {
	var b strings.Builder
	b.WriteString(m.styles.label.Render("Nuevo equipo"))
	b.WriteString("\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	status := "Seleccione estado"
	if m.statusIdx >= 0 {
		status = model.Statuses()[m.statusIdx]
	}
	line := "  Estado: < " + status + " >"
	if m.focus == focusStatus {
		b.WriteString(m.styles.focused.Render(line))
	} else {
		b.WriteString(m.styles.label.Render(line))
	}
	return b.String()
}

// Run starts the interactive program.
func Run(c *client.Client) error {
	p := tea.NewProgram(New(c), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
