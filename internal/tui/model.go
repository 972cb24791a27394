// Package tui is the interactive terminal surface of sheetsift.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/sheetsift-cli/internal/export"
	"github.com/KaramelBytes/sheetsift-cli/internal/render"
	"github.com/KaramelBytes/sheetsift-cli/internal/session"
)

// Options configures the explorer.
type Options struct {
	Title      string
	ExportPath string
	LinkLabel  string
	// Hyperlinks renders link cells as OSC 8 hyperlinks.
	Hyperlinks bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Model is the bubbletea model of the explorer. Focus 0 is the global
// keyword box; focus i > 0 is the box of columns[i-1].
type Model struct {
	sess    *session.Session
	opt     Options
	keys    keyMap
	help    help.Model
	global  textinput.Model
	inputs  []textinput.Model
	columns []session.FilterColumn
	focus   int
	offset  int
	width   int
	height  int
	view    *session.View
	status  string
}

// New builds the explorer over sess.
func New(sess *session.Session, opt Options) Model {
	m := Model{
		sess:   sess,
		opt:    opt,
		keys:   defaultKeys(),
		help:   help.New(),
		global: textinput.New(),
		view:   sess.View(),
		height: 30,
	}
	m.global.Placeholder = "search every text column"
	m.global.Prompt = ""
	m.columns = sess.FilterColumns()
	m.inputs = make([]textinput.Model, len(m.columns))
	for i, c := range m.columns {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholder(c)
		m.inputs[i] = in
	}
	m.sync()
	m.global.Focus()
	return m
}

func placeholder(c session.FilterColumn) string {
	if !c.Offered {
		return "keyword, or a,b for any of"
	}
	opts := c.Options
	more := ""
	if len(opts) > 4 {
		opts = opts[:4]
		more = ", …"
	}
	return "=" + strings.Join(opts, ",") + more
}

// sync rebuilds every input from the session's filter state.
func (m *Model) sync() {
	m.global.SetValue(m.sess.GlobalInput())
	m.columns = m.sess.FilterColumns()
	for i, c := range m.columns {
		if i < len(m.inputs) {
			m.inputs[i].SetValue(c.Input)
		}
	}
}

func (m *Model) setFocus(i int) {
	n := len(m.inputs) + 1
	m.focus = ((i % n) + n) % n
	m.global.Blur()
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	if m.focus == 0 {
		m.global.Focus()
		return
	}
	m.inputs[m.focus-1].Focus()
}

func (m Model) pageSize() int {
	// title, global box, column boxes, caption, status and help
	rows := m.height - len(m.inputs) - 10
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.setFocus(m.focus + 1)
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Prev):
			m.setFocus(m.focus - 1)
			return m, textinput.Blink
		case key.Matches(msg, m.keys.PageDown):
			if m.offset+m.pageSize() < m.view.Len() {
				m.offset += m.pageSize()
			}
			return m, nil
		case key.Matches(msg, m.keys.PageUp):
			m.offset -= m.pageSize()
			if m.offset < 0 {
				m.offset = 0
			}
			return m, nil
		case key.Matches(msg, m.keys.ClearAll):
			m.view = m.sess.Dispatch(session.ClearAll())
			m.sync()
			m.offset = 0
			m.status = "Filters cleared"
			return m, nil
		case key.Matches(msg, m.keys.Export):
			m.status = m.export()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}
	return m.updateFocused(msg)
}

// updateFocused forwards msg to the focused box and runs a cycle when its
// text changed.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == 0 {
		before := m.global.Value()
		m.global, cmd = m.global.Update(msg)
		if v := m.global.Value(); v != before {
			m.apply(session.SetGlobalKeyword(v))
		}
		return m, cmd
	}
	i := m.focus - 1
	before := m.inputs[i].Value()
	m.inputs[i], cmd = m.inputs[i].Update(msg)
	if v := m.inputs[i].Value(); v != before {
		m.apply(session.InputAction(m.columns[i].Name, v))
	}
	return m, cmd
}

func (m *Model) apply(a session.Action) {
	m.view = m.sess.Dispatch(a)
	m.offset = 0
	m.status = ""
	if len(m.view.Warnings) > 0 {
		m.status = "⚠ " + m.view.Warnings[0].Error()
	}
}

func (m Model) export() string {
	if m.opt.ExportPath == "" {
		return "⚠ no export path configured"
	}
	if err := export.WriteFile(m.opt.ExportPath, m.view); err != nil {
		return "✗ export failed: " + err.Error()
	}
	return fmt.Sprintf("✓ Exported %d rows to %s", m.view.Len(), m.opt.ExportPath)
}

func (m Model) View() string {
	var b strings.Builder
	title := m.opt.Title
	if title == "" {
		title = "sheetsift"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.inputLine(0, "Search all", m.global.View()))
	for i, c := range m.columns {
		b.WriteString(m.inputLine(i+1, c.Name, m.inputs[i].View()))
	}
	b.WriteString("\n")

	b.WriteString(render.Table(m.view, render.Options{
		MaxRows:    m.pageSize(),
		Offset:     m.offset,
		Label:      m.opt.LinkLabel,
		Hyperlinks: m.opt.Hyperlinks,
	}))

	if m.status != "" {
		style := statusStyle
		if strings.HasPrefix(m.status, "⚠") || strings.HasPrefix(m.status, "✗") {
			style = warningStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) inputLine(idx int, name, field string) string {
	label := labelStyle.Render(fmt.Sprintf("%-16s", truncate(name, 16)))
	if idx == m.focus {
		label = focusStyle.Render(fmt.Sprintf("%-16s", truncate(name, 16)))
	}
	hint := ""
	if idx > 0 && m.columns[idx-1].Offered {
		hint = hintStyle.Render(fmt.Sprintf("  (%d options)", len(m.columns[idx-1].Options)))
	}
	return label + " " + field + hint + "\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// CurrentView returns the last view shown.
func (m Model) CurrentView() *session.View { return m.view }

// Run starts the explorer on the alternate screen and blocks until the user
// quits.
func Run(sess *session.Session, opt Options) error {
	p := tea.NewProgram(New(sess, opt), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run explorer: %w", err)
	}
	return nil
}
