// Package tui provides the interactive mode table for modalkit
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/james-see/modalkit/pkg/explorer"
	"github.com/james-see/modalkit/pkg/theory"
	"github.com/james-see/modalkit/pkg/throttle"
)

var (
	accent = lipgloss.Color("#39FF14")
	warm   = lipgloss.Color("#FFFF00")
	silver = lipgloss.Color("#C0C0C0")
	dim    = lipgloss.Color("#666666")
	panel  = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Background(panel).
			Padding(0, 2).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().Foreground(dim)
	valueStyle = lipgloss.NewStyle().Foreground(warm).Bold(true)

	cellStyle     = lipgloss.NewStyle().Foreground(silver).Padding(0, 1)
	headerStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true).Padding(0, 1)
	nameStyle     = lipgloss.NewStyle().Foreground(dim).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Foreground(panel).Background(accent).Bold(true).Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Foreground(warm).PaddingTop(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true).PaddingTop(1)
)

// PersistFunc stores the current selections
type PersistFunc func(root theory.PitchClass, kind theory.DisplayKind)

// playedMsg reports the outcome of a click
type playedMsg struct {
	trigger explorer.Trigger
	err     error
}

// Model is the bubbletea model of the mode table
type Model struct {
	explorer *explorer.Explorer
	root     theory.PitchClass
	kind     theory.DisplayKind
	rows     [][]string
	row      int
	col      int

	status string
	err    error

	keys     keyMap
	help     help.Model
	persist  PersistFunc
	debounce func(func())
	width    int
}

// Option configures a Model
type Option func(*Model)

// WithPersist saves root and kind changes, debounced by delay
func WithPersist(f PersistFunc, delay time.Duration) Option {
	return func(m *Model) {
		m.persist = f
		m.debounce = debounce.New(delay)
	}
}

// New creates the model showing root in kind
func New(x *explorer.Explorer, root theory.PitchClass, kind theory.DisplayKind, opts ...Option) Model {
	m := Model{
		explorer: x,
		root:     root,
		kind:     kind,
		col:      1,
		keys:     defaultKeys,
		help:     help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.refresh()
	return m
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) refresh() {
	rows, err := m.explorer.Engine().Table(m.root, m.kind)
	if err != nil {
		m.err = err
		return
	}
	m.rows = rows
	m.row = min(m.row, len(rows)-1)
}

func (m *Model) save() {
	if m.persist == nil {
		return
	}
	root, kind, persist := m.root, m.kind, m.persist
	m.debounce(func() { persist(root, kind) })
}

// stepRoot moves the root by semitones, spelled as in the reference scale
func stepRoot(root theory.PitchClass, semitones int) theory.PitchClass {
	chroma, err := theory.Chroma(root)
	if err != nil {
		return root
	}
	n := len(theory.ReferenceScale)
	return theory.ReferenceScale[((chroma+semitones)%n+n)%n]
}

// Cell returns the text under the cursor
func (m Model) Cell() string {
	if m.row < 0 || m.row >= len(m.rows) {
		return ""
	}
	return m.rows[m.row][m.col]
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case playedMsg:
		switch {
		case msg.err == nil:
			t := msg.trigger
			m.status = fmt.Sprintf("♪ %s  %s", t.Plan.Chord.Symbol, strings.Join(t.Plan.NoteNames(), " "))
			m.err = nil
		case errors.Is(msg.err, theory.ErrUnresolvedChord), errors.Is(msg.err, throttle.ErrRateLimited):
			// ignored clicks leave the screen as it is
		default:
			m.err = msg.err
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, m.keys.Down):
		if m.row < len(m.rows)-1 {
			m.row++
		}
	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(msg, m.keys.Right):
		if m.col < theory.DegreeCount {
			m.col++
		}
	case key.Matches(msg, m.keys.Play):
		return m, m.play(m.root, m.Cell())
	case key.Matches(msg, m.keys.Kind):
		m.kind = m.kind.Next()
		m.refresh()
		m.save()
	case key.Matches(msg, m.keys.NextRoot):
		m.root = stepRoot(m.root, 1)
		m.refresh()
		m.save()
	case key.Matches(msg, m.keys.PrevRoot):
		m.root = stepRoot(m.root, -1)
		m.refresh()
		m.save()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) play(root theory.PitchClass, cell string) tea.Cmd {
	x := m.explorer
	return func() tea.Msg {
		t, err := x.Click(root, cell)
		return playedMsg{trigger: t, err: err}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" MODALKIT "))
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("root "))
	s.WriteString(valueStyle.Render(string(m.root)))
	s.WriteString(labelStyle.Render("   view "))
	s.WriteString(valueStyle.Render(m.kind.Label()))
	s.WriteString("\n\n")

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(accent)).
		Headers(theory.TableHeaders...).
		Rows(m.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == m.row && col == m.col:
				return selectedStyle
			case col == 0:
				return nameStyle
			default:
				return cellStyle
			}
		})
	s.WriteString(t.String())
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	} else {
		s.WriteString(statusStyle.Render(m.status))
	}
	s.WriteString("\n\n")
	s.WriteString(m.help.View(m.keys))

	return s.String()
}

// Run starts the TUI application
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
