// Package tui is a terminal keypad for the calculator.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/keypad"
	"go-chi-calculator/internal/observability"
)

var (
	panelBorder   = lipgloss.Color("#2D6A80")
	accentPrimary = lipgloss.Color("#50E3C2")
	accentOp      = lipgloss.Color("#F6AE2D")
	mutedText     = lipgloss.Color("#8CA1AE")
	warningText   = lipgloss.Color("#FF6B6B")

	displayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(panelBorder).
			Foreground(accentPrimary).
			Bold(true).
			Align(lipgloss.Right).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Width(5).
			Align(lipgloss.Center).
			Border(lipgloss.NormalBorder()).
			BorderForeground(panelBorder)

	pressedKeyStyle = keyStyle.
			BorderForeground(accentPrimary).
			Foreground(accentPrimary)

	noticeStyle = lipgloss.NewStyle().Foreground(warningText)
	helpStyle   = lipgloss.NewStyle().Foreground(mutedText)
)

const displayWidth = 26

type keyMap struct {
	Equals    key.Binding
	Backspace key.Binding
	Clear     key.Binding
	Quit      key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Equals, k.Backspace, k.Clear, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Equals:    key.NewBinding(key.WithKeys("enter", "="), key.WithHelp("enter", "equals")),
	Backspace: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "erase")),
	Clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the bubbletea model driving one calculator session.
type Model struct {
	machine *calculator.Machine
	help    help.Model
	notice  string
	pressed string
}

func NewModel(opts calculator.Options) Model {
	h := help.New()
	h.Styles.ShortKey = h.Styles.ShortKey.Foreground(accentPrimary)
	h.Styles.ShortDesc = h.Styles.ShortDesc.Foreground(mutedText)
	return Model{machine: calculator.NewMachine(opts), help: h}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		return m.press(msg.String()), nil
	}
	return m, nil
}

func (m Model) press(name string) Model {
	tok, ok := keypad.FromKey(name)
	if !ok {
		return m
	}

	frame := m.machine.Apply(tok)
	m.pressed = pressedLabel(tok)
	m.notice = frame.Message

	if frame.Message != "" {
		observability.Logger.Warn("evaluation failed, calculator reset",
			zap.String("token", tok.String()),
			zap.String("message", frame.Message),
		)
	}
	return m
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(displayStyle.Width(displayWidth).Render(m.machine.Display()))
	b.WriteString("\n")
	b.WriteString(noticeStyle.Render(m.notice))
	b.WriteString("\n")

	for _, row := range keypad.Layout {
		cells := make([]string, 0, len(row))
		for _, btn := range row {
			style := keyStyle
			if btn.Label == m.pressed {
				style = pressedKeyStyle
			}
			if btn.Role == keypad.RoleOperator {
				style = style.Foreground(accentOp)
			}
			cells = append(cells, style.Render(btn.Label))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("0-9 . + - * / %"))
	b.WriteString("  ")
	b.WriteString(m.help.View(keys))
	b.WriteString("\n")
	return b.String()
}

// pressedLabel returns the keypad label for tok so the matching key can be
// highlighted.
func pressedLabel(tok calculator.Token) string {
	for _, row := range keypad.Layout {
		for _, btn := range row {
			if t, ok := keypad.FromButton(btn.Role, btn.Label); ok && t == tok {
				return btn.Label
			}
		}
	}
	return ""
}
