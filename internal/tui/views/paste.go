package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/rsvp/internal/words"
)

// SampleText is shown in the paste view until replaced.
const SampleText = "The quick brown fox jumps over the lazy dog."

// TextSubmittedMsg carries pasted text to read.
type TextSubmittedMsg struct {
	Text string
}

var (
	pasteTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	pasteCountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8dadc"))

	pasteHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	pasteErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff6b6b")).
			Bold(true)
)

// PasteModel lets the user type or paste text to read.
type PasteModel struct {
	input textarea.Model
	err   string

	width  int
	height int
}

// NewPasteModel creates the paste view.
func NewPasteModel() PasteModel {
	ta := textarea.New()
	ta.Placeholder = "Paste or type text here..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetValue(SampleText)
	return PasteModel{input: ta}
}

// SetSize updates the view dimensions.
func (m *PasteModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(max(width-4, 20))
	m.input.SetHeight(max(height-10, 3))
}

// Focus gives the text area keyboard focus.
func (m *PasteModel) Focus() tea.Cmd {
	return m.input.Focus()
}

// Blur removes keyboard focus.
func (m *PasteModel) Blur() {
	m.input.Blur()
}

// Focused reports whether the text area captures keys.
func (m PasteModel) Focused() bool {
	return m.input.Focused()
}

// Value returns the current text.
func (m PasteModel) Value() string {
	return m.input.Value()
}

// Update handles messages.
func (m PasteModel) Update(msg tea.Msg) (PasteModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+s":
			text := m.input.Value()
			if strings.TrimSpace(text) == "" {
				m.err = "Nothing to read"
				return m, nil
			}
			m.err = ""
			return m, func() tea.Msg {
				return TextSubmittedMsg{Text: text}
			}
		case "ctrl+l":
			m.input.Reset()
			m.err = ""
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the paste view.
func (m PasteModel) View() string {
	var b strings.Builder

	b.WriteString(pasteTitleStyle.Render("Paste Text"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(pasteCountStyle.Render(pluralWords(words.Count(m.input.Value()))))
	b.WriteString("\n")

	if m.err != "" {
		b.WriteString(pasteErrorStyle.Render(m.err))
		b.WriteString("\n")
	}

	b.WriteString(pasteHelpStyle.Render("ctrl+s: read • ctrl+l: clear • esc: leave editor"))
	return b.String()
}

func pluralWords(n int) string {
	if n == 1 {
		return "1 word"
	}
	return fmt.Sprintf("%d words", n)
}
