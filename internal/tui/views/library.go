package views

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/rsvp/internal/history"
)

// SessionStore is the part of the history store the library needs.
type SessionStore interface {
	Recent(ctx context.Context, limit int) ([]history.Session, error)
	Delete(ctx context.Context, source string) error
}

// SessionsLoadedMsg carries the result of loading the library.
type SessionsLoadedMsg struct {
	Sessions []history.Session
	Err      error
}

// SessionSelectedMsg asks to reopen a session.
type SessionSelectedMsg struct {
	Session history.Session
}

var (
	libTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	libRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee"))

	libSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ffe66d")).
				Background(lipgloss.Color("#2d3436"))

	libMutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	libDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8e6cf"))

	libErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff6b6b")).
			Bold(true)
)

const libraryLimit = 50

// LibraryModel lists past reading sessions.
type LibraryModel struct {
	store    SessionStore
	sessions []history.Session
	selected int
	offset   int
	loading  bool
	err      error

	width  int
	height int
}

// NewLibraryModel creates the library view. store may be nil when history
// is disabled.
func NewLibraryModel(store SessionStore) LibraryModel {
	return LibraryModel{store: store}
}

// SetSize updates the view dimensions.
func (m *LibraryModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Sessions returns the listed sessions.
func (m LibraryModel) Sessions() []history.Session {
	return m.sessions
}

// Refresh reloads sessions from the store.
func (m *LibraryModel) Refresh() tea.Cmd {
	if m.store == nil {
		return nil
	}
	m.loading = true
	store := m.store
	return func() tea.Msg {
		sessions, err := store.Recent(context.Background(), libraryLimit)
		return SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (m LibraryModel) deleteSelected() tea.Cmd {
	if m.store == nil || m.selected >= len(m.sessions) {
		return nil
	}
	store := m.store
	source := m.sessions[m.selected].Source
	return func() tea.Msg {
		if err := store.Delete(context.Background(), source); err != nil {
			return SessionsLoadedMsg{Err: err}
		}
		sessions, err := store.Recent(context.Background(), libraryLimit)
		return SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

// Update handles messages.
func (m LibraryModel) Update(msg tea.Msg) (LibraryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case SessionsLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err == nil {
			m.sessions = msg.Sessions
			m.selected = min(m.selected, max(len(m.sessions)-1, 0))
			m.adjustScroll()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.selected < len(m.sessions)-1 {
				m.selected++
				m.adjustScroll()
			}
			return m, nil
		case "k", "up":
			if m.selected > 0 {
				m.selected--
				m.adjustScroll()
			}
			return m, nil
		case "enter", "l", "right":
			if m.selected < len(m.sessions) {
				sess := m.sessions[m.selected]
				return m, func() tea.Msg {
					return SessionSelectedMsg{Session: sess}
				}
			}
			return m, nil
		case "d", "x":
			return m, m.deleteSelected()
		case "r":
			cmd := m.Refresh()
			return m, cmd
		}
	}
	return m, nil
}

func (m *LibraryModel) visibleHeight() int {
	return max(m.height-8, 5)
}

func (m *LibraryModel) adjustScroll() {
	h := m.visibleHeight()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+h {
		m.offset = m.selected - h + 1
	}
}

// View renders the library.
func (m LibraryModel) View() string {
	var b strings.Builder

	b.WriteString(libTitleStyle.Render("Library"))
	b.WriteString("\n")

	switch {
	case m.store == nil:
		b.WriteString(libMutedStyle.Render("Reading history is disabled in the config"))
		return b.String()
	case m.err != nil:
		b.WriteString(libErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case m.loading && len(m.sessions) == 0:
		b.WriteString(libMutedStyle.Render("Loading..."))
		return b.String()
	case len(m.sessions) == 0:
		b.WriteString(libMutedStyle.Render("No reading sessions yet - open a file to start one"))
		return b.String()
	}

	header := fmt.Sprintf("  %-32s %7s %6s  %s", "Title", "Done", "WPM", "Last read")
	b.WriteString(libMutedStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(libMutedStyle.Render(strings.Repeat("─", max(min(m.width-4, 64), 0))))
	b.WriteString("\n")

	end := min(m.offset+m.visibleHeight(), len(m.sessions))
	for i := m.offset; i < end; i++ {
		sess := m.sessions[i]

		title := sess.Title
		if title == "" {
			title = filepath.Base(sess.Source)
		}
		row := fmt.Sprintf("%-32s %6.0f%% %6.0f  %s",
			truncate(title, 32), sess.Percent(), sess.WPM, sess.UpdatedAt.Format(time.DateTime))

		prefix := "  "
		style := libRowStyle
		if sess.Finished() {
			style = libDoneStyle
		}
		if i == m.selected {
			prefix = "> "
			style = libSelectedStyle
		}
		b.WriteString(prefix)
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}

	if len(m.sessions) > m.visibleHeight() {
		b.WriteString(libMutedStyle.Render(fmt.Sprintf("Showing %d-%d of %d", m.offset+1, end, len(m.sessions))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(libMutedStyle.Render("enter: resume • d: forget • r: refresh"))
	return b.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
