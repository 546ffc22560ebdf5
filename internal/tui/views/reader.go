package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/rsvp/internal/clipboard"
	"github.com/f3rmion/rsvp/internal/engine"
	"github.com/f3rmion/rsvp/internal/textsource"
	"github.com/f3rmion/rsvp/internal/tui/bigword"
	"github.com/f3rmion/rsvp/internal/words"
	"github.com/mattn/go-runewidth"
)

// Reader view styles
var (
	readerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FF6B6B"))

	readerSourceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Italic(true)

	readerWordStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f1faee"))

	readerMarkerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3d5a80"))

	readerInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8dadc"))

	readerHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	readerCopiedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a8e6cf")).
				Bold(true)

	readerErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ff6b6b")).
				Bold(true)

	stateColors = map[engine.State]lipgloss.Color{
		engine.StateIdle:     lipgloss.Color("#666666"),
		engine.StatePlaying:  lipgloss.Color("#4ecdc4"),
		engine.StatePaused:   lipgloss.Color("#ff9900"),
		engine.StateFinished: lipgloss.Color("#a8e6cf"),
	}
)

// WordMsg carries a word shown by the engine.
type WordMsg struct {
	Word string
}

// StateMsg carries a playback state change.
type StateMsg struct {
	State engine.State
}

type readerClearStatusMsg struct{}

func readerClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return readerClearStatusMsg{}
	})
}

// ReaderModel is the RSVP reader view.
type ReaderModel struct {
	engine   *engine.Engine
	analyzer *words.Analyzer
	big      *bigword.Renderer
	progress progress.Model

	highlight lipgloss.Style
	speedStep float64

	doc     textsource.Document
	word    string
	showBig bool

	status    string
	statusErr bool

	width  int
	height int
}

// NewReaderModel creates a reader view driving eng. big may be nil.
func NewReaderModel(eng *engine.Engine, analyzer *words.Analyzer, big *bigword.Renderer, highlightColor string, speedStep int, showBig bool) ReaderModel {
	if analyzer == nil {
		analyzer = words.DefaultAnalyzer
	}
	if speedStep <= 0 {
		speedStep = 25
	}
	return ReaderModel{
		engine:    eng,
		analyzer:  analyzer,
		big:       big,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		highlight: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(highlightColor)),
		speedStep: float64(speedStep),
		showBig:   showBig && big != nil,
	}
}

// SetSize updates the view dimensions.
func (m *ReaderModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.progress.Width = max(10, min(width-4, 60))
}

// SetDocument loads doc into the engine and previews the word at resumeAt.
func (m *ReaderModel) SetDocument(doc textsource.Document, resumeAt int) {
	m.doc = doc
	m.word = ""
	m.status = ""
	m.engine.LoadText(doc.Text)
	if resumeAt > 0 && resumeAt < m.engine.Len() {
		m.engine.Seek(resumeAt)
	} else {
		m.engine.Seek(0)
	}
	if w, ok := m.engine.Current(); ok {
		m.word = w
	}
}

// SetShowBig switches block-art rendering on or off when available.
func (m *ReaderModel) SetShowBig(on bool) {
	m.showBig = on && m.big != nil
}

// Document returns the loaded document.
func (m ReaderModel) Document() textsource.Document {
	return m.doc
}

// Update handles messages.
func (m ReaderModel) Update(msg tea.Msg) (ReaderModel, tea.Cmd) {
	switch msg := msg.(type) {
	case WordMsg:
		m.word = msg.Word
		return m, nil

	case StateMsg:
		if msg.State == engine.StateIdle {
			if w, ok := m.engine.Current(); ok {
				m.word = w
			}
		}
		return m, nil

	case readerClearStatusMsg:
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case " ", "space", "enter", "p":
			if m.engine.State() == engine.StatePlaying {
				m.engine.Pause()
			} else {
				m.engine.Start()
			}
			return m, nil
		case "r":
			m.engine.Reset()
			return m, nil
		case "R":
			m.engine.Reset()
			m.engine.Start()
			return m, nil
		case "+", "=", "up", "k":
			m.engine.SetSpeed(m.engine.Speed() + m.speedStep)
			return m, nil
		case "-", "_", "down", "j":
			if next := m.engine.Speed() - m.speedStep; next >= m.speedStep {
				m.engine.SetSpeed(next)
			}
			return m, nil
		case "left", "h":
			m.engine.Seek(m.engine.Position() - 1)
			return m, nil
		case "right", "l":
			m.engine.Seek(m.engine.Position() + 1)
			return m, nil
		case "b":
			if m.big != nil {
				m.showBig = !m.showBig
			}
			return m, nil
		case "y":
			if m.word == "" {
				return m, nil
			}
			if err := clipboard.Write(m.analyzer.Describe(m.word).String()); err != nil {
				m.status = "Copy failed: " + err.Error()
				m.statusErr = true
			} else {
				m.status = "Copied word info"
				m.statusErr = false
			}
			return m, readerClearStatusAfter(2 * time.Second)
		}
	}

	return m, nil
}

// View renders the reader.
func (m ReaderModel) View() string {
	var b strings.Builder

	b.WriteString(readerTitleStyle.Render("Reader"))
	b.WriteString("\n")
	if m.doc.Title != "" {
		b.WriteString(readerSourceStyle.Render(m.doc.Title))
	} else {
		b.WriteString(readerSourceStyle.Render("No text loaded - paste text or open a file"))
	}
	b.WriteString("\n\n")

	state := m.engine.State()
	total := m.engine.Len()
	position := m.engine.Position()

	pivot := max(m.width/3, 12)
	b.WriteString(m.renderWord(pivot))
	b.WriteString("\n\n")

	// Status line
	stateLabel := lipgloss.NewStyle().Bold(true).Foreground(stateColors[state]).Render(strings.ToUpper(string(state)))
	shown := min(position+1, total)
	if state == engine.StateFinished {
		shown = total
	}
	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		stateLabel,
		readerInfoStyle.Render(fmt.Sprintf("%.0f wpm (%.0f ms)", m.engine.Speed(), engine.WPMToMs(m.engine.Speed()))),
		readerInfoStyle.Render(fmt.Sprintf("word %d/%d", shown, total)),
	))

	percent := 0.0
	if total > 0 {
		percent = float64(shown) / float64(total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	if m.word != "" {
		b.WriteString(readerSourceStyle.Render(m.analyzer.Describe(m.word).String()))
		b.WriteString("\n")
	}

	if m.status != "" {
		style := readerCopiedStyle
		if m.statusErr {
			style = readerErrorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	help := "space: play/pause • r: reset • R: replay • +/-: speed • ←/→: step • y: copy info"
	if m.big != nil {
		help += " • b: big word"
	}
	b.WriteString(readerHelpStyle.Render(help))

	return b.String()
}

// renderWord draws the current word with its focus letter on column pivot.
func (m ReaderModel) renderWord(pivot int) string {
	marker := readerMarkerStyle.Render(strings.Repeat(" ", pivot) + "▼")
	markerBottom := readerMarkerStyle.Render(strings.Repeat(" ", pivot) + "▲")

	if m.word == "" {
		return marker + "\n\n" + markerBottom
	}

	if m.showBig {
		if big := m.renderBig(pivot); big != "" {
			return big
		}
	}

	lead, parts := SplitForDisplay(m.analyzer, m.word)
	pad := max(pivot-runewidth.StringWidth(lead+parts.Before), 0)

	line := strings.Repeat(" ", pad) +
		readerWordStyle.Render(lead+parts.Before) +
		m.highlight.Render(parts.Focus) +
		readerWordStyle.Render(parts.After)

	return marker + "\n" + line + "\n" + markerBottom
}

func (m ReaderModel) renderBig(pivot int) string {
	_, parts := SplitForDisplay(m.analyzer, m.word)
	block := m.big.Render(parts, 6)
	if block.Empty() || block.Width > m.width {
		return ""
	}

	center := (block.FocusStart + block.FocusEnd) / 2
	pad := strings.Repeat(" ", max(pivot-center, 0))

	var lines []string
	for _, line := range block.Lines {
		runes := []rune(line)
		lines = append(lines, pad+
			readerWordStyle.Render(string(runes[:block.FocusStart]))+
			m.highlight.Render(string(runes[block.FocusStart:block.FocusEnd]))+
			readerWordStyle.Render(string(runes[block.FocusEnd:])))
	}
	return strings.Join(lines, "\n")
}

// SplitForDisplay splits a raw word for display: lead holds the leading
// characters the analyzer ignores, parts split the rest around the focus
// letter. lead + parts == word.
func SplitForDisplay(a *words.Analyzer, word string) (lead string, parts words.Parts) {
	clean := a.Clean(word)
	return word[:len(word)-len(clean)], a.SplitWord(word)
}
