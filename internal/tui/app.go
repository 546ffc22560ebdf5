package tui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/rsvp/internal/config"
	"github.com/f3rmion/rsvp/internal/engine"
	"github.com/f3rmion/rsvp/internal/history"
	"github.com/f3rmion/rsvp/internal/textsource"
	"github.com/f3rmion/rsvp/internal/tui/bigword"
	"github.com/f3rmion/rsvp/internal/tui/views"
)

// ViewType represents the current active view
type ViewType int

const (
	ViewReader ViewType = iota
	ViewPaste
	ViewOpen
	ViewLibrary
	ViewSettings
)

// MenuItem represents a sidebar menu entry
type MenuItem struct {
	Label    string
	View     ViewType
	Shortcut string
}

// ViewSwitchMsg requests a view change
type ViewSwitchMsg struct {
	View ViewType
}

// DocumentLoadedMsg is sent when a document has been read for the reader.
type DocumentLoadedMsg struct {
	Document textsource.Document
	ResumeAt int
	Err      error
}

// ProgressSavedMsg reports the outcome of saving reading progress.
type ProgressSavedMsg struct {
	Err error
}

// Store is the history store used by the app.
type Store interface {
	views.SessionStore
	SaveProgress(ctx context.Context, sess history.Session) (history.Session, error)
	Progress(ctx context.Context, source string) (history.Session, error)
}

// Options configures the app.
type Options struct {
	Config    *config.Config
	ConfigDir string

	// Store keeps reading progress. Nil disables history.
	Store Store

	// Document is opened in the reader on start when set.
	Document *textsource.Document
	ResumeAt int

	Logger *slog.Logger
}

// AppModel is the main TUI model
type AppModel struct {
	config    *config.Config
	configDir string
	store     Store
	logger    *slog.Logger

	engine *engine.Engine
	bridge *bridge

	// Layout state
	width        int
	height       int
	sidebarWidth int
	ready        bool

	// Navigation
	currentView   ViewType
	menuItems     []MenuItem
	selectedMenu  int
	sidebarActive bool

	// Sub-models (views)
	readerView   views.ReaderModel
	pasteView    views.PasteModel
	openView     views.FilePickerModel
	libraryView  views.LibraryModel
	settingsView views.SettingsModel

	err      error
	showHelp bool
}

// NewApp creates the TUI application and its playback engine.
func NewApp(opts Options) AppModel {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	br := newBridge()
	eng := engine.New(nil, engine.Config{
		Speed:         cfg.SpeedWPM,
		OnStateChange: br.onState,
		OnWordUpdate:  br.onWord,
		Pacer:         cfg.Pacer(),
		Logger:        logger,
	})

	big, err := bigword.New()
	if err != nil {
		logger.Warn("big word rendering unavailable", "err", err)
		big = nil
	}

	menuItems := []MenuItem{
		{Label: "Reader", View: ViewReader, Shortcut: "1"},
		{Label: "Paste", View: ViewPaste, Shortcut: "2"},
		{Label: "Open", View: ViewOpen, Shortcut: "3"},
		{Label: "Library", View: ViewLibrary, Shortcut: "4"},
		{Label: "Settings", View: ViewSettings, Shortcut: "5"},
	}

	var libStore views.SessionStore
	if opts.Store != nil {
		libStore = opts.Store
	}

	app := AppModel{
		config:       cfg,
		configDir:    opts.ConfigDir,
		store:        opts.Store,
		logger:       logger,
		engine:       eng,
		bridge:       br,
		sidebarWidth: 18,
		menuItems:    menuItems,

		readerView:   views.NewReaderModel(eng, cfg.Analyzer(), big, cfg.Display.HighlightColor, cfg.Display.SpeedStep, cfg.Display.BigWord),
		pasteView:    views.NewPasteModel(),
		openView:     views.NewFilePickerModel(""),
		libraryView:  views.NewLibraryModel(libStore),
		settingsView: views.NewSettingsModel(cfg, opts.ConfigDir),
	}

	if opts.Document != nil {
		app.readerView.SetDocument(*opts.Document, opts.ResumeAt)
		app.currentView = ViewReader
	} else {
		app.currentView = ViewPaste
		app.selectedMenu = 1
		app.pasteView.Focus()
	}

	return app
}

// Engine returns the playback engine driven by the app.
func (m AppModel) Engine() *engine.Engine {
	return m.engine
}

// Init initializes the model
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bridge.listen(), m.libraryView.Refresh())
}

// inputCaptured reports whether the active view consumes printable keys.
func (m AppModel) inputCaptured() bool {
	if m.sidebarActive {
		return false
	}
	switch m.currentView {
	case ViewPaste:
		return m.pasteView.Focused()
	case ViewSettings:
		return m.settingsView.Editing()
	}
	return false
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		if m.inputCaptured() {
			if m.currentView == ViewPaste && msg.String() == "esc" {
				m.pasteView.Blur()
				return m, nil
			}
			break
		}

		switch msg.String() {
		case "q":
			return m.quit()
		case "?":
			m.showHelp = true
			return m, nil
		case "esc":
			if m.sidebarActive {
				return m.quit()
			}
			m.sidebarActive = true
			return m, nil
		case "1", "2", "3", "4", "5":
			idx := int(msg.String()[0] - '1')
			return m.switchView(m.menuItems[idx].View)
		case "tab":
			m.sidebarActive = !m.sidebarActive
			return m, nil
		}

		if m.sidebarActive {
			switch msg.String() {
			case "j", "down":
				if m.selectedMenu < len(m.menuItems)-1 {
					m.selectedMenu++
				}
				return m, nil
			case "k", "up":
				if m.selectedMenu > 0 {
					m.selectedMenu--
				}
				return m, nil
			case "enter", "l", "right":
				return m.switchView(m.menuItems[m.selectedMenu].View)
			}
		}

		if m.currentView == ViewPaste && !m.pasteView.Focused() {
			switch msg.String() {
			case "enter", "i":
				cmd := m.pasteView.Focus()
				return m, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentWidth := m.width - m.sidebarWidth - 4
		contentHeight := m.height - 2

		m.readerView.SetSize(contentWidth, contentHeight)
		m.pasteView.SetSize(contentWidth, contentHeight)
		m.openView.SetSize(contentWidth, contentHeight)
		m.libraryView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)

		return m, nil

	case views.WordMsg:
		m.readerView, _ = m.readerView.Update(msg)
		return m, m.bridge.listen()

	case views.StateMsg:
		m.readerView, _ = m.readerView.Update(msg)
		cmds = append(cmds, m.bridge.listen())
		if msg.State == engine.StatePaused || msg.State == engine.StateFinished {
			cmds = append(cmds, m.saveProgress())
		}
		return m, tea.Batch(cmds...)

	case ViewSwitchMsg:
		return m.switchView(msg.View)

	case views.FileSelectedMsg:
		return m, tea.Batch(m.saveProgress(), m.openFile(msg.Path, -1))

	case views.SessionSelectedMsg:
		resume := msg.Session.Position
		if msg.Session.Finished() {
			resume = 0
		}
		return m, tea.Batch(m.saveProgress(), m.openFile(msg.Session.Source, resume))

	case views.TextSubmittedMsg:
		doc, err := textsource.FromString(msg.Text, "paste", "Pasted text")
		return m, tea.Batch(m.saveProgress(), func() tea.Msg {
			return DocumentLoadedMsg{Document: doc, Err: err}
		})

	case DocumentLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.logger.Error("loading document failed", "err", msg.Err)
			return m, nil
		}
		m.err = nil
		m.readerView.SetDocument(msg.Document, msg.ResumeAt)
		m.pasteView.Blur()
		m.logger.Info("document loaded", "source", msg.Document.Source, "words", m.engine.Len(), "resume_at", msg.ResumeAt)
		return m.switchView(ViewReader)

	case ProgressSavedMsg:
		if msg.Err != nil {
			m.logger.Warn("saving progress failed", "err", msg.Err)
			return m, nil
		}
		cmd := m.libraryView.Refresh()
		return m, cmd

	case views.SessionsLoadedMsg:
		// Results may arrive while another view is active.
		m.libraryView, _ = m.libraryView.Update(msg)
		return m, nil

	case views.SettingsChangedMsg:
		m.applySettings(msg.Config)
		return m, nil
	}

	// Delegate to active view if not in sidebar mode
	if !m.sidebarActive {
		var cmd tea.Cmd
		switch m.currentView {
		case ViewReader:
			m.readerView, cmd = m.readerView.Update(msg)
		case ViewPaste:
			m.pasteView, cmd = m.pasteView.Update(msg)
		case ViewOpen:
			m.openView, cmd = m.openView.Update(msg)
		case ViewLibrary:
			m.libraryView, cmd = m.libraryView.Update(msg)
		case ViewSettings:
			m.settingsView, cmd = m.settingsView.Update(msg)
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// switchView activates v, moving focus in and out of the paste editor.
func (m AppModel) switchView(v ViewType) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.sidebarActive = false
	for i, item := range m.menuItems {
		if item.View == v {
			m.selectedMenu = i
			break
		}
	}

	if v != ViewReader && m.engine.State() == engine.StatePlaying {
		m.engine.Pause()
	}

	switch v {
	case ViewPaste:
		cmd := m.pasteView.Focus()
		return m, cmd
	case ViewLibrary:
		m.pasteView.Blur()
		cmd := m.libraryView.Refresh()
		return m, cmd
	default:
		m.pasteView.Blur()
	}
	return m, nil
}

func (m *AppModel) applySettings(cfg config.Config) {
	*m.config = cfg
	m.engine.SetSpeed(cfg.SpeedWPM)
	m.engine.SetPacer(cfg.Pacer())
	m.readerView.SetShowBig(cfg.Display.BigWord)
}

// openFile reads path and looks up its saved position. resumeAt < 0 means
// use the stored position, if any.
func (m AppModel) openFile(path string, resumeAt int) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		doc, err := textsource.Load(path)
		if err != nil {
			return DocumentLoadedMsg{Err: err}
		}
		if resumeAt < 0 {
			resumeAt = 0
			if store != nil {
				sess, err := store.Progress(context.Background(), doc.Source)
				if err == nil && !sess.Finished() {
					resumeAt = sess.Position
				}
			}
		}
		return DocumentLoadedMsg{Document: doc, ResumeAt: resumeAt}
	}
}

// saveProgress snapshots the reader position for file-backed documents.
func (m AppModel) saveProgress() tea.Cmd {
	doc := m.readerView.Document()
	if m.store == nil || doc.Path == "" || m.engine.Len() == 0 {
		return nil
	}

	sess := history.Session{
		Source:    doc.Source,
		Title:     doc.Title,
		WordCount: m.engine.Len(),
		Position:  m.engine.Position(),
		WPM:       m.engine.Speed(),
	}
	store := m.store
	return func() tea.Msg {
		_, err := store.SaveProgress(context.Background(), sess)
		return ProgressSavedMsg{Err: err}
	}
}

func (m AppModel) quit() (tea.Model, tea.Cmd) {
	m.engine.Pause()
	if save := m.saveProgress(); save != nil {
		if msg, ok := save().(ProgressSavedMsg); ok && msg.Err != nil {
			m.logger.Warn("saving progress failed", "err", msg.Err)
		}
	}
	m.engine.Close()
	m.bridge.close()
	return m, tea.Quit
}

// View renders the UI
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	sidebar := m.renderSidebar()

	var content string
	switch m.currentView {
	case ViewReader:
		content = m.readerView.View()
	case ViewPaste:
		content = m.pasteView.View()
	case ViewOpen:
		content = m.openView.View()
	case ViewLibrary:
		content = m.libraryView.View()
	case ViewSettings:
		content = m.settingsView.View()
	}
	if m.err != nil {
		content = ErrorStyle.Render("Error: "+m.err.Error()) + "\n\n" + content
	}

	contentWidth := m.width - m.sidebarWidth - 4
	mainContent := ContentStyle.
		Width(contentWidth).
		Height(m.height - 2).
		Render(content)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, mainContent)
}

// renderSidebar renders the sidebar navigation
func (m AppModel) renderSidebar() string {
	var items []string

	items = append(items, SidebarTitleStyle.Render("  ▼ RSVP  "))
	items = append(items, "")

	for i, item := range m.menuItems {
		label := item.Shortcut + ". " + item.Label

		var style lipgloss.Style
		switch {
		case i == m.selectedMenu && m.sidebarActive:
			style = SidebarItemActiveStyle
		case i == m.selectedMenu:
			style = SidebarItemStyle.Bold(true).Foreground(ColorSecondary)
		default:
			style = SidebarItemStyle
		}
		items = append(items, style.Render(label))
	}

	usedHeight := len(items) + 4
	for i := 0; i < m.height-usedHeight-2; i++ {
		items = append(items, "")
	}

	items = append(items, SidebarHelpStyle.Render("? Help  q Quit"))

	return SidebarStyle.
		Width(m.sidebarWidth).
		Height(m.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

// renderHelp renders the help overlay
func (m AppModel) renderHelp() string {
	var b strings.Builder

	section := func(title string, keys ...[2]string) {
		b.WriteString(HelpSectionStyle.Render(title))
		b.WriteString("\n")
		for _, k := range keys {
			b.WriteString(HelpKeyStyle.Render(k[0]))
			b.WriteString(HelpDescStyle.Render(k[1]))
			b.WriteString("\n")
		}
	}

	b.WriteString(HelpTitleStyle.Render("RSVP - Rapid Serial Visual Presentation"))
	b.WriteString("\n\n")

	section("Global Keys",
		[2]string{"1-5", "Switch views"},
		[2]string{"tab", "Toggle sidebar focus"},
		[2]string{"?", "Show this help"},
		[2]string{"q", "Quit"},
	)
	section("Reader",
		[2]string{"space", "Start / pause"},
		[2]string{"r / R", "Reset / replay"},
		[2]string{"+ / -", "Faster / slower"},
		[2]string{"←/→", "Step while paused"},
		[2]string{"y", "Copy word info"},
		[2]string{"b", "Toggle big word"},
	)
	section("Paste",
		[2]string{"ctrl+s", "Read the text"},
		[2]string{"esc", "Leave the editor"},
	)
	section("Open / Library",
		[2]string{"enter", "Open / resume"},
		[2]string{"backspace", "Parent directory"},
		[2]string{"d", "Forget session"},
	)

	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("Press any key to close"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, HelpBoxStyle.Render(b.String()))
}
