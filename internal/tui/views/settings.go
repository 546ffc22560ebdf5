package views

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/rsvp/internal/config"
	"github.com/f3rmion/rsvp/internal/engine"
)

// Settings view styles
var (
	settingsTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FF6B6B")).
				MarginBottom(1)

	settingsPathStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Italic(true).
				MarginBottom(1)

	settingsHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#a8dadc"))

	settingsLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a8dadc")).
				Width(20)

	settingsRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f1faee"))

	settingsMutedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))

	settingsOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8e6cf")).
			Bold(true)

	settingsErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ff6b6b")).
				Bold(true)

	settingsHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				MarginTop(1)
)

// SettingsChangedMsg is sent after a setting was edited.
type SettingsChangedMsg struct {
	Config config.Config
}

// SettingsModel shows and edits the configuration.
type SettingsModel struct {
	config    *config.Config
	configDir string

	speedInput textinput.Model
	editing    bool

	status    string
	statusErr bool

	width  int
	height int
}

// NewSettingsModel creates a settings view for cfg, saved under configDir.
func NewSettingsModel(cfg *config.Config, configDir string) SettingsModel {
	if cfg == nil {
		cfg = config.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "words per minute"
	ti.CharLimit = 6
	ti.Width = 10

	return SettingsModel{
		config:     cfg,
		configDir:  configDir,
		speedInput: ti,
	}
}

// SetSize updates the view dimensions.
func (m *SettingsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Editing reports whether the speed input captures keys.
func (m SettingsModel) Editing() bool {
	return m.editing
}

func (m SettingsModel) changed() tea.Cmd {
	cfg := *m.config
	return func() tea.Msg {
		return SettingsChangedMsg{Config: cfg}
	}
}

// Update handles messages.
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.editing {
			var cmd tea.Cmd
			m.speedInput, cmd = m.speedInput.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.editing {
		switch key.String() {
		case "enter":
			wpm, err := strconv.ParseFloat(strings.TrimSpace(m.speedInput.Value()), 64)
			if err == nil {
				err = engine.ValidateSpeed(wpm)
			}
			if err != nil {
				m.status = fmt.Sprintf("Invalid speed %q", m.speedInput.Value())
				m.statusErr = true
				return m, nil
			}
			m.config.SpeedWPM = wpm
			m.editing = false
			m.speedInput.Blur()
			m.status = fmt.Sprintf("Speed set to %.0f wpm", wpm)
			m.statusErr = false
			return m, m.changed()
		case "esc":
			m.editing = false
			m.speedInput.Blur()
			m.status = ""
			return m, nil
		}
		var cmd tea.Cmd
		m.speedInput, cmd = m.speedInput.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "e", "enter":
		m.editing = true
		m.speedInput.SetValue(strconv.FormatFloat(m.config.SpeedWPM, 'f', -1, 64))
		m.speedInput.CursorEnd()
		m.status = ""
		cmd := m.speedInput.Focus()
		return m, cmd
	case "p":
		m.config.Pacing.Enabled = !m.config.Pacing.Enabled
		return m, m.changed()
	case "b":
		m.config.Display.BigWord = !m.config.Display.BigWord
		return m, m.changed()
	case "w":
		if err := m.save(); err != nil {
			m.status = "Save failed: " + err.Error()
			m.statusErr = true
		} else {
			m.status = "Saved " + m.configPath()
			m.statusErr = false
		}
		return m, nil
	}
	return m, nil
}

func (m SettingsModel) configPath() string {
	return filepath.Join(m.configDir, config.FileName)
}

func (m SettingsModel) save() error {
	if m.configDir == "" {
		return fmt.Errorf("no config directory")
	}
	if err := config.EnsureConfigDir(m.configDir); err != nil {
		return err
	}
	return config.Save(m.configPath(), m.config)
}

// View renders the settings view.
func (m SettingsModel) View() string {
	var b strings.Builder

	b.WriteString(settingsTitleStyle.Render("Settings"))
	b.WriteString("\n")
	if m.configDir != "" {
		b.WriteString(settingsPathStyle.Render("Config: " + m.configPath()))
		b.WriteString("\n")
	}
	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(min(m.width-4, 60), 0))))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(settingsLabelStyle.Render(label))
		b.WriteString(settingsRowStyle.Render(value))
		b.WriteString("\n")
	}

	b.WriteString(settingsHeaderStyle.Render("Playback"))
	b.WriteString("\n")
	if m.editing {
		b.WriteString(settingsLabelStyle.Render("Speed"))
		b.WriteString(m.speedInput.View())
		b.WriteString("\n")
	} else {
		row("Speed", fmt.Sprintf("%.0f wpm (%.0f ms/word)", m.config.SpeedWPM, engine.WPMToMs(m.config.SpeedWPM)))
	}
	row("Speed step", fmt.Sprintf("%d wpm", m.config.Display.SpeedStep))
	row("Pacing", onOff(m.config.Pacing.Enabled))
	if m.config.Pacing.Enabled {
		p := m.config.Pacing
		row("  Long words", fmt.Sprintf("≥ %d letters × %.2f", p.LongWordLength, p.LongWordFactor))
		row("  Clause marks", fmt.Sprintf("× %.2f", p.ClauseFactor))
		row("  Sentence ends", fmt.Sprintf("× %.2f", p.SentenceFactor))
	}

	b.WriteString("\n")
	b.WriteString(settingsHeaderStyle.Render("Display"))
	b.WriteString("\n")
	row("Focus color", m.config.Display.HighlightColor)
	row("Big word", onOff(m.config.Display.BigWord))
	row("Ignored prefix", fmt.Sprintf("%q", m.config.StripChars))

	b.WriteString("\n")
	b.WriteString(settingsHeaderStyle.Render("History"))
	b.WriteString("\n")
	row("Enabled", onOff(m.config.History.Enabled))
	if m.configDir != "" {
		row("Database", m.config.HistoryPath(m.configDir))
	}

	if m.status != "" {
		b.WriteString("\n")
		style := settingsOKStyle
		if m.statusErr {
			style = settingsErrorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	help := "e: edit speed • p: toggle pacing • b: toggle big word • w: write config"
	if m.editing {
		help = "enter: apply • esc: cancel"
	}
	b.WriteString(settingsHelpStyle.Render(help))

	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return settingsMutedStyle.Render("off")
}
