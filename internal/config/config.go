// Package config handles loading and saving user configuration for rsvp.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/f3rmion/rsvp/internal/engine"
	"github.com/f3rmion/rsvp/internal/words"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file inside the config directory.
const FileName = "config.yaml"

// Config holds all user configuration.
type Config struct {
	SpeedWPM   float64       `yaml:"speed_wpm"`
	StripChars string        `yaml:"strip_chars"` // Leading characters ignored for the focus letter
	Pacing     PacingConfig  `yaml:"pacing"`
	Display    DisplayConfig `yaml:"display"`
	History    HistoryConfig `yaml:"history"`
}

// PacingConfig controls per-word delay adjustments.
type PacingConfig struct {
	Enabled        bool    `yaml:"enabled"`
	LongWordLength int     `yaml:"long_word_length"`
	LongWordFactor float64 `yaml:"long_word_factor"`
	ClauseFactor   float64 `yaml:"clause_factor"`   // , ; : – —
	SentenceFactor float64 `yaml:"sentence_factor"` // . ! ? …
}

// DisplayConfig holds reader appearance settings.
type DisplayConfig struct {
	HighlightColor string `yaml:"highlight_color"`
	BigWord        bool   `yaml:"big_word"` // Render the word as block art
	SpeedStep      int    `yaml:"speed_step"`
}

// HistoryConfig controls the reading history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Defaults to history.db in the config dir
}

// Default returns the built-in configuration.
func Default() *Config {
	p := engine.DefaultPunctuationPacer()
	return &Config{
		SpeedWPM:   engine.DefaultSpeed,
		StripChars: words.DefaultStripChars,
		Pacing: PacingConfig{
			Enabled:        false,
			LongWordLength: p.LongWordLength,
			LongWordFactor: p.LongWordFactor,
			ClauseFactor:   p.ClauseFactor,
			SentenceFactor: p.SentenceFactor,
		},
		Display: DisplayConfig{
			HighlightColor: "#ff6b6b",
			BigWord:        false,
			SpeedStep:      25,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// Validate checks values that would break playback.
func (c *Config) Validate() error {
	if err := engine.ValidateSpeed(c.SpeedWPM); err != nil {
		return fmt.Errorf("speed_wpm %v: %w", c.SpeedWPM, err)
	}
	if c.Pacing.LongWordLength < 0 {
		return errors.New("pacing.long_word_length must not be negative")
	}
	if c.Display.SpeedStep <= 0 {
		return errors.New("display.speed_step must be positive")
	}
	return nil
}

// Pacer returns the pacer selected by the configuration.
func (c *Config) Pacer() engine.Pacer {
	if !c.Pacing.Enabled {
		return engine.ConstantPacer{}
	}
	return engine.PunctuationPacer{
		LongWordLength: c.Pacing.LongWordLength,
		LongWordFactor: c.Pacing.LongWordFactor,
		ClauseFactor:   c.Pacing.ClauseFactor,
		SentenceFactor: c.Pacing.SentenceFactor,
	}
}

// Analyzer returns a word analyzer using the configured strip characters.
func (c *Config) Analyzer() *words.Analyzer {
	if c.StripChars == "" {
		return words.DefaultAnalyzer
	}
	return words.NewAnalyzer(c.StripChars)
}

// HistoryPath resolves the history database path relative to dir.
func (c *Config) HistoryPath(dir string) string {
	if c.History.Path == "" {
		return filepath.Join(dir, "history.db")
	}
	if filepath.IsAbs(c.History.Path) {
		return c.History.Path
	}
	return filepath.Join(dir, c.History.Path)
}

// Load reads the configuration at path on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to path.
func Save(path string, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rsvp"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rsvp"), nil
}

// EnsureConfigDir creates dir if it doesn't exist.
func EnsureConfigDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return nil
}
