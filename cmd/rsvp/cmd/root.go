// Package cmd contains all CLI commands for the rsvp tool.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/rsvp/internal/config"
	"github.com/f3rmion/rsvp/internal/history"
	"github.com/f3rmion/rsvp/internal/textsource"
	"github.com/f3rmion/rsvp/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgDir  string
	verbose bool
	quiet   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rsvp",
	Short: "Speed read text one word at a time",
	Long: `rsvp is a terminal speed reader using Rapid Serial Visual Presentation.

Words are flashed one at a time at a fixed position, each with its
Optimal Recognition Point (the letter the eye should fix on) highlighted
and aligned, so the eye never has to move.

Running 'rsvp' without arguments launches the interactive TUI.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(os.Stderr)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(nil, false)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default is $HOME/.config/rsvp)")
	rootCmd.PersistentFlags().Float64("wpm", 0, "reading speed in words per minute (overrides the config file)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	viper.BindPFlag("speed_wpm", rootCmd.PersistentFlags().Lookup("wpm"))
}

// initConfig resolves the config directory and binds environment variables.
func initConfig() {
	if cfgDir != "" {
		viper.Set("config_dir", cfgDir)
	} else {
		dir, err := config.GetConfigDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding config directory:", err)
			os.Exit(1)
		}
		viper.SetDefault("config_dir", dir)
	}

	viper.SetEnvPrefix("RSVP")
	viper.AutomaticEnv()
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	return viper.GetString("config_dir")
}

func logLevel() slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func setupLogging(w io.Writer) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel(),
	})
	slog.SetDefault(slog.New(handler))
}

// logToFile sends logging to the log file in the config directory while
// the TUI owns the terminal.
func logToFile(dir string) (func(), error) {
	if err := config.EnsureConfigDir(dir); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "rsvp.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	setupLogging(f)
	return func() {
		setupLogging(os.Stderr)
		f.Close()
	}, nil
}

// loadConfig reads the config file and applies flag and environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(getConfigDir(), config.FileName))
	if err != nil {
		return nil, err
	}
	if viper.IsSet("speed_wpm") {
		cfg.SpeedWPM = viper.GetFloat64("speed_wpm")
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("--wpm: %w", err)
		}
	}
	return cfg, nil
}

// openStore opens the history database, or returns nil when history is off.
func openStore(cfg *config.Config) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg.HistoryPath(getConfigDir()))
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return store, nil
}

// loadInput reads a document from path, or stdin for "-".
func loadInput(path string) (textsource.Document, error) {
	if path == "-" {
		return textsource.Read(os.Stdin, "stdin")
	}
	return textsource.Load(path)
}

// savedPosition returns where reading of doc stopped, or 0.
func savedPosition(store *history.Store, doc textsource.Document) int {
	if doc.Path == "" {
		return 0
	}
	sess, err := store.Progress(context.Background(), doc.Source)
	if err != nil {
		if !errors.Is(err, history.ErrNotFound) {
			slog.Warn("loading progress failed", "source", doc.Source, "err", err)
		}
		return 0
	}
	if sess.Finished() {
		return 0
	}
	slog.Debug("resuming", "source", doc.Source, "position", sess.Position)
	return sess.Position
}

// runTUI launches the interactive application, optionally with a document.
// With resume set the document opens at its saved position.
func runTUI(doc *textsource.Document, resume bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	configDir := getConfigDir()
	closeLog, err := logToFile(configDir)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := tui.Options{
		Config:    cfg,
		ConfigDir: configDir,
		Document:  doc,
		Logger:    slog.Default(),
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Warn("history unavailable", "err", err)
	}
	if store != nil {
		defer store.Close()
		opts.Store = store
		if resume && doc != nil {
			opts.ResumeAt = savedPosition(store, *doc)
		}
	}

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if doc != nil && doc.Source == "stdin" {
		// Keys come from the terminal when the text was piped in.
		programOpts = append(programOpts, tea.WithInputTTY())
	}

	p := tea.NewProgram(tui.NewApp(opts), programOpts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
