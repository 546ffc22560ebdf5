package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/rsvp/internal/engine"
	"github.com/f3rmion/rsvp/internal/history"
	"github.com/f3rmion/rsvp/internal/textsource"
	"github.com/f3rmion/rsvp/internal/tui/views"
	"github.com/f3rmion/rsvp/internal/words"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read [file|-]",
	Short: "Speed read a text file",
	Long: `Read a text file (or stdin with '-') one word at a time.

By default the text opens in the interactive reader. With --plain the
words are flashed on a single terminal line until the text ends or
Ctrl+C is pressed.

Reading progress of files is saved to the history, and --resume
continues where the last session stopped.

Example:
  rsvp read book.txt
  rsvp read --resume book.txt
  cat notes.md | rsvp read --plain --wpm 450 -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().Bool("resume", false, "continue from the saved position")
	readCmd.Flags().Bool("plain", false, "print words on one line instead of the TUI")
}

func runRead(cmd *cobra.Command, args []string) error {
	resume, _ := cmd.Flags().GetBool("resume")
	plain, _ := cmd.Flags().GetBool("plain")

	if len(args) == 0 {
		if plain {
			return errors.New("--plain needs a file or '-'")
		}
		return runTUI(nil, false)
	}

	doc, err := loadInput(args[0])
	if err != nil {
		return err
	}

	if !plain {
		return runTUI(&doc, resume)
	}
	return runPlain(cmd.Context(), cmd.OutOrStdout(), doc, resume)
}

// runPlain flashes the document on one terminal line.
func runPlain(ctx context.Context, out io.Writer, doc textsource.Document, resume bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Warn("history unavailable", "err", err)
	}
	if store != nil {
		defer store.Close()
	}

	done := make(chan struct{})
	var once sync.Once
	renderer := newPlainRenderer(out, cfg.Analyzer(), cfg.Display.HighlightColor)
	eng := engine.New(renderer, engine.Config{
		Speed: cfg.SpeedWPM,
		Pacer: cfg.Pacer(),
		OnStateChange: func(s engine.State) {
			if s == engine.StateFinished {
				once.Do(func() { close(done) })
			}
		},
		Logger: slog.Default(),
	})
	defer eng.Close()

	eng.LoadText(doc.Text)
	if resume && store != nil {
		if pos := savedPosition(store, doc); pos > 0 {
			eng.Seek(pos)
		}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	start := time.Now()
	from := eng.Position()
	eng.Start()

	select {
	case <-done:
	case <-ctx.Done():
		eng.Pause()
	}
	fmt.Fprintln(out)

	read := eng.Position() - from
	if eng.State() == engine.StatePaused {
		// The word on screen was seen.
		read++
	}
	if !quiet {
		fmt.Fprintf(out, "Read %d of %d words in %s (%.0f wpm)\n",
			read, eng.Len(), time.Since(start).Round(time.Second), eng.Speed())
	}

	if store != nil && doc.Path != "" {
		_, err := store.SaveProgress(context.Background(), history.Session{
			Source:    doc.Source,
			Title:     doc.Title,
			WordCount: eng.Len(),
			Position:  eng.Position(),
			WPM:       eng.Speed(),
		})
		if err != nil {
			return fmt.Errorf("saving progress: %w", err)
		}
	}

	return nil
}

// plainRenderer redraws one terminal line per word, the focus letter
// pinned to a fixed column.
type plainRenderer struct {
	w        io.Writer
	analyzer *words.Analyzer
	pivot    int
	focus    lipgloss.Style
	rest     lipgloss.Style
}

func newPlainRenderer(w io.Writer, analyzer *words.Analyzer, color string) *plainRenderer {
	return &plainRenderer{
		w:        w,
		analyzer: analyzer,
		pivot:    12,
		focus:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)),
		rest:     lipgloss.NewStyle().Bold(true),
	}
}

// ShowWord implements engine.Renderer.
func (r *plainRenderer) ShowWord(word string) {
	fmt.Fprint(r.w, "\r\x1b[K"+r.format(word))
}

func (r *plainRenderer) format(word string) string {
	lead, parts := views.SplitForDisplay(r.analyzer, word)
	pad := max(r.pivot-runewidth.StringWidth(lead+parts.Before), 0)
	return strings.Repeat(" ", pad) +
		r.rest.Render(lead+parts.Before) +
		r.focus.Render(parts.Focus) +
		r.rest.Render(parts.After)
}
