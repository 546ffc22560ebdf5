package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/f3rmion/rsvp/internal/engine"
	"github.com/f3rmion/rsvp/internal/textsource"
	"github.com/f3rmion/rsvp/internal/words"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file|->",
	Short: "Count words and estimate reading time",
	Long: `Count the words of a text and estimate how long reading it takes
at the configured speed, with and without punctuation pacing.

Example:
  rsvp stats book.txt
  rsvp stats --wpm 600 book.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	doc, err := loadInput(args[0])
	if err != nil {
		return err
	}

	// Estimate with the configured factors even when pacing is switched off.
	paced := *cfg
	paced.Pacing.Enabled = true
	printStats(cmd.OutOrStdout(), doc, cfg.SpeedWPM, paced.Pacer())
	return nil
}

func printStats(w io.Writer, doc textsource.Document, wpm float64, pacer engine.Pacer) {
	list := words.Tokenize(doc.Text)

	longest := ""
	for _, word := range list {
		if len([]rune(word)) > len([]rune(longest)) {
			longest = word
		}
	}

	fmt.Fprintf(w, "Source:    %s\n", doc.Title)
	fmt.Fprintf(w, "Words:     %d\n", len(list))
	if longest != "" {
		fmt.Fprintf(w, "Longest:   %s\n", longest)
	}
	fmt.Fprintf(w, "Speed:     %.0f wpm (%.0f ms/word)\n", wpm, engine.WPMToMs(wpm))
	fmt.Fprintf(w, "Constant:  %s\n", engine.EstimateDuration(list, wpm, engine.ConstantPacer{}).Round(time.Second))
	fmt.Fprintf(w, "Paced:     %s\n", engine.EstimateDuration(list, wpm, pacer).Round(time.Second))
}
