package cmd

import (
	"fmt"
	"io"

	"github.com/f3rmion/rsvp/internal/words"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <word>...",
	Short: "Show the focus letter of words",
	Long: `Show how words are split around their Optimal Recognition Point.

Leading quotes and brackets are ignored when choosing the focus letter.

Example:
  rsvp analyze reader
  rsvp analyze '"Hello' recognition`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printAnalysis(cmd.OutOrStdout(), cfg.Analyzer(), args)
	return nil
}

func printAnalysis(w io.Writer, a *words.Analyzer, args []string) {
	for _, arg := range args {
		for _, word := range words.Tokenize(arg) {
			fmt.Fprintln(w, a.Describe(word))
		}
	}
}
