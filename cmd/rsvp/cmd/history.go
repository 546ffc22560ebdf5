package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/f3rmion/rsvp/internal/history"
	"github.com/f3rmion/rsvp/internal/textsource"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent reading sessions",
	Long: `List recently read files with their progress.

Example:
  rsvp history
  rsvp history --limit 5
  rsvp history --forget book.txt`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 20, "number of sessions to show")
	historyCmd.Flags().String("forget", "", "remove the session of a file")
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	forget, _ := cmd.Flags().GetString("forget")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("reading history is disabled in the config")
	}
	defer store.Close()

	ctx := context.Background()
	if forget != "" {
		if err := store.Delete(ctx, textsource.SourceKey(forget)); err != nil {
			return fmt.Errorf("forgetting %s: %w", forget, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s\n", forget)
		return nil
	}

	sessions, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	printSessions(cmd.OutOrStdout(), sessions)
	return nil
}

func printSessions(w io.Writer, sessions []history.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No reading sessions yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tPROGRESS\tWPM\tLAST READ\tSOURCE")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%d/%d (%.0f%%)\t%.0f\t%s\t%s\n",
			s.Title, s.Position, s.WordCount, s.Percent(), s.WPM,
			s.UpdatedAt.Format(time.DateTime), s.Source)
	}
	tw.Flush()
}
