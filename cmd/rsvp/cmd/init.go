package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/f3rmion/rsvp/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize rsvp configuration",
	Long: `Write the default configuration file to your config directory.

Edit config.yaml afterwards to change the reading speed, enable
punctuation pacing or pick the focus letter color.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "overwrite existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	configDir := getConfigDir()
	path := filepath.Join(configDir, config.FileName)

	if err := writeDefaultConfig(configDir, force); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n\n", path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Edit config.yaml to set your reading speed")
	fmt.Fprintln(out, "  2. Run 'rsvp read <file>' to start reading")
	return nil
}

func writeDefaultConfig(configDir string, force bool) error {
	path := filepath.Join(configDir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	}
	if err := config.EnsureConfigDir(configDir); err != nil {
		return err
	}
	return config.Save(path, config.Default())
}
