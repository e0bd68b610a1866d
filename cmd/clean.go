package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove temp files left by interrupted path writes",
	Long: `Clean removes leftover <name>.path.tmp files from the paths directory.

Paths are written to a temp file and renamed into place, so a crash during a
write leaves the previous <name>.path intact plus a stray temp file. Stored
paths are never touched.

Examples:
  npcpath clean
  npcpath clean --paths-dir /srv/world/paths`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd, nil)
	if err != nil {
		return err
	}

	removed, err := env.store.CleanTemp()
	for _, f := range removed {
		fmt.Fprintf(cmd.ErrOrStderr(), "npcpath: removed %s\n", f)
	}
	if err != nil {
		return fmt.Errorf("failed to clean paths directory: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "npcpath: %d temp files removed from %s\n", len(removed), env.store.Dir)
	return nil
}
