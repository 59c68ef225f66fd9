package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskgraph/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	var gitignore bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory",
		Long: `Create the data directory.

This will:
  1. Create the data directory and its memory/ backup folder
  2. Write a default settings.yaml if none exists
  3. Add the data directory to the .gitignore next to it`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.open(); err != nil {
				return err
			}
			created, err := config.InitDataDir(a.dataDir)
			if err != nil {
				return err
			}
			if gitignore {
				if err := config.AddToGitignore(a.dataDir); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if created {
				fmt.Fprintf(w, "%s Initialized %s\n", styleSuccess.Render("✓"), a.dataDir)
			} else {
				fmt.Fprintf(w, "%s already initialized\n", a.dataDir)
			}
			fmt.Fprintln(w, "\nNext steps:")
			fmt.Fprintln(w, "  - Run 'taskgraph split <file>' to plan tasks")
			fmt.Fprintln(w, "  - Run 'taskgraph list' to see all tasks")
			return nil
		},
	}
	cmd.Flags().BoolVar(&gitignore, "gitignore", true, "Add the data directory to .gitignore")
	return cmd
}
