package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskgraph/internal/config"
	"github.com/watchfire-io/taskgraph/internal/models"
)

func newSettingsCmd(a *app) *cobra.Command {
	var (
		passingScore int
		pageSize     int
		backup       bool
	)
	cmd := &cobra.Command{
		Use:     "settings",
		Aliases: []string{"config"},
		Short:   "Show or change engine settings",
		Long: `Show engine settings, or change them with flags.

Settings live in settings.yaml inside the data directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.open()
			if err != nil {
				return err
			}
			settings := mgr.Settings()

			flags := cmd.Flags()
			if !flags.Changed("passing-score") && !flags.Changed("page-size") && !flags.Changed("backup-on-clear") {
				printSettings(cmd.OutOrStdout(), a.dataDir, &settings)
				return nil
			}

			if flags.Changed("passing-score") {
				if passingScore < 1 || passingScore > 100 {
					return fmt.Errorf("passing score must be between 1 and 100")
				}
				settings.PassingScore = passingScore
			}
			if flags.Changed("page-size") {
				if pageSize < 1 || pageSize > models.MaxQueryPageSize {
					return fmt.Errorf("page size must be between 1 and %d", models.MaxQueryPageSize)
				}
				settings.QueryPageSize = pageSize
			}
			if flags.Changed("backup-on-clear") {
				settings.BackupOnClear = &backup
			}

			if err := config.SaveSettings(a.dataDir, &settings); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("Settings updated."))
			printSettings(cmd.OutOrStdout(), a.dataDir, &settings)
			return nil
		},
	}
	cmd.Flags().IntVar(&passingScore, "passing-score", models.DefaultPassingScore, "Minimum verification score that completes a task")
	cmd.Flags().IntVar(&pageSize, "page-size", models.DefaultQueryPageSize, "Default query page size")
	cmd.Flags().BoolVar(&backup, "backup-on-clear", true, "Back up tasks before clearing them")
	return cmd
}

func printSettings(w io.Writer, dataDir string, s *models.Settings) {
	row := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", styleLabel.Render(fmt.Sprintf("%-16s", label)), styleValue.Render(value))
	}
	row("Data dir", dataDir)
	row("Passing score", strconv.Itoa(s.PassingScore))
	row("Query page size", strconv.Itoa(s.QueryPageSize))
	row("Backup on clear", strconv.FormatBool(s.ShouldBackupOnClear()))
}
