package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskgraph/internal/config"
	"github.com/watchfire-io/taskgraph/internal/models"
	"github.com/watchfire-io/taskgraph/internal/task"
	"github.com/watchfire-io/taskgraph/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print status counts whenever the task file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.open()
			if err != nil {
				return err
			}
			if err := config.EnsureDataDir(a.dataDir); err != nil {
				return fmt.Errorf("failed to create data dir: %w", err)
			}

			w, err := watcher.New(a.dataDir, a.store)
			if err != nil {
				return fmt.Errorf("failed to watch %s: %w", a.dataDir, err)
			}
			w.Start()
			defer w.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", styleBrand.Render("Watching"), a.dataDir)
			if err := printCounts(cmd, mgr); err != nil {
				return err
			}
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-w.Events():
					if err := printCounts(cmd, mgr); err != nil {
						printError(cmd.ErrOrStderr(), err)
					}
				}
			}
		},
	}
}

func printCounts(cmd *cobra.Command, mgr *task.Manager) error {
	result, err := mgr.ListTasks(task.ListOptions{Group: true})
	if err != nil {
		return err
	}
	counts := make(map[models.TaskStatus]int, len(result.Groups))
	for _, g := range result.Groups {
		counts[g.Status] = len(g.Tasks)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s pending %d  %s in progress %d  %s completed %d\n",
		statusBadge(models.TaskStatusPending), counts[models.TaskStatusPending],
		statusBadge(models.TaskStatusInProgress), counts[models.TaskStatusInProgress],
		statusBadge(models.TaskStatusCompleted), counts[models.TaskStatusCompleted])
	return nil
}
