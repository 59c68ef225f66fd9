package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskgraph/internal/task"
)

func newListCmd(a *app) *cobra.Command {
	var (
		status string
		group  bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.open()
			if err != nil {
				return err
			}
			filter, err := task.ParseStatusFilter(status)
			if err != nil {
				return err
			}
			result, err := mgr.ListTasks(task.ListOptions{Status: filter, Group: group})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(result.Tasks) == 0 {
				fmt.Fprintln(w, "No tasks. Run 'taskgraph split <file>' to plan some.")
				return nil
			}
			width := terminalWidth()
			if group {
				for _, g := range result.Groups {
					if len(g.Tasks) == 0 {
						continue
					}
					printTaskGroup(w, g.Status, g.Tasks, width)
				}
				return nil
			}
			for _, t := range result.Tasks {
				printTaskLine(w, t, width)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", task.StatusAll, "Filter by status (all, pending, in_progress, completed)")
	cmd.Flags().BoolVarP(&group, "group", "g", false, "Group tasks by status")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.open()
			if err != nil {
				return err
			}
			t, err := mgr.GetTask(args[0])
			if err != nil {
				return err
			}
			all, err := mgr.ListTasks(task.ListOptions{})
			if err != nil {
				return err
			}
			printTaskDetail(cmd.OutOrStdout(), t, nameIndex(all.Tasks))
			return nil
		},
	}
}
