package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskgraph/internal/task"
)

func newQueryCmd(a *app) *cobra.Command {
	var opts task.QueryOptions
	cmd := &cobra.Command{
		Use:     "query <text>",
		Aliases: []string{"search"},
		Short:   "Search tasks by name, description, and notes",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.open()
			if err != nil {
				return err
			}
			opts.Text = strings.Join(args, " ")
			result, err := mgr.QueryTasks(opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if result.Total == 0 {
				fmt.Fprintf(w, "No tasks match %q.\n", opts.Text)
				return nil
			}
			width := terminalWidth()
			for _, t := range result.Tasks {
				printTaskLine(w, t, width)
			}
			fmt.Fprintln(w, styleHint.Render(fmt.Sprintf("\npage %d of %d, %d match(es)",
				result.Page, max(result.TotalPages, 1), result.Total)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.IsID, "id", false, "Treat the text as an exact task id")
	cmd.Flags().BoolVar(&opts.IncludeSummary, "summary", false, "Search completion summaries too")
	cmd.Flags().IntVarP(&opts.Page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "Results per page (default from settings)")
	return cmd
}
