package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/watchfire-io/taskgraph/internal/task"
)

func newExecuteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "execute <task-id>",
		Aliases: []string{"start"},
		Short:   "Start a pending task whose dependencies are completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.open()
			if err != nil {
				return err
			}
			t, err := mgr.ExecuteTask(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s Executing %s\n", styleSuccess.Render("✓"), styleHeading.Render(t.Name))
			if t.ImplementationGuide != "" {
				fmt.Fprintf(w, "\n%s\n%s\n", styleLabel.Render("Implementation guide:"), t.ImplementationGuide)
			}
			if t.VerificationCriteria != "" {
				fmt.Fprintf(w, "\n%s\n%s\n", styleLabel.Render("Verification criteria:"), t.VerificationCriteria)
			}
			return nil
		},
	}
}

func newVerifyCmd(a *app) *cobra.Command {
	var (
		score   int
		summary string
	)
	cmd := &cobra.Command{
		Use:   "verify <task-id>",
		Short: "Score an in-progress task and complete it if it passes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.open()
			if err != nil {
				return err
			}
			t, err := mgr.VerifyTask(args[0], task.VerifyOutcome{Score: score, Summary: summary})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Completed %s\n", styleSuccess.Render("✓"), styleHeading.Render(t.Name))
			return nil
		},
	}
	cmd.Flags().IntVar(&score, "score", 0, "Verification score, 0-100")
	cmd.Flags().StringVar(&summary, "summary", "", "Summary of the outcome")
	_ = cmd.MarkFlagRequired("score")
	_ = cmd.MarkFlagRequired("summary")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var opts task.DeleteOptions
	cmd := &cobra.Command{
		Use:     "delete <task-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task that is not completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.open()
			if err != nil {
				return err
			}
			result, err := mgr.DeleteTask(args[0], opts)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, t := range result.Deleted {
				fmt.Fprintf(w, "%s Deleted %s\n", styleSuccess.Render("✓"), t.Name)
			}
			for _, t := range result.Detached {
				fmt.Fprintf(w, "%s %s no longer depends on it\n", styleHint.Render("  ·"), t.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Delete even if other tasks depend on it, detaching them")
	cmd.Flags().BoolVar(&opts.Cascade, "cascade", false, "Delete every task that depends on it too")
	cmd.MarkFlagsMutuallyExclusive("force", "cascade")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirm(cmd, "Remove every task?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			mgr, err := a.open()
			if err != nil {
				return err
			}
			result, err := mgr.ClearAllTasks()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if result.Removed == 0 {
				fmt.Fprintln(w, "No tasks to clear.")
				return nil
			}
			fmt.Fprintf(w, "%s Cleared %d task(s)\n", styleSuccess.Render("✓"), result.Removed)
			if result.BackupPath != "" {
				fmt.Fprintf(w, "%s %s\n", styleLabel.Render("  backup:"), result.BackupPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// confirm asks a yes/no question. It refuses to guess when stdin is not a
// terminal.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("stdin is not a terminal; pass --yes to confirm")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s ", styleWarning.Render(question), styleHint.Render("[y/N]"))
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
