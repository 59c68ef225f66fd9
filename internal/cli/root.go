// Package cli implements the taskgraph CLI commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskgraph/internal/config"
	"github.com/watchfire-io/taskgraph/internal/store"
	"github.com/watchfire-io/taskgraph/internal/task"
)

// app carries the global flags and lazily opens the engine for a command.
type app struct {
	dataDirFlag string
	verbose     bool

	dataDir string
	store   *store.Store
	manager *task.Manager
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "taskgraph",
		Short: "Plan and track dependent tasks",
		Long: `Taskgraph keeps a dependency graph of planned tasks in a data directory.

Work is split into tasks, executed once every dependency is completed,
and verified with a score before it counts as done.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !a.verbose {
				log.SetOutput(io.Discard)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.dataDirFlag, "data-dir", "",
		fmt.Sprintf("Data directory (default $%s or ./%s)", config.DataDirEnv, config.DataDirName))
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable engine logging on stderr")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(newClearCmd(a))
	rootCmd.AddCommand(newDeleteCmd(a))
	rootCmd.AddCommand(newExecuteCmd(a))
	rootCmd.AddCommand(newInitCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newQueryCmd(a))
	rootCmd.AddCommand(newSettingsCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newSplitCmd(a))
	rootCmd.AddCommand(newUpdateCmd(a))
	rootCmd.AddCommand(newVerifyCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newWatchCmd(a))
	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		return err
	}
	return nil
}

// open resolves the data directory and builds the store and manager.
func (a *app) open() (*task.Manager, error) {
	if a.manager != nil {
		return a.manager, nil
	}

	dataDir, err := config.ResolveDataDir(a.dataDirFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	settings, err := config.LoadSettings(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	s, err := store.New(dataDir)
	if err != nil {
		return nil, err
	}

	a.dataDir = dataDir
	a.store = s
	a.manager = task.NewManager(s, settings)
	return a.manager, nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, styleError.Render("Error:"), err)

	var taskErr *task.Error
	if errors.As(err, &taskErr) && len(taskErr.Refs) > 0 {
		fmt.Fprintln(w, styleLabel.Render("  refs:"), strings.Join(taskErr.Refs, ", "))
	}
	if errors.Is(err, store.ErrIO) {
		fmt.Fprintln(w, styleHint.Render("  check that the data directory is writable"))
	}
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, store.ErrIO):
		return 3
	case errors.Is(err, task.ErrNotFound):
		return 4
	default:
		return 1
	}
}
