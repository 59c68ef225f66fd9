package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/watchfire-io/taskgraph/internal/task"
)

// batchFile is the document accepted by split. A bare list of tasks is
// accepted too. JSON input parses as YAML.
type batchFile struct {
	Mode           string           `yaml:"mode,omitempty"`
	AnalysisResult string           `yaml:"analysis_result,omitempty"`
	Tasks          []task.TaskInput `yaml:"tasks"`
}

func parseBatch(data []byte) (*batchFile, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("batch is empty")
	}

	doc := root.Content[0]
	var batch batchFile
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&batch.Tasks); err != nil {
			return nil, fmt.Errorf("failed to decode tasks: %w", err)
		}
	case yaml.MappingNode:
		if err := doc.Decode(&batch); err != nil {
			return nil, fmt.Errorf("failed to decode batch: %w", err)
		}
	default:
		return nil, fmt.Errorf("batch must be a list of tasks or a mapping with a tasks key")
	}
	return &batch, nil
}

func readBatchSource(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return data, nil
}

func newSplitCmd(a *app) *cobra.Command {
	var (
		mode     string
		analysis string
	)
	cmd := &cobra.Command{
		Use:   "split <file|->",
		Short: "Merge a batch of proposed tasks into the graph",
		Long: `Merge a batch of proposed tasks (YAML or JSON) into the graph.

Modes:
  append     add every task as new
  overwrite  replace all pending tasks with the batch
  selective  update tasks matched by id or name, add the rest

Dependencies may name tasks in the same batch or reference existing tasks
by id or unique name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readBatchSource(cmd, args[0])
			if err != nil {
				return err
			}
			batch, err := parseBatch(data)
			if err != nil {
				return err
			}

			modeName := batch.Mode
			if cmd.Flags().Changed("mode") || modeName == "" {
				modeName = mode
			}
			m, err := task.ParseUpdateMode(modeName)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("analysis") {
				batch.AnalysisResult = analysis
			}

			mgr, err := a.open()
			if err != nil {
				return err
			}
			result, err := mgr.SplitTasks(task.SplitOptions{
				Mode:           m,
				Tasks:          batch.Tasks,
				AnalysisResult: batch.AnalysisResult,
			})
			if err != nil {
				return err
			}
			printSplitResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(task.ModeAppend), "Update mode (append, overwrite, selective)")
	cmd.Flags().StringVar(&analysis, "analysis", "", "Analysis result recorded on every task in the batch")
	return cmd
}

func printSplitResult(w io.Writer, r *task.SplitResult) {
	fmt.Fprintf(w, "%s %s: %d created, %d updated, %d removed\n",
		styleSuccess.Render("✓"), r.Mode, len(r.Created), len(r.Updated), len(r.Removed))

	width := terminalWidth()
	for _, t := range r.Created {
		fmt.Fprint(w, styleSuccess.Render("  +"))
		printTaskLine(w, t, width)
	}
	for _, t := range r.Updated {
		fmt.Fprint(w, styleValue.Render("  ~"))
		printTaskLine(w, t, width)
	}
	for _, t := range r.Removed {
		fmt.Fprint(w, styleHint.Render("  -"))
		printTaskLine(w, t, width)
	}
	for _, rej := range r.Rejected {
		fmt.Fprintf(w, "%s %s: %v\n", styleWarning.Render("  ! rejected"), rej.Name, rej.Err)
	}
}
