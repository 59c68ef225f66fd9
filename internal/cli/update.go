package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/taskgraph/internal/models"
	"github.com/watchfire-io/taskgraph/internal/task"
)

// parseRelatedFile parses "path:type[:description]".
func parseRelatedFile(s string) (models.RelatedFile, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
		return models.RelatedFile{}, fmt.Errorf("related file %q must be path:type[:description]", s)
	}
	f := models.RelatedFile{
		Path: strings.TrimSpace(parts[0]),
		Type: models.RelationKind(strings.TrimSpace(parts[1])),
	}
	if len(parts) == 3 {
		f.Description = strings.TrimSpace(parts[2])
	}
	if !f.Type.Valid() {
		return models.RelatedFile{}, fmt.Errorf("related file %q: unknown type %q", s, f.Type)
	}
	return f, nil
}

func newUpdateCmd(a *app) *cobra.Command {
	var (
		name, description, notes string
		guide, criteria, summary string
		deps                     []string
		noDeps                   bool
		files                    []string
		noFiles                  bool
	)
	cmd := &cobra.Command{
		Use:     "update <task-id>",
		Aliases: []string{"edit"},
		Short:   "Change the content of a task",
		Long: `Change the content of a task. Only the flags given are applied.

A completed task only accepts --summary and related file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var opts task.UpdateOptions
			if flags.Changed("name") {
				opts.Name = &name
			}
			if flags.Changed("description") {
				opts.Description = &description
			}
			if flags.Changed("notes") {
				opts.Notes = &notes
			}
			if flags.Changed("guide") {
				opts.ImplementationGuide = &guide
			}
			if flags.Changed("criteria") {
				opts.VerificationCriteria = &criteria
			}
			if flags.Changed("summary") {
				opts.Summary = &summary
			}
			switch {
			case noDeps:
				empty := []string{}
				opts.Dependencies = &empty
			case flags.Changed("deps"):
				opts.Dependencies = &deps
			}
			switch {
			case noFiles:
				empty := []models.RelatedFile{}
				opts.RelatedFiles = &empty
			case flags.Changed("file"):
				related := make([]models.RelatedFile, 0, len(files))
				for _, f := range files {
					rf, err := parseRelatedFile(f)
					if err != nil {
						return err
					}
					related = append(related, rf)
				}
				opts.RelatedFiles = &related
			}

			mgr, err := a.open()
			if err != nil {
				return err
			}
			t, err := mgr.UpdateTask(args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Updated %s\n", styleSuccess.Render("✓"), styleHeading.Render(t.Name))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&name, "name", "", "New name")
	f.StringVar(&description, "description", "", "New description")
	f.StringVar(&notes, "notes", "", "New notes")
	f.StringVar(&guide, "guide", "", "New implementation guide")
	f.StringVar(&criteria, "criteria", "", "New verification criteria")
	f.StringVar(&summary, "summary", "", "New completion summary")
	f.StringSliceVar(&deps, "deps", nil, "Replace dependencies (ids or names, comma separated)")
	f.BoolVar(&noDeps, "no-deps", false, "Remove every dependency")
	f.StringArrayVar(&files, "file", nil, "Replace related files, repeatable (path:type[:description])")
	f.BoolVar(&noFiles, "no-files", false, "Remove every related file")
	cmd.MarkFlagsMutuallyExclusive("deps", "no-deps")
	cmd.MarkFlagsMutuallyExclusive("file", "no-files")
	return cmd
}
