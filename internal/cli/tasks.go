package cli

import (
	"fmt"
	"io"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/engine"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type queue struct {
	name  string
	label string
	items func(domain.TaskLists) []domain.TaskItem
}

var queues = []queue{
	{"filming", "To film", func(l domain.TaskLists) []domain.TaskItem { return l.ForFilming }},
	{"audio", "Needs audio", func(l domain.TaskLists) []domain.TaskItem { return l.ForAudio }},
	{"editing", "To edit", func(l domain.TaskLists) []domain.TaskItem { return l.ForEditing }},
	{"upload", "To upload", func(l domain.TaskLists) []domain.TaskItem { return l.ForUpload }},
}

// TasksCmd returns the production task list command
func TasksCmd() *cobra.Command {
	var (
		only   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the next production step for every mapped method",
		Long: `Group every (exercise, location, method) triple by its first unfinished
workflow step: filming, audio, editing or upload. Finished methods are not listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected := queues
			if only != "" {
				selected = nil
				for _, q := range queues {
					if q.name == only {
						selected = []queue{q}
					}
				}
				if selected == nil {
					return fmt.Errorf("unknown queue %q (want filming, audio, editing or upload)", only)
				}
			}

			log := cmdLogger(cmd)
			defer log.Sync()

			cat, err := openCatalog(cmd.Context(), cmd, log)
			if err != nil {
				return err
			}
			defer cat.close()

			rows, err := engine.AnalyzeCatalog(cmd.Context(), cat.exercises(), 0)
			if err != nil {
				return fmt.Errorf("analyze catalog: %w", err)
			}
			lists := engine.BuildTaskLists(rows)

			out := cmd.OutOrStdout()
			if asJSON {
				if len(selected) == 1 {
					return printJSON(out, selected[0].items(lists))
				}
				return printJSON(out, lists)
			}
			for i, q := range selected {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printQueue(out, q.label, q.items(lists))
			}
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().StringVarP(&only, "queue", "q", "", "Only print one queue: filming, audio, editing or upload")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the task lists as JSON")

	return cmd
}

func printQueue(w io.Writer, label string, items []domain.TaskItem) {
	c := warn
	if len(items) == 0 {
		c = good
	}
	title.Fprintf(w, "%s ", label)
	c.Fprintf(w, "(%d)\n", len(items))
	for _, it := range items {
		fmt.Fprintf(w, "  %s  %s  %s\n",
			pad(it.ExerciseName, nameWidth),
			color.CyanString(pad(string(it.Location), cellWidth)),
			it.MethodName)
	}
}
