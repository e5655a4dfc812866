package cli

import (
	"fmt"
	"io"
	"strings"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/engine"

	"github.com/spf13/cobra"
)

const (
	nameWidth = 28
	cellWidth = 10
)

// MatrixCmd returns the content matrix command
func MatrixCmd() *cobra.Command {
	var (
		readyOnly   bool
		asJSON      bool
		gapsOnly    bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Show content coverage per exercise and location",
		Long: `Analyze every exercise in the catalog and print one row per exercise with
the production status of each location.

Cells show the best status among the methods mapped to the location.
A required location with no method is shown as MISSING.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := cmdLogger(cmd)
			defer log.Sync()

			cat, err := openCatalog(cmd.Context(), cmd, log)
			if err != nil {
				return err
			}
			defer cat.close()

			rows, err := engine.AnalyzeCatalog(cmd.Context(), cat.exercises(), concurrency)
			if err != nil {
				return fmt.Errorf("analyze catalog: %w", err)
			}
			summary := engine.Summarize(rows)

			filtered := make([]domain.ContentMatrixRow, 0, len(rows))
			for _, row := range rows {
				if readyOnly && !row.ReadyToPublish() {
					continue
				}
				if gapsOnly && row.CriticalGapCount == 0 && row.WorkflowGapCount == 0 {
					continue
				}
				filtered = append(filtered, row)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, struct {
					Rows    []domain.ContentMatrixRow `json:"rows"`
					Summary engine.CatalogSummary     `json:"summary"`
				}{filtered, summary})
			}
			printMatrix(out, filtered)
			fmt.Fprintln(out)
			printSummary(out, summary)
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().BoolVar(&readyOnly, "ready-only", false, "Only show exercises with no critical gaps")
	cmd.Flags().BoolVar(&gapsOnly, "gaps", false, "Only show exercises with at least one gap")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the matrix as JSON")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Exercises analyzed in parallel (0 = default)")

	return cmd
}

func printMatrix(w io.Writer, rows []domain.ContentMatrixRow) {
	header := pad("EXERCISE", nameWidth)
	for _, loc := range domain.CanonicalLocations {
		header += pad(strings.ToUpper(string(loc)), cellWidth)
	}
	title.Fprintln(w, header+"GAPS")

	for _, row := range rows {
		name := row.ExerciseName
		if n := []rune(name); len(n) > nameWidth-2 {
			name = string(n[:nameWidth-3]) + "…"
		}
		fmt.Fprint(w, pad(name, nameWidth))
		for _, cov := range row.Locations {
			printCell(w, cov)
		}
		printGaps(w, row)
	}
}

func printCell(w io.Writer, cov domain.LocationCoverage) {
	if len(cov.Methods) == 0 {
		if cov.Required {
			bad.Fprint(w, pad("MISSING", cellWidth))
			return
		}
		muted.Fprint(w, pad("·", cellWidth))
		return
	}
	best := cov.Methods[0].Status
	for _, ref := range cov.Methods[1:] {
		if statusRank(ref.Status) > statusRank(best) {
			best = ref.Status
		}
	}
	label := shortStatus(best)
	if len(cov.Methods) > 1 {
		label = fmt.Sprintf("%s×%d", label, len(cov.Methods))
	}
	statusColor(best).Fprint(w, pad(label, cellWidth))
}

func printGaps(w io.Writer, row domain.ContentMatrixRow) {
	switch {
	case row.CriticalGapCount > 0:
		bad.Fprintln(w, plural(row.CriticalGapCount, "critical"))
	case row.WorkflowGapCount > 0:
		warn.Fprintln(w, plural(row.WorkflowGapCount, "workflow"))
	default:
		good.Fprintln(w, "✓")
	}
}

func printSummary(w io.Writer, s engine.CatalogSummary) {
	fmt.Fprintf(w, "%s exercises, ", title.Sprint(s.Exercises))
	good.Fprintf(w, "%d ready to publish", s.ReadyToPublish)
	fmt.Fprint(w, ", ")
	bad.Fprintf(w, "%s", plural(s.CriticalGaps, "critical gap"))
	fmt.Fprint(w, ", ")
	warn.Fprintf(w, "%s", plural(s.WorkflowGaps, "workflow gap"))
	fmt.Fprintln(w)
	if s.UnmappedMethods > 0 {
		warn.Fprintf(w, "%s not mapped to any location\n", plural(s.UnmappedMethods, "method"))
	}
	if s.MissingDescription > 0 {
		warn.Fprintf(w, "%s without a description\n", plural(s.MissingDescription, "exercise"))
	}
}

func statusRank(s domain.ProductionStatus) int {
	switch s {
	case domain.StatusReady:
		return 3
	case domain.StatusInPostProduction:
		return 2
	case domain.StatusNeedsMedia:
		return 1
	}
	return 0
}

func shortStatus(s domain.ProductionStatus) string {
	switch s {
	case domain.StatusReady:
		return "ready"
	case domain.StatusInPostProduction:
		return "post"
	case domain.StatusNeedsMedia:
		return "media"
	}
	return "todo"
}
