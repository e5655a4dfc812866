package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"alcyxob/fitness-content/internal/normalize"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
)

var errDiagnosticsFound = errors.New("normalization produced diagnostics")

// NormalizeCmd returns the normalization command
func NormalizeCmd() *cobra.Command {
	var (
		check bool
		apply bool
	)

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Migrate legacy exercise records to the canonical shape",
		Long: `Read every exercise, report the data-quality diagnostics found while
normalizing it, and print the canonical documents as extended JSON.

With --check only the diagnostics are printed and the command fails if there
are any. With --apply the canonical documents are written back to MongoDB.
Normalizing is idempotent, so --apply is safe to run more than once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check && apply {
				return errors.New("--check and --apply are mutually exclusive")
			}

			log := cmdLogger(cmd)
			defer log.Sync()

			cat, err := openCatalog(cmd.Context(), cmd, log)
			if err != nil {
				return err
			}
			defer cat.close()
			if apply && cat.repo == nil {
				return errors.New("--apply needs the MongoDB source; drop --file")
			}

			total := printDiagnostics(cmd.ErrOrStderr(), cat.records)
			if check {
				if total > 0 {
					return errDiagnosticsFound
				}
				good.Fprintf(cmd.OutOrStdout(), "✓ %s clean\n", plural(len(cat.records), "record"))
				return nil
			}

			if apply {
				for i := range cat.records {
					ex := &cat.records[i].exercise
					if err := cat.repo.Update(cmd.Context(), ex); err != nil {
						return fmt.Errorf("update exercise %s: %w", ex.ID.Hex(), err)
					}
				}
				good.Fprintf(cmd.OutOrStdout(), "✓ %s rewritten\n", plural(len(cat.records), "exercise"))
				return nil
			}

			docs := make([]json.RawMessage, 0, len(cat.records))
			for i := range cat.records {
				doc, err := bson.MarshalExtJSON(normalize.ExerciseDocument(&cat.records[i].exercise), false, false)
				if err != nil {
					return fmt.Errorf("render exercise %s: %w", cat.records[i].exercise.ID.Hex(), err)
				}
				docs = append(docs, doc)
			}
			return printJSON(cmd.OutOrStdout(), docs)
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().BoolVar(&check, "check", false, "Only report diagnostics; fail if any were found")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write the canonical documents back to MongoDB")

	return cmd
}

func printDiagnostics(w io.Writer, records []record) int {
	total := 0
	for _, r := range records {
		if len(r.diagnostics) == 0 {
			continue
		}
		title.Fprintf(w, "%s", r.exercise.ID.Hex())
		fmt.Fprintf(w, " %s\n", r.exercise.Name.Best())
		for _, d := range r.diagnostics {
			c := warn
			if d.Kind == normalize.DiagMissingIdentifier {
				c = muted
			}
			fmt.Fprint(w, "  ")
			c.Fprint(w, pad(string(d.Kind), 20))
			fmt.Fprintf(w, "%s: %s\n", d.Field, d.Message)
		}
		total += len(r.diagnostics)
	}
	if total > 0 {
		warn.Fprintf(w, "%s\n", plural(total, "diagnostic"))
	}
	return total
}
