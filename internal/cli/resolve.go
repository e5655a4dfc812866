package cli

import (
	"fmt"
	"strings"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/engine"
	"alcyxob/fitness-content/internal/normalize"

	"github.com/spf13/cobra"
)

// ResolveCmd returns the method resolution command
func ResolveCmd() *cobra.Command {
	var (
		location string
		personas []string
		brand    string
		gender   string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <exercise-id>",
		Short: "Show which execution method a user would be given",
		Long: `Pick the execution method for a location, persona tags and brand the same
way the API does, and print it with its production status and cues.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, ok := normalize.ParseLocation(location)
			if !ok {
				return fmt.Errorf("unknown location %q", location)
			}
			var g domain.Gender
			switch strings.ToLower(gender) {
			case "", "male":
				g = domain.GenderMale
			case "female":
				g = domain.GenderFemale
			default:
				return fmt.Errorf("unknown gender %q", gender)
			}

			log := cmdLogger(cmd)
			defer log.Sync()

			cat, err := openCatalog(cmd.Context(), cmd, log)
			if err != nil {
				return err
			}
			defer cat.close()

			ex, err := cat.find(args[0])
			if err != nil {
				return err
			}
			rctx := domain.ResolutionContext{Location: loc, PersonaTags: personas, BrandID: brand}
			m, index := engine.Resolve(ex, rctx)
			if m == nil {
				return fmt.Errorf("exercise %s has no execution methods", args[0])
			}
			status := engine.Status(*m)

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, struct {
					Index  int                     `json:"index"`
					Method domain.ExecutionMethod  `json:"method"`
					Status domain.ProductionStatus `json:"status"`
				}{index, *m, status})
			}

			title.Fprintf(out, "%s", ex.Name.Best())
			fmt.Fprintf(out, " @ %s\n", loc)
			fmt.Fprintf(out, "  method   #%d %s\n", index, m.MethodName)
			fmt.Fprint(out, "  status   ")
			statusColor(status).Fprintln(out, status)
			if !m.MapsTo(loc) {
				warn.Fprintln(out, "  (fallback: no method is mapped to this location)")
			}
			if m.Media.HasVideo() {
				fmt.Fprintf(out, "  video    %s\n", m.Media.MainVideoURL)
			}
			if m.Media.HasImage() {
				fmt.Fprintf(out, "  image    %s\n", m.Media.ImageURL)
			}
			for _, cue := range m.SpecificCues {
				fmt.Fprintf(out, "  cue      %s\n", cue.Resolve(g))
			}
			for _, cue := range ex.GeneralCues {
				muted.Fprintf(out, "  general  %s\n", cue.Resolve(g))
			}
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().StringVarP(&location, "location", "l", "gym", "Location to resolve for")
	cmd.Flags().StringSliceVarP(&personas, "persona", "p", nil, "Persona tags (repeat or comma-separate)")
	cmd.Flags().StringVar(&brand, "brand", "", "Brand identifier")
	cmd.Flags().StringVar(&gender, "gender", "", "Gender used for gendered cues (male or female)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the resolved method as JSON")

	return cmd
}
