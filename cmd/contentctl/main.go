package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alcyxob/fitness-content/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "contentctl",
		Short: "Inspect and migrate the exercise content catalog",
		Long: `contentctl reads the exercise catalog from MongoDB or from an export file
and reports content coverage, production task lists and method resolution.
It also migrates legacy records and bootstraps editor accounts.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log normalization and connection details to stderr")

	rootCmd.AddCommand(cli.MatrixCmd())
	rootCmd.AddCommand(cli.TasksCmd())
	rootCmd.AddCommand(cli.ResolveCmd())
	rootCmd.AddCommand(cli.NormalizeCmd())

	// Administration
	rootCmd.AddCommand(cli.EditorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
