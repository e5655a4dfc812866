package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	bad   = color.New(color.FgRed)
	warn  = color.New(color.FgYellow)
	good  = color.New(color.FgHiGreen)
	muted = color.New(color.FgHiBlack)
	title = color.New(color.Bold)
)

// cmdLogger is quiet unless --verbose is set; commands print their own output.
func cmdLogger(cmd *cobra.Command) *logger.Logger {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		if log, err := logger.New("development"); err == nil {
			return log
		}
	}
	return logger.NewNop()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// pad left-aligns s in width columns before coloring, so escape codes do not
// break the layout.
func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func statusColor(s domain.ProductionStatus) *color.Color {
	switch s {
	case domain.StatusReady:
		return good
	case domain.StatusInPostProduction:
		return warn
	case domain.StatusNeedsMedia:
		return bad
	}
	return muted
}

func completenessColor(c domain.Completeness) *color.Color {
	switch c {
	case domain.CompletenessComplete:
		return good
	case domain.CompletenessPartial:
		return warn
	}
	return bad
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
