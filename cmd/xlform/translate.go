// Translate command rewrites formulas between reference notations.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridwerk/xlform-go/xlform"
)

var (
	flagTranslateAnchor string
	flagTranslateTo     string
)

var translateCmd = &cobra.Command{
	Use:   "translate [flags] FORMULA...",
	Short: "Rewrite formulas between A1 and R1C1 notation",
	Long: `Translate rewrites every cell, row and column reference in the given
formulas between A1 and R1C1 notation. Relative references are resolved
against the anchor cell. References that land outside the sheet become
#REF!.

Example:
  xlform translate --anchor C5 --to r1c1 "=A1+B2"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&flagTranslateAnchor, "anchor", "A1", "cell the formulas live in")
	translateCmd.Flags().StringVar(&flagTranslateTo, "to", "r1c1", "target notation: r1c1 or a1")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	anchor, err := xlform.ParseCellName(flagTranslateAnchor)
	if err != nil {
		return fmt.Errorf("bad anchor: %w", err)
	}

	var dir xlform.Direction
	switch flagTranslateTo {
	case "r1c1":
		dir = xlform.LetterToOffset
	case "a1":
		dir = xlform.OffsetToLetter
	default:
		return fmt.Errorf("unknown target notation %q (use r1c1 or a1)", flagTranslateTo)
	}

	for _, formula := range args {
		fmt.Fprintln(cmd.OutOrStdout(), xlform.Translate(formula, dir, anchor))
	}
	return nil
}
