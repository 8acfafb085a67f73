// Root command for the xlform CLI.
package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "xlform",
	Short: "xlform translates and evaluates spreadsheet formulas",
	Long: `xlform works with spreadsheet formulas from the command line: it
rewrites references between A1 and R1C1 notation, evaluates formulas
against CSV or workbook grids, and serves interactive evaluation sessions
over websockets.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
