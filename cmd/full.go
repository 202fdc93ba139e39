package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var fullCmd = &cobra.Command{
	Use:   "full <url>",
	Short: "Run the combined structure, UX, SEO, and competitor analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEnv()
		report, errMsg, ok := e.analyzer.RunFull(cmd.Context(), args[0])
		if !ok {
			return eris.Errorf("full analysis of %s: %s", args[0], errMsg)
		}
		return printJSON(report)
	},
}

func init() {
	rootCmd.AddCommand(fullCmd)
}
