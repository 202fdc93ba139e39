package main

import (
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan <url>",
	Short: "Generate a short improvement plan for a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEnv()
		html, err := e.fetchHTML(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(e.analyzer.GeneratePlan(cmd.Context(), html, args[0]))
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
