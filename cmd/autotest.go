package main

import (
	"github.com/spf13/cobra"
)

var autotestCmd = &cobra.Command{
	Use:   "autotest <url>",
	Short: "Fast QA health check without any model calls",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEnv()
		return printJSON(e.tester.Run(cmd.Context(), args[0]))
	},
}

func init() {
	rootCmd.AddCommand(autotestCmd)
}
