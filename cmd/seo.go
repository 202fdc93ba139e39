package main

import (
	"github.com/spf13/cobra"
)

var seoCmd = &cobra.Command{
	Use:   "seo <url>",
	Short: "AI-enhanced SEO review with exact fixes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEnv()
		html, err := e.fetchHTML(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(e.analyzer.RunSEO(cmd.Context(), html, args[0]))
	},
}

func init() {
	rootCmd.AddCommand(seoCmd)
}
