package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/sitecoach/internal/analyze"
	"github.com/sells-group/sitecoach/internal/model"
)

var uxUseAI bool

var uxCmd = &cobra.Command{
	Use:   "ux <url>",
	Short: "UX review, rule-based by default or AI-enhanced with --ai",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEnv()
		html, err := e.fetchHTML(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if uxUseAI {
			return printJSON(e.analyzer.RunUX(cmd.Context(), html, args[0]))
		}

		issues := analyze.RunUXRules(html)
		return printJSON(struct {
			Issues  model.UXRuleResults `json:"issues"`
			Summary model.UXSummary     `json:"summary"`
		}{issues, analyze.UXRuleSummary(issues)})
	},
}

func init() {
	uxCmd.Flags().BoolVar(&uxUseAI, "ai", false, "run the AI-enhanced review")
	rootCmd.AddCommand(uxCmd)
}
