package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/sitecoach/internal/analyze"
	"github.com/sells-group/sitecoach/internal/model"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Basic HTML structure analysis with improvement tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEnv()
		html, err := e.fetchHTML(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		structure := analyze.AnalyzeStructure(html)
		tasks := e.analyzer.GenerateTasks(cmd.Context(), structure.BasicIssues)

		return printJSON(struct {
			Structure model.Structure `json:"structure"`
			Tasks     []model.Task    `json:"tasks"`
		}{structure, tasks})
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
