package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/sitecoach/internal/model"
)

var competitorsCmd = &cobra.Command{
	Use:   "competitors <url>",
	Short: "Discover competitors and run strategic comparison",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEnv()
		url := args[0]
		html, err := e.fetchHTML(cmd.Context(), url)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		detected := e.analyzer.DiscoverCompetitors(ctx, url, html)
		fetched, statuses := e.analyzer.FetchCompetitors(ctx, detected)
		report := e.analyzer.RunCompetitorAnalysis(ctx, html, url, fetched)

		return printJSON(struct {
			AutoDetected []string               `json:"auto_detected_competitors"`
			Fetched      []model.FetchStatus    `json:"competitors_fetched"`
			Report       model.CompetitorReport `json:"competitor_data"`
		}{detected, statuses, report})
	},
}

func init() {
	rootCmd.AddCommand(competitorsCmd)
}
