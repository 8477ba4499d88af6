package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"course-mirror/internal/scraper"
	"course-mirror/internal/snapshot"
)

var scrapeUpload bool

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeUpload, "upload", false, "upload the details JSON over SFTP")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--upload]",
	Short: "Scrapes the detail page of every lesson in the snapshot.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		snap, err := snapshot.New(cfg.SnapshotCSV, cfg.SnapshotJSON).Load()
		if err != nil {
			return err
		}
		urls := scraper.UniqueLessonURLs(snap.Records())
		slog.Info("unique lesson pages", "count", len(urls))

		s := scraper.New()
		s.HTTP.SetHeader("User-Agent", cfg.UserAgent)
		s.Workers = cfg.ScrapeWorkers
		s.Delay = cfg.ScrapeDelay()

		details, err := s.ScrapeAll(ctx, urls)
		if err != nil {
			return err
		}
		if err := scraper.SaveDetails(cfg.DetailsJSON, details); err != nil {
			return err
		}
		if err := scraper.WriteFields(cfg.FieldsDir, details); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d of %d lessons to %s\n", len(details), len(urls), cfg.DetailsJSON)

		if scrapeUpload {
			return upload(ctx, cfg.DetailsJSON)
		}
		return nil
	},
}
