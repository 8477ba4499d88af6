package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"course-mirror/internal/export"
	"course-mirror/internal/scraper"
	"course-mirror/internal/snapshot"
)

var (
	finalSQLite bool
	finalIntent bool
	finalUpload bool
)

func init() {
	finalCmd.Flags().BoolVar(&finalSQLite, "sqlite", false, "also write the SQLite database (final_sqlite)")
	finalCmd.Flags().BoolVar(&finalIntent, "intent", false, "also write the intent CSV (intent_csv)")
	finalCmd.Flags().BoolVar(&finalUpload, "upload", false, "upload the written files over SFTP")
	rootCmd.AddCommand(finalCmd)
}

var finalCmd = &cobra.Command{
	Use:   "final [--sqlite] [--intent] [--upload]",
	Short: "Joins the snapshot with the scraped details into the final export.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		snap, err := snapshot.New(cfg.SnapshotCSV, cfg.SnapshotJSON).Load()
		if err != nil {
			return err
		}
		details, err := scraper.LoadDetails(cfg.DetailsJSON)
		if err != nil {
			return err
		}
		rows := export.BuildFinal(snap, details)

		written := []string{cfg.FinalCSV}
		if err := export.WriteFinalCSV(cfg.FinalCSV, rows); err != nil {
			return err
		}
		if finalSQLite {
			if err := export.WriteFinalSQLite(ctx, cfg.FinalSQLite, rows); err != nil {
				return err
			}
			written = append(written, cfg.FinalSQLite)
		}
		if finalIntent {
			if err := export.WriteIntentCSV(cfg.IntentCSV, snap.Records()); err != nil {
				return err
			}
			written = append(written, cfg.IntentCSV)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d courses to %v\n", len(rows), written)

		if finalUpload {
			return upload(ctx, written...)
		}
		return nil
	},
}
