package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"course-mirror/internal/devutil"
	"course-mirror/internal/snapshot"
)

var showFields string

func init() {
	showCmd.Flags().StringVar(&showFields, "fields", "", "comma-separated JSON fields to print (default all)")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <id> [--fields title,center,is_active]",
	Short: "Prints one snapshot record.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := snapshot.New(cfg.SnapshotCSV, cfg.SnapshotJSON).Load()
		if err != nil {
			return err
		}
		rec, ok := snap.Get(args[0])
		if !ok {
			return fmt.Errorf("no course %q in %s", args[0], cfg.SnapshotCSV)
		}

		var keys []string
		for _, k := range strings.Split(showFields, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		fields, err := devutil.Pick(rec, keys...)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Field", "Value"})
		for _, f := range fields {
			t.AppendRow(table.Row{f.Key, f.Value})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
