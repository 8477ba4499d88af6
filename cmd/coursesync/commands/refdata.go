package commands

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"course-mirror/internal/refdata"
	"course-mirror/internal/timezone"
)

func init() {
	rootCmd.AddCommand(refdataCmd)
}

var refdataCmd = &cobra.Command{
	Use:   "refdata",
	Short: "Refreshes the places, departments, groups, courses and months tables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		prev, err := refdata.Load(cfg.RefDataDir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err != nil {
			slog.Info("starting reference tables from scratch", "reason", err)
		}

		next, err := refdata.Refresh(cmd.Context(), newProvider(cfg), prev, timezone.Now())
		if err != nil {
			return err
		}
		if err := refdata.Save(cfg.RefDataDir, next); err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Table", "Active", "Total"})
		for _, r := range []struct {
			name  string
			items []refdata.Item
		}{
			{refdata.TablePlaces, next.Places},
			{refdata.TableDepartments, next.Departments},
			{refdata.TableGroups, next.Groups},
			{refdata.TableCourses, next.Courses},
			{refdata.TableMonths, next.Months},
		} {
			t.AppendRow(table.Row{r.name, len(refdata.Active(r.items)), len(r.items)})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
