package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"course-mirror/internal/domain"
)

// maxSummaryRows caps the course rows listed per partition on the console.
const maxSummaryRows = 10

// WriteSummary prints the delta counts, then up to maxSummaryRows courses per partition.
func WriteSummary(w io.Writer, d domain.SyncDelta, total int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"", "Change", "Title", "Center"})

	for _, s := range sections(d) {
		for i, c := range s.courses {
			if i == maxSummaryRows {
				t.AppendRow(table.Row{s.emoji, s.title, "...", ""})
				break
			}
			t.AppendRow(table.Row{s.emoji, s.title, c.Title, c.Center})
		}
	}

	t.AppendFooter(table.Row{"", "Total", total, ""})
	t.AppendFooter(table.Row{"", "📈/📉/♻️", countLine(d), ""})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func countLine(d domain.SyncDelta) string {
	return fmt.Sprintf("%d / %d / %d", len(d.New), len(d.Expired), len(d.Revived))
}
