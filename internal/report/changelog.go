// Package report renders sync deltas: the markdown change log and a console summary.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"course-mirror/internal/domain"
)

type section struct {
	emoji   string
	title   string
	courses []domain.CourseRecord
}

func sections(d domain.SyncDelta) []section {
	return []section{
		{"📈", "New courses", d.New},
		{"📉", "Expired courses", d.Expired},
		{"♻️", "Revived courses", d.Revived},
	}
}

// Render builds one collapsible change-log entry. Empty partitions are left out,
// the header always carries all three counts.
func Render(d domain.SyncDelta, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n<details>\n<summary>📊 Sync %s 📈(%d)|📉(%d)|♻️(%d)</summary>\n\n",
		now.Format(domain.TimeLayout), len(d.New), len(d.Expired), len(d.Revived))

	for _, s := range sections(d) {
		if len(s.courses) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n<details>\n<summary> %s %s (%d)</summary>\n\n", s.emoji, s.title, len(s.courses))
		for _, c := range s.courses {
			fmt.Fprintf(&b, "- [%s](%s) | %s\n", c.Title, c.CourseURL, c.Center)
		}
		b.WriteString("</details>\n")
	}
	b.WriteString("</details>\n")
	return b.String()
}

// Append adds entry to the end of the log at path, creating it if needed.
// Existing content is never rewritten.
func Append(path, entry string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report: mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("report: open %s: %w", path, err)
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return fmt.Errorf("report: append %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("report: close %s: %w", path, err)
	}
	return nil
}
