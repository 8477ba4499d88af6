package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"course-mirror/internal/atomicfile"
	"course-mirror/internal/domain"
	"course-mirror/internal/normalize"
	"course-mirror/internal/timezone"
)

// IntentHeader is the slim per-class table used for search intent matching.
var IntentHeader = []string{
	"id", "lesson_id", "title", "teacher", "start_date", "end_date",
	"capacity", "duration_hours", "days",
	"min_price", "max_price", "class_id", "is_active",
	"updated_at",
}

func intentValues(r domain.CourseRecord) []string {
	updated := ""
	if !r.UpdatedAt.IsZero() {
		updated = r.UpdatedAt.In(timezone.Location()).Format(time.DateOnly)
	}
	return []string{
		r.ID,
		r.LessonID,
		r.Title,
		str(r.Teacher),
		str(r.StartDate),
		str(r.EndDate),
		num(r.Capacity),
		num(r.DurationHours),
		normalize.Digits(r.Days),
		num(r.MinPrice),
		num(r.MaxPrice),
		r.ClassID,
		strconv.FormatBool(r.IsActive),
		updated,
	}
}

// EncodeIntentCSV writes records as a BOM-prefixed intent CSV.
func EncodeIntentCSV(w io.Writer, records []domain.CourseRecord) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(IntentHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(intentValues(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteIntentCSV replaces the file at path with the intent table of records.
func WriteIntentCSV(path string, records []domain.CourseRecord) error {
	err := atomicfile.WriteFile(path, func(w io.Writer) error {
		return EncodeIntentCSV(w, records)
	})
	if err != nil {
		return fmt.Errorf("export: intent csv: %w", err)
	}
	return nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func num(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
