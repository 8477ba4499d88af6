package mappers

import (
	"strings"

	"course-mirror/internal/domain"
	"course-mirror/internal/normalize"
	"course-mirror/internal/providers/mftplus"
)

// DaysSeparator joins weekday labels in CourseRecord.Days.
const DaysSeparator = " | "

// RecordFromRaw maps one search result into a CourseRecord. The state fields
// (IsActive, ChangedAt, UpdatedAt) are left zero for the reconciler to set.
// A field that fails to parse becomes nil; it never drops the record.
func RecordFromRaw(c mftplus.RawCourse, siteBase string) domain.CourseRecord {
	lessonID := strings.TrimSpace(normalize.Digits(c.LessonID.String()))
	center := strings.TrimSpace(c.Center.String())

	return domain.CourseRecord{
		ID:            strings.TrimSpace(string(c.ID)),
		ClassID:       strings.TrimSpace(firstNonEmpty(c.ClassID.String(), c.ClassIDAlt.String())),
		LessonID:      lessonID,
		Title:         strings.TrimSpace(c.Title.String()),
		Department:    strings.TrimSpace(c.Dep.String()),
		Center:        center,
		Teacher:       normalize.Teacher(c.Author.String()),
		StartDate:     normalize.Date(c.Start.String()),
		EndDate:       normalize.Date(c.End.String()),
		Capacity:      normalize.Int(c.Capacity.String()),
		DurationHours: normalize.Int(c.Time.String()),
		Days:          strings.Join(c.Days, DaysSeparator),
		MinPrice:      normalize.Price(c.MinCost.String()),
		MaxPrice:      normalize.Price(c.MaxCost.String()),
		CourseURL:     normalize.CourseURL(siteBase, lessonID, c.LessonURL.String(), center),
		Cover:         strings.TrimSpace(c.Cover.String()),
		Certificate:   strings.TrimSpace(c.Certificate.String()),
	}
}

// RecordsFromRaw maps a whole fetch, keeping order.
func RecordsFromRaw(in []mftplus.RawCourse, siteBase string) []domain.CourseRecord {
	out := make([]domain.CourseRecord, 0, len(in))
	for _, c := range in {
		out = append(out, RecordFromRaw(c, siteBase))
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
