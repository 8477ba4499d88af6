// Package export builds the downstream files from the snapshot: the final CSV joined
// with scraped details, its SQLite twin, and the slim intent CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"course-mirror/internal/atomicfile"
	"course-mirror/internal/domain"
	"course-mirror/internal/normalize"
	"course-mirror/internal/snapshot"
)

// ListSeparator joins list fields into one cell.
const ListSeparator = " | "

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Snapshot columns left out of the final file.
var finalDropped = []string{"cover", "changed_at", "updated_at"}

// detailColumns follow the kept snapshot columns.
var detailColumns = []string{
	"description",
	"prerequisites",
	"curriculum",
	"skills_acquired",
	"career_opportunities",
}

// FinalHeader is the column order of the final CSV and the SQLite table.
var FinalHeader = finalHeader()

func finalHeader() []string {
	var h []string
	for _, c := range snapshot.Header {
		if !slices.Contains(finalDropped, c) {
			h = append(h, c)
		}
	}
	return append(h, detailColumns...)
}

// JoinKey is the lesson id a record is joined on: its own, or the one in its link.
func JoinKey(r domain.CourseRecord) string {
	if id := strings.TrimSpace(r.LessonID); id != "" {
		return id
	}
	return normalize.LessonIDFromURL(r.CourseURL)
}

// BuildFinal left-joins every snapshot record with the details of its lesson.
// The first details entry of a lesson wins.
func BuildFinal(snap *domain.Snapshot, details []domain.CourseDetails) []domain.FinalCourse {
	byLesson := make(map[string]domain.CourseDetails, len(details))
	for _, d := range details {
		if d.LessonID == "" {
			continue
		}
		if _, ok := byLesson[d.LessonID]; !ok {
			byLesson[d.LessonID] = d
		}
	}

	records := snap.Records()
	out := make([]domain.FinalCourse, 0, len(records))
	for _, r := range records {
		rec := r.Clone()
		key := JoinKey(rec)
		rec.LessonID = key

		fc := domain.FinalCourse{Record: rec}
		if d, ok := byLesson[key]; ok && key != "" {
			fc.Details = &d
		}
		out = append(out, fc)
	}
	return out
}

// finalValues renders fc in FinalHeader order.
func finalValues(fc domain.FinalCourse) []string {
	row := snapshot.Row(fc.Record)
	out := make([]string, 0, len(FinalHeader))
	for i, c := range snapshot.Header {
		if !slices.Contains(finalDropped, c) {
			out = append(out, row[i])
		}
	}

	d := fc.Details
	if d == nil {
		d = &domain.CourseDetails{}
	}
	desc := ""
	if d.Description != nil {
		desc = *d.Description
	}
	return append(out,
		desc,
		strings.Join(d.Prerequisites, ListSeparator),
		strings.Join(d.Curriculum, ListSeparator),
		strings.Join(d.SkillsAcquired, ListSeparator),
		strings.Join(d.CareerOpportunities, ListSeparator),
	)
}

// EncodeFinalCSV writes rows as a BOM-prefixed CSV.
func EncodeFinalCSV(w io.Writer, rows []domain.FinalCourse) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(FinalHeader); err != nil {
		return err
	}
	for _, fc := range rows {
		if err := cw.Write(finalValues(fc)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFinalCSV replaces the file at path with rows.
func WriteFinalCSV(path string, rows []domain.FinalCourse) error {
	err := atomicfile.WriteFile(path, func(w io.Writer) error {
		return EncodeFinalCSV(w, rows)
	})
	if err != nil {
		return fmt.Errorf("export: final csv: %w", err)
	}
	return nil
}
