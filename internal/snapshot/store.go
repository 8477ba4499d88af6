// Package snapshot persists the course snapshot as a CSV file (the source of truth)
// plus a JSON mirror of the same rows.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"course-mirror/internal/atomicfile"
	"course-mirror/internal/domain"
	"course-mirror/internal/normalize"
	"course-mirror/internal/timezone"
)

// utf8BOM lets spreadsheet tools detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Header is the column order of the snapshot CSV. Keep it stable: files are read by name,
// but people diff them.
var Header = []string{
	"id",
	"class_id",
	"lesson_id",
	"title",
	"department",
	"center",
	"teacher",
	"start_date",
	"end_date",
	"capacity",
	"duration_hours",
	"days",
	"min_price",
	"max_price",
	"course_url",
	"cover",
	"certificate",
	"is_active",
	"changed_at",
	"updated_at",
}

type Store struct {
	CSVPath  string
	JSONPath string // empty disables the mirror
}

func New(csvPath, jsonPath string) *Store {
	return &Store{CSVPath: csvPath, JSONPath: jsonPath}
}

// Load reads the snapshot CSV. A missing or empty file is an empty snapshot.
func (s *Store) Load() (*domain.Snapshot, error) {
	f, err := os.Open(s.CSVPath)
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", s.CSVPath, err)
	}
	defer f.Close()

	snap, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", s.CSVPath, err)
	}
	return snap, nil
}

// Save replaces the JSON mirror and the CSV. Both are fully written to temp files
// before either is renamed, so a failed write leaves the previous files intact.
func (s *Store) Save(snap *domain.Snapshot) error {
	records := snap.Records()

	csvFile, err := atomicfile.Create(s.CSVPath)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer csvFile.Abort()
	if err := WriteCSV(csvFile, records); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", s.CSVPath, err)
	}

	var jsonFile *atomicfile.File
	if s.JSONPath != "" {
		jsonFile, err = atomicfile.Create(s.JSONPath)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		defer jsonFile.Abort()
		if err := WriteJSON(jsonFile, records); err != nil {
			return fmt.Errorf("snapshot: write %s: %w", s.JSONPath, err)
		}
	}

	// the CSV is the source of truth, so it is replaced last
	if jsonFile != nil {
		if err := jsonFile.Commit(); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	if err := csvFile.Commit(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

// WriteCSV writes the header and one row per record, BOM first.
func WriteCSV(w io.Writer, records []domain.CourseRecord) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(Row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row renders r in Header column order.
func Row(r domain.CourseRecord) []string {
	return []string{
		r.ID,
		r.ClassID,
		r.LessonID,
		r.Title,
		r.Department,
		r.Center,
		optStr(r.Teacher),
		optStr(r.StartDate),
		optStr(r.EndDate),
		optInt(r.Capacity),
		optInt(r.DurationHours),
		r.Days,
		optInt(r.MinPrice),
		optInt(r.MaxPrice),
		r.CourseURL,
		r.Cover,
		r.Certificate,
		boolFlag(r.IsActive),
		formatTime(r.ChangedAt),
		formatTime(r.UpdatedAt),
	}
}

// ReadCSV parses a snapshot CSV. Columns are matched by header name, so files from
// older versions with fewer columns still load. Rows without an id are skipped and
// a repeated id replaces the earlier row.
func ReadCSV(r io.Reader) (*domain.Snapshot, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	snap := domain.NewSnapshot()
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return snap, nil
	}
	if err != nil {
		return nil, err
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	if _, ok := cols["id"]; !ok {
		return nil, fmt.Errorf("missing id column in header %v", header)
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		rec := fromRow(get)
		if rec.ID == "" {
			continue
		}
		snap.Put(rec)
	}
	return snap, nil
}

func fromRow(get func(string) string) domain.CourseRecord {
	return domain.CourseRecord{
		ID:            strings.TrimSpace(get("id")),
		ClassID:       get("class_id"),
		LessonID:      get("lesson_id"),
		Title:         get("title"),
		Department:    get("department"),
		Center:        get("center"),
		Teacher:       normalize.Text(get("teacher")),
		StartDate:     normalize.Text(get("start_date")),
		EndDate:       normalize.Text(get("end_date")),
		Capacity:      parseOptInt(get("capacity")),
		DurationHours: parseOptInt(get("duration_hours")),
		Days:          get("days"),
		MinPrice:      parseOptInt(get("min_price")),
		MaxPrice:      parseOptInt(get("max_price")),
		CourseURL:     get("course_url"),
		Cover:         get("cover"),
		Certificate:   get("certificate"),
		IsActive:      parseFlag(get("is_active")),
		ChangedAt:     parseTime(get("changed_at")),
		UpdatedAt:     parseTime(get("updated_at")),
	}
}

// jsonRecord is the JSON mirror row. Timestamps use the same layout as the CSV.
type jsonRecord struct {
	ID            string  `json:"id"`
	ClassID       string  `json:"class_id"`
	LessonID      string  `json:"lesson_id"`
	Title         string  `json:"title"`
	Department    string  `json:"department"`
	Center        string  `json:"center"`
	Teacher       *string `json:"teacher"`
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
	Capacity      *int    `json:"capacity"`
	DurationHours *int    `json:"duration_hours"`
	Days          string  `json:"days"`
	MinPrice      *int    `json:"min_price"`
	MaxPrice      *int    `json:"max_price"`
	CourseURL     string  `json:"course_url"`
	Cover         string  `json:"cover"`
	Certificate   string  `json:"certificate"`
	IsActive      bool    `json:"is_active"`
	ChangedAt     string  `json:"changed_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// WriteJSON writes the records as an indented JSON array, non-ASCII kept as-is.
func WriteJSON(w io.Writer, records []domain.CourseRecord) error {
	out := make([]jsonRecord, 0, len(records))
	for _, r := range records {
		out = append(out, jsonRecord{
			ID:            r.ID,
			ClassID:       r.ClassID,
			LessonID:      r.LessonID,
			Title:         r.Title,
			Department:    r.Department,
			Center:        r.Center,
			Teacher:       r.Teacher,
			StartDate:     r.StartDate,
			EndDate:       r.EndDate,
			Capacity:      r.Capacity,
			DurationHours: r.DurationHours,
			Days:          r.Days,
			MinPrice:      r.MinPrice,
			MaxPrice:      r.MaxPrice,
			CourseURL:     r.CourseURL,
			Cover:         r.Cover,
			Certificate:   r.Certificate,
			IsActive:      r.IsActive,
			ChangedAt:     formatTime(r.ChangedAt),
			UpdatedAt:     formatTime(r.UpdatedAt),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func optStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// parseFlag reads is_active written by any version: 1/0, 1.0/0.0, True/False.
func parseFlag(s string) bool {
	v := strings.TrimSpace(s)
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return normalize.Bool(v)
}

// parseOptInt also accepts "12000.0", which older files have for columns with gaps.
func parseOptInt(s string) *int {
	v := strings.TrimSpace(normalize.Digits(s))
	if v == "" {
		return nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return nil
	}
	n := int(f)
	return &n
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(timezone.Location()).Format(domain.TimeLayout)
}

func parseTime(s string) time.Time {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}
	}
	if t, err := timezone.Parse(domain.TimeLayout, v); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.In(timezone.Location())
	}
	return time.Time{}
}
