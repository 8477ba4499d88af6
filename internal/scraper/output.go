package scraper

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"course-mirror/internal/atomicfile"
	"course-mirror/internal/domain"
)

// Fields are the per-field folders WriteFields creates, in this order.
var Fields = []string{
	"description",
	"prerequisites",
	"curriculum",
	"skills_acquired",
	"career_opportunities",
}

// SaveDetails writes the scraped courses as one indented JSON array.
func SaveDetails(path string, details []domain.CourseDetails) error {
	if details == nil {
		details = []domain.CourseDetails{}
	}
	err := atomicfile.WriteFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(details)
	})
	if err != nil {
		return fmt.Errorf("scraper: save details: %w", err)
	}
	return nil
}

// LoadDetails reads a file written by SaveDetails. A missing file is not an error.
func LoadDetails(path string) ([]domain.CourseDetails, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scraper: read details: %w", err)
	}
	var out []domain.CourseDetails
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("scraper: decode details %s: %w", path, err)
	}
	return out, nil
}

// WriteFields writes <dir>/<field>/<lesson_id>.txt for every field a course has.
// List fields are written one item per line.
func WriteFields(dir string, details []domain.CourseDetails) error {
	for _, f := range Fields {
		if err := os.MkdirAll(filepath.Join(dir, f), 0o755); err != nil {
			return fmt.Errorf("scraper: mkdir: %w", err)
		}
	}

	for _, d := range details {
		if d.LessonID == "" {
			continue
		}
		for _, f := range Fields {
			content, ok := fieldText(d, f)
			if !ok {
				continue
			}
			path := filepath.Join(dir, f, d.LessonID+".txt")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("scraper: write %s: %w", path, err)
			}
		}
	}
	return nil
}

func fieldText(d domain.CourseDetails, field string) (string, bool) {
	var list []string
	switch field {
	case "description":
		if d.Description == nil {
			return "", false
		}
		return *d.Description, true
	case "prerequisites":
		list = d.Prerequisites
	case "curriculum":
		list = d.Curriculum
	case "skills_acquired":
		list = d.SkillsAcquired
	case "career_opportunities":
		list = d.CareerOpportunities
	}
	if list == nil {
		return "", false
	}
	return strings.Join(list, "\n"), true
}
