package domain

import "time"

// TimeLayout is the on-disk format for ChangedAt / UpdatedAt.
const TimeLayout = "2006-01-02 15:04:05"

// CourseRecord is the canonical representation of one course offering inside this service.
// The remote API record is mapped into this model, and every output (snapshot CSV/JSON,
// change log, final export) is produced from it.
type CourseRecord struct {
	ID         string  `json:"id"`
	ClassID    string  `json:"class_id"`
	LessonID   string  `json:"lesson_id"`
	Title      string  `json:"title"`
	Department string  `json:"department"`
	Center     string  `json:"center"`
	Teacher    *string `json:"teacher"`

	StartDate *string `json:"start_date"` // ISO date (Gregorian)
	EndDate   *string `json:"end_date"`

	Capacity      *int   `json:"capacity"`
	DurationHours *int   `json:"duration_hours"`
	Days          string `json:"days"` // weekday labels joined with " | "

	MinPrice *int `json:"min_price"`
	MaxPrice *int `json:"max_price"`

	CourseURL   string `json:"course_url"`
	Cover       string `json:"cover"`
	Certificate string `json:"certificate"`

	IsActive  bool      `json:"is_active"`
	ChangedAt time.Time `json:"changed_at"` // last is_active transition
	UpdatedAt time.Time `json:"updated_at"` // last sync touching the record
}

// Clone returns a deep copy, so pointer fields are never shared between snapshots.
func (c CourseRecord) Clone() CourseRecord {
	out := c
	out.Teacher = cloneStr(c.Teacher)
	out.StartDate = cloneStr(c.StartDate)
	out.EndDate = cloneStr(c.EndDate)
	out.Capacity = cloneInt(c.Capacity)
	out.DurationHours = cloneInt(c.DurationHours)
	out.MinPrice = cloneInt(c.MinPrice)
	out.MaxPrice = cloneInt(c.MaxPrice)
	return out
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// SyncDelta is what changed in one sync. It is derived, never persisted.
type SyncDelta struct {
	New     []CourseRecord
	Expired []CourseRecord
	Revived []CourseRecord
}

// Empty reports whether nothing changed state.
func (d SyncDelta) Empty() bool {
	return len(d.New) == 0 && len(d.Expired) == 0 && len(d.Revived) == 0
}

// CourseDetails is the content scraped from a lesson detail page.
type CourseDetails struct {
	LessonID            string   `json:"lesson_id"`
	Title               *string  `json:"title"`
	Description         *string  `json:"description"`
	Prerequisites       []string `json:"prerequisites"`
	Curriculum          []string `json:"curriculum"`
	SkillsAcquired      []string `json:"skills_acquired"`
	CareerOpportunities []string `json:"career_opportunities"`
	URL                 string   `json:"url"`
}

// FinalCourse is a snapshot record joined with its scraped details.
type FinalCourse struct {
	Record  CourseRecord
	Details *CourseDetails // nil when the lesson was never scraped
}
