// Package refdata keeps the reference tables behind the calendar filters
// (places, departments, groups, courses, months) and tracks when entries come and go.
package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/titanous/json5"

	"course-mirror/internal/atomicfile"
	"course-mirror/internal/domain"
	"course-mirror/internal/timezone"
)

// Item is one reference entry. Group and course entries carry their parents.
type Item struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DepartmentID    string `json:"department_id,omitempty"`
	DepartmentTitle string `json:"department_title,omitempty"`
	GroupID         string `json:"group_id,omitempty"`
	GroupTitle      string `json:"group_title,omitempty"`

	Active          int    `json:"active"` // 1 or 0
	FirstSeen       string `json:"first_seen"`
	LastSeen        string `json:"last_seen"`
	LastStateChange string `json:"last_state_change"`
}

func (it Item) IsActive() bool { return it.Active == 1 }

// Table file names, without the .json extension.
const (
	TablePlaces      = "places"
	TableDepartments = "departments"
	TableGroups      = "groups"
	TableCourses     = "courses"
	TableMonths      = "months"
)

var tableNames = []string{TablePlaces, TableDepartments, TableGroups, TableCourses, TableMonths}

type Tables struct {
	Places      []Item
	Departments []Item
	Groups      []Item
	Courses     []Item
	Months      []Item
}

func (t *Tables) table(name string) *[]Item {
	switch name {
	case TablePlaces:
		return &t.Places
	case TableDepartments:
		return &t.Departments
	case TableGroups:
		return &t.Groups
	case TableCourses:
		return &t.Courses
	case TableMonths:
		return &t.Months
	}
	return nil
}

// Merge folds a fresh listing into the previous one. Fresh entries come first in
// fetch order and keep an earlier first_seen; entries that vanished follow in their
// old order, marked inactive.
func Merge(prev, fresh []Item, now time.Time) []Item {
	stamp := now.In(timezone.Location()).Format(domain.TimeLayout)

	old := make(map[string]Item, len(prev))
	for _, it := range prev {
		old[it.ID] = it
	}

	seen := map[string]bool{}
	out := make([]Item, 0, len(fresh)+len(prev))
	for _, it := range fresh {
		if it.ID == "" || seen[it.ID] {
			continue
		}
		seen[it.ID] = true

		it.Active = 1
		it.LastSeen = stamp
		if p, ok := old[it.ID]; ok {
			it.FirstSeen = p.FirstSeen
			it.LastStateChange = p.LastStateChange
			if !p.IsActive() {
				it.LastStateChange = stamp
			}
		} else {
			it.FirstSeen = stamp
			it.LastStateChange = stamp
		}
		out = append(out, it)
	}

	for _, it := range prev {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		if it.IsActive() {
			it.Active = 0
			it.LastStateChange = stamp
		}
		out = append(out, it)
	}
	return out
}

// Active returns the active entries of items.
func Active(items []Item) []Item {
	var out []Item
	for _, it := range items {
		if it.IsActive() {
			out = append(out, it)
		}
	}
	return out
}

// Source lists the reference endpoints.
type Source interface {
	Places(ctx context.Context) ([]Item, error)
	Departments(ctx context.Context) ([]Item, error)
	Months(ctx context.Context) ([]Item, error)
	Groups(ctx context.Context, departmentID string) ([]Item, error)
	Courses(ctx context.Context, groupID string) ([]Item, error)
}

// Refresh downloads every table and merges it into prev. Groups are listed for the
// active departments and courses for the active groups.
func Refresh(ctx context.Context, src Source, prev Tables, now time.Time) (Tables, error) {
	var next Tables

	places, err := src.Places(ctx)
	if err != nil {
		return Tables{}, fmt.Errorf("refdata: places: %w", err)
	}
	next.Places = Merge(prev.Places, places, now)

	deps, err := src.Departments(ctx)
	if err != nil {
		return Tables{}, fmt.Errorf("refdata: departments: %w", err)
	}
	next.Departments = Merge(prev.Departments, deps, now)

	months, err := src.Months(ctx)
	if err != nil {
		return Tables{}, fmt.Errorf("refdata: months: %w", err)
	}
	next.Months = Merge(prev.Months, months, now)

	var groups []Item
	for _, d := range Active(next.Departments) {
		items, err := src.Groups(ctx, d.ID)
		if err != nil {
			return Tables{}, fmt.Errorf("refdata: groups of %s: %w", d.ID, err)
		}
		for _, g := range items {
			g.DepartmentID, g.DepartmentTitle = d.ID, d.Title
			groups = append(groups, g)
		}
	}
	next.Groups = Merge(prev.Groups, groups, now)

	var courses []Item
	for _, g := range Active(next.Groups) {
		items, err := src.Courses(ctx, g.ID)
		if err != nil {
			return Tables{}, fmt.Errorf("refdata: courses of %s: %w", g.ID, err)
		}
		for _, c := range items {
			c.GroupID, c.GroupTitle = g.ID, g.Title
			c.DepartmentID, c.DepartmentTitle = g.DepartmentID, g.DepartmentTitle
			courses = append(courses, c)
		}
	}
	next.Courses = Merge(prev.Courses, courses, now)

	return next, nil
}

// Load reads the tables from dir. Missing tables load empty and the returned error
// wraps fs.ErrNotExist, so callers that can live without them check errors.Is.
func Load(dir string) (Tables, error) {
	var t Tables
	var missing []error
	for _, name := range tableNames {
		path := filepath.Join(dir, name+".json")
		b, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, fmt.Errorf("refdata: %s: %w", path, err))
			continue
		}
		if err != nil {
			return Tables{}, fmt.Errorf("refdata: read %s: %w", path, err)
		}
		if err := json5.Unmarshal(b, t.table(name)); err != nil {
			return Tables{}, fmt.Errorf("refdata: decode %s: %w", path, err)
		}
	}
	return t, errors.Join(missing...)
}

// Save writes every table to dir as indented JSON.
func Save(dir string, t Tables) error {
	for _, name := range tableNames {
		items := *t.table(name)
		if items == nil {
			items = []Item{}
		}
		path := filepath.Join(dir, name+".json")
		err := atomicfile.WriteFile(path, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		})
		if err != nil {
			return fmt.Errorf("refdata: save %s: %w", name, err)
		}
	}
	return nil
}
