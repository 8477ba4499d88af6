package export

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"course-mirror/internal/domain"
)

//go:embed schema.sql
var schema string

// WriteFinalSQLite regenerates the courses table at path. The database is built in a
// temp file next to path and renamed over it, so readers never see a partial table.
func WriteFinalSQLite(ctx context.Context, path string, rows []domain.FinalCourse) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: sqlite: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("export: sqlite: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if err := fillDB(ctx, tmpName, rows); err != nil {
		return fmt.Errorf("export: sqlite: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("export: sqlite: rename: %w", err)
	}
	return nil
}

func fillDB(ctx context.Context, path string, rows []domain.FinalCourse) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(FinalHeader)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO courses (%s) VALUES (%s)",
		strings.Join(FinalHeader, ", "), placeholders,
	))
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, fc := range rows {
		if _, err := stmt.ExecContext(ctx, sqlValues(fc)...); err != nil {
			return fmt.Errorf("insert %s: %w", fc.Record.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return db.Close()
}

// sqlValues follows FinalHeader. Missing values are NULL.
func sqlValues(fc domain.FinalCourse) []any {
	r := fc.Record
	active := 0
	if r.IsActive {
		active = 1
	}
	vals := []any{
		r.ID,
		r.ClassID,
		r.LessonID,
		r.Title,
		r.Department,
		r.Center,
		nullStr(r.Teacher),
		nullStr(r.StartDate),
		nullStr(r.EndDate),
		nullInt(r.Capacity),
		nullInt(r.DurationHours),
		r.Days,
		nullInt(r.MinPrice),
		nullInt(r.MaxPrice),
		r.CourseURL,
		r.Certificate,
		active,
	}

	d := fc.Details
	if d == nil {
		return append(vals, nil, nil, nil, nil, nil)
	}
	return append(vals,
		nullStr(d.Description),
		nullList(d.Prerequisites),
		nullList(d.Curriculum),
		nullList(d.SkillsAcquired),
		nullList(d.CareerOpportunities),
	)
}

func nullStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullList(items []string) any {
	if items == nil {
		return nil
	}
	return strings.Join(items, ListSeparator)
}
