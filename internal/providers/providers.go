package providers

import (
	"context"

	"course-mirror/internal/domain"
	"course-mirror/internal/mappers"
	"course-mirror/internal/providers/mftplus"
	"course-mirror/internal/refdata"
)

// CourseProvider returns the current catalog as mapped records.
type CourseProvider interface {
	Name() string
	ListCourses(ctx context.Context, f domain.Filter) ([]domain.CourseRecord, error)
}

// MFTPlus adapts the calendar client into a CourseProvider.
type MFTPlus struct {
	C        *mftplus.Client
	SiteBase string
}

func (p MFTPlus) Name() string { return "mftplus" }

func (p MFTPlus) ListCourses(ctx context.Context, f domain.Filter) ([]domain.CourseRecord, error) {
	raw, err := p.C.FetchAll(ctx, f)
	if err != nil {
		return nil, err
	}
	return mappers.RecordsFromRaw(raw, p.SiteBase), nil
}

// The reference endpoints, mapped for refdata.Refresh.

func (p MFTPlus) Places(ctx context.Context) ([]refdata.Item, error) {
	return refItems(p.C.Places(ctx))
}

func (p MFTPlus) Departments(ctx context.Context) ([]refdata.Item, error) {
	return refItems(p.C.Departments(ctx))
}

func (p MFTPlus) Months(ctx context.Context) ([]refdata.Item, error) {
	return refItems(p.C.Months(ctx))
}

func (p MFTPlus) Groups(ctx context.Context, departmentID string) ([]refdata.Item, error) {
	return refItems(p.C.Groups(ctx, departmentID))
}

func (p MFTPlus) Courses(ctx context.Context, groupID string) ([]refdata.Item, error) {
	return refItems(p.C.Courses(ctx, groupID))
}

func refItems(raw []mftplus.RawRefItem, err error) ([]refdata.Item, error) {
	if err != nil {
		return nil, err
	}
	return mappers.RefItemsFromRaw(raw), nil
}

var _ refdata.Source = MFTPlus{}
