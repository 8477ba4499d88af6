package mappers

import (
	"strings"

	"course-mirror/internal/providers/mftplus"
	"course-mirror/internal/refdata"
)

// RefItemFromRaw maps one reference entry. Lifecycle fields are left for refdata.Merge.
func RefItemFromRaw(r mftplus.RawRefItem) refdata.Item {
	return refdata.Item{
		ID:              strings.TrimSpace(string(r.ID)),
		Title:           strings.TrimSpace(r.Title.String()),
		DepartmentID:    strings.TrimSpace(string(r.DepartmentID)),
		DepartmentTitle: strings.TrimSpace(r.DepartmentTitle.String()),
		GroupID:         strings.TrimSpace(string(r.GroupID)),
		GroupTitle:      strings.TrimSpace(r.GroupTitle.String()),
	}
}

// RefItemsFromRaw maps a whole listing, dropping entries without an id.
func RefItemsFromRaw(raw []mftplus.RawRefItem) []refdata.Item {
	out := make([]refdata.Item, 0, len(raw))
	for _, r := range raw {
		it := RefItemFromRaw(r)
		if it.ID == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}
