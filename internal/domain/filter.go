package domain

// Filter narrows a catalog search. Empty lists mean "any".
type Filter struct {
	Term        string   `json:"term"`
	Sort        string   `json:"sort"`
	Places      []string `json:"places"`
	Departments []string `json:"departments"`
	Groups      []string `json:"groups"`
	Courses     []string `json:"courses"`
	Months      []string `json:"months"`
}

// IsZero reports whether the filter matches the whole catalog.
func (f Filter) IsZero() bool {
	return f.Term == "" && f.Sort == "" && len(f.Places) == 0 && len(f.Departments) == 0 &&
		len(f.Groups) == 0 && len(f.Courses) == 0 && len(f.Months) == 0
}
