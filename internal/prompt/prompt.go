// Package prompt asks the operator which reference entries a filtered sync should use.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"course-mirror/internal/domain"
	"course-mirror/internal/refdata"
)

type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// MultiSelect prints options as a numbered table and reads one line of
// comma-separated 1-based indexes. Blank and out-of-range entries are ignored,
// as is an end of input. No options means no question.
func (p *Prompter) MultiSelect(title string, options []refdata.Item) ([]refdata.Item, error) {
	if len(options) == 0 {
		return nil, nil
	}

	fmt.Fprintf(p.out, "\n%s\n", title)
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.AppendHeader(table.Row{"#", "Title"})
	for i, o := range options {
		t.AppendRow(table.Row{i + 1, o.Title})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	fmt.Fprint(p.out, "Your choice (comma-separated numbers, empty for none): ")

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("prompt: read: %w", err)
	}

	var picked []refdata.Item
	for _, part := range strings.Split(line, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > len(options) {
			continue
		}
		picked = append(picked, options[n-1])
	}
	return picked, nil
}

// BuildFilter walks places, departments, groups, courses and months. Groups are
// only offered for the chosen departments and courses only for the chosen groups.
func (p *Prompter) BuildFilter(t refdata.Tables) (domain.Filter, error) {
	var f domain.Filter

	places, err := p.MultiSelect("Step 1 → Select places:", refdata.Active(t.Places))
	if err != nil {
		return f, err
	}
	f.Places = ids(places)

	deps, err := p.MultiSelect("Step 2 → Select departments:", refdata.Active(t.Departments))
	if err != nil {
		return f, err
	}
	f.Departments = ids(deps)

	if len(f.Departments) > 0 {
		groups := within(refdata.Active(t.Groups), f.Departments, func(it refdata.Item) string { return it.DepartmentID })
		picked, err := p.MultiSelect("Step 3 → Select groups:", groups)
		if err != nil {
			return f, err
		}
		f.Groups = ids(picked)
	}

	if len(f.Groups) > 0 {
		courses := within(refdata.Active(t.Courses), f.Groups, func(it refdata.Item) string { return it.GroupID })
		picked, err := p.MultiSelect("Step 4 → Select courses:", courses)
		if err != nil {
			return f, err
		}
		f.Courses = ids(picked)
	}

	months, err := p.MultiSelect("Step 5 → Select months:", refdata.Active(t.Months))
	if err != nil {
		return f, err
	}
	f.Months = ids(months)

	return f, nil
}

func ids(items []refdata.Item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func within(items []refdata.Item, parents []string, parent func(refdata.Item) string) []refdata.Item {
	var out []refdata.Item
	for _, it := range items {
		if slices.Contains(parents, parent(it)) {
			out = append(out, it)
		}
	}
	return out
}
