package mftplus

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// RawCourse is one search result as the calendar endpoint returns it.
// Scalars arrive as strings, numbers or null depending on the record, so most
// fields are FlexString.
type RawCourse struct {
	ID          ObjectID   `json:"id"`
	ClassID     FlexString `json:"classId"`
	ClassIDAlt  FlexString `json:"class_id"`
	Title       FlexString `json:"title"`
	Dep         FlexString `json:"dep"`
	Center      FlexString `json:"center"`
	Author      FlexString `json:"author"`
	Start       FlexString `json:"start"`
	End         FlexString `json:"end"`
	Capacity    FlexString `json:"capacity"`
	Time        FlexString `json:"time"`
	Days        FlexList   `json:"days"`
	MinCost     FlexString `json:"minCost"`
	MaxCost     FlexString `json:"maxCost"`
	LessonID    FlexString `json:"lessonId"`
	LessonURL   FlexString `json:"lessonUrl"`
	Cover       FlexString `json:"cover"`
	Certificate FlexString `json:"certificate"`
}

// RawRefItem is one entry of a reference endpoint (place, department, group, course, month).
type RawRefItem struct {
	ID              ObjectID   `json:"id"`
	Title           FlexString `json:"title"`
	DepartmentID    ObjectID   `json:"department_id"`
	DepartmentTitle FlexString `json:"department_title"`
	GroupID         ObjectID   `json:"group_id"`
	GroupTitle      FlexString `json:"group_title"`
}

// ObjectID accepts {"$oid": "..."}, a plain string, or a number.
type ObjectID string

func (o *ObjectID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var v struct {
			OID FlexString `json:"$oid"`
		}
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*o = ObjectID(strings.TrimSpace(string(v.OID)))
		return nil
	}
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*o = ObjectID(strings.TrimSpace(string(s)))
	return nil
}

// FlexString decodes any JSON scalar into its text form; null becomes "".
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case bytes.Equal(b, []byte("true")):
		*f = "1"
	case bytes.Equal(b, []byte("false")):
		*f = "0"
	case b[0] == '{' || b[0] == '[':
		// structured value where a scalar was expected: keep nothing
		*f = ""
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = FlexString(trimFloat(n.String()))
	}
	return nil
}

// trimFloat renders whole floats without a fraction ("24.0" -> "24").
func trimFloat(s string) string {
	if !strings.ContainsAny(s, ".eE") {
		return s
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (f FlexString) String() string { return string(f) }

// FlexList is a list of scalars; a single scalar is read as a one-item list.
type FlexList []string

func (l *FlexList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if b[0] != '[' {
		var s FlexString
		if err := s.UnmarshalJSON(b); err != nil {
			return err
		}
		if s == "" {
			*l = nil
		} else {
			*l = FlexList{string(s)}
		}
		return nil
	}
	var items []FlexString
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	out := make(FlexList, 0, len(items))
	for _, it := range items {
		if v := strings.TrimSpace(string(it)); v != "" {
			out = append(out, v)
		}
	}
	*l = out
	return nil
}

// decodeList accepts a bare JSON array or {"result": [...]}. Empty bodies and null are empty lists.
// Elements are decoded one by one: an element that does not decode is reported to
// onBad (when set) and skipped, the rest are kept.
func decodeList[T any](body []byte, onBad func(i int, err error)) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	var raw []json.RawMessage
	if body[0] == '{' {
		var wrapped struct {
			Result []json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, err
		}
		raw = wrapped.Result
	} else if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(raw))
	for i, msg := range raw {
		var v T
		if err := json.Unmarshal(msg, &v); err != nil {
			if onBad != nil {
				onBad(i, err)
			}
			continue
		}
		out = append(out, v)
	}
	return out, nil
}
