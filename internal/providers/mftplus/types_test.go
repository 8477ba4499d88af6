package mftplus

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRawCourseDecoding(t *testing.T) {
	body := `{
		"id": {"$oid": "65a1"},
		"title": "پایتون",
		"capacity": 20,
		"time": 24.0,
		"minCost": "۱۲,۰۰۰",
		"maxCost": null,
		"lessonId": 1234,
		"days": ["شنبه", " ", "دوشنبه"],
		"certificate": true,
		"cover": {"src": "nested"}
	}`

	var c RawCourse
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if c.ID != "65a1" {
		t.Errorf("Expected id 65a1, got %q", c.ID)
	}
	if c.Capacity != "20" || c.Time != "24" {
		t.Errorf("Expected numbers as text 20/24, got %q/%q", c.Capacity, c.Time)
	}
	if c.MinCost != "۱۲,۰۰۰" || c.MaxCost != "" {
		t.Errorf("Expected raw min cost and empty max cost, got %q/%q", c.MinCost, c.MaxCost)
	}
	if c.LessonID != "1234" {
		t.Errorf("Expected lesson id 1234, got %q", c.LessonID)
	}
	if diff := cmp.Diff(FlexList{"شنبه", "دوشنبه"}, c.Days); diff != "" {
		t.Errorf("days mismatch (-want +got):\n%s", diff)
	}
	if c.Certificate != "1" {
		t.Errorf("Expected certificate flag 1, got %q", c.Certificate)
	}
	if c.Cover != "" {
		t.Errorf("Expected a structured cover to decode as empty, got %q", c.Cover)
	}
}

func TestObjectIDForms(t *testing.T) {
	testCases := []struct {
		input    string
		expected ObjectID
	}{
		{`{"$oid":"abc"}`, "abc"},
		{`"abc"`, "abc"},
		{`" abc "`, "abc"},
		{`42`, "42"},
		{`null`, ""},
	}
	for _, tc := range testCases {
		var id ObjectID
		if err := json.Unmarshal([]byte(tc.input), &id); err != nil {
			t.Errorf("Unmarshal(%s) error: %v", tc.input, err)
			continue
		}
		if id != tc.expected {
			t.Errorf("Unmarshal(%s) = %q, want %q", tc.input, id, tc.expected)
		}
	}
}

func TestFlexListScalar(t *testing.T) {
	var l FlexList
	if err := json.Unmarshal([]byte(`"شنبه"`), &l); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(l) != 1 || l[0] != "شنبه" {
		t.Errorf("Expected a one-item list, got %v", l)
	}
}

func TestDecodeList(t *testing.T) {
	testCases := []struct {
		name  string
		body  string
		count int
	}{
		{"array", `[{"title":"a"},{"title":"b"}]`, 2},
		{"wrapped", `{"result":[{"title":"a"}]}`, 1},
		{"empty array", `[]`, 0},
		{"null", `null`, 0},
		{"empty body", ``, 0},
		{"object without result", `{"ok":true}`, 0},
		{"bad element skipped", `[{"title":"a"},"oops",{"title":"b"}]`, 2},
		{"bad wrapped element skipped", `{"result":[7,{"title":"a"}]}`, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeList[RawRefItem]([]byte(tc.body), nil)
			if err != nil {
				t.Fatalf("decodeList() error: %v", err)
			}
			if len(got) != tc.count {
				t.Errorf("Expected %d items, got %d", tc.count, len(got))
			}
		})
	}

	var bad []int
	if _, err := decodeList[RawRefItem]([]byte(`[null,"x",{"title":"a"}]`), func(i int, err error) { bad = append(bad, i) }); err != nil {
		t.Fatalf("decodeList() error: %v", err)
	}
	if len(bad) != 1 || bad[0] != 1 {
		t.Errorf("Expected element 1 to be reported, got %v", bad)
	}

	if _, err := decodeList[RawRefItem]([]byte(`<html>`), nil); err == nil {
		t.Error("Expected an error for a non-JSON body")
	}
}
