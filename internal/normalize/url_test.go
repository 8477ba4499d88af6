package normalize

import "testing"

func TestQuote(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"مجتمع فنی تهران", "%D9%85%D8%AC%D8%AA%D9%85%D8%B9%20%D9%81%D9%86%DB%8C%20%D8%AA%D9%87%D8%B1%D8%A7%D9%86"},
		{"a b&c=d/e", "a%20b%26c%3Dd/e"},
		{"python-course_1.0~", "python-course_1.0~"},
		{"", ""},
	}

	for _, tc := range testCases {
		result := Quote(tc.input)
		if result != tc.expected {
			t.Errorf("Quote(%q) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}

func TestCourseURL(t *testing.T) {
	got := CourseURL("", "1234", "python-programming", "a b")
	want := "https://mftplus.com/lesson/1234/python-programming?refp=a%20b"
	if got != want {
		t.Errorf("CourseURL() = %q, want %q", got, want)
	}

	// deterministic for the same input
	if again := CourseURL("", "1234", "python-programming", "a b"); again != got {
		t.Errorf("Expected CourseURL to be stable, got %q then %q", got, again)
	}

	got = CourseURL("https://example.test/", "7", " web design ", "")
	want = "https://example.test/lesson/7/web-design?refp="
	if got != want {
		t.Errorf("CourseURL() = %q, want %q", got, want)
	}
}

func TestLessonIDFromURL(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"https://mftplus.com/lesson/1234/python?refp=x", "1234"},
		{"https://mftplus.com/lesson/abc/python", ""},
		{"https://mftplus.com/calendar", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		result := LessonIDFromURL(tc.input)
		if result != tc.expected {
			t.Errorf("LessonIDFromURL(%q) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}
