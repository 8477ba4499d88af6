package normalize

import (
	"regexp"
	"strings"
)

// DefaultSiteBase is the public site the lesson links point to.
const DefaultSiteBase = "https://mftplus.com"

// CourseURL builds the public lesson link:
//
//	<base>/lesson/<lessonID>/<slug>?refp=<center>
//
// It is a display key for reports, not a merge key.
func CourseURL(base, lessonID, slug, center string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultSiteBase
	}
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("/lesson/")
	b.WriteString(Quote(strings.TrimSpace(lessonID)))
	b.WriteString("/")
	b.WriteString(Quote(Slug(slug)))
	b.WriteString("?refp=")
	b.WriteString(Quote(center))
	return b.String()
}

// Slug trims and replaces inner whitespace with dashes.
func Slug(s string) string {
	return strings.Join(strings.Fields(s), "-")
}

const upperhex = "0123456789ABCDEF"

// Quote percent-encodes every byte except ASCII letters, digits and "_.-~/".
// net/url has no escaper with exactly this safe set: PathEscape keeps "$&+,:;=@"
// and QueryEscape turns spaces into "+".
func Quote(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '_', '.', '-', '~', '/':
		return true
	}
	return false
}

var lessonIDRe = regexp.MustCompile(`/lesson/(\d+)/`)

// LessonIDFromURL extracts the numeric lesson id from a course link.
func LessonIDFromURL(u string) string {
	m := lessonIDRe.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	return m[1]
}
