// Package normalize holds the locale-aware value parsers used when mapping raw
// catalog records. Every function fails soft: a value that cannot be parsed
// comes back as nil (or false), never as an error.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// UnspecifiedTeacher is the placeholder the catalog uses for "not specified".
const UnspecifiedTeacher = "مشخص نشده"

// Digits converts Persian (U+06F0..U+06F9) and Arabic-Indic (U+0660..U+0669)
// digits to ASCII.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		}
		return r
	}, s)
}

var thousandsSep = strings.NewReplacer(",", "", "٬", "", "،", "")

var allDigits = regexp.MustCompile(`^[0-9]+$`)

// Price parses a price with optional thousands separators ("۱۲,۰۰۰" -> 12000).
// Anything that is not purely numeric after cleaning is nil.
func Price(s string) *int {
	v := thousandsSep.Replace(strings.TrimSpace(Digits(s)))
	if !allDigits.MatchString(v) {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

var digitRun = regexp.MustCompile(`[0-9]+`)

// Int parses the first run of digits ("۲۴ ساعت" -> 24). Nil when there is none.
func Int(s string) *int {
	v := thousandsSep.Replace(Digits(s))
	m := digitRun.FindString(v)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

var numeric = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

// Bool is a flexible truthy parse: numeric strings are true when non-zero,
// everything else is false.
func Bool(s string) bool {
	v := strings.TrimSpace(Digits(s))
	if !numeric.MatchString(v) {
		return false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return false
	}
	return f != 0
}

// Teacher returns nil for empty values and the "not specified" placeholder.
func Teacher(s string) *string {
	v := strings.TrimSpace(s)
	if v == "" || v == UnspecifiedTeacher {
		return nil
	}
	return &v
}

// Text trims s and returns nil when nothing is left.
func Text(s string) *string {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return &v
}
