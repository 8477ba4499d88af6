// Package textclean turns scraped page text into tidy single-line strings.
package textclean

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	multiDash  = regexp.MustCompile(`-{3,}`)
	onlyDashes = regexp.MustCompile(`^[-–—]+$`)
)

// readMore is the "continue reading" link text that leaks into descriptions.
const readMore = "ادامه"

// Clean normalizes s and returns nil when nothing meaningful is left.
//
// Kept: letters, numbers, underscore, whitespace and .,;:!?()؟،-–—'"/
// Everything else (bidi marks, bullets, emoji, diacritics) is dropped.
func Clean(s string) *string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if keep(r) {
			return r
		}
		return -1
	}, s)
	s = multiDash.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")

	if s == "" || strings.Contains(s, readMore) || onlyDashes.MatchString(s) {
		return nil
	}
	return &s
}

// CleanList cleans every item and drops the empty ones. Nil when none survive.
func CleanList(items []string) []string {
	var out []string
	for _, it := range items {
		if c := Clean(it); c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// CleanPtr is Clean for an optional value.
func CleanPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return Clean(*s)
}

func keep(r rune) bool {
	switch {
	case r == '\u200e', r == '\u200f':
		return false
	case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r), r == '_':
		return true
	}
	return strings.ContainsRune(`.,;:!?()؟،-–—'"/`, r)
}
