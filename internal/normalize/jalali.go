package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// jalaliMonths is the fixed month-name table of the Persian solar calendar.
var jalaliMonths = map[string]int{
	"فروردین":  1,
	"اردیبهشت": 2,
	"خرداد":    3,
	"تیر":      4,
	"مرداد":    5,
	"شهریور":   6,
	"مهر":      7,
	"آبان":     8,
	"آذر":      9,
	"دی":       10,
	"بهمن":     11,
	"اسفند":    12,
}

// arabicLetters folds Arabic code points that commonly leak into Persian text.
var arabicLetters = strings.NewReplacer("ي", "ی", "ك", "ک", "\u200c", "")

// An optional "ماه" ("month") may follow the month name.
var jalaliDateRe = regexp.MustCompile(`(\d{1,2})[\s\x{00A0}]+(\p{L}+)[\s\x{00A0}]+(?:ماه[\s\x{00A0}]+)?(\d{4})`)

// JalaliDate finds "<day> <month-name> [ماه] <year>" inside free text and returns the
// Gregorian ISO date (YYYY-MM-DD). Nil when nothing usable is found.
func JalaliDate(s string) *string {
	s = arabicLetters.Replace(Digits(s))
	m := jalaliDateRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	month, ok := jalaliMonths[m[2]]
	if !ok {
		return nil
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])

	gy, gm, gd, ok := JalaliToGregorian(year, month, day)
	if !ok {
		return nil
	}
	iso := fmt.Sprintf("%04d-%02d-%02d", gy, gm, gd)
	return &iso
}

// JalaliToGregorian converts a Jalali date to the proleptic Gregorian calendar.
// ok is false for dates outside the supported range or invalid days.
func JalaliToGregorian(jy, jm, jd int) (gy, gm, gd int, ok bool) {
	if jm < 1 || jm > 12 || jd < 1 {
		return 0, 0, 0, false
	}
	leap, gYear, march, ok := jalCal(jy)
	if !ok {
		return 0, 0, 0, false
	}
	if jd > jalaliMonthLength(jm, leap == 0) {
		return 0, 0, 0, false
	}
	jdn := g2d(gYear, 3, march) + (jm-1)*31 - (jm/7)*(jm-7) + jd - 1
	gy, gm, gd = d2g(jdn)
	return gy, gm, gd, true
}

func jalaliMonthLength(m int, leap bool) int {
	switch {
	case m <= 6:
		return 31
	case m <= 11:
		return 30
	case leap:
		return 30
	default:
		return 29
	}
}

// Years where the 33-year leap cycle is interrupted.
var jalaliBreaks = []int{
	-61, 9, 38, 199, 426, 686, 756, 818, 1111, 1181, 1210,
	1635, 2060, 2097, 2192, 2262, 2324, 2394, 2456, 3178,
}

// jalCal returns leap (0 means leap year), the Gregorian year in which the Jalali
// year starts, and the March day of Nowruz.
func jalCal(jy int) (leap, gy, march int, ok bool) {
	bl := len(jalaliBreaks)
	jp := jalaliBreaks[0]
	if jy < jp || jy >= jalaliBreaks[bl-1] {
		return 0, 0, 0, false
	}

	gy = jy + 621
	leapJ := -14
	jump := 0
	for i := 1; i < bl; i++ {
		jm := jalaliBreaks[i]
		jump = jm - jp
		if jy < jm {
			break
		}
		leapJ += jump/33*8 + (jump%33)/4
		jp = jm
	}
	n := jy - jp

	leapJ += n/33*8 + (n%33+3)/4
	if jump%33 == 4 && jump-n == 4 {
		leapJ++
	}
	leapG := gy/4 - (gy/100+1)*3/4 - 150
	march = 20 + leapJ - leapG

	if jump-n < 6 {
		n = n - jump + (jump+4)/33*33
	}
	leap = ((n+1)%33 - 1) % 4
	if leap == -1 {
		leap = 4
	}
	return leap, gy, march, true
}

// g2d converts a Gregorian date to a Julian day number.
func g2d(gy, gm, gd int) int {
	d := (gy+(gm-8)/6+100100)*1461/4 + (153*((gm+9)%12)+2)/5 + gd - 34840408
	return d - (gy+100100+(gm-8)/6)/100*3/4 + 752
}

// d2g converts a Julian day number to a Gregorian date.
func d2g(jdn int) (gy, gm, gd int) {
	j := 4*jdn + 139361631
	j += (4*jdn+183187720)/146097*3/4*4 - 3908
	i := (j%1461)/4*5 + 308
	gd = (i%153)/5 + 1
	gm = (i/153)%12 + 1
	gy = j/1461 - 100100 + (8-gm)/6
	return gy, gm, gd
}

var isoDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// Date accepts an ISO date as-is (time part dropped) and otherwise falls back to JalaliDate.
func Date(s string) *string {
	v := strings.TrimSpace(Digits(s))
	if m := isoDate.FindStringSubmatch(v); m != nil {
		if _, err := time.Parse("2006-01-02", m[0]); err == nil {
			out := m[0]
			return &out
		}
	}
	return JalaliDate(s)
}
