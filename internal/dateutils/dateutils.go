// Package dateutils parses statement dates and resolves years that statements omit.
package dateutils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayoutISO = "2006-01-02"
	DateLayoutUS  = "01/02/2006"
	// DocDateLayout is the MMDD stamp used in document numbers.
	DocDateLayout = "0102"
)

// CommonFormats are tried in order after any template-specific formats.
// Month-first layouts precede day-first ones, so 03/04/2024 is March 4.
var CommonFormats = []string{
	"1/2/2006",
	"1-2-2006",
	"2006-01-02",
	"2/1/2006",
	"1/2/06",
	"2-1-2006",
	"2006/1/2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var whitespace = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses whitespace.
func CleanDateString(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ParseDate parses s with the preferred layouts first, then CommonFormats.
// It returns the layout that succeeded.
func ParseDate(s string, preferred ...string) (time.Time, string, error) {
	s = CleanDateString(s)
	if s == "" {
		return time.Time{}, "", fmt.Errorf("empty date")
	}
	for _, layouts := range [][]string{preferred, CommonFormats} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, layout, nil
			}
		}
	}
	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", s)
}

// ToISODate formats a date as YYYY-MM-DD.
func ToISODate(t time.Time) string {
	return t.Format(DateLayoutISO)
}

// Period is the date range a statement covers.
type Period struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether both bounds are set and ordered.
func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && !p.End.Before(p.Start)
}

// ResolveYear picks the year for a month that appears without one.
// Within a period that crosses a year boundary, months at or after the start month
// belong to the start year and earlier months to the end year. Otherwise the end year wins.
func (p Period) ResolveYear(month time.Month) int {
	if p.Start.Year() != p.End.Year() && month >= p.Start.Month() {
		return p.Start.Year()
	}
	return p.End.Year()
}

var (
	fullUSDate = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/(20\d{2})\b`)
	anyYear    = regexp.MustCompile(`\b(20\d{2})\b`)
)

// InferYear scans statement text for a year: the first MM/DD/20YY date, then any 20YY,
// then the year of now.
func InferYear(text string, now time.Time) int {
	for _, re := range []*regexp.Regexp{fullUSDate, anyYear} {
		if m := re.FindStringSubmatch(text); m != nil {
			if y, err := strconv.Atoi(m[1]); err == nil {
				return y
			}
		}
	}
	return now.Year()
}

var monthDay = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})$`)

// HasYear reports whether a date literal already carries a year.
func HasYear(s string) bool {
	return !monthDay.MatchString(CleanDateString(s))
}

// WithYear appends year to a month/day literal such as "01/15" or "1-5".
// Literals that already carry a year are returned unchanged.
func WithYear(s string, year int) string {
	s = CleanDateString(s)
	m := monthDay.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	sep := "/"
	if strings.Contains(s, "-") {
		sep = "-"
	}
	return fmt.Sprintf("%s%s%s%s%d", m[1], sep, m[2], sep, year)
}

// MonthOf returns the month of a month/day literal, or 0 if s is not one.
func MonthOf(s string) time.Month {
	m := monthDay.FindStringSubmatch(CleanDateString(s))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 12 {
		return 0
	}
	return time.Month(n)
}
