package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// lastPreNewYearMonth is the last month that belongs to a season's second
// calendar year. Months after it fall in the first year.
const lastPreNewYearMonth = 6

// ResolveDate converts a partial "M/D" date into an absolute "YYYY-MM-DD"
// date using the season label ("YYYY-YY" or "YYYY-YYYY"). Months July through
// December resolve to the season's first year, January through June to the
// second.
func ResolveDate(partial, season string) (string, error) {
	wrap := func(err error) error {
		return &DateTransformError{Date: partial, Season: season, Err: err}
	}

	month, day, err := parseMonthDay(StripDateMarkers(partial))
	if err != nil {
		return "", wrap(err)
	}

	first, second, err := ParseSeason(season)
	if err != nil {
		return "", wrap(err)
	}

	year := second
	if month > lastPreNewYearMonth {
		year = first
	}

	if month < 1 || month > 12 {
		return "", wrap(fmt.Errorf("month %d out of range", month))
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day {
		return "", wrap(fmt.Errorf("day %d out of range for %04d-%02d", day, year, month))
	}
	return t.Format(time.DateOnly), nil
}

// dateMarkers are the footnote symbols the listing appends to dates.
const dateMarkers = "†‡*"

// StripDateMarkers removes footnote markers and whitespace. Anything else is
// left for the date parser to reject.
func StripDateMarkers(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune(dateMarkers, r) {
			return -1
		}
		return r
	}, s)
}

func parseMonthDay(s string) (int, int, error) {
	m, d, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, errors.New("expected M/D")
	}
	month, err := parseDatePart(m)
	if err != nil {
		return 0, 0, fmt.Errorf("month: %w", err)
	}
	day, err := parseDatePart(d)
	if err != nil {
		return 0, 0, fmt.Errorf("day: %w", err)
	}
	return month, day, nil
}

// parseDatePart accepts unsigned decimal digits only.
func parseDatePart(s string) (int, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return strconv.Atoi(s)
}

// ParseSeason returns the two calendar years spanned by a season label.
// A two-digit second year takes the first year's century and rolls over to
// the next century when needed ("1999-00" -> 1999, 2000).
func ParseSeason(season string) (int, int, error) {
	before, after, ok := strings.Cut(strings.TrimSpace(season), "-")
	if !ok {
		return 0, 0, fmt.Errorf("malformed season %q", season)
	}
	before, after = strings.TrimSpace(before), strings.TrimSpace(after)
	if len(before) != 4 {
		return 0, 0, fmt.Errorf("malformed season %q", season)
	}

	first, err := strconv.Atoi(before)
	if err != nil {
		return 0, 0, fmt.Errorf("season start year: %w", err)
	}
	second, err := strconv.Atoi(after)
	if err != nil {
		return 0, 0, fmt.Errorf("season end year: %w", err)
	}

	switch len(after) {
	case 4:
	case 2:
		second += first / 100 * 100
		if second < first {
			second += 100
		}
	default:
		return 0, 0, fmt.Errorf("malformed season %q", season)
	}
	return first, second, nil
}
