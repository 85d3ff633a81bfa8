package event

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateLayout is the canonical calendar form used for Record.Date.
const DateLayout = "01/02/2006"

// DateTime is the normalized result of parsing heterogeneous source
// date/time text. DayOfWeek is always derived from Date, never taken from
// the source text, so a stated weekday can never disagree with the stated
// date.
type DateTime struct {
	Date      string // DateLayout form; empty when the source carried no date
	DayOfWeek string
	StartTime string // "H:MM AM" shape; empty when absent
	EndTime   string
}

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

const (
	monthPat   = `(January|February|March|April|May|June|July|August|September|Sept|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`
	weekdayPat = `(Sunday|Monday|Tuesday|Wednesday|Thursday|Friday|Saturday)`
	clockPat   = `(\d{1,2}:\d{2}\s?[APap][Mm])`
)

var (
	clockRe    = regexp.MustCompile(clockPat)
	clockExact = regexp.MustCompile(`(?i)^(\d{1,2}:\d{2})\s?([AP]M)$`)

	// "July 12 from 6:00 PM to 9:00 PM", year optional after the day
	rangeFormRe = regexp.MustCompile(`(?i)^` + monthPat + `\s+(\d{1,2})(?:,?\s+(\d{4}))?\s+from\s+` + clockPat + `\s+to\s+` + clockPat + `$`)

	// "Friday, July 12, 6:00 PM", year and time optional
	weekdayFormRe = regexp.MustCompile(`(?i)^` + weekdayPat + `,\s*` + monthPat + `\s+(\d{1,2})(?:,?\s+(\d{4}))?(?:,?\s+` + clockPat + `)?$`)

	// ISO-8601 machine-readable date attribute, e.g. "2025-07-12T18:00:00-06:00"
	isoFormRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

	// "Saturday at 10:00 AM (+ 2 more)" recurring form: start time, no date
	recurringFormRe = regexp.MustCompile(`(?i)^` + weekdayPat + `\s+at\s+` + clockPat + `(?:\s*\(\+\s*\d+\s+more\))?$`)

	// "JUL 12", "July 4, 2025": a bare month/day pair, year optional
	monthDayRe = regexp.MustCompile(`(?i)^` + monthPat + `\.?\s+(\d{1,2})(?:,?\s+(\d{4}))?$`)
)

// Normalize parses raw date/time text into a DateTime. Dialects are tried in
// order; the first match wins. A final liberal parse catches well-formed
// dates outside the known dialects. Returns false when nothing parses; the
// caller keeps the fields absent rather than defaulting to a zero date.
//
// Sources frequently omit the year; the year of now is assumed, which
// misdates January events scraped in the preceding December. The upstream
// data gives no way to resolve that, so it is left as-is.
func Normalize(raw string, now time.Time) (*DateTime, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	for _, parse := range []func(string, time.Time) (*DateTime, bool){
		parseRangeForm,
		parseWeekdayForm,
		parseISOForm,
		parseRecurringForm,
		parseMonthDay,
		parseLiberal,
	} {
		if dt, ok := parse(raw, now); ok {
			return dt, true
		}
	}

	return nil, false
}

func parseRangeForm(raw string, now time.Time) (*DateTime, bool) {
	m := rangeFormRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	d, ok := buildDate(m[1], m[2], m[3], now)
	if !ok {
		return nil, false
	}
	return fromDate(d, CanonicalClock(m[4]), CanonicalClock(m[5])), true
}

func parseWeekdayForm(raw string, now time.Time) (*DateTime, bool) {
	m := weekdayFormRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	d, ok := buildDate(m[2], m[3], m[4], now)
	if !ok {
		return nil, false
	}
	return fromDate(d, CanonicalClock(m[5]), ""), true
}

func parseISOForm(raw string, _ time.Time) (*DateTime, bool) {
	m := isoFormRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, false
	}
	return fromDate(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), "", ""), true
}

func parseRecurringForm(raw string, _ time.Time) (*DateTime, bool) {
	m := recurringFormRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	return &DateTime{StartTime: CanonicalClock(m[2])}, true
}

func parseMonthDay(raw string, now time.Time) (*DateTime, bool) {
	m := monthDayRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	d, ok := buildDate(m[1], m[2], m[3], now)
	if !ok {
		return nil, false
	}
	return fromDate(d, "", ""), true
}

// parseLiberal is the catch-all for date text outside the known dialects,
// matching the loose parsing the detail info blocks rely on.
func parseLiberal(raw string, _ time.Time) (*DateTime, bool) {
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil, false
	}
	start, end := ScanClockTimes(raw)
	return fromDate(t, start, end), true
}

func buildDate(monthName, dayText, yearText string, now time.Time) (time.Time, bool) {
	month, ok := monthsByName[strings.ToLower(monthName)]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayText)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year := now.Year()
	if yearText != "" {
		year, err = strconv.Atoi(yearText)
		if err != nil {
			return time.Time{}, false
		}
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day {
		// e.g. February 30 rolled over into March
		return time.Time{}, false
	}
	return d, true
}

func fromDate(d time.Time, start, end string) *DateTime {
	return &DateTime{
		Date:      d.Format(DateLayout),
		DayOfWeek: d.Weekday().String(),
		StartTime: start,
		EndTime:   end,
	}
}

// ScanClockTimes scans text for "H:MM AM/PM" tokens. The first becomes the
// start time, the second (if any) the end time. Used for display-time
// strings that accompany a machine-readable date attribute.
func ScanClockTimes(text string) (start, end string) {
	matches := clockRe.FindAllString(text, 2)
	if len(matches) >= 1 {
		start = CanonicalClock(matches[0])
	}
	if len(matches) >= 2 {
		end = CanonicalClock(matches[1])
	}
	return start, end
}

// CanonicalClock normalizes a clock token to "H:MM AM" shape: single space
// before an upper-case meridiem. Returns "" for input that does not carry a
// recognizable clock.
func CanonicalClock(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	m := clockExact.FindStringSubmatch(token)
	if m == nil {
		return ""
	}
	return m[1] + " " + strings.ToUpper(m[2])
}
