package calendar

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/civiclens/civiclens/internal/event"
)

// GenerateICS generates an iCalendar (.ics) file for a record
func GenerateICS(rec *event.Record) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//civiclens//civiclens//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString("BEGIN:VEVENT\r\n")

	// UID - stable identifier derived from the event URL
	sum := sha256.Sum256([]byte(rec.EventURL))
	ics.WriteString(fmt.Sprintf("UID:%x@civiclens\r\n", sum[:8]))

	// DTSTAMP - timestamp when this calendar entry was created
	now := time.Now().UTC()
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(now)))

	start, end := eventWindow(rec, now)
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(start)))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(end)))

	// SUMMARY - event title
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(event.Text(rec.Title))))

	// DESCRIPTION - event details plus the source link
	description := event.Text(rec.Description)
	if description == "" {
		description = event.Text(rec.Title)
	}
	description += "\n\nDetails: " + rec.EventURL
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description)))

	if rec.Location != nil {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(*rec.Location)))
	}

	ics.WriteString(fmt.Sprintf("URL:%s\r\n", rec.EventURL))

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")

	ics.WriteString("END:VEVENT\r\n")
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

// FileName returns a stable .ics file name for a record, derived from its
// event URL so reruns overwrite the same file.
func FileName(rec *event.Record) string {
	sum := sha256.Sum256([]byte(rec.EventURL))
	return fmt.Sprintf("%x.ics", sum[:8])
}

// eventWindow resolves the record's start and end instants. Missing dates
// fall back to a week out; a missing start time defaults to 9 AM and a
// missing end time to a two hour duration.
func eventWindow(rec *event.Record, now time.Time) (time.Time, time.Time) {
	day := now.AddDate(0, 0, 7)
	if rec.Date != nil {
		if parsed, err := time.Parse(event.DateLayout, *rec.Date); err == nil {
			day = parsed
		}
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
	if clock, ok := parseClock(event.Text(rec.StartTime)); ok {
		start = time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC)
	}

	end := start.Add(2 * time.Hour)
	if clock, ok := parseClock(event.Text(rec.EndTime)); ok {
		candidate := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC)
		if candidate.After(start) {
			end = candidate
		}
	}

	return start, end
}

func parseClock(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("3:04 PM", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
