package cli

import (
	"fmt"
	"io"

	"github.com/civiclens/civiclens/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteText outputs records as human-readable text, one block per event.
func WriteText(w io.Writer, records []*event.Record, verbose bool) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	for _, rec := range records {
		title := event.Text(rec.Title)
		if title == "" {
			title = rec.EventURL
		}
		fmt.Fprintf(w, "[%s] %s\n", rec.Platform, title)

		if rec.Date != nil {
			when := *rec.Date
			if rec.DayOfWeek != nil {
				when = *rec.DayOfWeek + " " + when
			}
			if rec.StartTime != nil {
				when += ", " + *rec.StartTime
				if rec.EndTime != nil {
					when += " - " + *rec.EndTime
				}
			}
			fmt.Fprintf(w, "  When: %s\n", when)
		}
		if rec.Location != nil {
			fmt.Fprintf(w, "  Where: %s\n", *rec.Location)
		}
		if verbose {
			fmt.Fprintf(w, "  URL: %s\n", rec.EventURL)
			if rec.Description != nil {
				fmt.Fprintf(w, "  About: %s\n", *rec.Description)
			}
			if len(rec.Categories) > 0 {
				for _, category := range rec.Categories {
					fmt.Fprintf(w, "  Tag: %s\n", category)
				}
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total: %d events\n", len(records))
	return nil
}
