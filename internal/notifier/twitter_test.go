package notifier

import (
	"strings"
	"testing"

	"github.com/civiclens/civiclens/internal/event"
)

func strPtr(s string) *string { return &s }

func TestFormatTweet(t *testing.T) {
	tests := []struct {
		name     string
		record   *event.Record
		contains []string
	}{
		{
			name: "complete record",
			record: &event.Record{
				Platform:  "platformcalgary",
				EventURL:  "https://example.com/e/gala",
				Title:     strPtr("Spring Gala"),
				Date:      strPtr("07/12/2025"),
				StartTime: strPtr("6:00 PM"),
				Location:  strPtr("Grand Hall"),
			},
			contains: []string{
				"Spring Gala",
				"07/12/2025 6:00 PM",
				"Grand Hall",
				"https://example.com/e/gala",
			},
		},
		{
			name: "record without date",
			record: &event.Record{
				Platform: "edmontonrin",
				EventURL: "https://example.com/e/market",
				Title:    strPtr("Weekly Market"),
				Location: strPtr("River Plaza"),
			},
			contains: []string{
				"Weekly Market",
				"River Plaza",
			},
		},
		{
			name: "very long title gets truncated",
			record: &event.Record{
				Platform: "eventbrite",
				EventURL: "https://example.com/e/very-long",
				Title:    strPtr(strings.Repeat("An Extremely Long Event Name ", 12)),
				Date:     strPtr("07/12/2025"),
				Location: strPtr("A Venue With A Very Long Name Indeed"),
			},
			contains: []string{"..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatTweet(tt.record)

			if len(got) > 280 {
				t.Errorf("formatTweet() length = %d, want <= 280", len(got))
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("formatTweet() missing %q in tweet:\n%s", want, got)
				}
			}
		})
	}
}

func TestDryRunNotifier(t *testing.T) {
	records := []*event.Record{
		{
			Platform: "platformcalgary",
			EventURL: "https://example.com/e/1",
			Title:    strPtr("Test Event 1"),
			Date:     strPtr("07/12/2025"),
		},
		{
			Platform: "eventbrite",
			EventURL: "https://example.com/e/2",
			Title:    strPtr("Test Event 2"),
		},
	}

	if err := NewDryRunNotifier().Notify(records); err != nil {
		t.Errorf("DryRunNotifier.Notify() error = %v, want nil", err)
	}
}
