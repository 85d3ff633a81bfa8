// Package filter narrows a run's records by user criteria.
//
// Criteria can be combined and all active ones must match:
//   - Date ranges (from/to dates, inclusive)
//   - Title keywords (substring matching, case-insensitive)
//   - Locations (substring matching, case-insensitive)
//   - Platforms (exact match, case-insensitive)
//   - Categories (substring matching, case-insensitive)
//   - Weekends only (Saturday/Sunday)
//
// Records without a resolvable date pass date-based criteria: an unknown
// date is not evidence of a mismatch.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/civiclens/civiclens/internal/event"
)

// Filter represents record filtering criteria
type Filter struct {
	// Date range filtering
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Title keyword filtering (case-insensitive substring match)
	Keywords []string `json:"keywords,omitempty"`

	// Weekend-only filtering (Saturday/Sunday)
	WeekendsOnly bool `json:"weekends_only,omitempty"`

	// Platform filtering (case-insensitive exact match)
	Platforms []string `json:"platforms,omitempty"`

	// Location filtering (case-insensitive substring match)
	Locations []string `json:"locations,omitempty"`

	// Category filtering (case-insensitive substring match)
	Categories []string `json:"categories,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all records until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Keywords:   []string{},
		Platforms:  []string{},
		Locations:  []string{},
		Categories: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Keywords) == 0 &&
		!f.WeekendsOnly &&
		len(f.Platforms) == 0 &&
		len(f.Locations) == 0 &&
		len(f.Categories) == 0
}

// Matches checks if a record passes all active filter criteria. An empty
// filter matches everything.
func (f *Filter) Matches(rec *event.Record) bool {
	if f.IsEmpty() {
		return true
	}

	recordDate := recordDate(rec)

	if f.DateFrom != nil && recordDate != nil {
		if recordDate.Before(*f.DateFrom) {
			return false
		}
	}

	if f.DateTo != nil && recordDate != nil {
		if recordDate.After(*f.DateTo) {
			return false
		}
	}

	if f.WeekendsOnly && recordDate != nil {
		weekday := recordDate.Weekday()
		if weekday != time.Saturday && weekday != time.Sunday {
			return false
		}
	}

	if len(f.Keywords) > 0 {
		if !containsAny(event.Text(rec.Title), f.Keywords) {
			return false
		}
	}

	if len(f.Platforms) > 0 {
		matched := false
		for _, platform := range f.Platforms {
			if strings.EqualFold(rec.Platform, platform) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Locations) > 0 {
		if !containsAny(event.Text(rec.Location), f.Locations) {
			return false
		}
	}

	if len(f.Categories) > 0 {
		matched := false
		for _, category := range rec.Categories {
			if containsAny(category, f.Categories) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Apply returns the records matching all active criteria. An empty filter
// returns the input unchanged.
func (f *Filter) Apply(records []*event.Record) []*event.Record {
	if f.IsEmpty() {
		return records
	}

	var filtered []*event.Record
	for _, rec := range records {
		if f.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}

	return filtered
}

// String returns a human-readable description of the active criteria.
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}
	if len(f.Keywords) > 0 {
		parts = append(parts, fmt.Sprintf("Keywords: %s", strings.Join(f.Keywords, ", ")))
	}
	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}
	if len(f.Platforms) > 0 {
		parts = append(parts, fmt.Sprintf("Platforms: %s", strings.Join(f.Platforms, ", ")))
	}
	if len(f.Locations) > 0 {
		parts = append(parts, fmt.Sprintf("Locations: %s", strings.Join(f.Locations, ", ")))
	}
	if len(f.Categories) > 0 {
		parts = append(parts, fmt.Sprintf("Categories: %s", strings.Join(f.Categories, ", ")))
	}

	return strings.Join(parts, " | ")
}

// containsAny reports whether value contains at least one of the needles,
// case-insensitively.
func containsAny(value string, needles []string) bool {
	lower := strings.ToLower(value)
	for _, needle := range needles {
		if strings.Contains(lower, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

// recordDate parses the record's canonical date. Returns nil when the
// record has none.
func recordDate(rec *event.Record) *time.Time {
	if rec.Date == nil {
		return nil
	}
	t, err := time.Parse(event.DateLayout, *rec.Date)
	if err != nil {
		return nil
	}
	return &t
}
