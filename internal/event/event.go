package event

import (
	"strings"
	"time"
)

// DescriptionThreshold separates a listing blurb from a real description.
// Records with a shorter description are considered incomplete and trigger
// a detail-page fetch.
const DescriptionThreshold = 180

// Record is the canonical event produced by the pipeline.
//
// EventURL is the record's identity: it is the dedup key and is required
// before emission. All other fields may be absent (nil), never coerced to
// empty strings, so downstream consumers can tell "scraped but blank" from
// "not found".
type Record struct {
	Platform    string   `json:"platform"`
	Title       *string  `json:"title"`
	EventURL    string   `json:"event_url"`
	Date        *string  `json:"date"`
	DayOfWeek   *string  `json:"day_of_week"`
	StartTime   *string  `json:"start_time"`
	EndTime     *string  `json:"end_time"`
	Location    *string  `json:"location"`
	Description *string  `json:"description"`
	Categories  []string `json:"categories,omitempty"`

	// RawDateText holds the source date text before normalization.
	// Not serialized; Date/DayOfWeek are derived from it.
	RawDateText string `json:"-"`
}

// Nullable trims s and returns a pointer to it, or nil if nothing remains.
func Nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Text returns the string behind p, or "" when absent.
func Text(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// NeedsDetail reports whether the record is incomplete enough to warrant a
// detail-page fetch: missing location, date or description, or a description
// shorter than DescriptionThreshold.
func (r *Record) NeedsDetail() bool {
	if r.Location == nil || r.Date == nil || r.Description == nil {
		return true
	}
	return len(*r.Description) < DescriptionThreshold
}

// Completeness counts populated fields. Used when a duplicate identity is
// discovered: the later occurrence only wins if strictly more complete.
func (r *Record) Completeness() int {
	n := 0
	for _, p := range []*string{r.Title, r.Date, r.DayOfWeek, r.StartTime, r.EndTime, r.Location, r.Description} {
		if p != nil {
			n++
		}
	}
	if len(r.Categories) > 0 {
		n++
	}
	return n
}

// AddCategories appends categories, collapsing duplicates and preserving
// first-seen order.
func (r *Record) AddCategories(cats ...string) {
	seen := make(map[string]bool, len(r.Categories))
	for _, c := range r.Categories {
		seen[c] = true
	}
	for _, c := range cats {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		r.Categories = append(r.Categories, c)
	}
}

// Dedup drops later records that share an identity URL with an earlier one.
// First-seen wins unless a later occurrence is strictly more complete, in
// which case it replaces the earlier record in place (discovery order is
// preserved either way).
func Dedup(records []*Record) []*Record {
	index := make(map[string]int, len(records))
	out := make([]*Record, 0, len(records))

	for _, rec := range records {
		if rec.EventURL == "" {
			continue
		}
		if i, ok := index[rec.EventURL]; ok {
			if rec.Completeness() > out[i].Completeness() {
				out[i] = rec
			}
			continue
		}
		index[rec.EventURL] = len(out)
		out = append(out, rec)
	}

	return out
}

// FilterPast removes records dated before the start of the day containing
// now. Today is inclusive. Records without a canonical date pass through:
// recurring events carry a start time but no date, and dropping them here
// would lose them entirely.
func FilterPast(records []*Record, now time.Time) []*Record {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	out := make([]*Record, 0, len(records))
	for _, rec := range records {
		if rec.Date != nil {
			d, err := time.ParseInLocation(DateLayout, *rec.Date, now.Location())
			if err == nil && d.Before(today) {
				continue
			}
		}
		out = append(out, rec)
	}

	return out
}
