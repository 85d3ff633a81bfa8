package event

import "time"

// Detail holds the fields a detail page can contribute. Fields left nil
// contribute nothing; the listing values survive.
type Detail struct {
	Title       *string
	Description *string
	DateTime    *DateTime // parsed structured info block; authoritative when present
	Location    *string
}

// Merge folds detail-page data into a listing-derived record, field by
// field, without ever regressing a field from better to worse data:
//
//   - description: the detail value wins only when non-empty and the listing
//     value was absent or below DescriptionThreshold;
//   - date/day-of-week/start/end from a parsed info block replace the
//     listing values unconditionally; the detail page is authoritative for
//     them. An info block that failed to parse arrives as a nil DateTime and
//     the (possibly stale) listing values are kept;
//   - location: same authority rule as the date;
//   - categories are listing-only and never touched here.
func (r *Record) Merge(d *Detail) {
	if d == nil {
		return
	}

	if d.Title != nil && r.Title == nil {
		r.Title = d.Title
	}

	if d.Description != nil {
		if r.Description == nil || len(*r.Description) < DescriptionThreshold {
			r.Description = d.Description
		}
	}

	if d.DateTime != nil {
		if d.DateTime.Date != "" {
			r.Date = Nullable(d.DateTime.Date)
			r.DayOfWeek = Nullable(d.DateTime.DayOfWeek)
		}
		if d.DateTime.StartTime != "" {
			r.StartTime = Nullable(d.DateTime.StartTime)
		}
		if d.DateTime.EndTime != "" {
			r.EndTime = Nullable(d.DateTime.EndTime)
		}
	}

	if d.Location != nil {
		r.Location = d.Location
	}
}

// ApplyDateText normalizes the record's raw date text when the canonical
// date has not been set by a detail info block. A date that fails to parse
// leaves the fields absent; a set canonical date is never cleared.
func (r *Record) ApplyDateText(now time.Time) {
	if r.Date != nil || r.RawDateText == "" {
		return
	}
	dt, ok := Normalize(r.RawDateText, now)
	if !ok {
		return
	}
	if dt.Date != "" {
		r.Date = Nullable(dt.Date)
		r.DayOfWeek = Nullable(dt.DayOfWeek)
	}
	if r.StartTime == nil && dt.StartTime != "" {
		r.StartTime = Nullable(dt.StartTime)
	}
	if r.EndTime == nil && dt.EndTime != "" {
		r.EndTime = Nullable(dt.EndTime)
	}
}
