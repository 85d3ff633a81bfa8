package event

import (
	"strings"
	"testing"
)

func TestMergeDescription(t *testing.T) {
	long := strings.Repeat("An in-depth look at the evening's program. ", 5)
	longer := long + long

	t.Run("short listing description is replaced", func(t *testing.T) {
		rec := &Record{Description: strPtr("Join us!")}
		rec.Merge(&Detail{Description: strPtr(long)})
		if Text(rec.Description) != long {
			t.Error("detail description should replace a short listing blurb")
		}
	})

	t.Run("absent listing description is filled", func(t *testing.T) {
		rec := &Record{}
		rec.Merge(&Detail{Description: strPtr(long)})
		if Text(rec.Description) != long {
			t.Error("detail description should fill an absent one")
		}
	})

	t.Run("long listing description is never overwritten", func(t *testing.T) {
		rec := &Record{Description: strPtr(long)}
		rec.Merge(&Detail{Description: strPtr(longer)})
		if Text(rec.Description) != long {
			t.Error("a listing description at threshold should survive even a longer detail one")
		}
	})
}

func TestMergeDateAuthority(t *testing.T) {
	rec := &Record{
		Date:      strPtr("07/12/2025"),
		DayOfWeek: strPtr("Saturday"),
		StartTime: strPtr("6:00 PM"),
		Location:  strPtr("Listing Hall"),
	}

	rec.Merge(&Detail{
		DateTime: &DateTime{
			Date:      "07/19/2025",
			DayOfWeek: "Saturday",
			StartTime: "7:00 PM",
			EndTime:   "10:00 PM",
		},
		Location: strPtr("Detail Hall"),
	})

	if Text(rec.Date) != "07/19/2025" {
		t.Errorf("detail date should win, got %q", Text(rec.Date))
	}
	if Text(rec.StartTime) != "7:00 PM" || Text(rec.EndTime) != "10:00 PM" {
		t.Errorf("detail times should win, got %q-%q", Text(rec.StartTime), Text(rec.EndTime))
	}
	if Text(rec.Location) != "Detail Hall" {
		t.Errorf("detail location should win, got %q", Text(rec.Location))
	}
}

func TestMergeNilDateTimeKeepsListingValues(t *testing.T) {
	rec := &Record{
		Date:      strPtr("07/12/2025"),
		StartTime: strPtr("6:00 PM"),
	}
	rec.Merge(&Detail{})

	if Text(rec.Date) != "07/12/2025" || Text(rec.StartTime) != "6:00 PM" {
		t.Error("an unparsed info block must not clear listing values")
	}
}

func TestMergeTitleOnlyFillsAbsent(t *testing.T) {
	rec := &Record{Title: strPtr("Listing Title")}
	rec.Merge(&Detail{Title: strPtr("Detail Title")})
	if Text(rec.Title) != "Listing Title" {
		t.Error("listing title should survive")
	}

	empty := &Record{}
	empty.Merge(&Detail{Title: strPtr("Detail Title")})
	if Text(empty.Title) != "Detail Title" {
		t.Error("absent title should be filled from the detail page")
	}
}

func TestApplyDateText(t *testing.T) {
	t.Run("fills date and times from raw text", func(t *testing.T) {
		rec := &Record{RawDateText: "July 12 from 6:00 PM to 9:00 PM"}
		rec.ApplyDateText(testNow)

		if Text(rec.Date) != "07/12/2025" {
			t.Errorf("date = %q", Text(rec.Date))
		}
		if Text(rec.DayOfWeek) != "Saturday" {
			t.Errorf("day_of_week = %q", Text(rec.DayOfWeek))
		}
		if Text(rec.StartTime) != "6:00 PM" || Text(rec.EndTime) != "9:00 PM" {
			t.Errorf("times = %q-%q", Text(rec.StartTime), Text(rec.EndTime))
		}
	})

	t.Run("existing canonical date is untouched", func(t *testing.T) {
		rec := &Record{Date: strPtr("07/19/2025"), RawDateText: "July 12, 2025"}
		rec.ApplyDateText(testNow)
		if Text(rec.Date) != "07/19/2025" {
			t.Error("a detail-derived date must not be overwritten by raw listing text")
		}
	})

	t.Run("listing times are not clobbered", func(t *testing.T) {
		rec := &Record{
			StartTime:   strPtr("5:30 PM"),
			RawDateText: "July 12 from 6:00 PM to 9:00 PM",
		}
		rec.ApplyDateText(testNow)
		if Text(rec.StartTime) != "5:30 PM" {
			t.Error("an already-set start time should survive")
		}
		if Text(rec.EndTime) != "9:00 PM" {
			t.Error("an absent end time should be filled")
		}
	})

	t.Run("unparseable text leaves fields absent", func(t *testing.T) {
		rec := &Record{RawDateText: "TO NOV 15"}
		rec.ApplyDateText(testNow)
		if rec.Date != nil {
			t.Errorf("banner text should not produce a date, got %q", Text(rec.Date))
		}
	})
}
