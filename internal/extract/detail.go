package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/civiclens/civiclens/internal/event"
	"github.com/civiclens/civiclens/internal/source"
)

// Boilerplate lines stripped from detail-page descriptions.
var detailBoilerRe = regexp.MustCompile(`(?i)^(source::|posted in\b|view event\b)`)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	dashRe       = regexp.MustCompile(`[-–—]`)
)

// DetailRecord extracts the enrichment fields from a rendered detail page.
// It never fails: a page with nothing recognizable yields an empty Detail
// and the listing record survives unchanged.
func DetailRecord(html string, p *source.Profile, now time.Time) *event.Detail {
	d := &event.Detail{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return d
	}

	zone := p.Detail

	if zone.Title != "" {
		d.Title = event.Nullable(doc.Find(zone.Title).First().Text())
	}

	container := findContainer(doc, zone)
	if container != nil {
		d.Description = event.Nullable(paragraphs(container, zone))

		if zone.InfoItems != "" {
			if dt := parseInfoItems(container, zone.InfoItems, now, d); dt != nil {
				d.DateTime = dt
			}
		}
	}

	if zone.DateAttr != "" {
		if dt := parseDateAttr(doc, zone, now); dt != nil {
			d.DateTime = dt
		}
	}

	if zone.Location != "" {
		if loc := sanitize(doc.Find(zone.Location).First().Text()); loc != "" {
			d.Location = event.Nullable(loc)
		}
	}

	if zone.Description != "" {
		if desc := sanitize(doc.Find(zone.Description).First().Text()); desc != "" {
			d.Description = event.Nullable(desc)
		}
	}

	// Last resort: let readability dig the main content out of the page.
	if d.Description == nil {
		if article, err := readability.FromReader(strings.NewReader(html), nil); err == nil {
			d.Description = event.Nullable(sanitize(article.TextContent))
		}
	}

	return d
}

func findContainer(doc *goquery.Document, zone source.DetailZone) *goquery.Selection {
	selector := zone.Container
	if selector == "" {
		selector = "article"
	}
	container := doc.Find(selector).First()
	if container.Length() == 0 {
		return nil
	}
	return container
}

// paragraphs joins the container's paragraph texts with blank-line
// separators, preferring the nested body zone when it has paragraphs,
// filtering boilerplate.
func paragraphs(container *goquery.Selection, zone source.DetailZone) string {
	ps := container.Find("p")
	if zone.Body != "" {
		if scoped := container.Find(zone.Body + " p"); scoped.Length() > 0 {
			ps = scoped
		}
	}

	var parts []string
	ps.Each(func(_ int, s *goquery.Selection) {
		text := sanitize(s.Text())
		if text == "" || detailBoilerRe.MatchString(text) {
			return
		}
		parts = append(parts, text)
	})
	return strings.Join(parts, "\n\n")
}

// parseInfoItems reads the structured date/time/location list: item 0 is
// the date, item 1 the time range, item 2 the location. Values that fail to
// parse contribute nothing, leaving the listing values in place.
func parseInfoItems(container *goquery.Selection, selector string, now time.Time, d *event.Detail) *event.DateTime {
	items := container.Find(selector)
	if items.Length() == 0 {
		return nil
	}

	var dt *event.DateTime
	if dateText := sanitize(items.Eq(0).Text()); dateText != "" {
		if parsed, ok := event.Normalize(dateText, now); ok && parsed.Date != "" {
			dt = parsed
		}
	}

	if timeText := sanitize(items.Eq(1).Text()); timeText != "" {
		start, end := splitTimeRange(timeText)
		if start != "" || end != "" {
			if dt == nil {
				dt = &event.DateTime{}
			}
			dt.StartTime = start
			dt.EndTime = end
		}
	}

	if locText := sanitize(items.Eq(2).Text()); locText != "" {
		d.Location = event.Nullable(locText)
	}

	return dt
}

// parseDateAttr reads a machine-readable datetime attribute and pairs it
// with clock tokens scanned from the display-time text.
func parseDateAttr(doc *goquery.Document, zone source.DetailZone, now time.Time) *event.DateTime {
	el := doc.Find(zone.DateAttr).First()
	attr, ok := el.Attr("datetime")
	if !ok {
		return nil
	}
	dt, ok := event.Normalize(attr, now)
	if !ok || dt.Date == "" {
		return nil
	}

	timeText := attr
	if zone.TimeText != "" {
		if display := sanitize(doc.Find(zone.TimeText).First().Text()); display != "" {
			timeText = display
		}
	}
	dt.StartTime, dt.EndTime = event.ScanClockTimes(timeText)
	return dt
}

// splitTimeRange splits "6:00 PM - 9:00 PM" (any dash flavor) into start
// and end clocks.
func splitTimeRange(text string) (start, end string) {
	parts := dashRe.Split(text, 2)
	if len(parts) >= 1 {
		start = event.CanonicalClock(parts[0])
	}
	if len(parts) >= 2 {
		end = event.CanonicalClock(parts[1])
	}
	if start == "" && end == "" {
		return event.ScanClockTimes(text)
	}
	return start, end
}

// sanitize collapses runs of whitespace, matching how detail-page text is
// normalized before comparison.
func sanitize(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
