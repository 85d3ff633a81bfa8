package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/civiclens/civiclens/internal/event"
	"github.com/civiclens/civiclens/internal/source"
)

// Card is one listing item ready for field extraction: its identity URL,
// the parsed subtree, and the flattened text lines.
type Card struct {
	URL   string
	Sel   *goquery.Selection
	Lines []string
}

// CardFromHTML parses a card fragment produced by the traversal layer.
func CardFromHTML(url, fragment string) (*Card, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}
	body := doc.Find("body")
	return &Card{URL: url, Sel: body, Lines: Lines(body)}, nil
}

var (
	monthLineRe   = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|Sept|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\b`)
	monthPrefixRe = regexp.MustCompile(`(?i)^(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)\b`)
	bannerRe      = regexp.MustCompile(`(?i)^(TO|THROUGH|UNTIL)\s`)
	timeLineRe    = regexp.MustCompile(`(?i)\d{1,2}:\d{2}\s?(AM|PM)`)
	meridiemRe    = regexp.MustCompile(`(?i)^[AP]M$`)
	bareDayRe     = regexp.MustCompile(`^[0-9]{1,2}$`)
	calendarRe    = regexp.MustCompile(`(?i)google calendar`)
	icsRe         = regexp.MustCompile(`\bICS\b`)
	mapNoteRe     = regexp.MustCompile(`(?i)\(map\)`)
	viewEventRe   = regexp.MustCompile(`(?i)view event`)
	mapHostRe     = regexp.MustCompile(`(?i)(maps\.google\.com|google\.com/maps)`)
)

// ListingRecord extracts a listing-level record from a card. The anchored
// strategy runs when the profile names structural selectors; the positional
// heuristics otherwise. ok=false discards the item: no title, or (in
// heuristic mode) no date line that parses as a calendar date, which makes
// the future-event filter meaningless for the item.
func ListingRecord(c *Card, p *source.Profile, now time.Time) (*event.Record, bool) {
	if p.Anchors.Title != "" {
		return anchoredRecord(c, p)
	}
	return heuristicRecord(c, p, now)
}

func anchoredRecord(c *Card, p *source.Profile) (*event.Record, bool) {
	a := p.Anchors
	sel := c.Sel
	if a.Card != "" {
		if inner := sel.Find(a.Card).First(); inner.Length() > 0 {
			sel = inner
		}
	}

	url := c.URL
	if a.Link != "" {
		if href, ok := sel.Find(a.Link).First().Attr("href"); ok {
			url = p.AbsoluteURL(href)
		}
	}
	title := strings.TrimSpace(sel.Find(a.Title).First().Text())
	if title == "" && url == "" {
		return nil, false
	}

	rec := &event.Record{
		Platform: p.Platform,
		EventURL: url,
		Title:    event.Nullable(title),
	}

	switch {
	case a.Month != "" && a.Day != "":
		month := strings.TrimSpace(sel.Find(a.Month).First().Text())
		day := strings.TrimSpace(sel.Find(a.Day).First().Text())
		if month != "" && day != "" {
			rec.RawDateText = month + " " + day
		}
	case a.Date != "":
		rec.RawDateText = strings.TrimSpace(sel.Find(a.Date).First().Text())
	}

	if a.Times != "" {
		labels := sel.Find(a.Times).Map(func(_ int, s *goquery.Selection) string {
			return strings.TrimSpace(s.Text())
		})
		start, end := pickTimeLabels(labels)
		rec.StartTime = event.Nullable(start)
		rec.EndTime = event.Nullable(end)
	}

	if a.Location != "" {
		candidates := sel.Find(a.Location)
		if candidates.Length() > 0 {
			rec.Location = event.Nullable(cleanLocation(candidates.Last().Text()))
		}
	}

	if a.Description != "" {
		rec.Description = event.Nullable(sel.Find(a.Description).First().Text())
	}
	if rec.Description == nil {
		// fall back to the first unanchored paragraph
		sel.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if a.Description != "" && s.Is(a.Description) {
				return true
			}
			if text := strings.TrimSpace(s.Text()); text != "" && text != title {
				rec.Description = event.Nullable(text)
				return false
			}
			return true
		})
	}

	if a.Categories != "" {
		sel.Find(a.Categories).Each(func(_ int, s *goquery.Selection) {
			rec.AddCategories(strings.TrimSpace(s.Text()))
		})
	}

	return rec, true
}

// pickTimeLabels interprets a run of time labels the way the cards lay them
// out: "start / separator / end" when three or more, a lone start otherwise.
func pickTimeLabels(labels []string) (start, end string) {
	switch {
	case len(labels) >= 3:
		return event.CanonicalClock(labels[0]), event.CanonicalClock(labels[2])
	case len(labels) >= 1:
		return event.CanonicalClock(labels[0]), ""
	}
	return "", ""
}

func heuristicRecord(c *Card, p *source.Profile, now time.Time) (*event.Record, bool) {
	lines := c.Lines
	if len(lines) == 0 {
		return nil, false
	}

	dateLine, dateIdx, ok := findDateLine(lines, now)
	if !ok {
		return nil, false
	}

	title := titleLine(lines, dateIdx)
	if title == "" {
		return nil, false
	}

	timeIdx := findTimeLine(lines)
	start, end := timeRange(lines)

	locationLine, locIdx := locationAfterTime(lines, timeIdx)
	location := cleanLocation(locationLine)

	desc := descriptionLine(lines, locIdx, title, dateLine, locationLine)

	rec := &event.Record{
		Platform:    p.Platform,
		EventURL:    c.URL,
		Title:       event.Nullable(title),
		StartTime:   event.Nullable(start),
		EndTime:     event.Nullable(end),
		Location:    event.Nullable(location),
		Description: event.Nullable(desc),
		RawDateText: dateLine,
	}
	collectCategories(rec, c.Sel, title)

	return rec, true
}

// findDateLine picks the line carrying the event's calendar date: the first
// month-bearing line that actually parses. Banner ranges ("TO NOV 15") are
// not candidates. ok=false when no candidate parses: the item has no
// usable date and is discarded.
func findDateLine(lines []string, now time.Time) (string, int, bool) {
	for i, line := range lines {
		if !monthLineRe.MatchString(line) || bannerRe.MatchString(line) {
			continue
		}
		if _, ok := event.Normalize(line, now); ok {
			return line, i, true
		}
	}
	return "", -1, false
}

// titleLine resolves the title by priority: the line immediately before the
// date line, then the first line longer than 5 characters that is not a
// bare month token, then the first line.
func titleLine(lines []string, dateIdx int) string {
	if dateIdx > 0 {
		return lines[dateIdx-1]
	}
	for _, line := range lines {
		if len(line) > 5 && !monthPrefixRe.MatchString(line) {
			return line
		}
	}
	return lines[0]
}

func findTimeLine(lines []string) int {
	for i, line := range lines {
		if timeLineRe.MatchString(line) {
			return i
		}
	}
	return -1
}

// timeRange gathers clock occurrences across the card's time lines, in
// order: the first becomes the start time, the second the end time. A lone
// occurrence leaves the end absent; open-ended events are never defaulted
// to midnight.
func timeRange(lines []string) (start, end string) {
	var clocks []string
	for _, line := range lines {
		if !timeLineRe.MatchString(line) {
			continue
		}
		clocks = append(clocks, lineClocks(line)...)
		if len(clocks) >= 2 {
			break
		}
	}
	if len(clocks) >= 1 {
		start = clocks[0]
	}
	if len(clocks) >= 2 {
		end = clocks[1]
	}
	return start, end
}

// lineClocks pairs each AM/PM token with the token immediately before it.
// Fused forms like "6:00PM" fall back to a clock scan.
func lineClocks(line string) []string {
	tokens := strings.Fields(line)
	var clocks []string
	for i, tok := range tokens {
		if meridiemRe.MatchString(tok) && i > 0 {
			if c := event.CanonicalClock(tokens[i-1] + " " + tok); c != "" {
				clocks = append(clocks, c)
			}
		}
	}
	if len(clocks) == 0 {
		s, e := event.ScanClockTimes(line)
		if s != "" {
			clocks = append(clocks, s)
		}
		if e != "" {
			clocks = append(clocks, e)
		}
	}
	return clocks
}

// locationAfterTime returns the first line after the time line that is not
// calendar-link boilerplate and not itself a time line.
func locationAfterTime(lines []string, timeIdx int) (string, int) {
	if timeIdx < 0 {
		return "", -1
	}
	for i := timeIdx + 1; i < len(lines); i++ {
		line := lines[i]
		if calendarRe.MatchString(line) || icsRe.MatchString(line) || timeLineRe.MatchString(line) {
			continue
		}
		return line, i
	}
	return "", -1
}

func cleanLocation(line string) string {
	return strings.TrimSpace(mapNoteRe.ReplaceAllString(line, ""))
}

// descriptionLine looks for prose after the location line; failing that it
// falls back to the longest line not already classified, since longer
// unclassified text is more likely descriptive prose than a stray label.
func descriptionLine(lines []string, locIdx int, title, dateLine, locationLine string) string {
	eligible := func(line string) bool {
		return !calendarRe.MatchString(line) &&
			!icsRe.MatchString(line) &&
			!timeLineRe.MatchString(line) &&
			!monthPrefixRe.MatchString(line) &&
			!bareDayRe.MatchString(line) &&
			line != title &&
			line != dateLine &&
			line != locationLine
	}

	if locIdx >= 0 {
		for i := locIdx + 1; i < len(lines); i++ {
			if eligible(lines[i]) {
				return lines[i]
			}
		}
	}

	longest := ""
	for _, line := range lines {
		if eligible(line) && len(line) > len(longest) {
			longest = line
		}
	}
	return longest
}

// collectCategories gathers tag-like anchors inside the card: anything that
// is not the title, a control ("view event", calendar, ICS), a map link, or
// a month token.
func collectCategories(rec *event.Record, sel *goquery.Selection, title string) {
	if sel == nil {
		return
	}
	sel.Find("a").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		href, _ := s.Attr("href")
		if len(text) <= 2 ||
			text == title ||
			viewEventRe.MatchString(text) ||
			calendarRe.MatchString(text) ||
			icsRe.MatchString(text) ||
			mapNoteRe.MatchString(text) ||
			mapHostRe.MatchString(href) ||
			monthPrefixRe.MatchString(text) {
			return
		}
		rec.AddCategories(text)
	})
}
