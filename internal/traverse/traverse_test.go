package traverse

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/civiclens/civiclens/internal/logger"
	"github.com/civiclens/civiclens/internal/render"
	"github.com/civiclens/civiclens/internal/source"
)

// fakeRenderer serves a fixed sequence of listing pages. ClickNext advances
// through the sequence and reports no further pages at the end.
type fakeRenderer struct {
	pages       []string
	index       int
	scrollCalls int
	clickCalls  int
}

func (f *fakeRenderer) Fetch(_ context.Context, url string, _ render.Policy) (*render.Content, error) {
	return &render.Content{URL: url, HTML: f.pages[f.index]}, nil
}

func (f *fakeRenderer) ScrollToBottom(context.Context) (*render.Content, error) {
	f.scrollCalls++
	return &render.Content{URL: "listing", HTML: f.pages[f.index]}, nil
}

func (f *fakeRenderer) ClickNext(context.Context, string) (*render.Content, bool, error) {
	f.clickCalls++
	if f.index+1 >= len(f.pages) {
		return nil, false, nil
	}
	f.index++
	return &render.Content{URL: "listing", HTML: f.pages[f.index]}, true, nil
}

func (f *fakeRenderer) Close() error { return nil }

func quietLogger() *logger.Logger {
	return logger.New(logger.LevelError, io.Discard)
}

func linksProfile() *source.Profile {
	return &source.Profile{
		Platform:     "eventbrite",
		ListingURL:   "https://example.com/events",
		BaseURL:      "https://example.com",
		Mode:         source.ModeLinks,
		LinkSelector: "a.event",
		NextSelector: "button.next",
	}
}

func TestCollectPaginatesAndDedups(t *testing.T) {
	renderer := &fakeRenderer{pages: []string{
		`<div><a class="event" href="/e/1">A</a><a class="event" href="/e/2">B</a></div>`,
		`<div><a class="event" href="/e/2">B</a><a class="event" href="/e/3">C</a></div>`,
		`<div><a class="event" href="/e/3">C</a></div>`,
	}}

	items, err := New(renderer, linksProfile(), quietLogger(), 0).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	want := []string{
		"https://example.com/e/1",
		"https://example.com/e/2",
		"https://example.com/e/3",
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, item := range items {
		if item.URL != want[i] {
			t.Errorf("item %d = %q, expected %q", i, item.URL, want[i])
		}
	}

	// page 3 yielded nothing new, so the walk stopped there
	if renderer.clickCalls != 2 {
		t.Errorf("expected 2 pagination clicks, got %d", renderer.clickCalls)
	}
}

func TestCollectStopsWithoutNextSelector(t *testing.T) {
	profile := linksProfile()
	profile.NextSelector = ""

	renderer := &fakeRenderer{pages: []string{
		`<div><a class="event" href="/e/1">A</a></div>`,
		`<div><a class="event" href="/e/2">B</a></div>`,
	}}

	items, err := New(renderer, profile, quietLogger(), 0).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected the walk to stop after one page, got %d items", len(items))
	}
	if renderer.clickCalls != 0 {
		t.Errorf("no pagination should be attempted, got %d clicks", renderer.clickCalls)
	}
}

func TestCollectHonorsMaxPages(t *testing.T) {
	renderer := &fakeRenderer{pages: []string{
		`<div><a class="event" href="/e/1">A</a></div>`,
		`<div><a class="event" href="/e/2">B</a></div>`,
	}}

	items, err := New(renderer, linksProfile(), quietLogger(), 1).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item with a one-page cap, got %d", len(items))
	}
	if renderer.clickCalls != 0 {
		t.Errorf("expected no clicks, got %d", renderer.clickCalls)
	}
}

func TestCollectScrollsWhenProfileAsks(t *testing.T) {
	profile := linksProfile()
	profile.Scroll = true
	profile.NextSelector = ""

	renderer := &fakeRenderer{pages: []string{
		`<div><a class="event" href="/e/1">A</a></div>`,
	}}

	if _, err := New(renderer, profile, quietLogger(), 0).Collect(context.Background()); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if renderer.scrollCalls != 1 {
		t.Errorf("expected 1 scroll, got %d", renderer.scrollCalls)
	}
}

func TestCollectLinkTextCards(t *testing.T) {
	profile := &source.Profile{
		Platform:     "edmontonrin",
		ListingURL:   "https://example.com/events",
		BaseURL:      "https://example.com",
		Mode:         source.ModeCards,
		CardLinkText: "view event",
	}

	renderer := &fakeRenderer{pages: []string{`<div>
		<article><h3>Community Mixer</h3><a href="/e/mixer">View Event</a></article>
		<article><h3>Night Market</h3><a href="/e/market">View Event</a></article>
		<article><h3>No link card</h3></article>
	</div>`}}

	items, err := New(renderer, profile, quietLogger(), 0).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].URL != "https://example.com/e/mixer" {
		t.Errorf("item 0 url = %q", items[0].URL)
	}
	if !strings.Contains(items[0].Fragment, "Community Mixer") {
		t.Error("fragment should contain the enclosing card's content")
	}
}

func TestCollectSelectorCards(t *testing.T) {
	profile := &source.Profile{
		Platform:     "platformcalgary",
		ListingURL:   "https://example.com/events",
		BaseURL:      "https://example.com",
		Mode:         source.ModeCards,
		ItemSelector: ".card",
	}

	renderer := &fakeRenderer{pages: []string{`<div>
		<div class="card"><h3>Spring Gala</h3><a href="/e/gala">More</a></div>
		<div class="card"><h3>Orphan card</h3></div>
	</div>`}}

	items, err := New(renderer, profile, quietLogger(), 0).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("cards without a link have no identity and must be dropped, got %d items", len(items))
	}
	if items[0].URL != "https://example.com/e/gala" {
		t.Errorf("item url = %q", items[0].URL)
	}
	if !strings.Contains(items[0].Fragment, "Spring Gala") {
		t.Error("fragment should carry the card markup")
	}
}
