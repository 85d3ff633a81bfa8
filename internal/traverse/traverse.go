// Package traverse walks a platform's listing pages, discovers event items,
// and deduplicates them across pages so an event surfacing on two listing
// pages is never fetched twice.
package traverse

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/civiclens/civiclens/internal/logger"
	"github.com/civiclens/civiclens/internal/render"
	"github.com/civiclens/civiclens/internal/source"
)

// Item is a discovered listing entry: its identity URL and, for card
// sources, the card's HTML fragment.
type Item struct {
	URL      string
	Fragment string
}

// Controller drives pagination and item discovery for one source.
//
// Termination: a page with no usable next control ends the walk, as does a
// page yielding zero new identities, the guard against sites that
// re-render the same page forever.
type Controller struct {
	renderer render.Renderer
	profile  *source.Profile
	log      *logger.Logger
	maxPages int
	seen     map[string]bool
}

// New creates a traversal controller. maxPages <= 0 means no page cap.
func New(r render.Renderer, p *source.Profile, log *logger.Logger, maxPages int) *Controller {
	return &Controller{
		renderer: r,
		profile:  p,
		log:      log,
		maxPages: maxPages,
		seen:     make(map[string]bool),
	}
}

// Collect walks the listing from its first page and returns every distinct
// item in discovery order. A listing page that cannot be fetched is fatal:
// there is nothing to enrich without a listing.
func (c *Controller) Collect(ctx context.Context) ([]Item, error) {
	policy := render.PolicyFromString(c.profile.WaitPolicy)

	content, err := c.renderer.Fetch(ctx, c.profile.ListingURL, policy)
	if err != nil {
		return nil, fmt.Errorf("fetching listing %s: %w", c.profile.ListingURL, err)
	}

	var items []Item
	page := 1

	for {
		if c.profile.Scroll {
			scrolled, err := c.renderer.ScrollToBottom(ctx)
			if err != nil {
				c.log.Warn("scroll failed, using unscrolled content", logger.Fields{
					"platform": c.profile.Platform,
					"page":     page,
				})
			} else if scrolled != nil {
				content = scrolled
			}
		}

		pageItems, err := c.extractItems(content.HTML)
		if err != nil {
			return nil, fmt.Errorf("parsing listing page %d: %w", page, err)
		}

		fresh := 0
		for _, item := range pageItems {
			if c.seen[item.URL] {
				continue
			}
			c.seen[item.URL] = true
			items = append(items, item)
			fresh++
		}

		c.log.Debug("listing page processed", logger.Fields{
			"platform": c.profile.Platform,
			"page":     page,
			"items":    len(pageItems),
			"new":      fresh,
		})

		if fresh == 0 || c.profile.NextSelector == "" {
			break
		}
		if c.maxPages > 0 && page >= c.maxPages {
			break
		}

		next, ok, err := c.renderer.ClickNext(ctx, c.profile.NextSelector)
		if err != nil {
			return nil, fmt.Errorf("paginating after page %d: %w", page, err)
		}
		if !ok {
			break
		}
		content = next
		page++
	}

	return items, nil
}

// extractItems pulls the page's items according to the profile's discovery
// mode. Entries without a resolvable identity URL are dropped: without an
// identity they can be neither deduplicated nor emitted.
func (c *Controller) extractItems(html string) ([]Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	switch {
	case c.profile.Mode == source.ModeLinks:
		return c.linkItems(doc), nil
	case c.profile.ItemSelector != "":
		return c.selectorCards(doc), nil
	default:
		return c.linkTextCards(doc), nil
	}
}

func (c *Controller) linkItems(doc *goquery.Document) []Item {
	var items []Item
	doc.Find(c.profile.LinkSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		items = append(items, Item{URL: c.profile.AbsoluteURL(href)})
	})
	return items
}

func (c *Controller) selectorCards(doc *goquery.Document) []Item {
	var items []Item
	doc.Find(c.profile.ItemSelector).Each(func(_ int, s *goquery.Selection) {
		url := c.cardURL(s)
		if url == "" {
			return
		}
		fragment, err := goquery.OuterHtml(s)
		if err != nil {
			return
		}
		items = append(items, Item{URL: url, Fragment: fragment})
	})
	return items
}

// linkTextCards discovers cards through anchors whose text matches the
// profile's marker (e.g. "view event"), then walks up to the enclosing
// card: the closest article, else the closest div, else the parent.
func (c *Controller) linkTextCards(doc *goquery.Document) []Item {
	marker := strings.ToLower(c.profile.CardLinkText)

	var items []Item
	doc.Find("a").Each(func(_ int, link *goquery.Selection) {
		if !strings.Contains(strings.ToLower(link.Text()), marker) {
			return
		}
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		card := link.Closest("article")
		if card.Length() == 0 {
			card = link.Closest("div")
		}
		if card.Length() == 0 {
			card = link.Parent()
		}
		if card.Length() == 0 {
			return
		}

		fragment, err := goquery.OuterHtml(card)
		if err != nil {
			return
		}
		items = append(items, Item{URL: c.profile.AbsoluteURL(href), Fragment: fragment})
	})
	return items
}

func (c *Controller) cardURL(item *goquery.Selection) string {
	a := c.profile.Anchors
	scope := item
	if a.Card != "" {
		if inner := item.Find(a.Card).First(); inner.Length() > 0 {
			scope = inner
		}
	}
	if a.Link != "" {
		if href, ok := scope.Find(a.Link).First().Attr("href"); ok {
			return c.profile.AbsoluteURL(href)
		}
	}
	if href, ok := scope.Find("a[href]").First().Attr("href"); ok {
		return c.profile.AbsoluteURL(href)
	}
	return ""
}
