// Package render fetches fully rendered page content for the pipeline. The
// pipeline only sees the Renderer interface; a headless-browser
// implementation handles script-driven listings and a plain HTTP
// implementation covers static pages.
package render

import (
	"context"
	"strings"
)

// Policy tells the renderer when a page counts as ready.
type Policy int

const (
	// WaitNetworkIdle waits for script-driven content to settle. Used on
	// listing pages, where cards arrive after load.
	WaitNetworkIdle Policy = iota
	// WaitDOMReady returns as soon as the document is parsed. Enough for
	// detail pages, which carry their content in the initial HTML.
	WaitDOMReady
)

// PolicyFromString maps a profile's wait_policy value. Unknown values get
// the safer WaitNetworkIdle.
func PolicyFromString(s string) Policy {
	if strings.EqualFold(s, "domready") {
		return WaitDOMReady
	}
	return WaitNetworkIdle
}

// Content is a rendered page: the URL it settled on (pagination clicks move
// it) and the serialized DOM.
type Content struct {
	URL  string
	HTML string
}

// Renderer produces rendered content for URLs and drives the listing
// page's scroll and pagination controls.
type Renderer interface {
	// Fetch navigates to url and returns the rendered content once the
	// readiness policy is satisfied.
	Fetch(ctx context.Context, url string, policy Policy) (*Content, error)

	// ScrollToBottom scrolls the current page incrementally so
	// lazy-loaded items render, then returns the settled content. A nil
	// Content with nil error means the renderer has no live page and the
	// previously fetched content still stands.
	ScrollToBottom(ctx context.Context) (*Content, error)

	// ClickNext activates the pagination control matching selector and
	// returns the newly rendered page. ok is false when the control is
	// absent or disabled, meaning the listing has no further pages.
	ClickNext(ctx context.Context, selector string) (content *Content, ok bool, err error)

	// Close releases the renderer's resources.
	Close() error
}
