package source

// Builtins returns the platform profiles that ship with the binary.
func Builtins() []*Profile {
	return []*Profile{
		platformCalgary(),
		edmontonRIN(),
		eventbrite(),
	}
}

// platformcalgary publishes fully anchored cards behind a CMS filter; the
// detail page keeps a structured date/time/location list in its main
// column.
func platformCalgary() *Profile {
	return &Profile{
		Platform:     "platformcalgary",
		ListingURL:   "https://www.platformcalgary.com/events",
		BaseURL:      "https://www.platformcalgary.com",
		Mode:         ModeCards,
		ItemSelector: `section#community [fs-cmsfilter-element="list"] .w-dyn-item`,
		WaitPolicy:   "networkidle",
		Anchors: Anchors{
			Card:        ".card.link.u-h-100",
			Link:        "a.u-link-cover",
			Title:       `h3[fs-cmsfilter-field="title"]`,
			Day:         ".event-date-wrap .h3",
			Month:       ".event-date-wrap .label-text",
			Times:       ".card-body.u-p-16 .u-d-flex .label-text.dark",
			Location:    ".card-body.u-p-16 .label-text.dark",
			Description: `p[fs-cmsfilter-field="description"]`,
			Categories:  `.card-body.divider-top [fs-cmsfilter-field="category"]`,
		},
		Detail: DetailZone{
			Container: ".col.col-lg-8.col-sm-12",
			InfoItems: ".card .card-body ul li",
		},
	}
}

// edmontonrin has no stable card markup; cards are discovered through their
// "view event" link and every field comes from the positional heuristics.
func edmontonRIN() *Profile {
	return &Profile{
		Platform:     "edmontonrin",
		ListingURL:   "https://www.edmontonrin.ca/events",
		BaseURL:      "https://www.edmontonrin.ca",
		Mode:         ModeCards,
		CardLinkText: "view event",
		WaitPolicy:   "networkidle",
		Detail: DetailZone{
			Container: "article",
			Body:      ".content",
		},
	}
}

// eventbrite listings are an infinite-scroll link list; all fields are
// extracted from the detail page, whose date lives in a machine-readable
// datetime attribute next to a display-time string.
func eventbrite() *Profile {
	return &Profile{
		Platform:     "eventbrite",
		ListingURL:   "https://www.eventbrite.ca/d/canada--edmonton/business--events--next-week/?page=1",
		BaseURL:      "https://www.eventbrite.ca",
		Mode:         ModeLinks,
		LinkSelector: ".discover-vertical-event-card a.event-card-link",
		Scroll:       true,
		NextSelector: `button[data-testid="page-next"]`,
		WaitPolicy:   "networkidle",
		Detail: DetailZone{
			Title:       "h1[event-title], h1.event-title",
			DateAttr:    "time",
			TimeText:    "time",
			Location:    ".start-date-and-location__location",
			Description: "#event-description, .event-description__content",
		},
	}
}
