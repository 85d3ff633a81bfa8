// Package source describes where and how a platform publishes its event
// listings: the listing URL, how items are discovered, which anchored
// selectors identify fields unambiguously, and where the detail page keeps
// its content. Profiles for the built-in platforms ship with the binary;
// additional platforms load from YAML files.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode describes what a listing page yields per item.
type Mode string

const (
	// ModeCards: each item is a card carrying partial event data.
	ModeCards Mode = "cards"
	// ModeLinks: the listing only yields detail-page links; every field
	// comes from the detail page.
	ModeLinks Mode = "links"
)

// Anchors are structural selectors that identify a field unambiguously
// within a card. Any anchor may be empty, in which case the positional
// heuristics take over for that field.
type Anchors struct {
	Card        string `yaml:"card"` // sub-card within the item, if nested
	Link        string `yaml:"link"`
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	Day         string `yaml:"day"`   // bare day number, paired with Month
	Month       string `yaml:"month"` // month token, paired with Day
	Times       string `yaml:"times"` // repeated time labels; first=start, third=end
	Location    string `yaml:"location"`
	Description string `yaml:"description"`
	Categories  string `yaml:"categories"`
}

// DetailZone locates content on a detail page.
type DetailZone struct {
	Container   string `yaml:"container"`    // main content region; defaults to "article"
	Body        string `yaml:"body"`         // preferred body zone inside the container
	InfoItems   string `yaml:"info_items"`   // structured date/time/location list items
	Title       string `yaml:"title"`
	DateAttr    string `yaml:"date_attr"`    // element whose datetime attribute is an ISO date
	TimeText    string `yaml:"time_text"`    // display string scanned for clock tokens
	Location    string `yaml:"location"`
	Description string `yaml:"description"`
}

// Profile is the full scraping description of one platform.
type Profile struct {
	Platform     string     `yaml:"platform"`
	ListingURL   string     `yaml:"listing_url"`
	BaseURL      string     `yaml:"base_url"` // for absolutizing relative links
	Mode         Mode       `yaml:"mode"`
	ItemSelector string     `yaml:"item_selector"`  // anchored card discovery
	CardLinkText string     `yaml:"card_link_text"` // discover cards via anchors containing this text
	LinkSelector string     `yaml:"link_selector"`  // ModeLinks: event link selector
	Scroll       bool       `yaml:"scroll"`         // listing needs scrolling to load fully
	NextSelector string     `yaml:"next_selector"`  // pagination control; empty means single page
	WaitPolicy   string     `yaml:"wait_policy"`    // "networkidle" (default) or "domready"
	Anchors      Anchors    `yaml:"anchors"`
	Detail       DetailZone `yaml:"detail"`
}

// Validate checks the profile is usable.
func (p *Profile) Validate() error {
	if p.Platform == "" {
		return fmt.Errorf("profile missing platform name")
	}
	if p.ListingURL == "" {
		return fmt.Errorf("profile %s missing listing_url", p.Platform)
	}
	switch p.Mode {
	case ModeCards:
		if p.ItemSelector == "" && p.CardLinkText == "" {
			return fmt.Errorf("profile %s: cards mode needs item_selector or card_link_text", p.Platform)
		}
	case ModeLinks:
		if p.LinkSelector == "" {
			return fmt.Errorf("profile %s: links mode needs link_selector", p.Platform)
		}
	default:
		return fmt.Errorf("profile %s: unknown mode %q", p.Platform, p.Mode)
	}
	return nil
}

// AbsoluteURL resolves href against the profile's base URL when relative.
func (p *Profile) AbsoluteURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	base := strings.TrimSuffix(p.BaseURL, "/")
	if base == "" {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}

// LoadFile reads a single YAML profile.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	if p.Mode == "" {
		p.Mode = ModeCards
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadDir reads every .yml/.yaml profile in dir. A missing directory is not
// an error; built-in profiles still apply.
func LoadDir(dir string) ([]*Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading profiles dir: %w", err)
	}

	var profiles []*Profile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		p, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Resolve returns the profiles selected by name ("all" selects every known
// profile). Profiles loaded from dir override built-ins with the same
// platform name.
func Resolve(name, dir string) ([]*Profile, error) {
	byName := make(map[string]*Profile)
	order := make([]string, 0)

	add := func(p *Profile) {
		if _, ok := byName[p.Platform]; !ok {
			order = append(order, p.Platform)
		}
		byName[p.Platform] = p
	}

	for _, p := range Builtins() {
		add(p)
	}
	loaded, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, p := range loaded {
		add(p)
	}

	if strings.EqualFold(name, "all") {
		out := make([]*Profile, 0, len(order))
		for _, n := range order {
			out = append(out, byName[n])
		}
		return out, nil
	}

	p, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown source: %s (known: %s)", name, strings.Join(order, ", "))
	}
	return []*Profile{p}, nil
}
