package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{
			name: "valid cards profile",
			profile: Profile{
				Platform:     "test",
				ListingURL:   "https://example.com/events",
				Mode:         ModeCards,
				ItemSelector: ".card",
			},
		},
		{
			name: "valid link-text cards profile",
			profile: Profile{
				Platform:     "test",
				ListingURL:   "https://example.com/events",
				Mode:         ModeCards,
				CardLinkText: "view event",
			},
		},
		{
			name: "valid links profile",
			profile: Profile{
				Platform:     "test",
				ListingURL:   "https://example.com/events",
				Mode:         ModeLinks,
				LinkSelector: "a.event",
			},
		},
		{
			name:    "missing platform",
			profile: Profile{ListingURL: "https://example.com", Mode: ModeCards, ItemSelector: ".card"},
			wantErr: true,
		},
		{
			name:    "missing listing url",
			profile: Profile{Platform: "test", Mode: ModeCards, ItemSelector: ".card"},
			wantErr: true,
		},
		{
			name:    "cards mode without discovery",
			profile: Profile{Platform: "test", ListingURL: "https://example.com", Mode: ModeCards},
			wantErr: true,
		},
		{
			name:    "links mode without selector",
			profile: Profile{Platform: "test", ListingURL: "https://example.com", Mode: ModeLinks},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			profile: Profile{Platform: "test", ListingURL: "https://example.com", Mode: "feed"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAbsoluteURL(t *testing.T) {
	p := &Profile{BaseURL: "https://example.com/"}

	tests := []struct {
		href     string
		expected string
	}{
		{"/e/1", "https://example.com/e/1"},
		{"e/1", "https://example.com/e/1"},
		{"https://other.com/e/1", "https://other.com/e/1"},
		{"  /e/2  ", "https://example.com/e/2"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := p.AbsoluteURL(tt.href); got != tt.expected {
			t.Errorf("AbsoluteURL(%q) = %q, expected %q", tt.href, got, tt.expected)
		}
	}
}

func TestBuiltinsAreValid(t *testing.T) {
	for _, p := range Builtins() {
		if err := p.Validate(); err != nil {
			t.Errorf("builtin %s invalid: %v", p.Platform, err)
		}
	}
}

const profileYAML = `platform: townhall
listing_url: https://townhall.example.com/events
base_url: https://townhall.example.com
mode: links
link_selector: a.event
next_selector: a.next
detail:
  title: h1.title
  description: .about
`

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "townhall.yml")
	if err := os.WriteFile(path, []byte(profileYAML), 0644); err != nil {
		t.Fatalf("writing profile: %v", err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if p.Platform != "townhall" {
		t.Errorf("platform = %q", p.Platform)
	}
	if p.Mode != ModeLinks {
		t.Errorf("mode = %q", p.Mode)
	}
	if p.LinkSelector != "a.event" {
		t.Errorf("link_selector = %q", p.LinkSelector)
	}
	if p.Detail.Title != "h1.title" {
		t.Errorf("detail.title = %q", p.Detail.Title)
	}
}

func TestResolve(t *testing.T) {
	t.Run("all selects every builtin", func(t *testing.T) {
		profiles, err := Resolve("all", "")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if len(profiles) != len(Builtins()) {
			t.Errorf("expected %d profiles, got %d", len(Builtins()), len(profiles))
		}
	})

	t.Run("by name", func(t *testing.T) {
		profiles, err := Resolve("eventbrite", "")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if len(profiles) != 1 || profiles[0].Platform != "eventbrite" {
			t.Errorf("unexpected profiles: %v", profiles)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		if _, err := Resolve("nope", ""); err == nil {
			t.Error("expected an error for an unknown source")
		}
	})

	t.Run("directory profile overrides builtin", func(t *testing.T) {
		dir := t.TempDir()
		override := `platform: eventbrite
listing_url: https://staging.example.com/events
mode: links
link_selector: a.event
`
		if err := os.WriteFile(filepath.Join(dir, "eventbrite.yaml"), []byte(override), 0644); err != nil {
			t.Fatalf("writing override: %v", err)
		}

		profiles, err := Resolve("eventbrite", dir)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if profiles[0].ListingURL != "https://staging.example.com/events" {
			t.Errorf("override not applied, listing_url = %q", profiles[0].ListingURL)
		}
	})
}
