package feeds

import (
	"fmt"
	"strings"
)

// Kind selects how a source is read.
type Kind string

const (
	// KindRSS reads the endpoint as an RSS 2.0 or Atom feed. The zero
	// value defaults here.
	KindRSS Kind = "rss"
	// KindPage scrapes the endpoint as an HTML listing page.
	KindPage Kind = "page"
)

// Role controls how a source's items participate downstream.
type Role string

const (
	// RoleCategory items are annotated, classified and ranked into the
	// digest's category sections. The zero value defaults here.
	RoleCategory Role = "category"
	// RoleSection items skip classification and render as the source's
	// own digest section.
	RoleSection Role = "section"
)

// ImageHint tells the RSS connector where a feed hides its entry images.
// Image enclosures are always tried as a last resort.
type ImageHint string

const (
	// HintNone relies on enclosures and the enrichment scrape only.
	HintNone ImageHint = ""
	// HintMediaThumbnail reads media:thumbnail, then media:content
	// elements tagged as images.
	HintMediaThumbnail ImageHint = "media_thumbnail"
	// HintContentImage pulls the first <img> out of the entry's inline
	// HTML content.
	HintContentImage ImageHint = "content_image"
)

// Descriptor names one external source and how to read it. Omitted fields
// take catalog defaults: KindRSS, RoleCategory, 30 items, a 14 day window
// and English.
type Descriptor struct {
	Key        string    `toml:"key"`      // stable identifier, stamped on items as Source
	Name       string    `toml:"name"`     // human-readable name for display layers
	Endpoint   string    `toml:"endpoint"` // feed URL, or listing page URL for KindPage
	Kind       Kind      `toml:"kind"`
	Role       Role      `toml:"role"`
	MaxItems   int       `toml:"max_items"`   // per-source cap
	Window     int       `toml:"window_days"` // recency window in days
	Language   string    `toml:"language"`    // primary language tag
	ImageField ImageHint `toml:"image_field"`
	Filter     bool      `toml:"keyword_filter"` // drop entries the keyword matcher rejects
	Highlight  bool      `toml:"highlight"`      // items may be picked as digest highlights
}

func (d Descriptor) withDefaults() Descriptor {
	if d.Kind == "" {
		d.Kind = KindRSS
	}
	if d.Role == "" {
		d.Role = RoleCategory
	}
	if d.MaxItems <= 0 {
		d.MaxItems = 30
	}
	if d.Window <= 0 {
		d.Window = 14
	}
	if d.Language == "" {
		d.Language = "en"
	}
	return d
}

// Validate reports the first problem with the descriptor.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Key) == "" {
		return fmt.Errorf("source %q: key required", d.Name)
	}
	if strings.TrimSpace(d.Endpoint) == "" {
		return fmt.Errorf("source %s: %w", d.Key, ErrEndpointRequired)
	}
	switch d.Kind {
	case "", KindRSS, KindPage:
	default:
		return fmt.Errorf("source %s: unknown kind %q", d.Key, d.Kind)
	}
	switch d.Role {
	case "", RoleCategory, RoleSection:
	default:
		return fmt.Errorf("source %s: unknown role %q", d.Key, d.Role)
	}
	switch d.ImageField {
	case HintNone, HintMediaThumbnail, HintContentImage:
	default:
		return fmt.Errorf("source %s: unknown image field %q", d.Key, d.ImageField)
	}
	return nil
}
