package feeds

import "errors"

var (
	// ErrEndpointRequired is returned by Fetch when the descriptor carries
	// no endpoint URL.
	ErrEndpointRequired = errors.New("descriptor endpoint required")

	// ErrURLRequired is returned by Scraper.Article for an empty page URL.
	ErrURLRequired = errors.New("article url required")

	// ErrNoSources is returned when a source config file lists no sources.
	ErrNoSources = errors.New("source config lists no sources")
)
