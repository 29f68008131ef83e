package curation

import "errors"

var (
	// ErrProviderRequired is returned when the engine is constructed
	// without a service provider.
	ErrProviderRequired = errors.New("ai provider is required")

	// ErrNoSources is returned when the configuration names no sources.
	ErrNoSources = errors.New("at least one source is required")
)
