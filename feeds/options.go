package feeds

import (
	"log/slog"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Option configures the feeds components.
type Option func(*options)

type options struct {
	client   *http.Client
	logger   *slog.Logger
	poolSize int
	matcher  *Relevance
}

// applyOptions folds user options over each component's own defaults.
func applyOptions(o options, opts ...Option) options {
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &http.Client{Timeout: defaultTimeout}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.poolSize < 1 {
		o.poolSize = 1
	}
	if o.matcher == nil {
		o.matcher = DefaultRelevance()
	}
	return o
}

// WithHTTPClient sets the HTTP client used for network calls.
// Default is a client with a 10 second timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.client = client
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPoolSize overrides the worker pool size for parallel fetching and
// enrichment.
func WithPoolSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.poolSize = n
		}
	}
}

// WithRelevance sets the keyword matcher applied to sources that enable
// the pre-filter. Default is DefaultRelevance.
func WithRelevance(m *Relevance) Option {
	return func(o *options) {
		if m != nil {
			o.matcher = m
		}
	}
}
