package rank

import (
	"log/slog"
	"runtime"
)

// Option configures a Classifier or Ranker.
type Option func(*options)

type options struct {
	poolSize int
	logger   *slog.Logger
}

func applyOptions(opts ...Option) options {
	o := options{
		poolSize: max(1, runtime.NumCPU()/2),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithPoolSize overrides the worker pool size for batched service calls.
// Default is half the CPU count, minimum one.
func WithPoolSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.poolSize = n
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
