package batch

import "errors"

var (
	// ErrLimiterRequired is returned when an invoker is created without a
	// rate limiter.
	ErrLimiterRequired = errors.New("rate limiter required")

	// ErrInvalidPoolSize is returned for non-positive worker pool sizes.
	ErrInvalidPoolSize = errors.New("pool size must be positive")

	// ErrInvalidBatchSize is returned for non-positive batch sizes.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrInvalidWindow is returned for a limiter with a non-positive window
	// or call budget.
	ErrInvalidWindow = errors.New("limiter window and max calls must be positive")
)
