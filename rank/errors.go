package rank

import "errors"

var (
	// ErrGeneratorRequired is returned when a constructor is given a nil
	// generation client.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrLimiterRequired is returned when a constructor is given a nil rate
	// limiter.
	ErrLimiterRequired = errors.New("rate limiter is required")

	// ErrEmptyRanking is returned when a ranking response decodes but
	// contains no index inside the category's range.
	ErrEmptyRanking = errors.New("ranking response contained no usable indices")
)
