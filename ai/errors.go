package ai

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmptyCompletion is returned when the generation service responds
	// without any choices.
	ErrEmptyCompletion = errors.New("generation service returned no choices")
)
