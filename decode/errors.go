package decode

import "errors"

var (
	// ErrEmptyResponse is returned when the model produced no text, or
	// nothing but reasoning tags and markup.
	ErrEmptyResponse = errors.New("decode: empty response")

	// ErrNoPayload is returned when every recovery stage failed to find
	// valid JSON in the response.
	ErrNoPayload = errors.New("decode: no valid JSON payload")
)
