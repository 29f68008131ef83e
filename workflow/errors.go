package workflow

import "errors"

var (
	// ErrNoEntry is returned when a graph is run without an entry stage.
	ErrNoEntry = errors.New("workflow: no entry stage set")

	// ErrUnknownStage is returned when an edge or router names a stage that
	// was never added.
	ErrUnknownStage = errors.New("workflow: unknown stage")

	// ErrDuplicateStage is returned when a stage name is added twice.
	ErrDuplicateStage = errors.New("workflow: duplicate stage")

	// ErrUnknownChannel is returned when a stage update targets a channel
	// missing from the schema.
	ErrUnknownChannel = errors.New("workflow: unknown state channel")

	// ErrStepLimit is returned when a run exceeds its superstep budget,
	// which means a routing loop is not terminating.
	ErrStepLimit = errors.New("workflow: superstep limit exceeded")
)
