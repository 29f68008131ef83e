package workflow

import (
	"fmt"
	"maps"
)

// State maps named channels to their current values. Stages receive a
// snapshot and return a partial State touching only the channels they own.
type State map[string]any

// Clone returns a shallow copy. Channel values are shared, so stages must
// treat nested data as read-only and express changes through their update.
func (s State) Clone() State {
	return maps.Clone(s)
}

// Reducer merges an incoming channel value into the existing one. Reducers
// must be insensitive to the order concurrent updates arrive in.
type Reducer func(existing, incoming any) any

// ChannelSpec declares one state channel: its default value at run start and
// the reducer applied when updates target it.
type ChannelSpec struct {
	Default func() any
	Reduce  Reducer
}

// Schema declares every channel a graph run may touch. Updates to channels
// outside the schema fail the run.
type Schema map[string]ChannelSpec

// Replace is the reducer for single-writer channels: the incoming value wins.
func Replace() Reducer {
	return func(_, incoming any) any {
		return incoming
	}
}

// Append is the reducer for log-style channels holding []T: updates
// concatenate. Concatenation order follows frontier order, which may differ
// between runs; callers must not rely on it.
func Append[T any]() Reducer {
	return func(existing, incoming any) any {
		if incoming == nil {
			return existing
		}
		in, ok := incoming.([]T)
		if !ok {
			panic(fmt.Sprintf("workflow: append reducer got %T", incoming))
		}
		if existing == nil {
			return in
		}
		ex, ok := existing.([]T)
		if !ok {
			panic(fmt.Sprintf("workflow: append reducer over %T", existing))
		}
		merged := make([]T, 0, len(ex)+len(in))
		merged = append(merged, ex...)
		merged = append(merged, in...)
		return merged
	}
}

// Union is the reducer for map[K]V channels written by concurrent branches.
// Branches are expected to write disjoint keys; on a collision the incoming
// value wins.
func Union[K comparable, V any]() Reducer {
	return func(existing, incoming any) any {
		if incoming == nil {
			return existing
		}
		in, ok := incoming.(map[K]V)
		if !ok {
			panic(fmt.Sprintf("workflow: union reducer got %T", incoming))
		}
		if existing == nil {
			return in
		}
		ex, ok := existing.(map[K]V)
		if !ok {
			panic(fmt.Sprintf("workflow: union reducer over %T", existing))
		}
		merged := make(map[K]V, len(ex)+len(in))
		maps.Copy(merged, ex)
		maps.Copy(merged, in)
		return merged
	}
}

// initial builds the run-start State from schema defaults, then folds the
// caller's seed values in through the reducers.
func (sc Schema) initial(seed State) (State, error) {
	state := make(State, len(sc))
	for name, spec := range sc {
		if spec.Default != nil {
			state[name] = spec.Default()
		}
	}
	if err := sc.apply(state, seed); err != nil {
		return nil, err
	}
	return state, nil
}

// apply folds one partial update into state through the channel reducers.
func (sc Schema) apply(state, update State) error {
	for name, value := range update {
		spec, ok := sc[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownChannel, name)
		}
		if spec.Reduce == nil {
			state[name] = value
			continue
		}
		state[name] = spec.Reduce(state[name], value)
	}
	return nil
}
