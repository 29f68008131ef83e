package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnion_OrderInsensitive(t *testing.T) {
	reduce := Union[string, int]()
	left := map[string]int{"a": 1, "b": 2}
	right := map[string]int{"c": 3}

	lr := reduce(reduce(nil, left), right)
	rl := reduce(reduce(nil, right), left)

	want := map[string]int{"a": 1, "b": 2, "c": 3}
	assert.Equal(t, want, lr)
	assert.Equal(t, want, rl, "disjoint updates must merge identically in either order")
}

func TestUnion_CollisionIncomingWins(t *testing.T) {
	reduce := Union[string, int]()
	merged := reduce(map[string]int{"a": 1}, map[string]int{"a": 9})
	assert.Equal(t, map[string]int{"a": 9}, merged)
}

func TestUnion_DoesNotMutateInputs(t *testing.T) {
	reduce := Union[string, int]()
	existing := map[string]int{"a": 1}
	incoming := map[string]int{"b": 2}
	reduce(existing, incoming)

	assert.Equal(t, map[string]int{"a": 1}, existing)
	assert.Equal(t, map[string]int{"b": 2}, incoming)
}

func TestAppend_ContentOrderInsensitive(t *testing.T) {
	reduce := Append[string]()
	left := []string{"a", "b"}
	right := []string{"c"}

	lr := reduce(reduce(nil, left), right).([]string)
	rl := reduce(reduce(nil, right), left).([]string)

	assert.ElementsMatch(t, lr, rl,
		"concatenation order may vary, merged content must not")
	assert.Len(t, lr, 3)
}

func TestAppend_NilSides(t *testing.T) {
	reduce := Append[int]()
	assert.Equal(t, []int{1}, reduce(nil, []int{1}))
	assert.Equal(t, []int{1}, reduce([]int{1}, nil))
}

func TestReplace(t *testing.T) {
	reduce := Replace()
	assert.Equal(t, 2, reduce(1, 2))
	assert.Equal(t, "late", reduce("early", "late"))
}

func TestReducer_TypeMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { Union[string, int]()(nil, "not a map") })
	assert.Panics(t, func() { Append[int]()(nil, "not a slice") })
}

func TestSchema_InitialAppliesSeedThroughReducers(t *testing.T) {
	schema := Schema{
		"items": {
			Default: func() any { return []string{"default"} },
			Reduce:  Append[string](),
		},
		"mode": {Reduce: Replace()},
	}

	state, err := schema.initial(State{
		"items": []string{"seeded"},
		"mode":  "fast",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"default", "seeded"}, state["items"])
	assert.Equal(t, "fast", state["mode"])
}

func TestSchema_ApplyRejectsUnknownChannel(t *testing.T) {
	schema := Schema{"known": {Reduce: Replace()}}
	err := schema.apply(State{}, State{"unknown": 1})
	require.ErrorIs(t, err, ErrUnknownChannel)
}

func TestState_CloneIsShallow(t *testing.T) {
	orig := State{"k": 1}
	clone := orig.Clone()
	clone["k"] = 2

	assert.Equal(t, 1, orig["k"], "clone writes must not leak into the original")
}
