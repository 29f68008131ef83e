package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rankedRow struct {
	Index int    `json:"i"`
	Title string `json:"title,omitempty"`
	Score int    `json:"score,omitempty"`
}

func TestInto_CleanJSON(t *testing.T) {
	var rows []rankedRow
	err := Into(`[{"i":0,"score":9},{"i":1,"score":7}]`, &rows)
	require.NoError(t, err)
	assert.Equal(t, []rankedRow{{Index: 0, Score: 9}, {Index: 1, Score: 7}}, rows)
}

func TestInto_FencedArrayWithProse(t *testing.T) {
	raw := "Here is the ranking you asked for:\n" +
		"```json\n" +
		`[{"i":2},{"i":0},{"i":1}]` + "\n" +
		"```\n" +
		"Let me know if you need anything else."

	var rows []rankedRow
	err := Into(raw, &rows)
	require.NoError(t, err)
	assert.Equal(t, []rankedRow{{Index: 2}, {Index: 0}, {Index: 1}}, rows,
		"fenced array plus trailing prose must decode to the exact array")
}

func TestInto_ReasoningTagsStripped(t *testing.T) {
	raw := "<think>The first item mentions a funding round, which matters more.\n" +
		"So it should rank first.</think>\n" +
		`[{"i":0},{"i":1}]`

	var rows []rankedRow
	err := Into(raw, &rows)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestInto_EmphasisMarkupAsDelimiters(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{
			name: "stars replacing braces",
			raw:  `[***"i":0***,***"i":1***]`,
			want: 2,
		},
		{
			name: "stars inside existing braces",
			raw:  `[{***"i":0***},{***"i":1***}]`,
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []rankedRow
			err := Into(tt.raw, &rows)
			require.NoError(t, err)
			assert.Len(t, rows, tt.want)
		})
	}
}

func TestInto_TruncatedArray(t *testing.T) {
	raw := `[{"i":0,"score":8},{"i":1,"score":6},{"i":2,"sco`

	var rows []rankedRow
	err := Into(raw, &rows)
	require.NoError(t, err)
	assert.Equal(t, []rankedRow{{Index: 0, Score: 8}, {Index: 1, Score: 6}}, rows,
		"a truncated array must decode to its valid prefix elements only")
}

func TestInto_TruncatedAfterComma(t *testing.T) {
	raw := `[{"i":0,"score":8},{"i":1,"score":6},`

	var rows []rankedRow
	err := Into(raw, &rows)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestExtract_ObjectFromBrokenArray(t *testing.T) {
	// The stray brace up front poisons both bracket trims, and the
	// non-breaking space between tokens breaks the array itself; the one
	// well-formed object inside is still recoverable.
	raw := "{oops [{\"i\":0,\"title\":\"ok\"} ]"

	payload, err := Extract(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"i":0,"title":"ok"}]`, string(payload))
}

func TestExtract_BalancedRegionScan(t *testing.T) {
	// The stray bracket inside a string must not end the scan early, and
	// the broken object at the tail must not stop the first one parsing.
	raw := `noise {"title":"closing ] bracket","i":3} more noise {broken}`

	payload, err := Extract(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"closing ] bracket","i":3}`, string(payload))
}

func TestExtract_EscapedQuoteInString(t *testing.T) {
	raw := `prose [{"title":"she said \"hi\"","i":0}] ] and {junk}`

	payload, err := Extract(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title":"she said \"hi\"","i":0}]`, string(payload))
}

func TestExtract_Empty(t *testing.T) {
	_, err := Extract("   ")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = Extract("<think>only reasoning, no payload</think>")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestExtract_Exhausted(t *testing.T) {
	_, err := Extract("I could not produce a ranking for these items.")
	require.ErrorIs(t, err, ErrNoPayload)
	assert.Contains(t, err.Error(), "could not produce",
		"the decode error must carry a preview of the text")
}

func TestInto_TargetMismatch(t *testing.T) {
	var rows []rankedRow
	err := Into(`{"not":"an array"}`, &rows)
	assert.ErrorIs(t, err, ErrNoPayload)
}
