package rank

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/poiesic/curator/decode"
)

// envelope returns the object fields of a wrapped response in key order.
// Models occasionally wrap the requested array in {"results": [...]}; trying
// the fields in sorted order keeps the unwrap deterministic.
func envelope(raw string) []json.RawMessage {
	var fields map[string]json.RawMessage
	if decode.Into(raw, &fields) != nil {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	vals := make([]json.RawMessage, 0, len(keys))
	for _, k := range keys {
		vals = append(vals, fields[k])
	}
	return vals
}

// decodeRows parses model output into loosely-typed result rows. Rows that
// fail to parse individually are dropped instead of failing the whole batch.
func decodeRows(raw string) ([]map[string]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := decode.Into(raw, &elems); err != nil {
		for _, field := range envelope(raw) {
			var inner []json.RawMessage
			if json.Unmarshal(field, &inner) == nil && len(inner) > 0 {
				elems = inner
				break
			}
		}
		if elems == nil {
			return nil, err
		}
	}
	rows := make([]map[string]json.RawMessage, 0, len(elems))
	for _, el := range elems {
		var row map[string]json.RawMessage
		if json.Unmarshal(el, &row) == nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// decodeIndexList parses a ranking response: a bare integer array, possibly
// wrapped in an envelope object.
func decodeIndexList(raw string) ([]int, error) {
	var ranked []int
	err := decode.Into(raw, &ranked)
	if err == nil {
		return ranked, nil
	}
	for _, field := range envelope(raw) {
		var inner []int
		if json.Unmarshal(field, &inner) == nil && len(inner) > 0 {
			return inner, nil
		}
	}
	return nil, err
}

// rowPosition extracts the batch-local index a row refers to, accepting
// both "i" and "index" and tolerating numbers encoded as strings.
func rowPosition(row map[string]json.RawMessage) (int, bool) {
	for _, key := range []string{"i", "index"} {
		raw, ok := row[key]
		if !ok {
			continue
		}
		var f float64
		if json.Unmarshal(raw, &f) == nil {
			return int(f), true
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// rowString extracts a trimmed string field, empty when missing or not a
// string.
func rowString(row map[string]json.RawMessage, key string) string {
	raw, ok := row[key]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// rowScore extracts one rubric dimension clamped to [0, 10]. A missing or
// malformed dimension scores zero.
func rowScore(row map[string]json.RawMessage, key string) int {
	raw, ok := row[key]
	if !ok {
		return 0
	}
	var f float64
	if json.Unmarshal(raw, &f) != nil {
		return 0
	}
	return clampScore(f)
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return int(math.Round(v))
}
