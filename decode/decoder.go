// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package decode

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

var (
	thinkTags  = regexp.MustCompile(`(?s)<think(?:ing)?>.*?</think(?:ing)?>`)
	fences     = regexp.MustCompile("\\s*```[a-zA-Z]*\\s*")
	trailing   = regexp.MustCompile(`[,\s]+$`)
	danglingEl = regexp.MustCompile(`,\s*\{[^}]*$`)

	// Decorative *** sometimes stands in for structural delimiters. Which
	// delimiter it meant is decided by the bracket next to it: a brace or
	// bracket on the outside means the run was noise or an object boundary.
	starInBrace  = regexp.MustCompile(`\{\s*\*+`)
	starOutBrace = regexp.MustCompile(`\*+\s*\}`)
	starInArray  = regexp.MustCompile(`\[\s*\*+`)
	starOutArray = regexp.MustCompile(`\*+\s*\]`)
	starComma    = regexp.MustCompile(`\*+\s*,\s*\*+`)
	starRuns     = regexp.MustCompile(`\*{2,}`)
)

// Into extracts the JSON payload from raw model text and unmarshals it into v.
func Into(raw string, v any) error {
	payload, err := Extract(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: payload does not match target: %v", ErrNoPayload, err)
	}
	return nil
}

// Extract returns the first recoverable JSON region of raw model text.
//
// Stages run cheapest first, each only if the previous failed: markup
// stripping, direct parse, bracket trimming, single-object recovery,
// truncated-array repair, and depth-counted scanning. Exhaustion returns
// ErrNoPayload wrapping a preview of the text.
func Extract(raw string) (json.RawMessage, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}

	text := normalize(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: nothing left after stripping markup", ErrEmptyResponse)
	}

	// Direct parse.
	if payload, ok := tryParse(text); ok {
		return payload, nil
	}

	// Trim leading/trailing prose around the outermost bracket pair.
	if payload, ok := trimToBrackets(text); ok {
		return payload, nil
	}

	// A lone well-formed object inside a broken array.
	if payload, ok := objectFromBrokenArray(text); ok {
		return payload, nil
	}

	// An array the model never closed.
	if payload, ok := repairTruncatedArray(text); ok {
		slog.Debug("recovered truncated array", "component", "decode")
		return payload, nil
	}

	// Last resort: scan for the first balanced region.
	if payload, ok := scanBalanced(text); ok {
		return payload, nil
	}

	return nil, fmt.Errorf("%w: preview %q", ErrNoPayload, preview(text))
}

// normalize strips reasoning tags, code fences and decorative emphasis.
func normalize(text string) string {
	text = strings.TrimSpace(text)
	text = thinkTags.ReplaceAllString(text, "")
	text = fences.ReplaceAllString(text, " ")

	// *** repair, outside-in: runs touching an existing brace are noise,
	// runs standing where a brace should be become one.
	text = starInBrace.ReplaceAllString(text, "{")
	text = starOutBrace.ReplaceAllString(text, "}")
	text = starInArray.ReplaceAllString(text, "[{")
	text = starOutArray.ReplaceAllString(text, "}]")
	text = starComma.ReplaceAllString(text, "},{")
	text = starRuns.ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}

func tryParse(text string) (json.RawMessage, bool) {
	var probe any
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return nil, false
	}
	return json.RawMessage(text), true
}

func trimToBrackets(text string) (json.RawMessage, bool) {
	for _, pair := range [][2]string{{"[", "]"}, {"{", "}"}} {
		start := strings.Index(text, pair[0])
		if start == -1 {
			continue
		}
		end := strings.LastIndex(text, pair[1])
		if end <= start {
			continue
		}
		if payload, ok := tryParse(text[start : end+1]); ok {
			return payload, true
		}
	}
	return nil, false
}

func objectFromBrokenArray(text string) (json.RawMessage, bool) {
	start := strings.Index(text, "[")
	if start == -1 {
		return nil, false
	}
	end := strings.LastIndex(text, "]")
	if end <= start {
		return nil, false
	}
	inner := strings.TrimSpace(text[start+1 : end])
	if !strings.HasPrefix(inner, "{") || !strings.HasSuffix(inner, "}") {
		return nil, false
	}
	var probe map[string]any
	if err := json.Unmarshal([]byte(inner), &probe); err != nil {
		return nil, false
	}
	return json.RawMessage("[" + inner + "]"), true
}

func repairTruncatedArray(text string) (json.RawMessage, bool) {
	start := strings.Index(text, "[")
	if start == -1 || strings.Contains(text[start:], "]") {
		return nil, false
	}
	truncated := strings.TrimRight(text[start:], " \t\n")
	truncated = trailing.ReplaceAllString(truncated, "")
	truncated = danglingEl.ReplaceAllString(truncated, "")
	return tryParse(truncated + "]")
}

// scanBalanced extracts the first balanced bracket region, counting depth
// while tracking quoted-string and escape state so brackets inside strings
// do not miscount.
func scanBalanced(text string) (json.RawMessage, bool) {
	for _, pair := range [2][2]byte{{'[', ']'}, {'{', '}'}} {
		opener, closer := pair[0], pair[1]
		start := strings.IndexByte(text, opener)
		if start == -1 {
			continue
		}
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(text); i++ {
			ch := text[i]
			if escaped {
				escaped = false
				continue
			}
			if ch == '\\' && inString {
				escaped = true
				continue
			}
			if ch == '"' {
				inString = !inString
			}
			if inString {
				continue
			}
			if ch == opener {
				depth++
			} else if ch == closer {
				depth--
				if depth == 0 {
					if payload, ok := tryParse(text[start : i+1]); ok {
						slog.Debug("recovered balanced region", "component", "decode", "bytes", i+1-start)
						return payload, true
					}
					break
				}
			}
		}
	}
	return nil, false
}

func preview(text string) string {
	const max = 300
	if len(text) > max {
		text = text[:max]
	}
	return text
}
