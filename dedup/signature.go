package dedup

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xrash/smetrics"
	"golang.org/x/text/unicode/norm"

	"github.com/poiesic/curator/core"
)

// Stop words excluded from proper-token extraction. Sentence-leading words
// like "The" would otherwise look proper-noun-like.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "how": true, "why": true, "what": true, "new": true,
}

// signature caches the per-item comparison inputs so each layer works on
// precomputed values. The summary is the service-written one-liner; raw feed
// descriptions carry too much boilerplate to compare, so an item without an
// annotation contributes no summary signal.
type signature struct {
	key      string
	title    string
	display  string
	summary  string
	entities map[string]bool
	cluster  string
	proper   map[string]bool
	numeric  map[string]bool
	vector   []float32
}

func newSignature(item *core.Item) signature {
	sig := signature{
		key:     item.Key,
		title:   normalizeText(item.Title),
		display: normalizeText(item.Title),
	}

	tokenSource := item.Title
	if item.Annotation != nil {
		if item.Annotation.DisplayTitle != "" {
			sig.display = normalizeText(item.Annotation.DisplayTitle)
			tokenSource += " " + item.Annotation.DisplayTitle
		}
		if item.Annotation.Summary != "" {
			sig.summary = normalizeText(item.Annotation.Summary)
		}
		sig.cluster = strings.ToLower(strings.TrimSpace(item.Annotation.Cluster))
		sig.entities = make(map[string]bool, len(item.Annotation.Entities))
		for _, entity := range item.Annotation.Entities {
			entity = strings.ToLower(strings.TrimSpace(entity))
			if entity != "" {
				sig.entities[entity] = true
			}
		}
	}

	sig.proper, sig.numeric = keyTokens(tokenSource)
	return sig
}

// normalizeText lowercases, applies NFKC, strips punctuation and collapses
// whitespace, matching how titles are prepared on the annotation side.
func normalizeText(s string) string {
	s = norm.NFKC.String(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}

// ratio is a similarity in [0,1] between two normalized strings, derived
// from edit distance. Empty input never matches.
func ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	distance := smetrics.Ukkonen(a, b, 1, 1, 1)
	similarity := 1 - float64(distance)/float64(longest)
	if similarity < 0 {
		return 0
	}
	return similarity
}

// keyTokens splits raw (cased) text into proper-noun-like and numeric
// tokens. A token carrying any digit counts as numeric; otherwise an
// uppercase-initial token of at least two runes counts as proper. Both sets
// are stored lowercased.
func keyTokens(text string) (proper, numeric map[string]bool) {
	proper = make(map[string]bool)
	numeric = make(map[string]bool)
	for _, word := range strings.Fields(text) {
		word = strings.Trim(word, ".,!?;:'\"-()[]{}")
		if word == "" {
			continue
		}
		if strings.ContainsFunc(word, unicode.IsDigit) {
			numeric[strings.ToLower(word)] = true
			continue
		}
		first, _ := utf8.DecodeRuneInString(word)
		lower := strings.ToLower(word)
		if unicode.IsUpper(first) && utf8.RuneCountInString(word) >= 2 && !stopWords[lower] {
			proper[lower] = true
		}
	}
	return proper, numeric
}
