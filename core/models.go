package core

import (
	"encoding/binary"
	"net/url"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored items.
// It is generated by content-based hashing of the item's natural key.
type ID uint64

// IDFromKey generates a deterministic ID from an item's natural key using
// BLAKE2b hashing. Identical keys always produce identical IDs.
func IDFromKey(key string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(key))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// NormalizeKey reduces a raw URL to the item's natural key: lowercased host
// and path, trailing slash stripped, query and fragment dropped. The scheme
// is dropped entirely so http/https variants of one page collapse to the
// same key. Inputs that cannot be parsed as URLs are lowercased and trimmed
// as-is so the key is still usable downstream.
func NormalizeKey(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw), nil
	}
	host := strings.ToLower(u.Host)
	path := strings.ToLower(u.Path)
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "/" {
		path = ""
	}
	return host + path, nil
}

// Annotation holds the model-written fields of an item. A nil Annotation
// means the item has not been through an annotation pass yet; an empty field
// on a non-nil Annotation means the model produced nothing for it.
type Annotation struct {
	DisplayTitle string
	Summary      string
	KeyPoints    []string
	Entities     []string
	Cluster      string
}

// SubScores holds the three rubric dimensions produced by scored-dimension
// ranking, in the order the category's rubric declares them.
type SubScores [3]int

// Item is a single content candidate flowing through the pipeline.
//
// The natural key is the normalized source URL and never changes once set.
// Raw fields come from the source fetcher; derived fields are written by
// annotation passes and are append-only (a later pass may overwrite them,
// nothing ever deletes them). An item is never physically discarded from the
// collected set: duplicates and filtered items are tagged, not removed, so
// they stay available to backfill undersized categories.
type Item struct {
	Key         string // natural key, NormalizeKey(URL)
	URL         string
	Title       string
	Description string
	Body        string
	Source      string
	Language    string
	Image       string
	Published   time.Time
	FetchedAt   time.Time

	Annotation *Annotation // nil until an annotation pass ran
	Category   string      // "" until classified
	Subs       *SubScores  // nil until scored (scored-dimension mode only)
	Score      float64

	Relevant  bool
	Recent    bool
	Duplicate bool
	Origin    string // natural key of the duplicate group's representative

	Related []ID // IDs of related stored items, newest pass wins
}

// ID returns the item's stored identity, derived from its natural key.
func (it *Item) ID() ID {
	return IDFromKey(it.Key)
}

// Annotated reports whether the item carries a display title that is
// distinguishable from its raw title. Selection uses this as the proxy for
// "went through annotation" when picking highlights.
func (it *Item) Annotated() bool {
	if it.Annotation == nil {
		return false
	}
	dt := strings.TrimSpace(it.Annotation.DisplayTitle)
	return dt != "" && dt != strings.TrimSpace(it.Title)
}

// StageError is one entry in the pipeline's error log. Stage failures are
// collected here instead of aborting the run.
type StageError struct {
	Stage   string
	Message string
	At      time.Time
}

// Digest is the date-keyed output document of one pipeline run. A second run
// on the same date merges field-by-field into the stored digest instead of
// overwriting it.
type Digest struct {
	Date          string // YYYY-MM-DD
	Highlights    []Item
	Categories    map[string][]Item
	CategoryOrder []string
	Sources       map[string][]Item
	SourceOrder   []string
	TotalCount    int
	Errors        []StageError
	Timings       map[string]float64 // stage name -> seconds
	Warnings      []string
	UpdatedAt     time.Time
}

// DateKey formats a time as a digest date key.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
