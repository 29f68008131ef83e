// Package dedup groups items that cover the same event and keeps one
// representative per group.
//
// Matching runs layered, cheapest first: exact normalized-URL key, fuzzy
// title similarity, fuzzy display-title similarity, entity overlap with an
// equal cluster label, fuzzy summary similarity, shared key tokens, and
// finally cosine similarity over batch-computed embeddings. A candidate is
// compared against the representatives kept so far and short-circuits at the
// first matching layer.
//
// Duplicates are marked and retained rather than removed: the suppressed
// item keeps a back-reference to its representative (the earliest-published
// item of the group), and downstream selection may still use it to backfill
// an undersized category.
package dedup
