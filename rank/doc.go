// Package rank classifies, scores and selects the items of a digest run.
//
// Classification maps every item onto one configured category through
// batched generation calls. Ranking assigns each item a 0-100 score in one
// of two modes: ModeDirect (the default) requests a full importance
// permutation per category and converts positions to scores linearly, while
// ModeScored requests rubric sub-scores per small batch and combines them
// with fixed category weights. Selection then builds each category's display
// set with a guaranteed share of recent items and picks one highlight per
// category.
//
// Every service response is treated as untrusted. Indices are validated and
// deduplicated, omissions are appended, and a category whose call fails
// outright falls back to recency ordering, so no item is ever dropped for
// lack of a rank.
package rank
