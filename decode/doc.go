// Package decode recovers structured JSON from free-form model output.
//
// Generation services wrap their payloads in reasoning tags, code fences,
// decorative markup and prose, and sometimes truncate mid-array. Extract
// walks a ladder of recovery stages from cheapest to most aggressive and
// stops at the first one that yields valid JSON; only full exhaustion is an
// error.
package decode
