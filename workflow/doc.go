// Package workflow executes a directed graph of named stages over shared
// channel state.
//
// Stages never mutate state in place: each returns a partial update, and the
// engine merges updates through per-channel reducers after every superstep.
// A superstep runs the whole frontier of due stages concurrently on an
// identical snapshot and joins before anything downstream observes the
// merged result, so branch completion order never changes semantic content.
//
// Routers make the graph conditional: a router inspects merged state and
// names the next stages. Returning several names fans out; returning the
// stage's own name re-enters it, which is how bounded retry loops are built.
package workflow
