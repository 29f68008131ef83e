// Package batch runs many independent generation-service calls under a
// shared rate limit and a bounded worker pool.
//
// Callers describe work as a Func over payload indices; the invoker chunks
// the index space into batches, gates every service call through a sliding
// window limiter, and recovers from failures by splitting batches in half
// down to single items, then retrying missing indices individually. A
// deterministic fallback runs for anything still unsatisfied, so every index
// always ends up with a value.
package batch
