// Package curation orchestrates the daily digest pipeline.
//
// The Engine type runs a staged workflow over the configured sources:
//   - fetching feeds and enriching items with scraped bodies and images
//   - marking relevance with a generation pass and a keyword fallback
//   - annotating items in their own language or in translation
//   - classifying, ranking and deduplicating the merged pool
//   - selecting category sections and highlights
//   - assembling the dated digest document
//
// Stages run on a workflow graph that records per-stage timings and captures
// stage errors as data, so a failed stage degrades the digest instead of
// aborting the run. Ranking re-enters through a router until coverage clears
// the configured threshold or the retry budget runs out.
package curation
