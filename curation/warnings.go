package curation

import (
	"fmt"

	"github.com/poiesic/curator/core"
)

// warnings inspects a finished digest for conditions worth surfacing.
// Warnings never block: they ride along on the digest for the caller and
// the display layers to show.
func (e *Engine) warnings(digest *core.Digest, collected int, coverage float64) []string {
	var w []string
	if collected == 0 {
		w = append(w, "no items were collected from any source")
		return w
	}
	for _, cat := range e.config.Rank.Categories {
		if len(digest.Categories[cat.Name]) == 0 {
			w = append(w, fmt.Sprintf("category %s has no items", cat.Name))
		}
	}
	if len(digest.Highlights) == 0 {
		w = append(w, "no highlights were selected")
	}
	if coverage < e.config.CoverageThreshold {
		w = append(w, fmt.Sprintf("ranking coverage stayed at %.2f after retries", coverage))
	}
	for _, se := range digest.Errors {
		w = append(w, fmt.Sprintf("stage %s failed: %s", se.Stage, se.Message))
	}
	return w
}
