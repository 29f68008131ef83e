package curation

import (
	"slices"
	"strings"

	"github.com/poiesic/curator/core"
)

// Related-item scoring: shared annotation entities weigh most, the shared
// event cluster next, then the publishing domain and the category.
const (
	relatedEntityWeight  = 3
	relatedClusterWeight = 5
	relatedDomainWeight  = 2
	relatedCategoryBonus = 1

	// minRelatedScore keeps links backed by at least one strong signal: a
	// shared entity, a shared cluster, or domain plus category together.
	minRelatedScore = 3
)

// RelateItems scores every item against the stored corpus and keeps the
// strongest links as Related references, newest pass wins. Shared annotation
// entities and event clusters dominate the score, so well-annotated items
// link far more readily than bare ones.
func RelateItems(items []*core.Item, corpus []*core.Item, limit int) {
	if limit <= 0 || len(items) == 0 || len(corpus) == 0 {
		return
	}
	for _, it := range items {
		it.Related = relatedIDs(it, corpus, limit)
	}
}

type relatedCandidate struct {
	id        core.ID
	key       string
	score     int
	published int64
}

func relatedIDs(it *core.Item, corpus []*core.Item, limit int) []core.ID {
	var candidates []relatedCandidate
	for _, other := range corpus {
		if other.Key == it.Key {
			continue
		}
		score := relatedScore(it, other)
		if score < minRelatedScore {
			continue
		}
		candidates = append(candidates, relatedCandidate{
			id:        other.ID(),
			key:       other.Key,
			score:     score,
			published: other.Published.Unix(),
		})
	}
	if len(candidates) == 0 {
		return nil
	}
	slices.SortFunc(candidates, func(a, b relatedCandidate) int {
		if a.score != b.score {
			return b.score - a.score
		}
		if a.published != b.published {
			if a.published > b.published {
				return -1
			}
			return 1
		}
		return strings.Compare(a.key, b.key)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	ids := make([]core.ID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	return ids
}

func relatedScore(a, b *core.Item) int {
	score := sharedEntities(a.Annotation, b.Annotation) * relatedEntityWeight
	if ca, cb := cluster(a.Annotation), cluster(b.Annotation); ca != "" && ca == cb {
		score += relatedClusterWeight
	}
	if da, db := domain(a.Key), domain(b.Key); da != "" && da == db {
		score += relatedDomainWeight
	}
	if a.Category != "" && a.Category == b.Category {
		score += relatedCategoryBonus
	}
	return score
}

func sharedEntities(a, b *core.Annotation) int {
	if a == nil || b == nil {
		return 0
	}
	seen := make(map[string]bool, len(a.Entities))
	for _, ent := range a.Entities {
		if ent = normalizeEntity(ent); ent != "" {
			seen[ent] = true
		}
	}
	shared := 0
	for _, ent := range b.Entities {
		if ent = normalizeEntity(ent); seen[ent] {
			shared++
			delete(seen, ent)
		}
	}
	return shared
}

func normalizeEntity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func cluster(a *core.Annotation) string {
	if a == nil {
		return ""
	}
	return strings.TrimSpace(a.Cluster)
}

// domain is the host part of a natural key, which is already lowercased
// with the scheme stripped.
func domain(key string) string {
	host, _, _ := strings.Cut(key, "/")
	return host
}
