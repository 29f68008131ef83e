package curation

import (
	"context"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/feeds"
	"github.com/poiesic/curator/workflow"
)

// classifyStage joins the annotation branches: it overlays the merged
// annotations onto the collection, splits it by source role, and classifies
// the category-role items. Section-role items skip classification and wait
// for assembly as their source's own section.
func (e *Engine) classifyStage(ctx context.Context, s workflow.State) (workflow.State, error) {
	collected := channelValue[map[string][]core.Item](s, collectedChannel)
	annotated := channelValue[map[string]*core.Annotation](s, annotatedChannel)

	var items, sections []core.Item
	for _, desc := range e.config.Sources {
		for _, it := range collected[desc.Key] {
			if ann, ok := annotated[it.Key]; ok {
				it.Annotation = ann
			}
			if desc.Role == feeds.RoleSection {
				sections = append(sections, it)
				continue
			}
			items = append(items, it)
		}
	}

	if len(items) > 0 {
		if _, err := e.classifier.Classify(ctx, items); err != nil {
			return nil, err
		}
	}

	return workflow.State{
		itemsChannel:    items,
		sectionsChannel: sections,
	}, nil
}
