package curation

import (
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/workflow"
)

// State channels of the curation graph. The annotation channel is the only
// one written by concurrent branches; everything else has a single writer
// per step.
const (
	collectedChannel  = "collected"  // map[string][]core.Item, by source key
	annotatedChannel  = "annotated"  // map[string]*core.Annotation, by item key
	itemsChannel      = "items"      // []core.Item, the category-role collection
	sectionsChannel   = "sections"   // []core.Item, the section-role collection
	coverageChannel   = "coverage"   // float64, fraction ranked by the service
	attemptsChannel   = "attempts"   // int, ranking passes run so far
	selectedChannel   = "selected"   // map[string][]core.Item, by category
	highlightsChannel = "highlights" // []core.Item
	digestChannel     = "digest"     // *core.Digest
)

// Stage names, which are also the keys of the digest's timing map.
const (
	stageFetch             = "fetch"
	stageFilter            = "filter"
	stageAnnotateNative    = "annotate_native"
	stageAnnotateTranslate = "annotate_translate"
	stageClassify          = "classify"
	stageRank              = "rank"
	stageDedupe            = "dedupe"
	stageSelect            = "select"
	stageAssemble          = "assemble"
)

func curationSchema() workflow.Schema {
	schema := workflow.BaseSchema()
	schema[collectedChannel] = workflow.ChannelSpec{
		Default: func() any { return map[string][]core.Item{} },
		Reduce:  workflow.Replace(),
	}
	schema[annotatedChannel] = workflow.ChannelSpec{
		Default: func() any { return map[string]*core.Annotation{} },
		Reduce:  workflow.Union[string, *core.Annotation](),
	}
	schema[itemsChannel] = workflow.ChannelSpec{
		Default: func() any { return []core.Item(nil) },
		Reduce:  workflow.Replace(),
	}
	schema[sectionsChannel] = workflow.ChannelSpec{
		Default: func() any { return []core.Item(nil) },
		Reduce:  workflow.Replace(),
	}
	schema[coverageChannel] = workflow.ChannelSpec{
		Default: func() any { return float64(0) },
		Reduce:  workflow.Replace(),
	}
	schema[attemptsChannel] = workflow.ChannelSpec{
		Default: func() any { return 0 },
		Reduce:  workflow.Replace(),
	}
	schema[selectedChannel] = workflow.ChannelSpec{
		Default: func() any { return map[string][]core.Item{} },
		Reduce:  workflow.Replace(),
	}
	schema[highlightsChannel] = workflow.ChannelSpec{
		Default: func() any { return []core.Item(nil) },
		Reduce:  workflow.Replace(),
	}
	schema[digestChannel] = workflow.ChannelSpec{
		Default: func() any { return (*core.Digest)(nil) },
		Reduce:  workflow.Replace(),
	}
	return schema
}

// buildGraph wires the pipeline: collection, relevance marking, the two
// annotation branches, classification, bounded ranking, deduplication,
// selection and assembly.
func (e *Engine) buildGraph() (*workflow.Graph, error) {
	g := workflow.New(curationSchema(), workflow.WithLogger(e.logger))

	stages := []struct {
		name  string
		stage workflow.Stage
	}{
		{stageFetch, e.fetchStage},
		{stageFilter, e.filterStage},
		{stageAnnotateNative, e.annotateNativeStage},
		{stageAnnotateTranslate, e.annotateTranslateStage},
		{stageClassify, e.classifyStage},
		{stageRank, e.rankStage},
		{stageDedupe, e.dedupeStage},
		{stageSelect, e.selectStage},
		{stageAssemble, e.assembleStage},
	}
	for _, st := range stages {
		if err := g.AddStage(st.name, workflow.Instrumented(st.name, st.stage)); err != nil {
			return nil, err
		}
	}

	g.SetEntry(stageFetch)
	g.AddEdge(stageFetch, stageFilter)

	// The annotation branches fan out after the filter and join at
	// classification: both run on the same snapshot and their updates merge
	// through the annotation channel's union reducer.
	g.AddEdge(stageFilter, stageAnnotateNative)
	g.AddEdge(stageFilter, stageAnnotateTranslate)
	g.AddEdge(stageAnnotateNative, stageClassify)
	g.AddEdge(stageAnnotateTranslate, stageClassify)

	g.AddEdge(stageClassify, stageRank)
	g.AddRouter(stageRank, e.rankRouter)
	g.AddEdge(stageDedupe, stageSelect)
	g.AddEdge(stageSelect, stageAssemble)
	g.AddEdge(stageAssemble, workflow.End)

	return g, nil
}

// channelValue reads one channel with its expected type, yielding the zero
// value when the channel is absent or holds something else.
func channelValue[T any](s workflow.State, name string) T {
	v, _ := s[name].(T)
	return v
}
