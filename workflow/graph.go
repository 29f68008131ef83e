package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// End is the terminal marker. Routing to End (or having no successor at all)
// finishes that path of the graph.
const End = "__end__"

// Stage is one graph node: a function from a state snapshot to a partial
// update. Stages must not mutate the snapshot.
type Stage func(ctx context.Context, s State) (State, error)

// Router picks the successors of a stage after its update has been merged.
// Returning more than one name fans out; returning the same name re-enters
// the stage; returning nothing or End terminates the path.
type Router func(s State) []string

// Graph is a fixed directed graph of stages executed superstep by superstep.
// Build it with AddStage/AddEdge/AddRouter, then call Run. A Graph is safe
// for repeated runs but not for concurrent mutation.
type Graph struct {
	schema   Schema
	stages   map[string]Stage
	edges    map[string][]string
	routers  map[string]Router
	entry    string
	maxSteps int
	log      *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for superstep tracing.
func WithLogger(log *slog.Logger) Option {
	return func(g *Graph) {
		if log != nil {
			g.log = log.With("component", "workflow")
		}
	}
}

// WithMaxSteps bounds the number of supersteps per run. The default of 64 is
// far above any legal routing of the curation graph; hitting it means a
// router loops without terminating.
func WithMaxSteps(n int) Option {
	return func(g *Graph) {
		g.maxSteps = n
	}
}

// New creates an empty graph over the given channel schema.
func New(schema Schema, opts ...Option) *Graph {
	g := &Graph{
		schema:   schema,
		stages:   make(map[string]Stage),
		edges:    make(map[string][]string),
		routers:  make(map[string]Router),
		maxSteps: 64,
		log:      slog.Default().With("component", "workflow"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddStage registers a named stage. The first added stage becomes the entry
// unless SetEntry overrides it.
func (g *Graph) AddStage(name string, stage Stage) error {
	if _, exists := g.stages[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateStage, name)
	}
	g.stages[name] = stage
	if g.entry == "" {
		g.entry = name
	}
	return nil
}

// SetEntry names the stage every run starts from.
func (g *Graph) SetEntry(name string) {
	g.entry = name
}

// AddEdge declares a static successor. A stage may have several static
// successors, which fan out like a router returning them all.
func (g *Graph) AddEdge(from, to string) {
	g.edges[from] = append(g.edges[from], to)
}

// AddRouter declares a conditional successor function for a stage. A router
// takes precedence over static edges from the same stage.
func (g *Graph) AddRouter(from string, r Router) {
	g.routers[from] = r
}

// validate checks the graph wiring before a run.
func (g *Graph) validate() error {
	if g.entry == "" {
		return ErrNoEntry
	}
	if _, ok := g.stages[g.entry]; !ok {
		return fmt.Errorf("%w: entry %q", ErrUnknownStage, g.entry)
	}
	for from, tos := range g.edges {
		if _, ok := g.stages[from]; !ok {
			return fmt.Errorf("%w: edge from %q", ErrUnknownStage, from)
		}
		for _, to := range tos {
			if to == End {
				continue
			}
			if _, ok := g.stages[to]; !ok {
				return fmt.Errorf("%w: edge to %q", ErrUnknownStage, to)
			}
		}
	}
	for from := range g.routers {
		if _, ok := g.stages[from]; !ok {
			return fmt.Errorf("%w: router on %q", ErrUnknownStage, from)
		}
	}
	return nil
}

// Run executes the graph to completion and returns the final state. The seed
// may preset channels; everything else starts at its schema default.
//
// Each superstep clones the state, runs the whole frontier concurrently on
// that one snapshot, waits for all of it, merges every update through the
// channel reducers, and only then routes. A stage error aborts the run; wrap
// stages with Instrumented to trade aborts for error-log entries.
func (g *Graph) Run(ctx context.Context, seed State) (State, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	state, err := g.schema.initial(seed)
	if err != nil {
		return nil, err
	}

	frontier := []string{g.entry}
	for step := 0; len(frontier) > 0; step++ {
		if step >= g.maxSteps {
			return state, fmt.Errorf("%w: %d steps", ErrStepLimit, step)
		}
		g.log.Debug("superstep", "step", step, "frontier", frontier)

		updates, err := g.runFrontier(ctx, frontier, state)
		if err != nil {
			return state, err
		}
		for _, update := range updates {
			if err := g.schema.apply(state, update); err != nil {
				return state, err
			}
		}

		frontier = g.route(frontier, state)
	}

	return state, nil
}

// runFrontier executes every due stage concurrently against one snapshot.
// Results are collected by frontier position so the later merge order is
// deterministic even though completion order is not.
func (g *Graph) runFrontier(ctx context.Context, frontier []string, state State) ([]State, error) {
	snapshot := state.Clone()
	updates := make([]State, len(frontier))

	eg, gctx := errgroup.WithContext(ctx)
	for i, name := range frontier {
		stage, ok := g.stages[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStage, name)
		}
		eg.Go(func() error {
			update, err := stage(gctx, snapshot)
			if err != nil {
				return fmt.Errorf("stage %q: %w", name, err)
			}
			updates[i] = update
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return updates, nil
}

// route computes the next frontier from the merged state.
func (g *Graph) route(frontier []string, state State) []string {
	var next []string
	seen := make(map[string]bool)
	for _, name := range frontier {
		var successors []string
		if router, ok := g.routers[name]; ok {
			successors = router(state)
		} else {
			successors = g.edges[name]
		}
		for _, succ := range successors {
			if succ == End || seen[succ] {
				continue
			}
			seen[succ] = true
			next = append(next, succ)
		}
	}
	return next
}
