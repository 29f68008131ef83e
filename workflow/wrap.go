package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/curator/core"
)

// Channels the Instrumented wrapper writes to. Graphs using the wrapper
// must include both in their schema; BaseSchema declares them.
const (
	// ErrorsChannel accumulates core.StageError entries from failed stages.
	ErrorsChannel = "errors"
	// TimingsChannel maps stage name to wall-clock seconds.
	TimingsChannel = "timings"
)

// BaseSchema declares the channels every instrumented graph carries.
// Callers extend the returned schema with their own channels.
func BaseSchema() Schema {
	return Schema{
		ErrorsChannel: {
			Default: func() any { return []core.StageError(nil) },
			Reduce:  Append[core.StageError](),
		},
		TimingsChannel: {
			Default: func() any { return map[string]float64{} },
			Reduce:  Union[string, float64](),
		},
	}
}

// Instrumented wraps a stage with per-stage isolation: an error return or a
// panic becomes a StageError entry on the errors channel plus an otherwise
// empty update, so one stage's failure never aborts the graph. Wall-clock
// duration lands on the timings channel regardless of outcome. The wrapper
// owns both channels; wrapped stages must not write them.
func Instrumented(name string, stage Stage) Stage {
	log := slog.Default().With("component", "workflow", "stage", name)
	return func(ctx context.Context, s State) (State, error) {
		start := time.Now()
		update, err := runIsolated(ctx, stage, s)
		elapsed := time.Since(start).Seconds()

		if err != nil {
			log.Error("stage failed", "err", err, "seconds", elapsed)
			update = State{
				ErrorsChannel: []core.StageError{{
					Stage:   name,
					Message: err.Error(),
					At:      time.Now().UTC(),
				}},
			}
		} else {
			log.Debug("stage done", "seconds", elapsed)
			if update == nil {
				update = State{}
			}
		}

		update[TimingsChannel] = map[string]float64{name: elapsed}
		return update, nil
	}
}

// runIsolated invokes the stage with panic containment.
func runIsolated(ctx context.Context, stage Stage, s State) (update State, err error) {
	defer func() {
		if r := recover(); r != nil {
			update = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return stage(ctx, s)
}
