package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"minutesapi/internal/model"
)

// Observer is notified as the pipeline moves through its stages.
// It is how a UI or telemetry layer follows a run.
type Observer interface {
	StageStarted(ctx context.Context, stage model.Stage)
	StageFinished(ctx context.Context, stage model.Stage, elapsed time.Duration, err error)
}

// Observers fans notifications out in order.
type Observers []Observer

func (o Observers) StageStarted(ctx context.Context, stage model.Stage) {
	for _, obs := range o {
		obs.StageStarted(ctx, stage)
	}
}

func (o Observers) StageFinished(ctx context.Context, stage model.Stage, elapsed time.Duration, err error) {
	for _, obs := range o {
		obs.StageFinished(ctx, stage, elapsed, err)
	}
}

// LogObserver writes one line per stage transition.
type LogObserver struct {
	Log zerolog.Logger
}

func (l LogObserver) StageStarted(ctx context.Context, stage model.Stage) {
	l.Log.Info().
		Str("run_id", RunIDFromContext(ctx)).
		Str("stage", stage.String()).
		Msg(stage.Description())
}

func (l LogObserver) StageFinished(ctx context.Context, stage model.Stage, elapsed time.Duration, err error) {
	ev := l.Log.Info()
	if err != nil {
		ev = l.Log.Error().Err(err)
	}
	ev.Str("run_id", RunIDFromContext(ctx)).
		Str("stage", stage.String()).
		Float64("elapsed_ms", float64(elapsed.Microseconds())/1000).
		Msg("stage_finished")
}

type runIDKey struct{}

// WithRunID tags ctx with the id of the current pipeline run.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run id set by WithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
