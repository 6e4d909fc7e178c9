// Package metrics records pipeline stage telemetry in Prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"minutesapi/internal/model"
)

// PipelineObserver implements service.Observer.
type PipelineObserver struct {
	inFlight *prometheus.GaugeVec
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewPipelineObserver registers the pipeline metrics on reg.
func NewPipelineObserver(reg prometheus.Registerer) (*PipelineObserver, error) {
	o := &PipelineObserver{
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "minutes_stage_in_flight",
				Help: "Number of pipeline runs currently executing a stage.",
			},
			[]string{"stage"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "minutes_stage_duration_seconds",
				Help: "Duration of pipeline stages.",
				// transcription of long recordings takes minutes
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1200},
			},
			[]string{"stage", "outcome"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minutes_stage_failures_total",
				Help: "Total number of failed pipeline stages.",
			},
			[]string{"stage"},
		),
	}
	for _, c := range []prometheus.Collector{o.inFlight, o.duration, o.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *PipelineObserver) StageStarted(_ context.Context, stage model.Stage) {
	o.inFlight.WithLabelValues(stage.String()).Inc()
}

func (o *PipelineObserver) StageFinished(_ context.Context, stage model.Stage, elapsed time.Duration, err error) {
	o.inFlight.WithLabelValues(stage.String()).Dec()
	outcome := "success"
	if err != nil {
		outcome = "failure"
		o.failures.WithLabelValues(stage.String()).Inc()
	}
	o.duration.WithLabelValues(stage.String(), outcome).Observe(elapsed.Seconds())
}
