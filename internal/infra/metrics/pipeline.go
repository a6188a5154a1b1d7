package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(pipelineStageDurationMs) }

var pipelineStageDurationMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "pipeline_stage_duration_ms",
		Help:    "Pipeline stage latency distribution in milliseconds.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	},
	[]string{"stage", "success"},
)

func ObserveStage(stage string, durationMs int64, success bool) {
	lbl := "true"
	if !success {
		lbl = "false"
	}
	pipelineStageDurationMs.WithLabelValues(norm(stage), lbl).Observe(float64(durationMs))
}
