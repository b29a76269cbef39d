package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_stage_calls_total",
		Help: "AI pipeline stage calls by final status.",
	}, []string{"stage", "status"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ai_stage_duration_seconds",
		Help:    "AI pipeline stage latency including retries.",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"stage"})
)

func observeStage(stage, status string, elapsed time.Duration) {
	stageCalls.WithLabelValues(stage, status).Inc()
	stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}
