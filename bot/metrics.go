package bot

import (
	"corp-bot/model"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corpbot_job_runs_total",
			Help: "Scheduled job runs by outcome",
		},
		[]string{"job", "result"},
	)
	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "corpbot_job_duration_seconds",
			Help:    "Scheduled job run time",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"job"},
	)
)

func observeJob(name string, kind model.ResultKind, elapsed time.Duration) {
	jobRuns.WithLabelValues(name, kind.String()).Inc()
	jobDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}
