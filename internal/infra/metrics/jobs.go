package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(summaryJobsTotal, summaryJobDuration, summaryJobsOutstanding, jobPollsTotal, jobsSweptTotal)
}

var (
	summaryJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_jobs_total",
			Help: "Summary jobs by final status.",
		},
		[]string{"status"}, // 'complete', 'error', 'rejected'
	)

	summaryJobDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summary_job_duration_seconds",
			Help:    "Wall time from job creation to its terminal state.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)

	summaryJobsOutstanding = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "summary_jobs_outstanding",
			Help: "Jobs queued or running in the worker pool.",
		},
	)

	jobPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_polls_total",
			Help: "Job status polls by outcome.",
		},
		[]string{"outcome"}, // 'pending', 'complete', 'error', 'expired'
	)

	jobsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "summary_jobs_swept_total",
			Help: "Jobs removed by the TTL sweeper.",
		},
	)
)

func IncSummaryJob(status string) {
	summaryJobsTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveJobDuration(d time.Duration) {
	summaryJobDuration.Observe(d.Seconds())
}

func SetJobsOutstanding(n int64) {
	summaryJobsOutstanding.Set(float64(n))
}

func IncJobPoll(outcome string) {
	jobPollsTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddJobsSwept(n int) {
	if n > 0 {
		jobsSweptTotal.Add(float64(n))
	}
}
