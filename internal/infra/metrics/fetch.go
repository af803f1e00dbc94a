package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(pageFetchTotal, pageFetchDuration) }

var (
	pageFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_fetch_total",
			Help: "Page fetch attempts by result.",
		},
		[]string{"result"}, // 'ok', 'http_error', 'transport_error', 'extract_error'
	)

	pageFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "page_fetch_duration_seconds",
			Help:    "Time to download a page.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func ObservePageFetch(result string, elapsed time.Duration) {
	pageFetchTotal.WithLabelValues(norm(result)).Inc()
	if elapsed > 0 {
		pageFetchDuration.Observe(elapsed.Seconds())
	}
}
